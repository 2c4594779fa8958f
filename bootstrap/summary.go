package bootstrap

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// PhaseInfo records one startup phase.
type PhaseInfo struct {
	Name     string
	Duration time.Duration
	Detail   string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	phases          []PhaseInfo
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker that prints to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		phases:      make([]PhaseInfo, 0),
		out:         os.Stdout,
	}
}

// SetOutput redirects the printed summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackPhase adds a startup phase to the summary.
func (s *Summary) TrackPhase(name string, d time.Duration, detail string) {
	s.phases = append(s.phases, PhaseInfo{Name: name, Duration: d, Detail: detail})
}

// Phases returns the tracked phases in order.
func (s *Summary) Phases() []PhaseInfo {
	return s.phases
}

// DisplaySummary prints the bootstrap summary including the container's
// current registrations, and logs a one-line version of it.
func (s *Summary) DisplaySummary(c di.Container, log *logger.Logger) {
	w := s.out
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.phases) > 0 {
		fmt.Fprintf(w, "⏱️  Phases\n")
		for i, p := range s.phases {
			fmt.Fprintf(w, "   %s %s (%s) %s\n", treePrefix(i, len(s.phases)), p.Name, p.Duration.Round(time.Microsecond), p.Detail)
		}
		fmt.Fprintf(w, "\n")
	}

	if c == nil {
		return
	}

	regs := c.Registrations()
	state := "open"
	if c.Frozen() {
		state = "frozen"
	}
	fmt.Fprintf(w, "📦 Container %s (%d registrations, %s)\n", shortID(c.ID()), len(regs), state)
	if len(regs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	}
	for i, r := range regs {
		fmt.Fprintf(w, "   %s %s %s [%s] %s\n", treePrefix(i, len(regs)), registrationIcon(r), r.Key, r.Lifetime, r.ImplType)
	}
	fmt.Fprintf(w, "\n")

	if log != nil {
		log.Info("Startup summary", logger.Fields(
			logger.FieldContainerID, c.ID(),
			"registrations", len(regs),
			"frozen", c.Frozen(),
			"startup_ms", s.startupDuration.Milliseconds(),
		))
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func registrationIcon(r di.RegistrationInfo) string {
	switch {
	case r.Lifetime == di.Transient:
		return "🔁"
	case r.Initialized:
		return "✅"
	default:
		return "⚡"
	}
}
