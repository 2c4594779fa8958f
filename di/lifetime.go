package di

import (
	"fmt"
	"strings"
)

// Lifetime determines whether a resolution returns a cached or a fresh instance.
type Lifetime int

const (
	// Singleton builds the instance on first resolve and returns it thereafter.
	Singleton Lifetime = iota + 1
	// Transient builds a new instance on every resolve.
	Transient
)

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lifetime) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("di: invalid lifetime %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lifetime) UnmarshalText(text []byte) error {
	parsed, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLifetime parses "singleton" or "transient", case-insensitively.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "singleton":
		return Singleton, nil
	case "transient":
		return Transient, nil
	default:
		return 0, fmt.Errorf("di: unknown lifetime %q", s)
	}
}

func (l Lifetime) valid() bool {
	return l == Singleton || l == Transient
}
