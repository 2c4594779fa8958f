package diagnostics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/errors"
	"github.com/kbukum/dikit/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Registrations lists the container's registrations sorted by key.
// An optional ?lifetime=singleton|transient query filters the list.
// It never resolves anything.
func Registrations(container di.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		regs := container.Registrations()

		if raw := c.Query("lifetime"); raw != "" {
			lifetime, err := di.ParseLifetime(raw)
			if err != nil {
				RespondWithError(c, errors.InvalidInput("lifetime", "must be singleton or transient"))
				return
			}
			filtered := regs[:0]
			for _, r := range regs {
				if r.Lifetime == lifetime {
					filtered = append(filtered, r)
				}
			}
			regs = filtered
		}

		RespondOKWithMeta(c, regs, &Meta{Total: len(regs)})
	}
}

// Registration returns a single registration by its :key path parameter,
// or a NOT_REGISTERED error body with status 404.
func Registration(container di.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		for _, r := range container.Registrations() {
			if r.Key == key {
				RespondOK(c, r)
				return
			}
		}
		RespondWithError(c, errors.NotRegistered(key))
	}
}

// Info reports build information and container state.
func Info(serviceName string, container di.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo()
		c.JSON(http.StatusOK, gin.H{
			"service":       serviceName,
			"version":       v.Version,
			"git_commit":    v.GitCommit,
			"go_version":    v.GoVersion,
			"container_id":  container.ID(),
			"registrations": container.Len(),
			"frozen":        container.Frozen(),
			"uptime":        time.Since(startTime).String(),
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Liveness confirms the process is alive and able to serve HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// RegisterRoutes mounts the diagnostics routes on r.
//
//	GET /health
//	GET /info
//	GET /di/registrations
//	GET /di/registrations/:key
func RegisterRoutes(r gin.IRoutes, serviceName string, container di.Container) {
	r.GET("/health", Liveness(serviceName))
	r.GET("/info", Info(serviceName, container))
	r.GET("/di/registrations", Registrations(container))
	r.GET("/di/registrations/:key", Registration(container))
}
