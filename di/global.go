package di

import (
	"sync"

	"github.com/kbukum/dikit/errors"
)

// The process-wide container is a convenience for code that cannot be handed
// a Container explicitly. It is installed once with Initialize and removed
// with Shutdown; Initialize while one is installed fails.
var (
	globalMu        sync.RWMutex
	globalContainer Container
)

// Initialize installs c as the process-wide container.
func Initialize(c Container) error {
	if c == nil {
		return errors.InvalidInput("container", "container is nil")
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalContainer != nil {
		return errors.AlreadyInitialized("global container")
	}
	globalContainer = c
	return nil
}

// Default returns the process-wide container.
func Default() (Container, error) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalContainer == nil {
		return nil, errors.NotInitialized("global container")
	}
	return globalContainer, nil
}

// MustDefault returns the process-wide container or panics.
func MustDefault() Container {
	c, err := Default()
	if err != nil {
		panic(err.Error())
	}
	return c
}

// Shutdown removes the process-wide container. Instances it built are left
// untouched.
func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalContainer = nil
}
