package bootstrap

import (
	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// ConfigKey is the key the application config is registered under.
// C must match the config type the App was created with.
func ConfigKey[C Config]() di.Key[C] {
	return di.NewKey[C](di.Pkg.Config)
}

// LoggerKey is the key the application logger is registered under.
var LoggerKey = di.NewKey[*logger.Logger](di.Pkg.Logger)

// ContainerKey is the key the container registers itself under, for
// factories that need to hand the container on.
var ContainerKey = di.NewKey[di.Container](di.Pkg.Container)
