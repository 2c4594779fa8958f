package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/dikit/bootstrap"
	"github.com/kbukum/dikit/config"
	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/diagnostics"
	"github.com/kbukum/dikit/logger"
	"github.com/kbukum/dikit/validation"
)

const serviceName = "dikit"

// demoConfig is the configuration of the demo application.
type demoConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Diagnostics          diagnostics.Config `yaml:"diagnostics" mapstructure:"diagnostics"`
}

func (c *demoConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Diagnostics.ApplyDefaults()
}

func (c *demoConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(&c.Diagnostics); err != nil {
		return fmt.Errorf("config.diagnostics: %w", err)
	}
	return nil
}

// A is the abstraction registered under key "A".
type A interface {
	Identity() string
}

// Impl is the concrete type behind both "A" and "Impl".
type Impl struct {
	ID string
}

func (i *Impl) Identity() string { return i.ID }

// Settings shows a factory overriding a default field value.
type Settings struct {
	Field string
}

// Counter is default-constructed; every transient resolve yields a new one.
type Counter struct {
	n int
}

func (c *Counter) Inc() int {
	c.n++
	return c.n
}

// Greeter resolves its dependencies inside its factory.
type Greeter struct {
	settings *Settings
	log      *logger.Logger
}

func (g *Greeter) Greet(name string) string {
	msg := fmt.Sprintf("hello %s from %s", name, g.settings.Field)
	g.log.Debug("Greeting", logger.Fields("name", name))
	return msg
}

var (
	keyA        = di.NewKey[A]("A")
	keyImpl     = di.NewKey[*Impl]("Impl")
	keySettings = di.NewKey[*Settings]("settings")
	keyCounter  = di.NewKey[*Counter]("counter")
	keyGreeter  = di.NewKey[*Greeter]("greeter")
	keyMissing  = di.NewKey[*Impl]("missing")
)

// demo holds factory invocation counters for the checks.
type demo struct {
	aBuilds        atomic.Int32
	implBuilds     atomic.Int32
	settingsBuilds atomic.Int32
}

// register adds the demo services to c.
func (d *demo) register(c di.Container) error {
	regs := []func() error{
		func() error {
			return di.Register(c, keyA, di.Singleton,
				di.WithImplementation[*Impl](),
				di.WithFactory(func() *Impl {
					d.aBuilds.Add(1)
					return &Impl{ID: "1"}
				}))
		},
		func() error {
			return di.Register(c, keyImpl, di.Singleton,
				di.WithFactory(func() *Impl {
					d.implBuilds.Add(1)
					return &Impl{ID: "2"}
				}))
		},
		func() error {
			return di.Register(c, keySettings, di.Singleton,
				di.WithFactory(func() *Settings {
					d.settingsBuilds.Add(1)
					return &Settings{Field: "X"}
				}))
		},
		func() error {
			return di.Register(c, keyCounter, di.Transient)
		},
		func() error {
			return di.Register(c, keyGreeter, di.Singleton,
				di.WithFactory(func(ctx context.Context, r di.Resolver) (*Greeter, error) {
					settings, err := di.ResolveContext(ctx, r, keySettings)
					if err != nil {
						return nil, err
					}
					log, err := di.ResolveContext(ctx, r, bootstrap.LoggerKey)
					if err != nil {
						return nil, err
					}
					return &Greeter{settings: settings, log: log.WithComponent("greeter")}, nil
				}))
		},
	}
	for _, reg := range regs {
		if err := reg(); err != nil {
			return err
		}
	}
	return nil
}

// newDemoApp loads the config and builds the demo application with every
// demo service registered during configure.
func newDemoApp(flags *rootFlags, opts ...bootstrap.Option) (*bootstrap.App[*demoConfig], *demo, error) {
	var cfg demoConfig
	loaderOpts := []config.LoaderOption{config.WithEnvPrefix("DIKIT")}
	if flags.ConfigFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(flags.ConfigFile))
	}
	if flags.EnvFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(flags.EnvFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, loaderOpts...); err != nil {
		return nil, nil, err
	}

	app, err := bootstrap.NewApp(&cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	d := &demo{}
	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*demoConfig]) error {
		return d.register(a.Container)
	})
	return app, d, nil
}
