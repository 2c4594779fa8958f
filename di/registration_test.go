package di

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/dikit/errors"
)

type initCounter struct {
	Ready bool
}

func (i *initCounter) Init() error {
	i.Ready = true
	return nil
}

type failingInit struct{}

func (f *failingInit) Init() error { return fmt.Errorf("init failed") }

type clock struct{}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		lifetime Lifetime
		opts     []RegisterOption
		code     errors.ErrorCode
	}{
		{"empty key", "", Singleton, []RegisterOption{WithFactory(func() int { return 1 })}, errors.ErrCodeInvalidRegistration},
		{"unknown lifetime", "k", Lifetime(42), []RegisterOption{WithFactory(func() int { return 1 })}, errors.ErrCodeInvalidRegistration},
		{"zero lifetime", "k", Lifetime(0), []RegisterOption{WithFactory(func() int { return 1 })}, errors.ErrCodeInvalidRegistration},
		{"factory not a func", "k", Singleton, []RegisterOption{WithFactory("nope")}, errors.ErrCodeInvalidRegistration},
		{"nil func", "k", Singleton, []RegisterOption{WithFactory((func() int)(nil))}, errors.ErrCodeInvalidRegistration},
		{"unsupported parameter", "k", Singleton, []RegisterOption{WithFactory(func(s string) int { return 1 })}, errors.ErrCodeInvalidRegistration},
		{"variadic", "k", Singleton, []RegisterOption{WithFactory(func(...context.Context) int { return 1 })}, errors.ErrCodeInvalidRegistration},
		{"no results", "k", Singleton, []RegisterOption{WithFactory(func() {})}, errors.ErrCodeInvalidRegistration},
		{"second result not error", "k", Singleton, []RegisterOption{WithFactory(func() (int, int) { return 1, 2 })}, errors.ErrCodeInvalidRegistration},
		{"only error", "k", Singleton, []RegisterOption{WithFactory(func() error { return nil })}, errors.ErrCodeInvalidRegistration},
		{"no factory no type", "k", Singleton, nil, errors.ErrCodeMissingFactory},
		{"interface implementation", "k", Transient, []RegisterOption{WithImplementation[identified]()}, errors.ErrCodeMissingFactory},
		{"func implementation", "k", Transient, []RegisterOption{WithImplementation[func()]()}, errors.ErrCodeMissingFactory},
		{"chan implementation", "k", Transient, []RegisterOption{WithImplementation[chan int]()}, errors.ErrCodeMissingFactory},
		{"zero-size transient pointer", "k", Transient, []RegisterOption{WithImplementation[*clock]()}, errors.ErrCodeInvalidRegistration},
		{"factory result not impl", "k", Transient, []RegisterOption{WithImplementation[*impl](), WithFactory(func() *settings { return nil })}, errors.ErrCodeTypeMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContainer()
			err := c.Register(tc.key, tc.lifetime, tc.opts...)
			if !errors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if c.Len() != 0 {
				t.Error("expected rejected registration to leave the container empty")
			}
		})
	}
}

func TestRegisterTypedValidation(t *testing.T) {
	c := newTestContainer()

	err := Register(c, NewKey[identified]("iface"), Singleton)
	if !IsMissingFactory(err) {
		t.Errorf("expected MISSING_FACTORY for interface key without factory, got %v", err)
	}

	err = Register(c, NewKey[identified]("wrong-impl"), Singleton, WithImplementation[*settings]())
	if !errors.HasCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH for implementation not satisfying key, got %v", err)
	}

	err = Register(c, NewKey[*impl]("wrong-factory"), Singleton, WithFactory(func() string { return "" }))
	if !errors.HasCode(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH for factory result, got %v", err)
	}
	if !strings.Contains(err.Error(), "*di.impl") {
		t.Errorf("expected key type in message, got %q", err.Error())
	}
}

func TestAcceptedFactoryShapes(t *testing.T) {
	shapes := map[string]any{
		"plain":             func() *impl { return &impl{ID: "plain"} },
		"with error":        func() (*impl, error) { return &impl{ID: "with error"}, nil },
		"context":           func(context.Context) (*impl, error) { return &impl{ID: "context"}, nil },
		"resolver":          func(Resolver) (*impl, error) { return &impl{ID: "resolver"}, nil },
		"context resolver":  func(context.Context, Resolver) (*impl, error) { return &impl{ID: "context resolver"}, nil },
		"resolver no error": func(Resolver) *impl { return &impl{ID: "resolver no error"} },
	}

	for name, factory := range shapes {
		t.Run(name, func(t *testing.T) {
			c := newTestContainer()
			key := NewKey[*impl]("svc")
			if err := Register(c, key, Transient, WithFactory(factory)); err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			got, err := Resolve(c, key)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.ID != name {
				t.Errorf("expected ID %q, got %q", name, got.ID)
			}
		})
	}
}

func TestDefaultConstruction(t *testing.T) {
	t.Run("pointer types are allocated per resolve", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[*settings]("settings")
		MustRegister(c, key, Transient)

		a, b := MustResolve(c, key), MustResolve(c, key)
		if a == nil || b == nil {
			t.Fatal("expected allocated instances")
		}
		if a == b {
			t.Error("expected distinct transient instances")
		}
	})

	t.Run("value types use the zero value", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[settings]("settings")
		MustRegister(c, key, Singleton)
		if got := MustResolve(c, key); got.Field != "" {
			t.Errorf("expected zero value, got %+v", got)
		}
	})

	t.Run("maps are made", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[map[string]int]("counts")
		MustRegister(c, key, Singleton)
		m := MustResolve(c, key)
		m["a"] = 1
		if MustResolve(c, key)["a"] != 1 {
			t.Error("expected singleton map to be shared")
		}
	})

	t.Run("implementation behind interface key", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[identified]("identified")
		MustRegister(c, key, Singleton, WithImplementation[*impl]())
		got := MustResolve(c, key)
		if _, ok := got.(*impl); !ok {
			t.Errorf("expected *impl, got %T", got)
		}
	})

	t.Run("initializer runs", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[*initCounter]("init")
		MustRegister(c, key, Transient)
		if !MustResolve(c, key).Ready {
			t.Error("expected Init to run on default-constructed instance")
		}
	})

	t.Run("initializer runs on value types", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[initCounter]("init")
		MustRegister(c, key, Transient)
		if !MustResolve(c, key).Ready {
			t.Error("expected pointer-receiver Init to run on default-constructed value")
		}
	})

	t.Run("zero-size pointer transient is rejected", func(t *testing.T) {
		c := newTestContainer()
		err := Register(c, NewKey[*clock]("clock"), Transient)
		if !errors.HasCode(err, errors.ErrCodeInvalidRegistration) {
			t.Fatalf("expected INVALID_REGISTRATION, got %v", err)
		}
		if c.Has("clock") {
			t.Error("expected rejected key to stay unregistered")
		}
	})

	t.Run("zero-size pointer singleton is allowed", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[*clock]("clock")
		MustRegister(c, key, Singleton)
		if MustResolve(c, key) != MustResolve(c, key) {
			t.Error("expected singleton to be cached")
		}
	})

	t.Run("zero-size value transient is allowed", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[clock]("clock")
		MustRegister(c, key, Transient)
		if _, err := Resolve(c, key); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("initializer error propagates", func(t *testing.T) {
		c := newTestContainer()
		key := NewKey[*failingInit]("init")
		MustRegister(c, key, Singleton)
		_, err := Resolve(c, key)
		if err == nil || !strings.Contains(err.Error(), "init failed") {
			t.Errorf("expected Init error, got %v", err)
		}
	})
}

func TestMustRegisterPanics(t *testing.T) {
	c := newTestContainer()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustRegister to panic on invalid registration")
		}
	}()
	MustRegister(c, NewKey[identified]("iface"), Singleton)
}

func TestLifetimeText(t *testing.T) {
	tests := []struct {
		in      string
		want    Lifetime
		wantErr bool
	}{
		{"singleton", Singleton, false},
		{"Transient", Transient, false},
		{" SINGLETON ", Singleton, false},
		{"scoped", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var l Lifetime
			err := l.UnmarshalText([]byte(tc.in))
			if (err != nil) != tc.wantErr {
				t.Fatalf("UnmarshalText(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if l != tc.want {
				t.Errorf("expected %v, got %v", tc.want, l)
			}
		})
	}

	if _, err := Lifetime(9).MarshalText(); err == nil {
		t.Error("expected MarshalText to reject invalid lifetime")
	}
	if Lifetime(9).String() != "lifetime(9)" {
		t.Errorf("unexpected String for invalid lifetime: %s", Lifetime(9))
	}
}

func TestKey(t *testing.T) {
	k := NewKey[*impl]("svc")
	if k.Name() != "svc" {
		t.Errorf("expected name 'svc', got %q", k.Name())
	}
	if k.String() != "svc(*di.impl)" {
		t.Errorf("unexpected key string %q", k.String())
	}
	if NewKey[*impl]("svc") != k {
		t.Error("expected keys with same name and type to be equal")
	}
}
