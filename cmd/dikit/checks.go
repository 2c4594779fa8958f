package main

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/dikit/di"
)

// check is one self-test of container behavior.
type check struct {
	name string
	run  func(ctx context.Context, c di.Container, d *demo) error
}

var demoChecks = []check{
	{"singleton identity", checkSingletonIdentity},
	{"transient distinctness", checkTransientDistinct},
	{"factory field override", checkFieldOverride},
	{"unregistered key", checkUnregistered},
	{"key identity drives lookup", checkKeyIdentity},
	{"nested resolution", checkNested},
}

// runChecks runs every check and reports each result to w. It returns an
// error naming the number of failed checks.
func runChecks(ctx context.Context, c di.Container, d *demo, w io.Writer) error {
	failed := 0
	for _, ch := range demoChecks {
		if err := ch.run(ctx, c, d); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", ch.name, err)
			continue
		}
		fmt.Fprintf(w, "ok    %s\n", ch.name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(demoChecks))
	}
	return nil
}

func checkSingletonIdentity(ctx context.Context, c di.Container, d *demo) error {
	first, err := di.ResolveContext(ctx, c, keyA)
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		again, err := di.ResolveContext(ctx, c, keyA)
		if err != nil {
			return err
		}
		if again != first {
			return fmt.Errorf("resolve %d returned a different instance", i+2)
		}
	}
	if n := d.aBuilds.Load(); n != 1 {
		return fmt.Errorf("factory ran %d times, want 1", n)
	}
	return nil
}

func checkTransientDistinct(ctx context.Context, c di.Container, _ *demo) error {
	first, err := di.ResolveContext(ctx, c, keyCounter)
	if err != nil {
		return err
	}
	second, err := di.ResolveContext(ctx, c, keyCounter)
	if err != nil {
		return err
	}
	if first == second {
		return fmt.Errorf("two resolves returned the same instance")
	}
	if first.Inc() != 1 || second.Inc() != 1 {
		return fmt.Errorf("instances share state")
	}
	return nil
}

func checkFieldOverride(ctx context.Context, c di.Container, d *demo) error {
	for i := 0; i < 2; i++ {
		s, err := di.ResolveContext(ctx, c, keySettings)
		if err != nil {
			return err
		}
		if s.Field != "X" {
			return fmt.Errorf("Field = %q, want %q", s.Field, "X")
		}
	}
	if n := d.settingsBuilds.Load(); n != 1 {
		return fmt.Errorf("factory ran %d times, want 1", n)
	}
	return nil
}

func checkUnregistered(ctx context.Context, c di.Container, _ *demo) error {
	before := c.Len()
	_, err := di.ResolveContext(ctx, c, keyMissing)
	if !di.IsNotRegistered(err) {
		return fmt.Errorf("expected NOT_REGISTERED, got %v", err)
	}
	if c.Len() != before || c.Has(keyMissing.Name()) {
		return fmt.Errorf("failed lookup changed the container")
	}
	return nil
}

func checkKeyIdentity(ctx context.Context, c di.Container, d *demo) error {
	for i := 0; i < 2; i++ {
		a, err := di.ResolveContext(ctx, c, keyA)
		if err != nil {
			return err
		}
		impl, err := di.ResolveContext(ctx, c, keyImpl)
		if err != nil {
			return err
		}
		if a.Identity() != "1" {
			return fmt.Errorf("A resolved to %q, want %q", a.Identity(), "1")
		}
		if impl.ID != "2" {
			return fmt.Errorf("Impl resolved to %q, want %q", impl.ID, "2")
		}
	}
	if n := d.implBuilds.Load(); n != 1 {
		return fmt.Errorf("Impl factory ran %d times, want 1", n)
	}
	return nil
}

func checkNested(ctx context.Context, c di.Container, _ *demo) error {
	g, err := di.ResolveContext(ctx, c, keyGreeter)
	if err != nil {
		return err
	}
	if got, want := g.Greet("world"), "hello world from X"; got != want {
		return fmt.Errorf("Greet = %q, want %q", got, want)
	}
	return nil
}
