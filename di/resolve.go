package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/dikit/errors"
)

// Register registers key with the given lifetime. The key's type is pinned
// to T, so any factory result or implementation type must be assignable to T.
//
// Example:
//
//	var Users = di.NewKey[UserStore]("user_store")
//
//	err := di.Register(c, Users, di.Singleton,
//	    di.WithImplementation[*pgUserStore](),
//	    di.WithFactory(func(r di.Resolver) (*pgUserStore, error) {
//	        db, err := di.Resolve(r, DB)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return &pgUserStore{db: db}, nil
//	    }),
//	)
func Register[T any](c Container, key Key[T], lifetime Lifetime, opts ...RegisterOption) error {
	all := make([]RegisterOption, 0, len(opts)+1)
	all = append(all, withKeyType(reflect.TypeFor[T]()))
	all = append(all, opts...)
	return c.Register(key.Name(), lifetime, all...)
}

// MustRegister is like Register but panics on error. Use it in start-up code
// where a bad registration is a programming error.
func MustRegister[T any](c Container, key Key[T], lifetime Lifetime, opts ...RegisterOption) {
	if err := Register(c, key, lifetime, opts...); err != nil {
		panic(fmt.Sprintf("di: failed to register %s: %v", key, err))
	}
}

// Resolve resolves a component with type safety, returns error on failure.
// Factory errors are wrapped with %w, so errors.Is still matches them.
//
// Example:
//
//	users, err := di.Resolve(c, Users)
//	if err != nil {
//	    return fmt.Errorf("failed to get user store: %w", err)
//	}
func Resolve[T any](r Resolver, key Key[T]) (T, error) {
	return ResolveContext(context.Background(), r, key)
}

// ResolveContext is Resolve with a context passed to context-aware factories.
func ResolveContext[T any](ctx context.Context, r Resolver, key Key[T]) (T, error) {
	var zero T
	instance, err := r.ResolveContext(ctx, key.Name())
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", key.Name(), err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.TypeMismatch(key.Name(), fmt.Sprintf("%T", instance), key.Type().String())
	}
	return result, nil
}

// MustResolve resolves a component with type safety, panics on error.
func MustResolve[T any](r Resolver, key Key[T]) T {
	result, err := Resolve(r, key)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryResolve resolves a component, returns zero value and false if it is
// not registered, cannot be built, or has the wrong type.
// Use this when a dependency is optional.
//
// Example:
//
//	if metrics, ok := di.TryResolve(c, Metrics); ok {
//	    metrics.RecordEvent(...)
//	}
func TryResolve[T any](r Resolver, key Key[T]) (T, bool) {
	result, err := Resolve(r, key)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// IsNotRegistered reports whether err comes from resolving an unknown key,
// including a nested dependency that a factory tried to resolve. Use
// MissingKey to find out which key was missing.
func IsNotRegistered(err error) bool {
	return errors.HasCode(err, errors.ErrCodeNotRegistered)
}

// MissingKey returns the key whose lookup failed when err is a NOT_REGISTERED
// error. For a factory that failed on its own dependency this is the
// dependency's key, not the key that was resolved.
func MissingKey(err error) (string, bool) {
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotRegistered {
		return "", false
	}
	key, ok := appErr.Details["key"].(string)
	return key, ok
}

// IsDuplicateRegistration reports whether err comes from registering a key twice.
func IsDuplicateRegistration(err error) bool {
	return errors.HasCode(err, errors.ErrCodeDuplicateRegistration)
}

// IsMissingFactory reports whether err comes from a registration that has no
// factory and cannot be default-constructed.
func IsMissingFactory(err error) bool {
	return errors.HasCode(err, errors.ErrCodeMissingFactory)
}

// IsFrozen reports whether err comes from registering into a frozen container.
func IsFrozen(err error) bool {
	return errors.HasCode(err, errors.ErrCodeContainerFrozen)
}
