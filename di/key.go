package di

import (
	"fmt"
	"reflect"
)

// Key is an explicit registration token. The name is the lookup identity
// inside a container; T is the type that resolving the key yields.
//
// Keys are comparable values, so they can be declared once as package
// variables or recreated wherever they are needed:
//
//	var UserStore = di.NewKey[store.Users]("user_store")
type Key[T any] struct {
	name string
}

// NewKey creates a typed key with the given name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the registry name of the key.
func (k Key[T]) Name() string { return k.name }

// Type returns the type the key resolves to.
func (k Key[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// String returns the name together with the resolved type, e.g. "cache(*redis.Client)".
func (k Key[T]) String() string {
	return fmt.Sprintf("%s(%s)", k.name, k.Type())
}
