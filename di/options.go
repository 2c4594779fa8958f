package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/dikit/errors"
)

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

// Initializer is implemented by types that need setup after default
// construction. Init runs once per constructed instance.
type Initializer interface {
	Init() error
}

// registration collects the options for one Register call before they are
// validated and frozen into a descriptor.
type registration struct {
	factory  any
	implType reflect.Type
	keyType  reflect.Type
}

// WithFactory supplies the function that builds instances. Accepted shapes:
//
//	func() T
//	func() (T, error)
//	func(context.Context) (T, error)
//	func(di.Resolver) (T, error)
//	func(context.Context, di.Resolver) (T, error)
//
// Any of the single-result forms may also omit the error. Without a
// factory the implementation type is default-constructed.
func WithFactory(fn any) RegisterOption {
	return func(r *registration) {
		r.factory = fn
	}
}

// WithImplementation declares the concrete type I produced for the key,
// when it differs from the key's type (an interface key backed by a struct
// implementation). I must be assignable to the key type.
func WithImplementation[I any]() RegisterOption {
	return func(r *registration) {
		r.implType = reflect.TypeFor[I]()
	}
}

// withKeyType pins the key type; used by the generic Register entry point.
func withKeyType(t reflect.Type) RegisterOption {
	return func(r *registration) {
		r.keyType = t
	}
}

// factoryFunc is the normalized form every factory is converted into.
type factoryFunc func(ctx context.Context, r Resolver) (any, error)

var (
	contextType  = reflect.TypeFor[context.Context]()
	resolverType = reflect.TypeFor[Resolver]()
	errorType    = reflect.TypeFor[error]()
)

// compile validates the collected options and produces a descriptor.
func (r *registration) compile(key string, lifetime Lifetime) (*descriptor, error) {
	if key == "" {
		return nil, errors.InvalidRegistration(key, "key name is empty")
	}
	if !lifetime.valid() {
		return nil, errors.InvalidRegistration(key, fmt.Sprintf("unknown lifetime %d", int(lifetime)))
	}

	d := &descriptor{key: key, lifetime: lifetime}

	var produced reflect.Type
	if r.factory != nil {
		fn, out, err := normalizeFactory(key, r.factory)
		if err != nil {
			return nil, err
		}
		d.factory = fn
		produced = out
	}

	implType := r.implType
	if implType == nil {
		implType = produced
	}
	if implType == nil {
		implType = r.keyType
	}
	if implType == nil {
		return nil, errors.MissingFactory(key, "no factory and no implementation type")
	}

	if produced != nil && !produced.AssignableTo(implType) {
		return nil, errors.TypeMismatch(key, produced.String(), implType.String())
	}

	keyType := r.keyType
	if keyType == nil {
		keyType = implType
	}
	if !implType.AssignableTo(keyType) {
		return nil, errors.TypeMismatch(key, implType.String(), keyType.String())
	}

	if d.factory == nil {
		if reason := defaultConstructible(implType); reason != "" {
			return nil, errors.MissingFactory(key, reason)
		}
		if lifetime == Transient && isZeroSizePointer(implType) {
			return nil, errors.InvalidRegistration(key, fmt.Sprintf(
				"%s points to a zero-size type, so transient instances would share one address; supply a factory or use a value type", implType))
		}
		d.factory = defaultConstructor(implType)
		d.defaultConstructed = true
	}

	d.keyType = keyType
	d.implType = implType
	return d, nil
}

// normalizeFactory checks the factory signature and adapts it to factoryFunc.
func normalizeFactory(key string, factory any) (factoryFunc, reflect.Type, error) {
	fn := reflect.ValueOf(factory)
	if fn.Kind() != reflect.Func {
		return nil, nil, errors.InvalidRegistration(key, fmt.Sprintf("factory must be a function, got %T", factory))
	}
	if fn.IsNil() {
		return nil, nil, errors.InvalidRegistration(key, "factory is a nil function")
	}

	fnType := fn.Type()
	if fnType.IsVariadic() {
		return nil, nil, errors.InvalidRegistration(key, "factory must not be variadic")
	}

	var args []func(ctx context.Context, r Resolver) reflect.Value
	for i := 0; i < fnType.NumIn(); i++ {
		switch in := fnType.In(i); {
		case in == contextType:
			args = append(args, func(ctx context.Context, _ Resolver) reflect.Value {
				return reflect.ValueOf(&ctx).Elem()
			})
		case in == resolverType:
			args = append(args, func(_ context.Context, r Resolver) reflect.Value {
				return reflect.ValueOf(&r).Elem()
			})
		default:
			return nil, nil, errors.InvalidRegistration(key,
				fmt.Sprintf("factory parameter %d has type %s; only context.Context and di.Resolver are supplied", i, in))
		}
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if fnType.Out(1) != errorType {
			return nil, nil, errors.InvalidRegistration(key, "factory second result must be error")
		}
	default:
		return nil, nil, errors.InvalidRegistration(key, "factory must return either (instance) or (instance, error)")
	}

	out := fnType.Out(0)
	if out == errorType {
		return nil, nil, errors.InvalidRegistration(key, "factory must return an instance, not only an error")
	}

	call := func(ctx context.Context, r Resolver) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			in[i] = arg(ctx, r)
		}
		results := fn.Call(in)
		if len(results) == 2 && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		if isNilInstance(results[0]) {
			return nil, errors.ConstructionFailed(key, fmt.Errorf("factory returned nil %s", out))
		}
		return results[0].Interface(), nil
	}
	return call, out, nil
}

// defaultConstructible returns an empty string when t can be built without a
// factory, or the reason it cannot.
func defaultConstructible(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Interface:
		return fmt.Sprintf("%s is an interface; supply a factory or an implementation type", t)
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return fmt.Sprintf("%s has no usable zero value; supply a factory", t)
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Interface {
			return fmt.Sprintf("%s points to an interface; supply a factory", t)
		}
	}
	return ""
}

// defaultConstructor builds zero values of t. Pointer types get a freshly
// allocated element so every call yields a distinct instance. Init runs on
// the addressable value, so pointer-receiver Init methods of value types are
// honored too.
func defaultConstructor(t reflect.Type) factoryFunc {
	return func(context.Context, Resolver) (any, error) {
		var v reflect.Value
		switch t.Kind() {
		case reflect.Pointer:
			v = reflect.New(t.Elem())
		case reflect.Map:
			v = reflect.New(t)
			v.Elem().Set(reflect.MakeMap(t))
		default:
			v = reflect.New(t)
		}

		if init, ok := v.Interface().(Initializer); ok {
			if err := init.Init(); err != nil {
				return nil, err
			}
		}
		if t.Kind() == reflect.Pointer {
			return v.Interface(), nil
		}
		return v.Elem().Interface(), nil
	}
}

// isZeroSizePointer reports whether t is a pointer to a type with no size.
// The runtime may hand out the same address for every such allocation.
func isZeroSizePointer(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && t.Elem().Size() == 0
}

func isNilInstance(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}
