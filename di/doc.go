// Package di provides a dependency injection container with singleton and
// transient lifetimes.
//
// Services are registered under explicit keys. A Key[T] pairs a name, which
// is the lookup identity, with the type T a resolution yields, so the same
// concrete type can be registered under several keys and an interface key
// can be backed by a separate implementation type.
//
// # Registration
//
//	var Greeter = di.NewKey[Greeter]("greeter")
//
//	err := di.Register(c, Greeter, di.Singleton,
//	    di.WithImplementation[*englishGreeter](),
//	    di.WithFactory(func() *englishGreeter { return &englishGreeter{} }),
//	)
//
// Without WithFactory the implementation type is default-constructed; types
// that cannot be (interfaces, funcs, channels) are rejected at registration
// with a MISSING_FACTORY error. Registering a key twice is rejected.
//
// # Resolution
//
//	g, err := di.Resolve(c, Greeter)
//
// Singletons are built on first resolve and cached; concurrent first
// resolutions share a single factory call. Transients are built on every
// resolve. Factory errors are returned unchanged.
//
// # Limitations
//
// Factories may resolve other keys, but the container does not track the
// dependency chain. Singletons whose factories resolve each other never
// complete.
//
// Default construction of a Transient whose implementation is a pointer to a
// zero-size type (such as *struct{}) is rejected at registration, since every
// allocation may share one address. Factories that return such pointers have
// the same limitation.
package di
