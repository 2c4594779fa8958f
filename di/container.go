package di

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/kbukum/dikit/errors"
	"github.com/kbukum/dikit/logger"
)

// Resolver is the read side of a container. Factories receive a Resolver so
// they can pull in their own dependencies.
type Resolver interface {
	Resolve(key string) (interface{}, error)
	ResolveContext(ctx context.Context, key string) (interface{}, error)
}

// Container defines the interface for a dependency injection container.
type Container interface {
	Resolver

	Register(key string, lifetime Lifetime, opts ...RegisterOption) error

	// Freeze closes the registration phase. Later Register calls fail.
	Freeze()
	Frozen() bool

	// Introspection
	ID() string
	Has(key string) bool
	Len() int
	Registrations() []RegistrationInfo
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key                string   `json:"key"`
	Lifetime           Lifetime `json:"lifetime"`
	KeyType            string   `json:"key_type"`
	ImplType           string   `json:"impl_type"`
	DefaultConstructed bool     `json:"default_constructed"`
	// Initialized is true once a singleton slot holds its instance. It is
	// always false for transients.
	Initialized bool `json:"initialized"`
}

// descriptor is the immutable description of one registration.
type descriptor struct {
	key                string
	lifetime           Lifetime
	factory            factoryFunc
	keyType            reflect.Type
	implType           reflect.Type
	defaultConstructed bool
}

// slot holds the lazily built instance of a singleton registration.
// Empty until the first successful resolve; never reset.
type slot struct {
	mu        sync.RWMutex
	instance  interface{}
	populated bool
}

func (s *slot) get() (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instance, s.populated
}

func (s *slot) set(instance interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instance = instance
	s.populated = true
}

// UnifiedContainer is the default Container implementation.
//
// Registration and resolution may run from any goroutine. Factories run
// without the registry lock held, so they can resolve other keys. There is
// no cycle detection: a singleton whose factory resolves itself, directly or
// through another factory, blocks forever.
type UnifiedContainer struct {
	id          string
	descriptors map[string]*descriptor
	slots       map[string]*slot
	frozen      bool
	mutex       sync.RWMutex

	// construction serializes first resolutions of the same singleton key.
	construction singleflight.Group

	log            *logger.Logger
	logResolutions bool
	inst           *instruments
}

// NewContainer creates an empty container.
func NewContainer(opts ...ContainerOption) Container {
	o := resolveContainerOptions(opts)

	id := uuid.NewString()
	log := o.logger
	if log == nil {
		log = logger.Get("di")
	}
	log = log.WithFields(map[string]interface{}{logger.FieldContainerID: id})

	inst, err := newInstruments(o.meterProvider, o.tracerProvider)
	if err != nil {
		log.Warn("Container instrumentation unavailable", logger.ErrorFields("instruments", err))
	}

	return &UnifiedContainer{
		id:             id,
		descriptors:    make(map[string]*descriptor),
		slots:          make(map[string]*slot),
		log:            log,
		logResolutions: o.config.LogResolutions,
		inst:           inst,
	}
}

// Register validates the options and stores a descriptor under key.
// Nothing is constructed here.
func (c *UnifiedContainer) Register(key string, lifetime Lifetime, opts ...RegisterOption) error {
	reg := &registration{}
	for _, opt := range opts {
		opt(reg)
	}

	d, err := reg.compile(key, lifetime)
	if err != nil {
		c.log.Debug("Registration rejected", logger.Fields(logger.FieldKey, key, logger.FieldError, err.Error()))
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.frozen {
		return errors.ContainerFrozen(key)
	}
	if _, exists := c.descriptors[key]; exists {
		return errors.DuplicateRegistration(key)
	}

	c.descriptors[key] = d
	if lifetime == Singleton {
		c.slots[key] = &slot{}
	}

	c.log.Debug("Component registered", logger.Fields(
		logger.FieldKey, key,
		logger.FieldLifetime, lifetime.String(),
		"impl_type", d.implType.String(),
		"default_constructed", d.defaultConstructed,
	))
	return nil
}

// Resolve returns the instance registered under key.
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	return c.ResolveContext(context.Background(), key)
}

// ResolveContext returns the instance registered under key, passing ctx to
// context-aware factories.
func (c *UnifiedContainer) ResolveContext(ctx context.Context, key string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mutex.RLock()
	d, exists := c.descriptors[key]
	s := c.slots[key]
	c.mutex.RUnlock()

	if !exists {
		c.inst.recordResolution(ctx, key, 0, outcomeNotRegistered)
		return nil, errors.NotRegistered(key)
	}

	switch d.lifetime {
	case Transient:
		instance, err := c.construct(ctx, d)
		c.inst.recordResolution(ctx, key, d.lifetime, outcomeOf(err, false))
		return instance, err
	case Singleton:
		return c.resolveSingleton(ctx, d, s)
	default:
		return nil, fmt.Errorf("unknown lifetime for component: %s", key)
	}
}

func (c *UnifiedContainer) resolveSingleton(ctx context.Context, d *descriptor, s *slot) (interface{}, error) {
	if instance, ok := s.get(); ok {
		c.inst.recordResolution(ctx, d.key, d.lifetime, outcomeCached)
		return instance, nil
	}

	// Concurrent first resolutions share one factory call. The slot is
	// populated before Do returns, so late arrivals hit the fast path above.
	constructed := false
	instance, err, _ := c.construction.Do(d.key, func() (interface{}, error) {
		if instance, ok := s.get(); ok {
			return instance, nil
		}
		instance, err := c.construct(ctx, d)
		if err != nil {
			return nil, err
		}
		s.set(instance)
		constructed = true
		return instance, nil
	})

	c.inst.recordResolution(ctx, d.key, d.lifetime, outcomeOf(err, !constructed))
	return instance, err
}

// construct invokes the factory once, converting panics into errors.
func (c *UnifiedContainer) construct(ctx context.Context, d *descriptor) (instance interface{}, err error) {
	ctx, span := c.inst.startConstruct(ctx, d)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = errors.ConstructionFailed(d.key, fmt.Errorf("factory panicked: %v", r))
		}

		elapsed := time.Since(start)
		c.inst.endConstruct(ctx, span, d, elapsed, err)

		fields := logger.DurationFields("construct", elapsed)
		fields[logger.FieldKey] = d.key
		fields[logger.FieldLifetime] = d.lifetime.String()
		if err != nil {
			c.log.Warn("Component construction failed", logger.MergeWithError(fields, err))
			return
		}
		if c.logResolutions {
			c.log.Info("Component constructed", fields)
		} else {
			c.log.Debug("Component constructed", fields)
		}
	}()

	return d.factory(ctx, c)
}

// Freeze closes the registration phase.
func (c *UnifiedContainer) Freeze() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.frozen {
		c.frozen = true
		c.log.Debug("Container frozen", logger.Fields("registrations", len(c.descriptors)))
	}
}

// Frozen reports whether Freeze has been called.
func (c *UnifiedContainer) Frozen() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.frozen
}

// ID returns the unique identifier of this container instance.
func (c *UnifiedContainer) ID() string { return c.id }

// Has reports whether key is registered.
func (c *UnifiedContainer) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, exists := c.descriptors[key]
	return exists
}

// Len returns the number of registrations.
func (c *UnifiedContainer) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.descriptors)
}

// Registrations returns info about all registered components, sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.descriptors))
	for key, d := range c.descriptors {
		info := RegistrationInfo{
			Key:                key,
			Lifetime:           d.lifetime,
			KeyType:            d.keyType.String(),
			ImplType:           d.implType.String(),
			DefaultConstructed: d.defaultConstructed,
		}
		if s, ok := c.slots[key]; ok {
			_, info.Initialized = s.get()
		}
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}
