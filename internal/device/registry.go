package device

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Checker runs the behavioural check on a structurally valid composite device.
type Checker func(*Device) error

// Registry is the table of declared devices. It validates declarations
// against the devices already declared, persists them through a Repository
// and keeps the validated devices in an in-memory cache.
//
// The cache is populated on startup via RefreshCache(). Cached devices are
// immutable and shared with callers.
//
// All public methods are thread-safe.
type Registry struct {
	repo      Repository
	check     Checker
	cache     map[string]*Device // Validated devices by name
	cacheMu   sync.RWMutex       // Protects cache
	declareMu sync.Mutex         // Serialises Declare and DeleteDevice
	logger    Logger
}

// NewRegistry creates a new device registry.
// repo may be nil for a purely in-memory registry. check runs on every
// composite declaration; nil limits validation to structural checks.
func NewRegistry(repo Repository, check Checker) *Registry {
	return &Registry{
		repo:   repo,
		check:  check,
		cache:  make(map[string]*Device),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Lookup implements Lookup over the cached devices.
func (r *Registry) Lookup(name string) (*Device, bool) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	d, ok := r.cache[name]
	return d, ok
}

// Validate checks a declaration against the declared devices without
// storing it.
func (r *Registry) Validate(decl *Declaration) (*Device, error) {
	return r.validate(decl, r)
}

func (r *Registry) validate(decl *Declaration, declared Lookup) (*Device, error) {
	d, err := Validate(decl, declared)
	if err != nil {
		return nil, err
	}
	if d.IsComposite() && r.check != nil {
		if err := r.check(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Declare validates a declaration and adds the device to the registry.
// Returns ErrDeviceExists if the name is taken.
func (r *Registry) Declare(ctx context.Context, decl *Declaration) (*Device, error) {
	r.declareMu.Lock()
	defer r.declareMu.Unlock()

	if _, ok := r.Lookup(decl.Name); ok {
		return nil, fmt.Errorf("%w: %q", ErrDeviceExists, decl.Name)
	}

	d, err := r.Validate(decl)
	if err != nil {
		return nil, err
	}

	if r.repo != nil {
		if err := r.repo.Create(ctx, decl); err != nil {
			return nil, fmt.Errorf("storing device %s: %w", decl.Name, err)
		}
	}

	r.cacheMu.Lock()
	r.cache[d.Name] = d
	r.cacheMu.Unlock()

	r.logger.Info("device declared", "name", d.Name, "composite", d.IsComposite())
	return d, nil
}

// DeclareAll declares a batch of declarations, dependencies first.
// It stops at the first failure and returns the devices declared so far.
func (r *Registry) DeclareAll(ctx context.Context, decls []Declaration) ([]*Device, error) {
	ordered, err := Order(decls)
	if err != nil {
		return nil, err
	}

	devices := make([]*Device, 0, len(ordered))
	for i := range ordered {
		d, err := r.Declare(ctx, &ordered[i])
		if err != nil {
			return devices, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// RefreshCache reloads all declarations from the repository, re-validates
// them in dependency order and replaces the cache.
// Declarations that no longer validate are logged and left out.
func (r *Registry) RefreshCache(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}

	decls, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}
	ordered, err := Order(decls)
	if err != nil {
		return fmt.Errorf("ordering devices: %w", err)
	}

	fresh := make(Catalog, len(ordered))
	for i := range ordered {
		d, err := r.validate(&ordered[i], fresh)
		if err != nil {
			r.logger.Warn("stored device no longer valid", "name", ordered[i].Name, "error", err)
			continue
		}
		fresh[d.Name] = d
	}

	r.cacheMu.Lock()
	r.cache = fresh
	r.cacheMu.Unlock()

	r.logger.Info("device cache refreshed", "count", len(fresh), "stored", len(decls))
	return nil
}

// GetDevice retrieves a device by name.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) GetDevice(ctx context.Context, name string) (*Device, error) {
	if d, ok := r.Lookup(name); ok {
		return d, nil
	}
	if r.repo == nil {
		return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}

	// Fall back to repository (might be stored by another process)
	decl, err := r.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	d, err := r.Validate(decl)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[name] = d
	r.cacheMu.Unlock()
	return d, nil
}

// ListDevices returns all cached devices ordered by name.
func (r *Registry) ListDevices() []*Device {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	devices := make([]*Device, 0, len(r.cache))
	for _, d := range r.cache {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices
}

// GetDeviceCount returns the number of cached devices.
func (r *Registry) GetDeviceCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// DeleteDevice removes a device.
// Returns ErrDeviceInUse if another device uses it as a component type.
func (r *Registry) DeleteDevice(ctx context.Context, name string) error {
	r.declareMu.Lock()
	defer r.declareMu.Unlock()

	if _, ok := r.Lookup(name); !ok {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	if users := r.usersOf(name); len(users) > 0 {
		return fmt.Errorf("%w: %q is used by %s", ErrDeviceInUse, name, strings.Join(users, ", "))
	}

	if r.repo != nil {
		if err := r.repo.Delete(ctx, name); err != nil && !errors.Is(err, ErrDeviceNotFound) {
			return err
		}
	}

	r.cacheMu.Lock()
	delete(r.cache, name)
	r.cacheMu.Unlock()

	r.logger.Info("device deleted", "name", name)
	return nil
}

func (r *Registry) usersOf(name string) []string {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	var users []string
	for _, d := range r.cache {
		for _, u := range d.Uses {
			if u == name {
				users = append(users, d.Name)
				break
			}
		}
	}
	sort.Strings(users)
	return users
}

// Order sorts declarations so that every declaration comes after the ones
// it depends on. Declarations keep their input order where dependencies
// allow. Dependencies outside the batch are ignored.
//
// Returns ErrDuplicate if two declarations share a name and
// ErrDependencyCycle if the declarations depend on each other in a cycle.
func Order(decls []Declaration) ([]Declaration, error) {
	index := make(map[string]int, len(decls))
	for i, d := range decls {
		if _, ok := index[d.Name]; ok {
			return nil, fmt.Errorf("%w: device %q", ErrDuplicate, d.Name)
		}
		index[d.Name] = i
	}

	done := make([]bool, len(decls))
	ordered := make([]Declaration, 0, len(decls))
	for len(ordered) < len(decls) {
		progressed := false
		for i, d := range decls {
			if done[i] || !ready(d, index, done) {
				continue
			}
			done[i] = true
			ordered = append(ordered, d)
			progressed = true
			break
		}
		if !progressed {
			var stuck []string
			for i, d := range decls {
				if !done[i] {
					stuck = append(stuck, d.Name)
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
	}
	return ordered, nil
}

func ready(d Declaration, index map[string]int, done []bool) bool {
	for _, dep := range d.Dependencies() {
		if j, ok := index[dep]; ok && !done[j] {
			return false
		}
	}
	return true
}
