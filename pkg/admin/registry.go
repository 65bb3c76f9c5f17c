package admin

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/internal/logging"
)

// Registry binds models to backends and stores the resulting adapters by
// name. Backends are consulted in registration order; the first whose
// ModelDetect accepts a candidate builds its adapter.
type Registry struct {
	mu       sync.RWMutex
	backends []Backend
	admins   map[string]ModelAdmin
}

// NewRegistry creates a registry over the supplied backends.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{admins: make(map[string]ModelAdmin)}
	for _, backend := range backends {
		if backend != nil {
			r.backends = append(r.backends, backend)
		}
	}
	return r
}

// AddBackend appends a backend. Duplicate backend names return an error.
func (r *Registry) AddBackend(backend Backend) error {
	if backend == nil {
		return errors.New("admin: backend is required")
	}
	name := normalizeName(backend.Name())
	if name == "" {
		return errors.New("admin: backend name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.backends {
		if normalizeName(existing.Name()) == name {
			return errors.Wrapf(ErrDuplicate, "backend %q", name)
		}
	}
	r.backends = append(r.backends, backend)
	return nil
}

// Backends lists backend names in registration order.
func (r *Registry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for _, backend := range r.backends {
		names = append(names, normalizeName(backend.Name()))
	}
	return names
}

// Detect returns the first backend accepting candidate.
func (r *Registry) Detect(candidate any) (Backend, bool) {
	if r == nil || candidate == nil {
		return nil, false
	}
	r.mu.RLock()
	backends := append([]Backend(nil), r.backends...)
	r.mu.RUnlock()

	for _, backend := range backends {
		if safeDetect(backend, candidate) {
			return backend, true
		}
	}
	return nil, false
}

// Register builds an adapter for candidate with the first detecting backend
// and stores it under its name.
func (r *Registry) Register(candidate any, cfg Config) (ModelAdmin, error) {
	backend, ok := r.Detect(candidate)
	if !ok {
		return nil, errors.Wrapf(ErrNoBackend, "%T", candidate)
	}

	adapter, err := backend.NewAdmin(candidate, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "admin: %s backend", backend.Name())
	}
	name := normalizeName(adapter.Name())
	if name == "" {
		return nil, errors.New("admin: adapter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.admins[name]; exists {
		return nil, errors.Wrapf(ErrDuplicate, "admin %q", name)
	}
	r.admins[name] = adapter

	logging.New(cfg.Logger, "[admin]").Debug("registered %s with %s backend", name, backend.Name())
	return adapter, nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(candidate any, cfg Config) ModelAdmin {
	adapter, err := r.Register(candidate, cfg)
	if err != nil {
		panic(err)
	}
	return adapter
}

// Get retrieves an adapter by name.
func (r *Registry) Get(name string) (ModelAdmin, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, errors.New("admin: name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.admins[key]
	if !ok {
		return nil, errors.Newf("admin: %q not found", key)
	}
	return adapter, nil
}

// Has reports whether an adapter is registered under name.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Names returns the sorted adapter names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.admins))
	for name := range r.admins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func safeDetect(backend Backend, candidate any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return backend.ModelDetect(candidate)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
