package unsharp

import (
	"fmt"
	"sort"
	"sync"
)

// Built-in backend names.
const (
	// BackendSequential is the single-goroutine row-major reference backend.
	BackendSequential = "sequential"

	// BackendParallel is the tile-parallel CPU backend.
	BackendParallel = "parallel"

	// BackendGPU is the wgpu compute backend, registered by importing
	// github.com/gogpu/unsharp/gpu.
	BackendGPU = "gpu"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for DefaultBackend (first one that can be created wins).
	backendPriority = []string{BackendGPU, BackendParallel, BackendSequential}
)

func init() {
	RegisterBackend(BackendSequential, func() (Backend, error) {
		return NewSequentialBackend(), nil
	})
	RegisterBackend(BackendParallel, func() (Backend, error) {
		return NewParallelBackend(), nil
	})
}

// RegisterBackend registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func RegisterBackend(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// UnregisterBackend removes a backend from the registry.
func UnregisterBackend(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// NewBackend creates the named backend.
// The current Logger is propagated to backends that accept one.
// Returns an error wrapping ErrBackendNotAvailable if the name is unknown
// or the factory fails.
func NewBackend(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrBackendNotAvailable, name)
	}

	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotAvailable, name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s: factory returned nil", ErrBackendNotAvailable, name)
	}

	propagateLogger(b, Logger())
	Logger().Info("backend created", "backend", b.Name())
	return b, nil
}

// DefaultBackend creates the highest-priority backend that is available.
// Priority order: gpu > parallel > sequential, then any other registered
// backend in name order.
func DefaultBackend() (Backend, error) {
	tried := make(map[string]bool)
	var lastErr error

	for _, name := range append(backendPriority, Backends()...) {
		if tried[name] || !IsRegistered(name) {
			continue
		}
		tried[name] = true

		b, err := NewBackend(name)
		if err == nil {
			return b, nil
		}
		Logger().Warn("backend unavailable", "backend", name, "err", err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no backends registered", ErrBackendNotAvailable)
	}
	return nil, lastErr
}
