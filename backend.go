package unsharp

import "sync/atomic"

// Backend executes kernels over their full index space.
//
// Every backend computes the same pixel values for BlurKernel and
// CombineKernel, up to floating-point accumulation order, which may shift a
// channel by at most one step between backends. Dispatch returns only after
// every output pixel has been written, so each call is one synchronization
// barrier: the next stage may read the output immediately.
//
// Backends never fall back to another backend on failure. A data-parallel
// backend that cannot run a pass returns an error wrapping ErrDeviceDispatch.
type Backend interface {
	// Name returns the backend identifier (e.g., "sequential", "gpu").
	Name() string

	// Dispatch evaluates k.Pixel for every (x, y) in k.Size().
	Dispatch(k Kernel) error

	// Close releases backend resources. Dispatch after Close returns
	// ErrBackendClosed. Close is safe to call multiple times.
	Close()
}

// SequentialBackend visits pixels in row-major order on the calling
// goroutine. It is the reference the data-parallel backends are tested
// against.
type SequentialBackend struct {
	closed atomic.Bool
}

var _ Backend = (*SequentialBackend)(nil)

// NewSequentialBackend creates a sequential backend.
func NewSequentialBackend() *SequentialBackend {
	return &SequentialBackend{}
}

// Name implements Backend.
func (b *SequentialBackend) Name() string { return BackendSequential }

// Dispatch implements Backend.
func (b *SequentialBackend) Dispatch(k Kernel) error {
	if b.closed.Load() {
		return ErrBackendClosed
	}
	w, h := k.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			k.Pixel(x, y)
		}
	}
	return nil
}

// Close implements Backend.
func (b *SequentialBackend) Close() {
	b.closed.Store(true)
}
