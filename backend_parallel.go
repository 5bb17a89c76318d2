package unsharp

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/unsharp/internal/parallel"
)

// ParallelBackend partitions the index space into 64x64 tiles and runs
// them on a work-stealing worker pool.
//
// Workers read only the frozen kernel inputs and write disjoint tiles of the
// output, so the only synchronization is the completion barrier at the end
// of each Dispatch. A panicking tile aborts the pass with ErrDeviceDispatch
// once the remaining tiles have finished.
//
// Thread safety: ParallelBackend is safe for concurrent use.
type ParallelBackend struct {
	pool   *parallel.WorkerPool
	logger atomic.Pointer[slog.Logger]
}

var _ Backend = (*ParallelBackend)(nil)

// ParallelOption configures a ParallelBackend.
type ParallelOption func(*parallelOptions)

type parallelOptions struct {
	workers int
}

// WithWorkers sets the number of worker goroutines.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) ParallelOption {
	return func(o *parallelOptions) {
		o.workers = n
	}
}

// NewParallelBackend creates a tile-parallel backend and starts its workers.
func NewParallelBackend(opts ...ParallelOption) *ParallelBackend {
	var o parallelOptions
	for _, opt := range opts {
		opt(&o)
	}

	b := &ParallelBackend{pool: parallel.NewWorkerPool(o.workers)}
	b.logger.Store(Logger())
	return b
}

// Name implements Backend.
func (b *ParallelBackend) Name() string { return BackendParallel }

// Workers returns the number of worker goroutines.
func (b *ParallelBackend) Workers() int { return b.pool.Workers() }

// SetLogger sets the logger used for dispatch diagnostics.
func (b *ParallelBackend) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	b.logger.Store(l)
}

// Dispatch implements Backend.
func (b *ParallelBackend) Dispatch(k Kernel) error {
	w, h := k.Size()
	tiles := parallel.Tiles(w, h)

	work := make([]func(), len(tiles))
	for i, tile := range tiles {
		work[i] = func() {
			tile.ForEachPixel(k.Pixel)
		}
	}

	b.logger.Load().Debug("parallel dispatch",
		"width", w, "height", h, "tiles", len(tiles), "workers", b.pool.Workers())

	if err := b.pool.ExecuteAll(work); err != nil {
		if errors.Is(err, parallel.ErrPoolClosed) {
			return ErrBackendClosed
		}
		return dispatchError(BackendParallel, err)
	}
	return nil
}

// Close implements Backend. Queued tiles finish before Close returns.
func (b *ParallelBackend) Close() {
	b.pool.Close()
}
