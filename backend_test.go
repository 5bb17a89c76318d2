package unsharp

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// countingKernel records how many times each pixel is visited.
type countingKernel struct {
	w, h   int
	visits []atomic.Int32
}

func newCountingKernel(w, h int) *countingKernel {
	return &countingKernel{w: w, h: h, visits: make([]atomic.Int32, w*h)}
}

func (k *countingKernel) Size() (int, int) { return k.w, k.h }
func (k *countingKernel) Pixel(x, y int)   { k.visits[y*k.w+x].Add(1) }

// orderKernel records the visit order.
type orderKernel struct {
	w, h  int
	order [][2]int
}

func (k *orderKernel) Size() (int, int) { return k.w, k.h }
func (k *orderKernel) Pixel(x, y int)   { k.order = append(k.order, [2]int{x, y}) }

func TestBackends_VisitEveryPixelOnce(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 7}, {64, 64}, {65, 1}, {130, 129}}
	for _, b := range cpuBackends(t) {
		for _, s := range sizes {
			k := newCountingKernel(s[0], s[1])
			if err := b.Dispatch(k); err != nil {
				t.Fatalf("%s: Dispatch() error = %v", backendLabel(b), err)
			}
			for i := range k.visits {
				if n := k.visits[i].Load(); n != 1 {
					t.Fatalf("%s %dx%d: pixel %d visited %d times, want 1",
						backendLabel(b), s[0], s[1], i, n)
				}
			}
		}
	}
}

func TestSequentialBackend_RowMajor(t *testing.T) {
	k := &orderKernel{w: 3, h: 2}
	if err := NewSequentialBackend().Dispatch(k); err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}
	if len(k.order) != len(want) {
		t.Fatalf("visited %d pixels, want %d", len(k.order), len(want))
	}
	for i := range want {
		if k.order[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, k.order[i], want[i])
		}
	}
}

func TestBackends_DispatchAfterClose(t *testing.T) {
	backends := []Backend{NewSequentialBackend(), NewParallelBackend(WithWorkers(2))}
	for _, b := range backends {
		b.Close()
		b.Close() // idempotent
		err := b.Dispatch(newCountingKernel(2, 2))
		if !errors.Is(err, ErrBackendClosed) {
			t.Errorf("%s: Dispatch after Close error = %v, want ErrBackendClosed", b.Name(), err)
		}
	}
}

// panicKernel panics on one pixel.
type panicKernel struct{ countingKernel }

func (k *panicKernel) Pixel(x, y int) {
	if x == 70 && y == 70 {
		panic("bad pixel")
	}
	k.countingKernel.Pixel(x, y)
}

func TestParallelBackend_PanicIsDispatchError(t *testing.T) {
	b := NewParallelBackend(WithWorkers(4))
	defer b.Close()

	k := &panicKernel{countingKernel: *newCountingKernel(128, 128)}
	err := b.Dispatch(k)
	if !errors.Is(err, ErrDeviceDispatch) {
		t.Fatalf("Dispatch() error = %v, want ErrDeviceDispatch", err)
	}

	// The pool survives a failed pass.
	if err := b.Dispatch(newCountingKernel(8, 8)); err != nil {
		t.Errorf("Dispatch() after panic error = %v", err)
	}
}

func TestParallelBackend_Workers(t *testing.T) {
	b := NewParallelBackend(WithWorkers(3))
	defer b.Close()
	if b.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", b.Workers())
	}

	d := NewParallelBackend()
	defer d.Close()
	if d.Workers() < 1 {
		t.Errorf("default Workers() = %d, want >= 1", d.Workers())
	}
}

func TestParallelBackend_ConcurrentDispatch(t *testing.T) {
	b := NewParallelBackend(WithWorkers(4))
	defer b.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	src := gradientImage(t, 80, 70, 3)
	for range 8 {
		dst := mustImage(t, 80, 70, 3)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- Blur(dst, src, 3, b)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Blur() error = %v", err)
		}
	}
}
