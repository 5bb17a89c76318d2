package unsharp

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/unsharp/internal/parallel"
)

// Stage is a step of the unsharp-mask pipeline.
type Stage int32

const (
	// StageIdle means no run is in progress, or the last run failed.
	StageIdle Stage = iota

	// StageBlurred1 means the first blur of the source is complete.
	StageBlurred1

	// StageBlurred2 means the second blur is complete.
	StageBlurred2

	// StageBlurred3 means the third blur is complete.
	StageBlurred3

	// StageCombined means the sharpened output has been written.
	StageCombined

	// StageDone means the output has been handed to the caller.
	StageDone
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageBlurred1:
		return "Blurred1"
	case StageBlurred2:
		return "Blurred2"
	case StageBlurred3:
		return "Blurred3"
	case StageCombined:
		return "Combined"
	case StageDone:
		return "Done"
	default:
		return fmt.Sprintf("Stage(%d)", int32(s))
	}
}

// Pipeline sharpens images with an unsharp mask:
//
//	blur1 = Blur(src)
//	blur2 = Blur(blur1)
//	blur3 = Blur(blur2)
//	out   = Combine(src, blur3, UnsharpWeights)
//
// Stages run strictly in that order on one backend. Each stage reads only
// the completed output of the previous one. If any stage fails the run is
// aborted, the intermediates are released and the stage resets to
// StageIdle.
//
// Thread safety: Run calls are serialized; Stage may be called from any
// goroutine.
type Pipeline struct {
	mu    sync.Mutex
	opts  pipelineOptions
	owned bool
	stage atomic.Int32
	pool  *parallel.BufferPool
}

// NewPipeline creates a pipeline.
// Without WithBackend, the first Run creates DefaultBackend, which is
// closed by Close.
func NewPipeline(opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pipeline{opts: o}
	if o.reuseBuffer {
		p.pool = parallel.NewBufferPool()
	}
	return p
}

// Stage returns the last completed stage.
func (p *Pipeline) Stage() Stage {
	return Stage(p.stage.Load())
}

// Backend returns the backend the pipeline runs on, or nil before the
// first Run when no backend was configured.
func (p *Pipeline) Backend() Backend {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts.backend
}

// Run sharpens src and returns a new image of identical layout.
// src is never modified. Returns ErrPrecondition for a nil or malformed
// source or a non-positive radius, and the backend's error (typically
// wrapping ErrDeviceDispatch) if a stage fails.
func (p *Pipeline) Run(src *Image, radius int) (*Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage.Store(int32(StageIdle))

	if src == nil {
		return nil, preconditionf("pipeline: nil source")
	}
	if err := checkLayout(src.width, src.height, src.channels); err != nil {
		return nil, err
	}
	if want := src.width * src.height * src.channels; len(src.data) != want {
		return nil, preconditionf("pipeline: buffer length %d, want %d", len(src.data), want)
	}
	if radius < 1 {
		return nil, preconditionf("pipeline: radius %d, must be positive", radius)
	}

	be, err := p.backend()
	if err != nil {
		return nil, err
	}

	blur1 := p.acquire(src)
	blur2 := p.acquire(src)
	blur3 := p.acquire(src)
	defer p.release(blur1, blur2, blur3)

	out, err := NewImage(src.width, src.height, src.channels)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		stage Stage
		run   func() error
	}{
		{StageBlurred1, func() error { return Blur(blur1, src, radius, be) }},
		{StageBlurred2, func() error { return Blur(blur2, blur1, radius, be) }},
		{StageBlurred3, func() error { return Blur(blur3, blur2, radius, be) }},
		{StageCombined, func() error { return Combine(out, src, blur3, UnsharpWeights, be) }},
	}

	log := Logger()
	for _, s := range steps {
		start := time.Now()
		if err := s.run(); err != nil {
			p.stage.Store(int32(StageIdle))
			log.Debug("pipeline aborted", "stage", s.stage, "backend", be.Name(), "err", err)
			return nil, fmt.Errorf("unsharp: stage %s: %w", s.stage, err)
		}
		elapsed := time.Since(start)

		p.stage.Store(int32(s.stage))
		log.Debug("pipeline stage", "stage", s.stage, "backend", be.Name(), "elapsed", elapsed)
		if p.opts.observer != nil {
			p.opts.observer(s.stage, elapsed)
		}
	}

	p.stage.Store(int32(StageDone))
	return out, nil
}

// Close releases the backend created by the pipeline, if any.
// A backend passed with WithBackend is left open.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.owned && p.opts.backend != nil {
		p.opts.backend.Close()
		p.opts.backend = nil
		p.owned = false
	}
}

// backend returns the configured backend, creating the default one on
// first use.
func (p *Pipeline) backend() (Backend, error) {
	if p.opts.backend != nil {
		return p.opts.backend, nil
	}
	b, err := DefaultBackend()
	if err != nil {
		return nil, err
	}
	p.opts.backend = b
	p.owned = true
	return b, nil
}

// acquire returns a scratch image with the layout of like.
func (p *Pipeline) acquire(like *Image) *Image {
	size := like.width * like.height * like.channels
	var data []uint8
	if p.pool != nil {
		data = p.pool.Get(size)
	} else {
		data = make([]uint8, size)
	}
	return &Image{width: like.width, height: like.height, channels: like.channels, data: data}
}

// release hands scratch images back to the buffer pool.
func (p *Pipeline) release(imgs ...*Image) {
	if p.pool == nil {
		return
	}
	for _, m := range imgs {
		p.pool.Put(m.data)
	}
}

// Sharpen runs a one-shot pipeline over src.
//
// Example:
//
//	out, err := unsharp.Sharpen(img, 5, unsharp.WithBackend(be))
func Sharpen(src *Image, radius int, opts ...Option) (*Image, error) {
	p := NewPipeline(append(opts, WithBufferReuse(false))...)
	defer p.Close()
	return p.Run(src, radius)
}
