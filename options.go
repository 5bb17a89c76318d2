package unsharp

import "time"

// Option configures a Pipeline during creation.
// Use functional options to customize Pipeline behavior.
//
// Example:
//
//	// Highest-priority registered backend
//	p := unsharp.NewPipeline()
//
//	// Explicit backend with stage timing
//	p := unsharp.NewPipeline(
//	    unsharp.WithBackend(unsharp.NewSequentialBackend()),
//	    unsharp.WithStageObserver(func(s unsharp.Stage, d time.Duration) {
//	        fmt.Printf("%s: %v\n", s, d)
//	    }),
//	)
type Option func(*pipelineOptions)

// StageObserver is called after each completed stage with the wall-clock
// time the stage took. It runs on the goroutine that called Run.
type StageObserver func(stage Stage, elapsed time.Duration)

// pipelineOptions holds optional configuration for Pipeline creation.
type pipelineOptions struct {
	backend     Backend
	observer    StageObserver
	reuseBuffer bool
}

// defaultOptions returns the default pipeline options.
func defaultOptions() pipelineOptions {
	return pipelineOptions{
		backend:     nil, // DefaultBackend on first Run
		reuseBuffer: true,
	}
}

// WithBackend sets the backend that executes every stage.
// The caller keeps ownership: Pipeline.Close does not close it.
func WithBackend(b Backend) Option {
	return func(o *pipelineOptions) {
		o.backend = b
	}
}

// WithStageObserver installs a callback for per-stage timing.
func WithStageObserver(fn StageObserver) Option {
	return func(o *pipelineOptions) {
		o.observer = fn
	}
}

// WithBufferReuse controls whether the blurred intermediates are recycled
// between runs of the same image size. Enabled by default.
func WithBufferReuse(enabled bool) Option {
	return func(o *pipelineOptions) {
		o.reuseBuffer = enabled
	}
}
