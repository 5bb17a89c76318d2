package unsharp

import (
	"errors"
	"fmt"
)

// Errors reported by the filter. Detailed errors wrap one of these, so
// callers classify failures with errors.Is.
var (
	// ErrPrecondition is returned for invalid caller input: a non-positive
	// radius, empty dimensions, a buffer whose length is not
	// width*height*channels, or images with different layouts.
	ErrPrecondition = errors.New("unsharp: precondition violation")

	// ErrDeviceDispatch is returned when a data-parallel backend fails to
	// execute or synchronize a pass. The output of that pass is undefined
	// and the pipeline discards it.
	ErrDeviceDispatch = errors.New("unsharp: device dispatch failure")

	// ErrUnsupportedKernel is returned by accelerators that only execute
	// the built-in BlurKernel and CombineKernel.
	ErrUnsupportedKernel = errors.New("unsharp: kernel not supported by backend")

	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot be created.
	ErrBackendNotAvailable = errors.New("unsharp: backend not available")

	// ErrBackendClosed is returned by Dispatch after Close.
	ErrBackendClosed = errors.New("unsharp: backend closed")
)

// preconditionf formats an ErrPrecondition with details.
func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// dispatchError wraps err as an ErrDeviceDispatch from the named backend.
func dispatchError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDeviceDispatch, backend, err)
}
