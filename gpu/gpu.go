//go:build !nogpu

// Package gpu registers the GPU backend for unsharp.
//
// Import this package to make the "gpu" backend available to
// unsharp.NewBackend and unsharp.DefaultBackend. The backend runs the blur
// and combine stages as wgpu/hal compute shaders.
//
// Registration only installs a factory: no device is opened until the
// backend is created. If device creation fails (no Vulkan driver or
// adapter), NewBackend("gpu") returns an error wrapping
// unsharp.ErrBackendNotAvailable and DefaultBackend moves on to the CPU
// backends.
//
// Usage:
//
//	import _ "github.com/gogpu/unsharp/gpu" // enable GPU execution
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/unsharp"
	gpuimpl "github.com/gogpu/unsharp/internal/gpu"
)

func init() {
	unsharp.RegisterBackend(unsharp.BackendGPU, func() (unsharp.Backend, error) {
		b, err := gpuimpl.New()
		if err != nil {
			unsharp.Logger().Warn("GPU backend not available", "err", err)
			return nil, err
		}
		return b, nil
	})
}

// SetDeviceProvider makes GPU backends created afterwards share the device
// of an external provider (e.g., a gogpu window) instead of opening their
// own. This avoids creating a separate GPU instance.
//
// The provider must also implement HalDevice() any and HalQueue() any
// returning the wgpu/hal device and queue. Pass nil to go back to
// standalone devices.
func SetDeviceProvider(provider gpucontext.DeviceProvider) {
	gpuimpl.SetDefaultDeviceProvider(provider)
}
