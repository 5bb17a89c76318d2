//go:build nogpu

// Package gpu is empty when built with the nogpu tag: no GPU backend is
// registered and only the CPU backends are available.
package gpu

import "github.com/gogpu/gpucontext"

// SetDeviceProvider is a no-op without GPU support.
func SetDeviceProvider(gpucontext.DeviceProvider) {}
