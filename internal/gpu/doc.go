//go:build !nogpu

// Package gpu implements the unsharp GPU backend on wgpu/hal compute
// shaders.
//
// Kernels are written in WGSL (shaders/*.wgsl), compiled to SPIR-V with
// naga and run on a Vulkan device chosen by adapter type (discrete, then
// integrated, then anything else). A device can also be shared from a
// gpucontext.DeviceProvider.
//
// Pixels travel as packed little-endian u32 values holding R, G and B.
// Channels beyond the third never reach the device; they are copied on the
// host.
//
// This is an internal package. Import github.com/gogpu/unsharp/gpu to
// register the backend.
package gpu
