// Package unsharp sharpens 8-bit raster images with an unsharp mask.
//
// # Overview
//
// The filter blurs the image three times with a box blur and subtracts half
// of the third blur from 1.5 times the original:
//
//	out = clamp(1.5*src - 0.5*blur(blur(blur(src))), 0, 255)
//
// Every stage is a per-pixel kernel, so the same computation runs on one
// goroutine, on a pool of workers, or on a GPU compute device. All backends
// agree to within one step per channel.
//
// # Quick Start
//
//	import "github.com/gogpu/unsharp"
//
//	img, _ := unsharp.FromBytes(rgb, width, height, 3)
//	out, err := unsharp.Sharpen(img, 5)
//
// # Images
//
// An Image is an interleaved buffer of width*height*channels bytes with at
// least three channels (R, G, B). Channels beyond the third, such as alpha,
// pass through every stage unchanged.
//
// # Box Blur
//
// A radius r averages the (2r-1) x (2r-1) window centered on each pixel.
// Samples outside the image are replaced by the nearest edge pixel on each
// axis independently. Averages are accumulated in float32 and truncated
// when stored, so three passes darken an image by up to three steps. A
// radius of 1 is the identity.
//
// # Backends
//
// A Backend maps a Kernel over the full W x H index space and returns only
// when every pixel is written:
//   - sequential: row-major on the calling goroutine (reference)
//   - parallel: 64x64 tiles on a work-stealing worker pool
//   - gpu: wgpu compute shaders, registered by importing
//     github.com/gogpu/unsharp/gpu
//
// NewBackend creates a backend by name; DefaultBackend picks the
// highest-priority available one (gpu > parallel > sequential).
//
// # Errors
//
// Failures wrap ErrPrecondition (bad caller input) or ErrDeviceDispatch
// (a data-parallel backend failed a pass). The pipeline never retries and
// never switches backends on its own.
package unsharp
