package unsharp

import (
	"unsafe"

	"github.com/gogpu/unsharp/internal/filter"
)

// Kernel is a per-pixel function over a width x height index space.
//
// Pixel(x, y) reads only from inputs that stay frozen for the whole
// dispatch and writes only the output pixel (x, y). Distinct pixels never
// share output bytes, so backends may evaluate them in any order and on
// any number of workers without synchronization.
type Kernel interface {
	// Size returns the index space of the dispatch.
	Size() (width, height int)

	// Pixel computes output pixel (x, y).
	Pixel(x, y int)
}

// BlurKernel writes the box blur of Src into Dst.
// Dst and Src must share one layout and their buffers must not overlap.
type BlurKernel struct {
	Dst    *Image
	Src    *Image
	Radius int
}

// Size implements Kernel.
func (k *BlurKernel) Size() (width, height int) {
	return k.Dst.width, k.Dst.height
}

// Pixel implements Kernel.
func (k *BlurKernel) Pixel(x, y int) {
	s := k.Src
	filter.Average(k.Dst.data, s.data, x, y, k.Radius, s.width, s.height, s.channels)
}

// validate checks the kernel preconditions once per pass.
func (k *BlurKernel) validate() error {
	if k.Dst == nil || k.Src == nil {
		return preconditionf("blur: nil image")
	}
	if k.Radius < 1 {
		return preconditionf("blur: radius %d, must be positive", k.Radius)
	}
	if !k.Dst.SameLayout(k.Src) {
		return preconditionf("blur: layout mismatch %s vs %s", k.Dst.layout(), k.Src.layout())
	}
	if overlaps(k.Dst, k.Src) {
		return preconditionf("blur: destination overlaps source")
	}
	return nil
}

// CombineKernel writes the weighted sum of A and B into Dst.
// All three images share one layout. Dst may overlap neither A nor B.
type CombineKernel struct {
	Dst     *Image
	A       *Image
	B       *Image
	Weights Weights
}

// Size implements Kernel.
func (k *CombineKernel) Size() (width, height int) {
	return k.Dst.width, k.Dst.height
}

// Pixel implements Kernel.
func (k *CombineKernel) Pixel(x, y int) {
	w := k.Weights
	filter.Combine(k.Dst.data, k.A.data, k.B.data, y*k.A.width+x, k.A.channels, w.Alpha, w.Beta, w.Gamma)
}

// validate checks the kernel preconditions once per pass.
func (k *CombineKernel) validate() error {
	if k.Dst == nil || k.A == nil || k.B == nil {
		return preconditionf("combine: nil image")
	}
	if !k.A.SameLayout(k.B) {
		return preconditionf("combine: input layout mismatch %s vs %s", k.A.layout(), k.B.layout())
	}
	if !k.Dst.SameLayout(k.A) {
		return preconditionf("combine: output layout %s, want %s", k.Dst.layout(), k.A.layout())
	}
	if overlaps(k.Dst, k.A) || overlaps(k.Dst, k.B) {
		return preconditionf("combine: destination overlaps an input")
	}
	return nil
}

// overlaps reports whether the pixel buffers of a and b share any byte.
func overlaps(a, b *Image) bool {
	if len(a.data) == 0 || len(b.data) == 0 {
		return false
	}
	aStart := uintptr(unsafe.Pointer(unsafe.SliceData(a.data)))
	bStart := uintptr(unsafe.Pointer(unsafe.SliceData(b.data)))
	aEnd := aStart + uintptr(len(a.data))
	bEnd := bStart + uintptr(len(b.data))
	return aStart < bEnd && bStart < aEnd
}
