package unsharp

// Blur writes the box blur of src into dst.
//
// Each output pixel is the mean of the (2*radius-1)^2 window centered on
// it, with samples outside the image replaced by the nearest edge pixel.
// Sums are accumulated in float32 and truncated when stored, so repeated
// passes darken slightly. A radius of 1 copies src.
//
// dst and src must share one layout and must be distinct buffers. Channels
// beyond the third are copied from src.
func Blur(dst, src *Image, radius int, be Backend) error {
	k := &BlurKernel{Dst: dst, Src: src, Radius: radius}
	if err := k.validate(); err != nil {
		return err
	}
	if be == nil {
		return preconditionf("blur: nil backend")
	}
	return be.Dispatch(k)
}
