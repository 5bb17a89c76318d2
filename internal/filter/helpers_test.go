package filter

// Test helper functions shared across filter tests.

// solidBuffer returns a w*h buffer where every pixel holds px.
func solidBuffer(w, h int, px ...uint8) []uint8 {
	channels := len(px)
	buf := make([]uint8, w*h*channels)
	for i := 0; i < w*h; i++ {
		copy(buf[i*channels:], px)
	}
	return buf
}

// averageAll runs Average over every pixel of in.
func averageAll(in []uint8, radius, w, h, channels int) []uint8 {
	out := make([]uint8, len(in))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			Average(out, in, x, y, radius, w, h, channels)
		}
	}
	return out
}

// pixelAt returns the channels of pixel (x, y).
func pixelAt(buf []uint8, x, y, w, channels int) []uint8 {
	off := (y*w + x) * channels
	return buf[off : off+channels]
}

func equalBytes(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
