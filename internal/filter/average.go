package filter

// ColorChannels is the number of leading channels that take part in the
// averaging and combining arithmetic.
const ColorChannels = 3

// WindowSide returns the side of the square sampling window for a radius.
// A radius of 1 selects the center pixel only.
func WindowSide(radius int) int {
	return radius*2 - 1
}

// SampleCount returns the number of samples averaged for a radius.
func SampleCount(radius int) int {
	side := WindowSide(radius)
	return side * side
}

// Average computes the box average of the pixel at (x, y) and writes it to
// the matching pixel of out.
//
// The window spans [x-radius+1, x+radius) by [y-radius+1, y+radius).
// Samples outside the image are replaced by the nearest edge pixel on each
// axis independently. Sums are accumulated in float32 and the quotient is
// truncated toward zero when stored.
//
// Channels past the third are copied from in. The caller guarantees
// radius >= 1, w, h > 0, channels >= 3 and len(in) == len(out) == w*h*channels.
// out and in must not alias.
func Average(out, in []uint8, x, y, radius, w, h, channels int) {
	var red, green, blue float32

	for j := y - radius + 1; j < y+radius; j++ {
		rj := clampIndex(j, h)
		row := rj * w
		for i := x - radius + 1; i < x+radius; i++ {
			ri := clampIndex(i, w)
			off := (row + ri) * channels
			red += float32(in[off+0])
			green += float32(in[off+1])
			blue += float32(in[off+2])
		}
	}

	n := float32(SampleCount(radius))
	off := (y*w + x) * channels
	out[off+0] = uint8(red / n)
	out[off+1] = uint8(green / n)
	out[off+2] = uint8(blue / n)

	if channels > ColorChannels {
		copy(out[off+ColorChannels:off+channels], in[off+ColorChannels:off+channels])
	}
}

// clampIndex clamps i to [0, size-1] (edge replication).
func clampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}
