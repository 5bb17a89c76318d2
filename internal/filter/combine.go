package filter

// Combine writes clamp(alpha*a + beta*b + gamma, 0, 255) for the first three
// channels of pixel index p (row-major, p = y*w + x) into out.
//
// Values below 0 saturate to 0 and values above 255 saturate to 255.
// In-range values are truncated toward zero, matching Average.
// Channels past the third are copied from a.
//
// The caller guarantees that out, a and b share one layout.
func Combine(out, a, b []uint8, p, channels int, alpha, beta, gamma float32) {
	off := p * channels
	for c := 0; c < ColorChannels; c++ {
		v := float32(a[off+c])*alpha + float32(b[off+c])*beta + gamma
		out[off+c] = saturate(v)
	}

	if channels > ColorChannels {
		copy(out[off+ColorChannels:off+channels], a[off+ColorChannels:off+channels])
	}
}

// saturate clamps v to [0, 255] and truncates it to uint8.
// NaN maps to 0.
func saturate(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
