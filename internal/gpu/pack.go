//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
)

// packRGB packs the first three channels of each pixel into a
// little-endian u32 (R in the low byte). The fourth byte is zero.
func packRGB(data []uint8, channels, pixelCount int) []byte {
	out := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		src := i * channels
		packed := uint32(data[src]) | uint32(data[src+1])<<8 | uint32(data[src+2])<<16
		binary.LittleEndian.PutUint32(out[i*4:], packed)
	}
	return out
}

// unpackRGB writes packed pixels back into the first three channels of dst
// and copies any further channels from extra.
func unpackRGB(packed []byte, dst, extra []uint8, channels, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		val := binary.LittleEndian.Uint32(packed[i*4:])
		off := i * channels
		dst[off+0] = uint8(val & 0xFF)         //nolint:gosec // masked to 8 bits
		dst[off+1] = uint8((val >> 8) & 0xFF)  //nolint:gosec // masked to 8 bits
		dst[off+2] = uint8((val >> 16) & 0xFF) //nolint:gosec // masked to 8 bits
		if channels > 3 {
			copy(dst[off+3:off+channels], extra[off+3:off+channels])
		}
	}
}

// blurOffsetParams is the 16-byte uniform of the accumulation shader.
func blurOffsetParams(w, h uint32, dx, dy int32) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], w)
	binary.LittleEndian.PutUint32(b[4:], h)
	binary.LittleEndian.PutUint32(b[8:], uint32(dx))  //nolint:gosec // two's complement i32
	binary.LittleEndian.PutUint32(b[12:], uint32(dy)) //nolint:gosec // two's complement i32
	return b
}

// blurResolveParams is the 16-byte uniform of the resolve shader.
func blurResolveParams(w, h uint32, samples float32) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], w)
	binary.LittleEndian.PutUint32(b[4:], h)
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(samples))
	return b
}

// combineParams is the 32-byte uniform of the combine shader.
func combineParams(alpha, beta, gamma float32, w, h uint32) []byte {
	b := make([]byte, 32)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(alpha))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(beta))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(gamma))
	binary.LittleEndian.PutUint32(b[12:], w)
	binary.LittleEndian.PutUint32(b[16:], h)
	return b
}
