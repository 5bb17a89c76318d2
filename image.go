package unsharp

import (
	"fmt"
	"image"
	"image/draw"
	"math"
)

// MinChannels is the minimum number of interleaved channels per pixel.
// The first three channels are treated as R, G, B.
const MinChannels = 3

// Image is an interleaved 8-bit raster: a width x height grid where every
// cell holds channels consecutive samples.
//
// Channel order is fixed (R, G, B, then any extra channel such as alpha).
// Extra channels are carried through every filter stage unchanged.
type Image struct {
	width    int
	height   int
	channels int
	data     []uint8
}

// NewImage creates a zero-filled image.
// Returns ErrPrecondition for empty dimensions or fewer than MinChannels.
func NewImage(width, height, channels int) (*Image, error) {
	if err := checkLayout(width, height, channels); err != nil {
		return nil, err
	}
	return &Image{
		width:    width,
		height:   height,
		channels: channels,
		data:     make([]uint8, width*height*channels),
	}, nil
}

// FromBytes wraps an existing buffer without copying it.
// The buffer length must be exactly width*height*channels.
func FromBytes(data []uint8, width, height, channels int) (*Image, error) {
	if err := checkLayout(width, height, channels); err != nil {
		return nil, err
	}
	if want := width * height * channels; len(data) != want {
		return nil, preconditionf("buffer length %d, want %d (%dx%dx%d)",
			len(data), want, width, height, channels)
	}
	return &Image{
		width:    width,
		height:   height,
		channels: channels,
		data:     data,
	}, nil
}

// checkLayout validates image dimensions.
func checkLayout(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return preconditionf("invalid dimensions %dx%d", width, height)
	}
	if channels < MinChannels {
		return preconditionf("%d channels, need at least %d", channels, MinChannels)
	}
	if width > math.MaxInt/height/channels {
		return preconditionf("layout %dx%dx%d overflows the buffer size", width, height, channels)
	}
	return nil
}

// Width returns the width of the image.
func (m *Image) Width() int {
	return m.width
}

// Height returns the height of the image.
func (m *Image) Height() int {
	return m.height
}

// Channels returns the number of samples per pixel.
func (m *Image) Channels() int {
	return m.channels
}

// Data returns the raw interleaved samples.
func (m *Image) Data() []uint8 {
	return m.data
}

// Stride returns the number of bytes per row.
func (m *Image) Stride() int {
	return m.width * m.channels
}

// PixelOffset returns the byte offset of pixel (x, y), or -1 when the
// coordinates are outside the image.
func (m *Image) PixelOffset(x, y int) int {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return -1
	}
	return (y*m.width + x) * m.channels
}

// Pixel returns the samples of pixel (x, y), or nil when out of bounds.
// The returned slice aliases the image data.
func (m *Image) Pixel(x, y int) []uint8 {
	off := m.PixelOffset(x, y)
	if off < 0 {
		return nil
	}
	return m.data[off : off+m.channels]
}

// SetPixel copies px into pixel (x, y). Out-of-bounds writes are ignored.
func (m *Image) SetPixel(x, y int, px ...uint8) {
	off := m.PixelOffset(x, y)
	if off < 0 {
		return
	}
	copy(m.data[off:off+m.channels], px)
}

// Fill sets every pixel to px.
func (m *Image) Fill(px ...uint8) {
	if len(m.data) == 0 {
		return
	}
	copy(m.data[:m.channels], px)
	for off := m.channels; off < len(m.data); off += m.channels {
		copy(m.data[off:off+m.channels], m.data[:m.channels])
	}
}

// SameLayout reports whether other has the same width, height and
// channel count.
func (m *Image) SameLayout(other *Image) bool {
	return other != nil &&
		m.width == other.width &&
		m.height == other.height &&
		m.channels == other.channels
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	data := make([]uint8, len(m.data))
	copy(data, m.data)
	return &Image{
		width:    m.width,
		height:   m.height,
		channels: m.channels,
		data:     data,
	}
}

// ToNRGBA converts the image to an image.NRGBA.
// Three-channel images become opaque; for wider images channel 3 is used
// as alpha and further channels are dropped.
func (m *Image) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	if m.channels == 4 {
		copy(img.Pix, m.data)
		return img
	}

	n := m.width * m.height
	for i := 0; i < n; i++ {
		src := m.data[i*m.channels:]
		dst := img.Pix[i*4:]
		dst[0], dst[1], dst[2] = src[0], src[1], src[2]
		if m.channels > 3 {
			dst[3] = src[3]
		} else {
			dst[3] = 0xFF
		}
	}
	return img
}

// ToRGB returns a three-channel copy of the image, dropping extra channels.
func (m *Image) ToRGB() *Image {
	if m.channels == 3 {
		return m.Clone()
	}
	n := m.width * m.height
	data := make([]uint8, n*3)
	for i := 0; i < n; i++ {
		copy(data[i*3:i*3+3], m.data[i*m.channels:])
	}
	return &Image{width: m.width, height: m.height, channels: 3, data: data}
}

// FromImage converts any image.Image into a four-channel, non-premultiplied
// RGBA Image. Returns ErrPrecondition for an empty image.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	if b.Empty() {
		return nil, preconditionf("empty source image %v", b)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)

	return FromBytes(nrgba.Pix, b.Dx(), b.Dy(), 4)
}

// layout formats the image dimensions for error messages.
func (m *Image) layout() string {
	return fmt.Sprintf("%dx%dx%d", m.width, m.height, m.channels)
}
