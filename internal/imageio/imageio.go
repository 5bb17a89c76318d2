// Package imageio decodes and encodes unsharp images.
//
// Decoding sniffs the content: Netpbm files (PPM, and PBM or PGM promoted
// to color) load as three-channel images, everything else goes through image.Decode (PNG, JPEG, GIF, BMP,
// TIFF) and loads as four-channel non-premultiplied RGBA. Encoding picks
// the format from the file extension.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/unsharp"
)

// Format identifies an image file format.
type Format int

const (
	// FormatUnknown is returned for unrecognized extensions.
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatTIFF
	FormatPPM
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatPPM:
		return "ppm"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is returned when a file extension maps to no encoder.
var ErrUnknownFormat = errors.New("imageio: unknown image format")

// JPEGQuality is the quality used when encoding JPEG output.
const JPEGQuality = 95

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".gif":
		return FormatGIF
	case ".bmp":
		return FormatBMP
	case ".tif", ".tiff":
		return FormatTIFF
	case ".ppm", ".pnm":
		return FormatPPM
	default:
		return FormatUnknown
	}
}

// Load reads and decodes the image at path.
func Load(path string) (*unsharp.Image, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("imageio: open: %w", err)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("imageio: %s: %w", path, err)
	}
	return img, format, nil
}

// Decode decodes an image from r, sniffing the format from its content.
func Decode(r io.Reader) (*unsharp.Image, Format, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && isNetpbm(magic) {
		img, err := decodePPM(br)
		return img, FormatPPM, err
	}

	src, name, err := image.Decode(br)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("decode: %w", err)
	}
	img, err := unsharp.FromImage(src)
	if err != nil {
		return nil, FormatUnknown, err
	}
	return img, formatFromName(name), nil
}

// formatFromName maps an image.Decode format name to a Format.
func formatFromName(name string) Format {
	switch name {
	case "png":
		return FormatPNG
	case "jpeg":
		return FormatJPEG
	case "gif":
		return FormatGIF
	case "bmp":
		return FormatBMP
	case "tiff":
		return FormatTIFF
	default:
		return FormatUnknown
	}
}

// Save encodes img to path in the format implied by its extension.
func Save(path string, img *unsharp.Image) error {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := Encode(w, img, format); err != nil {
		f.Close()
		return fmt.Errorf("imageio: %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("imageio: %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes img to w in the given format.
// PPM output keeps the first three channels only.
func Encode(w io.Writer, img *unsharp.Image, format Format) error {
	if img == nil {
		return fmt.Errorf("encode: nil image")
	}
	switch format {
	case FormatPPM:
		return encodePPM(w, img)
	case FormatPNG:
		return png.Encode(w, img.ToNRGBA())
	case FormatJPEG:
		return jpeg.Encode(w, img.ToNRGBA(), &jpeg.Options{Quality: JPEGQuality})
	case FormatGIF:
		return gif.Encode(w, img.ToNRGBA(), nil)
	case FormatBMP:
		return bmp.Encode(w, img.ToNRGBA())
	case FormatTIFF:
		return tiff.Encode(w, img.ToNRGBA(), &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}
