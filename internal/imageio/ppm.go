package imageio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spakin/netpbm"

	"github.com/gogpu/unsharp"
)

// ErrPPM is returned for malformed or unsupported PPM data.
var ErrPPM = errors.New("imageio: invalid PPM")

const (
	// ppmMaxDimension bounds the header dimensions before allocating.
	ppmMaxDimension = 1 << 15

	// ppmHeaderPeek is how much input is inspected for the header.
	ppmHeaderPeek = 4096
)

// isNetpbm reports whether magic starts a PBM, PGM or PPM stream.
func isNetpbm(magic []byte) bool {
	return len(magic) == 2 && magic[0] == 'P' && magic[1] >= '1' && magic[1] <= '6'
}

// decodePPM reads a Netpbm image (PPM, or PBM/PGM promoted to PPM) with a
// maxval of 255 and returns it as a three-channel image.
func decodePPM(r *bufio.Reader) (*unsharp.Image, error) {
	head, _ := r.Peek(ppmHeaderPeek)
	cfg, err := netpbm.DecodeConfig(bytes.NewReader(head))
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrPPM, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrPPM, cfg.Width, cfg.Height)
	}
	if cfg.Width > ppmMaxDimension || cfg.Height > ppmMaxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrPPM, cfg.Width, cfg.Height, ppmMaxDimension)
	}

	img, err := netpbm.Decode(r, &netpbm.DecodeOptions{Target: netpbm.PPM})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPPM, err)
	}
	if maxval := img.MaxValue(); maxval != 255 {
		return nil, fmt.Errorf("%w: maxval %d, only 255 is supported", ErrPPM, maxval)
	}

	rgba, err := unsharp.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPPM, err)
	}
	return rgba.ToRGB(), nil
}

// encodePPM writes the first three channels of img as binary PPM.
func encodePPM(w io.Writer, img *unsharp.Image) error {
	return netpbm.Encode(w, img.ToRGB().ToNRGBA(), &netpbm.EncodeOptions{
		Format:   netpbm.PPM,
		MaxValue: 255,
	})
}
