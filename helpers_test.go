package unsharp

import (
	"strconv"
	"testing"
)

// Test helper functions shared across unsharp tests.

func mustImage(t testing.TB, w, h, channels int) *Image {
	t.Helper()
	img, err := NewImage(w, h, channels)
	if err != nil {
		t.Fatalf("NewImage(%d, %d, %d) error = %v", w, h, channels, err)
	}
	return img
}

// gradientImage fills channel c of pixel (x, y) with a value that varies
// along both axes.
func gradientImage(t testing.TB, w, h, channels int) *Image {
	t.Helper()
	img := mustImage(t, w, h, channels)
	data := img.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixelOffset(x, y)
			for c := 0; c < channels; c++ {
				data[off+c] = uint8((x*37 + y*11 + c*53) % 256)
			}
		}
	}
	return img
}

// checkerboard alternates black and white pixels; extra channels hold a
// per-pixel marker.
func checkerboard(t testing.TB, w, h, channels int) *Image {
	t.Helper()
	img := mustImage(t, w, h, channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			img.SetPixel(x, y, v, v, v, uint8(x+y*w))
		}
	}
	return img
}

// cpuBackends returns one instance of every CPU backend, closed on cleanup.
func cpuBackends(t testing.TB) []Backend {
	t.Helper()
	backends := []Backend{
		NewSequentialBackend(),
		NewParallelBackend(WithWorkers(4)),
		NewParallelBackend(WithWorkers(1)),
	}
	t.Cleanup(func() {
		for _, b := range backends {
			b.Close()
		}
	})
	return backends
}

func backendLabel(b Backend) string {
	if pb, ok := b.(*ParallelBackend); ok {
		return pb.Name() + "-" + strconv.Itoa(pb.Workers())
	}
	return b.Name()
}

// assertWithinOne fails if any byte of got differs from want by more than 1.
func assertWithinOne(t testing.TB, got, want *Image) {
	t.Helper()
	if !got.SameLayout(want) {
		t.Fatalf("layout %s, want %s", got.layout(), want.layout())
	}
	g, w := got.Data(), want.Data()
	for i := range g {
		if d := int(g[i]) - int(w[i]); d < -1 || d > 1 {
			t.Fatalf("byte %d = %d, want %d +/- 1", i, g[i], w[i])
		}
	}
}

func assertEqual(t testing.TB, got, want *Image) {
	t.Helper()
	if !got.SameLayout(want) {
		t.Fatalf("layout %s, want %s", got.layout(), want.layout())
	}
	g, w := got.Data(), want.Data()
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("byte %d = %d, want %d", i, g[i], w[i])
		}
	}
}

// overlappingPair returns two w x h images whose buffers share all but
// shift bytes.
func overlappingPair(t testing.TB, w, h, channels, shift int) (front, back *Image) {
	t.Helper()
	n := w * h * channels
	buf := make([]uint8, n+shift)
	for i := range buf {
		buf[i] = uint8(i * 7)
	}
	var err error
	front, err = FromBytes(buf[:n], w, h, channels)
	if err != nil {
		t.Fatal(err)
	}
	back, err = FromBytes(buf[shift:n+shift], w, h, channels)
	if err != nil {
		t.Fatal(err)
	}
	return front, back
}
