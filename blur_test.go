package unsharp

import (
	"errors"
	"fmt"
	"testing"
)

func TestBlur_RadiusOneIsIdentity(t *testing.T) {
	for _, b := range cpuBackends(t) {
		t.Run(backendLabel(b), func(t *testing.T) {
			src := gradientImage(t, 7, 5, 4)
			dst := mustImage(t, 7, 5, 4)
			if err := Blur(dst, src, 1, b); err != nil {
				t.Fatalf("Blur() error = %v", err)
			}
			assertEqual(t, dst, src)
		})
	}
}

func TestBlur_UniformImageUnchanged(t *testing.T) {
	for _, b := range cpuBackends(t) {
		for _, size := range [][2]int{{1, 1}, {3, 2}, {17, 9}, {70, 65}} {
			for _, r := range []int{1, 2, 3, 5, 8} {
				name := fmt.Sprintf("%s/%dx%d/r%d", backendLabel(b), size[0], size[1], r)
				t.Run(name, func(t *testing.T) {
					src := mustImage(t, size[0], size[1], 3)
					src.Fill(93, 17, 240)
					dst := mustImage(t, size[0], size[1], 3)
					if err := Blur(dst, src, r, b); err != nil {
						t.Fatalf("Blur() error = %v", err)
					}
					assertEqual(t, dst, src)
				})
			}
		}
	}
}

func TestBlur_SinglePixelImage(t *testing.T) {
	for _, b := range cpuBackends(t) {
		for _, r := range []int{1, 2, 10, 50} {
			src := mustImage(t, 1, 1, 3)
			src.SetPixel(0, 0, 201, 7, 99)
			dst := mustImage(t, 1, 1, 3)
			if err := Blur(dst, src, r, b); err != nil {
				t.Fatalf("%s r=%d: Blur() error = %v", backendLabel(b), r, err)
			}
			assertEqual(t, dst, src)
		}
	}
}

func TestBlur_EdgeReplication(t *testing.T) {
	// 3x1 row [0, 90, 180], r=2: the 3x3 window clamps to the single row.
	// x=0 samples 0,0,90 three times -> 30.
	src := mustImage(t, 3, 1, 3)
	src.SetPixel(0, 0, 0, 0, 0)
	src.SetPixel(1, 0, 90, 90, 90)
	src.SetPixel(2, 0, 180, 180, 180)

	want := []uint8{30, 90, 150}
	for _, b := range cpuBackends(t) {
		dst := mustImage(t, 3, 1, 3)
		if err := Blur(dst, src, 2, b); err != nil {
			t.Fatal(err)
		}
		for x, w := range want {
			if got := dst.Pixel(x, 0)[0]; got != w {
				t.Errorf("%s: pixel %d = %d, want %d", backendLabel(b), x, got, w)
			}
		}
	}
}

func TestBlur_Truncates(t *testing.T) {
	// 2x1 [0, 1], r=2: x=0 averages six 0s and three 1s = 0.33 -> 0,
	// x=1 averages three 0s and six 1s = 0.67 -> 0.
	src := mustImage(t, 2, 1, 3)
	src.SetPixel(1, 0, 1, 1, 1)
	dst := mustImage(t, 2, 1, 3)
	if err := Blur(dst, src, 2, NewSequentialBackend()); err != nil {
		t.Fatal(err)
	}
	if dst.Pixel(0, 0)[0] != 0 || dst.Pixel(1, 0)[0] != 0 {
		t.Errorf("got %v %v, want truncation to 0", dst.Pixel(0, 0), dst.Pixel(1, 0))
	}
}

func TestBlur_ExtraChannelsPassThrough(t *testing.T) {
	src := checkerboard(t, 6, 6, 4)
	for _, b := range cpuBackends(t) {
		dst := mustImage(t, 6, 6, 4)
		if err := Blur(dst, src, 3, b); err != nil {
			t.Fatal(err)
		}
		for y := 0; y < 6; y++ {
			for x := 0; x < 6; x++ {
				if got, want := dst.Pixel(x, y)[3], src.Pixel(x, y)[3]; got != want {
					t.Fatalf("%s: alpha at (%d, %d) = %d, want %d", backendLabel(b), x, y, got, want)
				}
			}
		}
	}
}

func TestBlur_BackendsAgree(t *testing.T) {
	src := gradientImage(t, 131, 67, 3)
	var want *Image
	for _, b := range cpuBackends(t) {
		dst := mustImage(t, 131, 67, 3)
		if err := Blur(dst, src, 4, b); err != nil {
			t.Fatal(err)
		}
		if want == nil {
			want = dst
			continue
		}
		assertEqual(t, dst, want)
	}
}

func TestBlur_DoesNotModifySource(t *testing.T) {
	src := gradientImage(t, 9, 9, 3)
	orig := src.Clone()
	dst := mustImage(t, 9, 9, 3)
	if err := Blur(dst, src, 3, NewSequentialBackend()); err != nil {
		t.Fatal(err)
	}
	assertEqual(t, src, orig)
}

func TestBlur_Preconditions(t *testing.T) {
	be := NewSequentialBackend()
	src := mustImage(t, 4, 4, 3)
	front, back := overlappingPair(t, 4, 4, 3, 3)

	tests := []struct {
		name   string
		dst    *Image
		src    *Image
		radius int
		be     Backend
	}{
		{"zero radius", mustImage(t, 4, 4, 3), src, 0, be},
		{"negative radius", mustImage(t, 4, 4, 3), src, -2, be},
		{"size mismatch", mustImage(t, 4, 5, 3), src, 2, be},
		{"channel mismatch", mustImage(t, 4, 4, 4), src, 2, be},
		{"aliased", src, src, 2, be},
		{"overlapping after source", back, front, 2, be},
		{"overlapping before source", front, back, 2, be},
		{"nil source", mustImage(t, 4, 4, 3), nil, 2, be},
		{"nil backend", mustImage(t, 4, 4, 3), src, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Blur(tt.dst, tt.src, tt.radius, tt.be)
			if !errors.Is(err, ErrPrecondition) {
				t.Errorf("Blur() error = %v, want ErrPrecondition", err)
			}
		})
	}
}

func TestBlur_AdjacentBuffers(t *testing.T) {
	// Shifting by a whole image leaves the two halves of one buffer disjoint.
	src, dst := overlappingPair(t, 4, 4, 3, 4*4*3)
	want := mustImage(t, 4, 4, 3)
	be := NewSequentialBackend()
	if err := Blur(want, src.Clone(), 2, be); err != nil {
		t.Fatal(err)
	}
	if err := Blur(dst, src, 2, be); err != nil {
		t.Fatalf("Blur() on adjacent buffers error = %v", err)
	}
	assertEqual(t, dst, want)
}

func BenchmarkBlur(b *testing.B) {
	src := gradientImage(b, 512, 512, 3)
	dst := mustImage(b, 512, 512, 3)
	for _, be := range cpuBackends(b) {
		b.Run(backendLabel(be), func(b *testing.B) {
			b.SetBytes(int64(len(src.Data())))
			for b.Loop() {
				if err := Blur(dst, src, 5, be); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
