package filter

import (
	"math"
	"testing"
)

func TestCombineIdentity(t *testing.T) {
	a := []uint8{0, 1, 127, 128, 254, 255}
	out := make([]uint8, len(a))
	for p := 0; p < 2; p++ {
		Combine(out, a, a, p, 3, 1, 0, 0)
	}
	if !equalBytes(out, a) {
		t.Errorf("combine(A, A, 1, 0, 0) = %v, want %v", out, a)
	}
}

func TestCombineSaturation(t *testing.T) {
	tests := []struct {
		name               string
		a, b               uint8
		alpha, beta, gamma float32
		want               uint8
	}{
		{"double 200 saturates high", 200, 0, 2, 0, 0, 255},
		{"negative saturates low", 10, 200, 1, -1, 0, 0},
		{"gamma pushes over", 250, 0, 1, 0, 10, 255},
		{"gamma pulls under", 5, 0, 1, 0, -10, 0},
		{"unsharp flat field", 100, 100, 1.5, -0.5, 0, 100},
		{"unsharp bright", 255, 100, 1.5, -0.5, 0, 255},
		{"unsharp dark", 0, 100, 1.5, -0.5, 0, 0},
		{"in range truncates", 3, 0, 0.5, 0, 0, 1},
		{"exact 255", 255, 0, 1, 0, 0, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := []uint8{tt.a, tt.a, tt.a}
			b := []uint8{tt.b, tt.b, tt.b}
			out := make([]uint8, 3)
			Combine(out, a, b, 0, 3, tt.alpha, tt.beta, tt.gamma)
			for c := 0; c < 3; c++ {
				if out[c] != tt.want {
					t.Errorf("channel %d = %d, want %d", c, out[c], tt.want)
				}
			}
		})
	}
}

func TestCombineExtraChannelsFromA(t *testing.T) {
	a := []uint8{10, 20, 30, 40, 50}
	b := []uint8{90, 90, 90, 99, 99}
	out := make([]uint8, 5)

	Combine(out, a, b, 0, 5, 0, 1, 0)

	want := []uint8{90, 90, 90, 40, 50}
	if !equalBytes(out, want) {
		t.Errorf("combine = %v, want %v", out, want)
	}
}

func TestCombinePixelIndex(t *testing.T) {
	a := []uint8{1, 1, 1, 2, 2, 2, 3, 3, 3}
	out := make([]uint8, len(a))
	Combine(out, a, a, 1, 3, 10, 0, 0)

	want := []uint8{0, 0, 0, 20, 20, 20, 0, 0, 0}
	if !equalBytes(out, want) {
		t.Errorf("combine = %v, want %v (only pixel 1 written)", out, want)
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1000, 0},
		{-0.5, 0},
		{0, 0},
		{0.99, 0},
		{1, 1},
		{254.99, 254},
		{255, 255},
		{255.5, 255},
		{1e9, 255},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 255},
		{float32(math.Inf(-1)), 0},
	}
	for _, tt := range tests {
		if got := saturate(tt.in); got != tt.want {
			t.Errorf("saturate(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
