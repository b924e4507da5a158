package halftone

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func sameBytes(a, b []uint8) bool {
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

func TestApply_DisabledNeverTouchesBuffer(t *testing.T) {
	img := solid(30, 20, color.NRGBA{10, 200, 60, 255})
	before := append([]uint8(nil), img.Pix...)

	for _, cfg := range []Config{
		{Enabled: false, DotSize: 8, Spacing: 8},
		{Enabled: false, DotSize: 40, Spacing: 2},
		{Enabled: true, DotSize: 8, Spacing: 0},
		{Enabled: true, DotSize: 8, Spacing: -3},
	} {
		Apply(img, cfg)
		if !sameBytes(img.Pix, before) {
			t.Fatalf("config %+v modified the buffer", cfg)
		}
		if cfg.Active() {
			t.Errorf("config %+v reports active", cfg)
		}
	}
}

func TestApply_WhiteImageStaysWhite(t *testing.T) {
	img := solid(32, 32, color.NRGBA{255, 255, 255, 255})
	Apply(img, Config{Enabled: true, DotSize: 10, Spacing: 8})
	for i, v := range img.Pix {
		if v != 255 {
			t.Fatalf("byte %d = %d, want 255", i, v)
		}
	}
}

func TestApply_BlackImageGetsFullDots(t *testing.T) {
	img := solid(32, 32, color.NRGBA{0, 0, 0, 255})
	Apply(img, Config{Enabled: true, DotSize: 6, Spacing: 8})

	// Cell centres are black, cell corners stay white (radius 3 < 4).
	for _, p := range []image.Point{{4, 4}, {12, 4}, {20, 28}} {
		if c := img.NRGBAAt(p.X, p.Y); c.R != 0 {
			t.Errorf("centre %v = %v, want black", p, c)
		}
	}
	for _, p := range []image.Point{{0, 0}, {8, 8}, {31, 31}} {
		if c := img.NRGBAAt(p.X, p.Y); c.R != 255 {
			t.Errorf("corner %v = %v, want white", p, c)
		}
	}
}

func TestApply_OutputIsOpaqueGray(t *testing.T) {
	img := solid(24, 24, color.NRGBA{120, 60, 200, 128})
	Apply(img, Config{Enabled: true, DotSize: 12, Spacing: 6})
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b, a := img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
		if a != 255 || r != g || g != b {
			t.Fatalf("pixel %d = (%d,%d,%d,%d), want opaque gray", i/4, r, g, b, a)
		}
	}
}

func TestCellRadii(t *testing.T) {
	img := solid(10, 5, color.NRGBA{255, 255, 255, 255})
	// Left cell black, right 2-wide edge cell stays white.
	for y := 0; y < 5; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
		}
	}

	radii := CellRadii(img, 8, 10)
	if len(radii) != 2 {
		t.Fatalf("got %d cells, want 2", len(radii))
	}
	if math.Abs(radii[0]-5) > 1e-9 {
		t.Errorf("black cell radius = %v, want 5", radii[0])
	}
	if math.Abs(radii[1]) > 1e-9 {
		t.Errorf("white edge cell radius = %v, want 0", radii[1])
	}
}

func TestNormalize(t *testing.T) {
	got := Config{Enabled: true, DotSize: 99, Spacing: 80}.Normalize()
	want := Config{Enabled: true, DotSize: MaxDotSize, Spacing: MaxSpacing}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
	if got := (Config{DotSize: math.NaN()}).Normalize().DotSize; got != 8 {
		t.Errorf("NaN dot size -> %v, want 8", got)
	}
}
