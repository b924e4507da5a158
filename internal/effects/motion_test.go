package effects

import (
	"context"
	"image/color"
	"testing"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

func TestMotionBlur_ZeroIntensityIsIdentity(t *testing.T) {
	clean := texture(64, 48)
	for _, focus := range [][2]float64{{0, 0}, {50, 50}, {100, 25}} {
		cfg := MotionBlur{FocusX: focus[0], FocusY: focus[1], Intensity: 0}
		out, err := Apply(context.Background(), clean, cfg, Env{})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !pximg.Equal(out, clean) {
			t.Errorf("focus %v: intensity 0 changed the image", focus)
		}
	}
}

func TestMotionBlur_UniformImageStaysUniform(t *testing.T) {
	c := color.NRGBA{200, 80, 30, 255}
	clean := solid(50, 40, c)
	out, err := Apply(context.Background(), clean, MotionBlur{FocusX: 20, FocusY: 70, Intensity: 50}, Env{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		for ch, want := range []uint8{c.R, c.G, c.B, c.A} {
			if d := int(out.Pix[i+ch]) - int(want); d < -1 || d > 1 {
				t.Fatalf("pixel %d channel %d = %d, want %d", i/4, ch, out.Pix[i+ch], want)
			}
		}
	}
}

func TestMotionBlur_BlursAwayFromFocus(t *testing.T) {
	clean := texture(120, 120)
	out, err := Apply(context.Background(), clean, MotionBlur{FocusX: 50, FocusY: 50, Intensity: 50}, Env{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Blue stripes near a corner are smeared toward mid gray.
	corner := out.NRGBAAt(5, 60)
	if corner.B == 0 || corner.B == 255 {
		t.Errorf("edge pixel blue = %d, want a blend", corner.B)
	}
	// The focus point itself does not move between layers.
	centre := out.NRGBAAt(60, 60)
	want := clean.NRGBAAt(60, 60)
	if d := int(centre.B) - int(want.B); d < -64 || d > 64 {
		t.Errorf("focus pixel blue = %d, clean %d", centre.B, want.B)
	}
}

func TestMotionBlur_Normalize(t *testing.T) {
	got := MotionBlur{FocusX: -10, FocusY: 250, Intensity: 99}.normalize()
	want := MotionBlur{FocusX: 0, FocusY: 100, Intensity: 50}
	if got != want {
		t.Errorf("normalize() = %+v, want %+v", got, want)
	}
}
