package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func coverage(m *Mask) int {
	n := 0
	for _, v := range m.Pix {
		n += int(v)
	}
	return n / 255
}

func TestNewCanvas_StartsTransparent(t *testing.T) {
	dc := NewCanvas(8, 6)
	if got := coverage(dc.AsMask()); got != 0 {
		t.Errorf("fresh canvas coverage = %d, want 0", got)
	}
	if b := dc.Image().Bounds(); b != image.Rect(0, 0, 8, 6) {
		t.Errorf("bounds = %v, want 8x6", b)
	}
}

func TestNewCanvas_Disc(t *testing.T) {
	dc := NewCanvas(40, 40)
	dc.DrawCircle(20, 20, 10)
	dc.Fill()
	m := dc.AsMask()

	if m.Pix[20*m.Stride+20] != 255 {
		t.Error("disc centre should be fully covered")
	}
	if m.Pix[0] != 0 {
		t.Error("corner should be empty")
	}
	// Area of a radius-10 disc is ~314 pixels.
	if got := coverage(m); got < 300 || got > 330 {
		t.Errorf("coverage: got %d, want ~314", got)
	}
}

func TestNewCanvas_OverlapDoesNotCancel(t *testing.T) {
	dc := NewCanvas(20, 20)
	dc.DrawRectangle(2, 2, 10, 10)
	dc.DrawCircle(7, 7, 4)
	dc.Fill()
	dc.SetLineWidth(4)
	dc.MoveTo(2, 7)
	dc.LineTo(12, 7)
	dc.MoveTo(12, 7)
	dc.LineTo(2, 7)
	dc.Stroke()
	m := dc.AsMask()

	if m.Pix[7*m.Stride+7] != 255 {
		t.Errorf("overlapping shapes should stay covered, got %d", m.Pix[7*m.Stride+7])
	}
}

func TestNewCanvas_StrokeWidth(t *testing.T) {
	dc := NewCanvas(50, 20)
	dc.SetLineWidth(4)
	dc.MoveTo(5, 10)
	dc.LineTo(45, 10)
	dc.Stroke()
	m := dc.AsMask()

	// 40 long and 4 wide, plus two round caps of radius 2.
	if got := coverage(m); got < 160 || got > 185 {
		t.Errorf("coverage: got %d, want ~172", got)
	}
	if m.Pix[3*m.Stride+25] != 0 {
		t.Error("pixels far from the line should be empty")
	}
}

func TestComposite(t *testing.T) {
	layer := image.NewRGBA(image.Rect(0, 0, 3, 1))
	layer.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	layer.SetRGBA(2, 0, color.RGBA{0, 0, 0, 255})

	tests := []struct {
		name    string
		opacity float64
		wantR   [3]uint8
		slack   int
	}{
		{"opaque", 1, [3]uint8{0, 255, 0}, 0},
		{"half", 0.5, [3]uint8{127, 255, 127}, 1},
		{"invisible", 0, [3]uint8{255, 255, 255}, 0},
		{"negative", -1, [3]uint8{255, 255, 255}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := imaging.New(3, 1, color.NRGBA{255, 255, 255, 255})
			Composite(dst, layer, tt.opacity)
			for x, want := range tt.wantR {
				c := dst.NRGBAAt(x, 0)
				if d := int(c.R) - int(want); d < -tt.slack || d > tt.slack {
					t.Errorf("pixel %d R = %d, want %d", x, c.R, want)
				}
				if c.A != 255 {
					t.Errorf("pixel %d alpha = %d, want 255", x, c.A)
				}
			}
		})
	}
}

func TestCompositeMasked(t *testing.T) {
	dst := imaging.New(3, 1, color.NRGBA{0, 0, 0, 255})
	src := imaging.New(3, 1, color.NRGBA{200, 100, 50, 255})
	mask := image.NewAlpha(image.Rect(0, 0, 3, 1))
	mask.Pix[0] = 255
	mask.Pix[2] = 128

	CompositeMasked(dst, src, mask)

	if c := dst.NRGBAAt(0, 0); c != (color.NRGBA{200, 100, 50, 255}) {
		t.Errorf("covered pixel = %v, want source", c)
	}
	if c := dst.NRGBAAt(1, 0); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("uncovered pixel = %v, want destination", c)
	}
	if c := dst.NRGBAAt(2, 0); c.R < 99 || c.R > 101 {
		t.Errorf("half covered pixel R = %d, want ~100", c.R)
	}
}
