package effects

import (
	"context"
	"image/color"
	"testing"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

func TestStructure_Selected(t *testing.T) {
	pts := make([]StructurePoint, 10)
	for i := range pts {
		pts[i] = StructurePoint{X: float64(i) / 10, Y: 0.5}
	}

	tests := []struct {
		complexity float64
		want       int
	}{
		{100, 10},
		{50, 5},
		{33, 4},
		{1, 1},
		{0, 1}, // clamped to 1
		{500, 10},
	}
	for _, tt := range tests {
		s := Structure{Complexity: tt.complexity, Points: pts}
		got := s.Selected()
		if len(got) != tt.want {
			t.Errorf("complexity %v: selected %d points, want %d", tt.complexity, len(got), tt.want)
		}
		if len(got) > 0 && got[0] != pts[0] {
			t.Errorf("complexity %v: selection is not a prefix", tt.complexity)
		}
	}
}

func TestStructure_FewerThanTwoPoints(t *testing.T) {
	clean := texture(90, 60)
	for _, pts := range [][]StructurePoint{nil, {{0.5, 0.5}}} {
		cfg := Structure{Complexity: 100, Dynamism: 100, Fragmentation: 0, Color: "#ff0000", Points: pts}
		out, err := Apply(context.Background(), clean, cfg, seeded(11))
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !pximg.Equal(out, clean) {
			t.Errorf("%d points: graph pass should draw nothing", len(pts))
		}
	}
}

func TestStructure_DrawsInColor(t *testing.T) {
	clean := solid(300, 200, color.NRGBA{255, 255, 255, 255})
	cfg := Structure{
		Complexity: 100,
		Dynamism:   0,
		Color:      "#0000ff",
		Points:     []StructurePoint{{0.1, 0.1}, {0.9, 0.1}, {0.5, 0.9}},
	}
	out, err := Apply(context.Background(), clean, cfg, seeded(12))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Dots sit on the anchor points; the pixel below-right of an anchor
	// holds a quarter of a one-pixel dot.
	for _, p := range cfg.Points {
		c := out.NRGBAAt(int(p.X*300), int(p.Y*200))
		if c.B != 255 || c.R > 100 {
			t.Errorf("anchor (%v,%v) = %v, want blue", p.X, p.Y, c)
		}
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i+2] != 255 {
			t.Fatalf("pixel %d has blue %d; only blue may be drawn over white", i/4, out.Pix[i+2])
		}
	}
}

func TestStructure_InvalidColorIsBlack(t *testing.T) {
	clean := solid(120, 120, color.NRGBA{255, 255, 255, 255})
	cfg := Structure{Complexity: 100, Color: "not-a-color", Points: []StructurePoint{{0.25, 0.25}, {0.75, 0.75}}}
	out, err := Apply(context.Background(), clean, cfg, seeded(13))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if c := out.NRGBAAt(30, 30); c.R > 100 || c.R != c.G || c.G != c.B {
		t.Errorf("anchor pixel = %v, want dark gray", c)
	}
}

func TestStructure_Particles(t *testing.T) {
	clean := solid(384, 100, color.NRGBA{255, 255, 255, 255})
	cfg := Structure{Complexity: 50, Fragmentation: 100, Color: "#000000"}
	out, err := Apply(context.Background(), clean, cfg, seeded(14))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	// 1000 particles of up to 1.5px at 70% opacity.
	n := changedPixels(out, clean)
	if n < 300 {
		t.Errorf("only %d pixels touched by particles", n)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] < 255-179 {
			t.Fatalf("pixel %d = %d, darker than 70%% black allows", i/4, out.Pix[i])
		}
	}
}
