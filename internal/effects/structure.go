package effects

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog/log"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

const particleOpacity = 0.7

// StructurePoint is an anchor in normalized [0,1]² coordinates.
type StructurePoint struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Structure draws a node graph over externally supplied anchor points,
// then scatters particles.
type Structure struct {
	Complexity    float64          `json:"complexity" toml:"complexity"`
	Dynamism      float64          `json:"dynamism" toml:"dynamism"`
	Fragmentation float64          `json:"fragmentation" toml:"fragmentation"`
	Color         string           `json:"color" toml:"color"`
	Points        []StructurePoint `json:"points,omitempty" toml:"points,omitempty"`
}

// DefaultStructure returns the initial structure settings (no points).
func DefaultStructure() Structure {
	return Structure{Complexity: 50, Dynamism: 30, Fragmentation: 20, Color: "#000000"}
}

// Kind implements Config.
func (Structure) Kind() Kind { return KindStructure }

func (s Structure) normalize() Structure {
	s.Complexity = clampRange(s.Complexity, 1, 100, 50)
	s.Dynamism = clampRange(s.Dynamism, 0, 100, 30)
	s.Fragmentation = clampRange(s.Fragmentation, 0, 100, 20)
	return s
}

// Selected returns the prefix of Points drawn at the current complexity.
func (s Structure) Selected() []StructurePoint {
	s = s.normalize()
	n := int(math.Ceil(float64(len(s.Points)) * s.Complexity / 100))
	return s.Points[:min(n, len(s.Points))]
}

type label struct {
	text string
	x, y float64
}

func (s Structure) apply(ctx context.Context, clean *image.NRGBA, env Env) (*image.NRGBA, error) {
	s = s.normalize()
	col, err := pximg.ParseHexColor(s.Color)
	if err != nil {
		log.Debug().Str("color", s.Color).Msg("invalid structure color, using black")
		col = color.NRGBA{A: 0xff}
	}

	out := pximg.Clone(clean)
	b := clean.Bounds()
	w, h := b.Dx(), b.Dy()
	fw, fh := float64(w), float64(h)
	rng := env.rand()

	lineWidth := math.Max(0.5, fw/800)
	dotRadius := math.Max(1, fw/300)
	labelSize := math.Max(8, fw/100)

	tokens := codeTokens(rng)
	pts := s.Selected()
	n := len(pts)

	if n > 1 {
		dc := pximg.NewCanvas(w, h)
		dc.SetColor(col)
		dc.SetLineWidth(lineWidth)
		var labels []label
		edges := min(int(math.Ceil(s.Complexity/33)), n-1)

		for i, p := range pts {
			x1, y1 := p.X*fw, p.Y*fh

			if rng.Float64() < s.Complexity/150 {
				labels = append(labels, label{
					text: tokens[rng.IntN(len(tokens))],
					x:    x1 + dotRadius*2,
					y:    y1,
				})
			}

			for j := 0; j < edges; j++ {
				k := rng.IntN(n)
				if k == i {
					k = (k + 1) % n
				}
				x2, y2 := pts[k].X*fw, pts[k].Y*fh
				dc.MoveTo(x1, y1)
				if s.Dynamism > 10 && rng.Float64() < s.Dynamism/100 {
					cx, cy := bendControl(x1, y1, x2, y2, s.Dynamism, rng)
					dc.QuadraticTo(cx, cy, x2, y2)
				} else {
					dc.LineTo(x2, y2)
				}
			}
		}
		dc.Stroke()

		for _, p := range pts {
			dc.DrawCircle(p.X*fw, p.Y*fh, dotRadius)
		}
		dc.Fill()

		if len(labels) > 0 {
			if err := drawLabels(dc, env.fonts(), labelSize, labels); err != nil {
				return nil, err
			}
		}
		pximg.Composite(out, dc.Image(), 1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	particles := int(math.Floor(s.Fragmentation / 100 * 5000 * fw / 1920))
	if particles > 0 {
		// One fill for all squares, so overlaps never stack past the opacity.
		pc := pximg.NewCanvas(w, h)
		pc.SetColor(col)
		for i := 0; i < particles; i++ {
			x := rng.Float64() * fw
			y := rng.Float64() * fh
			side := rng.Float64() * 1.5
			pc.DrawRectangle(x, y, side, side)
		}
		pc.Fill()
		pximg.Composite(out, pc.Image(), particleOpacity)
	}
	return out, nil
}

// bendControl returns the control point of a quadratic edge from (x1, y1)
// to (x2, y2), pushed off the chord's midpoint perpendicular to it.
func bendControl(x1, y1, x2, y2, dynamism float64, rng *rand.Rand) (float64, float64) {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	offset := dynamism / 100 * dist * (rng.Float64() - 0.5) * 0.8
	mx, my := (x1+x2)/2, (y1+y2)/2
	if dist == 0 {
		return mx, my
	}
	return mx - dy/dist*offset, my + dx/dist*offset
}

// codeTokens builds the label vocabulary. Some entries embed random values,
// drawn once per render.
func codeTokens(rng *rand.Rand) []string {
	return []string{
		"let main = () =>",
		"for(;;)",
		fmt.Sprintf("p%d", int(math.Round(rng.Float64()*1000))),
		fmt.Sprintf("v = %.3f", rng.Float64()),
		"init()",
		"draw()",
		fmt.Sprintf("0x%x", int(rng.Float64()*255)),
		"await promise",
		"=> {}",
		fmt.Sprintf("[%d]", rng.IntN(10)),
		"err: null",
	}
}

func drawLabels(dc *gg.Context, fonts *FontBook, size float64, labels []label) error {
	face, err := fonts.Face(FontMono, size)
	if err != nil {
		return err
	}
	defer face.Close()

	dc.SetFontFace(face)
	for _, l := range labels {
		dc.DrawString(l.text, l.x, l.y)
	}
	return nil
}
