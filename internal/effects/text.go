package effects

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/blur"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

const (
	// DefaultText is shown until the caller supplies its own words.
	DefaultText = "Your text here"

	textBlurRadius = 2
)

// TextOverlay scatters the words of Text across the frame.
type TextOverlay struct {
	Text string `json:"text" toml:"text"`
	Blur bool   `json:"blur" toml:"blur"`
	// Font is a FontBook identifier. Empty selects DefaultFont.
	Font string `json:"font,omitempty" toml:"font,omitempty"`
}

// DefaultTextOverlay returns the initial text overlay settings.
func DefaultTextOverlay() TextOverlay {
	return TextOverlay{Text: DefaultText}
}

// Kind implements Config.
func (TextOverlay) Kind() Kind { return KindTextOverlay }

func (t TextOverlay) apply(ctx context.Context, clean *image.NRGBA, env Env) (*image.NRGBA, error) {
	out := pximg.Clone(clean)
	words := strings.Fields(t.Text)
	if len(words) == 0 {
		return out, nil
	}

	b := clean.Bounds()
	fw, fh := float64(b.Dx()), float64(b.Dy())
	face, err := env.fonts().Face(t.Font, math.Max(24, fw/25))
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dc := pximg.NewCanvas(b.Dx(), b.Dy())
	dc.SetFontFace(face)
	dc.SetColor(color.White)
	rng := env.rand()
	for _, word := range words {
		x := rng.Float64() * fw
		y := rng.Float64() * fh
		// Centred horizontally, the point sits on the baseline.
		dc.DrawStringAnchored(word, x, y, 0.5, 0)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layer := dc.Image()
	if t.Blur {
		layer = blur.Gaussian(layer, textBlurRadius)
	}
	pximg.Composite(out, layer, 1)
	return out, nil
}
