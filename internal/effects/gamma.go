package effects

import (
	"context"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Gamma applies a tone curve that blends a plain power law with a
// "protected" power law taken over a smoothstep of the input.
type Gamma struct {
	// Factor is γ in percent; 100 leaves the image unchanged.
	Factor float64 `json:"factor" toml:"factor"`
	// CurveMix is the share of the protected curve, in percent.
	CurveMix float64 `json:"curveMix" toml:"curve_mix"`
}

// DefaultGamma returns the initial gamma settings.
func DefaultGamma() Gamma {
	return Gamma{Factor: 100, CurveMix: 50}
}

// Kind implements Config.
func (Gamma) Kind() Kind { return KindGamma }

func (g Gamma) normalize() Gamma {
	g.Factor = clampRange(g.Factor, 10, 300, 100)
	g.CurveMix = clampRange(g.CurveMix, 0, 100, 50)
	return g
}

// GammaLUT builds the 256-entry table for factor (percent) and mix
// (percent). Entries are truncated, matching a byte-array store.
func GammaLUT(factor, curveMix float64) [256]uint8 {
	gamma := math.Max(0.1, factor/100)
	mix := curveMix / 100
	inv := 1 / gamma

	var lut [256]uint8
	for i := range lut {
		v := float64(i) / 255
		plain := math.Pow(v, inv)
		smooth := v * v * (3 - 2*v)
		protected := math.Pow(smooth, inv)
		lut[i] = uint8(math.Min(255, (plain*(1-mix)+protected*mix)*255))
	}
	return lut
}

func (g Gamma) apply(_ context.Context, clean *image.NRGBA, _ Env) (*image.NRGBA, error) {
	g = g.normalize()
	out := pximg.Clone(clean)
	if g.Factor == 100 {
		return out, nil
	}

	lut := GammaLUT(g.Factor, g.CurveMix)
	w := out.Bounds().Dx()
	parallel.Line(out.Bounds().Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+w*4]
			for i := 0; i < len(row); i += 4 {
				row[i] = lut[row[i]]
				row[i+1] = lut[row[i+1]]
				row[i+2] = lut[row[i+2]]
			}
		}
	})
	return out, nil
}
