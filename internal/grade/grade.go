// Package grade implements the color grading stage: a saturation/contrast
// matrix followed by an exposure gain with Reinhard-style highlight
// compression.
//
// The order matters. Exposure is applied as a linear gain first and the
// result is then compressed with x/(x+1), which keeps high exposure values
// from clipping. Both steps always run; with every parameter at 100% the
// first step is an identity and the second still compresses the tones.
package grade

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Parameter limits, in percent.
const (
	MinSaturation = 0.0
	MaxSaturation = 200.0
	MinContrast   = 0.0
	MaxContrast   = 200.0
	MinExposure   = 50.0
	MaxExposure   = 250.0
)

// Config holds the grading parameters. 100 means "unchanged" for each.
type Config struct {
	Saturation float64 `json:"saturation" toml:"saturation"`
	Contrast   float64 `json:"contrast" toml:"contrast"`
	Exposure   float64 `json:"exposure" toml:"exposure"`
}

// Default returns the neutral grading.
func Default() Config {
	return Config{Saturation: 100, Contrast: 100, Exposure: 100}
}

// Normalize clamps every field into its range. NaN resets a field to 100.
func (c Config) Normalize() Config {
	c.Saturation = clampPercent(c.Saturation, MinSaturation, MaxSaturation)
	c.Contrast = clampPercent(c.Contrast, MinContrast, MaxContrast)
	c.Exposure = clampPercent(c.Exposure, MinExposure, MaxExposure)
	return c
}

func clampPercent(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 100
	}
	return math.Max(lo, math.Min(hi, v))
}

// Apply grades img and returns a new surface. Alpha is preserved.
func Apply(img *image.NRGBA, cfg Config) *image.NRGBA {
	cfg = cfg.Normalize()
	m := saturationMatrix(cfg.Saturation / 100)
	contrast := cfg.Contrast / 100
	identity := cfg.Saturation == 100 && cfg.Contrast == 100
	tone := ToneMapLUT(cfg.Exposure)

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		if !identity {
			c = m.apply(c, contrast)
		}
		c.R = tone[c.R]
		c.G = tone[c.G]
		c.B = tone[c.B]
		return c
	})
}

// SaturateContrast applies only the first grading step.
func SaturateContrast(img *image.NRGBA, saturation, contrast float64) *image.NRGBA {
	cfg := Config{Saturation: saturation, Contrast: contrast, Exposure: 100}.Normalize()
	m := saturationMatrix(cfg.Saturation / 100)
	k := cfg.Contrast / 100
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return m.apply(c, k)
	})
}

// ToneMapValue applies the exposure step to a single channel value:
// normalise to [0,1], multiply by exposure/100, compress with x/(x+1) and
// rescale to [0,255].
func ToneMapValue(v uint8, exposure float64) uint8 {
	x := float64(v) / 255 * (exposure / 100)
	x = x / (x + 1)
	return pximg.Clamp8(x * 255)
}

// ToneMapLUT precomputes ToneMapValue for all 256 input levels.
func ToneMapLUT(exposure float64) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = ToneMapValue(uint8(i), exposure)
	}
	return lut
}

// matrix is a 3x3 color matrix in row-major order.
type matrix [9]float64

// saturationMatrix builds the standard luminance-preserving saturation
// matrix used by CSS saturate(); s = 1 is the identity.
func saturationMatrix(s float64) matrix {
	return matrix{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	}
}

// apply runs the saturation matrix and then the contrast slope k around
// mid-grey, quantising to 8 bits once at the end.
func (m matrix) apply(c color.NRGBA, k float64) color.NRGBA {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	r2 := m[0]*r + m[1]*g + m[2]*b
	g2 := m[3]*r + m[4]*g + m[5]*b
	b2 := m[6]*r + m[7]*g + m[8]*b

	r2 = clampUnit(r2)
	g2 = clampUnit(g2)
	b2 = clampUnit(b2)

	c.R = pximg.Clamp8((r2-127.5)*k + 127.5)
	c.G = pximg.Clamp8((g2-127.5)*k + 127.5)
	c.B = pximg.Clamp8((b2-127.5)*k + 127.5)
	return c
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
