// Package grain adds film grain, the last stage of every render.
package grain

import (
	"image"
	"math/rand/v2"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Amount is the peak-to-peak noise amplitude in 8-bit levels.
const Amount = 25

// Config controls the grain stage.
type Config struct {
	// Monochrome shares one noise value across R, G and B of a pixel
	// instead of drawing each channel independently.
	Monochrome bool `json:"monochrome" toml:"monochrome"`
}

// Apply adds uniform noise in [-Amount/2, +Amount/2) to the color channels
// of img in place. Alpha is untouched.
func Apply(img *image.NRGBA, cfg Config, rng *rand.Rand) {
	b := img.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			if cfg.Monochrome {
				n := noise(rng)
				row[i] = pximg.Clamp8(float64(row[i]) + n)
				row[i+1] = pximg.Clamp8(float64(row[i+1]) + n)
				row[i+2] = pximg.Clamp8(float64(row[i+2]) + n)
				continue
			}
			row[i] = pximg.Clamp8(float64(row[i]) + noise(rng))
			row[i+1] = pximg.Clamp8(float64(row[i+1]) + noise(rng))
			row[i+2] = pximg.Clamp8(float64(row[i+2]) + noise(rng))
		}
	}
}

func noise(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * Amount
}
