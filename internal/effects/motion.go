package effects

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/parallel"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// motionSamples is the number of zoom layers averaged together.
const motionSamples = 20

// MotionBlur is a radial zoom blur. Focus is given in percent of the
// output size.
type MotionBlur struct {
	FocusX    float64 `json:"focusX" toml:"focus_x"`
	FocusY    float64 `json:"focusY" toml:"focus_y"`
	Intensity float64 `json:"intensity" toml:"intensity"`
}

// DefaultMotionBlur returns the initial motion blur settings.
func DefaultMotionBlur() MotionBlur {
	return MotionBlur{FocusX: 50, FocusY: 50, Intensity: 15}
}

// Kind implements Config.
func (MotionBlur) Kind() Kind { return KindMotionBlur }

func (m MotionBlur) normalize() MotionBlur {
	m.FocusX = clampRange(m.FocusX, 0, 100, 50)
	m.FocusY = clampRange(m.FocusY, 0, 100, 50)
	m.Intensity = clampRange(m.Intensity, 0, 50, 15)
	return m
}

func (m MotionBlur) apply(ctx context.Context, clean *image.NRGBA, _ Env) (*image.NRGBA, error) {
	m = m.normalize()
	if m.Intensity == 0 {
		return pximg.Clone(clean), nil
	}

	b := clean.Bounds()
	w, h := b.Dx(), b.Dy()
	cx := float64(w) * m.FocusX / 100
	cy := float64(h) * m.FocusY / 100
	maxZoom := 1 + (m.Intensity/100)*0.5

	// Premultiplied running sums, so every layer gets exactly 1/N weight.
	acc := make([]float64, w*h*4)
	layer := image.NewNRGBA(b)

	for i := 0; i < motionSamples; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		zoom := 1 + (maxZoom-1)*float64(i)/float64(motionSamples-1)

		src := clean
		if i > 0 {
			// Scale about the focus point: dst = focus + zoom*(src-focus).
			s2d := f64.Aff3{
				zoom, 0, cx - cx*zoom,
				0, zoom, cy - cy*zoom,
			}
			xdraw.BiLinear.Transform(layer, s2d, clean, b, xdraw.Src, nil)
			src = layer
		}
		accumulate(acc, src)
	}

	out := image.NewNRGBA(b)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+w*4]
			sums := acc[y*w*4 : (y+1)*w*4]
			for i := 0; i < len(row); i += 4 {
				a := sums[i+3]
				if a == 0 {
					continue
				}
				row[i] = pximg.Clamp8(sums[i] / a)
				row[i+1] = pximg.Clamp8(sums[i+1] / a)
				row[i+2] = pximg.Clamp8(sums[i+2] / a)
				row[i+3] = pximg.Clamp8(a / motionSamples)
			}
		}
	})
	return out, nil
}

func accumulate(acc []float64, img *image.NRGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			sums := acc[y*w*4 : (y+1)*w*4]
			for i := 0; i < len(row); i += 4 {
				a := float64(row[i+3])
				sums[i] += float64(row[i]) * a
				sums[i+1] += float64(row[i+1]) * a
				sums[i+2] += float64(row[i+2]) * a
				sums[i+3] += a
			}
		}
	})
}
