package effects

import (
	"context"
	"image"
	"math"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/parallel"
	xdraw "golang.org/x/image/draw"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Glitch severity levels. Each level includes all lower ones.
const (
	GlitchChannelShift = 1
	GlitchSlices       = 2
	GlitchScanlines    = 3
	GlitchCorruption   = 4
)

// Glitch simulates digital corruption.
type Glitch struct {
	Level     int     `json:"level" toml:"level"`
	Intensity float64 `json:"intensity" toml:"intensity"`
}

// DefaultGlitch returns the initial glitch settings.
func DefaultGlitch() Glitch {
	return Glitch{Level: GlitchChannelShift, Intensity: 10}
}

// Kind implements Config.
func (Glitch) Kind() Kind { return KindGlitch }

func (g Glitch) normalize() Glitch {
	g.Level = max(GlitchChannelShift, min(g.Level, GlitchCorruption))
	g.Intensity = clampRange(g.Intensity, 0, 100, 10)
	return g
}

func (g Glitch) apply(ctx context.Context, clean *image.NRGBA, env Env) (*image.NRGBA, error) {
	g = g.normalize()
	out := pximg.Clone(clean)
	if g.Intensity == 0 {
		return out, nil
	}

	k := g.Intensity / 100
	rng := env.rand()

	shiftChannels(out, clean, int(math.Floor(k*15)))
	if g.Level >= GlitchSlices {
		displaceSlices(out, clean, int(math.Floor(k*20)), k, rng)
	}
	if g.Level >= GlitchScanlines {
		darkenScanlines(out, k*60)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.Level >= GlitchCorruption {
		corruptBlocks(out, int(math.Floor(k*25)), rng)
	}
	return out, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}

// shiftChannels moves red left and blue right by shift pixels. Samples that
// fall outside the row keep the pixel's own value.
func shiftChannels(dst, src *image.NRGBA, shift int) {
	if shift == 0 {
		return
	}
	w := src.Bounds().Dx()
	for y := 0; y < src.Bounds().Dy(); y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			if r := x + shift; r < w {
				d[x*4] = s[r*4]
			}
			if b := x - shift; b >= 0 {
				d[x*4+2] = s[b*4+2]
			}
		}
	}
}

// displaceSlices rotates random horizontal bands of the pre-glitch frame
// sideways, wrapping around the row.
func displaceSlices(dst, src *image.NRGBA, count int, k float64, rng *rand.Rand) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	fw, fh := float64(w), float64(h)
	for i := 0; i < count; i++ {
		sliceH := max(1, int(uniform(rng, 1, fh/10)))
		startY := int(uniform(rng, 0, fh-float64(sliceH)))
		offset := int(math.Floor(uniform(rng, -fw*0.1, fw*0.1) * k))

		for y := max(0, startY); y < startY+sliceH && y < h; y++ {
			s := src.Pix[y*src.Stride : y*src.Stride+w*4]
			d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for x := 0; x < w; x++ {
				sx := ((x+offset)%w + w) % w
				copy(d[x*4:x*4+4], s[sx*4:sx*4+4])
			}
		}
	}
}

// darkenScanlines subtracts amount from every channel of every fourth row.
func darkenScanlines(img *image.NRGBA, amount float64) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	rows := (h + 3) / 4
	parallel.Line(rows, func(start, end int) {
		for r := start; r < end; r++ {
			y := r * 4
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			for i := 0; i < len(row); i += 4 {
				row[i] = pximg.Clamp8(float64(row[i]) - amount)
				row[i+1] = pximg.Clamp8(float64(row[i+1]) - amount)
				row[i+2] = pximg.Clamp8(float64(row[i+2]) - amount)
			}
		}
	})
}

// corruptBlocks copies small random rectangles to random places. Each copy
// reads the frame as left by the copies before it.
func corruptBlocks(img *image.NRGBA, count int, rng *rand.Rand) {
	fw, fh := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	for i := 0; i < count; i++ {
		sx := int(uniform(rng, 0, fw))
		sy := int(uniform(rng, 0, fh))
		sw := int(uniform(rng, 10, fw/4))
		sh := int(uniform(rng, 1, 20))
		dx := int(uniform(rng, 0, fw))
		dy := int(uniform(rng, 0, fh))
		copyBlock(img, image.Rect(sx, sy, sx+sw, sy+sh), image.Pt(dx, dy))
	}
}

// copyBlock copies sr to dp within img, clipping both rectangles to the
// frame. Overlapping source and destination are handled.
func copyBlock(img *image.NRGBA, sr image.Rectangle, dp image.Point) {
	b := img.Bounds()
	clipped := sr.Intersect(b)
	if clipped.Empty() {
		return
	}
	dp = dp.Add(clipped.Min.Sub(sr.Min))
	dr := image.Rectangle{Min: dp, Max: dp.Add(clipped.Size())}.Intersect(b)
	if dr.Empty() {
		return
	}
	clipped.Min = clipped.Min.Add(dr.Min.Sub(dp))
	clipped.Max = clipped.Min.Add(dr.Size())

	tmp := image.NewNRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.Copy(tmp, image.Point{}, img, clipped, xdraw.Src, nil)
	xdraw.Copy(img, dr.Min, tmp, tmp.Bounds(), xdraw.Over, nil)
}
