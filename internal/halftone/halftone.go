// Package halftone converts a rendered frame into a black-on-white dot
// screen.
//
// The frame is divided into square cells. Each cell becomes one black disc
// whose radius grows as the cell's average luma falls:
//
//	radius = dotSize/2 * (1 - avgLuma/255)
//
// Luma uses the BT.601 weights. Discs are centred on their cell and drawn
// antialiased over a white background.
package halftone

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Parameter limits.
const (
	MaxDotSize = 40
	MaxSpacing = 40
)

// Config controls the halftone stage.
type Config struct {
	Enabled bool    `json:"enabled" toml:"enabled"`
	DotSize float64 `json:"dotSize" toml:"dot_size"`
	Spacing int     `json:"spacing" toml:"spacing"`
}

// Default returns the initial settings: disabled, 8px dots on an 8px grid.
func Default() Config {
	return Config{DotSize: 8, Spacing: 8}
}

// Normalize clamps the parameters into range.
func (c Config) Normalize() Config {
	if math.IsNaN(c.DotSize) {
		c.DotSize = 8
	}
	c.DotSize = math.Max(0, math.Min(MaxDotSize, c.DotSize))
	c.Spacing = max(0, min(MaxSpacing, c.Spacing))
	return c
}

// Active reports whether Apply would modify a frame.
func (c Config) Active() bool {
	c = c.Normalize()
	return c.Enabled && c.Spacing > 0
}

// Apply screens img in place. It is a no-op unless the stage is enabled
// with a positive spacing.
func Apply(img *image.NRGBA, cfg Config) {
	if !cfg.Active() {
		return
	}
	cfg = cfg.Normalize()
	b := img.Bounds()
	if b.Empty() {
		return
	}

	radii := CellRadii(img, cfg.Spacing, cfg.DotSize)
	s := cfg.Spacing
	cols := (b.Dx() + s - 1) / s

	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	half := float64(s) / 2
	for i, radius := range radii {
		if radius <= 0 {
			continue
		}
		dc.DrawCircle(float64((i%cols)*s)+half, float64((i/cols)*s)+half, radius)
	}
	dc.Fill()

	draw.Draw(img, b, dc.Image(), image.Point{}, draw.Src)
}

// CellRadii returns the disc radius of every spacing×spacing cell in
// row-major order. Edge cells average only the pixels inside the frame.
func CellRadii(img *image.NRGBA, spacing int, dotSize float64) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cols := (w + spacing - 1) / spacing
	rows := (h + spacing - 1) / spacing
	radii := make([]float64, cols*rows)

	parallel.Line(rows, func(start, end int) {
		for row := start; row < end; row++ {
			y0 := row * spacing
			y1 := min(y0+spacing, h)
			for col := 0; col < cols; col++ {
				x0 := col * spacing
				x1 := min(x0+spacing, w)

				var total float64
				for y := y0; y < y1; y++ {
					px := img.Pix[y*img.Stride+x0*4 : y*img.Stride+x1*4]
					for i := 0; i < len(px); i += 4 {
						total += pximg.Luma(px[i], px[i+1], px[i+2])
					}
				}
				avg := total / float64((x1-x0)*(y1-y0)) / 255
				radii[row*cols+col] = dotSize / 2 * (1 - avg)
			}
		}
	})
	return radii
}
