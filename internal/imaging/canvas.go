package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// A Mask is a single-channel coverage buffer: 0 is fully outside, 255 is
// fully inside.
type Mask = image.Alpha

// NewCanvas returns a transparent drawing context for a width×height layer.
// Paint starts as opaque white, lines use round caps and joins.
func NewCanvas(width, height int) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return dc
}

// Composite draws layer over dst with the layer's alpha scaled by opacity.
func Composite(dst draw.Image, layer image.Image, opacity float64) {
	if !(opacity > 0) {
		return
	}
	b := dst.Bounds()
	if opacity >= 1 {
		draw.Draw(dst, b, layer, layer.Bounds().Min, draw.Over)
		return
	}
	global := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	draw.DrawMask(dst, b, layer, layer.Bounds().Min, global, image.Point{}, draw.Over)
}

// CompositeMasked draws src over dst through mask.
func CompositeMasked(dst draw.Image, src image.Image, mask *Mask) {
	draw.DrawMask(dst, dst.Bounds(), src, src.Bounds().Min, mask, mask.Bounds().Min, draw.Over)
}
