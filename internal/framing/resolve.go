package framing

import (
	"image"
	"math"
)

// Zoom and pan limits.
const (
	MinScale  = 1.0
	MaxScale  = 3.0
	MaxOffset = 100.0
)

// Config selects the crop window.
type Config struct {
	// Ratio is the target aspect ratio; Original keeps the whole photo.
	Ratio Ratio `json:"ratio" toml:"ratio"`

	// Scale zooms the window in; 1 is the largest window that fits.
	Scale float64 `json:"scale" toml:"scale"`

	// OffsetX and OffsetY pan inside the pannable area, -100 (left/top edge)
	// to 100 (right/bottom edge), 0 centred.
	OffsetX float64 `json:"offsetX" toml:"offset_x"`
	OffsetY float64 `json:"offsetY" toml:"offset_y"`
}

// Normalize clamps every field into its documented range.
func (c Config) Normalize() Config {
	if math.IsNaN(c.Scale) || c.Scale < MinScale {
		c.Scale = MinScale
	}
	if c.Scale > MaxScale {
		c.Scale = MaxScale
	}
	c.OffsetX = clampOffset(c.OffsetX)
	c.OffsetY = clampOffset(c.OffsetY)
	return c
}

func clampOffset(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-MaxOffset, math.Min(MaxOffset, v))
}

// Rect is a crop window in source pixel coordinates. Values are fractional;
// use Bounds for the pixel rectangle that is actually sampled.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the window has no area.
func (r Rect) Empty() bool {
	return !(r.Width > 0 && r.Height > 0)
}

// Bounds snaps the window to whole pixels: the origin is rounded and the
// size truncated, so the result never extends past the pannable range.
func (r Rect) Bounds() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	return image.Rect(x0, y0, x0+int(r.Width), y0+int(r.Height))
}

// Resolve computes the crop window for a srcW×srcH photo.
//
// For Original the window is the whole photo regardless of zoom and pan.
// Otherwise the largest window of the target ratio that fits inside the
// photo is shrunk by Scale and placed at
//
//	origin = pannable/2 * (1 + offset/100)
//
// on each axis, clamped to [0, pannable].
func Resolve(srcW, srcH int, cfg Config) Rect {
	full := Rect{Width: float64(srcW), Height: float64(srcH)}
	if cfg.Ratio.IsOriginal() || srcW <= 0 || srcH <= 0 {
		return full
	}
	cfg = cfg.Normalize()

	target := cfg.Ratio.Aspect()
	source := float64(srcW) / float64(srcH)

	var baseW, baseH float64
	if source > target {
		baseH = float64(srcH)
		baseW = baseH * target
	} else {
		baseW = float64(srcW)
		baseH = baseW / target
	}

	w := baseW / cfg.Scale
	h := baseH / cfg.Scale

	return Rect{
		X:      panOrigin(float64(srcW)-w, cfg.OffsetX),
		Y:      panOrigin(float64(srcH)-h, cfg.OffsetY),
		Width:  w,
		Height: h,
	}
}

// panOrigin places a window inside a pannable range. A zero or undefined
// range always yields 0.
func panOrigin(pannable, offset float64) float64 {
	if !(pannable > 0) {
		return 0
	}
	o := pannable / 2 * (1 + offset/100)
	if math.IsNaN(o) {
		return 0
	}
	return math.Max(0, math.Min(pannable, o))
}
