package effects

import (
	"context"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Mask is a foreground outline produced by an external vision service.
// Coordinates live in a 100×100 space regardless of the photo size.
type Mask struct {
	PathData string `json:"svgPathData" toml:"svg_path_data"`
}

// PortraitBlur keeps the masked subject sharp and blurs everything else.
type PortraitBlur struct {
	Intensity float64 `json:"intensity" toml:"intensity"`
	Feather   float64 `json:"feather" toml:"feather"`
	Expansion float64 `json:"expansion" toml:"expansion"`
	Mask      *Mask   `json:"mask,omitempty" toml:"mask,omitempty"`
}

// DefaultPortraitBlur returns the initial portrait blur settings (no mask).
func DefaultPortraitBlur() PortraitBlur {
	return PortraitBlur{Intensity: 8, Feather: 10}
}

// Kind implements Config.
func (PortraitBlur) Kind() Kind { return KindPortraitBlur }

func (p PortraitBlur) normalize() PortraitBlur {
	p.Intensity = clampRange(p.Intensity, 0, 20, 8)
	p.Feather = clampRange(p.Feather, 0, 50, 10)
	p.Expansion = clampRange(p.Expansion, -50, 50, 0)
	return p
}

func (p PortraitBlur) apply(ctx context.Context, clean *image.NRGBA, _ Env) (*image.NRGBA, error) {
	p = p.normalize()
	if p.Mask == nil || strings.TrimSpace(p.Mask.PathData) == "" {
		return pximg.Clone(clean), nil
	}
	path, err := ParsePath(p.Mask.PathData)
	if err != nil {
		return nil, err
	}

	var out *image.NRGBA
	if p.Intensity > 0 {
		out = imaging.Blur(clean, p.Intensity)
	} else {
		out = pximg.Clone(clean)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := clean.Bounds()
	mask := SubjectMask(path, b.Dx(), b.Dy(), p.Expansion, p.Feather)
	pximg.CompositeMasked(out, clean, mask)
	return out, nil
}

// SubjectMask rasterizes path (in 100×100 space) at width×height, grows or
// shrinks it by expansion pixels and softens its edge by feather pixels.
func SubjectMask(path *Path, width, height int, expansion, feather float64) *pximg.Mask {
	sx, sy := float64(width)/100, float64(height)/100
	dc := pximg.NewCanvas(width, height)

	// A centred stroke of twice the expansion reaches exactly |expansion|
	// pixels past the outline on each side.
	if expansion < 0 {
		band := pximg.NewCanvas(width, height)
		band.SetLineWidth(-2 * expansion)
		path.Trace(band, sx, sy)
		band.Stroke()
		// Same size as dc, so SetMask cannot fail.
		_ = dc.SetMask(band.AsMask())
		dc.InvertMask()
	}

	path.Trace(dc, sx, sy)
	if expansion > 0 {
		dc.FillPreserve()
		dc.SetLineWidth(2 * expansion)
		dc.Stroke()
	} else {
		dc.Fill()
	}

	if feather > 0 {
		return gg.NewContextForRGBA(blur.Gaussian(dc.Image(), feather)).AsMask()
	}
	return dc.AsMask()
}
