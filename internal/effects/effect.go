package effects

import (
	"context"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// Kind names an effect variant.
type Kind string

// Effect kinds.
const (
	KindNone         Kind = "none"
	KindMotionBlur   Kind = "motion_blur"
	KindPortraitBlur Kind = "portrait_blur"
	KindTextOverlay  Kind = "text_overlay"
	KindStructure    Kind = "structure"
	KindGamma        Kind = "gamma"
	KindGlitch       Kind = "glitch"
)

// Kinds lists every selectable effect.
var Kinds = []Kind{KindMotionBlur, KindPortraitBlur, KindTextOverlay, KindStructure, KindGamma, KindGlitch}

// Config is one effect variant. The set of implementations is closed.
type Config interface {
	Kind() Kind
	apply(ctx context.Context, clean *image.NRGBA, env Env) (*image.NRGBA, error)
}

// Env carries the collaborators an effect may need.
type Env struct {
	// Rand is the only randomness source effects may use. Required by
	// TextOverlay, Structure and Glitch.
	Rand *rand.Rand

	// Fonts resolves font identifiers. Nil means DefaultFonts.
	Fonts *FontBook
}

func (e Env) fonts() *FontBook {
	if e.Fonts != nil {
		return e.Fonts
	}
	return DefaultFonts()
}

func (e Env) rand() *rand.Rand {
	if e.Rand != nil {
		return e.Rand
	}
	return rand.New(rand.NewPCG(0, 0))
}

// Apply runs cfg against the clean layer and returns a new surface.
// A nil cfg returns a copy of the clean layer.
func Apply(ctx context.Context, clean *image.NRGBA, cfg Config, env Env) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg == nil {
		return pximg.Clone(clean), nil
	}
	if clean.Bounds().Empty() {
		return pximg.Clone(clean), nil
	}

	out, err := cfg.apply(ctx, clean, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Kind(), err)
	}
	return out, nil
}

// clampRange clamps v into [lo, hi]; NaN becomes def.
func clampRange(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}
