package pipeline

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/framing"
	"github.com/ironsheep/photo-effects-mcp/internal/grade"
	"github.com/ironsheep/photo-effects-mcp/internal/grain"
	"github.com/ironsheep/photo-effects-mcp/internal/halftone"
	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// ErrEmptySource is returned when the source or its crop window has no area.
var ErrEmptySource = errors.New("source image is empty")

// seedStream is the PCG stream selector paired with Request.Seed.
const seedStream = 0x70686f746f667821

// Result is a finished render.
type Result struct {
	Image *image.NRGBA
	// Crop is the source window that was rendered.
	Crop framing.Rect
	// Generation is set by Renderer; zero for direct Pipeline renders.
	Generation uint64
	Elapsed    time.Duration
}

// Pipeline renders requests. It holds no per-render state and is safe for
// concurrent use.
type Pipeline struct {
	fonts *effects.FontBook
}

// New creates a pipeline. A nil font book selects the builtin fonts.
func New(fonts *effects.FontBook) *Pipeline {
	if fonts == nil {
		fonts = effects.DefaultFonts()
	}
	return &Pipeline{fonts: fonts}
}

// Render runs the full chain against src on a new output surface. src is
// never modified.
//
// Configuration problems do not fail the render: values are clamped, and an
// effect that cannot run is replaced by the graded image. Errors are
// returned only for an empty source and for context cancellation.
func (p *Pipeline) Render(ctx context.Context, src image.Image, req Request) (*Result, error) {
	start := time.Now()
	sb := src.Bounds()
	if sb.Empty() {
		return nil, ErrEmptySource
	}

	crop := framing.Resolve(sb.Dx(), sb.Dy(), req.Framing)
	w, h := framing.Size(crop, req.Framing.Ratio, req.Output)
	r := crop.Bounds().Add(sb.Min)
	base := pximg.CropScale(src, r, w, h)
	if base == nil {
		return nil, ErrEmptySource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := grade.Apply(base, req.Grade)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(req.Seed, seedStream))
	out := p.applyEffect(ctx, clean, req.Effect, rng)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	halftone.Apply(out, req.Halftone)
	grain.Apply(out, req.Grain, rng)

	elapsed := time.Since(start)
	log.Debug().
		Str("mode", req.Output.Mode.String()).
		Str("ratio", req.Framing.Ratio.String()).
		Str("effect", string(req.Effect.Kind)).
		Int("width", w).
		Int("height", h).
		Dur("elapsed", elapsed).
		Msg("render complete")

	return &Result{Image: out, Crop: crop, Elapsed: elapsed}, nil
}

// applyEffect runs the selected effect, falling back to a copy of the clean
// layer when it cannot run.
func (p *Pipeline) applyEffect(ctx context.Context, clean *image.NRGBA, sel effects.Selection, rng *rand.Rand) *image.NRGBA {
	cfg, err := sel.Config()
	if err != nil {
		log.Warn().Err(err).Msg("effect skipped")
		return pximg.Clone(clean)
	}

	out, err := effects.Apply(ctx, clean, cfg, effects.Env{Rand: rng, Fonts: p.fonts})
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("effect failed, using graded image")
		}
		return pximg.Clone(clean)
	}
	return out
}
