package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/framing"
	"github.com/ironsheep/photo-effects-mcp/internal/grade"
	"github.com/ironsheep/photo-effects-mcp/internal/grain"
	"github.com/ironsheep/photo-effects-mcp/internal/halftone"
)

// Request is the complete, immutable description of one render.
type Request struct {
	Framing  framing.Config    `json:"framing" toml:"framing"`
	Grade    grade.Config      `json:"grade" toml:"grade"`
	Effect   effects.Selection `json:"effect" toml:"effect"`
	Halftone halftone.Config   `json:"halftone" toml:"halftone"`
	Grain    grain.Config      `json:"grain" toml:"grain"`
	Output   framing.Output    `json:"output" toml:"output"`

	// Seed drives every random choice in the render.
	Seed uint64 `json:"seed" toml:"seed"`
}

// DefaultRequest returns the settings a freshly loaded photo starts with:
// original framing, neutral grade, no effect, halftone off, preview sized
// for a containerW×containerH viewport.
func DefaultRequest(containerW, containerH int) Request {
	return Request{
		Framing:  framing.Config{Ratio: framing.Original, Scale: 1},
		Grade:    grade.Default(),
		Effect:   effects.Selection{Kind: effects.KindNone},
		Halftone: halftone.Default(),
		Output:   framing.Preview(containerW, containerH),
	}
}

// requestFile is the TOML layout of a Request. Effect variants are held as
// primitives so they can be decoded over their defaults.
type requestFile struct {
	Framing  framing.Config  `toml:"framing"`
	Grade    grade.Config    `toml:"grade"`
	Effect   effectFile      `toml:"effect"`
	Halftone halftone.Config `toml:"halftone"`
	Grain    grain.Config    `toml:"grain"`
	Output   framing.Output  `toml:"output"`
	Seed     uint64          `toml:"seed"`
}

type effectFile struct {
	Kind         effects.Kind   `toml:"kind"`
	MotionBlur   toml.Primitive `toml:"motion_blur"`
	PortraitBlur toml.Primitive `toml:"portrait_blur"`
	TextOverlay  toml.Primitive `toml:"text_overlay"`
	Structure    toml.Primitive `toml:"structure"`
	Gamma        toml.Primitive `toml:"gamma"`
	Glitch       toml.Primitive `toml:"glitch"`
}

// DecodeRequest reads a TOML render request. Keys the document omits keep
// their value from base, including fields of partially specified effect
// variants. Unknown keys are an error.
func DecodeRequest(r io.Reader, base Request) (Request, error) {
	f := requestFile{
		Framing:  base.Framing,
		Grade:    base.Grade,
		Effect:   effectFile{Kind: base.Effect.Kind},
		Halftone: base.Halftone,
		Grain:    base.Grain,
		Output:   base.Output,
		Seed:     base.Seed,
	}
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return Request{}, fmt.Errorf("failed to decode request: %w", err)
	}

	sel := base.Effect.WithDefaults()
	sel.Kind = f.Effect.Kind
	variants := []struct {
		key  string
		prim toml.Primitive
		dst  any
	}{
		{"motion_blur", f.Effect.MotionBlur, sel.MotionBlur},
		{"portrait_blur", f.Effect.PortraitBlur, sel.PortraitBlur},
		{"text_overlay", f.Effect.TextOverlay, sel.TextOverlay},
		{"structure", f.Effect.Structure, sel.Structure},
		{"gamma", f.Effect.Gamma, sel.Gamma},
		{"glitch", f.Effect.Glitch, sel.Glitch},
	}
	for _, v := range variants {
		if !md.IsDefined("effect", v.key) {
			continue
		}
		if err := md.PrimitiveDecode(v.prim, v.dst); err != nil {
			return Request{}, fmt.Errorf("failed to decode effect.%s: %w", v.key, err)
		}
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Request{}, fmt.Errorf("unknown request keys: %s", strings.Join(keys, ", "))
	}
	if _, err := sel.Config(); err != nil {
		return Request{}, err
	}

	return Request{
		Framing:  f.Framing,
		Grade:    f.Grade,
		Effect:   sel,
		Halftone: f.Halftone,
		Grain:    f.Grain,
		Output:   f.Output,
		Seed:     f.Seed,
	}, nil
}
