package effects

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned for an unrecognised effect name.
var ErrUnknownKind = errors.New("unknown effect")

// Selection is the serialisable form of an effect choice: the active kind
// plus optional settings per variant. Variants left nil use their defaults.
type Selection struct {
	Kind         Kind          `json:"kind" toml:"kind"`
	MotionBlur   *MotionBlur   `json:"motionBlur,omitempty" toml:"motion_blur,omitempty"`
	PortraitBlur *PortraitBlur `json:"portraitBlur,omitempty" toml:"portrait_blur,omitempty"`
	TextOverlay  *TextOverlay  `json:"textOverlay,omitempty" toml:"text_overlay,omitempty"`
	Structure    *Structure    `json:"structure,omitempty" toml:"structure,omitempty"`
	Gamma        *Gamma        `json:"gamma,omitempty" toml:"gamma,omitempty"`
	Glitch       *Glitch       `json:"glitch,omitempty" toml:"glitch,omitempty"`
}

// Config resolves the selection to the active variant. KindNone and an
// empty kind yield a nil Config.
func (s Selection) Config() (Config, error) {
	switch s.Kind {
	case "", KindNone:
		return nil, nil
	case KindMotionBlur:
		if s.MotionBlur != nil {
			return *s.MotionBlur, nil
		}
		return DefaultMotionBlur(), nil
	case KindPortraitBlur:
		if s.PortraitBlur != nil {
			return *s.PortraitBlur, nil
		}
		return DefaultPortraitBlur(), nil
	case KindTextOverlay:
		if s.TextOverlay != nil {
			return *s.TextOverlay, nil
		}
		return DefaultTextOverlay(), nil
	case KindStructure:
		if s.Structure != nil {
			return *s.Structure, nil
		}
		return DefaultStructure(), nil
	case KindGamma:
		if s.Gamma != nil {
			return *s.Gamma, nil
		}
		return DefaultGamma(), nil
	case KindGlitch:
		if s.Glitch != nil {
			return *s.Glitch, nil
		}
		return DefaultGlitch(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
}

// SelectionFor wraps a Config for serialisation.
func SelectionFor(c Config) Selection {
	switch v := c.(type) {
	case MotionBlur:
		return Selection{Kind: KindMotionBlur, MotionBlur: &v}
	case PortraitBlur:
		return Selection{Kind: KindPortraitBlur, PortraitBlur: &v}
	case TextOverlay:
		return Selection{Kind: KindTextOverlay, TextOverlay: &v}
	case Structure:
		return Selection{Kind: KindStructure, Structure: &v}
	case Gamma:
		return Selection{Kind: KindGamma, Gamma: &v}
	case Glitch:
		return Selection{Kind: KindGlitch, Glitch: &v}
	}
	return Selection{Kind: KindNone}
}

// WithMask returns a copy of the selection whose portrait blur uses m
// when it has no mask of its own. Other kinds are returned unchanged.
func (s Selection) WithMask(m *Mask) Selection {
	return s.setMask(m, false)
}

// ReplaceMask is like WithMask but discards any mask already present.
func (s Selection) ReplaceMask(m *Mask) Selection {
	return s.setMask(m, true)
}

func (s Selection) setMask(m *Mask, replace bool) Selection {
	if s.Kind != KindPortraitBlur {
		return s
	}
	p := DefaultPortraitBlur()
	if s.PortraitBlur != nil {
		p = *s.PortraitBlur
	}
	if replace || p.Mask == nil {
		p.Mask = m
	}
	s.PortraitBlur = &p
	return s
}

// WithPoints returns a copy of the selection whose structure uses pts
// when it has none of its own. Other kinds are returned unchanged.
func (s Selection) WithPoints(pts []StructurePoint) Selection {
	if s.Kind != KindStructure {
		return s
	}
	st := DefaultStructure()
	if s.Structure != nil {
		st = *s.Structure
	}
	if len(st.Points) == 0 {
		st.Points = pts
	}
	s.Structure = &st
	return s
}

// WithDefaults returns a copy in which every variant is set and owned by
// the copy. Nil variants get their defaults. Decoding a partial JSON
// document over the result keeps the defaults of the fields it omits.
func (s Selection) WithDefaults() Selection {
	s.MotionBlur = withDefault(s.MotionBlur, DefaultMotionBlur)
	s.PortraitBlur = withDefault(s.PortraitBlur, DefaultPortraitBlur)
	s.TextOverlay = withDefault(s.TextOverlay, DefaultTextOverlay)
	s.Structure = withDefault(s.Structure, DefaultStructure)
	s.Gamma = withDefault(s.Gamma, DefaultGamma)
	s.Glitch = withDefault(s.Glitch, DefaultGlitch)
	return s
}

func withDefault[T any](p *T, def func() T) *T {
	v := def()
	if p != nil {
		v = *p
	}
	return &v
}
