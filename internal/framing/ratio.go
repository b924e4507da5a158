package framing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRatio is returned by ParseRatio for unsupported framing names.
var ErrUnknownRatio = errors.New("unknown framing ratio")

// Ratio is a target aspect ratio W:H. The zero value means "Original": keep
// the photo's own shape.
type Ratio struct {
	W int `json:"w" toml:"w"`
	H int `json:"h" toml:"h"`
}

// Supported framings.
var (
	Original   = Ratio{}
	Widescreen = Ratio{W: 16, H: 9}
	Vertical   = Ratio{W: 9, H: 16}
	Portrait   = Ratio{W: 3, H: 4}
)

// exportSizes holds the canonical export resolution of every ratio.
var exportSizes = map[Ratio][2]int{
	Widescreen: {1920, 1080},
	Vertical:   {1080, 1920},
	Portrait:   {1080, 1440},
}

// ParseRatio parses "original", "16:9", "9:16" or "3:4".
func ParseRatio(s string) (Ratio, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "original" {
		return Original, nil
	}
	var r Ratio
	if _, err := fmt.Sscanf(s, "%d:%d", &r.W, &r.H); err != nil {
		return Original, fmt.Errorf("%w: %q", ErrUnknownRatio, s)
	}
	if _, ok := exportSizes[r]; !ok {
		return Original, fmt.Errorf("%w: %q", ErrUnknownRatio, s)
	}
	return r, nil
}

// IsOriginal reports whether r keeps the photo's own shape.
func (r Ratio) IsOriginal() bool {
	return r.W <= 0 || r.H <= 0
}

// Aspect returns W/H, or 0 for Original.
func (r Ratio) Aspect() float64 {
	if r.IsOriginal() {
		return 0
	}
	return float64(r.W) / float64(r.H)
}

// ExportSize returns the canonical export resolution. ok is false for
// Original, whose export size is the crop window's native size.
func (r Ratio) ExportSize() (width, height int, ok bool) {
	s, ok := exportSizes[r]
	return s[0], s[1], ok
}

func (r Ratio) String() string {
	if r.IsOriginal() {
		return "original"
	}
	return fmt.Sprintf("%d:%d", r.W, r.H)
}

// MarshalText implements encoding.TextMarshaler.
func (r Ratio) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Ratio) UnmarshalText(text []byte) error {
	parsed, err := ParseRatio(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
