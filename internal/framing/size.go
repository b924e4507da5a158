package framing

import (
	"fmt"
	"math"
)

// Mode selects how the output surface is sized.
type Mode int

const (
	// FitPreview scales the crop window down to fit a container.
	FitPreview Mode = iota
	// FixedExport uses the ratio's canonical export resolution.
	FixedExport
)

func (m Mode) String() string {
	switch m {
	case FitPreview:
		return "preview"
	case FixedExport:
		return "export"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode as "preview" or "export".
func (m Mode) MarshalText() ([]byte, error) {
	if m != FitPreview && m != FixedExport {
		return nil, fmt.Errorf("invalid output mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts "preview" (or "") and "export".
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "preview":
		*m = FitPreview
	case "export":
		*m = FixedExport
	default:
		return fmt.Errorf("invalid output mode %q", text)
	}
	return nil
}

// Output describes the target surface.
type Output struct {
	Mode Mode `json:"mode" toml:"mode"`

	// ContainerWidth and ContainerHeight bound the preview surface. A
	// non-positive dimension leaves that axis unconstrained.
	ContainerWidth  int `json:"containerWidth,omitempty" toml:"container_width,omitempty"`
	ContainerHeight int `json:"containerHeight,omitempty" toml:"container_height,omitempty"`
}

// Preview returns a fit-to-container output.
func Preview(containerW, containerH int) Output {
	return Output{Mode: FitPreview, ContainerWidth: containerW, ContainerHeight: containerH}
}

// Export returns a fixed-resolution output.
func Export() Output {
	return Output{Mode: FixedExport}
}

// Size returns the output surface dimensions for a crop window.
//
// In FitPreview mode the window is scaled by the largest factor ≤ 1 that
// makes it fit the container with its aspect ratio preserved. In
// FixedExport mode the ratio's canonical size is used, or the window's
// native size for Original.
//
// Dimensions are truncated to whole pixels. A non-empty window always
// yields at least a 1×1 surface; an empty window yields 0×0.
func Size(crop Rect, ratio Ratio, out Output) (width, height int) {
	if crop.Empty() {
		return 0, 0
	}

	if out.Mode == FixedExport {
		if w, h, ok := ratio.ExportSize(); ok {
			return w, h
		}
		return atLeastOne(crop.Width), atLeastOne(crop.Height)
	}

	factor := fitFactor(crop, out.ContainerWidth, out.ContainerHeight)
	return atLeastOne(crop.Width * factor), atLeastOne(crop.Height * factor)
}

func fitFactor(crop Rect, cw, ch int) float64 {
	fx, fy := math.Inf(1), math.Inf(1)
	if cw > 0 {
		fx = float64(cw) / crop.Width
	}
	if ch > 0 {
		fy = float64(ch) / crop.Height
	}
	return math.Min(1, math.Min(fx, fy))
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
