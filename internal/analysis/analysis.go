package analysis

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
)

var (
	// ErrNoAnalyzer is returned when no analyzer is configured for a request.
	ErrNoAnalyzer = errors.New("no analyzer configured")

	// ErrBadResponse is returned when an analyzer answers with unusable data.
	ErrBadResponse = errors.New("malformed analysis response")
)

// MaskAnalyzer outlines the main foreground subject of a photo.
type MaskAnalyzer interface {
	AnalyzeMask(ctx context.Context, img image.Image) (*effects.Mask, error)
}

// PointAnalyzer finds structural anchor points in a photo.
type PointAnalyzer interface {
	AnalyzePoints(ctx context.Context, img image.Image) ([]effects.StructurePoint, error)
}

// clampUnit limits v to [0,1]; NaN becomes 0.5.
func clampUnit(v float64) float64 {
	if v != v {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizePoints clamps every coordinate into [0,1] in place and returns
// pts.
func NormalizePoints(pts []effects.StructurePoint) []effects.StructurePoint {
	for i := range pts {
		pts[i].X = clampUnit(pts[i].X)
		pts[i].Y = clampUnit(pts[i].Y)
	}
	return pts
}
