package analysis

import (
	"context"
	"image"
	"sort"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// EdgePoints is a local PointAnalyzer that anchors points on high-contrast
// edges.
//
// # Algorithm
//
//  1. Downscale the photo so its longer edge is at most WorkSize pixels
//  2. Compute the gradient contrast map (blur + Sobel, see imaging.ContrastMap)
//  3. Split the map into a Grid×Grid lattice of cells and take the
//     strongest pixel of each cell
//  4. Drop cells whose maximum is below MinContrast × the global maximum
//  5. Sort the survivors by strength, strongest first, and keep MaxPoints
//
// Returning points strongest-first matters: the structure effect draws a
// prefix of the list, so low complexity settings show the most salient
// anchors.
type EdgePoints struct {
	// WorkSize bounds the analysis resolution. Default 512.
	WorkSize int
	// Grid is the number of cells per axis. Default 12.
	Grid int
	// MinContrast is the fraction of the strongest gradient a cell must
	// reach. Default 0.2.
	MinContrast float64
	// MaxPoints caps the result. Default 60.
	MaxPoints int
}

type candidate struct {
	x, y     int
	strength float64
}

func (e EdgePoints) withDefaults() EdgePoints {
	if e.WorkSize <= 0 {
		e.WorkSize = 512
	}
	if e.Grid <= 0 {
		e.Grid = 12
	}
	if e.MinContrast <= 0 {
		e.MinContrast = 0.2
	}
	if e.MaxPoints <= 0 {
		e.MaxPoints = 60
	}
	return e
}

// AnalyzePoints implements PointAnalyzer. A flat image yields no points.
func (e EdgePoints) AnalyzePoints(ctx context.Context, img image.Image) ([]effects.StructurePoint, error) {
	e = e.withDefaults()
	if img.Bounds().Empty() {
		return nil, nil
	}

	work := pximg.Downscale(img, e.WorkSize)
	contrast := pximg.ContrastMap(work)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := work.Bounds().Dx(), work.Bounds().Dy()
	cells := cellMaxima(contrast, w, h, e.Grid)

	var peak float64
	for _, c := range cells {
		if c.strength > peak {
			peak = c.strength
		}
	}
	if peak == 0 {
		return nil, nil
	}

	kept := cells[:0]
	for _, c := range cells {
		if c.strength >= peak*e.MinContrast {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].strength > kept[j].strength
	})
	if len(kept) > e.MaxPoints {
		kept = kept[:e.MaxPoints]
	}

	points := make([]effects.StructurePoint, len(kept))
	for i, c := range kept {
		points[i] = effects.StructurePoint{
			X: clampUnit((float64(c.x) + 0.5) / float64(w)),
			Y: clampUnit((float64(c.y) + 0.5) / float64(h)),
		}
	}
	return points, nil
}

// cellMaxima returns the strongest pixel of every grid cell in row-major
// order. Cells that would be empty on small images are skipped.
func cellMaxima(contrast [][]float64, w, h, grid int) []candidate {
	out := make([]candidate, 0, grid*grid)
	for gy := 0; gy < grid; gy++ {
		y0, y1 := gy*h/grid, (gy+1)*h/grid
		for gx := 0; gx < grid; gx++ {
			x0, x1 := gx*w/grid, (gx+1)*w/grid
			if x1 <= x0 || y1 <= y0 {
				continue
			}
			best := candidate{x: x0, y: y0, strength: -1}
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					if v := contrast[y][x]; v > best.strength {
						best = candidate{x: x, y: y, strength: v}
					}
				}
			}
			out = append(out, best)
		}
	}
	return out
}
