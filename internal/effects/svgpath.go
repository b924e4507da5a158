package effects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fogleman/gg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidPath is returned for malformed SVG path data.
var ErrInvalidPath = errors.New("invalid svg path data")

// Path is compiled SVG path data. Arcs are stored as cubic Béziers.
type Path struct {
	data rasterx.Path
}

// ParsePath compiles the "d" attribute grammar of SVG 1.1 (M L H V C S Q T
// A Z, absolute and relative). Blank data gives an empty path.
func ParsePath(d string) (*Path, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return &Path{}, nil
	}
	if d[0] != 'M' && d[0] != 'm' {
		return nil, fmt.Errorf("%w: path must start with a moveto", ErrInvalidPath)
	}

	pc := oksvg.PathCursor{ErrorMode: oksvg.StrictErrorMode}
	if err := pc.CompilePath(d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return &Path{data: pc.Path}, nil
}

// Empty reports whether the path has no drawing segments.
func (p *Path) Empty() bool {
	var n segmentCounter
	p.data.AddTo(&n)
	return n == 0
}

// Trace appends the path to the current path of dc, scaling x by sx and y
// by sy. Call Fill or Stroke on dc afterwards.
func (p *Path) Trace(dc *gg.Context, sx, sy float64) {
	p.data.AddTo(&tracer{dc: dc, sx: sx, sy: sy})
}

type segmentCounter int

func (n *segmentCounter) Start(fixed.Point26_6) {}
func (n *segmentCounter) Line(fixed.Point26_6) { *n++ }
func (n *segmentCounter) QuadBezier(_, _ fixed.Point26_6) { *n++ }
func (n *segmentCounter) CubeBezier(_, _, _ fixed.Point26_6) { *n++ }
func (n *segmentCounter) Stop(bool) {}

// tracer replays rasterx path commands onto a gg context.
type tracer struct {
	dc     *gg.Context
	sx, sy float64
}

func (t *tracer) xy(p fixed.Point26_6) (float64, float64) {
	return float64(p.X) / 64 * t.sx, float64(p.Y) / 64 * t.sy
}

func (t *tracer) Start(a fixed.Point26_6) { t.dc.MoveTo(t.xy(a)) }

func (t *tracer) Line(b fixed.Point26_6) { t.dc.LineTo(t.xy(b)) }

func (t *tracer) QuadBezier(b, c fixed.Point26_6) {
	x1, y1 := t.xy(b)
	x2, y2 := t.xy(c)
	t.dc.QuadraticTo(x1, y1, x2, y2)
}

func (t *tracer) CubeBezier(b, c, d fixed.Point26_6) {
	x1, y1 := t.xy(b)
	x2, y2 := t.xy(c)
	x3, y3 := t.xy(d)
	t.dc.CubicTo(x1, y1, x2, y2, x3, y3)
}

func (t *tracer) Stop(closeLoop bool) {
	if closeLoop {
		t.dc.ClosePath()
	}
}
