// Package analysis produces the external inputs that two effects consume:
// a foreground mask for portrait blur and structural anchor points for the
// structure graph.
//
// The render pipeline never calls into this package. The surrounding
// application runs an analysis when the user asks for it, stores the result
// and feeds it into later render requests; until then the effects render
// their "no mask / no points yet" case.
//
// # Analyzers
//
// Two capability interfaces abstract the producers:
//
//   - MaskAnalyzer returns an SVG path outlining the main subject, in a
//     100×100 coordinate space.
//   - PointAnalyzer returns anchor points normalised to [0,1]².
//
// Gemini implements both through the Gemini API with JSON-schema
// constrained responses. EdgePoints is a local PointAnalyzer that needs no
// network access: it picks the strongest gradient maxima on a grid.
//
// # Caching
//
// Service wraps a pair of analyzers with a per-photo Cache. A failed
// analysis leaves any previously cached result untouched, so a retry after
// a transient error never loses a mask the user already has.
package analysis
