// Package pipeline renders a photo through the full effect chain.
//
// A render is a pure function of the source image and a Request:
//
//	crop (framing) → scale to output size → grade → effect → halftone → grain
//
// Pipeline.Render runs one render to completion on a freshly allocated
// surface. Renderer wraps a Pipeline for interactive previews: every call
// starts a new generation and cancels the one in flight, and a render that
// finishes after a newer one has started is reported as ErrStale instead of
// being returned. Pipeline.Export renders at the fixed export resolution and
// encodes the result as PNG. DecodeRequest reads a Request from TOML.
//
// All randomness (text placement, structure graph, glitch, grain) comes
// from a generator seeded with Request.Seed, so identical requests produce
// identical pixels.
package pipeline
