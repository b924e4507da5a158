// Package effects implements the stylistic filter stage of the render
// pipeline.
//
// Exactly one effect runs per render. The active effect is described by a
// Config value, which is one of six variants:
//
//   - MotionBlur: radial zoom blur around a focus point
//   - PortraitBlur: background blur outside a foreground mask
//   - TextOverlay: words scattered at random positions
//   - Structure: a node graph drawn over externally supplied anchor points
//   - Gamma: a blended power-law / smoothstep tone curve
//   - Glitch: channel shift, slice displacement, scanlines, block corruption
//
// Apply dispatches on the variant. Every effect reads the graded "clean
// layer" and writes a new surface; the clean layer itself is never
// modified, so effects can keep re-sampling unmodified pixels.
//
// Effects that use randomness draw exclusively from the *rand.Rand passed in
// Env. Rendering the same request with the same seed therefore produces the
// same pixels.
//
// All numeric parameters are clamped into their documented ranges before
// use; out-of-range input is corrected, never rejected.
package effects
