// Package framing computes render geometry: which part of the source photo is
// shown (the crop window) and how large the output surface is.
//
// Resolve and Size are deliberately separate. The preview and export paths
// call Resolve with the same Config and therefore cut the same window out of
// the photo; only Size differs between them (fit-to-container versus the
// ratio's canonical export resolution).
//
// All inputs are sanitised rather than rejected: NaN or out-of-range pan and
// zoom values are clamped, and an undefined pan position (no pannable range)
// resolves to 0.
package framing
