// Package imaging provides the raster plumbing shared by every render stage.
//
// All surfaces handled by the render pipeline are *image.NRGBA buffers whose
// bounds start at (0,0). Channels are stored non-premultiplied, so the color
// stages can read and write R, G and B directly while leaving alpha untouched.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner:
//   - X increases rightward
//   - Y increases downward
//   - Rectangles are inclusive at Min and exclusive at Max
//
// # Contents
//
//   - Photo loading and the PhotoCache (loader.go)
//   - Crop-and-scale of the framing window onto an output surface (crop.go)
//   - Channel helpers: luma, clamping, hex colors (color.go)
//   - Drawing canvases, alpha masks and layer compositing (canvas.go)
//   - Gradient contrast maps used by local point analysis (edge.go)
//   - PNG encoding of finished buffers, JPEG for analyzer uploads (encode.go)
//
// # Thread Safety
//
// The PhotoCache is safe for concurrent use. Every other function is
// stateless; callers own the buffers they pass in and must not share a
// mutable surface between goroutines.
package imaging
