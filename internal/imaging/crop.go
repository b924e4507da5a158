package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// CropScale cuts the window r out of src and resamples it to exactly
// width×height pixels, returning a new surface with origin (0,0).
//
// The window is clipped to the source bounds first. It returns nil when
// the clipped window or the requested size is empty; the caller decides
// how to degrade.
func CropScale(src image.Image, r image.Rectangle, width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	r = r.Intersect(src.Bounds())
	if r.Empty() {
		return nil
	}

	cropped := imaging.Crop(src, r)
	if cropped.Bounds().Dx() == width && cropped.Bounds().Dy() == height {
		return cropped
	}
	return imaging.Resize(cropped, width, height, imaging.Lanczos)
}

// Downscale shrinks img to fit inside maxEdge×maxEdge, preserving its
// aspect ratio. Images that already fit are converted but not resampled.
func Downscale(img image.Image, maxEdge int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return ToNRGBA(img)
	}
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
}

// Clone returns an independent copy of a surface.
func Clone(img *image.NRGBA) *image.NRGBA {
	return imaging.Clone(img)
}

// ToNRGBA converts any image to an NRGBA surface with origin (0,0).
// An *image.NRGBA that already starts at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Equal reports whether two surfaces have identical size and pixels.
func Equal(a, b *image.NRGBA) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w*4]
		rb := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for i := range ra {
			if ra[i] != rb[i] {
				return false
			}
		}
	}
	return true
}
