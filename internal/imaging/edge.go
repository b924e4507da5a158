package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
)

// gradientBias centres signed Sobel responses in an 8-bit channel. Kernels
// are normalized by their absolute sum (8), so the response of any 8-bit
// input fits in [-127.5, 127.5].
const gradientBias = 127.5

var (
	// 5x5 Gaussian, sigma ≈ 1.4, sum 273.
	gaussian5 = &convolution.Kernel{
		Matrix: []float64{
			1, 4, 7, 4, 1,
			4, 16, 26, 16, 4,
			7, 26, 41, 26, 7,
			4, 16, 26, 16, 4,
			1, 4, 7, 4, 1,
		},
		Width:  5,
		Height: 5,
	}
	sobelX = &convolution.Kernel{
		Matrix: []float64{
			-1, 0, 1,
			-2, 0, 2,
			-1, 0, 1,
		},
		Width:  3,
		Height: 3,
	}
	sobelY = &convolution.Kernel{
		Matrix: []float64{
			-1, -2, -1,
			0, 0, 0,
			1, 2, 1,
		},
		Width:  3,
		Height: 3,
	}
)

// ContrastMap computes the local gradient magnitude of an image.
//
// The result is indexed [y][x] and has the image's dimensions. Values are
// gradient magnitudes of the normalised (0-1) luma, so a hard black/white
// edge scores about 4 and flat areas score 0.
//
// # Algorithm
//
//  1. Grayscale conversion using ITU-R BT.601 weights (see Luma)
//  2. Gaussian blur: 5x5 kernel to suppress sensor noise and JPEG artifacts
//  3. Sobel operators for X and Y gradients, magnitude = sqrt(Gx² + Gy²)
//
// Border pixels use extended (replicated) edge values.
func ContrastMap(img image.Image) [][]float64 {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return make([][]float64, height)
	}

	gray := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	blurred := convolution.Convolve(gray, gaussian5.Normalized(), &convolution.Options{KeepAlpha: true})

	opts := &convolution.Options{Bias: gradientBias, KeepAlpha: true}
	gx := convolution.Convolve(blurred, sobelX.Normalized(), opts)
	gy := convolution.Convolve(blurred, sobelY.Normalized(), opts)

	// Channels are truncated, so a flat area stores 127.
	const zero = 127.0
	const scale = 8.0 / 255

	magnitude := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			i := y*gx.Stride + x*4
			dx := (float64(gx.Pix[i]) - zero) * scale
			dy := (float64(gy.Pix[i]) - zero) * scale
			magnitude[y][x] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	return magnitude
}
