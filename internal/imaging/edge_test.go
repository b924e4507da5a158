package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createEdgeTestImage creates an image with a black rectangle on white
func createEdgeTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= width/4 && x < 3*width/4 && y >= height/4 && y < 3*height/4 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

func TestContrastMap_Dimensions(t *testing.T) {
	m := ContrastMap(createEdgeTestImage(40, 30))
	if len(m) != 30 || len(m[0]) != 40 {
		t.Errorf("dimensions: got %dx%d, want 40x30", len(m[0]), len(m))
	}
}

func TestContrastMap_UniformImage(t *testing.T) {
	m := ContrastMap(createInMemoryImage(20, 20, color.RGBA{128, 128, 128, 255}))
	for y := range m {
		for x := range m[y] {
			if m[y][x] > 1e-9 {
				t.Fatalf("uniform image should have no contrast, got %v at (%d,%d)", m[y][x], x, y)
			}
		}
	}
}

func TestContrastMap_EdgeStrongerThanInterior(t *testing.T) {
	m := ContrastMap(createEdgeTestImage(100, 100))

	edge := m[50][25]
	interior := m[50][50]
	background := m[5][5]

	if edge <= interior {
		t.Errorf("edge (%v) should exceed interior (%v)", edge, interior)
	}
	if edge <= background {
		t.Errorf("edge (%v) should exceed background (%v)", edge, background)
	}
}

func TestContrastMap_EmptyImage(t *testing.T) {
	if m := ContrastMap(image.NewRGBA(image.Rectangle{})); len(m) != 0 {
		t.Errorf("empty image: got %d rows, want 0", len(m))
	}
}

func TestContrastMap_SymmetricEdges(t *testing.T) {
	// Rising and falling edges score alike.
	m := ContrastMap(createEdgeTestImage(100, 100))
	left, right := m[50][25], m[50][74]
	if d := left - right; d > 0.1 || d < -0.1 {
		t.Errorf("left edge %v and right edge %v should match", left, right)
	}
	if left < 0.5 {
		t.Errorf("edge magnitude %v, want a strong response", left)
	}
}
