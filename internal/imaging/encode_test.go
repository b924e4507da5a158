package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestEncodePNG_Lossless(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}

	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if !Equal(ToNRGBA(img), src) {
		t.Error("PNG round trip changed pixels")
	}
}

func TestEncodeJPEG(t *testing.T) {
	src := createInMemoryImage(32, 16, color.RGBA{200, 100, 50, 255})
	data, err := EncodeJPEG(src, 85)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("jpeg.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 32 || cfg.Height != 16 {
		t.Errorf("size = %dx%d, want 32x16", cfg.Width, cfg.Height)
	}
}
