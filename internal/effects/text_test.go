package effects

import (
	"context"
	"image/color"
	"testing"

	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

func TestTextOverlay_NoWordsIsPassthrough(t *testing.T) {
	clean := texture(80, 60)
	for _, text := range []string{"", "   ", "\t\n"} {
		out, err := Apply(context.Background(), clean, TextOverlay{Text: text}, seeded(3))
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if !pximg.Equal(out, clean) {
			t.Errorf("text %q changed the image", text)
		}
	}
}

func TestTextOverlay_DrawsWhite(t *testing.T) {
	clean := solid(300, 200, color.NRGBA{0, 0, 0, 255})
	out, err := Apply(context.Background(), clean, TextOverlay{Text: "HELLO WORLD"}, seeded(7))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	changed := 0
	for i := 0; i < len(out.Pix); i += 4 {
		r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
		if r == 0 && g == 0 && b == 0 {
			continue
		}
		changed++
		if r != g || g != b {
			t.Fatalf("pixel %d = (%d,%d,%d), want a gray level", i/4, r, g, b)
		}
	}
	if changed < 50 {
		t.Errorf("only %d pixels changed, want visible text", changed)
	}
}

func TestTextOverlay_BlurSoftensGlyphs(t *testing.T) {
	clean := solid(300, 200, color.NRGBA{0, 0, 0, 255})
	sharp, err := Apply(context.Background(), clean, TextOverlay{Text: "WWW MMM"}, seeded(9))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	soft, err := Apply(context.Background(), clean, TextOverlay{Text: "WWW MMM", Blur: true}, seeded(9))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	count := func(img []uint8) (full int) {
		for i := 0; i < len(img); i += 4 {
			if img[i] == 255 {
				full++
			}
		}
		return full
	}
	if count(soft.Pix) >= count(sharp.Pix) {
		t.Errorf("blurred text has %d pure white pixels, sharp has %d", count(soft.Pix), count(sharp.Pix))
	}
}

func TestTextOverlay_UnknownFontFallsBack(t *testing.T) {
	clean := solid(200, 100, color.NRGBA{0, 0, 0, 255})
	a, err := Apply(context.Background(), clean, TextOverlay{Text: "abc", Font: "no-such-font"}, seeded(5))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	b, err := Apply(context.Background(), clean, TextOverlay{Text: "abc", Font: DefaultFont}, seeded(5))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !pximg.Equal(a, b) {
		t.Error("unknown font should render like the default font")
	}
}
