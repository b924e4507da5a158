package pipeline

import (
	"strings"
	"testing"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/framing"
)

func TestDecodeRequest(t *testing.T) {
	doc := `
seed = 42

[framing]
ratio = "9:16"
scale = 1.5
offset_x = -20

[grade]
saturation = 140

[effect]
kind = "structure"

[effect.structure]
complexity = 80
color = "#ff0000"

[[effect.structure.points]]
x = 0.25
y = 0.5

[halftone]
enabled = true

[grain]
monochrome = true
`
	base := DefaultRequest(640, 480)
	req, err := DecodeRequest(strings.NewReader(doc), base)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}

	if req.Seed != 42 {
		t.Errorf("Seed = %d, want 42", req.Seed)
	}
	if req.Framing.Ratio != framing.Vertical || req.Framing.Scale != 1.5 || req.Framing.OffsetX != -20 {
		t.Errorf("Framing = %+v", req.Framing)
	}
	if req.Grade.Saturation != 140 || req.Grade.Contrast != 100 || req.Grade.Exposure != 100 {
		t.Errorf("Grade = %+v, want saturation 140 and neutral rest", req.Grade)
	}
	if !req.Halftone.Enabled || req.Halftone.Spacing != base.Halftone.Spacing {
		t.Errorf("Halftone = %+v, want enabled with default spacing", req.Halftone)
	}
	if !req.Grain.Monochrome {
		t.Error("Grain.Monochrome not decoded")
	}
	if req.Output != base.Output {
		t.Errorf("Output = %+v, want base output", req.Output)
	}

	cfg, err := req.Effect.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	st, ok := cfg.(effects.Structure)
	if !ok {
		t.Fatalf("effect = %T, want Structure", cfg)
	}
	def := effects.DefaultStructure()
	if st.Complexity != 80 || st.Color != "#ff0000" {
		t.Errorf("structure = %+v", st)
	}
	if st.Dynamism != def.Dynamism || st.Fragmentation != def.Fragmentation {
		t.Errorf("omitted structure fields lost their defaults: %+v", st)
	}
	if len(st.Points) != 1 || st.Points[0].X != 0.25 {
		t.Errorf("points = %+v", st.Points)
	}
}

func TestDecodeRequest_Empty(t *testing.T) {
	base := DefaultRequest(100, 100)
	req, err := DecodeRequest(strings.NewReader(""), base)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if req.Framing != base.Framing || req.Grade != base.Grade || req.Output != base.Output {
		t.Errorf("empty document changed the request: %+v", req)
	}
	if cfg, _ := req.Effect.Config(); cfg != nil {
		t.Errorf("effect = %T, want none", cfg)
	}
}

func TestDecodeRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "seed = "},
		{"unknown key", "colour = 1"},
		{"unknown variant key", "[effect.gamma]\nstrength = 2"},
		{"unknown kind", "[effect]\nkind = \"sepia\""},
		{"bad ratio", "[framing]\nratio = \"5:4\""},
		{"bad mode", "[output]\nmode = \"print\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRequest(strings.NewReader(tt.doc), DefaultRequest(10, 10)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
