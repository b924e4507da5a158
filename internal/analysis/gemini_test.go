package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int

	model    string
	config   *genai.GenerateContentConfig
	contents []*genai.Content
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	f.contents = contents
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestParseMaskResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{"valid", `{"svgPath": "M10 80 Q 52.5 10, 95 80 Z"}`, "M10 80 Q 52.5 10, 95 80 Z", false},
		{"trimmed", `{"svgPath": "  M0 0 L100 0 L100 100 Z "}`, "M0 0 L100 0 L100 100 Z", false},
		{"not json", `M10 10 L20 20`, "", true},
		{"missing key", `{"path": "M0 0 L1 1"}`, "", true},
		{"blank path", `{"svgPath": "   "}`, "", true},
		{"invalid path", `{"svgPath": "L 10 10"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := parseMaskResponse(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrBadResponse) {
					t.Errorf("error = %v, want ErrBadResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.PathData != tt.want {
				t.Errorf("PathData = %q, want %q", m.PathData, tt.want)
			}
		})
	}
}

func TestParsePointsResponse(t *testing.T) {
	pts, err := parsePointsResponse(`{"points": [{"x": 0.25, "y": 0.75}, {"x": -0.5, "y": 1.5}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	if pts[0].X != 0.25 || pts[0].Y != 0.75 {
		t.Errorf("point 0 = %+v", pts[0])
	}
	if pts[1].X != 0 || pts[1].Y != 1 {
		t.Errorf("point 1 = %+v, want clamped to (0,1)", pts[1])
	}

	for _, bad := range []string{`{"points": []}`, `{}`, `[1,2]`, ``} {
		if _, err := parsePointsResponse(bad); !errors.Is(err, ErrBadResponse) {
			t.Errorf("parsePointsResponse(%q) error = %v, want ErrBadResponse", bad, err)
		}
	}
}

func TestGemini_AnalyzeMask(t *testing.T) {
	gen := &fakeGenerator{text: `{"svgPath": "M20 20 L80 20 L80 80 L20 80 Z"}`}
	g := &Gemini{models: gen, model: "test-model"}

	m, err := g.AnalyzeMask(context.Background(), splitImage(64, 48))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PathData != "M20 20 L80 20 L80 80 L20 80 Z" {
		t.Errorf("PathData = %q", m.PathData)
	}
	if gen.model != "test-model" {
		t.Errorf("model = %q, want test-model", gen.model)
	}
	if gen.config.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q", gen.config.ResponseMIMEType)
	}
	if _, ok := gen.config.ResponseSchema.Properties["svgPath"]; !ok {
		t.Error("schema is missing svgPath")
	}

	if len(gen.contents) != 1 || len(gen.contents[0].Parts) != 2 {
		t.Fatalf("unexpected request contents: %+v", gen.contents)
	}
	parts := gen.contents[0].Parts
	if !strings.Contains(parts[0].Text, "100x100") {
		t.Errorf("prompt does not mention the coordinate space: %q", parts[0].Text)
	}
	if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/jpeg" {
		t.Fatal("expected an inline JPEG part")
	}
	if len(parts[1].InlineData.Data) == 0 {
		t.Error("inline image is empty")
	}
}

func TestGemini_AnalyzePoints(t *testing.T) {
	gen := &fakeGenerator{text: `{"points": [{"x": 0.1, "y": 0.2}, {"x": 0.3, "y": 0.4}]}`}
	g := &Gemini{models: gen, model: DefaultGeminiModel}

	pts, err := g.AnalyzePoints(context.Background(), splitImage(32, 32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 2 || pts[1].X != 0.3 || pts[1].Y != 0.4 {
		t.Errorf("points = %+v", pts)
	}
	if _, ok := gen.config.ResponseSchema.Properties["points"]; !ok {
		t.Error("schema is missing points")
	}
}

func TestGemini_TransportError(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := &Gemini{models: &fakeGenerator{err: boom}, model: DefaultGeminiModel}

	if _, err := g.AnalyzeMask(context.Background(), splitImage(16, 16)); !errors.Is(err, boom) {
		t.Errorf("AnalyzeMask error = %v, want wrapped %v", err, boom)
	}
	if _, err := g.AnalyzePoints(context.Background(), splitImage(16, 16)); !errors.Is(err, boom) {
		t.Errorf("AnalyzePoints error = %v, want wrapped %v", err, boom)
	}
}

func TestNewGemini_MissingKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", ""); !errors.Is(err, ErrNoAnalyzer) {
		t.Errorf("error = %v, want ErrNoAnalyzer", err)
	}
}
