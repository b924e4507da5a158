package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Upload settings: the longer edge is capped and the photo is sent as JPEG.
const (
	uploadMaxEdge = 1536
	uploadQuality = 85
)

const maskPrompt = `Analyze this image and identify the main subject in the foreground. ` +
	`Produce SVG path data (the 'd' attribute) that outlines this subject. ` +
	`The path must be scaled for a 100x100 viewBox. ` +
	`Respond with a JSON object containing a single key "svgPath". ` +
	`Example: {"svgPath": "M10 80 Q 52.5 10, 95 80 Z"}.`

const pointsPrompt = `Analyze this image and identify key structural nodes. ` +
	`These nodes should be anchored in the highest-contrast areas that define relevant aspects of the photo, ` +
	`such as the sharp edges of objects and subjects. ` +
	`Prioritize points on limbs and parts of the human body, as well as on prominent objects with defined outlines ` +
	`(plants, trees, chairs, buildings, etc.), both human and non-human. ` +
	`Return the answer as a JSON object with a single key "points", an array of objects. ` +
	`Each object must have "x" and "y" properties holding normalized coordinates (0 to 1). ` +
	`Example: {"points": [{"x": 0.5, "y": 0.25}]}. Provide at least 30 points if possible.`

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements MaskAnalyzer and PointAnalyzer with the Gemini API.
type Gemini struct {
	models contentGenerator
	model  string
}

// NewGemini creates a Gemini analyzer. An empty model selects
// DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w: missing API key", ErrNoAnalyzer)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string { return g.model }

// AnalyzeMask implements MaskAnalyzer.
func (g *Gemini) AnalyzeMask(ctx context.Context, img image.Image) (*effects.Mask, error) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"svgPath": {Type: genai.TypeString},
		},
		Required: []string{"svgPath"},
	}
	text, err := g.generate(ctx, "mask", img, maskPrompt, schema)
	if err != nil {
		return nil, err
	}
	return parseMaskResponse(text)
}

// AnalyzePoints implements PointAnalyzer.
func (g *Gemini) AnalyzePoints(ctx context.Context, img image.Image) ([]effects.StructurePoint, error) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"points": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"x": {Type: genai.TypeNumber},
						"y": {Type: genai.TypeNumber},
					},
					Required: []string{"x", "y"},
				},
			},
		},
		Required: []string{"points"},
	}
	text, err := g.generate(ctx, "points", img, pointsPrompt, schema)
	if err != nil {
		return nil, err
	}
	return parsePointsResponse(text)
}

func (g *Gemini) generate(ctx context.Context, op string, img image.Image, prompt string, schema *genai.Schema) (string, error) {
	data, err := pximg.EncodeJPEG(pximg.Downscale(img, uploadMaxEdge), uploadQuality)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: data}},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	start := time.Now()
	log.Debug().
		Str("model", g.model).
		Str("operation", op).
		Int("upload_bytes", len(data)).
		Msg("Starting Gemini analysis")

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("operation", op).Dur("duration", elapsed).Msg("Gemini analysis failed")
		return "", fmt.Errorf("gemini %s analysis: %w", op, err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini %s analysis: %w: empty response", op, ErrBadResponse)
	}

	text := strings.TrimSpace(resp.Text())
	log.Debug().
		Str("operation", op).
		Int("response_length", len(text)).
		Dur("duration", elapsed).
		Msg("Gemini analysis response received")
	return text, nil
}

func parseMaskResponse(text string) (*effects.Mask, error) {
	var body struct {
		SVGPath string `json:"svgPath"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	path := strings.TrimSpace(body.SVGPath)
	if path == "" {
		return nil, fmt.Errorf("%w: no svgPath", ErrBadResponse)
	}
	p, err := effects.ParsePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: svgPath draws nothing", ErrBadResponse)
	}
	return &effects.Mask{PathData: path}, nil
}

func parsePointsResponse(text string) ([]effects.StructurePoint, error) {
	var body struct {
		Points []effects.StructurePoint `json:"points"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(body.Points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrBadResponse)
	}
	return NormalizePoints(body.Points), nil
}
