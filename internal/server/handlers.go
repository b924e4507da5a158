package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/photo-effects-mcp/internal/analysis"
	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/framing"
	"github.com/ironsheep/photo-effects-mcp/internal/imaging"
	"github.com/ironsheep/photo-effects-mcp/internal/pipeline"
)

var (
	errNoPhoto     = errors.New("no photo loaded; call photo_load first")
	errInvalidArgs = errors.New("invalid arguments")
	errUnknownTool = errors.New("unknown tool")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "photo_load", "photo_export").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// toolOutput is a tool result that may carry a PNG next to its metadata.
type toolOutput struct {
	Meta interface{}
	PNG  []byte
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [
//	    {"type": "text", "text": "<JSON result>"},
//	    {"type": "image", "data": "<base64 PNG>", "mimeType": "image/png"}
//	  ]
//	}
//
// The image item is present only for tools that return pixels. Argument
// errors return code -32602, execution errors -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Warn().Err(err).Str("tool", params.Name).Msg("Tool call failed")
		if errors.Is(err, errInvalidArgs) || errors.Is(err, errUnknownTool) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug().Str("tool", params.Name).Dur("duration", time.Since(start)).Msg("Tool call complete")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": toolContent(result),
		},
	}
}

func toolContent(result interface{}) []map[string]interface{} {
	out, ok := result.(*toolOutput)
	if !ok {
		return []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		}
	}
	content := []map[string]interface{}{
		{"type": "text", "text": mustMarshalJSON(out.Meta)},
	}
	if len(out.PNG) > 0 {
		content = append(content, map[string]interface{}{
			"type":     "image",
			"data":     base64.StdEncoding.EncodeToString(out.PNG),
			"mimeType": "image/png",
		})
	}
	return content
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Photo session
	case ToolPhotoLoad:
		return s.handlePhotoLoad(args)
	case ToolPhotoInfo:
		return s.handlePhotoInfo(args)

	// Rendering
	case ToolPhotoRenderPreview:
		return s.handleRenderPreview(ctx, args)
	case ToolPhotoExport:
		return s.handleExport(ctx, args)

	// Analysis
	case ToolPhotoAnalyzeMask:
		return s.handleAnalyzeMask(ctx, args)
	case ToolPhotoAnalyzePoints:
		return s.handleAnalyzePoints(ctx, args)
	case ToolPhotoSetMask:
		return s.handleSetMask(args)
	case ToolPhotoSetPoints:
		return s.handleSetPoints(args)

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments leave v as is.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// === Session helpers ===

// photo returns the photo with the given id, or the active photo for "".
func (s *Server) photo(id string) (*imaging.Photo, error) {
	if id == "" {
		s.mu.Lock()
		id = s.current
		s.mu.Unlock()
		if id == "" {
			return nil, errNoPhoto
		}
	}
	return s.photos.Get(id)
}

func (s *Server) fonts() *effects.FontBook {
	if s.opts.Fonts != nil {
		return s.opts.Fonts
	}
	return effects.DefaultFonts()
}

func (s *Server) seed(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeds[id]
}

// renderRequest builds a pipeline request for photo id: defaults, then the
// caller's JSON, then the photo's session seed and stored analysis results.
func (s *Server) renderRequest(id string, raw json.RawMessage) (pipeline.Request, error) {
	req := pipeline.DefaultRequest(s.opts.PreviewWidth, s.opts.PreviewHeight)
	req.Effect = req.Effect.WithDefaults()
	if err := decodeArgs(raw, &req); err != nil {
		return req, err
	}
	if _, err := req.Effect.Config(); err != nil {
		return req, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	if req.Seed == 0 {
		req.Seed = s.seed(id)
	}
	if entry, ok := s.analysis.Cache.Get(id); ok {
		req.Effect = req.Effect.WithMask(entry.Mask).WithPoints(entry.Points)
	}
	return req, nil
}

// === Photo Session Handlers ===

type photoLoadArgs struct {
	Path string `json:"path"`
}

type photoLoadResult struct {
	*imaging.PhotoInfo
	Seed    uint64           `json:"seed"`
	Request pipeline.Request `json:"request"`
	Fonts   []string         `json:"fonts"`
}

// handlePhotoLoad makes a new upload the active photo. The previous photo
// is evicted together with its mask and points.
func (s *Server) handlePhotoLoad(args json.RawMessage) (interface{}, error) {
	var a photoLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}

	photo, err := s.photos.Load(a.Path)
	if err != nil {
		return nil, err
	}
	seed := rand.Uint64()

	s.mu.Lock()
	prev := s.current
	s.current = photo.ID
	s.seeds[photo.ID] = seed
	if prev != "" {
		delete(s.seeds, prev)
	}
	s.mu.Unlock()

	if prev != "" {
		s.photos.Evict(prev)
		s.analysis.Cache.Forget(prev)
	}
	s.preview.Reset()

	info := imaging.Info(photo)
	log.Info().
		Str("photo_id", photo.ID).
		Str("path", a.Path).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("Photo loaded")

	return &photoLoadResult{
		PhotoInfo: info,
		Seed:      seed,
		Request:   pipeline.DefaultRequest(s.opts.PreviewWidth, s.opts.PreviewHeight),
		Fonts:     s.fonts().Names(),
	}, nil
}

type photoArgs struct {
	PhotoID string `json:"photo_id"`
}

type previewSummary struct {
	Generation uint64 `json:"generation"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type photoInfoResult struct {
	*imaging.PhotoInfo
	Seed              uint64          `json:"seed"`
	HasMask           bool            `json:"has_mask"`
	PointCount        int             `json:"point_count"`
	PreviewGeneration uint64          `json:"preview_generation"`
	LastPreview       *previewSummary `json:"last_preview,omitempty"`
	MaskAnalyzer      bool            `json:"mask_analyzer"`
	PointAnalyzer     bool            `json:"point_analyzer"`
}

func (s *Server) handlePhotoInfo(args json.RawMessage) (interface{}, error) {
	var a photoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}

	entry, _ := s.analysis.Cache.Get(photo.ID)
	result := &photoInfoResult{
		PhotoInfo:         imaging.Info(photo),
		Seed:              s.seed(photo.ID),
		HasMask:           entry.Mask != nil,
		PointCount:        len(entry.Points),
		PreviewGeneration: s.preview.Generation(),
		MaskAnalyzer:      s.analysis.Masks != nil,
		PointAnalyzer:     s.analysis.Points != nil,
	}
	if last := s.preview.Latest(); last != nil {
		b := last.Image.Bounds()
		result.LastPreview = &previewSummary{Generation: last.Generation, Width: b.Dx(), Height: b.Dy()}
	}
	return result, nil
}

// === Rendering Handlers ===

type renderPreviewArgs struct {
	PhotoID         string          `json:"photo_id"`
	Request         json.RawMessage `json:"request"`
	ContainerWidth  int             `json:"container_width"`
	ContainerHeight int             `json:"container_height"`
}

type previewResult struct {
	PhotoID    string        `json:"photo_id"`
	Generation uint64        `json:"generation"`
	Stale      bool          `json:"stale,omitempty"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	Crop       *framing.Rect `json:"crop,omitempty"`
	Seed       uint64        `json:"seed"`
	ElapsedMs  int64         `json:"elapsed_ms"`
}

// handleRenderPreview renders through the generation-guarded renderer. A
// render overtaken by a newer one answers with stale set and no image.
func (s *Server) handleRenderPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}
	req, err := s.renderRequest(photo.ID, a.Request)
	if err != nil {
		return nil, err
	}

	cw, ch := req.Output.ContainerWidth, req.Output.ContainerHeight
	if a.ContainerWidth > 0 {
		cw = a.ContainerWidth
	}
	if a.ContainerHeight > 0 {
		ch = a.ContainerHeight
	}
	req.Output = framing.Preview(cw, ch)

	res, err := s.preview.Render(ctx, photo.Image, req)
	if errors.Is(err, pipeline.ErrStale) {
		return &toolOutput{Meta: &previewResult{
			PhotoID:    photo.ID,
			Generation: s.preview.Generation(),
			Stale:      true,
			Seed:       req.Seed,
		}}, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, err
	}
	b := res.Image.Bounds()
	return &toolOutput{
		Meta: &previewResult{
			PhotoID:    photo.ID,
			Generation: res.Generation,
			Width:      b.Dx(),
			Height:     b.Dy(),
			Crop:       &res.Crop,
			Seed:       req.Seed,
			ElapsedMs:  res.Elapsed.Milliseconds(),
		},
		PNG: data,
	}, nil
}

type exportArgs struct {
	PhotoID    string          `json:"photo_id"`
	Request    json.RawMessage `json:"request"`
	OutputPath string          `json:"output_path"`
}

type exportResult struct {
	PhotoID  string `json:"photo_id"`
	FileName string `json:"file_name"`
	Path     string `json:"path,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bytes    int    `json:"bytes"`
	Seed     uint64 `json:"seed"`
}

func (s *Server) handleExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}
	req, err := s.renderRequest(photo.ID, a.Request)
	if err != nil {
		return nil, err
	}

	exp, err := s.pipeline.Export(ctx, photo.Image, req)
	if err != nil {
		return nil, err
	}
	result := &exportResult{
		PhotoID:  photo.ID,
		FileName: exp.FileName,
		Width:    exp.Width,
		Height:   exp.Height,
		Bytes:    len(exp.Data),
		Seed:     req.Seed,
	}

	if a.OutputPath == "" {
		return &toolOutput{Meta: result, PNG: exp.Data}, nil
	}

	path, err := exportPath(a.OutputPath, exp.FileName)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	result.Path = path
	log.Info().Str("photo_id", photo.ID).Str("path", path).Int("bytes", len(exp.Data)).Msg("Export written")
	return result, nil
}

// exportPath resolves the destination file. An existing directory, or a
// path ending in a separator, receives the default file name.
func exportPath(out, fileName string) (string, error) {
	if strings.HasSuffix(out, string(os.PathSeparator)) || strings.HasSuffix(out, "/") {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
		return filepath.Join(out, fileName), nil
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, fileName), nil
	}
	return out, nil
}

// === Analysis Handlers ===

type maskResult struct {
	PhotoID     string `json:"photo_id"`
	SVGPathData string `json:"svgPathData"`
}

type pointsResult struct {
	PhotoID string                   `json:"photo_id"`
	Count   int                      `json:"count"`
	Points  []effects.StructurePoint `json:"points"`
}

func (s *Server) handleAnalyzeMask(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a photoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}

	m, err := s.analysis.Mask(ctx, photo.ID, photo.Image)
	if errors.Is(err, analysis.ErrNoAnalyzer) {
		return nil, fmt.Errorf("mask analysis is not configured (set GEMINI_API_KEY): %w", err)
	}
	if err != nil {
		return nil, err
	}
	return &maskResult{PhotoID: photo.ID, SVGPathData: m.PathData}, nil
}

func (s *Server) handleAnalyzePoints(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a photoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}

	pts, err := s.analysis.AnchorPoints(ctx, photo.ID, photo.Image)
	if err != nil {
		return nil, err
	}
	return &pointsResult{PhotoID: photo.ID, Count: len(pts), Points: pts}, nil
}

type setMaskArgs struct {
	PhotoID     string  `json:"photo_id"`
	SVGPathData *string `json:"svgPathData"`
}

func (s *Server) handleSetMask(args json.RawMessage) (interface{}, error) {
	var a setMaskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.SVGPathData == nil {
		return nil, fmt.Errorf("%w: svgPathData is required", errInvalidArgs)
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}

	path := strings.TrimSpace(*a.SVGPathData)
	if path == "" {
		s.analysis.Cache.SetMask(photo.ID, nil)
		return &maskResult{PhotoID: photo.ID}, nil
	}
	if _, err := effects.ParsePath(path); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
	}
	s.analysis.Cache.SetMask(photo.ID, &effects.Mask{PathData: path})
	return &maskResult{PhotoID: photo.ID, SVGPathData: path}, nil
}

type setPointsArgs struct {
	PhotoID string                   `json:"photo_id"`
	Points  []effects.StructurePoint `json:"points"`
}

func (s *Server) handleSetPoints(args json.RawMessage) (interface{}, error) {
	var a setPointsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	photo, err := s.photo(a.PhotoID)
	if err != nil {
		return nil, err
	}

	pts := analysis.NormalizePoints(a.Points)
	s.analysis.Cache.SetPoints(photo.ID, pts)
	return &pointsResult{PhotoID: photo.ID, Count: len(pts), Points: pts}, nil
}
