package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolPhotoLoad          = "photo_load"
	ToolPhotoInfo          = "photo_info"
	ToolPhotoRenderPreview = "photo_render_preview"
	ToolPhotoExport        = "photo_export"
	ToolPhotoAnalyzeMask   = "photo_analyze_mask"
	ToolPhotoAnalyzePoints = "photo_analyze_points"
	ToolPhotoSetMask       = "photo_set_mask"
	ToolPhotoSetPoints     = "photo_set_points"
)

var photoIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Photo id returned by photo_load. Defaults to the most recently loaded photo.",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Photo session
		{
			Name:        ToolPhotoLoad,
			Description: "Load a photo (PNG, JPEG, GIF, BMP, TIFF or WebP) and make it the active photo. Clears any mask or anchor points from the previous photo and returns the photo metadata with the default render request.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the photo file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolPhotoInfo,
			Description: "Describe a loaded photo: dimensions, format, render seed, whether a subject mask is set and how many anchor points are stored.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
				},
			},
		},

		// Rendering
		{
			Name:        ToolPhotoRenderPreview,
			Description: "Render the photo through the effects pipeline (framing, color grade, one effect, halftone, grain) scaled to fit a preview container. Returns the PNG image and render metadata. A newer preview request supersedes one still in flight.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
					"request":  renderRequestSchema(),
					"container_width": map[string]interface{}{
						"type":        "integer",
						"description": "Preview container width in pixels. Defaults to the configured preview width.",
					},
					"container_height": map[string]interface{}{
						"type":        "integer",
						"description": "Preview container height in pixels. Defaults to the configured preview height.",
					},
				},
			},
		},
		{
			Name:        ToolPhotoExport,
			Description: "Render the photo at export resolution (1920x1080 for 16:9, 1080x1920 for 9:16, 1080x1440 for 3:4, native crop size for original) and encode it as PNG. Writes the file when output_path is given, otherwise returns the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
					"request":  renderRequestSchema(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "File or directory to write. A directory receives filter-result.png.",
					},
				},
			},
		},

		// Analysis
		{
			Name:        ToolPhotoAnalyzeMask,
			Description: "Ask the AI analyzer for an SVG outline of the main foreground subject (100x100 coordinate space). The mask is stored and used by portrait_blur. Requires a Gemini API key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
				},
			},
		},
		{
			Name:        ToolPhotoAnalyzePoints,
			Description: "Find structural anchor points on high-contrast edges, normalized to 0-1. The points are stored and used by the structure effect. Uses Gemini when configured, otherwise a local edge analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
				},
			},
		},
		{
			Name:        ToolPhotoSetMask,
			Description: "Store a subject mask given as SVG path data in a 100x100 coordinate space. An empty path clears the mask.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
					"svgPathData": map[string]interface{}{
						"type":        "string",
						"description": "SVG path 'd' attribute, e.g. \"M10 80 Q 52.5 10, 95 80 Z\"",
					},
				},
				"required": []string{"svgPathData"},
			},
		},
		{
			Name:        ToolPhotoSetPoints,
			Description: "Store structural anchor points. Coordinates are normalized (0-1) and clamped. An empty list clears the points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"photo_id": photoIDProperty,
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": map[string]interface{}{"type": "number"},
								"y": map[string]interface{}{"type": "number"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
				"required": []string{"points"},
			},
		},
	}
}

func numberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// renderRequestSchema describes pipeline.Request. Every field is optional;
// omitted fields keep the defaults returned by photo_load.
func renderRequestSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Render settings. Omitted fields use their defaults.",
		"properties": map[string]interface{}{
			"framing": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ratio": map[string]interface{}{
						"type": "string",
						"enum": []string{"original", "16:9", "9:16", "3:4"},
					},
					"scale":   numberProperty("Zoom 1-3"),
					"offsetX": numberProperty("Horizontal pan -100 (left) to 100 (right)"),
					"offsetY": numberProperty("Vertical pan -100 (top) to 100 (bottom)"),
				},
			},
			"grade": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"saturation": numberProperty("Percent, 0-200, default 100"),
					"contrast":   numberProperty("Percent, 0-200, default 100"),
					"exposure":   numberProperty("Percent, 50-250, default 100"),
				},
			},
			"effect": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"kind": map[string]interface{}{
						"type": "string",
						"enum": []string{"none", "motion_blur", "portrait_blur", "text_overlay", "structure", "gamma", "glitch"},
					},
					"motionBlur":   map[string]interface{}{"type": "object", "description": "focusX, focusY (0-100), intensity (0-50)"},
					"portraitBlur": map[string]interface{}{"type": "object", "description": "intensity (0-20), feather (0-50), expansion (-50 to 50)"},
					"textOverlay":  map[string]interface{}{"type": "object", "description": "text, blur (bool), font"},
					"structure":    map[string]interface{}{"type": "object", "description": "complexity (1-100), dynamism, fragmentation (0-100), color (#RRGGBB)"},
					"gamma":        map[string]interface{}{"type": "object", "description": "factor (10-300), curveMix (0-100)"},
					"glitch":       map[string]interface{}{"type": "object", "description": "level (1-4), intensity (0-100)"},
				},
			},
			"halftone": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"enabled": map[string]interface{}{"type": "boolean"},
					"dotSize": numberProperty("Maximum dot diameter in pixels, 0-40"),
					"spacing": map[string]interface{}{"type": "integer", "description": "Cell size in pixels, 0-40"},
				},
			},
			"grain": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"monochrome": map[string]interface{}{"type": "boolean"},
				},
			},
			"seed": map[string]interface{}{
				"type":        "integer",
				"description": "Random seed. 0 uses the photo's session seed so previews stay stable.",
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
