package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/photo-effects-mcp/internal/analysis"
	"github.com/ironsheep/photo-effects-mcp/internal/config"
	"github.com/ironsheep/photo-effects-mcp/internal/effects"
	"github.com/ironsheep/photo-effects-mcp/internal/imaging"
	"github.com/ironsheep/photo-effects-mcp/internal/pipeline"
)

// Options configures a Server.
type Options struct {
	// PreviewWidth and PreviewHeight are the default preview container.
	PreviewWidth  int
	PreviewHeight int

	// Fonts resolves text overlay fonts. Nil selects the builtin faces.
	Fonts *effects.FontBook

	// Masks and Points run photo analysis. A nil Masks disables
	// photo_analyze_mask; a nil Points disables photo_analyze_points.
	Masks  analysis.MaskAnalyzer
	Points analysis.PointAnalyzer

	// Version is reported in serverInfo.
	Version string
}

// Server handles MCP protocol communication
type Server struct {
	opts     Options
	photos   *imaging.PhotoCache
	pipeline *pipeline.Pipeline
	preview  *pipeline.Renderer
	analysis *analysis.Service

	mu      sync.Mutex
	current string
	seeds   map[string]uint64

	writeMu  sync.Mutex
	inflight sync.WaitGroup
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = config.DefaultPreviewWidth
	}
	if opts.PreviewHeight <= 0 {
		opts.PreviewHeight = config.DefaultPreviewHeight
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	p := pipeline.New(opts.Fonts)
	return &Server{
		opts:     opts,
		photos:   imaging.NewPhotoCache(),
		pipeline: p,
		preview:  pipeline.NewRenderer(p),
		analysis: analysis.NewService(opts.Masks, opts.Points),
		seeds:    make(map[string]uint64),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w. Tool calls run concurrently so that a newer preview can supersede one
// still rendering; responses carry the request id and may arrive out of
// order. Serve returns once r is exhausted and every call has answered.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)
	defer s.inflight.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn().Err(err).Msg("Failed to parse request")
			s.write(encoder, s.errorResponse(nil, -32700, "Parse error", err.Error()))
			continue
		}

		if req.Method == "tools/call" {
			s.inflight.Add(1)
			go func() {
				defer s.inflight.Done()
				s.write(encoder, s.handleRequest(ctx, &req))
			}()
			continue
		}
		s.write(encoder, s.handleRequest(ctx, &req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

func (s *Server) write(encoder *json.Encoder, resp *MCPResponse) {
	if resp == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := encoder.Encode(resp); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "photofx-mcp",
				"version": s.opts.Version,
			},
		},
	}
}
