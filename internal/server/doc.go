// Package server implements the MCP (Model Context Protocol) server for the
// photo effects pipeline.
//
// The server is the application around the render pipeline: it owns the
// loaded photo, its render seed, the subject mask and anchor points produced
// by analysis, the preview renderer and the export path.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Tool calls are executed concurrently and answered as they finish, so
// responses must be matched to requests by id.
//
// # Available Tools
//
// Photo session:
//   - photo_load: Load a photo and make it active
//   - photo_info: Describe a photo and its stored analysis
//
// Rendering:
//   - photo_render_preview: Render to fit a preview container
//   - photo_export: Render at export resolution as PNG
//
// Analysis:
//   - photo_analyze_mask: AI subject outline for portrait blur
//   - photo_analyze_points: Anchor points for the structure effect
//   - photo_set_mask: Store a mask supplied by the client
//   - photo_set_points: Store anchor points supplied by the client
//
// # Session Model
//
// One photo is active at a time. Loading a photo evicts the previous one
// and forgets its mask and points, then assigns a random seed that every
// render of the new photo reuses unless the request sets its own. Keeping
// the seed fixed means scrubbing a slider changes only what the slider
// controls.
//
// Preview renders go through a generation counter: when a newer preview
// starts, the older one is cancelled and answers with "stale": true and no
// image.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for malformed arguments or unknown tools, -32000 for
//     execution failures
//   - message: Human-readable error description
//   - data: The Go error string
package server
