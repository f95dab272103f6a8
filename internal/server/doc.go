// Package server implements the MCP (Model Context Protocol) server for tile-parallel image filtering.
//
// This package provides a JSON-RPC 2.0 server that exposes the tile engine through
// the MCP protocol, so MCP-compatible clients can filter images and inspect how
// tiling affects the result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_list_filters: List filter names and whether each is pointwise
//
// Filtering:
//   - image_filter: Run one filter over one image, tile by tile
//   - image_filter_batch: Run one filter over several images concurrently
//
// Inspection:
//   - image_tile_grid: Draw the tile grid over an image
//   - image_tile_preview: Show one tile's output next to a whole-image run
//   - image_compare: Compare two images pixel by pixel
//
// # Progress
//
// When a tools/call request carries params._meta.progressToken, image_filter
// sends one notifications/progress message per finished tile before the
// response. With "publish": true and TILEFILTER_REDIS_ADDR set, finished
// tiles are also appended to a Redis stream.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// Files written by the filter tools are evicted so later calls see the new
// contents.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
