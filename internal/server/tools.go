package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and channel count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_list_filters",
			Description: "List the filters image_filter accepts. Pointwise filters give identical results for any tile size; convolution filters show seams at tile boundaries.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_filter",
			Description: "Apply a filter to an image by splitting it into tiles and processing the tiles in parallel. Writes the result to output_path, or to a timestamped PNG in the output directory, and returns timing metrics. Send a progressToken in _meta to receive a progress notification per tile.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Filter name, e.g. grayscale, sepia, blur, sharpen, edge-detection, brightness+50, contrast-high",
					},
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default from TILEFILTER_TILE_SIZE (50)",
						"minimum":     1,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional destination file; the extension picks the format",
					},
					"publish": map[string]interface{}{
						"type":        "boolean",
						"description": "Stream each finished tile to the configured Redis stream",
						"default":     false,
					},
				},
				"required": []string{"path", "filter"},
			},
		},
		{
			Name:        "image_filter_batch",
			Description: "Apply one filter to several images concurrently. A failure in one image does not stop the others; each input gets its own result entry in input order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the source images",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Filter name",
					},
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default from TILEFILTER_TILE_SIZE (50)",
						"minimum":     1,
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for <name>_<filter>.png outputs. Default from TILEFILTER_OUTPUT_DIR",
					},
				},
				"required": []string{"paths", "filter"},
			},
		},
		{
			Name:        "image_tile_grid",
			Description: "Draw the tile grid used for processing on top of an image and return it as base64-encoded PNG. Useful for locating seams left by convolution filters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default from TILEFILTER_TILE_SIZE (50)",
					},
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each tile with its origin. Default true",
						"default":     true,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex (e.g., '#FF0000' or '#FF000080' with alpha)",
						"default":     "#FF000080",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_tile_preview",
			Description: "Run a filter tile by tile and return one tile's output as base64-encoded PNG, together with a comparison against the same region of a whole-image run. Pointwise filters match exactly; convolution filters differ near tile edges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Filter name",
					},
					"tile_size": map[string]interface{}{
						"type":        "integer",
						"description": "Tile edge length in pixels. Default from TILEFILTER_TILE_SIZE (50)",
						"minimum":     1,
					},
					"tile_index": map[string]interface{}{
						"type":        "integer",
						"description": "Index of the tile in row-major order (see image_tile_grid labels)",
						"minimum":     0,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional magnification factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "filter", "tile_index"},
			},
		},
		{
			Name:        "image_compare",
			Description: "Compare two images of the same shape pixel by pixel and report how many pixels differ and by how much.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path_a": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the first image",
					},
					"path_b": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the second image",
					},
				},
				"required": []string{"path_a", "path_b"},
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
