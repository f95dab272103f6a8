package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/filter"
	"github.com/ironsheep/tile-filter-mcp/internal/live"
	"github.com/ironsheep/tile-filter-mcp/internal/metrics"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_filter").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token. When present, filter tools
	// send notifications/progress as tiles complete.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

type progressTokenKey struct{}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	ctx := context.Background()
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		ctx = context.WithValue(ctx, progressTokenKey{}, params.Meta.ProgressToken)
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_list_filters":
		return s.handleListFilters(args)
	case "image_filter":
		return s.handleImageFilter(ctx, args)
	case "image_filter_batch":
		return s.handleImageFilterBatch(ctx, args)
	case "image_tile_grid":
		return s.handleTileGrid(args)
	case "image_tile_preview":
		return s.handleTilePreview(ctx, args)
	case "image_compare":
		return s.handleImageCompare(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// tileSizeOr returns size, or the configured default when size is zero.
func (s *Server) tileSizeOr(size int) int {
	if size == 0 {
		return s.cfg.TileSize
	}
	return size
}

// progressSink returns a sink that reports tile completion as MCP progress
// notifications, and a function that flushes it. Both are no-ops when the
// request carried no progress token.
func (s *Server) progressSink(ctx context.Context, total int) (engine.Sink, func()) {
	token := ctx.Value(progressTokenKey{})
	if token == nil {
		return nil, func() {}
	}

	q := live.NewQueue(s.cfg.LiveBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for range q.Results() {
			n++
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": token,
				"progress":      n,
				"total":         total,
			})
		}
	}()
	return q, func() {
		q.Close()
		<-done
	}
}

// redisSink connects a publisher when publishing is requested and Redis is
// configured.
func (s *Server) redisSink(ctx context.Context, publish bool) (*live.RedisPublisher, error) {
	if !publish {
		return nil, nil
	}
	if s.cfg.RedisAddr == "" {
		return nil, errors.New("publish requested but TILEFILTER_REDIS_ADDR is not set")
	}
	return live.NewRedisPublisher(ctx, live.RedisOptions{
		Addr:   s.cfg.RedisAddr,
		Stream: s.cfg.RedisStream,
		Buffer: s.cfg.LiveBuffer,
	})
}

// === Image information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return pixel.LoadInfo(s.cache, a.Path)
}

type listFiltersResult struct {
	Filters         []filter.Info `json:"filters"`
	DefaultTileSize int           `json:"default_tile_size"`
}

func (s *Server) handleListFilters(json.RawMessage) (interface{}, error) {
	return &listFiltersResult{
		Filters:         filter.List(),
		DefaultTileSize: s.cfg.TileSize,
	}, nil
}

// === Filtering ===

type imageFilterArgs struct {
	Path       string `json:"path"`
	Filter     string `json:"filter"`
	TileSize   int    `json:"tile_size"`
	OutputPath string `json:"output_path"`
	Publish    bool   `json:"publish"`
}

type imageFilterResult struct {
	Path       string           `json:"path"`
	OutputPath string           `json:"output_path"`
	Filter     string           `json:"filter"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Metrics    metrics.Snapshot `json:"metrics"`
	Summary    string           `json:"summary"`
	RunID      string           `json:"run_id,omitempty"`
}

func (s *Server) handleImageFilter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := filter.ByName(a.Filter)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	tileSize := s.tileSizeOr(a.TileSize)
	cols, rows, err := tile.GridSize(src.Width, src.Height, tileSize)
	if err != nil {
		return nil, err
	}

	pub, err := s.redisSink(ctx, a.Publish)
	if err != nil {
		return nil, err
	}
	progress, flush := s.progressSink(ctx, cols*rows)

	var pubSink engine.Sink
	if pub != nil {
		pubSink = pub
	}
	m := metrics.New()
	out, err := engine.ProcessImage(ctx, src, f, tileSize, m, live.Multi(progress, pubSink))
	flush()
	res := &imageFilterResult{
		Path:   a.Path,
		Filter: f.Name(),
		Width:  src.Width,
		Height: src.Height,
	}
	if pub != nil {
		res.RunID = pub.RunID()
		if cerr := pub.Close(); cerr != nil {
			log.Printf("Failed to close redis publisher: %v", cerr)
		}
	}
	if err != nil {
		return nil, err
	}

	if a.OutputPath == "" {
		res.OutputPath, err = pixel.SaveTimestamped(out, s.cfg.OutputDir, f.Name())
	} else {
		res.OutputPath = a.OutputPath
		err = pixel.Save(out, a.OutputPath)
	}
	if err != nil {
		return nil, err
	}
	s.cache.Evict(res.OutputPath)
	res.Metrics = m.Snapshot()
	res.Summary = m.Summary()
	return res, nil
}

type imageFilterBatchArgs struct {
	Paths     []string `json:"paths"`
	Filter    string   `json:"filter"`
	TileSize  int      `json:"tile_size"`
	OutputDir string   `json:"output_dir"`
}

type batchItem struct {
	Path       string            `json:"path"`
	OutputPath string            `json:"output_path,omitempty"`
	Metrics    *metrics.Snapshot `json:"metrics,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type imageFilterBatchResult struct {
	Filter    string      `json:"filter"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []batchItem `json:"results"`
}

func (s *Server) handleImageFilterBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageFilterBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}
	f, err := filter.ByName(a.Filter)
	if err != nil {
		return nil, err
	}
	outDir := a.OutputDir
	if outDir == "" {
		outDir = s.cfg.OutputDir
	}

	items := make([]batchItem, len(a.Paths))
	var (
		srcs  []*pixel.Buffer
		index []int
	)
	for i, p := range a.Paths {
		items[i].Path = p
		buf, err := s.cache.Load(p)
		if err != nil {
			items[i].Error = err.Error()
			continue
		}
		srcs = append(srcs, buf)
		index = append(index, i)
	}

	used := make(map[string]bool)
	for j, r := range engine.ProcessImages(ctx, srcs, f, s.tileSizeOr(a.TileSize)) {
		item := &items[index[j]]
		if r.Err != nil {
			item.Error = r.Err.Error()
			continue
		}
		name := pixel.DerivedName(item.Path, f.Name())
		if used[name] {
			name = fmt.Sprintf("%s_%d.png", strings.TrimSuffix(name, ".png"), index[j])
		}
		used[name] = true
		outPath, err := filepath.Abs(filepath.Join(outDir, name))
		if err == nil {
			err = pixel.Save(r.Buffer, outPath)
		}
		if err != nil {
			item.Error = err.Error()
			continue
		}
		s.cache.Evict(outPath)
		snap := r.Metrics.Snapshot()
		item.OutputPath = outPath
		item.Metrics = &snap
		item.Summary = r.Metrics.Summary()
	}

	res := &imageFilterBatchResult{Filter: f.Name(), Results: items}
	for _, item := range items {
		if item.Error != "" {
			res.Failed++
		} else {
			res.Succeeded++
		}
	}
	return res, nil
}

// === Inspection ===

type tileGridArgs struct {
	Path       string `json:"path"`
	TileSize   int    `json:"tile_size"`
	ShowLabels *bool  `json:"show_labels"`
	Color      string `json:"color"`
}

func (s *Server) handleTileGrid(args json.RawMessage) (interface{}, error) {
	var a tileGridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF000080"
	}
	showLabels := a.ShowLabels == nil || *a.ShowLabels
	buf, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return tile.GridOverlay(buf.Image(), s.tileSizeOr(a.TileSize), showLabels, a.Color)
}

type tilePreviewArgs struct {
	Path      string  `json:"path"`
	Filter    string  `json:"filter"`
	TileSize  int     `json:"tile_size"`
	TileIndex int     `json:"tile_index"`
	Scale     float64 `json:"scale"`
}

type tilePreviewResult struct {
	*tile.PreviewResult
	Filter       string               `json:"filter"`
	Pointwise    bool                 `json:"pointwise"`
	VsWholeImage *pixel.CompareResult `json:"vs_whole_image"`
}

// handleTilePreview runs the filter tile by tile, returns the requested tile's
// output, and compares it with the same region of a whole-image run.
func (s *Server) handleTilePreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a tilePreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	f, err := filter.ByName(a.Filter)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	tileSize := s.tileSizeOr(a.TileSize)
	tiles, err := tile.Decompose(src.Width, src.Height, tileSize)
	if err != nil {
		return nil, err
	}
	if a.TileIndex < 0 || a.TileIndex >= len(tiles) {
		return nil, fmt.Errorf("tile_index %d out of range [0,%d)", a.TileIndex, len(tiles))
	}

	var (
		mu     sync.Mutex
		picked tile.Result
	)
	sink := engine.SinkFunc(func(r tile.Result) {
		if r.Index == a.TileIndex {
			mu.Lock()
			picked = r
			mu.Unlock()
		}
	})
	if _, err := engine.ProcessImage(ctx, src, f, tileSize, nil, sink); err != nil {
		return nil, err
	}

	whole, err := f.Apply(src)
	if err != nil {
		return nil, err
	}
	d := tiles[a.TileIndex]
	region, err := whole.Region(d.X, d.Y, d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	cmp, err := pixel.Compare(picked.Buffer, region)
	if err != nil {
		return nil, err
	}

	preview, err := tile.Preview(picked, a.Scale)
	if err != nil {
		return nil, err
	}
	return &tilePreviewResult{
		PreviewResult: preview,
		Filter:        f.Name(),
		Pointwise:     filter.IsPointwise(f),
		VsWholeImage:  cmp,
	}, nil
}

type imageCompareArgs struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

func (s *Server) handleImageCompare(args json.RawMessage) (interface{}, error) {
	var a imageCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bufA, err := s.cache.Load(a.PathA)
	if err != nil {
		return nil, err
	}
	bufB, err := s.cache.Load(a.PathB)
	if err != nil {
		return nil, err
	}
	return pixel.Compare(bufA, bufB)
}
