package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tile-filter-mcp/internal/filter"
	"github.com/ironsheep/tile-filter-mcp/internal/metrics"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

type options struct {
	limit int
}

// Option configures ProcessImage.
type Option func(*options)

// WithConcurrency caps the number of tile tasks running at once. Zero or a
// negative value means no cap, one goroutine per tile.
func WithConcurrency(n int) Option {
	return func(o *options) { o.limit = n }
}

// ProcessImage applies f to src tile by tile and returns the merged result.
//
// m is reset at the start of the run and receives one increment per
// completed tile; pass nil if the caller does not need the statistics. sink,
// if non-nil, is notified with each tile result before the merge.
//
// ProcessImage returns ErrInvalidConfiguration for a non-positive tile size,
// an empty source, or a nil filter. If any tile fails it returns an
// *AggregateFailure and no buffer. If ctx is cancelled before all tiles are
// done it returns the context error.
func ProcessImage(ctx context.Context, src *pixel.Buffer, f filter.Filter, tileSize int, m *metrics.RunMetrics, sink Sink, opts ...Option) (*pixel.Buffer, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil filter", ErrInvalidConfiguration)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidConfiguration)
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	tiles, err := tile.Decompose(src.Width, src.Height, tileSize)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if m == nil {
		m = metrics.New()
	}

	log := Logger()
	m.Start(f.Name(), tileSize, len(tiles))
	m.CaptureMemoryBefore()
	log.Debug("run started", "filter", f.Name(), "width", src.Width, "height", src.Height,
		"tile_size", tileSize, "tiles", len(tiles))

	results, err := runTiles(ctx, src, f, tiles, m, sink, o.limit)
	if err != nil {
		m.CaptureMemoryAfter()
		m.Finish()
		return nil, err
	}

	out, err := tile.Merge(src.Width, src.Height, src.Channels, results)
	m.CaptureMemoryAfter()
	m.Finish()
	if err != nil {
		return nil, err
	}
	log.Debug("run finished", "filter", f.Name(), "summary", m.Summary())
	return out, nil
}

// runTiles executes one task per tile and returns the results indexed by
// tile. The first failure cancels the group; tasks that observe the
// cancellation before starting the filter return without doing any work.
func runTiles(ctx context.Context, src *pixel.Buffer, f filter.Filter, tiles []tile.Descriptor,
	m *metrics.RunMetrics, sink Sink, limit int) ([]tile.Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var (
		mu     sync.Mutex
		first  *FilterFailure
		failed int
	)
	record := func(ff *FilterFailure) {
		mu.Lock()
		defer mu.Unlock()
		failed++
		if first == nil || ff.TileIndex < first.TileIndex {
			first = ff
		}
	}

	results := make([]tile.Result, len(tiles))
	for i, d := range tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := runTile(src, f, d)
			if err != nil {
				ff := &FilterFailure{TileIndex: d.Index, Tile: d, Filter: f.Name(), Err: err}
				record(ff)
				Logger().Warn("tile failed", "filter", f.Name(), "tile", d.Index, "err", err)
				return ff
			}
			m.IncrementProcessed()
			if sink != nil {
				sink.Notify(res)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if first != nil {
		return nil, &AggregateFailure{Failed: failed, First: first}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process image: %w", err)
	}
	return results, nil
}

// runTile filters a single tile, converting a panic into an error.
func runTile(src *pixel.Buffer, f filter.Filter, d tile.Descriptor) (res tile.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	in, err := tile.Extract(src, d)
	if err != nil {
		return tile.Result{}, err
	}
	out, err := f.Apply(in)
	if err != nil {
		return tile.Result{}, err
	}
	if err := filter.CheckOutput(in, out); err != nil {
		return tile.Result{}, err
	}
	return tile.Result{Descriptor: d, Buffer: out}, nil
}
