package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tile-filter-mcp/internal/filter"
	"github.com/ironsheep/tile-filter-mcp/internal/metrics"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

// BatchResult is the outcome of one image in a batch. Exactly one of Buffer
// and Err is set. Metrics is always present.
type BatchResult struct {
	Index   int
	Buffer  *pixel.Buffer
	Metrics *metrics.RunMetrics
	Err     error
}

type batchOptions struct {
	failFast bool
	sinkFor  func(index int) Sink
	tileOpts []Option
}

// BatchOption configures ProcessImages.
type BatchOption func(*batchOptions)

// FailFast cancels the remaining images once one image fails. Without it
// every image runs to completion independently.
func FailFast() BatchOption {
	return func(o *batchOptions) { o.failFast = true }
}

// WithSinkFor supplies a per-image live sink. fn may return nil.
func WithSinkFor(fn func(index int) Sink) BatchOption {
	return func(o *batchOptions) { o.sinkFor = fn }
}

// WithTileOptions passes opts to every ProcessImage call in the batch.
func WithTileOptions(opts ...Option) BatchOption {
	return func(o *batchOptions) { o.tileOpts = append(o.tileOpts, opts...) }
}

// ProcessImages runs ProcessImage for each source concurrently and returns
// one result per source in input order. A failure in one image is reported
// in that image's result and does not affect the others unless FailFast is
// given.
func ProcessImages(ctx context.Context, srcs []*pixel.Buffer, f filter.Filter, tileSize int, opts ...BatchOption) []BatchResult {
	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx := ctx
	if o.failFast {
		runCtx = gctx
	}

	results := make([]BatchResult, len(srcs))
	for i, src := range srcs {
		results[i] = BatchResult{Index: i, Metrics: metrics.New()}
		g.Go(func() error {
			var sink Sink
			if o.sinkFor != nil {
				sink = o.sinkFor(i)
			}
			buf, err := ProcessImage(runCtx, src, f, tileSize, results[i].Metrics, sink, o.tileOpts...)
			results[i].Buffer = buf
			results[i].Err = err
			if err != nil && o.failFast {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
