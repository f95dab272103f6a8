package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tile-filter-mcp/internal/config"
	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/filter"
	"github.com/ironsheep/tile-filter-mcp/internal/live"
	"github.com/ironsheep/tile-filter-mcp/internal/metrics"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

type applyOptions struct {
	filter     string
	tileSize   int
	live       bool
	framesDir  string
	frameEvery int
	redisAddr  string
	stream     string
	buffer     int
	outputDir  string
}

func newApplyCmd(cfg config.Config) *cobra.Command {
	o := applyOptions{
		tileSize:  cfg.TileSize,
		redisAddr: cfg.RedisAddr,
		stream:    cfg.RedisStream,
		buffer:    cfg.LiveBuffer,
		outputDir: cfg.OutputDir,
	}

	cmd := &cobra.Command{
		Use:   "apply --filter NAME IN [OUT]",
		Short: "Filter one image",
		Long: "Filter one image tile by tile. Without OUT the result is written to\n" +
			"<filter>_<timestamp>.png in the output directory.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ""
			if len(args) == 2 {
				out = args[1]
			}
			return runApply(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), o, args[0], out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.filter, "filter", "f", "", "filter name (see 'tilefilter filters')")
	flags.IntVarP(&o.tileSize, "tile", "t", o.tileSize, "tile edge length in pixels")
	flags.BoolVar(&o.live, "live", false, "print each tile as it completes")
	flags.StringVar(&o.framesDir, "frames", "", "write progressive reveal frames into this directory")
	flags.IntVar(&o.frameEvery, "frame-every", 1, "tiles between reveal frames")
	flags.StringVar(&o.redisAddr, "redis", o.redisAddr, "publish tiles to the Redis server at this address")
	flags.StringVar(&o.stream, "stream", o.stream, "Redis stream name")
	flags.StringVar(&o.outputDir, "out-dir", o.outputDir, "directory for timestamped output when OUT is omitted")
	_ = cmd.MarkFlagRequired("filter")
	return cmd
}

func runApply(ctx context.Context, stdout, stderr io.Writer, o applyOptions, in, out string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := filter.ByName(o.filter)
	if err != nil {
		return err
	}
	src, err := pixel.Load(in)
	if err != nil {
		return err
	}
	cols, rows, err := tile.GridSize(src.Width, src.Height, o.tileSize)
	if err != nil {
		return err
	}
	total := cols * rows

	var sinks []engine.Sink
	var wg sync.WaitGroup

	var queue *live.Queue
	if o.live || o.framesDir != "" {
		queue = live.NewQueue(o.buffer)
		sinks = append(sinks, queue)
		reveal, err := live.NewReveal(src.Width, src.Height, src.Channels, total)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumeLive(queue, reveal, stderr, o, total)
		}()
	}

	var pub *live.RedisPublisher
	if o.redisAddr != "" {
		pub, err = live.NewRedisPublisher(ctx, live.RedisOptions{
			Addr:   o.redisAddr,
			Stream: o.stream,
			Buffer: o.buffer,
		})
		if err != nil {
			return err
		}
		sinks = append(sinks, pub)
	}

	m := metrics.New()
	result, runErr := engine.ProcessImage(ctx, src, f, o.tileSize, m, live.Multi(sinks...))

	if queue != nil {
		queue.Close()
		wg.Wait()
	}
	if pub != nil {
		if err := pub.Close(); err != nil {
			fmt.Fprintf(stderr, "redis: %v\n", err)
		}
		fmt.Fprintf(stderr, "published %d tiles to %s (run %s)\n", pub.Published(), pub.Stream(), pub.RunID())
	}
	if runErr != nil {
		fmt.Fprintln(stdout, m)
		return runErr
	}

	if out == "" {
		out, err = pixel.SaveTimestamped(result, o.outputDir, f.Name())
	} else {
		err = pixel.Save(result, out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, m)
	fmt.Fprintf(stdout, "Saved: %s\n", out)
	return nil
}

// consumeLive prints tile progress and writes reveal frames until the queue
// is closed.
func consumeLive(q *live.Queue, reveal *live.Reveal, stderr io.Writer, o applyOptions, total int) {
	every := max(o.frameEvery, 1)
	frame := 0
	for r := range q.Results() {
		reveal.Notify(r)
		n := reveal.Revealed()
		if o.live {
			fmt.Fprintf(stderr, "[%d/%d] %s\n", n, total, r.Descriptor)
		}
		if o.framesDir != "" && (n%every == 0 || n == total) {
			path := filepath.Join(o.framesDir, fmt.Sprintf("frame_%04d.png", frame))
			if err := pixel.Save(reveal.Snapshot(), path); err != nil {
				fmt.Fprintf(stderr, "frame %d: %v\n", frame, err)
			}
			frame++
		}
	}
}
