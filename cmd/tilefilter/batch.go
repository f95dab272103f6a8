package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tile-filter-mcp/internal/config"
	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/filter"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

type batchOptions struct {
	filter   string
	tileSize int
	outDir   string
	failFast bool
}

func newBatchCmd(cfg config.Config) *cobra.Command {
	o := batchOptions{
		tileSize: cfg.TileSize,
		outDir:   cfg.OutputDir,
	}

	cmd := &cobra.Command{
		Use:   "batch --filter NAME [--out DIR] IN...",
		Short: "Filter several images concurrently",
		Long: "Filter several images concurrently, writing NNN_<name>_<filter>.png for\n" +
			"each input into the output directory. A failed image does not stop the others\n" +
			"unless --fail-fast is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), o, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.filter, "filter", "f", "", "filter name (see 'tilefilter filters')")
	flags.IntVarP(&o.tileSize, "tile", "t", o.tileSize, "tile edge length in pixels")
	flags.StringVarP(&o.outDir, "out", "o", o.outDir, "output directory")
	flags.BoolVar(&o.failFast, "fail-fast", false, "cancel remaining images after the first failure")
	_ = cmd.MarkFlagRequired("filter")
	return cmd
}

func runBatch(ctx context.Context, stdout io.Writer, o batchOptions, inputs []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f, err := filter.ByName(o.filter)
	if err != nil {
		return err
	}

	errs := make([]error, len(inputs))
	var (
		srcs  []*pixel.Buffer
		index []int
	)
	for i, in := range inputs {
		if !pixel.IsSupported(in) {
			errs[i] = fmt.Errorf("unsupported file type: %s", filepath.Ext(in))
			continue
		}
		buf, err := pixel.Load(in)
		if err != nil {
			errs[i] = err
			continue
		}
		srcs = append(srcs, buf)
		index = append(index, i)
	}

	var opts []engine.BatchOption
	if o.failFast {
		opts = append(opts, engine.FailFast())
	}

	summaries := make([]string, len(inputs))
	for j, r := range engine.ProcessImages(ctx, srcs, f, o.tileSize, opts...) {
		i := index[j]
		if r.Err != nil {
			errs[i] = r.Err
			continue
		}
		out := filepath.Join(o.outDir, fmt.Sprintf("%03d_%s", i, pixel.DerivedName(inputs[i], f.Name())))
		if err := pixel.Save(r.Buffer, out); err != nil {
			errs[i] = err
			continue
		}
		summaries[i] = fmt.Sprintf("%s -> %s (%s)", inputs[i], out, r.Metrics.Summary())
	}

	failed := 0
	for i := range inputs {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(stdout, "%s: FAILED: %v\n", inputs[i], errs[i])
			continue
		}
		fmt.Fprintln(stdout, summaries[i])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(inputs))
	}
	return nil
}
