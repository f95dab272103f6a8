// Command tilefilter applies filters to images from the command line using
// the tile-parallel engine.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tile-filter-mcp/internal/config"
	"github.com/ironsheep/tile-filter-mcp/internal/engine"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "tilefilter",
		Short:         "Apply image filters tile by tile in parallel",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := config.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			engine.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
			return nil
		},
	}
	root.SetVersionTemplate("tilefilter {{.Version}} (built " + BuildTime + ", commit " + GitCommit + ")\n")
	root.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		newApplyCmd(cfg),
		newBatchCmd(cfg),
		newFiltersCmd(),
		newTilesCmd(cfg),
	)
	return root
}
