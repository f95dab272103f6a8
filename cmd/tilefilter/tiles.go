package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tile-filter-mcp/internal/config"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

func newTilesCmd(cfg config.Config) *cobra.Command {
	tileSize := cfg.TileSize
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tiles [--tile N] WIDTH HEIGHT",
		Short: "Print the tile grid for an image size",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("width: %w", err)
			}
			height, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("height: %w", err)
			}
			tiles, err := tile.Decompose(width, height, tileSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tiles)
			}
			cols, rows, _ := tile.GridSize(width, height, tileSize)
			fmt.Fprintf(out, "%dx%d at tile size %d: %d tiles (%d cols x %d rows)\n",
				width, height, tileSize, len(tiles), cols, rows)
			for _, d := range tiles {
				fmt.Fprintln(out, d)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tileSize, "tile", "t", tileSize, "tile edge length in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print descriptors as JSON")
	return cmd
}
