package engine

import (
	"fmt"

	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

// ErrInvalidConfiguration is returned before any work starts when the tile
// size or image dimensions are not positive, or when the source or filter is
// missing. It is the same value as tile.ErrInvalidConfiguration.
var ErrInvalidConfiguration = tile.ErrInvalidConfiguration

// FilterFailure records a filter error on one tile. A panic inside the
// filter is reported as a FilterFailure too.
type FilterFailure struct {
	TileIndex int
	Tile      tile.Descriptor
	Filter    string
	Err       error
}

func (e *FilterFailure) Error() string {
	return fmt.Sprintf("filter %q failed on %s: %v", e.Filter, e.Tile, e.Err)
}

func (e *FilterFailure) Unwrap() error { return e.Err }

// AggregateFailure is returned when a run is aborted by tile failures.
// First is the failure with the lowest tile index among those observed
// before the run stopped; Failed counts every observed failure.
type AggregateFailure struct {
	Failed int
	First  *FilterFailure
}

func (e *AggregateFailure) Error() string {
	if e.Failed > 1 {
		return fmt.Sprintf("run aborted, %d tiles failed: %v", e.Failed, e.First)
	}
	return fmt.Sprintf("run aborted: %v", e.First)
}

func (e *AggregateFailure) Unwrap() error { return e.First }
