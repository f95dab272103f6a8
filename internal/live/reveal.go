package live

import (
	"fmt"
	"sync"

	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

// Reveal paints tiles onto a blank canvas as they arrive so a viewer can
// show a run filling in. Tiles that have not arrived stay zeroed.
type Reveal struct {
	mu       sync.Mutex
	canvas   *pixel.Buffer
	total    int
	order    []int
	revealed map[int]bool
}

// NewReveal returns a Reveal for an image of the given shape split into
// totalTiles tiles.
func NewReveal(width, height, channels, totalTiles int) (*Reveal, error) {
	if totalTiles <= 0 {
		return nil, fmt.Errorf("%w: tile count %d must be positive", tile.ErrInvalidConfiguration, totalTiles)
	}
	canvas, err := pixel.New(width, height, channels)
	if err != nil {
		return nil, err
	}
	return &Reveal{
		canvas:   canvas,
		total:    totalTiles,
		revealed: make(map[int]bool, totalTiles),
	}, nil
}

// Notify paints r onto the canvas. A tile delivered twice is painted again
// but counted once.
func (v *Reveal) Notify(r tile.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := tile.Paste(v.canvas, r); err != nil {
		engine.Logger().Warn("reveal: cannot paint tile", "tile", r.Index, "err", err)
		return
	}
	if !v.revealed[r.Index] {
		v.revealed[r.Index] = true
		v.order = append(v.order, r.Index)
	}
}

// Snapshot returns a copy of the canvas.
func (v *Reveal) Snapshot() *pixel.Buffer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canvas.Clone()
}

// Revealed returns the number of distinct tiles painted so far.
func (v *Reveal) Revealed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.order)
}

// Fraction returns the share of tiles painted, between 0 and 1.
func (v *Reveal) Fraction() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return float64(len(v.order)) / float64(v.total)
}

// Order returns tile indices in the order they were first painted.
func (v *Reveal) Order() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]int, len(v.order))
	copy(out, v.order)
	return out
}

// Done reports whether every tile has been painted.
func (v *Reveal) Done() bool {
	return v.Revealed() >= v.total
}
