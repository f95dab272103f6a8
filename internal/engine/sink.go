package engine

import "github.com/ironsheep/tile-filter-mcp/internal/tile"

// Sink receives each tile result as soon as its tile finishes, before the
// merge. Notify is called concurrently from tile tasks and must not block
// for long; implementations own their synchronization.
type Sink interface {
	Notify(r tile.Result)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r tile.Result)

// Notify calls f(r).
func (f SinkFunc) Notify(r tile.Result) { f(r) }
