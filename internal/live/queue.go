package live

import (
	"sync"

	"github.com/ironsheep/tile-filter-mcp/internal/engine"
	"github.com/ironsheep/tile-filter-mcp/internal/tile"
)

// DefaultQueueCapacity is the channel capacity used when NewQueue is given a
// non-positive value.
const DefaultQueueCapacity = 64

// Queue hands tile results to a single consumer without ever blocking the
// producer. Results are delivered in arrival order on the Results channel.
// When the consumer falls behind, results wait in an overflow slice instead
// of stalling tile tasks.
type Queue struct {
	mu      sync.Mutex
	pending []tile.Result
	closed  bool

	signal chan struct{}
	out    chan tile.Result
}

// NewQueue returns a running Queue whose Results channel has the given
// capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	q := &Queue{
		signal: make(chan struct{}, 1),
		out:    make(chan tile.Result, capacity),
	}
	go q.pump()
	return q
}

// Notify enqueues r. It never blocks. Results sent after Close are dropped.
func (q *Queue) Notify(r tile.Result) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		engine.Logger().Debug("live queue closed, dropping tile", "tile", r.Index)
		return
	}
	q.pending = append(q.pending, r)
	backlog := len(q.pending)
	q.mu.Unlock()

	if backlog > cap(q.out) {
		engine.Logger().Debug("live queue overflow", "backlog", backlog)
	}
	q.wake()
}

// Results returns the channel the consumer reads from. It is closed after
// Close once every queued result has been delivered.
func (q *Queue) Results() <-chan tile.Result {
	return q.out
}

// Close stops accepting results. Already queued results are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// Pending returns the number of results not yet handed to the channel.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 {
			if q.closed {
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
			<-q.signal
			q.mu.Lock()
		}
		r := q.pending[0]
		q.pending[0] = tile.Result{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.out <- r
	}
}

// Collector keeps every result it is notified with.
type Collector struct {
	mu      sync.Mutex
	results []tile.Result
}

// Notify appends r.
func (c *Collector) Notify(r tile.Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
}

// Results returns a copy of the collected results in arrival order.
func (c *Collector) Results() []tile.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]tile.Result, len(c.results))
	copy(out, c.results)
	return out
}

// Len returns the number of collected results.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Multi forwards each result to every non-nil sink in order. It returns nil
// when no sinks remain so the engine can skip notification entirely.
func Multi(sinks ...engine.Sink) engine.Sink {
	var keep multi
	for _, s := range sinks {
		if s != nil {
			keep = append(keep, s)
		}
	}
	switch len(keep) {
	case 0:
		return nil
	case 1:
		return keep[0]
	}
	return keep
}

type multi []engine.Sink

func (m multi) Notify(r tile.Result) {
	for _, s := range m {
		s.Notify(r)
	}
}
