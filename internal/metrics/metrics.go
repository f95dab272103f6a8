// Package metrics tracks counters and timings for one tile-processing run.
//
// A RunMetrics is reset when a run starts, has its processed-tile counter
// incremented concurrently by tile tasks while the run is in flight, and is
// frozen once the merged result is produced. The processed-tile count never
// exceeds the total tile count and equals it only after a successful run.
package metrics

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const bytesPerMB = 1024 * 1024

// RunMetrics holds the statistics of one processing call.
//
// All methods are safe for concurrent use. During a run only the
// processed-tile counter changes, and it is updated atomically.
type RunMetrics struct {
	processed atomic.Int64
	total     atomic.Int64

	mu         sync.RWMutex
	filterName string
	tileSize   int
	workers    int
	started    time.Time
	elapsed    time.Duration
	finished   bool
	memBefore  uint64
	memAfter   uint64
}

// New returns an empty RunMetrics.
func New() *RunMetrics {
	return &RunMetrics{}
}

// Reset clears every field.
func (m *RunMetrics) Reset() {
	m.mu.Lock()
	m.filterName = ""
	m.tileSize = 0
	m.workers = 0
	m.started = time.Time{}
	m.elapsed = 0
	m.finished = false
	m.memBefore = 0
	m.memAfter = 0
	m.mu.Unlock()
	m.processed.Store(0)
	m.total.Store(0)
}

// Start resets m and records the beginning of a run over totalTiles tiles.
func (m *RunMetrics) Start(filterName string, tileSize, totalTiles int) {
	m.Reset()
	m.total.Store(int64(totalTiles))

	m.mu.Lock()
	m.filterName = filterName
	m.tileSize = tileSize
	m.workers = runtime.GOMAXPROCS(0)
	m.started = time.Now()
	m.mu.Unlock()
}

// IncrementProcessed records one completed tile. The counter saturates at the
// total tile count and the method reports whether it advanced.
func (m *RunMetrics) IncrementProcessed() bool {
	for {
		cur := m.processed.Load()
		if cur >= m.total.Load() {
			return false
		}
		if m.processed.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Finish freezes the elapsed time. Later calls have no effect.
func (m *RunMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished {
		return
	}
	if !m.started.IsZero() {
		m.elapsed = time.Since(m.started)
	}
	m.finished = true
}

// CaptureMemoryBefore samples heap usage at the start of a run.
func (m *RunMetrics) CaptureMemoryBefore() {
	v := heapInUse()
	m.mu.Lock()
	m.memBefore = v
	m.mu.Unlock()
}

// CaptureMemoryAfter samples heap usage at the end of a run.
func (m *RunMetrics) CaptureMemoryAfter() {
	v := heapInUse()
	m.mu.Lock()
	m.memAfter = v
	m.mu.Unlock()
}

func heapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// FilterName returns the name of the filter used for the run.
func (m *RunMetrics) FilterName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterName
}

// TileSize returns the configured tile edge length.
func (m *RunMetrics) TileSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tileSize
}

// Workers returns GOMAXPROCS as observed when the run started.
func (m *RunMetrics) Workers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workers
}

// TotalTiles returns the number of tiles in the run.
func (m *RunMetrics) TotalTiles() int {
	return int(m.total.Load())
}

// ProcessedTiles returns the number of tiles completed so far.
func (m *RunMetrics) ProcessedTiles() int {
	return int(m.processed.Load())
}

// Complete reports whether every tile was processed.
func (m *RunMetrics) Complete() bool {
	total := m.total.Load()
	return total > 0 && m.processed.Load() == total
}

// Finished reports whether the run has ended, successfully or not.
func (m *RunMetrics) Finished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finished
}

// Elapsed returns the wall-clock duration of the run. While the run is in
// progress it returns the time since start.
func (m *RunMetrics) Elapsed() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.finished && !m.started.IsZero() {
		return time.Since(m.started)
	}
	return m.elapsed
}

// ElapsedMillis returns Elapsed in whole milliseconds.
func (m *RunMetrics) ElapsedMillis() int64 {
	return m.Elapsed().Milliseconds()
}

// MemoryUsedMB returns the heap in use at the end of the run in megabytes.
func (m *RunMetrics) MemoryUsedMB() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(m.memAfter / bytesPerMB)
}

// MemoryDeltaMB returns the change in heap usage across the run in megabytes.
func (m *RunMetrics) MemoryDeltaMB() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return (int64(m.memAfter) - int64(m.memBefore)) / bytesPerMB
}

// Snapshot is a plain copy of RunMetrics suitable for JSON encoding.
type Snapshot struct {
	FilterName     string `json:"filter_name"`
	TileSize       int    `json:"tile_size"`
	TotalTiles     int    `json:"total_tiles"`
	ProcessedTiles int    `json:"processed_tiles"`
	Complete       bool   `json:"complete"`
	ElapsedMillis  int64  `json:"elapsed_ms"`
	Workers        int    `json:"workers"`
	MemoryUsedMB   int64  `json:"memory_used_mb"`
	MemoryDeltaMB  int64  `json:"memory_delta_mb"`
}

// Snapshot returns the current values.
func (m *RunMetrics) Snapshot() Snapshot {
	return Snapshot{
		FilterName:     m.FilterName(),
		TileSize:       m.TileSize(),
		TotalTiles:     m.TotalTiles(),
		ProcessedTiles: m.ProcessedTiles(),
		Complete:       m.Complete(),
		ElapsedMillis:  m.ElapsedMillis(),
		Workers:        m.Workers(),
		MemoryUsedMB:   m.MemoryUsedMB(),
		MemoryDeltaMB:  m.MemoryDeltaMB(),
	}
}

// Summary returns the short form "<ms> ms | <n> tiles | <mb> MB".
func (m *RunMetrics) Summary() string {
	return fmt.Sprintf("%d ms | %d tiles | %d MB", m.ElapsedMillis(), m.ProcessedTiles(), m.MemoryUsedMB())
}

func (m *RunMetrics) String() string {
	name := m.FilterName()
	if name == "" {
		name = "N/A"
	}
	return fmt.Sprintf("Performance Metrics:\n"+
		"  Filter: %s\n"+
		"  Processing Time: %d ms\n"+
		"  Tiles Processed: %d/%d\n"+
		"  Workers: %d\n"+
		"  Memory Usage: %d MB",
		name, m.ElapsedMillis(), m.ProcessedTiles(), m.TotalTiles(), m.Workers(), m.MemoryUsedMB())
}
