package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNew_Empty(t *testing.T) {
	m := New()
	if m.TotalTiles() != 0 || m.ProcessedTiles() != 0 {
		t.Errorf("new metrics not empty: %d/%d", m.ProcessedTiles(), m.TotalTiles())
	}
	if m.Complete() {
		t.Error("empty metrics should not be complete")
	}
	if !strings.Contains(m.String(), "N/A") {
		t.Errorf("String should show N/A filter: %s", m.String())
	}
}

func TestStart_Resets(t *testing.T) {
	m := New()
	m.Start("blur", 50, 4)
	m.IncrementProcessed()
	m.IncrementProcessed()
	m.Finish()

	m.Start("sepia", 25, 9)
	if m.FilterName() != "sepia" {
		t.Errorf("FilterName: got %q, want sepia", m.FilterName())
	}
	if m.TileSize() != 25 {
		t.Errorf("TileSize: got %d, want 25", m.TileSize())
	}
	if m.ProcessedTiles() != 0 {
		t.Errorf("ProcessedTiles not reset: %d", m.ProcessedTiles())
	}
	if m.TotalTiles() != 9 {
		t.Errorf("TotalTiles: got %d, want 9", m.TotalTiles())
	}
	if m.Finished() {
		t.Error("Start should clear the finished flag")
	}
	if m.Workers() < 1 {
		t.Errorf("Workers: got %d", m.Workers())
	}
}

func TestIncrementProcessed_Concurrent(t *testing.T) {
	const tiles = 1000
	m := New()
	m.Start("identity", 1, tiles)

	var wg sync.WaitGroup
	for i := 0; i < tiles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementProcessed()
		}()
	}
	wg.Wait()

	if m.ProcessedTiles() != tiles {
		t.Errorf("ProcessedTiles: got %d, want %d", m.ProcessedTiles(), tiles)
	}
	if !m.Complete() {
		t.Error("metrics should be complete")
	}
}

func TestIncrementProcessed_NeverExceedsTotal(t *testing.T) {
	m := New()
	m.Start("identity", 1, 3)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementProcessed()
		}()
	}
	wg.Wait()

	if m.ProcessedTiles() != 3 {
		t.Errorf("ProcessedTiles: got %d, want 3", m.ProcessedTiles())
	}
	if m.IncrementProcessed() {
		t.Error("IncrementProcessed should refuse to pass the total")
	}
}

func TestFinish_FreezesElapsed(t *testing.T) {
	m := New()
	m.Start("blur", 10, 1)
	time.Sleep(5 * time.Millisecond)
	m.Finish()

	first := m.Elapsed()
	if first < 5*time.Millisecond {
		t.Errorf("Elapsed too small: %v", first)
	}
	time.Sleep(5 * time.Millisecond)
	m.Finish()
	if m.Elapsed() != first {
		t.Errorf("Elapsed changed after Finish: %v -> %v", first, m.Elapsed())
	}
}

func TestMemorySamples(t *testing.T) {
	m := New()
	m.Start("blur", 10, 1)
	m.CaptureMemoryBefore()
	m.CaptureMemoryAfter()

	snap := m.Snapshot()
	if snap.MemoryUsedMB < 0 {
		t.Errorf("MemoryUsedMB negative: %d", snap.MemoryUsedMB)
	}
}

func TestSummaryAndString(t *testing.T) {
	m := New()
	m.Start("sharpen", 50, 2)
	m.IncrementProcessed()
	m.IncrementProcessed()
	m.Finish()

	summary := m.Summary()
	if !strings.Contains(summary, "ms | 2 tiles |") || !strings.HasSuffix(summary, " MB") {
		t.Errorf("unexpected Summary: %q", summary)
	}

	s := m.String()
	for _, want := range []string{"Filter: sharpen", "Tiles Processed: 2/2", "Memory Usage:"} {
		if !strings.Contains(s, want) {
			t.Errorf("String missing %q:\n%s", want, s)
		}
	}
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.Start("invert", 8, 4)
	m.IncrementProcessed()

	snap := m.Snapshot()
	if snap.FilterName != "invert" || snap.TotalTiles != 4 || snap.ProcessedTiles != 1 || snap.Complete {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}
