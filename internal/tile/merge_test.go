package tile

import (
	"math/rand"
	"testing"

	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

func sourceBuffer(t *testing.T, w, h, channels int) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.New(w, h, channels)
	if err != nil {
		t.Fatalf("pixel.New failed: %v", err)
	}
	for i := range buf.Pix {
		buf.Pix[i] = uint8(i * 31 % 251)
	}
	return buf
}

// splitAll extracts every tile of src without transforming it.
func splitAll(t *testing.T, src *pixel.Buffer, size int) []Result {
	t.Helper()
	tiles, err := Decompose(src.Width, src.Height, size)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	results := make([]Result, len(tiles))
	for i, d := range tiles {
		buf, err := Extract(src, d)
		if err != nil {
			t.Fatalf("Extract(%s) failed: %v", d, err)
		}
		results[i] = Result{Descriptor: d, Buffer: buf}
	}
	return results
}

func TestMerge_ReassemblesSource(t *testing.T) {
	for _, size := range []int{1, 7, 16, 50, 200} {
		src := sourceBuffer(t, 61, 43, 3)
		results := splitAll(t, src, size)

		out, err := Merge(src.Width, src.Height, src.Channels, results)
		if err != nil {
			t.Fatalf("Merge(size %d) failed: %v", size, err)
		}
		if !out.Equal(src) {
			t.Errorf("Merge(size %d) output differs from source", size)
		}
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	src := sourceBuffer(t, 40, 30, 4)
	results := splitAll(t, src, 8)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		rng.Shuffle(len(results), func(i, j int) { results[i], results[j] = results[j], results[i] })
		out, err := Merge(src.Width, src.Height, src.Channels, results)
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if !out.Equal(src) {
			t.Fatalf("trial %d: shuffled merge differs from source", trial)
		}
	}
}

func TestMerge_Errors(t *testing.T) {
	src := sourceBuffer(t, 20, 20, 1)

	t.Run("missing tile", func(t *testing.T) {
		results := splitAll(t, src, 10)
		if _, err := Merge(20, 20, 1, results[:3]); err == nil {
			t.Error("Merge should fail when a tile is missing")
		}
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		results := splitAll(t, src, 10)
		small, _ := pixel.New(5, 5, 1)
		results[2].Buffer = small
		if _, err := Merge(20, 20, 1, results); err == nil {
			t.Error("Merge should fail for mismatched tile output")
		}
	})

	t.Run("nil buffer", func(t *testing.T) {
		results := splitAll(t, src, 10)
		results[0].Buffer = nil
		if _, err := Merge(20, 20, 1, results); err == nil {
			t.Error("Merge should fail for missing output")
		}
	})

	t.Run("channel mismatch", func(t *testing.T) {
		results := splitAll(t, src, 10)
		if _, err := Merge(20, 20, 3, results); err == nil {
			t.Error("Merge should fail for channel mismatch")
		}
	})
}
