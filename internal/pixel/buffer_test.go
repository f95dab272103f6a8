package pixel

import (
	"errors"
	"testing"
)

// patternBuffer returns a buffer whose samples encode their own position so
// misplaced copies are easy to spot.
func patternBuffer(t *testing.T, width, height, channels int) *Buffer {
	t.Helper()
	buf, err := New(width, height, channels)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := buf.At(x, y)
			for c := range px {
				px[c] = uint8((x*7 + y*13 + c*31) % 256)
			}
		}
	}
	return buf
}

func TestNew(t *testing.T) {
	buf, err := New(10, 5, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if len(buf.Pix) != 150 {
		t.Errorf("len(Pix): got %d, want 150", len(buf.Pix))
	}
	if buf.Stride() != 30 {
		t.Errorf("Stride: got %d, want 30", buf.Stride())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name                    string
		width, height, channels int
	}{
		{"zero width", 0, 10, 4},
		{"zero height", 10, 0, 4},
		{"negative width", -1, 10, 4},
		{"two channels", 10, 10, 2},
		{"five channels", 10, 10, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height, tt.channels)
			if !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("got %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestWrap_LengthMismatch(t *testing.T) {
	if _, err := Wrap(2, 2, 1, make([]uint8, 3)); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("got %v, want ErrInvalidBuffer", err)
	}
	if _, err := Wrap(2, 2, 1, make([]uint8, 4)); err != nil {
		t.Errorf("Wrap with exact length failed: %v", err)
	}
}

func TestValidate(t *testing.T) {
	var nilBuf *Buffer
	if err := nilBuf.Validate(); err == nil {
		t.Error("Validate should fail for nil buffer")
	}

	buf := patternBuffer(t, 4, 4, 4)
	if err := buf.Validate(); err != nil {
		t.Errorf("Validate failed for good buffer: %v", err)
	}

	buf.Pix = buf.Pix[:10]
	if err := buf.Validate(); err == nil {
		t.Error("Validate should fail for truncated samples")
	}
}

func TestClone_Independent(t *testing.T) {
	buf := patternBuffer(t, 8, 8, 3)
	clone := buf.Clone()
	if !clone.Equal(buf) {
		t.Fatal("clone differs from source")
	}
	clone.Pix[0]++
	if clone.Equal(buf) {
		t.Error("modifying clone changed source")
	}
}

func TestRegion(t *testing.T) {
	buf := patternBuffer(t, 20, 10, 4)

	region, err := buf.Region(5, 3, 6, 4)
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if region.Width != 6 || region.Height != 4 || region.Channels != 4 {
		t.Fatalf("shape: got %dx%dx%d, want 6x4x4", region.Width, region.Height, region.Channels)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			got := region.At(x, y)
			want := buf.At(x+5, y+3)
			for c := range want {
				if got[c] != want[c] {
					t.Fatalf("sample (%d,%d,%d): got %d, want %d", x, y, c, got[c], want[c])
				}
			}
		}
	}
}

func TestRegion_OutOfBounds(t *testing.T) {
	buf := patternBuffer(t, 10, 10, 1)

	tests := []struct {
		name       string
		x, y, w, h int
	}{
		{"negative x", -1, 0, 5, 5},
		{"negative y", 0, -1, 5, 5},
		{"too wide", 6, 0, 5, 5},
		{"too tall", 0, 6, 5, 5},
		{"zero width", 0, 0, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buf.Region(tt.x, tt.y, tt.w, tt.h); err == nil {
				t.Error("Region should fail")
			}
		})
	}
}

func TestPaste_RoundTrip(t *testing.T) {
	src := patternBuffer(t, 9, 7, 3)
	dst, _ := New(9, 7, 3)

	for _, r := range [][4]int{{0, 0, 5, 4}, {5, 0, 4, 4}, {0, 4, 5, 3}, {5, 4, 4, 3}} {
		part, err := src.Region(r[0], r[1], r[2], r[3])
		if err != nil {
			t.Fatalf("Region failed: %v", err)
		}
		if err := dst.Paste(part, r[0], r[1]); err != nil {
			t.Fatalf("Paste failed: %v", err)
		}
	}

	if !dst.Equal(src) {
		t.Error("reassembled buffer differs from source")
	}
}

func TestPaste_Errors(t *testing.T) {
	dst, _ := New(4, 4, 4)
	gray, _ := New(2, 2, 1)
	if err := dst.Paste(gray, 0, 0); err == nil {
		t.Error("Paste should fail on channel mismatch")
	}

	part, _ := New(2, 2, 4)
	if err := dst.Paste(part, 3, 3); err == nil {
		t.Error("Paste should fail outside bounds")
	}
}
