package tile

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

func TestPreview(t *testing.T) {
	buf, err := pixel.New(10, 6, 3)
	if err != nil {
		t.Fatalf("pixel.New failed: %v", err)
	}
	for i := range buf.Pix {
		buf.Pix[i] = uint8(i)
	}
	r := Result{Descriptor: Descriptor{Index: 4, X: 20, Y: 10, Width: 10, Height: 6}, Buffer: buf}

	tests := []struct {
		scale        float64
		wantW, wantH int
	}{
		{1, 10, 6},
		{3, 30, 18},
		{0.5, 5, 3},
	}
	for _, tt := range tests {
		p, err := Preview(r, tt.scale)
		if err != nil {
			t.Fatalf("Preview(%g) failed: %v", tt.scale, err)
		}
		if p.Width != tt.wantW || p.Height != tt.wantH {
			t.Errorf("Preview(%g): got %dx%d, want %dx%d", tt.scale, p.Width, p.Height, tt.wantW, tt.wantH)
		}
		if p.Tile != r.Descriptor {
			t.Errorf("Tile: got %v", p.Tile)
		}

		raw, err := base64.StdEncoding.DecodeString(p.ImageBase64)
		if err != nil {
			t.Fatalf("invalid base64: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("invalid PNG: %v", err)
		}
		if img.Bounds().Dx() != tt.wantW {
			t.Errorf("decoded width: got %d, want %d", img.Bounds().Dx(), tt.wantW)
		}
	}
}

func TestPreview_Invalid(t *testing.T) {
	if _, err := Preview(Result{Descriptor: Descriptor{Width: 1, Height: 1}}, 1); err == nil {
		t.Error("expected error for missing buffer")
	}
	buf, _ := pixel.New(1, 1, 1)
	if _, err := Preview(Result{Descriptor: Descriptor{Width: 1, Height: 1}, Buffer: buf}, 0); err == nil {
		t.Error("expected error for zero scale")
	}
}
