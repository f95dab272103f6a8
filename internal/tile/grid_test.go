package tile

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodeOverlay(t *testing.T, result *GridOverlayResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestGridOverlay(t *testing.T) {
	img := createInMemoryImage(100, 80, color.White)

	result, err := GridOverlay(img, 40, false, "#0000FF")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	if result.Width != 100 || result.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", result.Width, result.Height)
	}
	if result.TileCount != 6 {
		t.Errorf("TileCount: got %d, want 6", result.TileCount)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	out := decodeOverlay(t, result)

	r, g, b, _ := out.At(40, 10).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("seam pixel (40,10): got (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = out.At(10, 10).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("interior pixel (10,10): got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestGridOverlay_WithLabels(t *testing.T) {
	img := createInMemoryImage(60, 60, color.White)

	result, err := GridOverlay(img, 30, true, "")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	if result.ImageBase64 == "" {
		t.Error("ImageBase64 is empty")
	}
}

func TestGridOverlay_InvalidTileSize(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)
	if _, err := GridOverlay(img, 0, false, "#FF0000"); err == nil {
		t.Error("GridOverlay should fail for zero tile size")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
