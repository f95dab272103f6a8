package tile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreviewResult is one tile's output encoded for display.
type PreviewResult struct {
	Tile        Descriptor `json:"tile"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	ImageBase64 string     `json:"image_base64"`
	MimeType    string     `json:"mime_type"`
}

// Preview encodes r's buffer as base64 PNG. A scale other than 1 magnifies
// the tile with nearest-neighbour sampling so individual pixels stay visible.
func Preview(r Result, scale float64) (*PreviewResult, error) {
	if r.Buffer == nil {
		return nil, fmt.Errorf("%s: missing output buffer", r.Descriptor)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid scale %g: must be positive", scale)
	}

	img := r.Buffer.Image()
	if scale != 1.0 {
		w := max(int(float64(r.Buffer.Width)*scale), 1)
		h := max(int(float64(r.Buffer.Height)*scale), 1)
		img = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode tile preview: %w", err)
	}

	return &PreviewResult{
		Tile:        r.Descriptor,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
