package tile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"
)

// GridOverlayResult contains an image with tile boundaries drawn over it.
type GridOverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	TileSize    int    `json:"tile_size"`
	TileCount   int    `json:"tile_count"`
}

// GridOverlay draws the tile grid for tileSize on top of img, optionally
// labelling each tile with its origin, and returns the result as base64 PNG.
// Useful for seeing where seams will fall before running a context-dependent
// filter.
func GridOverlay(img image.Image, tileSize int, showLabels bool, colorHex string) (*GridOverlayResult, error) {
	bounds := img.Bounds()
	tiles, err := Decompose(bounds.Dx(), bounds.Dy(), tileSize)
	if err != nil {
		return nil, err
	}

	lineColor, err := parseHexColor(colorHex)
	if err != nil {
		lineColor = color.NRGBA{255, 0, 0, 255}
	}

	result := imaging.Clone(img)
	width, height := result.Bounds().Dx(), result.Bounds().Dy()

	for _, d := range tiles {
		// Left and top edges only: neighbouring tiles draw the shared seams.
		if d.X > 0 {
			for y := d.Y; y < d.Y+d.Height; y++ {
				result.SetNRGBA(d.X, y, lineColor)
			}
		}
		if d.Y > 0 {
			for x := d.X; x < d.X+d.Width; x++ {
				result.SetNRGBA(x, d.Y, lineColor)
			}
		}
	}

	if showLabels {
		fg := color.NRGBA{255, 255, 255, 255}
		bg := color.NRGBA{0, 0, 0, 180}
		for _, d := range tiles {
			drawLabel(result, d.X+2, d.Y+2, fmt.Sprintf("%d,%d", d.X, d.Y), fg, bg)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &GridOverlayResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		TileSize:    tileSize,
		TileCount:   len(tiles),
	}, nil
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a tiny 3x5 pixel-font label at the given position.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	bounds := img.Bounds()
	inside := func(px, py int) bool {
		return px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y
	}
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if px, py := x+dx, y+dy; inside(px, py) {
				img.SetNRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, bit := range line {
				if px, py := cx+col, y+row; bit == '1' && inside(px, py) {
					img.SetNRGBA(px, py, fg)
				}
			}
		}
		cx += charWidth
	}
}
