// Package tile partitions an image into a grid of non-overlapping rectangular
// tiles and merges per-tile outputs back into a full-resolution buffer.
//
// Tiles are laid out row-major starting at the top-left corner. Every tile is
// tileSize x tileSize except those in the last column or row, which shrink to
// whatever remains of the image. The set of descriptors for an image covers
// [0,width) x [0,height) exactly, with no overlap and no gap, so writes into
// the merged buffer never need synchronization between tiles.
package tile

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

// ErrInvalidConfiguration is returned for non-positive tile sizes or image
// dimensions.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Descriptor is one cell of the tiling grid.
type Descriptor struct {
	// Index is the position of the tile in decomposition order.
	Index int `json:"index"`

	// X and Y are the top-left corner of the tile in image space.
	X int `json:"x"`
	Y int `json:"y"`

	// Width and Height are the tile size in pixels, never zero.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the tile bounds in image space.
func (d Descriptor) Rect() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
}

// Area returns the number of pixels in the tile.
func (d Descriptor) Area() int {
	return d.Width * d.Height
}

func (d Descriptor) String() string {
	return fmt.Sprintf("tile %d (%d,%d %dx%d)", d.Index, d.X, d.Y, d.Width, d.Height)
}

// Result is the output of filtering one tile. Buffer has the same width and
// height as the descriptor it was computed from.
type Result struct {
	Descriptor
	Buffer *pixel.Buffer
}

// GridSize returns the number of tile columns and rows needed to cover a
// width x height image.
func GridSize(width, height, tileSize int) (cols, rows int, err error) {
	if tileSize <= 0 {
		return 0, 0, fmt.Errorf("%w: tile size %d must be positive", ErrInvalidConfiguration, tileSize)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: image dimensions %dx%d must be positive", ErrInvalidConfiguration, width, height)
	}
	return (width + tileSize - 1) / tileSize, (height + tileSize - 1) / tileSize, nil
}

// Decompose computes the tile grid covering a width x height image.
//
// Origins step by tileSize from 0 while still inside the image; each tile is
// min(tileSize, width-x) wide and min(tileSize, height-y) tall. When tileSize
// is at least max(width, height) the result is a single tile equal to the
// whole image.
func Decompose(width, height, tileSize int) ([]Descriptor, error) {
	cols, rows, err := GridSize(width, height, tileSize)
	if err != nil {
		return nil, err
	}

	tiles := make([]Descriptor, 0, cols*rows)
	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			tiles = append(tiles, Descriptor{
				Index:  len(tiles),
				X:      x,
				Y:      y,
				Width:  min(tileSize, width-x),
				Height: min(tileSize, height-y),
			})
		}
	}
	return tiles, nil
}

// Extract copies the region described by d out of src.
func Extract(src *pixel.Buffer, d Descriptor) (*pixel.Buffer, error) {
	return src.Region(d.X, d.Y, d.Width, d.Height)
}
