// Package filter defines the pixel-transform contract the tile engine runs
// against and ships the reference filter set.
//
// A filter is a pure function from one pixel buffer to another of identical
// width and height. It must not modify its input and sees only the pixels it
// is given: when the engine hands it a tile, convolution-style filters (blur,
// sharpen, edge detection) treat the tile border as the image border and clamp
// or skip neighbours outside it. Running such a filter over tiles therefore
// produces visible seams compared with a whole-image pass, while pointwise
// filters (brightness, contrast, grayscale, sepia, ...) produce identical
// output regardless of tiling.
package filter

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

// ErrDimensionMismatch is returned when a filter produces a buffer whose shape
// differs from its input.
var ErrDimensionMismatch = errors.New("filter output dimensions differ from input")

// Filter is a pure pixel transform.
type Filter interface {
	// Name identifies the filter in metrics, logs and file names.
	Name() string

	// Apply returns a new buffer with the same width, height and channel
	// count as src. It must not modify src.
	Apply(src *pixel.Buffer) (*pixel.Buffer, error)
}

// Pointwise is implemented by filters whose output pixel depends only on the
// corresponding input pixel.
type Pointwise interface {
	Pointwise() bool
}

// IsPointwise reports whether f declares itself pointwise.
func IsPointwise(f Filter) bool {
	p, ok := f.(Pointwise)
	return ok && p.Pointwise()
}

// CheckOutput verifies that dst has the same shape as src.
func CheckOutput(src, dst *pixel.Buffer) error {
	if dst == nil {
		return fmt.Errorf("%w: nil output", ErrDimensionMismatch)
	}
	if !src.SameShape(dst) {
		return fmt.Errorf("%w: input %dx%dx%d, output %dx%dx%d", ErrDimensionMismatch,
			src.Width, src.Height, src.Channels, dst.Width, dst.Height, dst.Channels)
	}
	return nil
}

// imageFilter adapts a function over image.Image to the Filter contract.
type imageFilter struct {
	name      string
	pointwise bool
	fn        func(image.Image) image.Image
}

// FromImageFunc wraps fn as a Filter. The buffer is presented to fn as an
// image.Image with bounds starting at (0,0) and the result is converted back
// to the input's channel count.
func FromImageFunc(name string, pointwise bool, fn func(image.Image) image.Image) Filter {
	return &imageFilter{name: name, pointwise: pointwise, fn: fn}
}

func (f *imageFilter) Name() string    { return f.name }
func (f *imageFilter) Pointwise() bool { return f.pointwise }

func (f *imageFilter) Apply(src *pixel.Buffer) (*pixel.Buffer, error) {
	out, err := pixel.FromImage(f.fn(src.Image()), src.Channels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	if err := CheckOutput(src, out); err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return out, nil
}

// Func adapts an ordinary function to the Filter contract.
type Func struct {
	FilterName string
	Fn         func(src *pixel.Buffer) (*pixel.Buffer, error)
}

func (f Func) Name() string { return f.FilterName }

func (f Func) Apply(src *pixel.Buffer) (*pixel.Buffer, error) {
	return f.Fn(src)
}

// Identity returns a copy of its input.
func Identity() Filter {
	return identity{}
}

type identity struct{}

func (identity) Name() string    { return "identity" }
func (identity) Pointwise() bool { return true }

func (identity) Apply(src *pixel.Buffer) (*pixel.Buffer, error) {
	return src.Clone(), nil
}
