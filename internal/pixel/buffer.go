package pixel

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrInvalidBuffer is returned when buffer dimensions, channel count or sample
// length are inconsistent.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// Buffer is an owned 2-D array of 8-bit pixel samples.
//
// Invariants: Width and Height are at least 1, Channels is 1, 3 or 4, and
// len(Pix) == Width*Height*Channels.
type Buffer struct {
	// Width is the buffer width in pixels.
	Width int

	// Height is the buffer height in pixels.
	Height int

	// Channels is the number of samples per pixel.
	Channels int

	// Pix holds the samples in row-major order. The samples of pixel (x, y)
	// start at Pix[(y*Width+x)*Channels].
	Pix []uint8
}

// New allocates a zeroed buffer.
func New(width, height, channels int) (*Buffer, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// Wrap builds a buffer around existing samples without copying them.
func Wrap(width, height, channels int, pix []uint8) (*Buffer, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: have %d samples, want %d", ErrInvalidBuffer, len(pix), width*height*channels)
	}
	return &Buffer{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

func checkShape(width, height, channels int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidBuffer, width, height)
	}
	switch channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidBuffer, channels)
	}
	return nil
}

// Validate reports whether b satisfies the buffer invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if err := checkShape(b.Width, b.Height, b.Channels); err != nil {
		return err
	}
	if len(b.Pix) != b.Width*b.Height*b.Channels {
		return fmt.Errorf("%w: have %d samples, want %d", ErrInvalidBuffer, len(b.Pix), b.Width*b.Height*b.Channels)
	}
	return nil
}

// Stride returns the number of samples in one row.
func (b *Buffer) Stride() int {
	return b.Width * b.Channels
}

// Offset returns the index in Pix of the first sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// At returns the samples of pixel (x, y). The returned slice aliases Pix.
func (b *Buffer) At(x, y int) []uint8 {
	i := b.Offset(x, y)
	return b.Pix[i : i+b.Channels : i+b.Channels]
}

// SameShape reports whether b and o have identical width, height and channels.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height && b.Channels == o.Channels
}

// Equal reports whether b and o have the same shape and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.SameShape(o) && bytes.Equal(b.Pix, o.Pix)
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Channels: b.Channels, Pix: pix}
}

// Region copies the rectangle (x, y, width, height) out of b into a new buffer.
// The source is only read.
func (b *Buffer) Region(x, y, width, height int) (*Buffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: region %dx%d must be positive", ErrInvalidBuffer, width, height)
	}
	if x < 0 || y < 0 || x+width > b.Width || y+height > b.Height {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside buffer bounds %dx%d",
			x, y, x+width, y+height, b.Width, b.Height)
	}

	out := &Buffer{
		Width:    width,
		Height:   height,
		Channels: b.Channels,
		Pix:      make([]uint8, width*height*b.Channels),
	}
	rowLen := width * b.Channels
	for row := 0; row < height; row++ {
		src := b.Offset(x, y+row)
		copy(out.Pix[row*rowLen:(row+1)*rowLen], b.Pix[src:src+rowLen])
	}
	return out, nil
}

// Paste copies all of src into b with its top-left corner at (x, y).
// Only the destination rectangle is written.
func (b *Buffer) Paste(src *Buffer, x, y int) error {
	if src.Channels != b.Channels {
		return fmt.Errorf("%w: channel mismatch %d != %d", ErrInvalidBuffer, src.Channels, b.Channels)
	}
	if x < 0 || y < 0 || x+src.Width > b.Width || y+src.Height > b.Height {
		return fmt.Errorf("paste region (%d,%d)-(%d,%d) outside buffer bounds %dx%d",
			x, y, x+src.Width, y+src.Height, b.Width, b.Height)
	}

	rowLen := src.Stride()
	for row := 0; row < src.Height; row++ {
		dst := b.Offset(x, y+row)
		copy(b.Pix[dst:dst+rowLen], src.Pix[row*rowLen:(row+1)*rowLen])
	}
	return nil
}
