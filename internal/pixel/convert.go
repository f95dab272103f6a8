package pixel

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Image returns an image.Image view of the buffer's samples.
//
// One-channel buffers become *image.Gray and four-channel buffers become
// *image.NRGBA, both sharing Pix with b. Three-channel buffers are expanded
// into a new opaque *image.NRGBA. Either way the image bounds start at (0,0).
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Channels {
	case 1:
		return &image.Gray{Pix: b.Pix, Stride: b.Width, Rect: rect}
	case 4:
		return &image.NRGBA{Pix: b.Pix, Stride: b.Width * 4, Rect: rect}
	default:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(b.Pix); i, j = i+3, j+4 {
			img.Pix[j] = b.Pix[i]
			img.Pix[j+1] = b.Pix[i+1]
			img.Pix[j+2] = b.Pix[i+2]
			img.Pix[j+3] = 0xff
		}
		return img
	}
}

// FromImage copies img into a new buffer with the requested channel count.
//
// *image.NRGBA and *image.Gray sources are copied sample-for-sample; any other
// image type is first drawn onto an NRGBA canvas. Converting to one channel
// uses the standard luminance model, converting to three channels drops alpha.
func FromImage(img image.Image, channels int) (*Buffer, error) {
	bounds := img.Bounds()
	out, err := New(bounds.Dx(), bounds.Dy(), channels)
	if err != nil {
		return nil, err
	}

	if g, ok := img.(*image.Gray); ok && channels == 1 {
		copyRows(out, g.Pix, g.Stride, g.PixOffset(bounds.Min.X, bounds.Min.Y))
		return out, nil
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
	}
	base := nrgba.PixOffset(nrgba.Rect.Min.X, nrgba.Rect.Min.Y)

	switch channels {
	case 4:
		copyRows(out, nrgba.Pix, nrgba.Stride, base)
	case 3:
		for y := 0; y < out.Height; y++ {
			row := base + y*nrgba.Stride
			for x := 0; x < out.Width; x++ {
				s := row + x*4
				d := out.Offset(x, y)
				out.Pix[d] = nrgba.Pix[s]
				out.Pix[d+1] = nrgba.Pix[s+1]
				out.Pix[d+2] = nrgba.Pix[s+2]
			}
		}
	case 1:
		for y := 0; y < out.Height; y++ {
			row := base + y*nrgba.Stride
			for x := 0; x < out.Width; x++ {
				s := row + x*4
				c := color.NRGBA{R: nrgba.Pix[s], G: nrgba.Pix[s+1], B: nrgba.Pix[s+2], A: nrgba.Pix[s+3]}
				out.Pix[out.Offset(x, y)] = color.GrayModel.Convert(c).(color.Gray).Y
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidBuffer, channels)
	}
	return out, nil
}

// copyRows copies out.Height rows of out.Stride() samples from src.
func copyRows(out *Buffer, src []uint8, stride, base int) {
	rowLen := out.Stride()
	for y := 0; y < out.Height; y++ {
		s := base + y*stride
		copy(out.Pix[y*rowLen:(y+1)*rowLen], src[s:s+rowLen])
	}
}

// ChannelsFor returns the natural channel count for an image's color model:
// 1 for grayscale images, 4 for everything else.
func ChannelsFor(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	return 4
}
