package filter

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Brightness adds adjustment to every color channel, clamping to [0,255].
// Alpha is preserved.
func Brightness(adjustment int) Filter {
	return FromImageFunc(fmt.Sprintf("brightness%+d", adjustment), true, func(img image.Image) image.Image {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: clamp8(int(c.R) + adjustment),
				G: clamp8(int(c.G) + adjustment),
				B: clamp8(int(c.B) + adjustment),
				A: c.A,
			}
		})
	})
}

// Contrast scales every color channel around mid-gray:
// v' = (v-128)*factor + 128, truncated and clamped to [0,255].
// A factor above 1 increases contrast, below 1 reduces it.
func Contrast(factor float64) Filter {
	adjust := func(v uint8) uint8 {
		return clamp8(int((float64(v)-128)*factor + 128))
	}
	return FromImageFunc(fmt.Sprintf("contrast(%g)", factor), true, func(img image.Image) image.Image {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: adjust(c.R), G: adjust(c.G), B: adjust(c.B), A: c.A}
		})
	})
}

// Grayscale converts to luminance, keeping three equal channels and alpha.
func Grayscale() Filter {
	return FromImageFunc("grayscale", true, func(img image.Image) image.Image {
		return imaging.Grayscale(img)
	})
}

// Invert produces the color negative.
func Invert() Filter {
	return FromImageFunc("invert", true, func(img image.Image) image.Image {
		return imaging.Invert(img)
	})
}

// Sepia applies a warm brown tone.
func Sepia() Filter {
	return FromImageFunc("sepia", true, func(img image.Image) image.Image {
		return effect.Sepia(img)
	})
}

// Saturation scales HSL saturation by (1 + percent/100). Negative values
// desaturate; -100 yields gray.
func Saturation(percent float64) Filter {
	scale := 1 + percent/100
	return hslFilter(fmt.Sprintf("saturation(%+g)", percent), func(h, s, l float64) (float64, float64, float64) {
		return h, math.Min(1, math.Max(0, s*scale)), l
	})
}

// HueRotate rotates HSL hue by degrees.
func HueRotate(degrees float64) Filter {
	return hslFilter(fmt.Sprintf("hue-rotate(%g)", degrees), func(h, s, l float64) (float64, float64, float64) {
		h = math.Mod(h+degrees, 360)
		if h < 0 {
			h += 360
		}
		return h, s, l
	})
}

// hslFilter maps every pixel through fn in HSL space.
func hslFilter(name string, fn func(h, s, l float64) (float64, float64, float64)) Filter {
	return FromImageFunc(name, true, func(img image.Image) image.Image {
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
			r, g, b := colorful.Hsl(fn(cf.Hsl())).Clamped().RGB255()
			return color.NRGBA{R: r, G: g, B: b, A: c.A}
		})
	})
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
