package filter

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// BlurRadius is the neighbourhood radius of the Blur filter.
const BlurRadius = 2

// Blur averages each pixel with its neighbours within BlurRadius (box blur).
// Neighbours outside the buffer are clamped to the nearest edge pixel.
func Blur() Filter {
	return FromImageFunc("blur", false, func(img image.Image) image.Image {
		return blur.Box(img, BlurRadius)
	})
}

// GaussianBlur applies a gaussian blur of the given radius.
func GaussianBlur(radius float64) Filter {
	return FromImageFunc(fmt.Sprintf("gaussian-blur(%g)", radius), false, func(img image.Image) image.Image {
		return blur.Gaussian(img, radius)
	})
}

// Sharpen convolves with the 3x3 kernel {0,-1,0; -1,5,-1; 0,-1,0}.
func Sharpen() Filter {
	return FromImageFunc("sharpen", false, func(img image.Image) image.Image {
		return effect.Sharpen(img)
	})
}

// EdgeDetection computes the Sobel gradient magnitude of the luminance.
func EdgeDetection() Filter {
	return FromImageFunc("edge-detection", false, func(img image.Image) image.Image {
		return effect.Sobel(img)
	})
}

// Emboss applies a relief effect.
func Emboss() Filter {
	return FromImageFunc("emboss", false, func(img image.Image) image.Image {
		return effect.Emboss(img)
	})
}
