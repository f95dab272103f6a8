package filter

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Canny performs Canny-style edge detection, marking edges white (255) and
// everything else black.
//
// The thresholds are on the 0-255 scale: gradients above thresholdHigh are
// strong edges, those between the thresholds are kept only when adjacent to a
// strong edge.
//
// # Algorithm
//
//  1. Luminance with ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B)
//  2. 5x5 gaussian blur (sigma about 1.4) to reduce noise
//  3. Sobel gradients, magnitude and direction
//  4. Non-maximum suppression along the gradient direction
//  5. Hysteresis thresholding
//
// Border pixels of the buffer never become edges, so tiled runs leave a thin
// black frame around every tile.
func Canny(thresholdLow, thresholdHigh int) Filter {
	return FromImageFunc(fmt.Sprintf("canny(%d,%d)", thresholdLow, thresholdHigh), false, func(img image.Image) image.Image {
		return cannyEdges(img, float64(thresholdLow)/255.0, float64(thresholdHigh)/255.0)
	})
}

// plane is a single-channel float image stored row-major.
type plane struct {
	w, h int
	v    []float64
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, v: make([]float64, w*h)}
}

// at returns the value at (x, y) with coordinates clamped to the plane.
func (p *plane) at(x, y int) float64 {
	return p.v[clamp(y, 0, p.h-1)*p.w+clamp(x, 0, p.w-1)]
}

func cannyEdges(img image.Image, low, high float64) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	gray := newPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray.v[y*width+x] = 0.299*float64(r>>8)/255.0 + 0.587*float64(g>>8)/255.0 + 0.114*float64(b>>8)/255.0
		}
	}

	blurred := gaussian5(gray)

	sobelX := [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY := [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	magnitude := newPlane(width, height)
	direction := newPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := blurred.at(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude.v[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction.v[y*width+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := newPlane(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			mag := magnitude.v[y*width+x]
			n1, n2 := gradientNeighbours(magnitude, x, y, direction.v[y*width+x])
			if mag >= n1 && mag >= n2 {
				suppressed.v[y*width+x] = mag
			}
		}
	}

	result := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed.v[y*width+x]
			if val >= high || (val >= low && hasStrongNeighbour(suppressed, x, y, high)) {
				result.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return result
}

// gradientNeighbours returns the two magnitudes on either side of (x, y)
// along the gradient direction angle, quantized to 45 degrees.
func gradientNeighbours(m *plane, x, y int, angle float64) (float64, float64) {
	switch {
	case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
		return m.at(x-1, y), m.at(x+1, y)
	case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
		return m.at(x+1, y-1), m.at(x-1, y+1)
	case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
		return m.at(x, y-1), m.at(x, y+1)
	default:
		return m.at(x-1, y-1), m.at(x+1, y+1)
	}
}

func hasStrongNeighbour(p *plane, x, y int, high float64) bool {
	for ky := -1; ky <= 1; ky++ {
		for kx := -1; kx <= 1; kx++ {
			if p.at(x+kx, y+ky) >= high {
				return true
			}
		}
	}
	return false
}

// gaussian5 applies the 5x5 kernel below (sum 273) with clamped borders.
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
func gaussian5(p *plane) *plane {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}

	out := newPlane(p.w, p.h)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sum += p.at(x+kx, y+ky) * kernel[ky+2][kx+2]
				}
			}
			out.v[y*p.w+x] = sum / 273.0
		}
	}
	return out
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
