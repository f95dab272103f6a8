package pixel

import (
	"fmt"
	"math"
)

// CompareResult contains pixel-level comparison information for two buffers.
type CompareResult struct {
	SimilarityScore  float64 `json:"similarity_score"`
	PixelsDifferent  int     `json:"pixels_different"`
	TotalPixels      int     `json:"total_pixels"`
	AverageColorDiff float64 `json:"average_color_diff"`
	MaxChannelDiff   int     `json:"max_channel_diff"`
	Identical        bool    `json:"identical"`
}

// DiffThreshold is the mean per-channel difference above which a pixel counts
// as different.
const DiffThreshold = 10

// Compare compares two buffers of identical shape pixel by pixel.
//
// For each pixel the absolute difference of every channel is averaged; pixels
// whose average exceeds DiffThreshold are counted as different. The
// similarity score is the fraction of pixels that are not different.
func Compare(a, b *Buffer) (*CompareResult, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("cannot compare %dx%dx%d buffer with %dx%dx%d buffer",
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}

	totalPixels := a.Width * a.Height
	pixelsDifferent := 0
	maxDiff := 0
	var totalColorDiff float64

	for i := 0; i < len(a.Pix); i += a.Channels {
		sum := 0
		for c := 0; c < a.Channels; c++ {
			d := absDiff(a.Pix[i+c], b.Pix[i+c])
			if d > maxDiff {
				maxDiff = d
			}
			sum += d
		}
		diff := float64(sum) / float64(a.Channels)
		totalColorDiff += diff
		if diff > DiffThreshold {
			pixelsDifferent++
		}
	}

	similarity := 1.0 - float64(pixelsDifferent)/float64(totalPixels)
	avgColorDiff := totalColorDiff / float64(totalPixels)

	return &CompareResult{
		SimilarityScore:  math.Round(similarity*1000) / 1000,
		PixelsDifferent:  pixelsDifferent,
		TotalPixels:      totalPixels,
		AverageColorDiff: math.Round(avgColorDiff*100) / 100,
		MaxChannelDiff:   maxDiff,
		Identical:        maxDiff == 0,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
