package tile

import (
	"fmt"

	"github.com/ironsheep/tile-filter-mcp/internal/pixel"
)

// Paste writes r.Buffer into the region of dst described by r's descriptor.
// It fails if the buffer does not match the descriptor's dimensions.
func Paste(dst *pixel.Buffer, r Result) error {
	if r.Buffer == nil {
		return fmt.Errorf("%s: missing output buffer", r.Descriptor)
	}
	if r.Buffer.Width != r.Width || r.Buffer.Height != r.Height {
		return fmt.Errorf("%s: output is %dx%d", r.Descriptor, r.Buffer.Width, r.Buffer.Height)
	}
	if err := dst.Paste(r.Buffer, r.X, r.Y); err != nil {
		return fmt.Errorf("%s: %w", r.Descriptor, err)
	}
	return nil
}

// Merge allocates a width x height buffer with the given channel count and
// writes every result into its region.
//
// Results may be supplied in any order. Each result touches only its own
// rectangle, so the outcome does not depend on order as long as the results
// come from one decomposition.
func Merge(width, height, channels int, results []Result) (*pixel.Buffer, error) {
	out, err := pixel.New(width, height, channels)
	if err != nil {
		return nil, err
	}

	covered := 0
	for _, r := range results {
		if err := Paste(out, r); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		covered += r.Area()
	}
	if covered != width*height {
		return nil, fmt.Errorf("merge: tiles cover %d of %d pixels", covered, width*height)
	}
	return out, nil
}
