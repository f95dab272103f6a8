package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Info describes a registered filter.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pointwise   bool   `json:"pointwise"`
}

type entry struct {
	Info
	aliases []string
	make    func() Filter
}

var registry = []entry{
	{Info{"identity", "Copy pixels unchanged", true}, nil, Identity},
	{Info{"grayscale", "Convert to luminance", true}, []string{"greyscale", "gray", "grey"}, Grayscale},
	{Info{"sepia", "Warm brown tone", true}, nil, Sepia},
	{Info{"invert", "Color negative", true}, []string{"negative"}, Invert},
	{Info{"brightness+50", "Add 50 to every color channel", true}, []string{"brighten"}, func() Filter { return Brightness(50) }},
	{Info{"brightness-50", "Subtract 50 from every color channel", true}, []string{"darken"}, func() Filter { return Brightness(-50) }},
	{Info{"contrast-high", "Contrast factor 1.5 around mid-gray", true}, nil, func() Filter { return Contrast(1.5) }},
	{Info{"contrast-low", "Contrast factor 0.5 around mid-gray", true}, nil, func() Filter { return Contrast(0.5) }},
	{Info{"saturate", "Increase HSL saturation by 50%", true}, nil, func() Filter { return Saturation(50) }},
	{Info{"desaturate", "Decrease HSL saturation by 50%", true}, nil, func() Filter { return Saturation(-50) }},
	{Info{"hue-rotate", "Rotate hue by 90 degrees", true}, nil, func() Filter { return HueRotate(90) }},
	{Info{"blur", "Box blur, radius 2", false}, []string{"box-blur"}, Blur},
	{Info{"gaussian-blur", "Gaussian blur, radius 3", false}, nil, func() Filter { return GaussianBlur(3) }},
	{Info{"sharpen", "3x3 sharpening kernel", false}, nil, Sharpen},
	{Info{"edge-detection", "Sobel gradient magnitude", false}, []string{"sobel", "edges"}, EdgeDetection},
	{Info{"canny", "Canny edges, thresholds 50/150", false}, nil, func() Filter { return Canny(50, 150) }},
	{Info{"emboss", "Relief effect", false}, nil, Emboss},
}

// normalizeName folds case and drops separators and parentheses so that
// "Edge Detection", "edge-detection" and "edge_detection" all match, as do
// "Brightness (+50)" and "brightness+50".
func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '(', ')':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

var byName = func() map[string]*entry {
	m := make(map[string]*entry)
	for i := range registry {
		e := &registry[i]
		m[normalizeName(e.Name)] = e
		for _, a := range e.aliases {
			m[normalizeName(a)] = e
		}
	}
	return m
}()

// ByName returns a new instance of the named filter.
// Lookup ignores case, spaces, dashes, underscores and parentheses.
func ByName(name string) (Filter, error) {
	e, ok := byName[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("unknown filter: %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return e.make(), nil
}

// Names returns the canonical names of all registered filters, sorted.
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

// List returns the description of every registered filter in registration order.
func List() []Info {
	infos := make([]Info, len(registry))
	for i, e := range registry {
		infos[i] = e.Info
	}
	return infos
}
