package render

import (
	"fmt"
	"math"
	"strings"
)

type rgb struct {
	r, g, b float64
}

// Colormap anchor stops, sampled by linear interpolation. The jet and
// viridis stops follow the usual matplotlib definitions closely enough
// for a terminal heatmap.
var colormaps = map[string][]rgb{
	"jet": {
		{0, 0, 0.5}, {0, 0, 1}, {0, 0.5, 1}, {0, 1, 1},
		{0.5, 1, 0.5}, {1, 1, 0}, {1, 0.5, 0}, {1, 0, 0}, {0.5, 0, 0},
	},
	"viridis": {
		{0.267, 0.005, 0.329}, {0.283, 0.141, 0.458}, {0.254, 0.265, 0.530},
		{0.207, 0.372, 0.553}, {0.164, 0.471, 0.558}, {0.128, 0.567, 0.551},
		{0.135, 0.659, 0.518}, {0.267, 0.749, 0.441}, {0.478, 0.821, 0.318},
		{0.741, 0.873, 0.150}, {0.993, 0.906, 0.144},
	},
	"gray": {
		{0, 0, 0}, {1, 1, 1},
	},
}

// ValidCmap reports whether name is a known colormap.
func ValidCmap(name string) bool {
	_, ok := colormaps[name]
	return ok
}

// CmapNames returns the supported colormap names.
func CmapNames() []string {
	return []string{"gray", "jet", "viridis"}
}

// sampleCmap maps t in [0,1] to a hex color string for lipgloss. Unknown
// names fall back to gray.
func sampleCmap(name string, t float64) string {
	stops, ok := colormaps[name]
	if !ok {
		stops = colormaps["gray"]
	}
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Min(1, math.Max(0, t))

	pos := t * float64(len(stops)-1)
	lo := int(math.Floor(pos))
	if lo >= len(stops)-1 {
		lo = len(stops) - 2
	}
	frac := pos - float64(lo)

	a, b := stops[lo], stops[lo+1]
	c := rgb{
		r: a.r + (b.r-a.r)*frac,
		g: a.g + (b.g-a.g)*frac,
		b: a.b + (b.b-a.b)*frac,
	}
	return fmt.Sprintf("#%02X%02X%02X",
		int(math.Round(c.r*255)),
		int(math.Round(c.g*255)),
		int(math.Round(c.b*255)))
}

func joinedCmapNames() string {
	return strings.Join(CmapNames(), ", ")
}
