package object

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Default colours used by the create operations.
const (
	ColorStickyNote = "#FDE68A"
	ColorShape      = "#E5E7EB"
	ColorText       = "#374151"
	ColorStroke     = "#6B7280"
)

type PaletteColor struct {
	Name string
	Hex  string
}

// Palette is the set of named colours the assistant is told about.
var Palette = []PaletteColor{
	{"Yellow", "#FDE68A"},
	{"Pink", "#FBCFE8"},
	{"Blue", "#BFDBFE"},
	{"Green", "#BBF7D0"},
	{"Purple", "#DDD6FE"},
	{"Orange", "#FED7AA"},
	{"Red", "#FECACA"},
	{"Gray", "#E5E7EB"},
	{"Black", "#1F2937"},
}

// BulkPalette is what procedural generation draws fills from.
var BulkPalette = []string{
	"#FDE68A", "#FBCFE8", "#BFDBFE", "#BBF7D0",
	"#DDD6FE", "#FED7AA", "#FECACA", "#E5E7EB",
}

var paletteColors = func() []colorful.Color {
	out := make([]colorful.Color, len(Palette))
	for i, p := range Palette {
		c, err := colorful.Hex(p.Hex)
		if err != nil {
			panic("object: bad palette entry " + p.Hex)
		}
		out[i] = c
	}
	return out
}()

// NearestColorName returns the palette name perceptually closest to hex
// (CIEDE2000). ok is false when hex does not parse as #RRGGBB or #RGB.
func NearestColorName(hex string) (name string, ok bool) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "", false
	}

	best := math.MaxFloat64
	for i, pc := range paletteColors {
		if d := c.DistanceCIEDE2000(pc); d < best {
			best = d
			name = Palette[i].Name
		}
	}
	return name, true
}
