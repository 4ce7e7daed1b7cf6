package mapstyle

import (
	"fmt"
	"slices"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is a sequential colour ramp from light to dark.
type Palette struct {
	Name string
	From string
	To   string
}

// Palettes are the built-in sequential ramps.
var Palettes = map[string]Palette{
	"blues":   {Name: "blues", From: "#eff3ff", To: "#08519c"},
	"greens":  {Name: "greens", From: "#edf8e9", To: "#006d2c"},
	"oranges": {Name: "oranges", From: "#feedde", To: "#a63603"},
	"purples": {Name: "purples", From: "#f2f0f7", To: "#54278f"},
}

// PaletteNames returns the built-in palette names, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(Palettes))
	for n := range Palettes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// LookupPalette finds a palette by name, case-insensitively.
func LookupPalette(name string) (Palette, error) {
	p, ok := Palettes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q (want %s)", name, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// Colors returns n hex colours evenly spaced along the ramp, blended in
// CIE-L*a*b* so perceived steps are even.
func (p Palette) Colors(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	from, err := colorful.Hex(p.From)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", p.Name, err)
	}
	to, err := colorful.Hex(p.To)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", p.Name, err)
	}
	if n == 1 {
		return []string{to.Hex()}, nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = from.BlendLab(to, float64(i)/float64(n-1)).Clamped().Hex()
	}
	out[0], out[n-1] = from.Hex(), to.Hex()
	return out, nil
}
