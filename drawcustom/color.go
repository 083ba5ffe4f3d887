package drawcustom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flavioheleno/opendisplay/tagtype"
)

// ResolveColor maps a payload color name onto an entry of tt's color table.
//
// Names in the table resolve to themselves. "accent" is the first entry that
// is neither white nor black, or black on monochrome tags. "gray", "grey"
// and "half_black" use a gray entry if the table has one and black
// otherwise; any other "half_<name>" resolves as <name>. "#rrggbb" picks the
// nearest entry.
func ResolveColor(name string, tt *tagtype.TagType) (tagtype.NamedColor, error) {
	table := tt.ColorTable
	if len(table) == 0 {
		table = tagtype.DefaultColorTable()
	}
	return resolve(strings.ToLower(strings.TrimSpace(name)), table)
}

func resolve(name string, table tagtype.ColorTable) (tagtype.NamedColor, error) {
	if c, ok := table.Lookup(name); ok {
		return c, nil
	}
	switch {
	case name == "accent":
		for _, c := range table {
			if c.Name != "white" && c.Name != "black" {
				return c, nil
			}
		}
		return resolve("black", table)
	case name == "gray", name == "grey", name == "half_black":
		for _, alt := range []string{"gray", "grey", "black"} {
			if c, ok := table.Lookup(alt); ok {
				return c, nil
			}
		}
	case strings.HasPrefix(name, "half_"):
		return resolve(strings.TrimPrefix(name, "half_"), table)
	case strings.HasPrefix(name, "#"):
		rgb, err := parseHex(name)
		if err != nil {
			return tagtype.NamedColor{}, err
		}
		return nearest(rgb, table), nil
	}
	return tagtype.NamedColor{}, fmt.Errorf("%w: %q", ErrUnknownColor, name)
}

func parseHex(s string) ([3]uint8, error) {
	var rgb [3]uint8
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return rgb, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	rgb[0], rgb[1], rgb[2] = uint8(v>>16), uint8(v>>8), uint8(v)
	return rgb, nil
}

func nearest(rgb [3]uint8, table tagtype.ColorTable) tagtype.NamedColor {
	best, bestDist := table[0], -1
	for _, c := range table {
		d := 0
		for i := range rgb {
			diff := int(rgb[i]) - int(c.RGB[i])
			d += diff * diff
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
