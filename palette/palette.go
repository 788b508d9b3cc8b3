/*
Package palette provides the 16 color palettes sprites are drawn with.

A palette is an ordinary color.Palette of exactly 16 entries; a pixel value
in a sprite is an index into it.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Size is the number of colors in every palette
const Size = 16

var errWrongSize = fmt.Errorf("palette: need exactly %d colors", Size)

// Arcade is the default MakeCode Arcade palette. Index 0 is drawn as
// transparent by the editor.
var Arcade = MustParse([]string{
	"#000000",
	"#ffffff",
	"#ff2121",
	"#ff93c4",
	"#ff8135",
	"#fff609",
	"#249ca3",
	"#78dc52",
	"#003fad",
	"#87f2ff",
	"#8e2ec4",
	"#a4839f",
	"#5c406c",
	"#e5cdc4",
	"#91463d",
	"#000000",
})

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("palette: invalid color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("palette: invalid color %q: %w", s, err)
	}
	return color.RGBA{r, g, b, 0xff}, nil
}

// Parse returns a palette from 16 "#rrggbb" strings.
func Parse(hex []string) (color.Palette, error) {
	if len(hex) != Size {
		return nil, errWrongSize
	}
	p := make(color.Palette, 0, Size)
	for _, h := range hex {
		c, err := parseHex(h)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(hex []string) color.Palette {
	p, err := Parse(hex)
	if err != nil {
		panic(err)
	}
	return p
}

type file struct {
	Colors []string `yaml:"colors"`
}

// Load reads a YAML document of the form:
//
//	colors:
//	  - "#000000"
//	  - "#ffffff"
//	  ...
func Load(r io.Reader) (color.Palette, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errWrongSize
		}
		return nil, err
	}
	return Parse(f.Colors)
}
