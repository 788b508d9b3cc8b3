/*
Package literal converts sprites to and from the image literals used in
MakeCode source code.

A literal has one line per row and one character per pixel:

	img`
	. . 2 2
	. 2 f 2
	`

The Python flavour wraps the same rows in img("""...""").
*/
package literal

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/bodgit/sprited/bitmap"
	"github.com/bodgit/sprited/jres"
	"github.com/pkg/errors"
)

// Format selects the wrapper written around the rows.
type Format int

const (
	// TypeScript writes img`...`
	TypeScript Format = iota
	// Python writes img("""...""")
	Python
)

var formatNames = map[Format]string{
	TypeScript: "typescript",
	Python:     "python",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the format with the given name, either "typescript"
// (or "ts") or "python" (or "py").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "typescript", "ts":
		return TypeScript, nil
	case "python", "py":
		return Python, nil
	}
	return TypeScript, fmt.Errorf("literal: unknown format %q", s)
}

const hexChars = ".123456789abcdef"

// Marshal renders b as a literal.
func Marshal(b *bitmap.Bitmap, f Format) string {
	var sb strings.Builder
	switch f {
	case Python:
		sb.WriteString(`img("""`)
	default:
		sb.WriteString("img`")
	}
	for y := 0; y < b.Height(); y++ {
		sb.WriteByte('\n')
		for x := 0; x < b.Width(); x++ {
			sb.WriteByte(hexChars[b.Get(x, y)])
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('\n')
	switch f {
	case Python:
		sb.WriteString(`""")`)
	default:
		sb.WriteString("`")
	}
	return sb.String()
}

// pixelValue maps a literal character to a color index. The letter aliases
// are the ones understood by the editor.
func pixelValue(c rune) (uint8, bool) {
	switch c {
	case '0', '.':
		return 0, true
	case '1', '#':
		return 1, true
	case '2', 'T':
		return 2, true
	case '3', 't':
		return 3, true
	case '4', 'N':
		return 4, true
	case '5', 'n':
		return 5, true
	case '6', 'G':
		return 6, true
	case '7', 'g':
		return 7, true
	case '8':
		return 8, true
	case '9':
		return 9, true
	case 'a', 'A', 'R':
		return 10, true
	case 'b', 'B', 'P':
		return 11, true
	case 'c', 'C', 'p':
		return 12, true
	case 'd', 'D', 'O':
		return 13, true
	case 'e', 'E', 'Y':
		return 14, true
	case 'f', 'F', 'W':
		return 15, true
	}
	return 0, false
}

var unwrapper = strings.NewReplacer(
	"img", "",
	"`", "",
	"&#96;", "",
	"&#9;", "",
	"&#10;", "\n",
	`"`, "",
	"(", "",
	")", "",
	"\r", "",
)

// Unmarshal parses a literal. Characters that are not pixels are ignored
// and short rows are padded with 0.
func Unmarshal(text string) (*bitmap.Bitmap, error) {
	var rows [][]uint8
	width := 0
	for _, line := range strings.Split(unwrapper.Replace(text), "\n") {
		var row []uint8
		for _, c := range line {
			if v, ok := pixelValue(c); ok {
				row = append(row, v)
			}
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
		if len(row) > width {
			width = len(row)
		}
	}

	if len(rows) == 0 {
		return nil, errors.Wrap(jres.ErrMalformed, "empty literal")
	}

	b := bitmap.New(width, len(rows))
	for y, row := range rows {
		for x, v := range row {
			b.Set(x, y, v)
		}
	}
	return b, nil
}

// ToImage parses a literal and packs it into an interchange record.
func ToImage(text string, p color.Palette) (*jres.Image, error) {
	b, err := Unmarshal(text)
	if err != nil {
		return nil, err
	}
	return jres.NewImage(b, p)
}
