package palette

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArcade(t *testing.T) {
	require.Len(t, Arcade, Size)
	assert.Equal(t, color.RGBA{0xff, 0x21, 0x21, 0xff}, Arcade[2])
	assert.Equal(t, color.RGBA{0x91, 0x46, 0x3d, 0xff}, Arcade[14])
}

func TestParse(t *testing.T) {
	tables := []struct {
		name string
		hex  []string
		ok   bool
	}{
		{"too few", []string{"#000000"}, false},
		{"bad digit", append(make([]string, 15), "#zz0000"), false},
		{"no hash", []string{"000000", "111111", "222222", "333333", "444444", "555555", "666666", "777777", "888888", "999999", "aaaaaa", "bbbbbb", "cccccc", "dddddd", "eeeeee", "ffffff"}, true},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			p, err := Parse(table.hex)
			if !table.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, color.RGBA{0xaa, 0xaa, 0xaa, 0xff}, p[10])
		})
	}
}

func TestLoad(t *testing.T) {
	var b strings.Builder
	b.WriteString("colors:\n")
	for i := 0; i < Size; i++ {
		b.WriteString("  - \"#0000ff\"\n")
	}

	p, err := Load(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0, 0, 0xff, 0xff}, p[15])

	_, err = Load(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("colors: [\"#000000\"]\n"))
	assert.Error(t, err)
}
