package literal

import (
	"math/rand"
	"testing"

	"github.com/bodgit/sprited/bitmap"
	"github.com/bodgit/sprited/jres"
	"github.com/bodgit/sprited/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	b := bitmap.FromRows([][]uint8{{0, 1, 10}, {15, 9, 0}})

	tables := []struct {
		format Format
		want   string
	}{
		{TypeScript, "img`\n. 1 a \nf 9 . \n`"},
		{Python, "img(\"\"\"\n. 1 a \nf 9 . \n\"\"\")"},
	}

	for _, table := range tables {
		t.Run(table.format.String(), func(t *testing.T) {
			assert.Equal(t, table.want, Marshal(b, table.format))
		})
	}
}

func TestUnmarshal(t *testing.T) {
	tables := []struct {
		name, text, want string
	}{
		{"typescript", "img`\n. 1 a \nf 9 . \n`", "01a/f90"},
		{"python", "img(\"\"\"\n. 1 a \nf 9 . \n\"\"\")", "01a/f90"},
		{"bare", "12\n34", "12/34"},
		{"ragged", "img`\n1 2 3\n4\n`", "123/400"},
		{"aliases", "# T t N n G g R P p O Y W 0", "1234567abcdef0"},
		{"upper hex", "A B C D E F", "abcdef"},
		{"escaped", "img&#96;1 2&#10;3 4&#96;", "12/34"},
		{"crlf", "img`\r\n1 2\r\n3 4\r\n`", "12/34"},
		{"blank lines", "\n\n1\n\n2\n", "1/2"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, err := Unmarshal(table.text)
			require.NoError(t, err)
			assert.Equal(t, table.want, b.String())
		})
	}
}

func TestUnmarshalEmpty(t *testing.T) {
	for _, text := range []string{"", "img``", "img(\"\"\"\n\"\"\")", "xyz"} {
		_, err := Unmarshal(text)
		assert.ErrorIs(t, err, jres.ErrMalformed, "%q", text)
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for _, size := range [][2]int{{1, 1}, {16, 16}, {5, 2}, {2, 11}} {
		b := bitmap.New(size[0], size[1])
		for y := 0; y < size[1]; y++ {
			for x := 0; x < size[0]; x++ {
				b.Set(x, y, uint8(r.Intn(16)))
			}
		}

		for _, f := range []Format{TypeScript, Python} {
			got, err := Unmarshal(Marshal(b, f))
			require.NoError(t, err)
			assert.True(t, b.Equal(got), "%s: got %s, want %s", f, got, b)
		}
	}
}

func TestToImage(t *testing.T) {
	i, err := ToImage("img`\n1 2\n3 4\n`", palette.Arcade)
	require.NoError(t, err)
	assert.Equal(t, "hwQCAAIAAAAxAAAAQgAAAA==", i.Data)

	_, err = ToImage("", palette.Arcade)
	assert.ErrorIs(t, err, jres.ErrMalformed)
}

func TestParseFormat(t *testing.T) {
	tables := []struct {
		name string
		want Format
		ok   bool
	}{
		{"", TypeScript, true},
		{"ts", TypeScript, true},
		{"TypeScript", TypeScript, true},
		{"py", Python, true},
		{"python", Python, true},
		{"blocks", TypeScript, false},
	}

	for _, table := range tables {
		f, err := ParseFormat(table.name)
		if !table.ok {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, table.want, f)
	}
}
