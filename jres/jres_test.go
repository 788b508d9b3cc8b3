package jres

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/bodgit/sprited/bitmap"
	"github.com/bodgit/sprited/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBitmap(r *rand.Rand, width, height int) *bitmap.Bitmap {
	b := bitmap.New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.Set(x, y, uint8(r.Intn(16)))
		}
	}
	return b
}

func TestColumnBytes(t *testing.T) {
	tables := []struct {
		height, want int
	}{
		{1, 4},
		{8, 4},
		{9, 8},
		{16, 8},
		{17, 12},
	}

	for _, table := range tables {
		assert.Equal(t, table.want, columnBytes(table.height), "height %d", table.height)
	}
}

func TestDecodeString(t *testing.T) {
	tables := []struct {
		name string
		data string
		want string
	}{
		{"square", "hwQCAAIAAAAxAAAAQgAAAA==", "12/34"},
		{"wide", "hwQDAAEAAAABAAAADwAAAAoAAAA=", "1fa"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, err := DecodeString(table.data)
			require.NoError(t, err)
			assert.Equal(t, table.want, b.String())

			s, err := EncodeToString(b)
			require.NoError(t, err)
			assert.Equal(t, table.data, s)
		})
	}
}

func TestDecodeDefault(t *testing.T) {
	b, err := Default().Bitmap()
	require.NoError(t, err)
	assert.True(t, b.Equal(bitmap.New(16, 16)))
	assert.NoError(t, Default().Validate())
}

func TestDecodeMalformed(t *testing.T) {
	valid, _ := base64.StdEncoding.DecodeString("hwQCAAIAAAAxAAAAQgAAAA==")

	tables := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", valid[:5]},
		{"bad tag", append([]byte{0x88}, valid[1:]...)},
		{"bad depth", append([]byte{0x87, 0x01}, valid[2:]...)},
		{"zero width", append([]byte{0x87, 0x04, 0x00, 0x00}, valid[4:]...)},
		{"short payload", valid[:len(valid)-1]},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(table.data))
			assert.ErrorIs(t, err, ErrMalformed)

			_, err = DecodeString(base64.StdEncoding.EncodeToString(table.data))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	_, err := DecodeString("not base64!")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeTrailingData(t *testing.T) {
	valid, _ := base64.StdEncoding.DecodeString("hwQCAAIAAAAxAAAAQgAAAA==")
	b, err := Decode(bytes.NewReader(append(valid, 0xff, 0xff)))
	require.NoError(t, err)
	assert.Equal(t, "12/34", b.String())
}

func TestDecodeConfig(t *testing.T) {
	valid, _ := base64.StdEncoding.DecodeString("hwQDAAEAAAABAAAADwAAAAoAAAA=")
	c, err := DecodeConfig(bytes.NewReader(valid[:headerSize]))
	require.NoError(t, err)
	assert.Equal(t, Config{Width: 3, Height: 1}, c)
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, size := range [][2]int{{1, 1}, {16, 16}, {7, 3}, {3, 9}, {32, 17}} {
		b := randomBitmap(r, size[0], size[1])

		s, err := EncodeToString(b)
		require.NoError(t, err)

		got, err := DecodeString(s)
		require.NoError(t, err)
		assert.True(t, b.Equal(got), "%dx%d: got %s, want %s", size[0], size[1], got, b)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	err := Encode(new(bytes.Buffer), bitmap.New(maxDimension+1, 1))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestImageRegistered(t *testing.T) {
	valid, _ := base64.StdEncoding.DecodeString("hwQCAAIAAAAxAAAAQgAAAA==")

	m, format, err := image.Decode(bytes.NewReader(valid))
	require.NoError(t, err)
	assert.Equal(t, "jres", format)
	assert.Equal(t, image.Rect(0, 0, 2, 2), m.Bounds())
	assert.Equal(t, palette.Arcade[4], m.At(1, 1))
}

func TestNewImage(t *testing.T) {
	b := bitmap.FromRows([][]uint8{{1, 2}, {3, 4}})

	i, err := NewImage(b, palette.Arcade)
	require.NoError(t, err)
	assert.Equal(t, "hwQCAAIAAAAxAAAAQgAAAA==", i.Data)
	assert.Equal(t, 2, i.Width)
	assert.Equal(t, 2, i.Height)
	assert.True(t, strings.HasPrefix(i.PreviewURI, "data:image/png;base64,"))
	assert.NoError(t, i.Validate())

	j, err := json.Marshal(i)
	require.NoError(t, err)
	assert.Contains(t, string(j), `"previewURI":"data:image/png`)
}

func TestFromDataString(t *testing.T) {
	i, err := FromDataString("hwQDAAEAAAABAAAADwAAAAoAAAA=", palette.Arcade)
	require.NoError(t, err)
	assert.Equal(t, 3, i.Width)
	assert.Equal(t, 1, i.Height)

	_, err = FromDataString("AAAA", palette.Arcade)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestValidateMismatch(t *testing.T) {
	i := Default()
	i.Width = 8
	assert.ErrorIs(t, i.Validate(), ErrMalformed)
}

func TestFromImage(t *testing.T) {
	m := image.NewNRGBA(image.Rect(10, 10, 13, 11))
	m.Set(10, 10, color.NRGBA{0xff, 0x20, 0x20, 0xff}) // close to red
	m.Set(11, 10, color.NRGBA{0xff, 0xff, 0xff, 0xff}) // white
	m.Set(12, 10, color.NRGBA{0xff, 0xff, 0xff, 0x10}) // mostly transparent

	b, err := FromImage(m, palette.Arcade)
	require.NoError(t, err)
	assert.Equal(t, "210", b.String())
}

func TestFromImagePaletted(t *testing.T) {
	m := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
		color.RGBA{0x00, 0x3f, 0xad, 0xff},
		color.RGBA{0x78, 0xdc, 0x52, 0xff},
	})
	m.SetColorIndex(1, 0, 1)

	b, err := FromImage(m, palette.Arcade)
	require.NoError(t, err)
	assert.Equal(t, "87", b.String())
}

func TestFromImageInvalid(t *testing.T) {
	_, err := FromImage(image.NewRGBA(image.Rectangle{}), palette.Arcade)
	assert.Error(t, err)

	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), palette.Arcade[:4])
	assert.Error(t, err)
}

func TestFromImageQuantized(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 32, 1))
	for x := 0; x < 32; x++ {
		m.Set(x, 0, color.NRGBA{uint8(x * 8), 0x80, 0x40, 0xff})
	}

	b, err := FromImage(m, palette.Arcade)
	require.NoError(t, err)
	for x := 0; x < 32; x++ {
		assert.NotZero(t, b.Get(x, 0), "x=%d", x)
	}
}
