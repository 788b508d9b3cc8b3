package jres

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/bodgit/sprited/bitmap"
	"github.com/bodgit/sprited/palette"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(b *bitmap.Bitmap) error {
	var header [headerSize]byte
	header[0] = headerTag
	header[1] = bitsPerPixel
	binary.LittleEndian.PutUint16(header[2:], uint16(b.Width()))
	binary.LittleEndian.PutUint16(header[4:], uint16(b.Height()))

	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	column := make([]byte, columnBytes(b.Height()))
	for x := 0; x < b.Width(); x++ {
		for i := range column {
			column[i] = 0
		}
		for y := 0; y < b.Height(); y++ {
			v := b.Get(x, y) & 0x0f
			if y&1 == 1 {
				v <<= 4
			}
			column[y/pixelsPerByte] |= v
		}
		if _, err := e.w.Write(column); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the bitmap b to w in packed format.
func Encode(w io.Writer, b *bitmap.Bitmap) error {
	if b.Width() > maxDimension || b.Height() > maxDimension {
		return errors.Wrapf(ErrTooLarge, "%dx%d", b.Width(), b.Height())
	}

	e := encoder{w: w}

	return e.encode(b)
}

// EncodeToString returns the base64 encoded packed form of b.
func EncodeToString(b *bitmap.Bitmap) (string, error) {
	buf := new(bytes.Buffer)
	if err := Encode(buf, b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// FromImage converts any image into a bitmap using palette p. Pixels that
// are less than half opaque become index 0, everything else is matched to
// the nearest of the remaining 15 colors.
func FromImage(m image.Image, p color.Palette) (*bitmap.Bitmap, error) {
	b := m.Bounds()
	if b.Empty() {
		return nil, errors.New("jres: empty image")
	}
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		return nil, errors.Wrapf(ErrTooLarge, "%dx%d", b.Dx(), b.Dy())
	}
	if len(p) != palette.Size {
		return nil, errors.Errorf("jres: palette has %d colors, want %d", len(p), palette.Size)
	}

	opaque := p[1:]

	var src image.Image = m
	if countColors(m, len(opaque)+1) > len(opaque) {
		// Reduce to no more colors than are available first so similar
		// shades collapse together before being matched
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, len(opaque)), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
		src = pm
	}

	out := bitmap.New(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a < 0x8000 {
				continue
			}
			out.Set(x-b.Min.X, y-b.Min.Y, uint8(opaque.Index(src.At(x, y))+1))
		}
	}

	return out, nil
}

// countColors counts the distinct opaque colors in m, stopping at max.
func countColors(m image.Image, max int) int {
	seen := make(map[color.RGBA64]struct{})
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := m.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			seen[color.RGBA64{uint16(r), uint16(g), uint16(bl), uint16(a)}] = struct{}{}
			if len(seen) >= max {
				return len(seen)
			}
		}
	}
	return len(seen)
}
