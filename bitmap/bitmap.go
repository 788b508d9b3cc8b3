/*
Package bitmap implements the in-memory pixel grid used for a sprite.

Each pixel is a 4-bit index into a 16 color palette. The grid is fixed in
size once created and is only ever changed through Set.
*/
package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// MaxColor is the largest value a pixel can hold.
const MaxColor = 0x0f

// Bitmap is a width by height grid of 4-bit color indices.
type Bitmap struct {
	width, height int
	pix           []uint8
}

// New returns a zero-filled bitmap. It panics if either dimension is not
// positive.
func New(width, height int) *Bitmap {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("bitmap: invalid dimensions %dx%d", width, height))
	}
	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}
}

// FromRows builds a bitmap from rows of color indices, top to bottom. All
// rows must be the same, non-zero, length.
func FromRows(rows [][]uint8) *Bitmap {
	if len(rows) == 0 {
		panic("bitmap: no rows")
	}
	b := New(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != b.width {
			panic(fmt.Sprintf("bitmap: row %d has %d pixels, want %d", y, len(row), b.width))
		}
		for x, v := range row {
			b.Set(x, y, v)
		}
	}
	return b
}

// Width returns the number of columns
func (b *Bitmap) Width() int { return b.width }

// Height returns the number of rows
func (b *Bitmap) Height() int { return b.height }

func (b *Bitmap) offset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		panic(fmt.Sprintf("bitmap: (%d, %d) out of range for %dx%d", x, y, b.width, b.height))
	}
	return y*b.width + x
}

// Get returns the color index at (x, y).
func (b *Bitmap) Get(x, y int) uint8 {
	return b.pix[b.offset(x, y)]
}

// Set stores the color index v at (x, y). Both an out of range coordinate
// and a value greater than MaxColor panic.
func (b *Bitmap) Set(x, y int, v uint8) {
	if v > MaxColor {
		panic(fmt.Sprintf("bitmap: color %d out of range", v))
	}
	b.pix[b.offset(x, y)] = v
}

// Clone returns an independent copy of b.
func (b *Bitmap) Clone() *Bitmap {
	dup := &Bitmap{
		width:  b.width,
		height: b.height,
		pix:    make([]uint8, len(b.pix)),
	}
	copy(dup.pix, b.pix)
	return dup
}

// Equal reports whether b and o have the same dimensions and pixels.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// Image renders b as a paletted image using p. Index 0 is always rendered
// as transparent, matching how the editor draws sprites.
func (b *Bitmap) Image(p color.Palette) *image.Paletted {
	pal := make(color.Palette, len(p))
	copy(pal, p)
	if len(pal) > 0 {
		pal[0] = color.Transparent
	}

	m := image.NewPaletted(image.Rect(0, 0, b.width, b.height), pal)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			m.SetColorIndex(x, y, b.Get(x, y))
		}
	}
	return m
}

// String returns a compact representation, one hex digit per pixel and
// rows separated by '/'. It is mostly useful in test failures.
func (b *Bitmap) String() string {
	const digits = "0123456789abcdef"
	s := make([]byte, 0, len(b.pix)+b.height)
	for y := 0; y < b.height; y++ {
		if y > 0 {
			s = append(s, '/')
		}
		for x := 0; x < b.width; x++ {
			s = append(s, digits[b.Get(x, y)])
		}
	}
	return string(s)
}
