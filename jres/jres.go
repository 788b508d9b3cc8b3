/*
Package jres implements a decoder and encoder for the packed sprite format
exchanged with the MakeCode Arcade asset editor.

The format starts with an 8 byte header; a 0x87 tag, the number of bits per
pixel which is always 4, then the width and height as little-endian 16-bit
values followed by two zero bytes.

Pixel data follows, stored one column at a time from left to right. Within a
column each byte holds two pixels, the upper one in the low nibble, and the
column is padded with zero nibbles to a multiple of 4 bytes. There is no
compression so a 16 by 16 sprite is always 136 bytes.

When stored or sent to the editor the bytes are base64 encoded.
*/
package jres

import (
	"errors"
	"image"
)

const (
	headerSize    = 8
	headerTag     = 0x87
	bitsPerPixel  = 4
	maxDimension  = 1<<16 - 1
	pixelsPerByte = 8 / bitsPerPixel
)

var (
	// ErrMalformed is returned, possibly wrapped, whenever packed data
	// fails validation.
	ErrMalformed = errors.New("jres: malformed data")

	// ErrTooLarge is returned when a bitmap cannot be described by the
	// 16-bit dimensions in the header.
	ErrTooLarge = errors.New("jres: bitmap too large")
)

// Config holds the dimensions read from a header.
type Config struct {
	Width, Height int
}

// columnBytes returns the number of bytes used to store one column of
// height pixels, including padding to a 32-bit boundary.
func columnBytes(height int) int {
	return ((height*bitsPerPixel + 31) >> 5) << 2
}

func init() {
	image.RegisterFormat("jres", string([]byte{headerTag, bitsPerPixel}), decodeImage, decodeImageConfig)
}
