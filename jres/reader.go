package jres

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"io"
	"strings"

	"github.com/bodgit/sprited/bitmap"
	"github.com/bodgit/sprited/palette"
	"github.com/pkg/errors"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

func upperNibble(b byte) byte {
	return b & 0xf0
}

type decoder struct {
	r io.Reader

	config Config
	bitmap *bitmap.Bitmap

	tmp [headerSize]byte
}

func (d *decoder) readHeader() error {
	if err := readFull(d.r, d.tmp[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return errors.Wrap(ErrMalformed, "short header")
		}
		return err
	}

	if d.tmp[0] != headerTag {
		return errors.Wrapf(ErrMalformed, "unknown tag 0x%02x", d.tmp[0])
	}
	if d.tmp[1] != bitsPerPixel {
		return errors.Wrapf(ErrMalformed, "unsupported depth %d", d.tmp[1])
	}

	d.config.Width = int(binary.LittleEndian.Uint16(d.tmp[2:]))
	d.config.Height = int(binary.LittleEndian.Uint16(d.tmp[4:]))
	if d.config.Width == 0 || d.config.Height == 0 {
		return errors.Wrapf(ErrMalformed, "invalid dimensions %dx%d", d.config.Width, d.config.Height)
	}

	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	stride := columnBytes(d.config.Height)
	size := int64(stride * d.config.Width)

	// Grow the buffer as data arrives rather than trusting the header
	buf := new(bytes.Buffer)
	n, err := buf.ReadFrom(io.LimitReader(r, size))
	if err != nil {
		return err
	}
	if n != size {
		return errors.Wrapf(ErrMalformed, "short payload: read %d bytes, want %d", n, size)
	}

	p := buf.Bytes()
	d.bitmap = bitmap.New(d.config.Width, d.config.Height)
	for x := 0; x < d.config.Width; x++ {
		column := p[x*stride:]
		for y := 0; y < d.config.Height; y++ {
			b := column[y/pixelsPerByte]
			if y&1 == 0 {
				d.bitmap.Set(x, y, lowerNibble(b))
			} else {
				d.bitmap.Set(x, y, upperNibble(b)>>4)
			}
		}
	}

	return nil
}

// Decode reads packed data from r and returns it as a bitmap.
func Decode(r io.Reader) (*bitmap.Bitmap, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.bitmap, nil
}

// DecodeConfig returns the dimensions of the packed data without decoding
// the pixels.
func DecodeConfig(r io.Reader) (Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return Config{}, err
	}
	return d.config, nil
}

// DecodeString decodes base64 encoded packed data as sent by the editor.
func DecodeString(s string) (*bitmap.Bitmap, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return Decode(bytes.NewReader(b))
}

func decodeImage(r io.Reader) (image.Image, error) {
	b, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return b.Image(palette.Arcade), nil
}

func decodeImageConfig(r io.Reader) (image.Config, error) {
	c, err := DecodeConfig(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: palette.Arcade,
		Width:      c.Width,
		Height:     c.Height,
	}, nil
}
