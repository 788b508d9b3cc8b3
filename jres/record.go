package jres

import (
	"bytes"
	"image/color"
	"image/png"

	"github.com/bodgit/sprited/bitmap"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
)

// Image is the interchange record persisted and exchanged with the editor.
// Width and Height are copies of the dimensions encoded in Data.
//
// An Image is always replaced as a whole, never updated field by field.
type Image struct {
	Data       string `json:"data"`
	PreviewURI string `json:"previewURI,omitempty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

const (
	defaultData    = "hwQQABAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=="
	defaultPreview = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAABAAAAAQCAYAAAAf8/9hAAAAH0lEQVQ4T2NkoBAwUqifYdQAhtEwYBgNA1A+Gvi8AAAmmAARf9qcXAAAAABJRU5ErkJggg=="
	defaultSize    = 16
)

// Default returns the built-in blank 16 by 16 sprite.
func Default() *Image {
	return &Image{
		Data:       defaultData,
		PreviewURI: defaultPreview,
		Width:      defaultSize,
		Height:     defaultSize,
	}
}

// Preview renders b with palette p as a PNG data URI.
func Preview(b *bitmap.Bitmap, p color.Palette) (string, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, b.Image(p)); err != nil {
		return "", err
	}
	return dataurl.New(buf.Bytes(), "image/png").String(), nil
}

// NewImage builds a complete record for b.
func NewImage(b *bitmap.Bitmap, p color.Palette) (*Image, error) {
	data, err := EncodeToString(b)
	if err != nil {
		return nil, err
	}

	preview, err := Preview(b, p)
	if err != nil {
		return nil, errors.Wrap(err, "rendering preview")
	}

	return &Image{
		Data:       data,
		PreviewURI: preview,
		Width:      b.Width(),
		Height:     b.Height(),
	}, nil
}

// FromDataString builds a record from packed data as sent by the editor.
func FromDataString(s string, p color.Palette) (*Image, error) {
	b, err := DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewImage(b, p)
}

// Bitmap decodes the record's packed data.
func (i *Image) Bitmap() (*bitmap.Bitmap, error) {
	return DecodeString(i.Data)
}

// Validate checks the packed data decodes and agrees with the recorded
// dimensions.
func (i *Image) Validate() error {
	b, err := i.Bitmap()
	if err != nil {
		return err
	}
	if b.Width() != i.Width || b.Height() != i.Height {
		return errors.Wrapf(ErrMalformed, "record is %dx%d, data is %dx%d", i.Width, i.Height, b.Width(), b.Height())
	}
	return nil
}

// Clone returns a copy of the record.
func (i *Image) Clone() *Image {
	dup := *i
	return &dup
}
