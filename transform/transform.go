/*
Package transform implements the geometric operations that can be applied
to a sprite. Each returns a new bitmap and leaves its input untouched.
*/
package transform

import (
	"fmt"

	"github.com/bodgit/sprited/bitmap"
)

// RotateClockwise rotates b by 90 degrees clockwise. The result has the
// width and height of b swapped.
func RotateClockwise(b *bitmap.Bitmap) *bitmap.Bitmap {
	r := bitmap.New(b.Height(), b.Width())
	for w := 0; w < b.Width(); w++ {
		for h := 0; h < b.Height(); h++ {
			r.Set(b.Height()-1-h, w, b.Get(w, h))
		}
	}
	return r
}

// RotateCounterClockwise rotates b by 90 degrees counter-clockwise. The
// result has the width and height of b swapped.
func RotateCounterClockwise(b *bitmap.Bitmap) *bitmap.Bitmap {
	r := bitmap.New(b.Height(), b.Width())
	for w := 0; w < b.Width(); w++ {
		for h := 0; h < b.Height(); h++ {
			r.Set(h, b.Width()-1-w, b.Get(w, h))
		}
	}
	return r
}

// VerticalFlip mirrors b top to bottom.
func VerticalFlip(b *bitmap.Bitmap) *bitmap.Bitmap {
	r := bitmap.New(b.Width(), b.Height())
	for h := 0; h < b.Height(); h++ {
		for w := 0; w < b.Width(); w++ {
			r.Set(w, b.Height()-1-h, b.Get(w, h))
		}
	}
	return r
}

// HorizontalFlip mirrors b left to right.
func HorizontalFlip(b *bitmap.Bitmap) *bitmap.Bitmap {
	r := bitmap.New(b.Width(), b.Height())
	for h := 0; h < b.Height(); h++ {
		for w := 0; w < b.Width(); w++ {
			r.Set(b.Width()-1-w, h, b.Get(w, h))
		}
	}
	return r
}

// Op names one of the transforms.
type Op int

// The available transforms
const (
	OpRotateClockwise Op = iota
	OpRotateCounterClockwise
	OpHorizontalFlip
	OpVerticalFlip
)

var ops = []struct {
	name string
	fn   func(*bitmap.Bitmap) *bitmap.Bitmap
}{
	OpRotateClockwise:        {"rotate-cw", RotateClockwise},
	OpRotateCounterClockwise: {"rotate-ccw", RotateCounterClockwise},
	OpHorizontalFlip:         {"flip-h", HorizontalFlip},
	OpVerticalFlip:           {"flip-v", VerticalFlip},
}

// Parse returns the Op with the given name.
func Parse(name string) (Op, error) {
	for i, o := range ops {
		if o.name == name {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("transform: unknown operation %q", name)
}

// Names returns the names accepted by Parse.
func Names() []string {
	names := make([]string, len(ops))
	for i, o := range ops {
		names[i] = o.name
	}
	return names
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(ops) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return ops[o].name
}

// Apply runs the transform on b.
func (o Op) Apply(b *bitmap.Bitmap) *bitmap.Bitmap {
	return ops[o].fn(b)
}
