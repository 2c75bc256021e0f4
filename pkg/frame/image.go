package frame

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Scale is the factor that maps a sample of the given depth onto the 8 bit
// range of an image channel, e.g. 64 for 2 bit samples.
func Scale(bits int) uint8 {
	full := 256
	return uint8(full >> uint(bits))
}

// Expand converts a sample to an 8 bit image channel value
func Expand(v uint8, bits int) uint8 {
	return v * Scale(bits)
}

// Reduce converts an 8 bit image channel value back to a sample. It fails
// for values that no sample expands to.
func Reduce(v uint8, bits int) (uint8, bool) {
	scale := Scale(bits)
	if v%scale != 0 {
		return 0, false
	}
	return v / scale, true
}

// Image renders the frame as an opaque RGBA image, expanding every sample to
// the 8 bit range.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			p := f.At(row, col)
			img.SetRGBA(col, row, color.RGBA{
				R: Expand(p[Red], f.Bits),
				G: Expand(p[Green], f.Bits),
				B: Expand(p[Blue], f.Bits),
				A: 0xFF,
			})
		}
	}
	return img
}

// FromImage converts an image written by Image back into a frame of the
// given sample depth.
func FromImage(img image.Image, bits int) (*Frame, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("empty image")
	}

	f := New(bounds.Dx(), bounds.Dy(), bits)
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			c := color.RGBAModel.Convert(img.At(bounds.Min.X+col, bounds.Min.Y+row)).(color.RGBA)
			for ch, v := range []uint8{c.R, c.G, c.B} {
				sample, ok := Reduce(v, bits)
				if !ok {
					return nil, errors.Errorf("pixel (%d,%d) %s value %d is not a %d bit sample", col, row, Channel(ch), v, bits)
				}
				f.SetSample(row, col, Channel(ch), sample)
			}
		}
	}
	return f, nil
}
