// Package frame holds acquired video frames, converts them to and from
// images, and compares them.
package frame

import (
	"fmt"
)

// Channel selects one color component of a pixel
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels is the number of color components per pixel
const Channels = 3

var channelNames = map[Channel]string{
	Red:   "red",
	Green: "green",
	Blue:  "blue",
}

func (c Channel) String() string {
	name, ok := channelNames[c]
	if !ok {
		panic(fmt.Sprintf("unable to determine name of channel (%d)", c))
	}
	return name
}

// RGB is one pixel, indexed by Channel
type RGB [Channels]uint8

// Frame is a [row][col][channel] grid of color samples, each Bits wide.
//
// Rows are stored top to bottom in scan order and columns left to right.
type Frame struct {
	Width  int
	Height int
	Bits   int

	// Pix holds the samples row-major, three consecutive bytes per pixel
	Pix []uint8
}

// New returns an all-zero frame
func New(width, height, bits int) *Frame {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("invalid frame dimensions %dx%d", width, height))
	}
	if bits < 1 || bits > 8 {
		panic(fmt.Sprintf("invalid sample depth %d", bits))
	}
	return &Frame{
		Width:  width,
		Height: height,
		Bits:   bits,
		Pix:    make([]uint8, width*height*Channels),
	}
}

func (f *Frame) offset(row, col int) int {
	return (row*f.Width + col) * Channels
}

// At returns the pixel at row, col
func (f *Frame) At(row, col int) RGB {
	i := f.offset(row, col)
	return RGB{f.Pix[i], f.Pix[i+1], f.Pix[i+2]}
}

// Set stores the pixel at row, col
func (f *Frame) Set(row, col int, p RGB) {
	i := f.offset(row, col)
	copy(f.Pix[i:i+Channels], p[:])
}

// Sample returns one channel of the pixel at row, col
func (f *Frame) Sample(row, col int, c Channel) uint8 {
	return f.Pix[f.offset(row, col)+int(c)]
}

// SetSample stores one channel of the pixel at row, col
func (f *Frame) SetSample(row, col int, c Channel, v uint8) {
	f.Pix[f.offset(row, col)+int(c)] = v
}

// MaxSample is the largest value a sample of this frame may hold
func (f *Frame) MaxSample() uint8 {
	return uint8(1<<uint(f.Bits) - 1)
}

// Uniform reports whether every pixel has the same color, e.g. a frame of
// nothing but background.
func (f *Frame) Uniform() bool {
	first := f.At(0, 0)
	for i := 0; i < len(f.Pix); i += Channels {
		if f.Pix[i] != first[0] || f.Pix[i+1] != first[1] || f.Pix[i+2] != first[2] {
			return false
		}
	}
	return true
}

func (f *Frame) Clone() *Frame {
	c := *f
	c.Pix = append([]uint8(nil), f.Pix...)
	return &c
}

func (f *Frame) String() string {
	return fmt.Sprintf("%dx%d frame (%d bit samples)", f.Width, f.Height, f.Bits)
}
