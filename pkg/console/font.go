package console

import (
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cellWidth  = 8
	cellHeight = 16

	// glyphBaseline leaves two blank rows above the tallest glyph
	glyphBaseline = 13

	textWidth  = Columns * cellWidth
	textHeight = Rows * cellHeight
)

// glyph is one character cell, one byte per row, MSB leftmost
type glyph [cellHeight]uint8

var (
	glyphsOnce sync.Once
	glyphs     [256]glyph
)

// glyphFor returns the rasterized cell for character c. Control characters
// and DEL are blank; the upper half maps to Latin-1.
func glyphFor(c uint8) *glyph {
	glyphsOnce.Do(rasterizeGlyphs)
	return &glyphs[c]
}

func rasterizeGlyphs() {
	face := basicfont.Face7x13
	for c := 0x20; c < 0x100; c++ {
		if c == 0x7F {
			continue
		}

		img := image.NewAlpha(image.Rect(0, 0, cellWidth, cellHeight))
		d := font.Drawer{
			Dst:  img,
			Src:  image.Opaque,
			Face: face,
			Dot:  fixed.P(0, glyphBaseline),
		}
		d.DrawString(string(rune(c)))

		for y := 0; y < cellHeight; y++ {
			var row uint8
			for x := 0; x < cellWidth; x++ {
				if img.AlphaAt(x, y).A >= 0x80 {
					row |= 0x80 >> uint(x)
				}
			}
			glyphs[c][y] = row
		}
	}
}

// set reports whether the glyph covers pixel x, y of the cell
func (g *glyph) set(x, y int) bool {
	return g[y]&(0x80>>uint(x)) != 0
}
