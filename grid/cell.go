// Package grid implements the terminal cell matrix: a rectangular array of
// styled cells plus the mutating primitives (erase, scroll, insert/delete,
// cursor motion with clamping) that the decoder in package term drives.
//
// Grid is a pure data-structure layer. It never parses escape sequences, and
// only Resize and Restore allocate among its mutating calls — all five cell
// attributes are replaced atomically on resize, never partially.
package grid

// Color is a cell's foreground or background color: an index 0-7 into the
// eight-color ANSI palette, or ColorDefault.
type Color uint8

// ColorDefault is the "no color set" sentinel, distinct from any palette index.
const ColorDefault Color = 9

// Rendition is a bitset of the text attributes a cell can carry.
type Rendition uint16

const (
	RenditionBold Rendition = 1 << iota
	RenditionUnderscore
	RenditionBlink
	RenditionNegative
	RenditionDim
	RenditionHidden
)

// Has reports whether r contains attr.
func (r Rendition) Has(attr Rendition) bool { return r&attr != 0 }

// Charset tags which graphic character set a cell's glyph was written under.
// Glyph *selection* for the DRAWING set is the renderer's responsibility; the
// core only carries the tag.
type Charset uint8

const (
	CharsetUSASCII Charset = iota
	CharsetDrawing
)

// Cell is a single position in the grid: a glyph byte plus its styling.
type Cell struct {
	Glyph     byte
	Fg        Color
	Bg        Color
	Rendition Rendition
	Charset   Charset
}

// DefaultCell returns the default cell per spec: a space, default colors,
// no rendition, US-ASCII charset.
func DefaultCell() Cell {
	return Cell{Glyph: ' ', Fg: ColorDefault, Bg: ColorDefault}
}
