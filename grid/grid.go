package grid

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrOutOfMemory is returned by New and Resize when the requested
// dimensions would exceed maxCells. Go has no malloc-failure signal to
// surface the way the original C implementation's allocator did, so this
// is a deliberate, documented stand-in for that failure mode: it gives
// callers the same "create fails atomically / resize restores the
// previous buffers" contract spec.md's error design calls for.
var ErrOutOfMemory = errors.New("grid: out of memory")

// ErrInvalidDimensions is returned when W or H is not a positive integer.
var ErrInvalidDimensions = errors.New("grid: width and height must be >= 1")

// maxCells bounds W*H to keep Resize's failure path exercised and testable.
const maxCells = 64 * 1024 * 1024

// Grid is the cell matrix and cursor. It is guarded by a RWMutex solely so
// an external renderer goroutine can take read locks concurrently with the
// owning goroutine's writes (see Cell, Cursor, Dimensions and TabStop) — it
// is not a general concurrency
// model; mutating methods assume single-actor ownership per spec.md §5.
type Grid struct {
	mu sync.RWMutex

	w, h int
	// Row-major, indexed by row*w+col. Resize copies rows without reflow,
	// aligning old and new rows at the bottom whether it grows or shrinks.
	cells    []Cell
	tabstops []bool

	CursorX int
	CursorY int
}

// New allocates a grid of the given dimensions, filled with default cells
// and default tab stops (every 8th column starting at column 7).
func New(w, h int) (*Grid, error) {
	if w < 1 || h < 1 {
		return nil, ErrInvalidDimensions
	}
	if w*h > maxCells {
		return nil, ErrOutOfMemory
	}
	g := &Grid{w: w, h: h}
	g.cells = newCells(w, h)
	g.tabstops = defaultTabstops(w)
	return g, nil
}

func newCells(w, h int) []Cell {
	cells := make([]Cell, w*h)
	def := DefaultCell()
	for i := range cells {
		cells[i] = def
	}
	return cells
}

func defaultTabstops(w int) []bool {
	stops := make([]bool, w)
	for i := 0; i < w-1; i++ {
		if (i+1)%8 == 0 {
			stops[i] = true
		}
	}
	return stops
}

// Dimensions returns the current width and height.
func (g *Grid) Dimensions() (w, h int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.w, g.h
}

// Cell returns the cell at (row, col). Out-of-range coordinates return the
// default cell rather than panicking, since callers clamp independently.
func (g *Grid) Cell(row, col int) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if row < 0 || row >= g.h || col < 0 || col >= g.w {
		return DefaultCell()
	}
	return g.cells[row*g.w+col]
}

// Cursor returns the current cursor position.
func (g *Grid) Cursor() (x, y int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.CursorX, g.CursorY
}

// TabStop reports whether column col is a tab stop.
func (g *Grid) TabStop(col int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if col < 0 || col >= g.w {
		return false
	}
	return g.tabstops[col]
}

func (g *Grid) setCell(row, col int, c Cell) {
	if row < 0 || row >= g.h || col < 0 || col >= g.w {
		return
	}
	g.cells[row*g.w+col] = c
}

// WriteGlyph sets the cell at (row, col) and is the single write path used
// by the decoder for Print. Locked for symmetry with the read accessors.
func (g *Grid) WriteGlyph(row, col int, c Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setCell(row, col, c)
}

// Resize reallocates the grid to new dimensions, copying the overlapping
// region bottom-up (the old last row aligns with the new last row when
// shrinking vertically), filling any new area with default cells, and
// reallocating tab stops to their defaults. On failure the grid is left
// completely unchanged.
func (g *Grid) Resize(w, h int) error {
	if w < 1 || h < 1 {
		return ErrInvalidDimensions
	}
	if w*h > maxCells {
		return ErrOutOfMemory
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	newCellsArr := newCells(w, h)

	copyRows := h
	if g.h < copyRows {
		copyRows = g.h
	}
	copyCols := w
	if g.w < copyCols {
		copyCols = g.w
	}

	oldRowOffset := g.h - copyRows
	newRowOffset := h - copyRows

	for r := 0; r < copyRows; r++ {
		oldRow := oldRowOffset + r
		newRow := newRowOffset + r
		for c := 0; c < copyCols; c++ {
			newCellsArr[newRow*w+c] = g.cells[oldRow*g.w+c]
		}
	}

	g.cells = newCellsArr
	g.tabstops = defaultTabstops(w)
	g.w = w
	g.h = h

	if g.CursorX > w {
		g.CursorX = w
	}
	if g.CursorY >= h {
		g.CursorY = h - 1
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EraseDisplay clears cells per mode: 0 cursor-to-end, 1 start-to-cursor
// inclusive, 2 the entire grid.
func (g *Grid) EraseDisplay(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	def := DefaultCell()
	switch mode {
	case 0:
		for c := g.CursorX; c < g.w; c++ {
			g.setCell(g.CursorY, c, def)
		}
		for r := g.CursorY + 1; r < g.h; r++ {
			g.clearRow(r, def)
		}
	case 1:
		for r := 0; r < g.CursorY; r++ {
			g.clearRow(r, def)
		}
		for c := 0; c <= g.CursorX && c < g.w; c++ {
			g.setCell(g.CursorY, c, def)
		}
	case 2:
		for r := 0; r < g.h; r++ {
			g.clearRow(r, def)
		}
	}
}

func (g *Grid) clearRow(row int, def Cell) {
	if row < 0 || row >= g.h {
		return
	}
	base := row * g.w
	for c := 0; c < g.w; c++ {
		g.cells[base+c] = def
	}
}

// EraseLine clears the cursor's row per mode: 0 cursor-to-end, 1
// start-to-cursor inclusive, 2 the entire line.
func (g *Grid) EraseLine(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	def := DefaultCell()
	switch mode {
	case 0:
		for c := g.CursorX; c < g.w; c++ {
			g.setCell(g.CursorY, c, def)
		}
	case 1:
		for c := 0; c <= g.CursorX && c < g.w; c++ {
			g.setCell(g.CursorY, c, def)
		}
	case 2:
		g.clearRow(g.CursorY, def)
	}
}

// MoveCursor sets the cursor to an absolute (already 0-based) position,
// clamping x to [0, W-1] and y to [0, H-1].
func (g *Grid) MoveCursor(y, x int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorY = clamp(y, 0, g.h-1)
	g.CursorX = clamp(x, 0, g.w-1)
}

// MoveCursorCol sets only the column (CHA), leaving the row untouched.
func (g *Grid) MoveCursorCol(x int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorX = clamp(x, 0, g.w-1)
}

// MoveCursorRow sets only the row (VPA), leaving the column untouched.
func (g *Grid) MoveCursorRow(y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorY = clamp(y, 0, g.h-1)
}

// CursorUp decrements CursorY by n, floored at top (the scroll region's
// top margin, owned by the caller).
func (g *Grid) CursorUp(n, top int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorY = clamp(g.CursorY-n, top, g.h-1)
}

// CursorDown increments CursorY by n, ceilinged at bottom (the scroll
// region's bottom margin, owned by the caller) — not H-1.
func (g *Grid) CursorDown(n, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	y := g.CursorY + n
	if y > bottom {
		y = bottom
	}
	g.CursorY = y
}

// CursorLeft decrements CursorX by n, floored at 0.
func (g *Grid) CursorLeft(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CursorX = clamp(g.CursorX-n, 0, g.w)
}

// CursorRight increments CursorX by n, ceilinged at the virtual column W
// (never W+1 — see spec.md §9's documented source bug).
func (g *Grid) CursorRight(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	x := g.CursorX + n
	if x > g.w {
		x = g.w
	}
	g.CursorX = x
}

// ScrollUp moves rows top+1..=bottom up by one within [top, bottom],
// filling the vacated last row with default cells.
func (g *Grid) ScrollUp(top, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scrollUp(top, bottom)
}

func (g *Grid) scrollUp(top, bottom int) {
	if top >= bottom || top < 0 || bottom >= g.h {
		return
	}
	for r := top; r < bottom; r++ {
		copy(g.cells[r*g.w:(r+1)*g.w], g.cells[(r+1)*g.w:(r+2)*g.w])
	}
	g.clearRow(bottom, DefaultCell())
}

// ScrollDown moves rows top..=bottom-1 down by one within [top, bottom],
// filling the vacated first row with default cells.
func (g *Grid) ScrollDown(top, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scrollDown(top, bottom)
}

func (g *Grid) scrollDown(top, bottom int) {
	if top >= bottom || top < 0 || bottom >= g.h {
		return
	}
	for r := bottom; r > top; r-- {
		copy(g.cells[r*g.w:(r+1)*g.w], g.cells[(r-1)*g.w:r*g.w])
	}
	g.clearRow(top, DefaultCell())
}

// InsertLines narrows the scroll region to [CursorY, bottom], performs
// min(n, bottom-CursorY) scroll-down operations within it, and resets the
// cursor column to 0. bottom is the caller's persistent scroll_bottom;
// the narrowing is local to this call and never mutates caller state.
func (g *Grid) InsertLines(n, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	top := g.CursorY
	count := n
	if max := bottom - top; count > max {
		count = max
	}
	for i := 0; i < count; i++ {
		g.scrollDown(top, bottom)
	}
	g.CursorX = 0
}

// DeleteLines is symmetric with InsertLines, using scroll-up.
func (g *Grid) DeleteLines(n, bottom int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	top := g.CursorY
	count := n
	if max := bottom - top; count > max {
		count = max
	}
	for i := 0; i < count; i++ {
		g.scrollUp(top, bottom)
	}
	g.CursorX = 0
}

// InsertChars shifts cells at columns CursorX..W-1 right by one, n times,
// filling vacated positions with default cells. The cursor does not move.
func (g *Grid) InsertChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	def := DefaultCell()
	base := g.CursorY * g.w
	for i := 0; i < n; i++ {
		for c := g.w - 1; c > g.CursorX; c-- {
			g.cells[base+c] = g.cells[base+c-1]
		}
		if g.CursorX < g.w {
			g.cells[base+g.CursorX] = def
		}
	}
}

// DeleteChars shifts cells at columns CursorX+1..W-1 left by one, n
// times, filling vacated positions at the right edge with default cells.
func (g *Grid) DeleteChars(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	def := DefaultCell()
	base := g.CursorY * g.w
	for i := 0; i < n; i++ {
		for c := g.CursorX; c < g.w-1; c++ {
			g.cells[base+c] = g.cells[base+c+1]
		}
		if g.w > 0 {
			g.cells[base+g.w-1] = def
		}
	}
}

// TabClear clears tab stops per mode: 0 clears the stop at the cursor
// column, 3 clears all stops.
func (g *Grid) TabClear(mode int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch mode {
	case 0:
		if g.CursorX >= 0 && g.CursorX < g.w {
			g.tabstops[g.CursorX] = false
		}
	case 3:
		for i := range g.tabstops {
			g.tabstops[i] = false
		}
	}
}

// SetTabStop marks the cursor's current column as a tab stop.
func (g *Grid) SetTabStop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CursorX >= 0 && g.CursorX < g.w {
		g.tabstops[g.CursorX] = true
	}
}

// NextTabStop returns the next column i > CursorX with a tab stop, or
// W-1 if none remains.
func (g *Grid) NextTabStop() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := g.CursorX + 1; i < g.w; i++ {
		if g.tabstops[i] {
			return i
		}
	}
	return g.w - 1
}

// FillAlignment implements DECALN: every cell's glyph becomes 'E',
// leaving color, rendition and charset untouched.
func (g *Grid) FillAlignment() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cells {
		g.cells[i].Glyph = 'E'
	}
}

// Snapshot returns a deep, independent copy of the grid's cells, tab
// stops and cursor — used to build the alternate-screen register. It is
// a plain value, never another Grid wired back into the parser.
func (g *Grid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	tabs := make([]bool, len(g.tabstops))
	copy(tabs, g.tabstops)
	return Snapshot{
		W: g.w, H: g.h,
		Cells: cells, Tabstops: tabs,
		CursorX: g.CursorX, CursorY: g.CursorY,
	}
}

// Restore replaces the grid's contents with a previously taken snapshot.
func (g *Grid) Restore(s Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.w, g.h = s.W, s.H
	g.cells = make([]Cell, len(s.Cells))
	copy(g.cells, s.Cells)
	g.tabstops = make([]bool, len(s.Tabstops))
	copy(g.tabstops, s.Tabstops)
	g.CursorX, g.CursorY = s.CursorX, s.CursorY
}

// Snapshot is a plain-value deep copy of a Grid's contents, suitable for
// holding as an alternate-screen register without aliasing the live grid.
type Snapshot struct {
	W, H     int
	Cells    []Cell
	Tabstops []bool
	CursorX  int
	CursorY  int
}
