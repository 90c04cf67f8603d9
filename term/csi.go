package term

import (
	"github.com/cliofy/edvt/grid"
	"github.com/cliofy/edvt/vte"
)

// csiParam returns the idx'th parameter group's leading value, or def if
// that group is absent or empty — the "missing parameter" default spec.md
// §4.1 calls for.
func csiParam(groups [][]uint16, idx int, def int) int {
	if idx < len(groups) && len(groups[idx]) > 0 {
		return int(groups[idx][0])
	}
	return def
}

// csiMotionParam is csiParam for cursor-motion finals, where an explicit 0
// is treated the same as an absent parameter (spec.md §4.1: "a parameter of
// 0 becomes 1 for motion").
func csiMotionParam(groups [][]uint16, idx int) int {
	v := csiParam(groups, idx, 1)
	if v == 0 {
		return 1
	}
	return v
}

// CsiDispatch implements vte.Performer for CSI sequences (table in
// spec.md §4.1/§4.2).
func (t *Terminal) CsiDispatch(params *vte.Params, intermediates []byte, ignore bool, action byte) {
	if ignore {
		if t.log != nil {
			t.log.Debugw("CSI sequence discarded: too many parameters or intermediates", "action", string(action))
		}
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var groups [][]uint16
	if params != nil {
		groups = params.Iter()
	}

	// Private-marker sequences (intermediates[0] == '?') carry DEC mode
	// numbers rather than ANSI ones; only 'h'/'l' use that marker here.
	private := len(intermediates) > 0 && intermediates[0] == '?'

	switch action {
	case 'H', 'f': // CUP
		row := csiParam(groups, 0, 1)
		col := csiParam(groups, 1, 1)
		if row == 0 {
			row = 1
		}
		if col == 0 {
			col = 1
		}
		t.grid.MoveCursor(row-1, col-1)

	case 'J': // ED
		t.grid.EraseDisplay(csiParam(groups, 0, 0))

	case 'K': // EL
		t.grid.EraseLine(csiParam(groups, 0, 0))

	case 'A': // CUU
		t.grid.CursorUp(csiMotionParam(groups, 0), t.scrollTop)

	case 'B': // CUD
		t.grid.CursorDown(csiMotionParam(groups, 0), t.scrollBottom)

	case 'C': // CUF
		t.grid.CursorRight(csiMotionParam(groups, 0))

	case 'D': // CUB
		t.grid.CursorLeft(csiMotionParam(groups, 0))

	case 'G': // CHA (enrichment, grounded on cliofy-govte/terminal/buffer.go)
		col := csiParam(groups, 0, 1)
		if col == 0 {
			col = 1
		}
		t.grid.MoveCursorCol(col - 1)

	case 'd': // VPA (enrichment)
		row := csiParam(groups, 0, 1)
		if row == 0 {
			row = 1
		}
		t.grid.MoveCursorRow(row - 1)

	case 'L': // IL
		t.grid.InsertLines(csiMotionParam(groups, 0), t.scrollBottom)

	case 'M': // DL
		t.grid.DeleteLines(csiMotionParam(groups, 0), t.scrollBottom)

	case '@': // ICH
		t.grid.InsertChars(csiMotionParam(groups, 0))

	case 'P': // DCH
		t.grid.DeleteChars(csiMotionParam(groups, 0))

	case 'E': // NEL via CSI form used by some emulators; CR then LF.
		_, cy := t.grid.Cursor()
		t.grid.MoveCursor(cy, 0)
		t.lineFeed()

	case 's': // save register
		t.saveRegister()

	case 'u': // restore register
		t.restoreRegister()

	case 'g': // TBC
		t.grid.TabClear(csiParam(groups, 0, 0))

	case 'r': // DECSTBM
		t.setScrollRegion(csiParam(groups, 0, 1), csiParam(groups, 1, t.gridHeight()))

	case 'm': // SGR
		t.applySGR(groups)

	case 'h':
		t.applyModes(groups, private, true)

	case 'l':
		t.applyModes(groups, private, false)

	default:
		if t.log != nil {
			t.log.Debugw("unknown CSI final byte, sequence discarded", "action", string(action))
		}
	}
}

func (t *Terminal) gridHeight() int {
	_, h := t.grid.Dimensions()
	return h
}

func (t *Terminal) setScrollRegion(top, bottom int) {
	h := t.gridHeight()
	top--
	bottom--
	if top < 0 || bottom >= h || top >= bottom {
		top, bottom = 0, h-1
	}
	t.scrollTop = top
	t.scrollBottom = bottom
	t.grid.MoveCursor(0, 0)
}

// applySGR updates rendition, fg and bg per the table in spec.md §4.2.
func (t *Terminal) applySGR(groups [][]uint16) {
	if len(groups) == 0 {
		t.resetRendition()
		return
	}
	for _, group := range groups {
		if len(group) == 0 {
			t.resetRendition()
			continue
		}
		v := int(group[0])
		switch {
		case v == 0:
			t.resetRendition()
		case v == 1:
			t.rendition |= grid.RenditionBold
		case v == 2:
			t.rendition |= grid.RenditionDim
		case v == 4:
			t.rendition |= grid.RenditionUnderscore
		case v == 5:
			t.rendition |= grid.RenditionBlink
		case v == 7:
			t.rendition |= grid.RenditionNegative
		case v == 8:
			t.rendition |= grid.RenditionHidden
		case v == 22:
			t.rendition &^= grid.RenditionBold
		case v == 24:
			t.rendition &^= grid.RenditionUnderscore
		case v == 25:
			t.rendition &^= grid.RenditionBlink
		case v == 27:
			t.rendition &^= grid.RenditionNegative
		case v >= 30 && v <= 37:
			t.fg = grid.Color(v - 30)
		case v >= 40 && v <= 47:
			t.bg = grid.Color(v - 40)
		case v == 39:
			t.fg = grid.ColorDefault
		case v == 49:
			t.bg = grid.ColorDefault
		}
	}
}

func (t *Terminal) resetRendition() {
	t.rendition = 0
	t.fg = grid.ColorDefault
	t.bg = grid.ColorDefault
}

// applyModes implements the `h`/`l` mode table in spec.md §4.2.
func (t *Terminal) applyModes(groups [][]uint16, private, set bool) {
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		mode := int(group[0])
		if private {
			t.applyPrivateMode(mode, set)
		} else {
			t.applyANSIMode(mode, set)
		}
	}
}

func (t *Terminal) applyANSIMode(mode int, set bool) {
	switch mode {
	case 4: // IRM
		t.insertMode = set
	case 34: // cursor visible (non-standard ANSI form per spec.md)
		t.cursorVisible = set
	}
}

func (t *Terminal) applyPrivateMode(mode int, set bool) {
	switch mode {
	case 1: // DECCKM application cursor mode
		t.appCursorMode = set
	case 7: // DECAWM wraparound
		t.wraparound = set
	case 25: // DECTCEM cursor visible
		t.cursorVisible = set
	case 5, 6, 4:
		// Accepted and ignored: origin mode and smooth scrolling are
		// explicit Non-goals, and reverse-video screen mode is not
		// implemented.
	case 1047, 1049:
		t.applyAltScreenMode(set)
	}
}

// applyAltScreenMode implements the single-level alternate-screen register
// per spec.md §4.2: entering while one exists discards the old snapshot
// first; leaving with none present is a logged no-op.
func (t *Terminal) applyAltScreenMode(set bool) {
	if set {
		t.alt = t.snapshotState()
		t.grid.EraseDisplay(2)
		t.grid.MoveCursor(0, 0)
		return
	}
	if t.alt == nil {
		if t.log != nil {
			t.log.Debugw("alternate screen reset with no snapshot present")
		}
		return
	}
	t.restoreState(t.alt)
	t.alt = nil
}

func (t *Terminal) snapshotState() *altScreen {
	return &altScreen{
		grid:              t.grid.Snapshot(),
		scrollTop:         t.scrollTop,
		scrollBottom:      t.scrollBottom,
		rendition:         t.rendition,
		fg:                t.fg,
		bg:                t.bg,
		g0:                t.g0,
		g1:                t.g1,
		activeCharset:     t.activeCharset,
		wraparound:        t.wraparound,
		cursorVisible:     t.cursorVisible,
		insertMode:        t.insertMode,
		appKeypadMode:     t.appKeypadMode,
		appCursorMode:     t.appCursorMode,
		justWrappedAround: t.justWrappedAround,
		title:             t.title,
		saved:             t.saved,
	}
}

func (t *Terminal) restoreState(s *altScreen) {
	t.grid.Restore(s.grid)
	t.scrollTop = s.scrollTop
	t.scrollBottom = s.scrollBottom
	t.rendition = s.rendition
	t.fg = s.fg
	t.bg = s.bg
	t.g0 = s.g0
	t.g1 = s.g1
	t.activeCharset = s.activeCharset
	t.wraparound = s.wraparound
	t.cursorVisible = s.cursorVisible
	t.insertMode = s.insertMode
	t.appKeypadMode = s.appKeypadMode
	t.appCursorMode = s.appCursorMode
	t.justWrappedAround = s.justWrappedAround
	t.title = s.title
	t.saved = s.saved
}

func (t *Terminal) saveRegister() {
	cx, cy := t.grid.Cursor()
	t.saved = &savedRegister{
		cursorX:       cx,
		cursorY:       cy,
		rendition:     t.rendition,
		fg:            t.fg,
		bg:            t.bg,
		g0:            t.g0,
		g1:            t.g1,
		appKeypadMode: t.appKeypadMode,
		appCursorMode: t.appCursorMode,
		insertMode:    t.insertMode,
	}
}

func (t *Terminal) restoreRegister() {
	if t.saved == nil {
		return
	}
	s := t.saved
	t.grid.MoveCursor(s.cursorY, s.cursorX)
	t.rendition = s.rendition
	t.fg = s.fg
	t.bg = s.bg
	t.g0 = s.g0
	t.g1 = s.g1
	t.appKeypadMode = s.appKeypadMode
	t.appCursorMode = s.appCursorMode
	t.insertMode = s.insertMode
}
