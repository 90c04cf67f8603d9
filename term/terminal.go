// Package term implements the terminal emulator core: a byte-stream decoder
// that drives a grid.Grid, plus the Encoder that produces key byte
// sequences in the other direction. Terminal is the vte.Performer that
// turns parsed C0/ESC/CSI/OSC dispatches into grid mutations and mode
// changes.
package term

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cliofy/edvt/grid"
	"github.com/cliofy/edvt/vte"
)

// maxTitleLen bounds window_title per spec.md §3.2.
const maxTitleLen = 49

// minOutBufCap is the output queue's minimum capacity; bytes pushed past it
// are dropped (with a debug log entry) rather than growing unboundedly.
const minOutBufCap = 100

// savedRegister is the DECSC/DECRC single-level save slot.
type savedRegister struct {
	cursorX, cursorY int
	rendition        grid.Rendition
	fg, bg           grid.Color
	g0, g1           byte
	appKeypadMode    bool
	appCursorMode    bool
	insertMode       bool
}

// altScreen is the alternate-screen register: a plain value holding an
// independent deep copy of the grid and the rest of the mutable state that
// §3.2 lists, never another Terminal, so the register holds no reference
// back to a live emulator.
type altScreen struct {
	grid grid.Snapshot

	scrollTop, scrollBottom int
	rendition               grid.Rendition
	fg, bg                  grid.Color
	g0, g1                  byte
	activeCharset           int
	wraparound              bool
	cursorVisible           bool
	insertMode              bool
	appKeypadMode           bool
	appCursorMode           bool
	justWrappedAround       bool
	title                   string
	saved                   *savedRegister
}

// Terminal is the input decoder and grid owner for one emulator instance.
// It is single-threaded and non-reentrant per SPEC_FULL.md §5: the mutex
// here guards only the read-only accessors a renderer goroutine may call
// concurrently with the owning goroutine's Feed calls, mirroring the same
// split grid.Grid makes internally.
type Terminal struct {
	mu sync.RWMutex

	grid   *grid.Grid
	parser *vte.Parser

	scrollTop, scrollBottom int

	rendition grid.Rendition
	fg, bg    grid.Color

	g0, g1        byte
	activeCharset int

	wraparound        bool
	cursorVisible     bool
	insertMode        bool
	appKeypadMode     bool
	appCursorMode     bool
	justWrappedAround bool

	title string

	saved *savedRegister
	alt   *altScreen

	outBuf []byte

	forceRedraw bool
	destroyed   bool

	log *zap.SugaredLogger
}

// Option configures a Terminal at construction time.
type Option func(*Terminal)

// WithLogger attaches an optional debug logger. A nil logger (the default)
// silently drops MalformedEscape-class diagnostics, matching spec.md §7's
// "debug log entry only" policy without forcing every caller to wire one.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(t *Terminal) { t.log = log }
}

// New allocates a Terminal with a W×H grid and default state. Allocation
// failure fails atomically: no partial Terminal is returned (spec.md §7).
func New(w, h int, opts ...Option) (*Terminal, error) {
	g, err := grid.New(w, h)
	if err != nil {
		if errors.Is(err, grid.ErrOutOfMemory) {
			return nil, errors.Wrap(ErrOutOfMemory, err.Error())
		}
		return nil, err
	}
	t := &Terminal{
		grid:          g,
		parser:        vte.NewParser(),
		scrollTop:     0,
		scrollBottom:  h - 1,
		fg:            grid.ColorDefault,
		bg:            grid.ColorDefault,
		g0:            'B',
		g1:            'B',
		wraparound:    true,
		cursorVisible: true,
		outBuf:        make([]byte, 0, minOutBufCap),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Feed decodes bytes from the child process, mutating the grid and mode
// state as a side effect. It never returns an error: malformed input is
// absorbed per spec.md §7's propagation policy. A no-op once Destroy has
// been called.
func (t *Terminal) Feed(data []byte) {
	t.mu.RLock()
	destroyed := t.destroyed
	t.mu.RUnlock()
	if destroyed {
		return
	}
	t.parser.Advance(t, data)
}

// Resize reallocates the grid, resets the scroll region to the full
// screen, and clamps the cursor — per spec.md §3.4's resize contract. On
// failure the terminal is left completely unchanged.
func (t *Terminal) Resize(w, h int) error {
	if err := t.grid.Resize(w, h); err != nil {
		if errors.Is(err, grid.ErrOutOfMemory) {
			return errors.Wrap(ErrOutOfMemory, err.Error())
		}
		return err
	}
	t.mu.Lock()
	t.scrollTop = 0
	t.scrollBottom = h - 1
	t.mu.Unlock()
	return nil
}

// Destroy releases the alternate-screen snapshot, if any, and marks the
// terminal destroyed per spec.md §3.4's explicit-destroy lifecycle. Feed
// and EncodeKey become no-ops afterward. Safe to call more than once.
func (t *Terminal) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alt = nil
	t.destroyed = true
}

// ReportEOF tells the terminal the child process has closed its output and
// destroys it, per spec.md §7 ("EOF ... surfaced to the host; the host
// then destroys the emulator"). The returned error wraps ErrEOF so callers
// can errors.Is/errors.Cause it.
func (t *Terminal) ReportEOF() error {
	t.Destroy()
	return errors.Wrap(ErrEOF, "child process closed its output")
}

// ReportWriteFailure wraps a failure the host encountered while draining
// Drain's bytes to the child process, per spec.md §7 ("WriteFailure ...
// surfaced to the host, which decides termination"). The core does not act
// on this itself; it only gives the host a consistent sentinel to test
// against via errors.Is/errors.Cause.
func (t *Terminal) ReportWriteFailure(cause error) error {
	return errors.Wrap(ErrWriteFailure, cause.Error())
}

// Grid returns the underlying cell matrix for read-only rendering.
func (t *Terminal) Grid() *grid.Grid { return t.grid }

// Title returns the current window title (≤ 49 bytes).
func (t *Terminal) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.title
}

// CursorVisible reports whether the cursor should be painted.
func (t *Terminal) CursorVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursorVisible
}

// ForceRedraw reports and clears the one-shot advisory redraw flag.
func (t *Terminal) ForceRedraw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	fr := t.forceRedraw
	t.forceRedraw = false
	return fr
}

// Drain returns and clears bytes queued for the child process.
func (t *Terminal) Drain() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, len(t.outBuf))
	copy(out, t.outBuf)
	t.outBuf = t.outBuf[:0]
	return out
}

// EncodeKey appends the key's byte sequence to the output queue, dropping
// it with a debug log entry if the queue is full. Ordinary characters (not
// one of the named Key constants) must be passed through KeyRune so
// spec.md §4.3's "other keys emit the raw byte" rule is honored instead of
// silently dropping the keystroke. See the package-level EncodeKey in
// encoder.go.
func (t *Terminal) EncodeKey(key Key) {
	t.mu.Lock()
	destroyed := t.destroyed
	appCursor, appKeypad := t.appCursorMode, t.appKeypadMode
	t.mu.Unlock()
	if destroyed {
		return
	}

	seq := EncodeKey(key, appCursor, appKeypad)
	t.queueOutput(seq)
}

func (t *Terminal) queueOutput(b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.outBuf)+len(b) > cap(t.outBuf) {
		if t.log != nil {
			t.log.Debugw("output queue overflow, dropping bytes", "dropped", len(b))
		}
		return
	}
	t.outBuf = append(t.outBuf, b...)
}

// --- vte.Performer ---

var _ vte.Performer = (*Terminal)(nil)

// Print implements vte.Performer.
func (t *Terminal) Print(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeGlyph(b)
}

// writeGlyph implements spec.md §4.2's write_glyph algorithm. With
// wraparound on, a glyph that fills the last column leaves the cursor on the
// virtual column W and sets justWrappedAround, so an LF or CR that arrives
// next is swallowed (xenl); the wrap itself happens when the next glyph is
// written, and that glyph clears the flag. Caller must hold t.mu.
func (t *Terminal) writeGlyph(b byte) {
	t.justWrappedAround = false

	w, _ := t.grid.Dimensions()
	cx, cy := t.grid.Cursor()

	if cx == w {
		if t.wraparound {
			t.grid.MoveCursor(cy, 0)
			t.lineFeed()
			cx, cy = t.grid.Cursor()
		} else {
			cx = w - 1
			t.grid.MoveCursor(cy, cx)
		}
	}

	if t.insertMode {
		t.grid.InsertChars(1)
	}

	charsetTag := grid.CharsetUSASCII
	designator := t.g0
	if t.activeCharset == 1 {
		designator = t.g1
	}
	if designator == '0' {
		charsetTag = grid.CharsetDrawing
	}

	cx, cy = t.grid.Cursor()
	t.grid.WriteGlyph(cy, cx, grid.Cell{
		Glyph:     b,
		Fg:        t.fg,
		Bg:        t.bg,
		Rendition: t.rendition,
		Charset:   charsetTag,
	})
	t.grid.CursorRight(1)
	if nx, _ := t.grid.Cursor(); nx == w && t.wraparound {
		t.justWrappedAround = true
	}
}

// lineFeed implements the LF/VT/FF/IND shared motion: advance cursor_y by
// one, or scroll_up if that would cross scroll_bottom. Caller must hold t.mu.
func (t *Terminal) lineFeed() {
	_, cy := t.grid.Cursor()
	if cy == t.scrollBottom {
		t.grid.ScrollUp(t.scrollTop, t.scrollBottom)
	} else {
		t.grid.CursorDown(1, t.scrollBottom)
	}
}

// Execute implements vte.Performer for C0 control bytes.
func (t *Terminal) Execute(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch b {
	case 0x07: // BEL
		// Ignored: bell has no grid effect.
	case 0x08: // BS
		t.grid.CursorLeft(1)
	case 0x09: // TAB
		t.grid.MoveCursorCol(t.grid.NextTabStop())
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		if t.justWrappedAround {
			t.justWrappedAround = false
			return
		}
		t.lineFeed()
	case 0x0D: // CR
		if t.justWrappedAround {
			t.justWrappedAround = false
			return
		}
		_, cy := t.grid.Cursor()
		t.grid.MoveCursor(cy, 0)
	case 0x0E: // SO
		t.activeCharset = 1
	case 0x0F: // SI
		t.activeCharset = 0
	case 0x18, 0x1A:
		// CAN/SUB: the parser already aborted the ESC sequence before
		// reaching here; nothing further to do at Ground.
	}
}

// Hook, Put and Unhook implement vte.Performer for device control strings.
// No DCS feature is in scope (sixel, synchronized-update batching are
// Non-goals); these exist only so the parser's FSM has somewhere to route
// DCS data without panicking on a nil interface.
func (t *Terminal) Hook(params *vte.Params, intermediates []byte, ignore bool, action byte) {
	if t.log != nil {
		t.log.Debugw("DCS hook ignored, no DCS feature in scope", "action", string(action))
	}
}

func (t *Terminal) Put(b byte) {}

func (t *Terminal) Unhook() {}
