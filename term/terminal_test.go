package term

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliofy/edvt/grid"
)

func newTestTerminal(t *testing.T) *Terminal {
	t.Helper()
	term, err := New(80, 24)
	require.NoError(t, err)
	return term
}

func TestNewDefaultState(t *testing.T) {
	term := newTestTerminal(t)
	x, y := term.grid.Cursor()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
	assert.True(t, term.CursorVisible())
	assert.Equal(t, "", term.Title())
}

// E1: feed "A\x1b[1;1HB" -> cell (0,0) = 'B', (0,1) = ' ', cursor at (0,1).
func TestScenarioE1CUPOverwrite(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("A\x1b[1;1HB"))

	assert.Equal(t, byte('B'), term.grid.Cell(0, 0).Glyph)
	assert.Equal(t, byte(' '), term.grid.Cell(0, 1).Glyph)
	x, y := term.grid.Cursor()
	assert.Equal(t, 1, x)
	assert.Equal(t, 0, y)
}

// E2: feed "X"*80 + "Y" with wraparound=true -> row 0 full of 'X', row 1
// col 0 = 'Y', cursor at (1,1), just_wrapped_around == false.
func TestScenarioE2WraparoundThenPrint(t *testing.T) {
	term := newTestTerminal(t)
	input := make([]byte, 81)
	for i := 0; i < 80; i++ {
		input[i] = 'X'
	}
	input[80] = 'Y'
	term.Feed(input)

	for c := 0; c < 80; c++ {
		assert.Equalf(t, byte('X'), term.grid.Cell(0, c).Glyph, "col %d", c)
	}
	assert.Equal(t, byte('Y'), term.grid.Cell(1, 0).Glyph)
	x, y := term.grid.Cursor()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	assert.False(t, term.justWrappedAround)
}

// E3: feed "X"*80 + "\n" -> row 0 all 'X', cursor remains at (0, 80)
// because the LF is suppressed by xenl.
func TestScenarioE3XenlSuppressesLF(t *testing.T) {
	term := newTestTerminal(t)
	input := make([]byte, 81)
	for i := 0; i < 80; i++ {
		input[i] = 'X'
	}
	input[80] = '\n'
	term.Feed(input)

	for c := 0; c < 80; c++ {
		assert.Equalf(t, byte('X'), term.grid.Cell(0, c).Glyph, "col %d", c)
	}
	x, y := term.grid.Cursor()
	assert.Equal(t, 80, x)
	assert.Equal(t, 0, y)
	assert.False(t, term.justWrappedAround)
}

// E4: feed "\x1b[31mA\x1b[0mB" -> cell (0,0) fg=1 glyph 'A'; (0,1) fg=DEFAULT
// glyph 'B'.
func TestScenarioE4SGRColors(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("\x1b[31mA\x1b[0mB"))

	a := term.grid.Cell(0, 0)
	assert.Equal(t, byte('A'), a.Glyph)
	assert.Equal(t, grid.Color(1), a.Fg)

	b := term.grid.Cell(0, 1)
	assert.Equal(t, byte('B'), b.Glyph)
	assert.Equal(t, grid.ColorDefault, b.Fg)
}

// E5: at cursor (5,0), feed "\x1b[2;5r\x1b[H" -> scroll_top=1,
// scroll_bottom=4, cursor at (0,0).
func TestScenarioE5DECSTBM(t *testing.T) {
	term := newTestTerminal(t)
	term.grid.MoveCursor(5, 0)
	term.Feed([]byte("\x1b[2;5r\x1b[H"))

	assert.Equal(t, 1, term.scrollTop)
	assert.Equal(t, 4, term.scrollBottom)
	x, y := term.grid.Cursor()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
}

// E6: from application_cursor_mode=false, EncodeKey(UP) -> ESC [ A; after
// feeding "\x1b[?1h", EncodeKey(UP) -> ESC O A.
func TestScenarioE6EncoderModeSwitch(t *testing.T) {
	term := newTestTerminal(t)
	term.EncodeKey(KeyUp)
	assert.Equal(t, []byte{0x1B, '[', 'A'}, term.Drain())

	term.Feed([]byte("\x1b[?1h"))
	term.EncodeKey(KeyUp)
	assert.Equal(t, []byte{0x1B, 'O', 'A'}, term.Drain())
}

func TestEraseDisplayIdempotent(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("hello world"))
	term.Feed([]byte("\x1b[2J"))
	first := term.grid.Snapshot()
	term.Feed([]byte("\x1b[2J"))
	second := term.grid.Snapshot()
	assert.Equal(t, first.Cells, second.Cells)
}

// Property 6: save/restore identity.
func TestSaveRestoreRegisterIdentity(t *testing.T) {
	term := newTestTerminal(t)
	term.grid.MoveCursor(3, 4)
	term.Feed([]byte("\x1b7")) // DECSC

	term.Feed([]byte("\x1b[31;1m")) // change fg + bold
	term.grid.MoveCursor(10, 10)

	term.Feed([]byte("\x1b8")) // DECRC

	x, y := term.grid.Cursor()
	assert.Equal(t, 4, x)
	assert.Equal(t, 3, y)
	assert.Equal(t, grid.Rendition(0), term.rendition)
	assert.Equal(t, grid.ColorDefault, term.fg)
}

// Property 7: scroll conservation within a region.
func TestScrollConservation(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("\x1b[2;6r")) // scroll_top=1, scroll_bottom=5
	for r := 0; r < 24; r++ {
		term.grid.WriteGlyph(r, 0, grid.Cell{Glyph: byte('0' + r%10)})
	}

	before := term.grid.Cell(3, 0).Glyph
	term.grid.ScrollUp(term.scrollTop, term.scrollBottom)
	term.grid.ScrollDown(term.scrollTop, term.scrollBottom)
	after := term.grid.Cell(3, 0).Glyph

	assert.Equal(t, before, after)
}

// Property 8: alternate screen round-trip.
func TestAlternateScreenRoundTrip(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("primary content"))
	term.grid.MoveCursor(2, 3)
	before := term.grid.Snapshot()

	term.Feed([]byte("\x1b[?1049h"))
	term.Feed([]byte("alternate screen app"))
	term.grid.MoveCursor(10, 10)

	term.Feed([]byte("\x1b[?1049l"))

	after := term.grid.Snapshot()
	assert.Equal(t, before.Cells, after.Cells)
	assert.Equal(t, before.CursorX, after.CursorX)
	assert.Equal(t, before.CursorY, after.CursorY)
}

func TestAlternateScreenReenterDiscardsOldSnapshot(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("one"))
	term.Feed([]byte("\x1b[?1047h"))
	term.Feed([]byte("two"))
	term.Feed([]byte("\x1b[?1047h")) // re-entering discards "one" snapshot
	term.Feed([]byte("\x1b[?1047l"))

	// Restores to the state captured at the *second* 1047h, which already
	// shows "two" drawn on the first alt screen, so the primary content
	// visible now should not be "one".
	assert.NotEqual(t, byte('o'), term.grid.Cell(0, 0).Glyph)
}

func TestOSCTitleTruncatesAtMaxLen(t *testing.T) {
	term := newTestTerminal(t)
	long := make([]byte, maxTitleLen+20)
	for i := range long {
		long[i] = 'z'
	}
	term.Feed(append([]byte("\x1b]0;"), append(long, 0x07)...))
	assert.Len(t, term.Title(), maxTitleLen)
}

func TestOSCTitleBellAndST(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("\x1b]2;hello\x07"))
	assert.Equal(t, "hello", term.Title())

	term.Feed([]byte("\x1b]2;world\x1b\\"))
	assert.Equal(t, "world", term.Title())
}

func TestInsertModeShiftsExistingGlyphs(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("ABC"))
	term.grid.MoveCursor(0, 0)
	term.Feed([]byte("\x1b[4h")) // IRM insert mode
	term.Feed([]byte("X"))
	assert.Equal(t, byte('X'), term.grid.Cell(0, 0).Glyph)
	assert.Equal(t, byte('A'), term.grid.Cell(0, 1).Glyph)
	assert.Equal(t, byte('B'), term.grid.Cell(0, 2).Glyph)
}

func TestCharsetDesignationTagsCells(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("\x1b(0")) // G0 := DEC line-drawing
	term.Feed([]byte("q"))
	assert.Equal(t, grid.CharsetDrawing, term.grid.Cell(0, 0).Charset)

	term.Feed([]byte("\x1b(B")) // G0 := US-ASCII
	term.Feed([]byte("q"))
	assert.Equal(t, grid.CharsetUSASCII, term.grid.Cell(0, 1).Charset)
}

func TestDECALNFillsGlyphsOnly(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("\x1b#8"))
	for c := 0; c < 80; c++ {
		assert.Equal(t, byte('E'), term.grid.Cell(0, c).Glyph)
	}
}

func TestResizeResetsScrollRegion(t *testing.T) {
	term := newTestTerminal(t)
	term.Feed([]byte("\x1b[2;10r"))
	require.NoError(t, term.Resize(100, 30))
	assert.Equal(t, 0, term.scrollTop)
	assert.Equal(t, 29, term.scrollBottom)
}

func TestNewWrapsOutOfMemory(t *testing.T) {
	_, err := New(1<<20, 1<<20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
}

func TestResizeWrapsOutOfMemory(t *testing.T) {
	term := newTestTerminal(t)
	err := term.Resize(1<<20, 1<<20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
}

func TestDestroyStopsFeedAndEncodeKey(t *testing.T) {
	term := newTestTerminal(t)
	term.Destroy()

	term.Feed([]byte("hello"))
	assert.Equal(t, byte(' '), term.grid.Cell(0, 0).Glyph)

	term.EncodeKey(KeyUp)
	assert.Empty(t, term.Drain())
}

func TestReportEOFDestroysAndWrapsSentinel(t *testing.T) {
	term := newTestTerminal(t)
	err := term.ReportEOF()
	assert.True(t, errors.Is(err, ErrEOF))

	term.Feed([]byte("hello"))
	assert.Equal(t, byte(' '), term.grid.Cell(0, 0).Glyph)
}

func TestReportWriteFailureWrapsSentinel(t *testing.T) {
	term := newTestTerminal(t)
	cause := errors.New("short write")
	err := term.ReportWriteFailure(cause)
	assert.True(t, errors.Is(err, ErrWriteFailure))
}

func TestMalformedCSIDoesNotPanic(t *testing.T) {
	term := newTestTerminal(t)
	assert.NotPanics(t, func() {
		term.Feed([]byte("\x1b[999999999999999999999999999999m"))
		term.Feed([]byte("\x1b[<>?@#$%^&*()"))
	})
}
