package term

// EscDispatch implements vte.Performer for single-character ESC sequences
// (the table in spec.md §4.2; CSI/OSC/DCS introducers are intercepted by
// the parser itself and never reach here).
func (t *Terminal) EscDispatch(intermediates []byte, ignore bool, b byte) {
	if ignore {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(intermediates) == 1 {
		switch intermediates[0] {
		case '(':
			t.g0 = b
			return
		case ')':
			t.g1 = b
			return
		case '#':
			if b == '8' {
				t.grid.FillAlignment()
			}
			return
		}
	}

	switch b {
	case '7': // DECSC
		t.saveRegister()
	case '8': // DECRC
		t.restoreRegister()
	case 'D': // IND
		t.lineFeed()
	case 'M': // RI
		_, cy := t.grid.Cursor()
		if cy == t.scrollTop {
			t.grid.ScrollDown(t.scrollTop, t.scrollBottom)
		} else {
			t.grid.CursorUp(1, t.scrollTop)
		}
	case 'E': // NEL
		t.lineFeed()
		_, cy := t.grid.Cursor()
		t.grid.MoveCursor(cy, 0)
	case '=': // DECKPAM
		t.appKeypadMode = true
	case '>': // DECKPNM
		t.appKeypadMode = false
	case 'H': // HTS
		t.grid.SetTabStop()
	}
}
