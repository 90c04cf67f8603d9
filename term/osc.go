package term

import "bytes"

// OscDispatch implements vte.Performer for OSC title sequences: `ESC ] 0 ;`,
// `ESC ] 1 ;`, and `ESC ] 2 ;` all set window_title, truncated to
// maxTitleLen bytes (spec.md §3.2/§4.2). The title text itself may contain
// ';', which the parser also treats as a parameter separator, so the title
// is the rejoin of every parameter after the selector.
func (t *Terminal) OscDispatch(params [][]byte, bellTerminated bool) {
	if len(params) < 2 {
		return
	}
	switch string(params[0]) {
	case "0", "1", "2":
	default:
		return
	}

	title := bytes.Join(params[1:], []byte{';'})
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	t.mu.Lock()
	t.title = string(title)
	t.forceRedraw = true
	t.mu.Unlock()
}
