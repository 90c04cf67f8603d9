package term

// Key identifies a symbolic key the host editor wants translated to the
// byte sequence its child process expects. Grounded on
// javanhut-RavenTerminal/keybindings.TranslateKey's switch, generalized
// from a GLFW key code to this package's own symbol set.
//
// Values at or above runeKeyBase carry an ordinary byte rather than naming a
// symbolic key — see KeyRune.
type Key int

// runeKeyBase reserves the named keys below it; KeyRune/EncodeKey use the
// offset above it to recover the original byte.
const runeKeyBase Key = 1 << 16

// KeyRune wraps an ordinary key byte (a typed letter, digit, punctuation,
// ...) so EncodeKey can recognize it and fall through to spec.md §4.3's
// final rule: "other keys emit the raw byte" (original_source/src/
// terminal.c's vim_shell_terminal_output default case: `outbuf[0]=(char)c`).
func KeyRune(b byte) Key {
	return runeKeyBase + Key(b)
}

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyBackspace
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKPPlus
	KeyKPMinus
	KeyKPDivide
	KeyKPMultiply
	KeyKPEnter
	KeyKPPoint
)

var cursorKeySeqs = map[Key][2]byte{
	KeyUp:    {'A', 'A'},
	KeyDown:  {'B', 'B'},
	KeyLeft:  {'D', 'D'},
	KeyRight: {'C', 'C'},
}

var fixedTildeSeqs = map[Key]string{
	KeyHome:     "1",
	KeyEnd:      "4",
	KeyInsert:   "2",
	KeyDelete:   "3",
	KeyPageUp:   "5",
	KeyPageDown: "6",
	KeyF5:       "15",
	KeyF6:       "17",
	KeyF7:       "18",
	KeyF8:       "19",
	KeyF9:       "20",
	KeyF10:      "21",
	KeyF11:      "23",
	KeyF12:      "24",
}

var f1to4Letters = map[Key]byte{
	KeyF1: 'P',
	KeyF2: 'Q',
	KeyF3: 'R',
	KeyF4: 'S',
}

var keypadDefault = map[Key]byte{
	KeyKP0:        '0',
	KeyKP1:        '1',
	KeyKP2:        '2',
	KeyKP3:        '3',
	KeyKP4:        '4',
	KeyKP5:        '5',
	KeyKP6:        '6',
	KeyKP7:        '7',
	KeyKP8:        '8',
	KeyKP9:        '9',
	KeyKPPlus:     '+',
	KeyKPMinus:    '-',
	KeyKPDivide:   '/',
	KeyKPMultiply: '*',
	KeyKPPoint:    '.',
	KeyKPEnter:    '\r',
}

var keypadAppLetters = map[Key]byte{
	KeyKP0:        'p',
	KeyKP1:        'q',
	KeyKP2:        'r',
	KeyKP3:        's',
	KeyKP4:        't',
	KeyKP5:        'u',
	KeyKP6:        'v',
	KeyKP7:        'w',
	KeyKP8:        'x',
	KeyKP9:        'y',
	KeyKPPlus:     'k',
	KeyKPMinus:    'm',
	KeyKPDivide:   'o',
	KeyKPMultiply: 'j',
	KeyKPPoint:    'n',
	KeyKPEnter:    'M',
}

// EncodeKey returns the exact byte sequence spec.md §6.2 specifies for key,
// parameterized by the two persistent modes.
func EncodeKey(key Key, appCursorMode, appKeypadMode bool) []byte {
	if key >= runeKeyBase {
		return []byte{byte(key - runeKeyBase)}
	}

	if seq, ok := cursorKeySeqs[key]; ok {
		if appCursorMode {
			return []byte{0x1B, 'O', seq[1]}
		}
		return []byte{0x1B, '[', seq[0]}
	}

	if letter, ok := f1to4Letters[key]; ok {
		return []byte{0x1B, 'O', letter}
	}

	if code, ok := fixedTildeSeqs[key]; ok {
		return append([]byte{0x1B, '['}, append([]byte(code), '~')...)
	}

	if key == KeyBackspace {
		return []byte{0x7F}
	}

	if appKeypadMode {
		if letter, ok := keypadAppLetters[key]; ok {
			return []byte{0x1B, 'O', letter}
		}
	}
	if ch, ok := keypadDefault[key]; ok {
		return []byte{ch}
	}

	return nil
}
