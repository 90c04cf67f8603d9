package term

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// csiFinals is the pool of CSI final bytes CsiDispatch recognizes (§4.1's
// table), used to build syntactically-varied random sequences below.
var csiFinals = []byte{'H', 'f', 'J', 'K', 'A', 'B', 'C', 'D', 'G', 'd', 'L', 'M', '@', 'P', 'E', 's', 'u', 'g', 'r', 'm', 'h', 'l'}

// randomCSI builds one random CSI sequence: ESC [ , an optional '?' private
// marker, 0-3 random small numeric parameters separated by ';', and a final
// byte drawn from csiFinals.
func randomCSI(rng *rand.Rand) []byte {
	seq := []byte{0x1B, '['}
	if rng.Intn(4) == 0 {
		seq = append(seq, '?')
	}
	n := rng.Intn(4)
	for i := 0; i < n; i++ {
		if i > 0 {
			seq = append(seq, ';')
		}
		seq = append(seq, []byte(fmt.Sprintf("%d", rng.Intn(200)))...)
	}
	seq = append(seq, csiFinals[rng.Intn(len(csiFinals))])
	return seq
}

// randomByteStreamChunk returns one unit of input: a printable byte, a C0
// control byte, an ESC sequence, or a full random CSI sequence — the same
// mix of "text interrupted by escapes and control characters" spec.md's
// decoder must tolerate from an arbitrary child process.
func randomByteStreamChunk(rng *rand.Rand) []byte {
	switch rng.Intn(6) {
	case 0:
		return []byte{byte(0x20 + rng.Intn(0x7E-0x20+1))} // printable ASCII
	case 1:
		return []byte{byte(rng.Intn(0x20))} // C0 control
	case 2:
		return randomCSI(rng)
	case 3:
		return []byte{0x1B, byte('0' + rng.Intn(10))} // stray/garbage ESC
	case 4:
		return []byte("\x1b]0;title\x07") // OSC title
	default:
		return []byte{byte(0x80 + rng.Intn(0x80))} // C1/high byte
	}
}

// TestRandomizedByteStreamHoldsCoreInvariants drives a seeded-random byte
// stream — printables, C0 controls, CSI/ESC/OSC sequences with random
// parameters — through Feed and checks spec.md §8 invariants 1 and 2 after
// every chunk (cursor stays in bounds, the scroll region stays valid) and
// invariant 3 once the stream ends (every glyph stays printable). Fixed seed
// for reproducibility, in the same
// long-synthetic-stream spirit as cliofy-govte/parser_coverage_test.go but
// randomized rather than hand-written.
func TestRandomizedByteStreamHoldsCoreInvariants(t *testing.T) {
	const w, h = 80, 24
	rng := rand.New(rand.NewSource(1234))

	term, err := New(w, h)
	require.NoError(t, err)

	for i := 0; i < 3000; i++ {
		assert.NotPanics(t, func() {
			term.Feed(randomByteStreamChunk(rng))
		}, "iteration %d", i)

		x, y := term.grid.Cursor()
		require.GreaterOrEqualf(t, y, 0, "iteration %d", i)
		require.Lessf(t, y, h, "iteration %d", i)
		require.GreaterOrEqualf(t, x, 0, "iteration %d", i)
		require.LessOrEqualf(t, x, w, "iteration %d", i)

		require.Lessf(t, term.scrollTop, term.scrollBottom, "iteration %d", i)
		require.GreaterOrEqualf(t, term.scrollTop, 0, "iteration %d", i)
		require.Lessf(t, term.scrollBottom, h, "iteration %d", i)
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			glyph := term.grid.Cell(row, col).Glyph
			assert.GreaterOrEqualf(t, glyph, byte(0x20), "cell (%d,%d)", row, col)
		}
	}
}

// TestRandomizedWrapRoundTrip covers invariant 4 (round-trip): for any
// printable byte, writing it W+1 times with wraparound=true produces exactly
// one wrap — cursor lands at (1,1), row 0 full of that byte, row 1 col 0
// holds the (W+1)th byte. Randomized over which printable byte is used.
func TestRandomizedWrapRoundTrip(t *testing.T) {
	const w, h = 80, 24
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 50; i++ {
		term, err := New(w, h)
		require.NoError(t, err)

		b := byte(0x20 + rng.Intn(0x7E-0x20+1))
		input := make([]byte, w+1)
		for j := 0; j < w; j++ {
			input[j] = b
		}
		input[w] = b
		term.Feed(input)

		for col := 0; col < w; col++ {
			assert.Equalf(t, b, term.grid.Cell(0, col).Glyph, "run %d col %d", i, col)
		}
		assert.Equalf(t, b, term.grid.Cell(1, 0).Glyph, "run %d", i)

		x, y := term.grid.Cursor()
		assert.Equalf(t, 1, x, "run %d", i)
		assert.Equalf(t, 1, y, "run %d", i)
		assert.Falsef(t, term.justWrappedAround, "run %d", i)
	}
}
