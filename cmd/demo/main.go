// Command demo feeds stdin through a term.Terminal and prints the rendered
// grid to stdout once stdin closes. It exists to exercise the library the
// way cliofy-govte/examples/shortexample does, not as a real PTY client —
// spawning and wiring a pseudo-terminal is explicitly out of this core's
// scope (spec.md §1).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cliofy/edvt/grid"
	"github.com/cliofy/edvt/term"
)

func main() {
	width := pflag.IntP("width", "w", 80, "grid width in columns")
	height := pflag.IntP("height", "h", 24, "grid height in rows")
	debug := pflag.Bool("debug", false, "enable debug logging of parser diagnostics")
	pflag.Parse()

	var opts []term.Option
	if *debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "demo: failed to build logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		opts = append(opts, term.WithLogger(logger.Sugar()))
	}

	t, err := term.New(*width, *height, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo: failed to create terminal: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			t.Feed(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "demo: read error: %v\n", err)
			os.Exit(1)
		}
	}

	printGrid(t.Grid())
	if title := t.Title(); title != "" {
		fmt.Printf("\ntitle: %q\n", title)
	}
}

func printGrid(g *grid.Grid) {
	w, h := g.Dimensions()
	for row := 0; row < h; row++ {
		line := make([]byte, w)
		for col := 0; col < w; col++ {
			line[col] = g.Cell(row, col).Glyph
		}
		fmt.Println(string(line))
	}
}
