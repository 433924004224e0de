// Package render draws positions as terminal text and PNG snapshots.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/hailam/pvschess/internal/board"
	"github.com/rs/zerolog"
)

const (
	boxTop    = "┏━━━┳━━━┳━━━┳━━━┳━━━┳━━━┳━━━┳━━━┓\n"
	boxMiddle = "┣━━━╋━━━╋━━━╋━━━╋━━━╋━━━╋━━━╋━━━┫\n"
	boxBottom = "┗━━━┻━━━┻━━━┻━━━┻━━━┻━━━┻━━━┻━━━┛\n"
	fileLabel = "  a   b   c   d   e   f   g   h\n"
)

// Terminal writes p as a box-drawn board of Unicode pieces with rank 8 at
// the top.
func Terminal(w io.Writer, p board.Position) error {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(fileLabel)
	sb.WriteString(boxTop)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sb.WriteString("┃ " + p[board.NewSquare(col, row)].Glyph() + " ")
		}
		fmt.Fprintf(&sb, "┃%d\n", 8-row)
		if row < 7 {
			sb.WriteString(boxMiddle)
		}
	}
	sb.WriteString(boxBottom)

	_, err := io.WriteString(w, sb.String())
	return err
}

// TerminalRenderer prints every committed move followed by the board.
// Write errors are logged to Log.
type TerminalRenderer struct {
	W     io.Writer
	Clear bool // Clear the screen before each board
	Log   zerolog.Logger
}

// Render prints m and the position after it.
func (r *TerminalRenderer) Render(p board.Position, m board.Move) {
	var err error
	if r.Clear {
		_, err = io.WriteString(r.W, "\033[H\033[2J")
	}
	if err == nil {
		_, err = fmt.Fprintf(r.W, "\n%s\n", m)
	}
	if err == nil {
		err = Terminal(r.W, p)
	}
	if err != nil {
		r.Log.Warn().Err(err).Str("move", m.String()).Msg("render failed")
	}
}
