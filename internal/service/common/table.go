//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

// NewTable returns a table writer mirrored to out.
// Colours are enabled only when out is a terminal.
//
//nolint:ireturn // go-pretty exposes its writer as an interface.
func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)

	if IsTerminal(out) {
		t.Style().Color.Header = text.Colors{text.Bold}
	}

	return t
}

// Colorize paints s when out is a terminal and returns it unchanged otherwise.
func Colorize(out io.Writer, color text.Color, s string) string {
	if !IsTerminal(out) {
		return s
	}

	return color.Sprint(s)
}

// IsTerminal reports whether out is an interactive terminal.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd())) //nolint:gosec // File descriptors fit in int.
}
