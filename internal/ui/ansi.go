package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// SGR sequences used by the themes.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgRed    = "\033[31m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgGray   = "\033[90m"
)

const (
	markOK   = "✔"
	markFail = "✖"
)

// Color policy. disableColor wins over forceColor; with neither set, color
// follows whether stdout is a terminal.
var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing applies CLICOLOR_FORCE (force) and NO_COLOR (disable).
func SetColorForcing(force, disable bool) {
	forceColor, disableColor = force, disable
}

func colorEnabled() bool {
	switch {
	case disableColor:
		return false
	case forceColor:
		return true
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// C wraps s in color when color is enabled. An empty color is a no-op.
func C(color, s string) string {
	if color == "" || !colorEnabled() {
		return s
	}
	return color + s + reset
}

// Dim renders s faint.
func Dim(s string) string { return C(dim, s) }

// OK and Fail print one status line to w.
func OK(w io.Writer, msg string) { status(w, fgGreen, markOK, msg) }

func Fail(w io.Writer, msg string) { status(w, fgRed, markFail, msg) }

func status(w io.Writer, color, mark, msg string) {
	fmt.Fprintln(w, C(color, mark+" "+msg))
}
