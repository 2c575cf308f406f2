// Package display renders prayer schedules for the terminal.
//
// Colour follows NO_COLOR (https://no-color.org/) and FORCE_COLOR, and is
// otherwise on only when stdout is a terminal.
package display

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI escape codes for styling.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	fgGray = "\033[90m" // bright black = gray
)

// enabled is decided once at init; SetEnabled overrides it.
var enabled bool

func init() {
	enabled = detect(os.Stdout.Fd())
}

func detect(fd uintptr) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetEnabled overrides the detected colour state. --json and tests use it.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether colour output is active.
func Enabled() bool {
	return enabled
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

func Bold(text string) string   { return wrap(bold, text) }
func Dim(text string) string    { return wrap(dim, text) }
func Red(text string) string    { return wrap(red, text) }
func Green(text string) string  { return wrap(green, text) }
func Yellow(text string) string { return wrap(yellow, text) }

// Accent marks the next prayer (bold cyan).
func Accent(text string) string {
	if !enabled {
		return text
	}
	return bold + cyan + text + reset
}

// Muted renders times that cannot be computed, such as Isha during a
// polar summer.
func Muted(text string) string {
	return wrap(dim+fgGray, text)
}

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}
