package ui

import (
	"os"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	blockIndent  = 2
)

// Width returns the terminal width, or 80 when stdout is not a terminal
func Width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// Block wraps text to width and indents it under a heading. Trailing
// newlines are dropped; empty text renders as nothing.
func Block(text string, width int) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	if width > blockIndent+10 {
		text = wordwrap.String(text, width-blockIndent)
	}
	return indent.String(text, blockIndent)
}
