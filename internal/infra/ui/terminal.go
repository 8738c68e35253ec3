// Where: internal/infra/ui/terminal.go
// What: TTY detection and emoji mode resolution.
// Why: Emoji prefixes help humans at a terminal but clutter CI logs.
package ui

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Emoji modes accepted by the CLI.
const (
	EmojiAuto   = "auto"
	EmojiAlways = "always"
	EmojiNever  = "never"
)

// IsTerminal reports whether w is a terminal device.
var IsTerminal = func(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok || file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// EmojiEnabled resolves mode for w. Unknown modes behave like auto.
func EmojiEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case EmojiAlways:
		return true
	case EmojiNever:
		return false
	default:
		return IsTerminal(w)
	}
}
