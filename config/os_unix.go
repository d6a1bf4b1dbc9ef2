//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

const (
	forbiddenFileNameChars = string(os.PathSeparator) + string(os.PathListSeparator)
	trailingFileNameChars  = ""
)

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
