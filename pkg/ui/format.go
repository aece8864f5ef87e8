// Package ui decides how command output is presented: rich terminal
// rendering, plain text, or machine-readable JSON. Detection follows
// the usual conventions (NO_COLOR, pipes, terminal color support) and
// every command accepts an explicit --format override.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format is the output format type.
type Format int

const (
	// FormatAuto picks term or text based on the output terminal.
	FormatAuto Format = iota
	// FormatTerminal renders styled terminal output.
	FormatTerminal
	// FormatText renders plain text without styling.
	FormatText
	// FormatJSON renders machine-readable JSON.
	FormatJSON
)

// String returns the flag spelling of the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTerminal:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// IsMachine reports whether the format is meant for programs, not
// people. Machine output must never carry styling or prompts.
func (f Format) IsMachine() bool {
	return f == FormatJSON
}

// ParseFormat parses a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, fmt.Errorf("unknown format: %s", s)
	}
}

// DetectFormat determines the format for the given output stream.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	// piped or redirected output gets plain text
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}

	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}

	return FormatTerminal
}

// Resolve turns FormatAuto into a concrete format for the stream;
// explicit formats pass through.
func Resolve(f Format, output *os.File) Format {
	if f == FormatAuto {
		return DetectFormat(output)
	}
	return f
}
