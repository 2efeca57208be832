package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode determines how output should be formatted
type OutputMode int

const (
	// OutputModeInteractive enables full colors, spinners, and progress bars
	OutputModeInteractive OutputMode = iota
	// OutputModePlain disables colors and progress (for piped output)
	OutputModePlain
	// OutputModeMachine writes a machine-readable format (json, markdown, html) only
	OutputModeMachine
)

// UI provides a unified interface for terminal output with TTY detection
type UI struct {
	Mode      OutputMode
	Writer    io.Writer
	ErrWriter io.Writer
	Styles    *Styles
	Verbose   bool
}

// New creates a new UI instance with automatic TTY detection
func New(w, errW io.Writer, format string, verbose bool) *UI {
	mode := detectMode(w, format)
	return &UI{
		Mode:      mode,
		Writer:    w,
		ErrWriter: errW,
		Styles:    NewStyles(mode == OutputModeInteractive),
		Verbose:   verbose,
	}
}

// detectMode determines the output mode based on TTY and format flags
func detectMode(w io.Writer, format string) OutputMode {
	if format != "" && format != "terminal" {
		return OutputModeMachine
	}

	if f, ok := w.(*os.File); ok {
		if term.IsTerminal(int(f.Fd())) {
			return OutputModeInteractive
		}
	}

	return OutputModePlain
}

// IsInteractive returns true if the output is interactive (TTY)
func (ui *UI) IsInteractive() bool {
	return ui.Mode == OutputModeInteractive
}

// IsMachine returns true if a machine-readable format was requested
func (ui *UI) IsMachine() bool {
	return ui.Mode == OutputModeMachine
}

// Warnf writes a styled warning to the error stream.
func (ui *UI) Warnf(format string, args ...any) {
	fmt.Fprintln(ui.ErrWriter, ui.Styles.Warning.Render(
		fmt.Sprintf("%s Warning: %s", ui.Styles.IconWarning, fmt.Sprintf(format, args...)),
	))
}

// Verbosef writes progress detail to the error stream when --verbose is set.
func (ui *UI) Verbosef(format string, args ...any) {
	if !ui.Verbose {
		return
	}
	fmt.Fprintln(ui.ErrWriter, ui.Styles.Subheader.Render(fmt.Sprintf(format, args...)))
}
