// Package logger provides leveled console logging for the papermap CLI.
// Debug and Info messages are printed only in verbose mode (--verbose).
// Warnings are always printed. Progress lines rewrite themselves in place
// when the output is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	// progressOpen is true while a terminal progress line is unterminated.
	progressOpen bool
)

// isTerminal reports whether w is an interactive terminal.
// Replaced in tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	progressOpen = false
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(false, "[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(false, "[INFO] ", format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	logf(true, "[WARN] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		endProgressLocked()
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Progress reports done out of total units for label.
// On a terminal the line is redrawn in place and finished once done reaches total.
// Elsewhere one line per call is printed, and only in verbose mode.
func Progress(label string, done, total int) {
	mu.Lock()
	defer mu.Unlock()

	pct := 100
	if total > 0 {
		pct = done * 100 / total
	}

	if isTerminal(output) {
		fmt.Fprintf(output, "\r%s: %d/%d (%d%%)", label, done, total, pct)
		progressOpen = true
		if done >= total {
			endProgressLocked()
		}
		return
	}
	if verbose {
		fmt.Fprintf(output, "[PROGRESS] %s: %d/%d (%d%%)\n", label, done, total, pct)
	}
}

func logf(always bool, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		endProgressLocked()
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

func endProgressLocked() {
	if progressOpen {
		fmt.Fprintln(output)
		progressOpen = false
	}
}
