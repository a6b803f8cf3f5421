package format

import (
	"fmt"
	"io"
	"strings"
)

// Reporter writes human-readable progress and diagnostics. Callers point it
// at stderr so stdout stays clean for patch output.
type Reporter struct {
	W       io.Writer
	Verbose bool
}

func NewReporter(w io.Writer, verbose bool) *Reporter {
	return &Reporter{W: w, Verbose: verbose}
}

// Info prints a plain status line.
func (r *Reporter) Info(format string, args ...any) {
	fmt.Fprintf(r.W, format+"\n", args...)
}

// Warn prints a diagnostic about input the run had to leave alone.
func (r *Reporter) Warn(format string, args ...any) {
	fmt.Fprintf(r.W, "%swarning:%s %s\n", Yellow, Reset, fmt.Sprintf(format, args...))
}

// Error prints a failure line.
func (r *Reporter) Error(format string, args ...any) {
	fmt.Fprintf(r.W, "%serror:%s %s\n", Red, Reset, fmt.Sprintf(format, args...))
}

// Fixup announces one fixup commit.
func (r *Reporter) Fixup(shortID, summary string, hunks int, files []string) {
	noun := "hunks"
	if hunks == 1 {
		noun = "hunk"
	}
	fmt.Fprintf(r.W, "%sfixup!%s %s%s%s %s %s(%d %s in %s)%s\n",
		Green, Reset, Cyan, shortID, Reset, summary,
		Dim, hunks, noun, strings.Join(files, ", "), Reset)
}

// Detail prints a block only in verbose mode.
func (r *Reporter) Detail(block string) {
	if !r.Verbose {
		return
	}
	fmt.Fprintln(r.W, block)
}
