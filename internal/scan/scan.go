// Package scan provides the line cursor shared by the log, blame and diff
// parsers, and the error they return when input breaks its grammar.
package scan

import (
	"fmt"
	"strings"
)

// FormatError reports text that does not match the grammar a parser expects.
// It is never recoverable: the caller aborts instead of guessing intent.
type FormatError struct {
	Input  string // "diff", "blame src/x.go", "log"
	Line   int    // 1-based, 0 when the error is about end of input
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("malformed %s: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("malformed %s at line %d: %s: %q", e.Input, e.Line, e.Reason, e.Text)
}

// Lines walks newline-separated text one line at a time. Lines are returned
// without their trailing "\n"; any "\r" is kept so text survives verbatim.
type Lines struct {
	input string
	lines []string
	pos   int
}

// NewLines splits text into lines. A single trailing newline does not
// produce an empty final line.
func NewLines(input string, text []byte) *Lines {
	var lines []string
	if len(text) > 0 {
		lines = strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	}
	return &Lines{input: input, lines: lines}
}

// Next returns the next line and advances. ok is false at end of input.
func (l *Lines) Next() (line string, ok bool) {
	if l.pos >= len(l.lines) {
		return "", false
	}
	line = l.lines[l.pos]
	l.pos++
	return line, true
}

// Peek returns the next line without advancing.
func (l *Lines) Peek() (line string, ok bool) {
	if l.pos >= len(l.lines) {
		return "", false
	}
	return l.lines[l.pos], true
}

// Done reports whether all lines have been consumed.
func (l *Lines) Done() bool {
	return l.pos >= len(l.lines)
}

// LineNo is the 1-based number of the line most recently returned by Next.
func (l *Lines) LineNo() int {
	return l.pos
}

// Errorf builds a FormatError for the line most recently returned by Next.
func (l *Lines) Errorf(format string, args ...any) *FormatError {
	e := &FormatError{Input: l.input, Reason: fmt.Sprintf(format, args...)}
	if l.pos > 0 && l.pos <= len(l.lines) {
		e.Line = l.pos
		e.Text = l.lines[l.pos-1]
	}
	return e
}

// EOFErrorf builds a FormatError for input that ended too early.
func (l *Lines) EOFErrorf(format string, args ...any) *FormatError {
	return &FormatError{Input: l.input, Reason: fmt.Sprintf(format, args...)}
}

// IsObjectID reports whether s is a 40-character lowercase hex object id.
func IsObjectID(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
