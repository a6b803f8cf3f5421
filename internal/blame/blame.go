// Package blame parses `git blame --porcelain` output into a per-line
// attribution index for one file.
package blame

import (
	"strconv"
	"strings"

	"github.com/jensroland/git-autofixup/internal/scan"
)

// Entry attributes one line of the blamed file to the commit that last
// touched it. Boundary is set when git marked that commit as the range
// boundary, meaning the line predates the range.
type Entry struct {
	OwningID string
	Text     string
	Boundary bool
}

// Index is the attribution of every line in a file, in file order.
// Position i (0-based) holds line i+1.
type Index struct {
	File    string
	entries []Entry
}

// NewIndex builds an index from entries already in line order.
func NewIndex(file string, entries []Entry) *Index {
	return &Index{File: file, entries: entries}
}

// Len returns the number of attributed lines.
func (x *Index) Len() int {
	return len(x.entries)
}

// Entries returns all entries in line order. The slice must not be modified.
func (x *Index) Entries() []Entry {
	return x.entries
}

// Span returns the entries for lines [start, start+count). A zero count
// yields no entries. A range reaching past the end of the file means the
// diff and the blame disagree about the file, which is a format violation.
func (x *Index) Span(start, count int) ([]Entry, error) {
	if count == 0 {
		return nil, nil
	}
	if start < 1 || count < 0 || start-1+count > len(x.entries) {
		return nil, &scan.FormatError{
			Input:  "blame " + x.File,
			Reason: "lines " + strconv.Itoa(start) + "+" + strconv.Itoa(count) + " outside the " + strconv.Itoa(len(x.entries)) + " attributed lines",
		}
	}
	return x.entries[start-1 : start-1+count], nil
}

// Porcelain metadata keys that may sit between an id line and its text.
var metadataKeys = map[string]bool{
	"author":         true,
	"author-mail":    true,
	"author-time":    true,
	"author-tz":      true,
	"committer":      true,
	"committer-mail": true,
	"committer-time": true,
	"committer-tz":   true,
	"summary":        true,
	"previous":       true,
	"boundary":       true,
	"filename":       true,
}

type state int

const (
	// expectID: the next line must be "<40-hex> <orig> <final> [<count>]".
	expectID state = iota
	// expectText: metadata lines are skipped until a tab-prefixed text line.
	expectText
)

// Parse reads porcelain blame output for file. Ids and text lines must
// alternate strictly, and lines must arrive in file order; anything else is
// reported as a *scan.FormatError.
func Parse(file string, out []byte) (*Index, error) {
	lines := scan.NewLines("blame "+file, out)
	x := &Index{File: file}
	boundary := make(map[string]bool)

	st := expectID
	var id string
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}

		switch st {
		case expectID:
			fields := strings.Split(line, " ")
			if len(fields) < 3 || len(fields) > 4 || !scan.IsObjectID(fields[0]) {
				return nil, lines.Errorf("expected commit id line")
			}
			final, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, lines.Errorf("bad final line number")
			}
			if final != len(x.entries)+1 {
				return nil, lines.Errorf("expected line %d", len(x.entries)+1)
			}
			id = fields[0]
			st = expectText

		case expectText:
			if strings.HasPrefix(line, "\t") {
				x.entries = append(x.entries, Entry{
					OwningID: id,
					Text:     line[1:],
					Boundary: boundary[id],
				})
				st = expectID
				continue
			}
			key, _, _ := strings.Cut(line, " ")
			if !metadataKeys[key] {
				return nil, lines.Errorf("expected tab-prefixed line text")
			}
			if key == "boundary" {
				boundary[id] = true
			}
		}
	}

	if st != expectID {
		return nil, lines.EOFErrorf("input ended before the text of line %d", len(x.entries)+1)
	}
	return x, nil
}
