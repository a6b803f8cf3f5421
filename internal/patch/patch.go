// Package patch reassembles owned hunks into one applicable patch per
// owning commit.
package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jensroland/git-autofixup/internal/attribute"
	"github.com/jensroland/git-autofixup/internal/diff"
)

// Fragment is the part of the working diff that belongs to one commit.
// Each file's text starts with a minimal git header, written once when the
// file's first hunk is added.
type Fragment struct {
	Owner string

	text  map[string]*strings.Builder
	hunks map[string][]diff.Hunk
}

// NewFragment returns an empty fragment for owner.
func NewFragment(owner string) *Fragment {
	return &Fragment{
		Owner: owner,
		text:  make(map[string]*strings.Builder),
		hunks: make(map[string][]diff.Hunk),
	}
}

// Add appends a hunk to its file's section. Hunks of one file must be added
// in diff order.
func (f *Fragment) Add(h diff.Hunk) {
	b, ok := f.text[h.File]
	if !ok {
		b = &strings.Builder{}
		writeHeader(b, h.File)
		f.text[h.File] = b
	}
	b.WriteString(h.Text())
	f.hunks[h.File] = append(f.hunks[h.File], h)
}

// Files returns the files in the fragment sorted by name.
func (f *Fragment) Files() []string {
	files := make([]string, 0, len(f.text))
	for name := range f.text {
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}

// FileText returns the patch text for one file.
func (f *Fragment) FileText(file string) string {
	if b, ok := f.text[file]; ok {
		return b.String()
	}
	return ""
}

// Hunks returns the hunks added for file, in diff order.
func (f *Fragment) Hunks(file string) []diff.Hunk {
	return f.hunks[file]
}

// HunkCount returns the number of hunks across all files.
func (f *Fragment) HunkCount() int {
	n := 0
	for _, hs := range f.hunks {
		n += len(hs)
	}
	return n
}

// Empty reports whether no hunk has been added.
func (f *Fragment) Empty() bool {
	return len(f.text) == 0
}

// String returns the whole patch, files in name order.
func (f *Fragment) String() string {
	var b strings.Builder
	for _, name := range f.Files() {
		b.WriteString(f.text[name].String())
	}
	return b.String()
}

// Set holds one fragment per owning commit.
type Set struct {
	byOwner map[string]*Fragment
}

// Aggregate groups the owned results by owner. Ambiguous results are
// ignored. Results must be in diff order.
func Aggregate(results []attribute.Result) *Set {
	s := &Set{byOwner: make(map[string]*Fragment)}
	for _, r := range results {
		if !r.Owned() {
			continue
		}
		frag, ok := s.byOwner[r.Owner()]
		if !ok {
			frag = NewFragment(r.Owner())
			s.byOwner[r.Owner()] = frag
		}
		frag.Add(r.Hunk)
	}
	return s
}

// Get returns the fragment owned by id.
func (s *Set) Get(id string) (*Fragment, bool) {
	f, ok := s.byOwner[id]
	return f, ok
}

// Len returns the number of owners with a fragment.
func (s *Set) Len() int {
	return len(s.byOwner)
}

// Owners returns the owning commit ids, sorted.
func (s *Set) Owners() []string {
	ids := make([]string, 0, len(s.byOwner))
	for id := range s.byOwner {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func writeHeader(b *strings.Builder, file string) {
	a, bn := quotePath("a/"+file), quotePath("b/"+file)
	fmt.Fprintf(b, "diff --git %s %s\n", a, bn)
	// git ends ---/+++ names containing a space with a tab.
	tab := ""
	if strings.Contains(file, " ") {
		tab = "\t"
	}
	fmt.Fprintf(b, "--- %s%s\n", a, tab)
	fmt.Fprintf(b, "+++ %s%s\n", bn, tab)
}

// quotePath C-quotes a path the way git does when it holds control
// characters, a double quote or a backslash. Other bytes pass through.
func quotePath(p string) string {
	needs := false
	for i := 0; i < len(p); i++ {
		if c := p[i]; c < 0x20 || c == '"' || c == '\\' || c == 0x7f {
			needs = true
			break
		}
	}
	if !needs {
		return p
	}

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
