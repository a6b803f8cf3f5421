// Package diff parses `git diff` output for modified files into hunks that
// keep their text verbatim, so subsets of them can be reassembled into
// patches git will apply.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jensroland/git-autofixup/internal/scan"
)

// Hunk is one "@@" block of a file's diff. Header and Body hold the original
// lines without their newline terminators.
type Hunk struct {
	File     string
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Header   string
	Body     []string
}

// Range returns the "@@ -a,b +c,d @@" portion of the header as written.
func (h Hunk) Range() string {
	if i := strings.Index(h.Header[2:], "@@"); i >= 0 {
		return h.Header[:i+4]
	}
	return h.Header
}

// Text returns the hunk exactly as it appeared in the diff.
func (h Hunk) Text() string {
	var b strings.Builder
	b.WriteString(h.Header)
	b.WriteByte('\n')
	for _, l := range h.Body {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// OldLines returns the pre-image text of the hunk: context and removed lines.
func (h Hunk) OldLines() []string {
	return h.side('-')
}

// NewLines returns the post-image text of the hunk: context and added lines.
func (h Hunk) NewLines() []string {
	return h.side('+')
}

func (h Hunk) side(keep byte) []string {
	var out []string
	for _, l := range h.Body {
		if l == "" || l[0] == '\\' {
			continue
		}
		if l[0] == ' ' || l[0] == keep {
			out = append(out, l[1:])
		}
	}
	return out
}

// File is the diff of one modified path.
type File struct {
	Name  string
	Hunks []Hunk
}

// Skip records a file section that carries no patchable text hunks.
type Skip struct {
	File   string
	Reason string
}

// Skip reasons.
const (
	SkipModeChange = "mode change only"
	SkipSubmodule  = "submodule pointer change"
	SkipBinary     = "binary content"
)

// Result is a parsed diff: file sections in the order they appeared, and the
// sections that were recognised but produce no hunks.
type Result struct {
	Files   []File
	Skipped []Skip
}

// HunkCount returns the total number of hunks across all files.
func (r *Result) HunkCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Hunks)
	}
	return n
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

const (
	diffHeaderPrefix = "diff --git "
	submoduleMarker  = "Subproject commit "
)

// Parse reads the output of `git diff` restricted to modified files. Any line
// that does not fit the grammar aborts parsing with a *scan.FormatError.
func Parse(out []byte) (*Result, error) {
	p := &parser{lines: scan.NewLines("diff", out)}
	return p.parse()
}

type parser struct {
	lines *scan.Lines
	res   Result
}

func (p *parser) parse() (*Result, error) {
	for !p.lines.Done() {
		if err := p.section(); err != nil {
			return nil, err
		}
	}
	return &p.res, nil
}

// atSectionEnd reports whether the next line starts a new file or the input
// is exhausted.
func (p *parser) atSectionEnd() bool {
	next, ok := p.lines.Peek()
	return !ok || strings.HasPrefix(next, diffHeaderPrefix)
}

// section parses one "diff --git" block.
func (p *parser) section() error {
	line, _ := p.lines.Next()
	if !strings.HasPrefix(line, diffHeaderPrefix) {
		return p.lines.Errorf("expected %q header", strings.TrimSpace(diffHeaderPrefix))
	}
	name, err := parseHeaderPaths(line[len(diffHeaderPrefix):])
	if err != nil {
		return p.lines.Errorf("%v", err)
	}

	// Extended header: optional mode change, then an optional index line.
	modeChange := false
	if next, ok := p.lines.Peek(); ok && strings.HasPrefix(next, "old mode ") {
		p.lines.Next()
		line, ok := p.lines.Next()
		if !ok || !strings.HasPrefix(line, "new mode ") {
			return p.lines.Errorf("expected new mode after old mode")
		}
		modeChange = true
	}
	if modeChange && p.atSectionEnd() {
		p.res.Skipped = append(p.res.Skipped, Skip{File: name, Reason: SkipModeChange})
		return nil
	}
	if next, ok := p.lines.Peek(); ok && strings.HasPrefix(next, "index ") {
		p.lines.Next()
	}
	if next, ok := p.lines.Peek(); ok && strings.HasPrefix(next, "Binary files ") {
		p.lines.Next()
		p.res.Skipped = append(p.res.Skipped, Skip{File: name, Reason: SkipBinary})
		return nil
	}

	if err := p.pathEcho("--- ", "a/"+name); err != nil {
		return err
	}
	if err := p.pathEcho("+++ ", "b/"+name); err != nil {
		return err
	}

	f := File{Name: name}
	for !p.atSectionEnd() {
		h, err := p.hunk(name)
		if err != nil {
			return err
		}
		f.Hunks = append(f.Hunks, h)
	}
	if len(f.Hunks) == 0 {
		return p.lines.EOFErrorf("%s: file header without hunks", name)
	}
	if isSubmoduleChange(f.Hunks) {
		p.res.Skipped = append(p.res.Skipped, Skip{File: name, Reason: SkipSubmodule})
		return nil
	}
	p.res.Files = append(p.res.Files, f)
	return nil
}

func (p *parser) pathEcho(prefix, want string) error {
	line, ok := p.lines.Next()
	if !ok {
		return p.lines.EOFErrorf("ended before %q line for %s", strings.TrimSpace(prefix), want)
	}
	if !strings.HasPrefix(line, prefix) {
		return p.lines.Errorf("expected %q line", strings.TrimSpace(prefix))
	}
	// git appends a tab to names containing spaces.
	got, err := unquotePath(strings.TrimSuffix(line[len(prefix):], "\t"))
	if err != nil || got != want {
		return p.lines.Errorf("path does not match header %q", want)
	}
	return nil
}

// hunk parses one hunk header and consumes exactly the body lines it counts.
func (p *parser) hunk(file string) (Hunk, error) {
	header, _ := p.lines.Next()
	m := hunkHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return Hunk{}, p.lines.Errorf("expected hunk header")
	}
	var nums [4]int
	for i, s := range m[1:5] {
		n, err := headerNumber(s)
		if err != nil {
			return Hunk{}, p.lines.Errorf("bad hunk header number %q", s)
		}
		nums[i] = n
	}
	h := Hunk{
		File:     file,
		OldStart: nums[0],
		OldCount: nums[1],
		NewStart: nums[2],
		NewCount: nums[3],
		Header:   header,
	}

	oldLeft, newLeft := h.OldCount, h.NewCount
	for oldLeft > 0 || newLeft > 0 {
		line, ok := p.lines.Next()
		if !ok {
			return Hunk{}, p.lines.EOFErrorf("%s: hunk %s ended with %d old and %d new lines missing", file, h.Range(), oldLeft, newLeft)
		}
		if line == "" {
			return Hunk{}, p.lines.Errorf("empty line inside hunk")
		}
		switch line[0] {
		case ' ':
			oldLeft--
			newLeft--
		case '-':
			oldLeft--
		case '+':
			newLeft--
		case '\\':
			// "\ No newline at end of file" belongs to the line before it.
		default:
			return Hunk{}, p.lines.Errorf("unexpected hunk line")
		}
		if oldLeft < 0 || newLeft < 0 {
			return Hunk{}, p.lines.Errorf("hunk has more lines than %s declares", h.Range())
		}
		h.Body = append(h.Body, line)
	}
	if next, ok := p.lines.Peek(); ok && strings.HasPrefix(next, "\\") {
		p.lines.Next()
		h.Body = append(h.Body, next)
	}

	if next, ok := p.lines.Peek(); ok && !strings.HasPrefix(next, "@@") && !strings.HasPrefix(next, diffHeaderPrefix) {
		p.lines.Next()
		return Hunk{}, p.lines.Errorf("unexpected line after hunk %s", h.Range())
	}
	return h, nil
}

// isSubmoduleChange matches the single "@@ -1 +1 @@" hunk git emits when a
// gitlink moves.
func isSubmoduleChange(hunks []Hunk) bool {
	if len(hunks) != 1 {
		return false
	}
	h := hunks[0]
	return h.Header == "@@ -1 +1 @@" &&
		len(h.Body) == 2 &&
		strings.HasPrefix(h.Body[0], "-"+submoduleMarker) &&
		strings.HasPrefix(h.Body[1], "+"+submoduleMarker)
}

// parseHeaderPaths extracts the path from "a/<path> b/<path>", where either
// side may be C-quoted. Renames are not expected, so both sides must agree.
func parseHeaderPaths(rest string) (string, error) {
	var a, b string
	if strings.HasPrefix(rest, `"`) {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return "", fmt.Errorf("bad quoted path")
		}
		a, _ = strconv.Unquote(q)
		tail := strings.TrimPrefix(rest[len(q):], " ")
		if b, err = unquotePath(tail); err != nil {
			return "", err
		}
	} else if strings.HasSuffix(rest, `"`) {
		i := strings.Index(rest, ` "b/`)
		if i < 0 {
			return "", fmt.Errorf("bad quoted path")
		}
		a = rest[:i]
		var err error
		if b, err = unquotePath(rest[i+1:]); err != nil {
			return "", err
		}
	} else {
		n := len(rest)
		if n < 5 || (n-5)%2 != 0 {
			return "", fmt.Errorf("header paths differ; renames are not supported")
		}
		half := (n - 5) / 2
		a, b = rest[:2+half], rest[2+half+1:]
	}

	if !strings.HasPrefix(a, "a/") || !strings.HasPrefix(b, "b/") {
		return "", fmt.Errorf("expected a/ and b/ path prefixes")
	}
	if a[2:] != b[2:] {
		return "", fmt.Errorf("header paths differ; renames are not supported")
	}
	return a[2:], nil
}

func unquotePath(s string) (string, error) {
	if strings.HasPrefix(s, `"`) {
		return strconv.Unquote(s)
	}
	return s, nil
}

// headerNumber reads one start or count field. An omitted count means 1.
func headerNumber(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	return strconv.Atoi(s)
}
