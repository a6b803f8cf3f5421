// Package history turns the commit log between a root and HEAD into
// revision records with every fixup chain collapsed onto its target.
package history

import (
	"strings"

	"github.com/jensroland/git-autofixup/internal/scan"
)

// LogEntry is one raw commit as reported by git log.
type LogEntry struct {
	FullID  string
	ShortID string
	Summary string
}

// Revision is a commit in the rewrite range. Fixes names the commit this one
// ultimately amends; it equals FullID when the commit introduces new content.
type Revision struct {
	FullID  string
	ShortID string
	Summary string
	Fixes   string
}

// IsFixup reports whether the revision amends an earlier one.
func (r Revision) IsFixup() bool {
	return r.Fixes != r.FullID
}

var markers = []string{"fixup!", "squash!"}

// NormalizeSummary strips any number of leading "fixup!" / "squash!" markers
// and the whitespace around them. Applying it twice yields the same result.
func NormalizeSummary(summary string) string {
	s := strings.TrimSpace(summary)
	for {
		stripped := false
		for _, m := range markers {
			if strings.HasPrefix(s, m) {
				s = strings.TrimSpace(s[len(m):])
				stripped = true
			}
		}
		if !stripped {
			return s
		}
	}
}

// History is the ordered, immutable list of revisions (oldest first) plus the
// fixup-chain map from every commit id to its canonical target.
type History struct {
	revisions []Revision
	fixes     map[string]string
	byID      map[string]int
}

// Resolve builds a History from log entries ordered oldest to newest.
// Each normalized summary maps to the first commit that carried it, so every
// chain collapses to depth one.
func Resolve(entries []LogEntry) *History {
	h := &History{
		revisions: make([]Revision, 0, len(entries)),
		fixes:     make(map[string]string, len(entries)),
		byID:      make(map[string]int, len(entries)),
	}
	firstByKey := make(map[string]string, len(entries))

	for _, e := range entries {
		key := NormalizeSummary(e.Summary)
		target, ok := firstByKey[key]
		if !ok {
			target = e.FullID
			firstByKey[key] = target
		}
		h.byID[e.FullID] = len(h.revisions)
		h.revisions = append(h.revisions, Revision{
			FullID:  e.FullID,
			ShortID: e.ShortID,
			Summary: e.Summary,
			Fixes:   target,
		})
		h.fixes[e.FullID] = target
	}
	return h
}

// Revisions returns the revisions oldest first. The slice must not be modified.
func (h *History) Revisions() []Revision {
	return h.revisions
}

// Len returns the number of revisions in the range.
func (h *History) Len() int {
	return len(h.revisions)
}

// Canonical maps a commit id to the commit it ultimately amends. Ids outside
// the range map to themselves, as do already-canonical ids.
func (h *History) Canonical(id string) string {
	if target, ok := h.fixes[id]; ok {
		return target
	}
	return id
}

// Lookup returns the revision with the given full id.
func (h *History) Lookup(id string) (Revision, bool) {
	i, ok := h.byID[id]
	if !ok {
		return Revision{}, false
	}
	return h.revisions[i], true
}

// ShortID returns the abbreviated id for a revision, or the first seven
// characters of id when it is not part of the range.
func (h *History) ShortID(id string) string {
	if r, ok := h.Lookup(id); ok {
		return r.ShortID
	}
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// ParseLog parses NUL-separated "<full> <short> <summary>" records as produced
// by `git log -z --format='%H %h %s'`. git emits newest first; the result is
// reversed to oldest first.
func ParseLog(out []byte) ([]LogEntry, error) {
	raw := strings.TrimSuffix(string(out), "\x00")
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	records := strings.Split(raw, "\x00")
	entries := make([]LogEntry, 0, len(records))
	for i, rec := range records {
		rec = strings.TrimPrefix(rec, "\n")
		full, rest, ok := strings.Cut(rec, " ")
		if !ok || !scan.IsObjectID(full) {
			return nil, &scan.FormatError{Input: "log", Line: i + 1, Text: rec, Reason: "expected full commit id"}
		}
		short, summary, ok := strings.Cut(rest, " ")
		if !ok {
			// An empty subject leaves no separator after the short id.
			short, summary = rest, ""
		}
		if short == "" || !strings.HasPrefix(full, short) {
			return nil, &scan.FormatError{Input: "log", Line: i + 1, Text: rec, Reason: "short id is not a prefix of the full id"}
		}
		entries = append(entries, LogEntry{FullID: full, ShortID: short, Summary: summary})
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
