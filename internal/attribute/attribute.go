// Package attribute decides which single commit, if any, owns each hunk of
// the working diff.
package attribute

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jensroland/git-autofixup/internal/blame"
	"github.com/jensroland/git-autofixup/internal/diff"
	"github.com/jensroland/git-autofixup/internal/history"
	"github.com/jensroland/git-autofixup/internal/lineset"
)

// Result is the ownership decision for one hunk. Owners holds the distinct
// canonical commits behind the hunk's pre-image lines, sorted by short id;
// the hunk is owned only when there is exactly one.
type Result struct {
	Hunk   diff.Hunk
	Owners []string
	// Lines is the attribution of each pre-image line, in order.
	Lines []blame.Entry

	shortIDs []string
	// lineOwners is the canonical owner of each entry in Lines, "" when the
	// line predates the range.
	lineOwners []string
}

// Owned reports whether exactly one commit owns the hunk.
func (r Result) Owned() bool {
	return len(r.Owners) == 1
}

// Owner returns the owning commit id, or "" for an ambiguous hunk.
func (r Result) Owner() string {
	if !r.Owned() {
		return ""
	}
	return r.Owners[0]
}

// Diagnostic describes why an ambiguous hunk was left alone. It is empty for
// owned hunks.
func (r Result) Diagnostic() string {
	switch {
	case r.Owned():
		return ""
	case len(r.Owners) == 0:
		return fmt.Sprintf("%s %s: no commit in range owns these lines", r.Hunk.File, r.Hunk.Range())
	default:
		return fmt.Sprintf("%s %s: lines belong to several commits: %s",
			r.Hunk.File, r.Hunk.Range(), strings.Join(r.shortIDs, ", "))
	}
}

// OwnerLines groups the hunk's pre-image line numbers by canonical owner.
// Lines that predate the range are left out.
func (r Result) OwnerLines() map[string]lineset.LineSet {
	byOwner := make(map[string][]int, len(r.Owners))
	for i, id := range r.lineOwners {
		if id != "" {
			byOwner[id] = append(byOwner[id], r.Hunk.OldStart+i)
		}
	}
	out := make(map[string]lineset.LineSet, len(byOwner))
	for id, nums := range byOwner {
		out[id] = lineset.New(nums...)
	}
	return out
}

// Attributor maps blamed lines through a history's fixup chains. Lines that
// still belong to Root, or to any boundary commit, predate the range and
// never count as an owner.
type Attributor struct {
	History *history.History
	Root    string
}

// Classify attributes one hunk using the blame of its file. It performs no
// I/O. An error means the hunk's range does not fit the blamed file.
func (a *Attributor) Classify(h diff.Hunk, idx *blame.Index) (Result, error) {
	lines, err := idx.Span(h.OldStart, h.OldCount)
	if err != nil {
		return Result{}, fmt.Errorf("%s %s: %w", h.File, h.Range(), err)
	}

	seen := make(map[string]bool)
	var owners []string
	lineOwners := make([]string, len(lines))
	for i, e := range lines {
		if e.Boundary || e.OwningID == a.Root {
			continue
		}
		id := a.History.Canonical(e.OwningID)
		if id == a.Root {
			continue
		}
		lineOwners[i] = id
		if seen[id] {
			continue
		}
		seen[id] = true
		owners = append(owners, id)
	}

	short := make(map[string]string, len(owners))
	for _, id := range owners {
		short[id] = a.History.ShortID(id)
	}
	sort.Slice(owners, func(i, j int) bool {
		if short[owners[i]] != short[owners[j]] {
			return short[owners[i]] < short[owners[j]]
		}
		return owners[i] < owners[j]
	})
	shortIDs := make([]string, len(owners))
	for i, id := range owners {
		shortIDs[i] = short[id]
	}

	return Result{Hunk: h, Owners: owners, Lines: lines, shortIDs: shortIDs, lineOwners: lineOwners}, nil
}

// ClassifyFile attributes every hunk of f in order.
func (a *Attributor) ClassifyFile(f diff.File, idx *blame.Index) ([]Result, error) {
	results := make([]Result, 0, len(f.Hunks))
	for _, h := range f.Hunks {
		r, err := a.Classify(h, idx)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
