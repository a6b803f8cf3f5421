package fixup

import (
	"github.com/jensroland/git-autofixup/internal/git"
	"github.com/jensroland/git-autofixup/internal/history"
	"github.com/jensroland/git-autofixup/internal/patch"
)

// Driver turns fragments into fixup commits, one revision at a time.
type Driver struct {
	Repo *git.Repo
	// UnidiffZero must be set when fragments carry no context lines.
	UnidiffZero bool
}

// Apply stages frag and commits it as a fixup of rev, returning the new
// commit id. Staging must succeed before the commit is attempted.
func (d *Driver) Apply(rev history.Revision, frag *patch.Fragment) (string, error) {
	if err := d.Repo.ApplyCached(frag.String(), d.UnidiffZero); err != nil {
		return "", &ApplyError{Phase: PhaseStage, Revision: rev, Err: err}
	}
	if err := d.Repo.CommitFixup(rev.FullID); err != nil {
		return "", &ApplyError{Phase: PhaseCommit, Revision: rev, Err: err}
	}
	id, err := d.Repo.HeadSHA()
	if err != nil {
		return "", &ApplyError{Phase: PhaseCommit, Revision: rev, Err: err}
	}
	return id, nil
}

// Plan orders the fragments of set by the history, oldest revision first.
// Owners missing from the history follow in id order.
func Plan(hist *history.History, set *patch.Set) []Step {
	var steps []Step
	seen := make(map[string]bool, set.Len())
	for _, rev := range hist.Revisions() {
		if frag, ok := set.Get(rev.FullID); ok {
			steps = append(steps, Step{Revision: rev, Fragment: frag})
			seen[rev.FullID] = true
		}
	}
	for _, id := range set.Owners() {
		if seen[id] {
			continue
		}
		frag, _ := set.Get(id)
		steps = append(steps, Step{
			Revision: history.Revision{FullID: id, ShortID: hist.ShortID(id), Fixes: id},
			Fragment: frag,
		})
	}
	return steps
}

// Step pairs a revision with the fragment that fixes it.
type Step struct {
	Revision history.Revision
	Fragment *patch.Fragment
}
