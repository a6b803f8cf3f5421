package fixup

import (
	"fmt"
	"strings"

	"github.com/jensroland/git-autofixup/internal/history"
)

// PreconditionError reports staged changes that a run would mix into its
// fixup commits. Nothing has been modified when it is returned.
type PreconditionError struct {
	Files []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("index has staged changes (%s); commit or unstage them first",
		strings.Join(e.Files, ", "))
}

// Phase names the half of a fragment application that failed.
type Phase string

const (
	PhaseStage  Phase = "stage"
	PhaseCommit Phase = "commit"
)

// ApplyError reports a fragment that could not be turned into a fixup
// commit. After a PhaseCommit failure the fragment is still staged.
type ApplyError struct {
	Phase    Phase
	Revision history.Revision
	Err      error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s fixup for %s %q: %v", e.Phase, e.Revision.ShortID, e.Revision.Summary, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
