package git

import (
	"fmt"
	"strconv"
	"strings"
)

// StagedFiles lists paths with staged changes, limited to paths when given.
func (r *Repo) StagedFiles(paths []string) ([]string, error) {
	args := append([]string{"diff", "--cached", "--name-only", "-z", "--"}, paths...)
	out, err := r.run(nil, nil, args...)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range strings.Split(string(out), "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// WorkingDiff returns the unstaged diff of modified files, limited to paths
// when given, with context lines of context.
func (r *Repo) WorkingDiff(paths []string, context int) ([]byte, error) {
	args := []string{
		"-c", "core.quotePath=false",
		"-c", "diff.suppressBlankEmpty=false",
		"diff", "--no-ext-diff", "--no-color", "--no-renames", "--no-textconv",
		"--src-prefix=a/", "--dst-prefix=b/", "--diff-filter=M", "-U" + strconv.Itoa(context), "--",
	}
	args = append(args, paths...)
	out, err := r.run(nil, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}
	return out, nil
}

// ApplyCached stages a patch without touching the work tree. Zero-context
// patches need unidiffZero.
func (r *Repo) ApplyCached(patch string, unidiffZero bool) error {
	args := []string{"apply", "--cached"}
	if unidiffZero {
		args = append(args, "--unidiff-zero")
	}
	_, err := r.run(strings.NewReader(patch), nil, args...)
	return err
}

// CommitFixup records the index as a fixup of commit, quietly and without
// running hooks.
func (r *Repo) CommitFixup(commit string) error {
	_, err := r.run(nil, nil, "commit", "--quiet", "--no-verify", "--fixup="+commit)
	return err
}

// RebaseAutosquash rewrites root..HEAD, folding fixup commits into their
// targets. Without interactive, the todo list is accepted unedited.
func (r *Repo) RebaseAutosquash(root string, interactive bool) error {
	var env []string
	if !interactive {
		env = append(env, "GIT_SEQUENCE_EDITOR=true")
	}
	return r.runAttached(env, "rebase", "--interactive", "--autosquash", root)
}
