package git

import "fmt"

// Blame runs git blame --porcelain on file as of HEAD, limited to commits
// after root. Lines older than the range are blamed on the boundary commit.
func (r *Repo) Blame(root, file string) ([]byte, error) {
	out, err := r.run(nil, nil, "blame", "--porcelain", root+"..HEAD", "--", file)
	if err != nil {
		return nil, fmt.Errorf("git blame %s: %w", file, err)
	}
	return out, nil
}

// Log lists the commits in root..HEAD as NUL-terminated
// "<full> <short> <subject>" records, newest first.
func (r *Repo) Log(root string) ([]byte, error) {
	out, err := r.run(nil, nil, "log", "-z", "--format=%H %h %s", root+"..HEAD")
	if err != nil {
		return nil, fmt.Errorf("git log %s..HEAD: %w", root, err)
	}
	return out, nil
}
