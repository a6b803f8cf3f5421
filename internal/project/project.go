package project

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Paths holds all relevant locations for a repository.
type Paths struct {
	Root       string // git work tree root
	GitDir     string // .git/ or the worktree's gitdir
	CacheDir   string // <gitdir>/autofixup/
	LogDir     string // <gitdir>/autofixup/logs/
	JournalDB  string // <gitdir>/autofixup/journal.db
	RepoConfig string // <root>/.autofixup.toml
}

// FindRoot returns the top of the work tree containing the current directory.
func FindRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// NewPaths constructs all path constants from a work tree root.
func NewPaths(root string) Paths {
	gitDir := resolveGitDir(root)
	cache := filepath.Join(gitDir, "autofixup")
	return Paths{
		Root:       root,
		GitDir:     gitDir,
		CacheDir:   cache,
		LogDir:     filepath.Join(cache, "logs"),
		JournalDB:  filepath.Join(cache, "journal.db"),
		RepoConfig: filepath.Join(root, ".autofixup.toml"),
	}
}

// resolveGitDir follows a "gitdir: <path>" pointer file, as found in linked
// worktrees and submodules. Anything else falls back to <root>/.git.
func resolveGitDir(root string) string {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil || info.IsDir() {
		return dotGit
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return dotGit
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "gitdir: ") {
		return dotGit
	}
	target := strings.TrimPrefix(line, "gitdir: ")
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return target
}
