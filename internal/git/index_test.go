package git

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedFiles(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "a\n")
	repo := New(dir)

	files, err := repo.StagedFiles(nil)
	require.NoError(t, err)
	assert.Empty(t, files)

	writeFile(t, dir, "sub/b.txt", "b\n")
	run(t, dir, "add", "sub/b.txt")

	files, err = repo.StagedFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/b.txt"}, files)

	files, err = repo.StagedFiles([]string{"a.txt"})
	require.NoError(t, err)
	assert.Empty(t, files, "path filter excludes other staged files")
}

func TestWorkingDiff(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "one\ntwo\nthree\n")
	commitFile(t, dir, "b.txt", "b\n", "add b")
	repo := New(dir)

	writeFile(t, dir, "a.txt", "one\nTWO\nthree\n")
	writeFile(t, dir, "b.txt", "B\n")
	writeFile(t, dir, "new.txt", "untracked\n")

	out, err := repo.WorkingDiff(nil, 0)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "diff --git a/a.txt b/a.txt\n")
	assert.Contains(t, text, "@@ -2 +2 @@\n-two\n+TWO\n")
	assert.Contains(t, text, "diff --git a/b.txt b/b.txt\n")
	assert.NotContains(t, text, "new.txt")

	out, err = repo.WorkingDiff([]string{"b.txt"}, 3)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "a.txt")
	assert.Contains(t, string(out), "-b\n+B\n")
}

func TestWorkingDiff_BlankContextKeepsSpace(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "a\n\nb\nC\n")
	run(t, dir, "config", "diff.suppressBlankEmpty", "true")
	writeFile(t, dir, "a.txt", "a\n\nb\nCC\n")

	out, err := New(dir).WorkingDiff(nil, 3)
	require.NoError(t, err)
	assert.Contains(t, string(out), "@@ -1,4 +1,4 @@\n a\n \n b\n-C\n+CC\n")
}

func TestWorkingDiff_IgnoresDeletedFiles(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "a\n")
	commitFile(t, dir, "b.txt", "b\n", "add b")
	run(t, dir, "rm", "-q", "--cached", "b.txt")
	run(t, dir, "commit", "-q", "-m", "untrack b")
	run(t, dir, "rm", "-q", "a.txt")
	run(t, dir, "reset", "-q")

	out, err := New(dir).WorkingDiff(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, string(out))
}

func TestApplyCachedAndCommitFixup(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "one\ntwo\nthree\n")
	target := commitFile(t, dir, "a.txt", "one\ntwo\nthree\nfour\n", "Add four")
	repo := New(dir)

	writeFile(t, dir, "a.txt", "one\ntwo\nthree\nFOUR\n")
	patch, err := repo.WorkingDiff(nil, 0)
	require.NoError(t, err)

	require.NoError(t, repo.ApplyCached(string(patch), true))
	staged, err := repo.StagedFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, staged)

	require.NoError(t, repo.CommitFixup(target))
	subject := strings.TrimSpace(run(t, dir, "log", "-1", "--format=%s"))
	assert.Equal(t, "fixup! Add four", subject)

	remaining, err := repo.WorkingDiff(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, string(remaining))
}

func TestApplyCached_BadPatch(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "one\n")
	repo := New(dir)

	err := repo.ApplyCached("diff --git a/a.txt b/a.txt\n--- a/a.txt\n+++ b/a.txt\n@@ -1 +1 @@\n-nope\n+x\n", false)
	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.NotZero(t, ce.ExitCode)
	assert.Equal(t, []string{"apply", "--cached"}, ce.Args)
}

func TestRebaseAutosquash_NonInteractive(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "base\n")
	root := strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))
	target := commitFile(t, dir, "b.txt", "b\n", "Add b")
	commitFile(t, dir, "c.txt", "c\n", "Add c")
	writeFile(t, dir, "b.txt", "B\n")
	run(t, dir, "add", "b.txt")
	run(t, dir, "commit", "-q", "--fixup="+target)

	require.NoError(t, New(dir).RebaseAutosquash(root, false))

	subjects := strings.Fields(strings.ReplaceAll(run(t, dir, "log", "--format=%s|", root+"..HEAD"), " ", "_"))
	assert.Equal(t, []string{"Add_c|", "Add_b|"}, subjects)
	assert.Equal(t, "B\n", run(t, dir, "show", "HEAD~1:b.txt"))
}
