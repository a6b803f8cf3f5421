package git

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCommit(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\n")
	head := strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))
	commitFile(t, dir, "test.txt", "line1\nline2\n", "second")

	repo := New(dir)
	got, err := repo.ResolveCommit("HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, head, got)

	_, err = repo.ResolveCommit("no-such-branch")
	var ce *CommandError
	require.True(t, errors.As(err, &ce), "want CommandError, got %v", err)
	assert.Equal(t, 1, ce.ExitCode)
}

func TestHeadSHA(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\n")
	sha, err := New(dir).HeadSHA()
	require.NoError(t, err)
	assert.Len(t, sha, 40)

	_, err = New(t.TempDir()).HeadSHA()
	var ce *CommandError
	require.True(t, errors.As(err, &ce), "want CommandError, got %v", err)
	assert.Equal(t, 128, ce.ExitCode)
}

func TestTrace(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\n")

	var seen []Invocation
	repo := New(dir)
	repo.Trace = func(inv Invocation) { seen = append(seen, inv) }

	_, _ = repo.HeadSHA()
	_, _ = repo.ResolveCommit("missing")

	require.Len(t, seen, 2)
	assert.Equal(t, []string{"rev-parse", "HEAD"}, seen[0].Args)
	assert.Equal(t, 0, seen[0].ExitCode)
	assert.NotZero(t, seen[1].ExitCode)
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{
		Args:     []string{"apply", "--cached"},
		ExitCode: 1,
		Stderr:   "error: patch failed\n",
		Err:      errors.New("exit status 1"),
	}
	assert.Equal(t, "git apply --cached: exit status 1: error: patch failed", err.Error())
	assert.Equal(t, "exit status 1", errors.Unwrap(err).Error())
}
