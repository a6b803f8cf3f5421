package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupGitRepo creates a temp git repo with an initial commit containing a file.
func setupGitRepo(t *testing.T, fileName string, content string) string {
	t.Helper()
	dir := t.TempDir()

	run(t, dir, "init", "-q")
	run(t, dir, "config", "user.email", "test@test.com")
	run(t, dir, "config", "user.name", "Test")
	commitFile(t, dir, fileName, content, "initial commit")

	return dir
}

func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@test.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func commitFile(t *testing.T, dir, name, content, msg string) string {
	t.Helper()
	writeFile(t, dir, name, content)
	run(t, dir, "add", name)
	run(t, dir, "commit", "-q", "-m", msg)
	return strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))
}

func TestBlame(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\nline2\nline3\n")
	root := strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))
	second := commitFile(t, dir, "test.txt", "line1\nmodified\nline3\n", "modify line 2")

	out, err := New(dir).Blame(root, "test.txt")
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, root+" 1 1"), "line 1 is blamed on the boundary: %s", text)
	assert.Contains(t, text, second+" 2 2")
	assert.Contains(t, text, "\tmodified\n")
	assert.Contains(t, text, "\nboundary\n")
}

func TestBlame_MissingFile(t *testing.T) {
	dir := setupGitRepo(t, "test.txt", "line1\n")
	root := strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))

	_, err := New(dir).Blame(root, "nope.txt")
	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.NotZero(t, ce.ExitCode)
}

func TestLog(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "a\n")
	root := strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))
	first := commitFile(t, dir, "b.txt", "b\n", "Add b")
	second := commitFile(t, dir, "b.txt", "bb\n", "fixup! Add b")

	out, err := New(dir).Log(root)
	require.NoError(t, err)

	records := strings.Split(strings.TrimSuffix(string(out), "\x00"), "\x00")
	require.Len(t, records, 2)
	assert.True(t, strings.HasPrefix(strings.TrimPrefix(records[0], "\n"), second+" "))
	assert.True(t, strings.HasSuffix(records[0], " fixup! Add b"))
	assert.True(t, strings.HasPrefix(strings.TrimPrefix(records[1], "\n"), first+" "))
}

func TestLog_EmptyRange(t *testing.T) {
	dir := setupGitRepo(t, "a.txt", "a\n")
	head := strings.TrimSpace(run(t, dir, "rev-parse", "HEAD"))

	out, err := New(dir).Log(head)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(out)))
}
