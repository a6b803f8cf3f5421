package git

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// CommandError reports a git invocation that failed. ExitCode mirrors git's
// own exit status, or -1 when git could not be started.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Invocation describes one finished git command, for debug logging.
type Invocation struct {
	Args     []string `json:"args"`
	ExitCode int      `json:"exit_code"`
	Duration string   `json:"duration"`
	Stderr   string   `json:"stderr,omitempty"`
}

// Repo runs git commands inside a work tree.
type Repo struct {
	Root string
	// Trace, when set, is called after every command.
	Trace func(Invocation)
}

// New returns a Repo rooted at root.
func New(root string) *Repo {
	return &Repo{Root: root}
}

// run executes git with args, feeding stdin if non-nil, and returns stdout.
func (r *Repo) run(stdin io.Reader, env []string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	cmd.Stdin = stdin
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.trace(args, err, time.Since(start), stderr.String())
	if err != nil {
		return nil, commandError(args, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// runAttached executes git with the terminal attached, for commands that
// may open an editor.
func (r *Repo) runAttached(env []string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	start := time.Now()
	err := cmd.Run()
	r.trace(args, err, time.Since(start), "")
	if err != nil {
		return commandError(args, err, "")
	}
	return nil
}

func (r *Repo) trace(args []string, err error, d time.Duration, stderr string) {
	if r.Trace == nil {
		return
	}
	r.Trace(Invocation{
		Args:     args,
		ExitCode: exitCode(err),
		Duration: d.Round(time.Millisecond).String(),
		Stderr:   stderr,
	})
}

func commandError(args []string, err error, stderr string) *CommandError {
	return &CommandError{Args: args, ExitCode: exitCode(err), Stderr: stderr, Err: err}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// ResolveCommit turns any revision expression into a full commit id.
func (r *Repo) ResolveCommit(rev string) (string, error) {
	out, err := r.run(nil, nil, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rev, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// HeadSHA returns the current HEAD commit SHA.
func (r *Repo) HeadSHA() (string, error) {
	out, err := r.run(nil, nil, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
