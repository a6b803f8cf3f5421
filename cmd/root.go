package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jensroland/git-autofixup/internal/config"
	"github.com/jensroland/git-autofixup/internal/debug"
	"github.com/jensroland/git-autofixup/internal/fixup"
	"github.com/jensroland/git-autofixup/internal/format"
	"github.com/jensroland/git-autofixup/internal/git"
	"github.com/jensroland/git-autofixup/internal/journal"
	"github.com/jensroland/git-autofixup/internal/project"
)

const gitLogName = "git.log"

type rootFlags struct {
	rebase    bool
	noEdit    bool
	context   int
	dryRun    bool
	debug     bool
	verbose   bool
	noJournal bool
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	return run(version, os.Args[1:], os.Stdout, os.Stderr)
}

func run(version string, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	format.NewReporter(stderr, false).Error("%v", err)
	return exitCode(err)
}

// exitCode maps an error to the process status: 2 for a dirty index, git's
// own status for a failed git command, 1 otherwise.
func exitCode(err error) int {
	var pe *fixup.PreconditionError
	if errors.As(err, &pe) {
		return 2
	}
	var ce *git.CommandError
	if errors.As(err, &ce) && ce.ExitCode > 0 {
		return ce.ExitCode
	}
	return 1
}

// NewRootCmd builds the git-autofixup command tree.
func NewRootCmd(version string) *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "git-autofixup <revision> [paths...]",
		Short: "Create fixup commits for the commits that last touched your changed lines",
		Long: `git-autofixup splits the unstaged changes in the working tree by the commit
in <revision>..HEAD that each hunk amends, and records one "fixup!" commit per
owning commit. Hunks touching lines from several commits, or from none, are
reported and left in the working tree.

Everything after <revision> is a path filter. A branch or tag named "journal"
or "log" collides with a subcommand; pass it as refs/heads/log or log^{}.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixup(cmd, f, args[0], args[1:])
		},
	}

	fl := cmd.Flags()
	fl.SetInterspersed(false)
	fl.BoolVarP(&f.rebase, "rebase", "r", false, "Run git rebase --autosquash afterwards")
	fl.BoolVar(&f.noEdit, "no-edit", false, "With --rebase: accept the rebase todo list without an editor")
	fl.IntVarP(&f.context, "context", "U", 3, "Lines of context around each hunk")
	fl.BoolVarP(&f.dryRun, "dry-run", "n", false, "Print the fixup patches instead of committing them")
	fl.BoolVar(&f.debug, "debug", false, "Log every git command under the repository's autofixup/logs")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Show ambiguous hunks side by side")
	fl.BoolVar(&f.noJournal, "no-journal", false, "Do not record fixup commits in the journal")

	cmd.AddCommand(newJournalCmd(), newLogCmd())
	return cmd
}

// apply overrides cfg with every flag the user set explicitly.
func (f *rootFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("rebase") {
		cfg.Rebase.Auto = f.rebase
	}
	if fl.Changed("no-edit") {
		cfg.Rebase.Interactive = !f.noEdit
	}
	if fl.Changed("context") {
		cfg.Diff.Context = f.context
	}
	if fl.Changed("debug") {
		cfg.Log.Debug = f.debug
	}
	if fl.Changed("no-journal") {
		cfg.Journal.Enabled = !f.noJournal
	}
	return cfg.Validate()
}

func runFixup(cmd *cobra.Command, f *rootFlags, target string, pathArgs []string) error {
	root, err := project.FindRoot()
	if err != nil {
		return err
	}
	paths := project.NewPaths(root)

	cfg, err := config.Load(paths.RepoConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := f.apply(cmd, cfg); err != nil {
		return err
	}

	report := format.NewReporter(cmd.ErrOrStderr(), f.verbose)
	repo := git.New(root)

	var logger *debug.Logger
	if cfg.Log.Debug {
		logger = debug.New(paths.LogDir, gitLogName)
		repo.Trace = func(inv git.Invocation) {
			logger.Log("git "+strings.Join(inv.Args, " "), inv)
		}
	}

	var j *journal.Journal
	if cfg.Journal.Enabled && !f.dryRun {
		j, err = journal.Open(paths.JournalDB)
		if err != nil {
			report.Warn("journal disabled: %v", err)
			j = nil
		} else {
			defer j.Close()
		}
	}

	pathspecs, err := absPaths(pathArgs)
	if err != nil {
		return err
	}

	runner := &fixup.Runner{
		Repo:    repo,
		Report:  report,
		Out:     cmd.OutOrStdout(),
		Journal: j,
		Log:     logger,
	}
	_, err = runner.Run(fixup.Options{
		Target:      target,
		Paths:       pathspecs,
		Context:     cfg.Diff.Context,
		DryRun:      f.dryRun,
		Rebase:      cfg.Rebase.Auto,
		Interactive: cfg.Rebase.Interactive,
	})
	return err
}

// absPaths makes path filters independent of the current directory, since
// git runs from the work tree root.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
