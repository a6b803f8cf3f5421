// Package fixup runs the whole attribution pipeline: it splits the working
// diff by the commit each hunk amends and records one fixup commit per
// owning commit.
package fixup

import (
	"fmt"
	"io"

	"github.com/jensroland/git-autofixup/internal/attribute"
	"github.com/jensroland/git-autofixup/internal/blame"
	"github.com/jensroland/git-autofixup/internal/debug"
	"github.com/jensroland/git-autofixup/internal/diff"
	"github.com/jensroland/git-autofixup/internal/format"
	"github.com/jensroland/git-autofixup/internal/git"
	"github.com/jensroland/git-autofixup/internal/history"
	"github.com/jensroland/git-autofixup/internal/journal"
	"github.com/jensroland/git-autofixup/internal/patch"
)

// Options controls one run.
type Options struct {
	// Target is the comparison root, any revision expression.
	Target string
	// Paths limits the run to these pathspecs.
	Paths   []string
	Context int
	// DryRun prints fragments instead of committing them.
	DryRun      bool
	Rebase      bool
	Interactive bool
}

// Summary counts what a run did.
type Summary struct {
	Hunks      int
	Attributed int
	Ambiguous  int
	Skipped    int
	Commits    int
}

// Runner wires the pipeline to its collaborators.
type Runner struct {
	Repo   *git.Repo
	Report *format.Reporter
	// Out receives dry-run fragments.
	Out io.Writer
	// Journal, when set, records every fixup commit.
	Journal *journal.Journal
	Log     *debug.Logger
}

// Run executes the pipeline. It returns a *PreconditionError before touching
// anything when files are staged, and stops at the first *ApplyError.
func (r *Runner) Run(opts Options) (*Summary, error) {
	sum := &Summary{}

	root, err := r.Repo.ResolveCommit(opts.Target)
	if err != nil {
		return sum, err
	}
	r.Log.Log("resolved root", map[string]string{"target": opts.Target, "root": root})

	staged, err := r.Repo.StagedFiles(opts.Paths)
	if err != nil {
		return sum, err
	}
	if len(staged) > 0 {
		return sum, &PreconditionError{Files: staged}
	}

	logOut, err := r.Repo.Log(root)
	if err != nil {
		return sum, err
	}
	entries, err := history.ParseLog(logOut)
	if err != nil {
		return sum, err
	}
	hist := history.Resolve(entries)
	r.Log.Log("history", hist.Revisions())

	diffOut, err := r.Repo.WorkingDiff(opts.Paths, opts.Context)
	if err != nil {
		return sum, err
	}
	parsed, err := diff.Parse(diffOut)
	if err != nil {
		return sum, err
	}
	for _, s := range parsed.Skipped {
		r.Report.Warn("%s: skipped (%s)", s.File, s.Reason)
	}
	sum.Skipped = len(parsed.Skipped)
	sum.Hunks = parsed.HunkCount()
	if sum.Hunks == 0 {
		r.Report.Info("nothing changed")
		return sum, nil
	}

	results, err := r.attribute(hist, root, parsed.Files)
	if err != nil {
		return sum, err
	}
	for _, res := range results {
		if res.Owned() {
			sum.Attributed++
			continue
		}
		sum.Ambiguous++
		r.Report.Warn("%s", res.Diagnostic())
		owned := res.OwnerLines()
		for _, id := range res.Owners {
			r.Report.Detail(fmt.Sprintf("  %s owns old line %s", hist.ShortID(id), owned[id]))
		}
		r.Report.Detail(format.FormatSideBySideDiff(
			res.Hunk.OldLines(), res.Hunk.NewLines(), ownerLabels(hist, root, res), format.TermWidth()))
	}

	set := patch.Aggregate(results)
	if set.Len() == 0 {
		r.Report.Info("no clean attribution found")
		return sum, nil
	}

	steps := Plan(hist, set)
	if opts.DryRun {
		for _, s := range steps {
			fmt.Fprintf(r.Out, "# fixup! %s %s\n%s", s.Revision.ShortID, s.Revision.Summary, s.Fragment.String())
		}
		r.summarize(sum)
		return sum, nil
	}

	if err := r.commit(steps, opts, root, sum); err != nil {
		return sum, err
	}
	r.summarize(sum)

	if opts.Rebase {
		return sum, r.Repo.RebaseAutosquash(root, opts.Interactive)
	}
	r.Report.Info("git rebase -i --autosquash %s would now cleanly reconcile", hist.ShortID(root))
	return sum, nil
}

func (r *Runner) attribute(hist *history.History, root string, files []diff.File) ([]attribute.Result, error) {
	attr := &attribute.Attributor{History: hist, Root: root}
	var results []attribute.Result
	for _, f := range files {
		out, err := r.Repo.Blame(root, f.Name)
		if err != nil {
			return nil, err
		}
		idx, err := blame.Parse(f.Name, out)
		if err != nil {
			return nil, err
		}
		fileResults, err := attr.ClassifyFile(f, idx)
		if err != nil {
			return nil, err
		}
		results = append(results, fileResults...)
	}
	return results, nil
}

func (r *Runner) commit(steps []Step, opts Options, root string, sum *Summary) error {
	d := &Driver{Repo: r.Repo, UnidiffZero: opts.Context == 0}

	var runID int64
	for _, s := range steps {
		commit, err := d.Apply(s.Revision, s.Fragment)
		if err != nil {
			return err
		}
		sum.Commits++
		files := s.Fragment.Files()
		r.Report.Fixup(s.Revision.ShortID, s.Revision.Summary, s.Fragment.HunkCount(), files)

		if r.Journal == nil {
			continue
		}
		if runID == 0 {
			if runID, err = r.Journal.BeginRun(opts.Target, root); err != nil {
				r.Report.Warn("journal: %v", err)
				r.Journal = nil
				continue
			}
		}
		err = r.Journal.Record(runID, journal.Entry{
			Revision:    s.Revision.FullID,
			ShortID:     s.Revision.ShortID,
			Summary:     s.Revision.Summary,
			Files:       files,
			Hunks:       s.Fragment.HunkCount(),
			FixupCommit: commit,
		})
		if err != nil {
			r.Report.Warn("journal: %v", err)
		}
	}
	return nil
}

func (r *Runner) summarize(sum *Summary) {
	r.Report.Info("%d of %d hunks attributed, %d ambiguous, %d files skipped, %d fixup commits",
		sum.Attributed, sum.Hunks, sum.Ambiguous, sum.Skipped, sum.Commits)
}

// ownerLabels names the commit behind each pre-image line of an ambiguous
// hunk. Lines that predate the range are marked with "^".
func ownerLabels(hist *history.History, root string, res attribute.Result) []string {
	labels := make([]string, len(res.Lines))
	for i, e := range res.Lines {
		if e.Boundary || e.OwningID == root {
			labels[i] = "^"
			continue
		}
		labels[i] = hist.ShortID(hist.Canonical(e.OwningID))
	}
	return labels
}
