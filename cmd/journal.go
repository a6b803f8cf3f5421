package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jensroland/git-autofixup/internal/format"
	"github.com/jensroland/git-autofixup/internal/journal"
	"github.com/jensroland/git-autofixup/internal/project"
)

func newJournalCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List the fixup commits recorded by recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := project.FindRoot()
			if err != nil {
				return err
			}
			j, err := journal.Open(project.NewPaths(root).JournalDB)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if jsonOutput {
				return printJournalJSON(cmd.OutOrStdout(), entries)
			}
			printJournal(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output entries as JSON")
	return cmd
}

func printJournal(w io.Writer, entries []*journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No fixup commits recorded.")
		return
	}

	var lastRun int64
	for _, e := range entries {
		if e.RunID != lastRun {
			fmt.Fprintf(w, "\n%srun %d%s  %s  %s..HEAD %s(%s)%s\n",
				format.Bold, e.RunID, format.Reset, e.Ts, e.Target, format.Dim, shortID(e.Root), format.Reset)
			lastRun = e.RunID
		}
		fmt.Fprintf(w, "  %s%s%s fixup! %s%s%s %s\n",
			format.Yellow, shortID(e.FixupCommit), format.Reset,
			format.Cyan, e.ShortID, format.Reset, e.Summary)
		fmt.Fprintf(w, "  %s%d hunks in %s%s\n",
			format.Dim, e.Hunks, strings.Join(e.Files, ", "), format.Reset)
	}
}

func printJournalJSON(w io.Writer, entries []*journal.Entry) error {
	if entries == nil {
		entries = []*journal.Entry{}
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
