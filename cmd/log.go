package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jensroland/git-autofixup/internal/format"
	"github.com/jensroland/git-autofixup/internal/project"
)

func newLogCmd() *cobra.Command {
	var lines int
	var last bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the debug log of git commands run with --debug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := project.FindRoot()
			if err != nil {
				return err
			}
			paths := project.NewPaths(root)
			if last {
				cmdLastEntries(cmd.OutOrStdout(), paths, 3)
				return nil
			}
			cmdLog(cmd.OutOrStdout(), paths, lines)
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "Number of trailing lines to show")
	cmd.Flags().BoolVar(&last, "last", false, "Show only the last few logged commands")
	return cmd
}

func cmdLog(w io.Writer, paths project.Paths, n int) {
	logFile := filepath.Join(paths.LogDir, gitLogName)

	data, err := os.ReadFile(logFile)
	if err != nil {
		fmt.Fprintf(w, "No log file at %s\n", logFile)
		return
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	start := 0
	if len(lines) > n {
		start = len(lines) - n
	}
	tail := lines[start:]

	fmt.Fprintf(w, "%s--- %s (last %d lines) ---%s\n\n", format.Dim, logFile, len(tail), format.Reset)
	fmt.Fprintln(w, strings.Join(tail, "\n"))
}

// cmdLastEntries prints the final n separator-delimited entries.
func cmdLastEntries(w io.Writer, paths project.Paths, n int) {
	logFile := filepath.Join(paths.LogDir, gitLogName)
	data, err := os.ReadFile(logFile)
	if err != nil {
		fmt.Fprintf(w, "No log file at %s\n", logFile)
		return
	}

	fmt.Fprintf(w, "\n%s=== %s (last entries) ===%s\n\n", format.Bold, gitLogName, format.Reset)
	entries := strings.Split(string(data), strings.Repeat("=", 60))
	start := len(entries) - n
	if start < 0 {
		start = 0
	}
	for _, entry := range entries[start:] {
		trimmed := strings.TrimSpace(entry)
		if trimmed != "" {
			fmt.Fprintln(w, trimmed)
			fmt.Fprintln(w)
		}
	}
}
