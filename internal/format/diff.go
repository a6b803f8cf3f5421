package format

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const maxDisplayRows = 40

type diffRow struct {
	tag   string // "equal", "delete", "insert", "replace"
	label string // owner of the left line
	left  *string
	right *string
}

// FormatSideBySideDiff renders a hunk's pre-image and post-image next to each
// other inside a box. labels, when non-nil, names the owner of each old line
// and is shown in the left gutter.
func FormatSideBySideDiff(oldLines, newLines, labels []string, termWidth int) string {
	gutter := 0
	for _, l := range labels {
		if n := runeLen(l) + 1; n > gutter {
			gutter = n
		}
	}
	colW := (termWidth-7)/2 - gutter
	if colW < 20 {
		colW = 20
	}

	rows := lineRows(expandTabs(oldLines), expandTabs(newLines), labels)

	totalRows := len(rows)
	truncated := totalRows > maxDisplayRows
	if truncated {
		rows = rows[:maxDisplayRows]
	}

	leftW := colW + gutter
	var output []string

	lblL := "─ HEAD "
	lblR := "─ Working tree "
	output = append(output, fmt.Sprintf("┌%s%s┬%s%s┐",
		lblL, strings.Repeat("─", leftW+2-runeLen(lblL)),
		lblR, strings.Repeat("─", colW+2-runeLen(lblR))))

	for _, r := range rows {
		left := strings.Repeat(" ", leftW)
		right := strings.Repeat(" ", colW)
		if r.left != nil {
			left = padOrTrunc(r.label, gutter) + padOrTrunc(*r.left, colW)
		}
		if r.right != nil {
			right = padOrTrunc(*r.right, colW)
		}

		switch r.tag {
		case "equal":
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s%s%s │",
				Dim, left, Reset, Dim, right, Reset))
		case "delete":
			output = append(output, fmt.Sprintf("│ %s%s%s │ %s │",
				Red, left, Reset, right))
		case "insert":
			output = append(output, fmt.Sprintf("│ %s │ %s%s%s │",
				left, Green, right, Reset))
		case "replace":
			l, r2 := left, right
			if r.left != nil {
				l = Red + left + Reset
			}
			if r.right != nil {
				r2 = Green + right + Reset
			}
			output = append(output, fmt.Sprintf("│ %s │ %s │", l, r2))
		}
	}

	output = append(output, fmt.Sprintf("└%s┴%s┘",
		strings.Repeat("─", leftW+2), strings.Repeat("─", colW+2)))

	if truncated {
		output = append(output, fmt.Sprintf("  %s… %d more lines not shown%s",
			Dim, totalRows-maxDisplayRows, Reset))
	}

	return strings.Join(output, "\n")
}

// lineRows runs a line-level diff and pairs removed and added runs into rows.
func lineRows(oldLines, newLines, labels []string) []diffRow {
	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToChars(joinLines(oldLines), joinLines(newLines))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)

	var rows []diffRow
	var oldBuf, newBuf []string
	var labelBuf []string
	oldIdx := 0
	label := func() string {
		l := ""
		if oldIdx < len(labels) {
			l = labels[oldIdx]
		}
		oldIdx++
		return l
	}

	flush := func() {
		n := len(oldBuf)
		if len(newBuf) > n {
			n = len(newBuf)
		}
		for i := 0; i < n; i++ {
			row := diffRow{tag: "replace"}
			if i < len(oldBuf) {
				row.left = &oldBuf[i]
				row.label = labelBuf[i]
			}
			if i < len(newBuf) {
				row.right = &newBuf[i]
			}
			if row.left == nil {
				row.tag = "insert"
			} else if row.right == nil {
				row.tag = "delete"
			}
			rows = append(rows, row)
		}
		oldBuf, newBuf, labelBuf = nil, nil, nil
	}

	for _, d := range diffs {
		for _, l := range splitDiffText(d.Text) {
			l := l
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				flush()
				rows = append(rows, diffRow{tag: "equal", label: label(), left: &l, right: &l})
			case diffmatchpatch.DiffDelete:
				oldBuf = append(oldBuf, l)
				labelBuf = append(labelBuf, label())
			case diffmatchpatch.DiffInsert:
				newBuf = append(newBuf, l)
			}
		}
	}
	flush()
	return rows
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// splitDiffText splits a run of "\n"-terminated lines.
func splitDiffText(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func expandTabs(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.ReplaceAll(l, "\t", "    ")
	}
	return out
}

func padOrTrunc(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w])
	}
	return s + strings.Repeat(" ", w-len(r))
}

func runeLen(s string) int {
	return len([]rune(s))
}
