// Package lineset holds sets of 1-based line numbers and prints them in
// compact range notation.
package lineset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LineSet is a sorted, deduplicated set of 1-based line numbers. It prints
// as "5,7-8,12".
type LineSet struct {
	lines []int
}

// New creates a LineSet from individual line numbers.
func New(lines ...int) LineSet {
	return LineSet{lines: dedupSorted(append([]int(nil), lines...))}
}

// String returns the compact notation: "5,7-8,12".
func (ls LineSet) String() string {
	if len(ls.lines) == 0 {
		return ""
	}

	var parts []string
	i := 0
	for i < len(ls.lines) {
		start := ls.lines[i]
		end := start
		for i+1 < len(ls.lines) && ls.lines[i+1] == end+1 {
			end = ls.lines[i+1]
			i++
		}
		if start == end {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, end))
		}
		i++
	}
	return strings.Join(parts, ",")
}

// Lines returns the sorted line numbers.
func (ls LineSet) Lines() []int {
	return ls.lines
}

// Len returns the number of lines in the set.
func (ls LineSet) Len() int {
	return len(ls.lines)
}

// Contains returns true if the given line number is in the set.
func (ls LineSet) Contains(line int) bool {
	i := sort.SearchInts(ls.lines, line)
	return i < len(ls.lines) && ls.lines[i] == line
}

func dedupSorted(nums []int) []int {
	if len(nums) == 0 {
		return nil
	}
	sort.Ints(nums)
	result := []int{nums[0]}
	for i := 1; i < len(nums); i++ {
		if nums[i] != nums[i-1] {
			result = append(result, nums[i])
		}
	}
	return result
}
