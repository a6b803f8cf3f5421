package lineset

import (
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  []int
	}{
		{name: "empty", input: nil, want: nil},
		{name: "sorted", input: []int{3, 1, 2}, want: []int{1, 2, 3}},
		{name: "dedup", input: []int{5, 5, 7, 5}, want: []int{5, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.input...)
			if !reflect.DeepEqual(got.Lines(), tt.want) {
				t.Errorf("New(%v) = %v, want %v", tt.input, got.Lines(), tt.want)
			}
			if got.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", got.Len(), len(tt.want))
			}
		})
	}
}

func TestNew_DoesNotReorderInput(t *testing.T) {
	in := []int{3, 1, 2}
	New(in...)
	if !reflect.DeepEqual(in, []int{3, 1, 2}) {
		t.Errorf("input was modified: %v", in)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		lines []int
		want  string
	}{
		{name: "empty", lines: nil, want: ""},
		{name: "single", lines: []int{5}, want: "5"},
		{name: "range", lines: []int{5, 6, 7}, want: "5-7"},
		{name: "mixed", lines: []int{5, 7, 8, 12}, want: "5,7-8,12"},
		{name: "all_separate", lines: []int{1, 3, 5}, want: "1,3,5"},
		{name: "two_ranges", lines: []int{1, 2, 3, 7, 8, 9}, want: "1-3,7-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.lines...).String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	ls := New(5, 7, 8, 12)
	for _, n := range []int{5, 7, 8, 12} {
		if !ls.Contains(n) {
			t.Errorf("Contains(%d) = false, want true", n)
		}
	}
	for _, n := range []int{0, 6, 9, 13} {
		if ls.Contains(n) {
			t.Errorf("Contains(%d) = true, want false", n)
		}
	}
}
