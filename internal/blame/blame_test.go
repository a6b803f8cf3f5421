package blame

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jensroland/git-autofixup/internal/scan"
)

var (
	shaA = strings.Repeat("a", 40)
	shaB = strings.Repeat("b", 40)
)

const porcelain = `AAAA 1 1 2
author Test
author-mail <test@test.com>
author-time 1700000000
author-tz +0000
committer Test
committer-mail <test@test.com>
committer-time 1700000000
committer-tz +0000
summary Add parser
boundary
filename main.go
	package main
AAAA 2 2
	
BBBB 3 3 1
author Test
author-mail <test@test.com>
author-time 1700000100
author-tz +0000
committer Test
committer-mail <test@test.com>
committer-time 1700000100
committer-tz +0000
summary Add main
previous AAAA main.go
filename main.go
	func main() {}
AAAA 4 4 1
	// trailing	tab
`

func fixture() []byte {
	s := strings.ReplaceAll(porcelain, "AAAA", shaA)
	return []byte(strings.ReplaceAll(s, "BBBB", shaB))
}

func TestParse(t *testing.T) {
	x, err := Parse("main.go", fixture())
	require.NoError(t, err)

	require.Equal(t, 4, x.Len())
	assert.Equal(t, []Entry{
		{OwningID: shaA, Text: "package main", Boundary: true},
		{OwningID: shaA, Text: "", Boundary: true},
		{OwningID: shaB, Text: "func main() {}"},
		{OwningID: shaA, Text: "// trailing\ttab", Boundary: true},
	}, x.Entries())
}

func TestParse_Empty(t *testing.T) {
	x, err := Parse("empty.go", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, x.Len())
}

func TestParse_FormatViolations(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"short id", "abc123 1 1 1\n\tline\n"},
		{"uppercase id", strings.ToUpper(shaA) + " 1 1 1\n\tline\n"},
		{"missing line numbers", shaA + "\n\tline\n"},
		{"text without tab", shaA + " 1 1 1\nline\n"},
		{"unknown metadata", shaA + " 1 1 1\nweird key\n\tline\n"},
		{"two ids in a row", shaA + " 1 1 1\n" + shaB + " 2 2 1\n\tline\n"},
		{"ends expecting text", shaA + " 1 1 1\nauthor Test\n"},
		{"out of order", shaA + " 1 2 1\n\tline\n"},
		{"text first", "\tline\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("f.go", []byte(tt.in))
			var fe *scan.FormatError
			require.True(t, errors.As(err, &fe), "want FormatError, got %v", err)
			assert.Equal(t, "blame f.go", fe.Input)
		})
	}
}

func TestSpan(t *testing.T) {
	x, err := Parse("main.go", fixture())
	require.NoError(t, err)

	got, err := x.Span(2, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, shaA, got[0].OwningID)
	assert.Equal(t, shaB, got[1].OwningID)

	got, err = x.Span(5, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = x.Span(4, 2)
	var fe *scan.FormatError
	assert.True(t, errors.As(err, &fe))

	_, err = x.Span(0, 1)
	assert.True(t, errors.As(err, &fe))
}
