package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	run1, err := j.BeginRun("main", "1111111111111111111111111111111111111111")
	require.NoError(t, err)
	require.NoError(t, j.Record(run1, Entry{
		Revision:    "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		ShortID:     "aaaaaaa",
		Summary:     "Add parser",
		Files:       []string{"a.go", "b.go"},
		Hunks:       3,
		FixupCommit: "cccccccccccccccccccccccccccccccccccccccc",
	}))

	run2, err := j.BeginRun("HEAD~3", "2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Greater(t, run2, run1)
	require.NoError(t, j.Record(run2, Entry{
		Revision: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		ShortID:  "bbbbbbb",
		Summary:  "Add lexer",
		Files:    []string{"lex.go"},
		Hunks:    1,
	}))

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	newest := entries[0]
	assert.Equal(t, run2, newest.RunID)
	assert.Equal(t, "HEAD~3", newest.Target)
	assert.Equal(t, "Add lexer", newest.Summary)
	assert.Equal(t, []string{"lex.go"}, newest.Files)
	assert.Empty(t, newest.FixupCommit)

	oldest := entries[1]
	assert.Equal(t, "main", oldest.Target)
	assert.Equal(t, "1111111111111111111111111111111111111111", oldest.Root)
	assert.Equal(t, []string{"a.go", "b.go"}, oldest.Files)
	assert.Equal(t, 3, oldest.Hunks)
	assert.NotEmpty(t, oldest.Ts)

	limited, err := j.Recent(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournal_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	id, err := j.BeginRun("main", "root")
	require.NoError(t, err)
	require.NoError(t, j.Record(id, Entry{Revision: "rev", Files: nil}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rev", entries[0].Revision)
	assert.Nil(t, entries[0].Files)
}
