package store

import (
	"path/filepath"
	"testing"

	"github.com/QEStudios/GBSTranscriber/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *SQLiteClient {
	t.Helper()
	c, err := NewSQLiteClient(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStoreAndLoadTables(t *testing.T) {
	c := newClient(t)

	id, err := c.AddSource(Source{Path: "tetris.gbs", Format: "gbs", Title: "Tetris", TicksPerSecond: 59.7})
	require.NoError(t, err)

	tables := []synth.Table{
		{Song: 2, Notes: []synth.Note{
			{StartSample: 0, EndSample: 1477, Volume: 1, IntervalLength: 200},
			{StartSample: 1477, EndSample: 2215, Volume: 1, IntervalLength: 100},
		}},
		{Song: 5, Notes: []synth.Note{{StartSample: 10, EndSample: 20, Volume: 0.5, IntervalLength: 29}}},
	}
	require.NoError(t, c.StoreTables(id, tables))

	songs, err := c.Songs(id)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, songs)

	for _, want := range tables {
		got, err := c.LoadTable(id, want.Song)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStoreTablesRejectsDuplicates(t *testing.T) {
	c := newClient(t)
	id, err := c.AddSource(Source{Path: "a.mid", Format: "midi"})
	require.NoError(t, err)

	tables := []synth.Table{{Song: 1, Notes: []synth.Note{{EndSample: 1, IntervalLength: 1}}}}
	require.NoError(t, c.StoreTables(id, tables))

	err = c.StoreTables(id, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already stored")
}

func TestSourcesAreSeparate(t *testing.T) {
	c := newClient(t)
	a, err := c.AddSource(Source{Path: "a.gbs", Format: "gbs"})
	require.NoError(t, err)
	b, err := c.AddSource(Source{Path: "b.gbs", Format: "gbs"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	require.NoError(t, c.StoreTables(a, []synth.Table{{Song: 1, Notes: []synth.Note{{EndSample: 5}}}}))

	songs, err := c.Songs(b)
	require.NoError(t, err)
	assert.Empty(t, songs)
}
