package gbs_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/QEStudios/GBSTranscriber/gbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTiming(t *testing.T) {
	cases := []struct {
		name     string
		tac, tma uint8
		rate     float64
		source   string
	}{
		{"v-blank", 0x00, 0x00, 59.7, "v-blank"},
		{"v-blank ignores tma", 0x03, 0xC0, 59.7, "v-blank"},
		{"4096 Hz", 0x04, 0x00, 16.0, "timer"},
		{"double speed", 0x84, 0x00, 32.0, "timer"},
		{"262144 Hz", 0x05, 0x00, 1024.0, "timer"},
		{"65536 Hz", 0x06, 0x00, 256.0, "timer"},
		{"16384 Hz with modulo", 0x07, 0xC0, 256.0, "timer"},
		{"max modulo", 0x04, 0xFF, 4096.0, "timer"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			timing, err := NewTiming(c.tac, c.tma)
			require.NoError(t, err)
			assert.InDelta(t, c.rate, timing.TicksPerSecond, 1e-9)
			assert.InDelta(t, 1/c.rate, timing.SecondsPerTick(), 1e-12)
			assert.Equal(t, c.source, timing.Source())
		})
	}
}

func TestTimingString(t *testing.T) {
	timing, err := NewTiming(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "59.7 Hz (v-blank)", timing.String())
}

func TestSegment(t *testing.T) {
	windows := Segment(2500, 4)
	assert.Equal(t, []SongWindow{
		{Song: 1, Start: 0, End: 1024},
		{Song: 2, Start: 1024, End: 2048},
		{Song: 3, Start: 2048, End: 2500},
	}, windows)

	assert.Equal(t, 452, windows[2].Len())
	assert.Equal(t, HeaderSize+2048+3, windows[2].FileOffset(3))
}

func TestSegmentEmptyPayload(t *testing.T) {
	assert.Empty(t, Segment(0, 3))
	assert.Empty(t, Segment(100, 0))
}

func TestSegmentWindowsDoNotOverlap(t *testing.T) {
	windows := Segment(10_000, 12)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
	}
}

func TestParseAndReadFile(t *testing.T) {
	data := append(buildHeader(2, 0, 0x84), make([]byte, 1500)...)

	f, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 32.0, f.Timing.TicksPerSecond)
	assert.Len(t, f.Payload, 1500)
	assert.Len(t, f.Windows(), 2)

	path := filepath.Join(t.TempDir(), "song.gbs")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	f, err = ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), f.Header.NumSongs)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.gbs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.gbs")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
