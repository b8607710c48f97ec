package transcribe

import (
	"bytes"
	"log"
	"testing"

	"github.com/QEStudios/GBSTranscriber/gbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyTable(t *testing.T) {
	assert.Equal(t, 56, TableSize)

	hz, ok := Frequency(0x16)
	assert.True(t, ok)
	assert.Equal(t, 220.0, hz)
	assert.Equal(t, "A3", NoteLabel(hz))

	hz, ok = Frequency(0x01)
	assert.True(t, ok)
	assert.Equal(t, "C2", NoteLabel(hz))

	hz, ok = Frequency(0x37)
	assert.True(t, ok)
	assert.Equal(t, "F#6", NoteLabel(hz))

	hz, ok = Frequency(Rest)
	assert.True(t, ok)
	assert.Equal(t, 0.0, hz)
	assert.False(t, IsNote(Rest))

	_, ok = Frequency(0x38)
	assert.False(t, ok)
	assert.False(t, IsNote(0xFF))
}

func TestEveryTableFrequencyHasALabel(t *testing.T) {
	for b := 1; b < TableSize; b++ {
		hz, _ := Frequency(byte(b))
		assert.NotContains(t, NoteLabel(hz), "Hz", "byte 0x%02x", b)
	}
}

func TestNoteLabelFallback(t *testing.T) {
	assert.Equal(t, "A4", NoteLabel(440))
	assert.Equal(t, "441.3Hz", NoteLabel(441.3))
}

func TestClassifyChannel(t *testing.T) {
	cases := []struct {
		hz      float64
		channel Channel
	}{
		{65.4, Square1},
		{100, Square1},
		{199.9, Square1},
		{200, Square2},
		{300, Square2},
		{499.9, Square2},
		{500, Wave},
		{700, Wave},
		{999.9, Wave},
		{1000, Noise},
		{1200, Noise},
	}
	for _, c := range cases {
		assert.Equal(t, c.channel, ClassifyChannel(c.hz), "%.1f Hz", c.hz)
	}
	assert.Equal(t, "Wave", Wave.String())
}

func TestRunLength(t *testing.T) {
	assert.Equal(t, 1, RunLength([]byte{1, 2, 1}, 0))
	assert.Equal(t, 5, RunLength([]byte{7, 7, 7, 7, 7, 0, 0, 0}, 0))
	assert.Equal(t, 3, RunLength([]byte{0, 7, 7, 7}, 1), "clamped to the window end")
	assert.Equal(t, 16, RunLength(bytes.Repeat([]byte{9}, 40), 0), "capped at 16 bytes")
}

func TestEstimateDuration(t *testing.T) {
	const base = 0.25
	run := func(n int) []byte {
		return append(bytes.Repeat([]byte{0x22}, n), 0x00, 0x00, 0x00, 0x00)
	}

	assert.Equal(t, base, EstimateDuration(run(1), 0, base))
	assert.Equal(t, base, EstimateDuration(run(3), 0, base))
	assert.Equal(t, base, EstimateDuration(run(4), 0, base))
	assert.Equal(t, base, EstimateDuration(run(5), 0, base))
	assert.Equal(t, 2*base, EstimateDuration(run(8), 0, base))
	assert.Equal(t, 4*base, EstimateDuration(run(30), 0, base))
}

func buildFile(t *testing.T, numSongs uint8, tac uint8, payload []byte) *gbs.File {
	t.Helper()
	h := gbs.Header{Signature: gbs.Signature, Version: 1, NumSongs: numSongs, FirstSong: 1, TimerControl: tac}
	raw, err := h.MarshalBinary()
	require.NoError(t, err)

	f, err := gbs.Parse(append(raw, payload...))
	require.NoError(t, err)
	return f
}

func TestTranscribeHeldNote(t *testing.T) {
	payload := make([]byte, 1024)
	for i := 0; i < 8; i++ {
		payload[i] = 0x16
	}
	f := buildFile(t, 1, 0x00, payload)

	var logs bytes.Buffer
	stream, err := New(log.New(&logs, "", 0)).Transcribe(f)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Scanning song 1: 1024 bytes at 0x70")

	require.Equal(t, []int{1}, stream.Songs())
	events := stream[1]
	require.Len(t, events, 8)

	base := 1 / 59.7
	first := events[0]
	assert.Equal(t, 220.0, first.Frequency)
	assert.Equal(t, "A3", first.Label)
	assert.Equal(t, Square2, first.Channel)
	assert.Equal(t, gbs.HeaderSize, first.FileOffset)
	assert.Equal(t, 1, first.Song)
	assert.InDelta(t, 2*base, first.Duration, 1e-12)

	// Run lengths 8,7,...,1 give 2 ticks for the first byte and 1 for the rest.
	for i, e := range events[1:] {
		assert.InDelta(t, base, e.Duration, 1e-12)
		assert.InDelta(t, float64(i+2)*base, e.Timestamp, 1e-12)
		assert.Equal(t, gbs.HeaderSize+i+1, e.FileOffset)
	}
	assert.Equal(t, 8, stream.Total())
}

func TestRestsNeverEmitOrAdvanceTime(t *testing.T) {
	payload := []byte{0x00, 0x22, 0x00, 0x00, 0x40, 0xFF, 0x2E, 0x00}
	f := buildFile(t, 1, 0x04, payload)

	stream, err := New(nil).Transcribe(f)
	require.NoError(t, err)

	events := stream[1]
	require.Len(t, events, 2)
	assert.Equal(t, "A4", events[0].Label)
	assert.Equal(t, "A5", events[1].Label)
	assert.Equal(t, 0.0, events[0].Timestamp)
	assert.InDelta(t, 1/16.0, events[1].Timestamp, 1e-12)
	assert.Equal(t, gbs.HeaderSize+6, events[1].FileOffset)
	for _, e := range events {
		assert.NotZero(t, e.Frequency)
	}
}

func TestTimestampsAreMonotonic(t *testing.T) {
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte((i * 7) % 0x40)
	}
	f := buildFile(t, 3, 0x00, payload)

	stream, err := New(nil).Transcribe(f)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, stream.Songs())

	for _, song := range stream.Songs() {
		events := stream[song]
		for i := 1; i < len(events); i++ {
			assert.GreaterOrEqual(t, events[i].Timestamp, events[i-1].Timestamp)
			assert.Greater(t, events[i].Duration, 0.0)
		}
	}
}

func TestTranscribeIsDeterministic(t *testing.T) {
	payload := make([]byte, 2048)
	for i := range payload {
		payload[i] = byte((i*31 + i/5) % 0x60)
	}
	f := buildFile(t, 2, 0x85, payload)

	a, err := New(nil).Transcribe(f)
	require.NoError(t, err)
	b, err := New(nil).Transcribe(f)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSongsWithoutNotesAreOmitted(t *testing.T) {
	payload := make([]byte, 2048)
	payload[1500] = 0x10
	f := buildFile(t, 2, 0x00, payload)

	stream, err := New(nil).Transcribe(f)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, stream.Songs())
	assert.Equal(t, [NumChannels]int{1, 0, 0, 0}, stream.ChannelCounts(2))
}

func TestRunsStopAtTheSongWindow(t *testing.T) {
	payload := make([]byte, 2048)
	for i := 1020; i < 1032; i++ {
		payload[i] = 0x22
	}
	f := buildFile(t, 2, 0x00, payload)

	stream, err := New(nil).Transcribe(f)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, stream.Songs())

	base := 1 / 59.7
	// The run is 12 bytes long across the boundary but only 4 of them belong to song 1.
	song1 := stream[1]
	require.Len(t, song1, 4)
	assert.Equal(t, gbs.HeaderSize+1020, song1[0].FileOffset)
	assert.InDelta(t, base, song1[0].Duration, 1e-12)

	song2 := stream[2]
	require.Len(t, song2, 8)
	assert.Equal(t, gbs.HeaderSize+1024, song2[0].FileOffset)
	assert.Equal(t, 0.0, song2[0].Timestamp)
	assert.InDelta(t, 2*base, song2[0].Duration, 1e-12)
}

func TestTranscribeEmptyPayload(t *testing.T) {
	f := buildFile(t, 2, 0x00, nil)
	stream, err := New(nil).Transcribe(f)
	require.NoError(t, err)
	assert.Empty(t, stream)
}
