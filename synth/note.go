// Package synth holds the sample-indexed note records a synthesizer replays,
// and the ways they are written out.
//
// Note is the contract between event producers (the GBS transcriber, the MIDI
// adapter) and the synthesizer, so its shape only changes together with
// SchemaVersion.
package synth

import (
	"fmt"
	"math"

	"github.com/QEStudios/GBSTranscriber/transcribe"
)

// SampleRate is the output rate shared by every producer.
const SampleRate = 44100

// SchemaVersion is bumped whenever Note changes shape.
const SchemaVersion = 1

// A single note as the synthesizer plays it.
type Note struct {
	StartSample    int64   // First sample the note sounds on.
	EndSample      int64   // Sample the note stops on.
	Volume         float64 // 0..1.
	IntervalLength int     // Samples per waveform period.
}

func (n Note) String() string {
	return fmt.Sprintf("%d..%d vol %.3f period %d", n.StartSample, n.EndSample, n.Volume, n.IntervalLength)
}

// SecondsToSamples converts a time in seconds to a sample index, rounding down.
func SecondsToSamples(seconds float64) int64 {
	return int64(math.Floor(seconds * SampleRate))
}

// IntervalFor returns the waveform period in samples of a tone, rounding down.
func IntervalFor(hz float64) (int, error) {
	if !(hz > 0) {
		return 0, fmt.Errorf("frequency must be positive, got %v", hz)
	}
	return int(math.Floor(SampleRate / hz)), nil
}

// FromEvent converts a transcribed event. Transcribed notes always play at full volume.
func FromEvent(e transcribe.Event) (Note, error) {
	interval, err := IntervalFor(e.Frequency)
	if err != nil {
		return Note{}, fmt.Errorf("event at offset 0x%x: %w", e.FileOffset, err)
	}
	return Note{
		StartSample:    SecondsToSamples(e.Timestamp),
		EndSample:      SecondsToSamples(e.Timestamp + e.Duration),
		Volume:         1.0,
		IntervalLength: interval,
	}, nil
}

// Table is the note list of one song.
type Table struct {
	Song  int
	Notes []Note
}

// FromStream converts every song of a stream, in song order.
func FromStream(s transcribe.Stream) ([]Table, error) {
	tables := make([]Table, 0, len(s))
	for _, song := range s.Songs() {
		events := s[song]
		notes := make([]Note, 0, len(events))
		for _, e := range events {
			n, err := FromEvent(e)
			if err != nil {
				return nil, fmt.Errorf("song %d: %w", song, err)
			}
			notes = append(notes, n)
		}
		tables = append(tables, Table{Song: song, Notes: notes})
	}
	return tables, nil
}
