// Package transcribe turns the music payload of a GBS file into note events.
//
// This is static guesswork: the real player is Z80-like machine code that is
// never executed here. Bytes that look like entries of a frequency table are
// taken as notes, runs of repeated bytes as held notes, and the frequency band
// as the voice.
package transcribe

import (
	"fmt"
	"log"

	"github.com/QEStudios/GBSTranscriber/gbs"
)

// Event is a single inferred tone.
type Event struct {
	Timestamp  float64 // Seconds from the start of the song.
	Frequency  float64 // Hz, always > 0.
	Label      string
	Channel    Channel
	Duration   float64 // Seconds, always > 0.
	FileOffset int     // Offset of the source byte in the GBS file.
	Song       int     // 1-based.
}

func (e Event) String() string {
	return fmt.Sprintf("%.3fs %s (%.1f Hz) ch%d for %.3fs @0x%x", e.Timestamp, e.Label, e.Frequency, e.Channel, e.Duration, e.FileOffset)
}

// ScanSong walks one song window byte by byte and emits an event for every
// byte found in the frequency table. Rests and unknown bytes are skipped and do
// not move the clock. Scanning never fails.
func ScanSong(payload []byte, w gbs.SongWindow, timing gbs.Timing) []Event {
	window := w.Bytes(payload)
	secondsPerTick := timing.SecondsPerTick()

	var events []Event
	timestamp := 0.0
	for i := 0; i < len(window); i++ {
		hz, ok := Frequency(window[i])
		if !ok || hz == 0 {
			continue
		}

		duration := EstimateDuration(window, i, secondsPerTick)
		events = append(events, Event{
			Timestamp:  timestamp,
			Frequency:  hz,
			Label:      NoteLabel(hz),
			Channel:    ClassifyChannel(hz),
			Duration:   duration,
			FileOffset: w.FileOffset(i),
			Song:       w.Song,
		})
		timestamp += duration
	}
	return events
}

// Transcriber runs the scanner over every song of a parsed file.
type Transcriber struct {
	logger *log.Logger
}

// New creates a Transcriber that reports progress to logger.
func New(logger *log.Logger) *Transcriber {
	if logger == nil {
		logger = log.Default()
	}
	return &Transcriber{logger: logger}
}

// Transcribe scans every song window of f. Songs without notes are left out.
func (t *Transcriber) Transcribe(f *gbs.File) (Stream, error) {
	if f == nil || f.Header == nil {
		return nil, fmt.Errorf("no GBS file to transcribe")
	}

	windows := f.Windows()
	if len(windows) == 0 {
		t.logger.Printf("Payload of %d bytes holds no song data", len(f.Payload))
	}

	stream := make(Stream)
	for _, w := range windows {
		t.logger.Printf("Scanning song %d: %d bytes at 0x%x", w.Song, w.Len(), w.FileOffset(0))
		events := ScanSong(f.Payload, w, f.Timing)
		if len(events) == 0 {
			continue
		}
		stream[w.Song] = events
	}
	return stream, nil
}
