// Package midi converts Standard MIDI Files into synthesizer note tables, so
// MIDI transcriptions can be played back in place of GBS ones.
package midi

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/QEStudios/GBSTranscriber/synth"
	"github.com/davecgh/go-spew/spew"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultTempo is the tempo (microseconds per beat) used until a set-tempo event is seen: 120 BPM.
const DefaultTempo = 500000

// Small struct for non-fatal warnings
type ParseWarning struct {
	Track   int
	Tick    int64
	Message string
}

func (pw ParseWarning) String() string {
	return fmt.Sprintf("track %d tick %d: %s", pw.Track, pw.Tick, pw.Message)
}

type Parser struct {
	r      io.Reader
	logger *log.Logger

	// Collect any warnings whilst parsing.
	warnings []ParseWarning

	// Whether or not the parser has already been used.
	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser to parse a MIDI file.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{r: r, logger: logger}
}

// addWarning adds to the list of warnings encountered when parsing.
func (p *Parser) addWarning(track int, tick int64, format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Track:   track,
		Tick:    tick,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnings returns the non-fatal problems found by Parse.
func (p *Parser) Warnings() []ParseWarning {
	return p.warnings
}

// pitchToFreq converts a MIDI note number to a frequency in equal temperament with A4 = 440 Hz.
func pitchToFreq(pitch uint8) float64 {
	return 440 * math.Pow(2, float64(int(pitch)-69)/12)
}

// ticksToSamples converts a tick position to a sample index at a fixed tempo.
func ticksToSamples(ticks int64, ticksPerBeat uint16, tempo uint32) int64 {
	seconds := float64(ticks) * float64(tempo) / 1e6 / float64(ticksPerBeat)
	return synth.SecondsToSamples(seconds)
}

type heldNote struct {
	tick     int64
	velocity uint8
}

// Parse reads the whole file and returns its notes as a table tagged with song.
//
// Tracks are read one after another. The tempo in force is the last one seen
// in any track so far, and it applies to both ends of a note when the note
// ends. Notes still held at the end of a track are dropped.
func (p *Parser) Parse(song int) (table *synth.Table, err error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true

	// gomidi panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("error parsing midi file: %v", r)
		}
	}()

	s, err := smf.ReadFrom(p.r)
	if err != nil {
		return nil, fmt.Errorf("error parsing midi file: %w", err)
	}

	metric, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		p.logger.Printf("Unsupported time format:\n%s", spew.Sdump(s.TimeFormat))
		return nil, errors.New("only metric (ticks per beat) time formats are supported")
	}
	ticksPerBeat := metric.Resolution()
	if ticksPerBeat == 0 {
		return nil, errors.New("midi file declares 0 ticks per beat")
	}

	p.logger.Printf("Converting %d tracks at %d ticks per beat", len(s.Tracks), ticksPerBeat)

	tempo := uint32(DefaultTempo)
	table = &synth.Table{Song: song}

	for trackIndex, track := range s.Tracks {
		var absTicks int64
		held := make(map[uint8]heldNote)

		for _, event := range track {
			absTicks += int64(event.Delta)
			msg := event.Message

			var channel, key, velocity uint8
			var bpm float64
			switch {
			case msg.GetMetaTempo(&bpm):
				if bpm <= 0 {
					p.addWarning(trackIndex, absTicks, "ignoring tempo of %v BPM", bpm)
					continue
				}
				tempo = uint32(math.Round(60_000_000 / bpm))

			case msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				held[key] = heldNote{tick: absTicks, velocity: velocity}

			case msg.GetNoteOn(&channel, &key, &velocity), msg.GetNoteOff(&channel, &key, &velocity):
				start, ok := held[key]
				if !ok {
					p.addWarning(trackIndex, absTicks, "note off for key %d without a note on", key)
					continue
				}
				delete(held, key)

				interval, err := synth.IntervalFor(pitchToFreq(key))
				if err != nil {
					return nil, err
				}
				table.Notes = append(table.Notes, synth.Note{
					StartSample:    ticksToSamples(start.tick, ticksPerBeat, tempo),
					EndSample:      ticksToSamples(absTicks, ticksPerBeat, tempo),
					Volume:         float64(start.velocity) / 127,
					IntervalLength: interval,
				})
			}
		}

		if len(held) > 0 {
			p.addWarning(trackIndex, absTicks, "%d note(s) still held at end of track", len(held))
		}
	}

	if len(p.warnings) > 0 {
		p.logger.Println("Warnings produced while parsing file:")
		for _, warning := range p.warnings {
			p.logger.Printf("%v", warning)
		}
	}

	return table, nil
}
