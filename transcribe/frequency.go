package transcribe

import "fmt"

// Rest is the byte value that encodes silence. It never produces a note.
const Rest = 0x00

// byteFrequencies maps a raw music byte to an equal-tempered frequency (Hz),
// C2 upwards. Index 0 is the rest.
var byteFrequencies = [...]float64{
	0,
	65.4, 69.3, 73.4, 77.8, 82.4, 87.3, 92.5, 98.0, 103.8, 110.0, 116.5, 123.5,
	130.8, 138.6, 146.8, 155.6, 164.8, 174.6, 185.0, 196.0, 207.7, 220.0, 233.1, 246.9,
	261.6, 277.2, 293.7, 311.1, 329.6, 349.2, 370.0, 392.0, 415.3, 440.0, 466.2, 493.9,
	523.3, 554.4, 587.3, 622.3, 659.3, 698.5, 740.0, 784.0, 830.6, 880.0, 932.3, 987.8,
	1046.5, 1108.7, 1174.7, 1244.5, 1318.5, 1396.9, 1480.0,
}

var noteLabels = map[float64]string{
	65.4: "C2", 69.3: "C#2", 73.4: "D2", 77.8: "D#2", 82.4: "E2", 87.3: "F2",
	92.5: "F#2", 98.0: "G2", 103.8: "G#2", 110.0: "A2", 116.5: "A#2", 123.5: "B2",
	130.8: "C3", 138.6: "C#3", 146.8: "D3", 155.6: "D#3", 164.8: "E3", 174.6: "F3",
	185.0: "F#3", 196.0: "G3", 207.7: "G#3", 220.0: "A3", 233.1: "A#3", 246.9: "B3",
	261.6: "C4", 277.2: "C#4", 293.7: "D4", 311.1: "D#4", 329.6: "E4", 349.2: "F4",
	370.0: "F#4", 392.0: "G4", 415.3: "G#4", 440.0: "A4", 466.2: "A#4", 493.9: "B4",
	523.3: "C5", 554.4: "C#5", 587.3: "D5", 622.3: "D#5", 659.3: "E5", 698.5: "F5",
	740.0: "F#5", 784.0: "G5", 830.6: "G#5", 880.0: "A5", 932.3: "A#5", 987.8: "B5",
	1046.5: "C6", 1108.7: "C#6", 1174.7: "D6", 1244.5: "D#6", 1318.5: "E6", 1396.9: "F6",
	1480.0: "F#6",
}

// TableSize is the number of byte values with a table entry, rest included.
const TableSize = len(byteFrequencies)

// Frequency looks up the frequency of a music byte. ok is false for bytes
// outside the table. The rest byte is in the table with frequency 0.
func Frequency(b byte) (hz float64, ok bool) {
	if int(b) >= len(byteFrequencies) {
		return 0, false
	}
	return byteFrequencies[b], true
}

// IsNote reports whether b is in the table and isn't a rest.
func IsNote(b byte) bool {
	hz, ok := Frequency(b)
	return ok && hz > 0
}

// NoteLabel names a frequency, e.g. 440 -> "A4". Frequencies not in the
// table are printed as "123.4Hz".
func NoteLabel(hz float64) string {
	if label, ok := noteLabels[hz]; ok {
		return label
	}
	return fmt.Sprintf("%.1fHz", hz)
}
