package gbs

// SongStride is the number of payload bytes assumed to belong to each song.
//
// GBS files carry no song table; the real layout only exists once the init
// routine runs. Slicing the payload into fixed 1 KiB windows is a heuristic
// and changing it changes every transcription, so it stays fixed.
const SongStride = 1024

// SongWindow is the payload range [Start, End) assigned to one song.
type SongWindow struct {
	Song  int // 1-based song index.
	Start int // Payload-relative.
	End   int
}

// Len returns the number of bytes in the window.
func (w SongWindow) Len() int {
	return w.End - w.Start
}

// Bytes returns the window's slice of payload.
func (w SongWindow) Bytes(payload []byte) []byte {
	return payload[w.Start:w.End]
}

// FileOffset converts an index into the window to an absolute file offset.
func (w SongWindow) FileOffset(i int) int {
	return HeaderSize + w.Start + i
}

// Segment splits a payload of payloadLen bytes into one window per song.
// Windows past the end of the payload are clamped, and empty ones are left out.
func Segment(payloadLen, numSongs int) []SongWindow {
	var windows []SongWindow
	for song := 1; song <= numSongs; song++ {
		start := (song - 1) * SongStride
		end := min(start+SongStride, payloadLen)
		if start >= end {
			continue
		}
		windows = append(windows, SongWindow{Song: song, Start: start, End: end})
	}
	return windows
}
