package transcribe

// lookahead is the maximum number of bytes, the current one included, examined
// when measuring a run.
const lookahead = 16

// ticksPerRunStep is how many repeated bytes make up one tick of duration.
const ticksPerRunStep = 4

// RunLength counts the byte at window[i] plus the identical bytes directly
// following it, looking at no more than 16 bytes and never past the window.
func RunLength(window []byte, i int) int {
	current := window[i]
	run := 1
	limit := min(lookahead, len(window)-i)
	for j := 1; j < limit; j++ {
		if window[i+j] != current {
			break
		}
		run++
	}
	return run
}

// EstimateDuration returns how long the tone at window[i] is held: one tick for
// every four repeated bytes, rounded down, and never less than one tick.
func EstimateDuration(window []byte, i int, secondsPerTick float64) float64 {
	ticks := max(1, RunLength(window, i)/ticksPerRunStep)
	return secondsPerTick * float64(ticks)
}
