package transcribe

// Channel is one of the four Game Boy APU voices, numbered 1-4.
type Channel uint8

const (
	Square1 Channel = iota + 1
	Square2
	Wave
	Noise
)

// NumChannels is the number of APU voices.
const NumChannels = 4

func (c Channel) String() string {
	switch c {
	case Square1:
		return "Square 1"
	case Square2:
		return "Square 2"
	case Wave:
		return "Wave"
	case Noise:
		return "Noise"
	default:
		return "Unknown"
	}
}

// Upper frequency bounds (exclusive) of the first three channel bands.
const (
	square1Limit = 200.0
	square2Limit = 500.0
	waveLimit    = 1000.0
)

// ClassifyChannel guesses which voice played a tone from its frequency band alone.
// Each bound belongs to the band above it.
func ClassifyChannel(hz float64) Channel {
	switch {
	case hz < square1Limit:
		return Square1
	case hz < square2Limit:
		return Square2
	case hz < waveLimit:
		return Wave
	default:
		return Noise
	}
}
