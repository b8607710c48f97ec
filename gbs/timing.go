package gbs

import (
	"fmt"
	"math"
)

// VBlankRate is the rate (Hz) the play routine is called at when the timer is disabled.
const VBlankRate = 59.7

// TAC register bits.
const (
	tacClockSelect = 0b00000011
	tacTimerEnable = 0b00000100
	tacDoubleSpeed = 0b10000000 // GBS extension: CGB double-speed CPU.
)

// Timer counter input clocks (Hz), indexed by the TAC clock-select bits.
var timerClocks = [4]float64{
	4096,   // 00
	262144, // 01
	65536,  // 10
	16384,  // 11
}

// Timing is the playback clock of a file. It is computed once and never changes.
type Timing struct {
	TicksPerSecond float64
	timer          bool
}

// NewTiming derives the playback tick rate from the TAC and TMA registers.
func NewTiming(tac, tma uint8) (Timing, error) {
	if tac&tacTimerEnable == 0 {
		return Timing{TicksPerSecond: VBlankRate}, nil
	}

	clock := timerClocks[tac&tacClockSelect]
	if tac&tacDoubleSpeed != 0 {
		clock *= 2
	}

	divisor := 256 - int(tma)
	if divisor <= 0 {
		return Timing{}, formatErrorf(ErrInvalidTimer, "timer modulo %d gives divisor %d", tma, divisor)
	}

	rate := clock / float64(divisor)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return Timing{}, formatErrorf(ErrInvalidTimer, "tac=0x%02x tma=0x%02x gives rate %v", tac, tma, rate)
	}
	return Timing{TicksPerSecond: rate, timer: true}, nil
}

// SecondsPerTick is the length of one playback tick, the base unit for note durations.
func (t Timing) SecondsPerTick() float64 {
	return 1 / t.TicksPerSecond
}

// Source names what drives the play routine: "timer" or "v-blank".
func (t Timing) Source() string {
	if t.timer {
		return "timer"
	}
	return "v-blank"
}

func (t Timing) String() string {
	return fmt.Sprintf("%.1f Hz (%s)", t.TicksPerSecond, t.Source())
}
