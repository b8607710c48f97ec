// Package gbs decodes Game Boy Sound (GBS) files: the fixed 112-byte header,
// the playback clock derived from the timer registers, and the per-song
// slicing of the music payload.
package gbs

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Signature is the tag every GBS file starts with.
const Signature = "GBS"

// HeaderSize is the size of the fixed header. The payload starts right after it.
const HeaderSize = 0x70

const textFieldSize = 32

// Header offsets.
const (
	offVersion      = 0x03
	offNumSongs     = 0x04
	offFirstSong    = 0x05
	offLoadAddr     = 0x06
	offInitAddr     = 0x08
	offPlayAddr     = 0x0A
	offStackPointer = 0x0C
	offTimerModulo  = 0x0E
	offTimerControl = 0x0F
	offTitle        = 0x10
	offAuthor       = 0x30
	offCopyright    = 0x50
)

// Header is the decoded GBS file header.
type Header struct {
	Signature string
	Version   uint8
	NumSongs  uint8
	FirstSong uint8 // 1-based index of the song to play by default.

	LoadAddr     uint16
	InitAddr     uint16
	PlayAddr     uint16
	StackPointer uint16

	TimerModulo  uint8 // TMA
	TimerControl uint8 // TAC

	Title     string
	Author    string
	Copyright string
}

// DecodeHeader parses the first HeaderSize bytes of data.
// Problems that don't prevent analysis are returned as warnings.
func DecodeHeader(data []byte) (*Header, []Warning, error) {
	if len(data) < HeaderSize {
		return nil, nil, formatErrorf(ErrTruncated, "got %d bytes, need at least %d", len(data), HeaderSize)
	}

	if sig := string(data[0:3]); sig != Signature {
		return nil, nil, formatErrorf(ErrBadSignature, "identifier is %q, expected %q", sig, Signature)
	}

	var warnings []Warning
	warn := func(offset int, format string, args ...any) {
		warnings = append(warnings, Warning{Offset: offset, Message: fmt.Sprintf(format, args...)})
	}

	h := &Header{
		Signature:    Signature,
		Version:      data[offVersion],
		NumSongs:     data[offNumSongs],
		FirstSong:    data[offFirstSong],
		LoadAddr:     binary.LittleEndian.Uint16(data[offLoadAddr:]),
		InitAddr:     binary.LittleEndian.Uint16(data[offInitAddr:]),
		PlayAddr:     binary.LittleEndian.Uint16(data[offPlayAddr:]),
		StackPointer: binary.LittleEndian.Uint16(data[offStackPointer:]),
		TimerModulo:  data[offTimerModulo],
		TimerControl: data[offTimerControl],
	}

	texts := []struct {
		dst    *string
		offset int
		name   string
	}{
		{&h.Title, offTitle, "title"},
		{&h.Author, offAuthor, "author"},
		{&h.Copyright, offCopyright, "copyright"},
	}
	for _, t := range texts {
		s, dropped := decodeText(data[t.offset : t.offset+textFieldSize])
		*t.dst = s
		if dropped > 0 {
			warn(t.offset, "dropped %d non-ASCII byte(s) from %s", dropped, t.name)
		}
	}

	if h.Version != 1 {
		warn(offVersion, "unexpected GBS version %d", h.Version)
	}
	if h.NumSongs == 0 {
		warn(offNumSongs, "header declares no songs")
	} else if h.FirstSong < 1 || h.FirstSong > h.NumSongs {
		warn(offFirstSong, "first song %d is outside 1..%d", h.FirstSong, h.NumSongs)
	}

	return h, warnings, nil
}

// decodeText reads a NUL-terminated (or full-width) ASCII field.
// Bytes outside the ASCII range are dropped and counted.
func decodeText(field []byte) (string, int) {
	var b strings.Builder
	dropped := 0
	for _, c := range field {
		if c == 0 {
			break
		}
		if c >= 0x80 {
			dropped++
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), dropped
}

// MarshalBinary encodes the header back into its 112-byte on-disk form.
func (h *Header) MarshalBinary() ([]byte, error) {
	if len(h.Signature) != len(Signature) {
		return nil, fmt.Errorf("signature must be %d bytes, got %q", len(Signature), h.Signature)
	}

	out := make([]byte, HeaderSize)
	copy(out[0:3], h.Signature)
	out[offVersion] = h.Version
	out[offNumSongs] = h.NumSongs
	out[offFirstSong] = h.FirstSong
	binary.LittleEndian.PutUint16(out[offLoadAddr:], h.LoadAddr)
	binary.LittleEndian.PutUint16(out[offInitAddr:], h.InitAddr)
	binary.LittleEndian.PutUint16(out[offPlayAddr:], h.PlayAddr)
	binary.LittleEndian.PutUint16(out[offStackPointer:], h.StackPointer)
	out[offTimerModulo] = h.TimerModulo
	out[offTimerControl] = h.TimerControl

	fields := []struct {
		value  string
		offset int
		name   string
	}{
		{h.Title, offTitle, "title"},
		{h.Author, offAuthor, "author"},
		{h.Copyright, offCopyright, "copyright"},
	}
	for _, f := range fields {
		if err := encodeText(out[f.offset:f.offset+textFieldSize], f.value); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	return out, nil
}

func encodeText(dst []byte, s string) error {
	if len(s) > len(dst) {
		return fmt.Errorf("text is %d bytes, field holds %d", len(s), len(dst))
	}
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] >= 0x80 {
			return fmt.Errorf("byte 0x%02x at position %d can't be stored", s[i], i)
		}
	}
	copy(dst, s)
	return nil
}

// UsesTimer reports whether playback is driven by the timer interrupt rather than v-blank.
func (h *Header) UsesTimer() bool {
	return h.TimerControl&tacTimerEnable != 0
}

// Timing derives the playback clock from the timer registers.
func (h *Header) Timing() (Timing, error) {
	return NewTiming(h.TimerControl, h.TimerModulo)
}
