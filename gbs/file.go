package gbs

import (
	"fmt"
	"os"
)

// File is a fully decoded GBS file, ready to be scanned.
type File struct {
	Header   *Header
	Timing   Timing
	Payload  []byte // Everything after the header. Never modified.
	Warnings []Warning
}

// Parse decodes the header and timing of a GBS image. Any error here is fatal:
// no part of a file with a bad header or timer is ever scanned.
func Parse(data []byte) (*File, error) {
	header, warnings, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	timing, err := header.Timing()
	if err != nil {
		return nil, err
	}

	return &File{
		Header:   header,
		Timing:   timing,
		Payload:  data[HeaderSize:],
		Warnings: warnings,
	}, nil
}

// ReadFile reads and parses the GBS file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading GBS file %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Windows returns the song windows of the payload.
func (f *File) Windows() []SongWindow {
	return Segment(len(f.Payload), int(f.Header.NumSongs))
}
