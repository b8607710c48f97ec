package synth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Magic is the tag at the start of a compiled note image.
const Magic = "GBSN"

const (
	imageHeaderSize = len(Magic) + 2 // Magic, schema version, table count.
	tableHeaderSize = 1 + 4          // Song index, note count.
	noteSize        = 4 + 4 + 2 + 2  // Start, end, volume, interval.
)

// Full scale of the fixed-point volume field.
const volumeScale = math.MaxUint16

// CalculateSize returns the size in bytes of the compiled image of tables.
func CalculateSize(tables []Table) int {
	size := imageHeaderSize
	for _, t := range tables {
		size += tableHeaderSize + len(t.Notes)*noteSize
	}
	return size
}

// Compile packs tables into the compact little-endian image the synthesizer
// loads. Volumes are stored as 16-bit fixed point where 0xFFFF is full volume.
func Compile(tables []Table) ([]byte, error) {
	if len(tables) > math.MaxUint8 {
		return nil, fmt.Errorf("image holds at most %d tables, got %d", math.MaxUint8, len(tables))
	}

	totalSize := CalculateSize(tables)
	buffer := bytes.NewBuffer(make([]byte, 0, totalSize))

	buffer.WriteString(Magic)
	buffer.WriteByte(SchemaVersion)
	buffer.WriteByte(byte(len(tables)))

	var word [4]byte
	for _, t := range tables {
		if t.Song < 1 || t.Song > math.MaxUint8 {
			return nil, fmt.Errorf("song index must be 1-%d, got %d", math.MaxUint8, t.Song)
		}
		if uint64(len(t.Notes)) > math.MaxUint32 {
			return nil, fmt.Errorf("song %d has too many notes: %d", t.Song, len(t.Notes))
		}
		buffer.WriteByte(byte(t.Song))
		binary.LittleEndian.PutUint32(word[:], uint32(len(t.Notes)))
		buffer.Write(word[:])

		for i, n := range t.Notes {
			if err := n.validate(); err != nil {
				return nil, fmt.Errorf("song %d note %d: %w", t.Song, i, err)
			}
			binary.LittleEndian.PutUint32(word[:], uint32(n.StartSample))
			buffer.Write(word[:])
			binary.LittleEndian.PutUint32(word[:], uint32(n.EndSample))
			buffer.Write(word[:])
			binary.LittleEndian.PutUint16(word[:2], uint16(math.Round(n.Volume*volumeScale)))
			buffer.Write(word[:2])
			binary.LittleEndian.PutUint16(word[:2], uint16(n.IntervalLength))
			buffer.Write(word[:2])
		}
	}

	// Sanity check to make sure the output binary is the expected size.
	if buffer.Len() != totalSize {
		return nil, fmt.Errorf("image size mismatch: got %d bytes, expected %d", buffer.Len(), totalSize)
	}
	return buffer.Bytes(), nil
}

// validate checks that a note fits the fixed-width image fields.
func (n Note) validate() error {
	if n.StartSample < 0 || n.StartSample > math.MaxUint32 {
		return fmt.Errorf("start sample %d out of range", n.StartSample)
	}
	if n.EndSample < n.StartSample || n.EndSample > math.MaxUint32 {
		return fmt.Errorf("end sample %d out of range (start %d)", n.EndSample, n.StartSample)
	}
	if n.Volume < 0 || n.Volume > 1 {
		return fmt.Errorf("volume must be 0-1, got %v", n.Volume)
	}
	if n.IntervalLength < 0 || n.IntervalLength > math.MaxUint16 {
		return fmt.Errorf("interval length must be 0-%d, got %d", math.MaxUint16, n.IntervalLength)
	}
	return nil
}

// Decompile reads an image written by Compile.
func Decompile(data []byte) ([]Table, error) {
	if len(data) < imageHeaderSize || string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("not a note image")
	}
	if v := data[len(Magic)]; v != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", v)
	}

	count := int(data[len(Magic)+1])
	pos := imageHeaderSize
	tables := make([]Table, 0, count)
	for i := 0; i < count; i++ {
		if pos+tableHeaderSize > len(data) {
			return nil, fmt.Errorf("table %d: unexpected end of image", i)
		}
		song := int(data[pos])
		numNotes := int(binary.LittleEndian.Uint32(data[pos+1:]))
		pos += tableHeaderSize

		if numNotes > (len(data)-pos)/noteSize {
			return nil, fmt.Errorf("song %d: %d notes don't fit in the remaining %d bytes", song, numNotes, len(data)-pos)
		}
		notes := make([]Note, numNotes)
		for j := range notes {
			notes[j] = Note{
				StartSample:    int64(binary.LittleEndian.Uint32(data[pos:])),
				EndSample:      int64(binary.LittleEndian.Uint32(data[pos+4:])),
				Volume:         float64(binary.LittleEndian.Uint16(data[pos+8:])) / volumeScale,
				IntervalLength: int(binary.LittleEndian.Uint16(data[pos+10:])),
			}
			pos += noteSize
		}
		tables = append(tables, Table{Song: song, Notes: notes})
	}

	if pos != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after last table", len(data)-pos)
	}
	return tables, nil
}
