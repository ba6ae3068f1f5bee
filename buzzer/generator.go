package buzzer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"go/format"
	"go/token"
)

// ErrTruncated is returned by Decode when the data ends in the middle of a song.
var ErrTruncated = errors.New("packed song is truncated")

const (
	headerSize = 4 // End (2 bytes) and slot count (2 bytes).
	noteSize   = 4 // Frequency (2 bytes) and duration (2 bytes).
)

// CalculateSize returns the size in bytes of the packed song.
func (s *Song) CalculateSize() int {
	size := headerSize
	for _, notes := range s.Beats {
		// Every slot has a 1 byte note count, followed by its notes.
		size += 1 + len(notes)*noteSize
	}
	return size
}

// Compile packs the song into the binary format read by Decode.
//
// All values are little endian:
//
//	u16 end
//	u16 slot count
//	per slot: u8 note count, then (u16 frequency, u16 duration) per note
func (s *Song) Compile() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(s.Beats) > 0xffff {
		return nil, fmt.Errorf("song has %d beat slots, max %d", len(s.Beats), 0xffff)
	}

	totalSize := s.CalculateSize()
	buffer := bytes.NewBuffer(make([]byte, 0, totalSize))

	var word [2]byte
	writeWord := func(v uint16) {
		binary.LittleEndian.PutUint16(word[:], v)
		buffer.Write(word[:])
	}

	writeWord(s.End)
	writeWord(uint16(len(s.Beats)))
	for _, notes := range s.Beats {
		buffer.WriteByte(byte(len(notes)))
		for _, n := range notes {
			writeWord(n.Frequency)
			writeWord(n.Duration)
		}
	}

	// Sanity check to make sure the output binary is the expected size.
	if buffer.Len() != totalSize {
		return nil, fmt.Errorf("packed song size mismatch: got %d bytes, expected %d", buffer.Len(), totalSize)
	}
	return buffer.Bytes(), nil
}

// Decode unpacks a song produced by Compile.
// Empty slots decode as nil. The decoded song is validated before it is returned.
func Decode(data []byte) (*Song, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	song := &Song{End: binary.LittleEndian.Uint16(data[0:2])}
	slots := int(binary.LittleEndian.Uint16(data[2:4]))
	song.Beats = make([][]Note, slots)

	pos := headerSize
	for beat := 0; beat < slots; beat++ {
		if pos >= len(data) {
			return nil, fmt.Errorf("%w: missing slot %d", ErrTruncated, beat)
		}
		count := int(data[pos])
		pos++
		if count == 0 {
			continue
		}
		if pos+count*noteSize > len(data) {
			return nil, fmt.Errorf("%w: slot %d needs %d notes", ErrTruncated, beat, count)
		}
		notes := make([]Note, count)
		for i := range notes {
			notes[i] = Note{
				Frequency: binary.LittleEndian.Uint16(data[pos:]),
				Duration:  binary.LittleEndian.Uint16(data[pos+2:]),
			}
			pos += noteSize
		}
		song.Beats[beat] = notes
	}
	if pos != len(data) {
		return nil, fmt.Errorf("packed song has %d trailing bytes", len(data)-pos)
	}

	if err := song.Validate(); err != nil {
		return nil, err
	}
	return song, nil
}

// GoSource returns formatted Go source declaring the song as a package level variable,
// so it can be compiled into a program instead of loaded at startup.
func (s *Song) GoSource(pkg, name string) ([]byte, error) {
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}
	if !token.IsIdentifier(name) {
		return nil, fmt.Errorf("invalid variable name %q", name)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString("// Code generated by buzzer compiler. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("import \"github.com/QEStudios/BuzzerMusic/buzzer\"\n\n")
	fmt.Fprintf(&b, "var %s = &buzzer.Song{\n", name)
	if s.Name != "" {
		fmt.Fprintf(&b, "Name: %q,\n", s.Name)
	}
	fmt.Fprintf(&b, "End: %d,\n", s.End)
	b.WriteString("Beats: [][]buzzer.Note{\n")
	for beat, notes := range s.Beats {
		if len(notes) == 0 {
			fmt.Fprintf(&b, "%d: nil,\n", beat)
			continue
		}
		fmt.Fprintf(&b, "%d: {", beat)
		for i, n := range notes {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "{Frequency: %d, Duration: %d}", n.Frequency, n.Duration)
		}
		b.WriteString("},\n")
	}
	b.WriteString("},\n}\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("error formatting generated source: %w", err)
	}
	return src, nil
}
