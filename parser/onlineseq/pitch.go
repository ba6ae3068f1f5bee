package onlineseq

import (
	"fmt"
	"math"
	"strconv"
)

// Semitones above C for each natural note name.
var noteOffsets = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

const (
	minOctave = -1
	maxOctave = 9
)

/*
parsePitchString parses a pitch string and returns a NotePitch.

A pitch string is a note letter A-G (either case), an optional accidental
('#' for sharp, 'b' for flat) and an octave number from -1 to 9, so that
"C4" is middle C and "A4" is 440 Hz in standard tuning. Examples: "D5", "G#4", "Bb3", "C-1".
*/
func parsePitchString(pitchString string) (NotePitch, error) {
	if len(pitchString) < 2 {
		return NotePitch(0), fmt.Errorf("invalid pitch string '%s'", pitchString)
	}

	letter := pitchString[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	offset, ok := noteOffsets[letter]
	if !ok {
		return NotePitch(0), fmt.Errorf("invalid pitch string '%s'", pitchString)
	}

	rest := pitchString[1:]
	switch rest[0] {
	case '#':
		offset++
		rest = rest[1:]
	case 'b':
		offset--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return NotePitch(0), fmt.Errorf("invalid octave in pitch string '%s'", pitchString)
	}
	if octave < minOctave || octave > maxOctave {
		return NotePitch(0), fmt.Errorf("octave must be %d..%d in pitch string '%s'", minOctave, maxOctave, pitchString)
	}

	pitch := (octave+1)*12 + offset
	if pitch < 0 || pitch > 127 {
		return NotePitch(0), fmt.Errorf("pitch string '%s' is outside the Midi note range", pitchString)
	}
	return NotePitch(pitch), nil
}

// pitchToFreq converts a Midi note number to a frequency, given a specific tuning of A4.
func pitchToFreq(pitch NotePitch, tuning float64) float64 {
	return tuning * math.Pow(2, float64(pitch-69)/12)
}
