package buzzer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSong is returned by Validate when a song is malformed.
var ErrInvalidSong = errors.New("invalid song")

// A frequency and how many beats it lasts.
type Note struct {
	Frequency uint16 // Tone frequency in Hz, always > 0.
	Duration  uint16 // Length in beats, always >= 1.
}

// A precompiled song. A Song is never modified by a Player, so one Song can be
// shared by any number of players at the same time.
type Song struct {
	Name string // Name of the song (optional, not used for playback).

	// Beats[i] holds the notes that start at beat i, in the order they are assigned to channels.
	// A nil or empty slot means no note starts on that beat.
	Beats [][]Note

	// The number of beats after which the song repeats.
	End uint16
}

// Validate checks that the song is something a Player can play.
// Producing a valid song is the compiler's job; the player itself does not check notes while ticking.
func (s *Song) Validate() error {
	if s.End == 0 {
		return fmt.Errorf("%w: song length must be at least 1 beat", ErrInvalidSong)
	}
	for beat, notes := range s.Beats {
		if len(notes) == 0 {
			continue
		}
		if beat >= int(s.End) {
			return fmt.Errorf("%w: note starts at beat %d, past the song end (%d)", ErrInvalidSong, beat, s.End)
		}
		if len(notes) > 255 {
			return fmt.Errorf("%w: beat %d has %d notes, max 255", ErrInvalidSong, beat, len(notes))
		}
		for i, n := range notes {
			if n.Frequency == 0 {
				return fmt.Errorf("%w: note %d at beat %d has zero frequency", ErrInvalidSong, i, beat)
			}
			if n.Duration == 0 {
				return fmt.Errorf("%w: note %d at beat %d has zero duration", ErrInvalidSong, i, beat)
			}
		}
	}
	return nil
}

// NoteCount returns the total number of notes in the song.
func (s *Song) NoteCount() int {
	count := 0
	for _, notes := range s.Beats {
		count += len(notes)
	}
	return count
}

// PeakPolyphony returns the largest number of notes that will be sounding at once
// when the song is played. When looping, notes that outlast the end of the song
// keep sounding into the next pass, so later passes are taken into account too.
func (s *Song) PeakPolyphony(looping bool) int {
	end := int(s.End)
	if end == 0 {
		return 0
	}

	passes := 1
	if looping {
		// A note can reach at most maxDuration/end passes past the one it starts in.
		maxDuration := 0
		for _, notes := range s.Beats {
			for _, n := range notes {
				maxDuration = max(maxDuration, int(n.Duration))
			}
		}
		passes = maxDuration/end + 2
	}

	peak := 0
	for t := 0; t < passes*end; t++ {
		count := 0
		for start, notes := range s.Beats {
			if start >= end {
				break
			}
			for _, n := range notes {
				// Every pass k where the note has started and not yet ended at beat t.
				for k := 0; start+k*end <= t; k++ {
					if !looping && k > 0 {
						break
					}
					if t < start+k*end+int(n.Duration) {
						count++
					}
				}
			}
		}
		peak = max(peak, count)
	}
	return peak
}

// Pretty-print
func (s *Song) String() string {
	var b strings.Builder
	b.WriteString("Buzzer Song:\n")
	if s.Name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", s.Name)
	}
	fmt.Fprintf(&b, "- Length: %d beats\n", s.End)
	fmt.Fprintf(&b, "- Notes: %d\n", s.NoteCount())
	fmt.Fprintf(&b, "- Peak polyphony: %d\n", s.PeakPolyphony(false))
	b.WriteString("- Beats:\n")
	for beat, notes := range s.Beats {
		if len(notes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  - Beat #%d:", beat)
		for _, n := range notes {
			fmt.Fprintf(&b, " %dHz x%d", n.Frequency, n.Duration)
		}
		b.WriteString("\n")
	}

	totalSize := s.CalculateSize()
	fmt.Fprintf(&b, "[Total song size: %d byte", totalSize)
	if totalSize != 1 {
		b.WriteString("s") // Pluralise the word "byte" if needed.
	}
	b.WriteString("]\n")

	return b.String()
}
