package synth

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/QEStudios/BuzzerMusic/buzzer"
)

// Stream renders a playing song as mono 32-bit float little endian audio.
// The player is advanced once for every tick's worth of samples.
type Stream struct {
	mu             sync.Mutex
	synth          *Synth
	player         *buzzer.Player
	samplesPerTick int
	untilTick      int
	done           bool
	err            error
}

// NewStream creates a Stream that plays player through synth, advancing it every tick.
// The player's channels must be the synth's channels.
func NewStream(synth *Synth, player *buzzer.Player, tick time.Duration) (*Stream, error) {
	samples := int(math.Round(synth.sampleRate * tick.Seconds()))
	if samples < 1 {
		return nil, fmt.Errorf("tick of %v is shorter than one sample", tick)
	}
	return &Stream{
		synth:          synth,
		player:         player,
		samplesPerTick: samples,
	}, nil
}

// Read implements io.Reader. It returns io.EOF once the song has stopped.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return 0, s.err
	}
	if s.done {
		return 0, io.EOF
	}

	frames := len(p) / 4
	for i := 0; i < frames; i++ {
		if s.untilTick == 0 && !s.done {
			status, err := s.player.Advance()
			if err != nil {
				s.err = fmt.Errorf("error advancing player: %w", err)
				return i * 4, s.err
			}
			if status == buzzer.Stopped {
				s.done = true
			}
			s.untilTick = s.samplesPerTick
		}
		s.untilTick--
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s.synth.sample()))
	}

	if s.done {
		return frames * 4, io.EOF
	}
	return frames * 4, nil
}

// Pause pauses the player.
func (s *Stream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Pause()
}

// Resume resumes the player.
func (s *Stream) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Resume()
}

// Restart plays the song from the beginning, even after it has stopped.
func (s *Stream) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Restart()
	s.done = false
	s.untilTick = 0
}

// Done reports whether the song has stopped.
func (s *Stream) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error that stopped the stream, if any.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
