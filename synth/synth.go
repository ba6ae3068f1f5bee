// Package synth emulates PWM driven buzzers in software so songs can be heard
// on a computer.
package synth

import (
	"fmt"
	"math"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/QEStudios/BuzzerMusic/pwm"
)

// Slice emulates a PWM slice with a buzzer on its output. It implements pwm.Slice.
type Slice struct {
	clockHz uint32
	cfg     pwm.Config
	compare uint16
	on      bool
	phase   float64 // Position in the current period, 0..1.
}

var _ pwm.Slice = (*Slice)(nil)

func (s *Slice) SetConfig(cfg pwm.Config) { s.cfg = cfg }

func (s *Slice) SetDutyCycle(duty uint16) {
	s.compare = duty
	s.on = true
}

func (s *Slice) SetDutyCycleFullyOff() {
	s.compare = 0
	s.on = false
}

// Frequency returns the frequency the slice is running at, which differs slightly from the
// requested one because top is a whole number. It returns 0 when the slice is off.
func (s *Slice) Frequency() float64 {
	if !s.on || s.cfg.Divider == 0 {
		return 0
	}
	return float64(s.clockHz) / (float64(s.cfg.Divider) * (float64(s.cfg.Top) + 1))
}

// Duty returns the fraction of each period the output is high.
func (s *Slice) Duty() float64 {
	if !s.on {
		return 0
	}
	return min(1, float64(s.compare)/(float64(s.cfg.Top)+1))
}

// next returns the next sample, with the square wave's DC offset removed.
func (s *Slice) next(sampleRate float64) float32 {
	freq := s.Frequency()
	duty := s.Duty()
	if freq == 0 || duty == 0 {
		return 0
	}
	s.phase += freq / sampleRate
	s.phase -= math.Floor(s.phase)

	level := 0.0
	if s.phase < duty {
		level = 1
	}
	return float32(level - duty)
}

// Synth mixes a set of emulated slices into mono audio.
type Synth struct {
	sampleRate float64
	clockHz    uint32
	slices     []*Slice
	gain       float32
}

// New creates a Synth with n slices clocked at clockHz, rendering at sampleRate.
func New(sampleRate int, clockHz uint32, n int) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if n <= 0 {
		return nil, fmt.Errorf("at least one slice is required")
	}
	s := &Synth{
		sampleRate: float64(sampleRate),
		clockHz:    clockHz,
		gain:       0.5 / float32(n),
	}
	for i := 0; i < n; i++ {
		s.slices = append(s.slices, &Slice{clockHz: clockHz})
	}
	return s, nil
}

// Slices returns the emulated slices.
func (s *Synth) Slices() []*Slice {
	return s.slices
}

// Channels wraps every slice in a pwm.Channel using divider, ready to be passed to buzzer.New.
func (s *Synth) Channels(divider uint8) ([]buzzer.Channel, error) {
	channels := make([]buzzer.Channel, len(s.slices))
	for i, slice := range s.slices {
		ch, err := pwm.NewChannel(slice, s.clockHz, divider)
		if err != nil {
			return nil, err
		}
		channels[i] = ch
	}
	return channels, nil
}

func (s *Synth) sample() float32 {
	var mix float32
	for _, slice := range s.slices {
		mix += slice.next(s.sampleRate)
	}
	return mix * s.gain
}

// Render fills dst with mono samples.
func (s *Synth) Render(dst []float32) {
	for i := range dst {
		dst[i] = s.sample()
	}
}
