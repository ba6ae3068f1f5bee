// Package pwm converts tone frequencies into PWM slice settings and drives
// buzzers through a PWM slice.
package pwm

import (
	"errors"
	"fmt"

	"github.com/QEStudios/BuzzerMusic/buzzer"
)

const (
	// DefaultClockHz is the system clock that feeds the PWM slices (RP2350).
	DefaultClockHz = 150_000_000
	// DefaultDivider is the integer clock divider used for buzzers.
	DefaultDivider = 64

	// MaxPeriod is the largest period count a 16-bit counter can hold (top = 65534).
	MaxPeriod = 0xffff
)

var (
	ErrZeroDivider      = errors.New("divider must not be 0")
	ErrFrequencyTooHigh = errors.New("frequency too high")
	ErrFrequencyTooLow  = errors.New("frequency too low")
)

// Top returns the counter wrap value (top) that makes a PWM slice clocked at
// clockHz, divided by divider, repeat at frequency Hz:
//
//	top = round(clockHz / (frequency * divider)) - 1
//
// The period count (top+1) must be in 1..MaxPeriod.
func Top(clockHz uint32, frequency uint16, divider uint8) (uint16, error) {
	if divider == 0 {
		return 0, ErrZeroDivider
	}
	if frequency == 0 {
		return 0, fmt.Errorf("%w: 0 Hz", ErrFrequencyTooLow)
	}

	step := uint64(frequency) * uint64(divider)
	period := (uint64(clockHz) + step/2) / step

	if period < 1 {
		return 0, fmt.Errorf("%w: %d Hz with divider %d", ErrFrequencyTooHigh, frequency, divider)
	}
	if period > MaxPeriod {
		return 0, fmt.Errorf("%w: %d Hz with divider %d needs period %d, max %d",
			ErrFrequencyTooLow, frequency, divider, period, MaxPeriod)
	}
	return uint16(period - 1), nil
}

// ValidateSong checks that every note in song can be played with the given clock and divider.
func ValidateSong(song *buzzer.Song, clockHz uint32, divider uint8) error {
	for beat, notes := range song.Beats {
		for _, n := range notes {
			if _, err := Top(clockHz, n.Frequency, divider); err != nil {
				return fmt.Errorf("beat %d: %w", beat, err)
			}
		}
	}
	return nil
}
