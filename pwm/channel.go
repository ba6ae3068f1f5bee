package pwm

import "github.com/QEStudios/BuzzerMusic/buzzer"

// Config is the part of a PWM slice configuration that sets its frequency.
type Config struct {
	Top     uint16 // Counter wrap value; the counter runs 0..Top.
	Divider uint8  // Integer clock divider.
}

// Slice is a hardware PWM slice driving one output pin.
type Slice interface {
	SetConfig(cfg Config)
	SetDutyCycle(duty uint16)
	SetDutyCycleFullyOff()
}

// Channel plays tones on a Slice. It implements buzzer.Channel.
type Channel struct {
	slice   Slice
	clockHz uint32
	divider uint8
}

var _ buzzer.Channel = (*Channel)(nil)

// NewChannel returns a Channel for slice, clocked at clockHz and divided by divider.
func NewChannel(slice Slice, clockHz uint32, divider uint8) (*Channel, error) {
	if divider == 0 {
		return nil, ErrZeroDivider
	}
	return &Channel{slice: slice, clockHz: clockHz, divider: divider}, nil
}

// Mute turns the slice's output fully off.
func (c *Channel) Mute() {
	c.slice.SetDutyCycleFullyOff()
}

// SetTone reconfigures the slice for frequency and sets its duty.
// A duty above the period is clamped to fully on.
func (c *Channel) SetTone(frequency uint16, duty uint16) error {
	top, err := Top(c.clockHz, frequency, c.divider)
	if err != nil {
		return err
	}
	c.slice.SetConfig(Config{Top: top, Divider: c.divider})

	if uint32(duty) > uint32(top)+1 {
		// top+1 can't overflow the duty here: Top never returns more than MaxPeriod-1.
		duty = top + 1
	}
	c.slice.SetDutyCycle(duty)
	return nil
}
