// Package trace records what a player does to its channels, for running songs
// without hardware.
package trace

import (
	"fmt"
	"strings"

	"github.com/QEStudios/BuzzerMusic/buzzer"
)

type Kind int

const (
	Mute Kind = iota // The channel was turned off.
	Tone             // The channel was set to a frequency.
)

// A single change to a channel.
type Event struct {
	Tick      int
	Channel   int
	Kind      Kind
	Frequency uint16 // For Tone: the frequency in Hz.
	Duty      uint16 // For Tone: the raw duty value.
}

func (e Event) String() string {
	switch e.Kind {
	case Mute:
		return "off"
	case Tone:
		return fmt.Sprintf("%d Hz", e.Frequency)
	default:
		return ""
	}
}

// Recorder hands out channels that record every change made to them.
type Recorder struct {
	channels []buzzer.Channel
	events   []Event
	tick     int
}

type channel struct {
	r     *Recorder
	index int
}

func (c *channel) Mute() {
	c.r.events = append(c.r.events, Event{Tick: c.r.tick, Channel: c.index, Kind: Mute})
}

func (c *channel) SetTone(frequency uint16, duty uint16) error {
	c.r.events = append(c.r.events, Event{
		Tick:      c.r.tick,
		Channel:   c.index,
		Kind:      Tone,
		Frequency: frequency,
		Duty:      duty,
	})
	return nil
}

// NewRecorder creates a Recorder with n channels.
func NewRecorder(n int) *Recorder {
	r := &Recorder{}
	for i := 0; i < n; i++ {
		r.channels = append(r.channels, &channel{r: r, index: i})
	}
	return r
}

// Channels returns the recording channels, to be passed to buzzer.New.
func (r *Recorder) Channels() []buzzer.Channel {
	return r.channels
}

// Events returns every recorded change in order.
func (r *Recorder) Events() []Event {
	return r.events
}

// Run advances p up to ticks times, stamping events with the tick number (1-based;
// changes made before the first tick are stamped 0). It stops early when the song
// stops or the player is paused, and returns the number of ticks run.
func (r *Recorder) Run(p *buzzer.Player, ticks int) (int, error) {
	for i := 0; i < ticks; i++ {
		r.tick = i + 1
		status, err := p.Advance()
		if err != nil {
			return r.tick, fmt.Errorf("tick %d: %w", r.tick, err)
		}
		if status != buzzer.Advanced {
			return r.tick, nil
		}
	}
	return ticks, nil
}

// Table formats the recorded events into a table with a column per channel and a row
// for every tick that changed something. Only the last change to a channel within a
// tick is shown, since a retune always mutes first.
func (r *Recorder) Table(indent int) string {
	numChannels := len(r.channels)

	type row struct {
		tick  int
		cells []string
	}
	var rows []row
	for _, e := range r.events {
		if len(rows) == 0 || rows[len(rows)-1].tick != e.Tick {
			rows = append(rows, row{tick: e.Tick, cells: make([]string, numChannels)})
		}
		rows[len(rows)-1].cells[e.Channel] = e.String()
	}

	headers := make([]string, numChannels+1)
	headers[0] = "Tick"
	for i := 0; i < numChannels; i++ {
		headers[i+1] = fmt.Sprintf("Channel %d", i)
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(len(h), 8)
	}
	for _, rw := range rows {
		widths[0] = max(widths[0], len(fmt.Sprint(rw.tick)))
		for i, cell := range rw.cells {
			widths[i+1] = max(widths[i+1], len(cell))
		}
	}

	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder
	separator := func() {
		b.WriteString(strings.Repeat(" ", indent))
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}
	line := func(cells []string) {
		b.WriteString(strings.Repeat(" ", indent))
		for i, cell := range cells {
			b.WriteString("| ")
			b.WriteString(padRight(cell, widths[i]))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	separator()
	line(headers)
	separator()
	for _, rw := range rows {
		line(append([]string{fmt.Sprint(rw.tick)}, rw.cells...))
	}
	separator()

	return b.String()
}
