package buzzer

import (
	"errors"
	"fmt"
)

var (
	ErrNoChannels       = errors.New("at least one channel is required")
	ErrZeroTicksPerBeat = errors.New("ticks per beat must be at least 1")
	ErrEmptySong        = errors.New("song is nil or has zero length")
	ErrTooManyNotes     = errors.New("more simultaneous notes than the player can hold")
)

// Channel is one tone output, usually a buzzer on a PWM pin.
type Channel interface {
	// Mute turns the output fully off.
	Mute()
	// SetTone drives the output at the given frequency with the given raw duty value.
	SetTone(frequency uint16, duty uint16) error
}

// Config holds the fixed settings of a Player.
type Config struct {
	// If true, the song starts again from the beginning once it ends.
	Looping bool
	// How many calls to Advance make up one beat.
	// If Advance is called every 40ms with 3 ticks per beat, a beat lasts 120ms.
	TicksPerBeat uint16
	// Raw duty value used for every note.
	Duty uint16
	// The largest number of notes that can sound at the same time.
	// Zero means the song's peak polyphony.
	MaxNotes int
}

// DefaultConfig returns the settings commonly used with a single buzzer updated every 40ms.
func DefaultConfig() Config {
	return Config{
		Looping:      true,
		TicksPerBeat: 3,
		Duty:         100,
		MaxNotes:     16,
	}
}

// Status is the result of a call to Advance.
type Status int

const (
	Advanced Status = iota // The player moved forward one tick.
	Stopped                // The song reached its end without looping and the player paused itself.
	Paused                 // The player is paused; nothing happened.
)

func (s Status) String() string {
	switch s {
	case Advanced:
		return "advanced"
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PlaybackState is a snapshot of a Player's counters.
type PlaybackState struct {
	Timer     uint32 // Ticks since the start of the current pass through the song.
	BeatTimer uint16 // Ticks since the last beat.
	Beat      int32  // Current beat, -1 before the first beat.
	Paused    bool
	Cursor    int // Multiplexing position among the notes that do not fit on a channel.
	Sounding  int // Number of notes currently sounding.
}

// Player plays a Song on one or more channels.
//
// A Player does not keep time on its own: Advance must be called at a steady rate
// from a single goroutine. Advance does not allocate.
type Player struct {
	song      *Song
	looping   bool
	ticksPer  uint16
	duty      uint16
	loopTicks uint32 // Length of one pass in ticks.
	channels  []Channel

	paused    bool
	timer     uint32
	beatTimer uint16
	beat      int32
	cursor    int
	playing   noteList
}

// New creates a Player for song. Every channel is muted before New returns.
//
// New fails if the configuration can't play the song, including when cfg.MaxNotes
// is smaller than the number of notes the song sounds at once.
func New(song *Song, cfg Config, channels []Channel) (*Player, error) {
	if song == nil || song.End == 0 {
		return nil, ErrEmptySong
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if cfg.TicksPerBeat == 0 {
		return nil, ErrZeroTicksPerBeat
	}
	if err := song.Validate(); err != nil {
		return nil, err
	}

	peak := song.PeakPolyphony(cfg.Looping)
	maxNotes := cfg.MaxNotes
	if maxNotes == 0 {
		maxNotes = peak
	}
	if maxNotes < peak {
		return nil, fmt.Errorf("%w: song needs %d, player holds %d", ErrTooManyNotes, peak, maxNotes)
	}

	p := &Player{
		song:      song,
		looping:   cfg.Looping,
		ticksPer:  cfg.TicksPerBeat,
		duty:      cfg.Duty,
		loopTicks: uint32(cfg.TicksPerBeat) * uint32(song.End),
		channels:  append([]Channel(nil), channels...),
		beat:      -1,
		playing:   newNoteList(maxNotes),
	}
	p.muteAll()
	return p, nil
}

// Song returns the song being played.
func (p *Player) Song() *Song { return p.song }

// State returns the player's current counters.
func (p *Player) State() PlaybackState {
	return PlaybackState{
		Timer:     p.timer,
		BeatTimer: p.beatTimer,
		Beat:      p.beat,
		Paused:    p.paused,
		Cursor:    p.cursor,
		Sounding:  p.playing.len(),
	}
}

// Sounding copies the notes currently sounding into dst, in channel order,
// and returns the number copied.
func (p *Player) Sounding(dst []Note) int {
	return copy(dst, p.playing.notes)
}

// Pause mutes every channel. It can be resumed using Resume.
// This doesn't do anything if already paused.
func (p *Player) Pause() {
	if p.paused {
		return
	}
	p.muteAll()
	p.paused = true
}

// Resume continues playback from where Pause left it.
// This doesn't do anything if not paused.
func (p *Player) Resume() {
	p.paused = false
}

// Restart starts the song from the beginning, muting every channel first.
// Will play if paused.
func (p *Player) Restart() {
	p.timer = 0
	p.beatTimer = 0
	p.beat = -1
	p.cursor = 0
	p.playing.clear()

	p.paused = false
	p.Pause()
	p.Resume()
}

// Advance moves the player forward by one tick.
//
// It returns Paused without touching anything if the player is paused, and Stopped
// on the tick the song ends when not looping. An error means the player was set up
// wrong for the song or a channel rejected a tone.
func (p *Player) Advance() (Status, error) {
	if p.paused {
		return Paused, nil
	}

	p.timer++
	p.beatTimer++

	// Once enough ticks have passed, play the next beat.
	if p.beatTimer >= p.ticksPer {
		p.beatTimer = 0
		if err := p.playBeat(); err != nil {
			return Advanced, err
		}
	}

	// At the end of the song, go back to the start if looping (pause otherwise).
	if p.timer%p.loopTicks == 0 {
		if !p.looping {
			p.Pause()
			return Stopped, nil
		}
		p.timer = 0
		p.beat = -1
	}

	// If more notes are sounding than there are channels, cycle the extra notes
	// through the last channel, one per tick.
	channels := len(p.channels)
	if p.playing.len() > channels {
		if p.cursor > p.playing.len()-channels {
			p.cursor = 0
		}
		note := p.playing.at(p.cursor + channels - 1)
		if err := p.setTone(channels-1, note.Frequency); err != nil {
			return Advanced, err
		}
		p.cursor++
	}

	return Advanced, nil
}

func (p *Player) playBeat() error {
	p.beat++

	p.playing.age()

	if int(p.beat) < len(p.song.Beats) {
		for _, note := range p.song.Beats[p.beat] {
			if !p.playing.push(note) {
				return fmt.Errorf("%w: beat %d would sound %d notes, player holds %d",
					ErrTooManyNotes, p.beat, p.playing.len()+1, cap(p.playing.notes))
			}
		}
	}

	for i := range p.channels {
		if i >= p.playing.len() {
			p.channels[i].Mute()
			continue
		}
		if err := p.setTone(i, p.playing.at(i).Frequency); err != nil {
			return err
		}
	}
	return nil
}

// setTone reprograms one channel. The channel is muted first because some PWM
// peripherals ignore a new configuration while running.
func (p *Player) setTone(channel int, frequency uint16) error {
	ch := p.channels[channel]
	ch.Mute()
	if err := ch.SetTone(frequency, p.duty); err != nil {
		return fmt.Errorf("channel %d: %w", channel, err)
	}
	return nil
}

func (p *Player) muteAll() {
	for _, ch := range p.channels {
		ch.Mute()
	}
}
