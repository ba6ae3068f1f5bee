// Package midifile converts between buzzer songs and Standard MIDI Files.
package midifile

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// DefaultResolution is the number of MIDI ticks per quarter note used when exporting.
	DefaultResolution = 960
	// DefaultStepsPerQuarter maps one song beat to a sixteenth note.
	DefaultStepsPerQuarter = 4

	velocity = 100
)

var ErrNoNotes = errors.New("MIDI file has no notes")

// KeyToFrequency converts a Midi note number to a frequency, given a specific tuning of A4.
func KeyToFrequency(key uint8, tuning float64) float64 {
	return tuning * math.Pow(2, (float64(key)-69)/12)
}

// FrequencyToKey returns the Midi note number closest to frequency, given a specific tuning of A4.
func FrequencyToKey(frequency uint16, tuning float64) uint8 {
	if frequency == 0 {
		return 0
	}
	key := math.Round(69 + 12*math.Log2(float64(frequency)/tuning))
	return uint8(min(127, max(0, key)))
}

// Options controls the conversion between beats and MIDI time.
type Options struct {
	Tuning          float64 // The frequency of A4 (usually 440 Hz).
	StepsPerQuarter int     // How many song beats fit in a quarter note.
	BPM             float64 // Tempo written on export, in quarter notes per minute.
	Resolution      uint16  // Ticks per quarter note written on export.
	Name            string  // Name given to imported songs.
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Tuning:          440,
		StepsPerQuarter: DefaultStepsPerQuarter,
		BPM:             120,
		Resolution:      DefaultResolution,
	}
}

func (o *Options) fill() error {
	defaults := DefaultOptions()
	if o.Tuning <= 0 {
		o.Tuning = defaults.Tuning
	}
	if o.StepsPerQuarter <= 0 {
		o.StepsPerQuarter = defaults.StepsPerQuarter
	}
	if o.BPM <= 0 {
		o.BPM = defaults.BPM
	}
	if o.Resolution == 0 {
		o.Resolution = defaults.Resolution
	}
	if int(o.Resolution)%o.StepsPerQuarter != 0 {
		return fmt.Errorf("resolution %d is not a multiple of %d steps per quarter", o.Resolution, o.StepsPerQuarter)
	}
	return nil
}

// A timed message, before it is turned into a delta encoded track.
type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// Export converts song into a two track MIDI file: a tempo track and a note track on channel 0.
func Export(song *buzzer.Song, opts Options) (*smf.SMF, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}
	if err := opts.fill(); err != nil {
		return nil, err
	}
	ticksPerBeat := uint32(opts.Resolution) / uint32(opts.StepsPerQuarter)

	out := smf.New()
	out.TimeFormat = smf.MetricTicks(opts.Resolution)

	// Track 0: Tempo track
	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(opts.BPM))
	tempo.Close(0)
	if err := out.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	var messages []timedMessage
	for beat, notes := range song.Beats {
		for _, n := range notes {
			key := FrequencyToKey(n.Frequency, opts.Tuning)
			start := uint32(beat) * ticksPerBeat
			messages = append(messages,
				timedMessage{tick: start, msg: midi.NoteOn(0, key, velocity)},
				timedMessage{tick: start + uint32(n.Duration)*ticksPerBeat, off: true, msg: midi.NoteOff(0, key)},
			)
		}
	}
	// Note offs go first so a note ending where another starts doesn't cut it off.
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].tick != messages[j].tick {
			return messages[i].tick < messages[j].tick
		}
		return messages[i].off && !messages[j].off
	})

	var track smf.Track
	var now uint32
	for _, m := range messages {
		track.Add(m.tick-now, m.msg)
		now = m.tick
	}
	end := uint32(song.End) * ticksPerBeat
	track.Close(end - min(end, now))
	if err := out.Add(track); err != nil {
		return nil, fmt.Errorf("error adding note track: %w", err)
	}

	return out, nil
}

type noteKey struct {
	channel uint8
	key     uint8
}

type heldNote struct {
	start uint32
	key   uint8
	seq   int // Position of the note on among every note on read.
}

type importedNote struct {
	beat  int
	order int
	note  buzzer.Note
}

// Import converts every note in a MIDI file into a song, quantizing note starts and
// lengths to beats. Overlapping notes of the same key on the same channel are paired
// first in, first out. Notes still held at the end of a track end there.
func Import(file *smf.SMF, opts Options, logger *log.Logger) (*buzzer.Song, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := opts.fill(); err != nil {
		return nil, err
	}
	metric, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported MIDI time format %v", file.TimeFormat)
	}
	ticksPerBeat := float64(metric.Resolution()) / float64(opts.StepsPerQuarter)

	var notes []importedNote
	var seq int
	finish := func(h heldNote, endTick uint32) error {
		beat := math.Round(float64(h.start) / ticksPerBeat)
		length := max(1, math.Round(float64(endTick-h.start)/ticksPerBeat))
		if beat+length > math.MaxUint16 {
			return fmt.Errorf("note at tick %d ends past beat %d", h.start, math.MaxUint16)
		}
		freq := math.Round(KeyToFrequency(h.key, opts.Tuning))
		if freq < 1 {
			freq = 1
		}
		notes = append(notes, importedNote{
			beat:  int(beat),
			order: h.seq,
			note:  buzzer.Note{Frequency: uint16(freq), Duration: uint16(length)},
		})
		return nil
	}

	for trackIndex, track := range file.Tracks {
		held := map[noteKey][]heldNote{}
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			msg := midi.Message(ev.Message)

			var channel, key, vel uint8
			switch {
			case msg.GetNoteOn(&channel, &key, &vel) && vel > 0:
				k := noteKey{channel, key}
				held[k] = append(held[k], heldNote{start: tick, key: key, seq: seq})
				seq++
			case msg.GetNoteOn(&channel, &key, &vel), msg.GetNoteOff(&channel, &key, &vel):
				k := noteKey{channel, key}
				if len(held[k]) == 0 {
					continue
				}
				h := held[k][0]
				held[k] = held[k][1:]
				if err := finish(h, tick); err != nil {
					return nil, err
				}
			}
		}

		var dangling []heldNote
		for _, hs := range held {
			dangling = append(dangling, hs...)
		}
		sort.Slice(dangling, func(i, j int) bool { return dangling[i].start < dangling[j].start })
		for _, h := range dangling {
			logger.Printf("track %d: note %d started at tick %d never ends, ending it with the track", trackIndex, h.key, h.start)
			if err := finish(h, tick); err != nil {
				return nil, err
			}
		}
	}

	if len(notes) == 0 {
		return nil, ErrNoNotes
	}

	// Notes are placed by start beat; ties keep the order they started in.
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].beat != notes[j].beat {
			return notes[i].beat < notes[j].beat
		}
		return notes[i].order < notes[j].order
	})

	lastBeat, end := 0, 0
	for _, n := range notes {
		lastBeat = max(lastBeat, n.beat)
		end = max(end, n.beat+int(n.note.Duration))
	}
	song := &buzzer.Song{
		Name:  opts.Name,
		Beats: make([][]buzzer.Note, lastBeat+1),
		End:   uint16(end),
	}
	for _, n := range notes {
		song.Beats[n.beat] = append(song.Beats[n.beat], n.note)
	}
	if err := song.Validate(); err != nil {
		return nil, err
	}
	return song, nil
}

// ReadFile imports the MIDI file at path.
func ReadFile(path string, opts Options, logger *log.Logger) (*buzzer.Song, error) {
	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading MIDI file: %w", err)
	}
	return Import(file, opts, logger)
}

// WriteFile exports song to a MIDI file at path.
func WriteFile(song *buzzer.Song, path string, opts Options) error {
	out, err := Export(song, opts)
	if err != nil {
		return err
	}
	if err := out.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
