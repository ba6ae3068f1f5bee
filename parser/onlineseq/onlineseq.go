// Package onlineseq compiles onlinesequencer.net style note lists into buzzer songs.
//
// A note list is a series of entries separated by ';', each one
//
//	start pitch duration volume
//
// for example "0 D5 1 11;2 D5 1 11;4 D6 1.75 11". Start and duration are in beats
// and may be fractional. The volume is read but not used, since buzzers play every
// note at the same duty.
package onlineseq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/davecgh/go-spew/spew"
)

// Clipboard exports from the site are wrapped as "Online Sequencer:<id>:<notes>:".
const clipboardPrefix = "Online Sequencer:"

// Options controls how a note list is compiled.
type Options struct {
	Name   string  // Name given to the song.
	Tuning float64 // The frequency of A4 (usually 440 Hz).
	// Song length in beats. Zero means the end of the last note.
	End uint16
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Tuning: 440}
}

type NotePitch int // A single note (stored as a Midi note number).

// A note as written in the source, before it is placed on a beat.
type Event struct {
	Entry    int // 1-based position of the entry in the list.
	Start    float64
	Pitch    NotePitch
	Duration float64
	Volume   float64
}

// Small struct for non-fatal warnings
type ParseWarning struct {
	Entry   int
	Message string
}

func (pw ParseWarning) String() string {
	return fmt.Sprintf("entry %d: %s", pw.Entry, pw.Message)
}

type ParseResult struct {
	Events   []Event
	Warnings []ParseWarning
}

type Parser struct {
	scanner *bufio.Scanner
	logger  *log.Logger
	opts    Options
	entry   int

	// Collect any warnings whilst parsing.
	warnings []ParseWarning

	// Whether or not the parser has already been used.
	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser reading a note list from r.
func NewParser(r io.Reader, opts Options, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Tuning <= 0 {
		opts.Tuning = 440
	}
	scanner := bufio.NewScanner(r)
	scanner.Split(splitEntries)
	return &Parser{
		scanner: scanner,
		logger:  logger,
		opts:    opts,
	}
}

// ParseString compiles a note list held in a string.
func ParseString(s string, opts Options, logger *log.Logger) (*buzzer.Song, error) {
	return NewParser(strings.NewReader(s), opts, logger).Parse()
}

// splitEntries is a bufio.SplitFunc that returns each ';' separated entry.
func splitEntries(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, ';'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	// Request more data.
	return 0, nil, nil
}

// addWarning adds to the list of warnings encountered when parsing.
func (p *Parser) addWarning(format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Entry:   p.entry,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) fatalf(format string, args ...any) error {
	return fmt.Errorf("entry %d: %s", p.entry, fmt.Sprintf(format, args...))
}

func (p *Parser) parseInternal() (*ParseResult, error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true

	var events []Event
	for p.scanner.Scan() {
		p.entry++
		text := strings.TrimSpace(p.scanner.Text())

		if p.entry == 1 {
			if rest, found := strings.CutPrefix(text, clipboardPrefix); found {
				// Drop the sequence id.
				_, notes, ok := strings.Cut(rest, ":")
				if !ok {
					return nil, p.fatalf("clipboard header without notes: %q", text)
				}
				text = strings.TrimSpace(notes)
			}
		}
		// The clipboard format ends with a lone ':' after the last ';'.
		text = strings.TrimSpace(strings.TrimSuffix(text, ":"))
		if text == "" {
			continue
		}

		event, err := p.parseEvent(text)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("error while reading note list: %w", err)
	}

	return &ParseResult{Events: events, Warnings: p.warnings}, nil
}

// parseEvent parses a single "start pitch duration volume" entry.
func (p *Parser) parseEvent(text string) (Event, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return Event{}, p.fatalf("expected 'start pitch duration volume', got %q", text)
	}
	if len(fields) > 4 {
		p.addWarning("ignoring %d extra fields", len(fields)-4)
	}

	start, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(start) || math.IsInf(start, 0) {
		return Event{}, p.fatalf("invalid start %q", fields[0])
	}
	if start < 0 {
		return Event{}, p.fatalf("start must not be negative, got %v", start)
	}

	pitch, err := parsePitchString(fields[1])
	if err != nil {
		return Event{}, p.fatalf("%v", err)
	}

	duration, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return Event{}, p.fatalf("invalid duration %q", fields[2])
	}
	if duration <= 0 {
		return Event{}, p.fatalf("duration must be positive, got %v", duration)
	}

	var volume float64
	if len(fields) > 3 {
		volume, err = strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return Event{}, p.fatalf("invalid volume %q", fields[3])
		}
	}

	return Event{
		Entry:    p.entry,
		Start:    start,
		Pitch:    pitch,
		Duration: duration,
		Volume:   volume,
	}, nil
}

// place turns the parsed events into a beat indexed song.
func (p *Parser) place(events []Event) (*buzzer.Song, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("note list has no notes")
	}

	type placed struct {
		beat int
		note buzzer.Note
	}
	notes := make([]placed, 0, len(events))
	lastBeat, end := 0, 0

	for _, e := range events {
		p.entry = e.Entry

		beat := math.Round(e.Start)
		if beat != e.Start {
			p.addWarning("start %v moved to beat %v", e.Start, beat)
		}
		duration := math.Round(e.Duration)
		if duration < 1 {
			p.addWarning("duration %v lengthened to 1 beat", e.Duration)
			duration = 1
		} else if duration != e.Duration {
			p.addWarning("duration %v rounded to %v beats", e.Duration, duration)
		}
		if beat+duration > math.MaxUint16 {
			return nil, p.fatalf("note ends at beat %v, past the last beat %d", beat+duration, math.MaxUint16)
		}

		freq := math.Round(pitchToFreq(e.Pitch, p.opts.Tuning))
		if freq < 1 || freq > math.MaxUint16 {
			return nil, p.fatalf("pitch %d is %v Hz, outside 1..%d Hz", e.Pitch, freq, math.MaxUint16)
		}

		notes = append(notes, placed{
			beat: int(beat),
			note: buzzer.Note{Frequency: uint16(freq), Duration: uint16(duration)},
		})
		lastBeat = max(lastBeat, int(beat))
		end = max(end, int(beat+duration))
	}

	if p.opts.End > 0 {
		if lastBeat >= int(p.opts.End) {
			return nil, fmt.Errorf("a note starts at beat %d, past the song end (%d)", lastBeat, p.opts.End)
		}
		end = int(p.opts.End)
	}

	song := &buzzer.Song{
		Name:  p.opts.Name,
		Beats: make([][]buzzer.Note, lastBeat+1),
		End:   uint16(end),
	}
	// Notes on the same beat stay in the order they were written.
	for _, n := range notes {
		song.Beats[n.beat] = append(song.Beats[n.beat], n.note)
	}

	if err := song.Validate(); err != nil {
		spew.Fdump(p.logger.Writer(), song)
		return nil, fmt.Errorf("internal error: compiled song is invalid: %w", err)
	}
	return song, nil
}

// Parse compiles the note list into a song.
func (p *Parser) Parse() (*buzzer.Song, error) {
	result, err := p.parseInternal()
	if err != nil {
		return nil, err
	}

	song, err := p.place(result.Events)
	if err != nil {
		return nil, err
	}

	if len(p.warnings) > 0 {
		p.logger.Println("Warnings produced while parsing note list:")
		for _, warning := range p.warnings {
			p.logger.Println(warning)
		}
	}
	return song, nil
}

// Warnings returns the non-fatal problems found by Parse.
func (p *Parser) Warnings() []ParseWarning {
	return p.warnings
}
