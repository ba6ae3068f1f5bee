// Package parser loads songs from any of the supported file formats.
package parser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/QEStudios/BuzzerMusic/midifile"
	"github.com/QEStudios/BuzzerMusic/parser/onlineseq"
)

// Extensions lists the file extensions Load understands.
var Extensions = []string{".txt", ".mid", ".midi", ".bin"}

// Options for loading a song. Zero values fall back to each format's defaults.
type Options struct {
	Name            string  // Song name; defaults to the file name without its extension.
	Tuning          float64 // Frequency of A4.
	End             uint16  // Song length override for note lists.
	StepsPerQuarter int     // Beats per quarter note for MIDI files.
}

// Load reads the song at path, choosing the format from its extension:
// ".txt" note lists, ".mid"/".midi" MIDI files and ".bin" packed songs.
func Load(path string, opts Options, logger *log.Logger) (*buzzer.Song, error) {
	if logger == nil {
		logger = log.Default()
	}
	ext := strings.ToLower(filepath.Ext(path))
	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	switch ext {
	case ".txt":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}
		defer file.Close()

		p := onlineseq.NewParser(file, onlineseq.Options{
			Name:   opts.Name,
			Tuning: opts.Tuning,
			End:    opts.End,
		}, logger)
		return p.Parse()

	case ".mid", ".midi":
		return midifile.ReadFile(path, midifile.Options{
			Name:            opts.Name,
			Tuning:          opts.Tuning,
			StepsPerQuarter: opts.StepsPerQuarter,
		}, logger)

	case ".bin":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading file: %w", err)
		}
		song, err := buzzer.Decode(data)
		if err != nil {
			return nil, err
		}
		song.Name = opts.Name
		return song, nil

	default:
		return nil, fmt.Errorf("unsupported file extension %q (want one of %s)", ext, strings.Join(Extensions, ", "))
	}
}
