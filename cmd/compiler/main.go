package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/QEStudios/BuzzerMusic/midifile"
	"github.com/QEStudios/BuzzerMusic/parser"
	"github.com/QEStudios/BuzzerMusic/pwm"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
)

var logger *log.Logger

// Extensions the compiler accepts as input.
var sourceExtensions = []string{".txt", ".mid", ".midi"}

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	var (
		opts      parser.Options
		clockHz   uint32
		divider   uint8
		goPackage string
		goVar     string
		writeGo   bool
		writeMidi bool
		dump      bool
	)
	pflag.Float64VarP(&opts.Tuning, "tuning", "t", 440, "frequency of A4 in Hz")
	pflag.Uint16VarP(&opts.End, "end", "e", 0, "song length in beats (0 = end of the last note)")
	pflag.IntVar(&opts.StepsPerQuarter, "steps", midifile.DefaultStepsPerQuarter, "beats per quarter note when reading MIDI files")
	pflag.StringVarP(&opts.Name, "name", "n", "", "song name (default: file name)")
	pflag.Uint32Var(&clockHz, "clock", pwm.DefaultClockHz, "PWM input clock in Hz, used to check note ranges")
	pflag.Uint8Var(&divider, "divider", pwm.DefaultDivider, "PWM integer clock divider, used to check note ranges")
	pflag.BoolVarP(&writeGo, "go", "g", false, "also write a .go file declaring the song")
	pflag.StringVar(&goPackage, "package", "songs", "package name for the .go file")
	pflag.StringVar(&goVar, "var", "Song", "variable name for the .go file")
	pflag.BoolVarP(&writeMidi, "midi", "m", false, "also write a .mid file of the compiled song")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the compiled song structure")
	pflag.Parse()

	// Get the path of the note list.
	path, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	song, err := parser.Load(path, opts, logger)
	if err != nil {
		logger.Fatalf("parse error: %v", err)
	}

	fmt.Println(song)
	if dump {
		spew.Dump(song)
	}

	if err := pwm.ValidateSong(song, clockHz, divider); err != nil {
		logger.Fatalf("song can't be played with a %d Hz clock and divider %d: %v", clockHz, divider, err)
	}

	packed, err := song.Compile()
	if err != nil {
		logger.Fatalf("compile error: %v", err)
	}

	// Write the outputs to the same directory as the source file.
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	binPath := base + ".bin"
	if err := os.WriteFile(binPath, packed, 0o644); err != nil {
		logger.Fatalf("Error writing output file: %v", err)
	}
	logger.Printf("Wrote %s", binPath)

	if writeGo {
		src, err := song.GoSource(goPackage, goVar)
		if err != nil {
			logger.Fatalf("error generating Go source: %v", err)
		}
		goPath := base + ".go"
		if err := os.WriteFile(goPath, src, 0o644); err != nil {
			logger.Fatalf("Error writing output file: %v", err)
		}
		logger.Printf("Wrote %s", goPath)
	}

	if writeMidi && !slices.Contains([]string{".mid", ".midi"}, strings.ToLower(ext)) {
		midiPath := base + ".mid"
		midiOpts := midifile.DefaultOptions()
		midiOpts.Tuning = opts.Tuning
		midiOpts.StepsPerQuarter = opts.StepsPerQuarter
		if err := midifile.WriteFile(song, midiPath, midiOpts); err != nil {
			logger.Fatalf("Error writing output file: %v", err)
		}
		logger.Printf("Wrote %s", midiPath)
	}
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string) (string, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		path := args[0]
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title("Open note list").
		Filter("Note lists (*.txt)", "txt").
		Filter("MIDI files (*.mid, *.midi)", "mid", "midi").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. Caller will check for dialog.ErrCancelled.
		return "", err
	}

	// Check for empty path just in case.
	if path == "" {
		return "", dialog.ErrCancelled
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validatePath(absPath); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath performs simple checks to verify if a file exists or not.
func validatePath(p string) error {
	if !slices.Contains(sourceExtensions, strings.ToLower(filepath.Ext(p))) {
		return fmt.Errorf("file must have one of the extensions %s", strings.Join(sourceExtensions, ", "))
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}
