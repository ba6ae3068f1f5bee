package main

import (
	"log"
	"os"
	"time"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/QEStudios/BuzzerMusic/midifile"
	"github.com/QEStudios/BuzzerMusic/parser"
	"github.com/QEStudios/BuzzerMusic/pwm"
	"github.com/spf13/cobra"
)

var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime)

var loadOpts parser.Options

var rootCmd = &cobra.Command{
	Use:   "buzzer",
	Short: "Plays and inspects buzzer songs",
	Long: `Plays and inspects buzzer songs.

Songs can be note lists (.txt), MIDI files (.mid) or packed songs (.bin).`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Float64Var(&loadOpts.Tuning, "tuning", 440, "frequency of A4 in Hz")
	flags.Uint16Var(&loadOpts.End, "end", 0, "song length in beats for note lists (0 = end of the last note)")
	flags.IntVar(&loadOpts.StepsPerQuarter, "steps", midifile.DefaultStepsPerQuarter, "beats per quarter note for MIDI files")
}

// playerFlags are the settings shared by every command that runs a player.
type playerFlags struct {
	looping      bool
	ticksPerBeat uint16
	duty         uint16
	channels     int
	maxNotes     int
	tick         time.Duration
	clockHz      uint32
	divider      uint8
}

func (f *playerFlags) register(cmd *cobra.Command) {
	defaults := buzzer.DefaultConfig()
	flags := cmd.Flags()
	flags.BoolVarP(&f.looping, "loop", "l", false, "start again from the beginning when the song ends")
	flags.Uint16Var(&f.ticksPerBeat, "ticks-per-beat", defaults.TicksPerBeat, "ticks that make up one beat")
	flags.Uint16Var(&f.duty, "duty", defaults.Duty, "raw PWM duty value for every note")
	flags.IntVarP(&f.channels, "channels", "c", 1, "number of buzzers")
	flags.IntVar(&f.maxNotes, "max-notes", 0, "most notes that can sound at once (0 = what the song needs)")
	flags.DurationVar(&f.tick, "tick", 40*time.Millisecond, "time between ticks")
	flags.Uint32Var(&f.clockHz, "clock", pwm.DefaultClockHz, "PWM input clock in Hz")
	flags.Uint8Var(&f.divider, "divider", pwm.DefaultDivider, "PWM integer clock divider")
}

func (f *playerFlags) config() buzzer.Config {
	return buzzer.Config{
		Looping:      f.looping,
		TicksPerBeat: f.ticksPerBeat,
		Duty:         f.duty,
		MaxNotes:     f.maxNotes,
	}
}

func loadSong(path string) (*buzzer.Song, error) {
	return parser.Load(path, loadOpts, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
