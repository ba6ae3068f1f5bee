package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/QEStudios/BuzzerMusic/pwm"
	"github.com/QEStudios/BuzzerMusic/synth"
	"github.com/ebitengine/oto/v3"
	"github.com/spf13/cobra"
)

var (
	playOpts     playerFlags
	sampleRate   int
	playDuration time.Duration
)

func init() {
	playOpts.register(playCmd)
	playCmd.Flags().IntVar(&sampleRate, "sample-rate", 44100, "audio sample rate in Hz")
	playCmd.Flags().DurationVar(&playDuration, "duration", 0, "stop after this long (0 = when the song ends)")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <song>",
	Short: "Plays a song on the computer's speakers",
	Long: `Plays a song through emulated PWM buzzers on the computer's speakers.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(args[0])
	},
}

func play(path string) error {
	song, err := loadSong(path)
	if err != nil {
		return err
	}
	if err := pwm.ValidateSong(song, playOpts.clockHz, playOpts.divider); err != nil {
		return err
	}

	bank, err := synth.New(sampleRate, playOpts.clockHz, playOpts.channels)
	if err != nil {
		return err
	}
	channels, err := bank.Channels(playOpts.divider)
	if err != nil {
		return err
	}
	player, err := buzzer.New(song, playOpts.config(), channels)
	if err != nil {
		return err
	}
	stream, err := synth.NewStream(bank, player, playOpts.tick)
	if err != nil {
		return err
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("error opening audio device: %w", err)
	}
	<-ready

	out := ctx.NewPlayer(stream)
	defer out.Close()
	out.Play()
	logger.Printf("Playing %s (%d beats, %d notes)", song.Name, song.End, song.NoteCount())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	var deadline <-chan time.Time
	if playDuration > 0 {
		deadline = time.After(playDuration)
	}

	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()
	for out.IsPlaying() {
		select {
		case <-interrupt:
			stream.Pause()
			logger.Printf("Stopped")
			return nil
		case <-deadline:
			stream.Pause()
			return nil
		case <-poll.C:
		}
	}
	return stream.Err()
}
