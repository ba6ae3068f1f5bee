package main

import (
	"fmt"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/QEStudios/BuzzerMusic/trace"
	"github.com/spf13/cobra"
)

var (
	traceOpts  playerFlags
	traceTicks int
)

func init() {
	traceOpts.register(traceCmd)
	traceCmd.Flags().IntVar(&traceTicks, "ticks", 0, "ticks to run (0 = one pass through the song)")
	rootCmd.AddCommand(traceCmd)
}

var traceCmd = &cobra.Command{
	Use:   "trace <song>",
	Short: "Prints what each buzzer does, tick by tick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0])
		if err != nil {
			return err
		}
		table, ticks, err := runTrace(song, traceOpts, traceTicks)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), table)
		fmt.Fprintf(cmd.OutOrStdout(), "[%d ticks]\n", ticks)
		return nil
	},
}

func runTrace(song *buzzer.Song, opts playerFlags, ticks int) (string, int, error) {
	recorder := trace.NewRecorder(opts.channels)
	player, err := buzzer.New(song, opts.config(), recorder.Channels())
	if err != nil {
		return "", 0, err
	}
	if ticks <= 0 {
		ticks = int(opts.ticksPerBeat) * int(song.End)
	}
	ran, err := recorder.Run(player, ticks)
	if err != nil {
		return "", ran, err
	}
	return recorder.Table(0), ran, nil
}
