package main

import (
	"fmt"

	"github.com/QEStudios/BuzzerMusic/pwm"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var (
	infoDump    bool
	infoClockHz uint32
	infoDivider uint8
)

func init() {
	infoCmd.Flags().BoolVarP(&infoDump, "dump", "d", false, "dump the song structure")
	infoCmd.Flags().Uint32Var(&infoClockHz, "clock", pwm.DefaultClockHz, "PWM input clock in Hz")
	infoCmd.Flags().Uint8Var(&infoDivider, "divider", pwm.DefaultDivider, "PWM integer clock divider")
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <song>",
	Short: "Describes a song",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprint(w, song)
		fmt.Fprintf(w, "Notes needed when looping: %d\n", song.PeakPolyphony(true))
		if err := pwm.ValidateSong(song, infoClockHz, infoDivider); err != nil {
			fmt.Fprintf(w, "Not playable at %d Hz / %d: %v\n", infoClockHz, infoDivider, err)
		} else {
			fmt.Fprintf(w, "Playable at %d Hz / %d\n", infoClockHz, infoDivider)
		}
		if infoDump {
			spew.Fdump(w, song)
		}
		return nil
	},
}
