package main

import (
	"path/filepath"
	"strings"

	"github.com/QEStudios/BuzzerMusic/midifile"
	"github.com/spf13/cobra"
)

var (
	exportPath string
	exportBPM  float64
)

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "output file (default: the song's path with .mid)")
	exportCmd.Flags().Float64Var(&exportBPM, "bpm", 120, "tempo written to the file, in quarter notes per minute")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export-midi <song>",
	Short: "Writes a song as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		song, err := loadSong(args[0])
		if err != nil {
			return err
		}

		out := exportPath
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".mid"
		}
		opts := midifile.DefaultOptions()
		opts.Tuning = loadOpts.Tuning
		opts.StepsPerQuarter = loadOpts.StepsPerQuarter
		opts.BPM = exportBPM
		if err := midifile.WriteFile(song, out, opts); err != nil {
			return err
		}
		logger.Printf("Wrote %s", out)
		return nil
	},
}
