package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTune(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "tune.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 A4 1 0;1 A5 1 0"), 0o644))
	return path
}

func TestRunTraceDefaultsToOnePass(t *testing.T) {
	song := &buzzer.Song{
		Beats: [][]buzzer.Note{
			{{Frequency: 440, Duration: 1}},
			{{Frequency: 880, Duration: 1}},
		},
		End: 2,
	}
	opts := playerFlags{ticksPerBeat: 3, duty: 100, channels: 1}

	table, ticks, err := runTrace(song, opts, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, ticks)
	assert.Contains(t, table, "440 Hz")
	assert.Contains(t, table, "Channel 0")
}

func TestRunTraceRejectsNoChannels(t *testing.T) {
	song := &buzzer.Song{Beats: [][]buzzer.Note{{{Frequency: 440, Duration: 1}}}, End: 1}
	_, _, err := runTrace(song, playerFlags{ticksPerBeat: 3, duty: 100}, 0)
	assert.ErrorIs(t, err, buzzer.ErrNoChannels)
}

func TestInfoCommand(t *testing.T) {
	path := writeTune(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"info", path})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "Buzzer Song:")
	assert.Contains(t, out.String(), "Notes needed when looping: 1")
	assert.Contains(t, out.String(), "Playable at 150000000 Hz / 64")
}

func TestExportMidiCommand(t *testing.T) {
	path := writeTune(t)
	target := filepath.Join(t.TempDir(), "out.mid")

	rootCmd.SetArgs([]string{"export-midi", path, "--output", target})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(target)
	assert.NoError(t, err)
}
