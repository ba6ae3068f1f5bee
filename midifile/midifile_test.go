package midifile

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func testSong() *buzzer.Song {
	return &buzzer.Song{
		Beats: [][]buzzer.Note{
			{{Frequency: 440, Duration: 2}, {Frequency: 659, Duration: 1}},
			nil,
			{{Frequency: 880, Duration: 1}},
		},
		End: 3,
	}
}

func TestKeyConversions(t *testing.T) {
	assert.Equal(t, uint8(69), FrequencyToKey(440, 440))
	assert.Equal(t, uint8(60), FrequencyToKey(262, 440))
	assert.Equal(t, uint8(0), FrequencyToKey(1, 440))
	assert.Equal(t, uint8(127), FrequencyToKey(65535, 440))
	assert.InDelta(t, 880.0, KeyToFrequency(81, 440), 1e-9)
}

func TestExportThenImport(t *testing.T) {
	song := testSong()
	out, err := Export(song, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, out.Tracks, 2)

	var buf bytes.Buffer
	_, err = out.WriteTo(&buf)
	require.NoError(t, err)

	file, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	got, err := Import(file, DefaultOptions(), log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)
	assert.Equal(t, song, got)
}

func TestImportEndsHeldNotes(t *testing.T) {
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(480)

	var track smf.Track
	track.Add(0, midi.NoteOn(0, 69, 100))
	track.Add(120, midi.NoteOn(0, 81, 100))
	track.Add(120, midi.NoteOn(0, 81, 0)) // Velocity 0 ends a note.
	track.Close(240)
	require.NoError(t, file.Add(track))

	var logged bytes.Buffer
	song, err := Import(file, DefaultOptions(), log.New(&logged, "", 0))
	require.NoError(t, err)

	assert.Equal(t, []buzzer.Note{{Frequency: 440, Duration: 4}}, song.Beats[0])
	assert.Equal(t, []buzzer.Note{{Frequency: 880, Duration: 1}}, song.Beats[1])
	assert.Equal(t, uint16(4), song.End)
	assert.Contains(t, logged.String(), "never ends")
}

func TestImportWithoutNotes(t *testing.T) {
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(480)
	var track smf.Track
	track.Add(0, smf.MetaTempo(100))
	track.Close(0)
	require.NoError(t, file.Add(track))

	_, err := Import(file, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrNoNotes)
}

func TestOptionsRejectUnevenResolution(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolution = 97
	_, err := Export(testSong(), opts)
	assert.ErrorContains(t, err, "not a multiple")
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, WriteFile(testSong(), path, DefaultOptions()))

	got, err := ReadFile(path, DefaultOptions(), log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)
	assert.Equal(t, 3, got.NoteCount())
}
