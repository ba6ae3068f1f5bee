package parser

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/QEStudios/BuzzerMusic/midifile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEachFormat(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(&bytes.Buffer{}, "", 0)

	txt := filepath.Join(dir, "tune.txt")
	require.NoError(t, os.WriteFile(txt, []byte("0 A4 2 0;2 A5 1 0"), 0o644))
	song, err := Load(txt, Options{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "tune", song.Name)
	assert.Equal(t, uint16(3), song.End)

	packed, err := song.Compile()
	require.NoError(t, err)
	bin := filepath.Join(dir, "tune.bin")
	require.NoError(t, os.WriteFile(bin, packed, 0o644))
	fromBin, err := Load(bin, Options{Name: "packed"}, logger)
	require.NoError(t, err)
	assert.Equal(t, "packed", fromBin.Name)
	assert.Equal(t, song.Beats, fromBin.Beats)

	mid := filepath.Join(dir, "tune.MID")
	require.NoError(t, midifile.WriteFile(song, mid, midifile.DefaultOptions()))
	fromMidi, err := Load(mid, Options{}, logger)
	require.NoError(t, err)
	assert.Equal(t, song.Beats, fromMidi.Beats)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("song.wav", Options{}, nil)
	assert.ErrorContains(t, err, "unsupported file extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"), Options{}, nil)
	assert.ErrorContains(t, err, "error opening file")
}
