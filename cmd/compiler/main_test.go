package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "song.TXT")
	require.NoError(t, os.WriteFile(txt, []byte("0 A4 1 0"), 0o644))

	assert.NoError(t, validatePath(txt))
	assert.ErrorContains(t, validatePath(filepath.Join(dir, "song.wav")), "extensions")
	assert.ErrorContains(t, validatePath(filepath.Join(dir, "missing.mid")), "cannot stat")
}

func TestChoosePathFromArgs(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "song.txt")
	require.NoError(t, os.WriteFile(txt, []byte("0 A4 1 0"), 0o644))

	path, err := choosePath(dir, []string{txt})
	require.NoError(t, err)
	assert.Equal(t, txt, path)

	_, err = choosePath(dir, []string{filepath.Join(dir, "nope.txt")})
	assert.ErrorContains(t, err, "not a valid path")
}
