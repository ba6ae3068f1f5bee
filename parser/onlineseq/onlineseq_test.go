package onlineseq

import (
	"bytes"
	"log"
	"testing"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestParsePitchString(t *testing.T) {
	tests := []struct {
		in    string
		pitch NotePitch
	}{
		{"C4", 60},
		{"A4", 69},
		{"a4", 69},
		{"G#5", 80},
		{"Bb3", 58},
		{"C-1", 0},
		{"G9", 127},
		{"D6", 86},
	}
	for _, tt := range tests {
		pitch, err := parsePitchString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.pitch, pitch, tt.in)
	}

	for _, bad := range []string{"", "C", "H4", "C#", "Cx4", "C10", "G#9", "Cb-1", "C-2"} {
		_, err := parsePitchString(bad)
		assert.Error(t, err, bad)
	}
}

func TestPitchToFreq(t *testing.T) {
	assert.InDelta(t, 440.0, pitchToFreq(69, 440), 1e-9)
	assert.InDelta(t, 880.0, pitchToFreq(81, 440), 1e-9)
	assert.InDelta(t, 261.626, pitchToFreq(60, 440), 1e-3)
	assert.InDelta(t, 432.0, pitchToFreq(69, 432), 1e-9)
}

func TestParseSimpleList(t *testing.T) {
	logger, _ := quietLogger()
	song, err := ParseString("0 A4 1 11;1 A5 1 11", DefaultOptions(), logger)
	require.NoError(t, err)

	assert.Equal(t, &buzzer.Song{
		Beats: [][]buzzer.Note{
			{{Frequency: 440, Duration: 1}},
			{{Frequency: 880, Duration: 1}},
		},
		End: 2,
	}, song)
}

func TestParseKeepsSourceOrderWithinBeat(t *testing.T) {
	logger, _ := quietLogger()
	song, err := ParseString("4 C4 2 0;0 A4 1 0;4 E4 1 0;4 G4 3 0", DefaultOptions(), logger)
	require.NoError(t, err)

	require.Len(t, song.Beats, 5)
	assert.Nil(t, song.Beats[1])
	assert.Equal(t, []buzzer.Note{
		{Frequency: 262, Duration: 2},
		{Frequency: 330, Duration: 1},
		{Frequency: 392, Duration: 3},
	}, song.Beats[4])
	assert.Equal(t, uint16(7), song.End)
}

func TestParseClipboardFormat(t *testing.T) {
	logger, _ := quietLogger()
	song, err := ParseString("Online Sequencer:123456:0 D5 1 11;2 D5 1 11;:", DefaultOptions(), logger)
	require.NoError(t, err)
	assert.Equal(t, 2, song.NoteCount())
	assert.Equal(t, uint16(3), song.End)
	assert.Equal(t, uint16(587), song.Beats[0][0].Frequency)
}

func TestParseRoundsWithWarnings(t *testing.T) {
	logger, logged := quietLogger()
	p := NewParser(bytes.NewBufferString("0 D4 1.75 14; 2.4 D4 0.25 14 ;"), DefaultOptions(), logger)
	song, err := p.Parse()
	require.NoError(t, err)

	assert.Equal(t, uint16(2), song.Beats[0][0].Duration)
	assert.Equal(t, uint16(1), song.Beats[2][0].Duration)
	assert.Equal(t, uint16(3), song.End)

	warnings := p.Warnings()
	require.Len(t, warnings, 3)
	assert.Equal(t, ParseWarning{Entry: 1, Message: "duration 1.75 rounded to 2 beats"}, warnings[0])
	assert.Equal(t, 2, warnings[1].Entry)
	assert.Contains(t, logged.String(), "entry 2: duration 0.25 lengthened to 1 beat")
}

func TestParseEndOverride(t *testing.T) {
	logger, _ := quietLogger()
	opts := DefaultOptions()
	opts.End = 32
	song, err := ParseString("0 A4 1 0;8 A4 1 0", opts, logger)
	require.NoError(t, err)
	assert.Equal(t, uint16(32), song.End)

	opts.End = 8
	_, err = ParseString("0 A4 1 0;8 A4 1 0", opts, logger)
	assert.ErrorContains(t, err, "past the song end")
}

func TestParseErrors(t *testing.T) {
	logger, _ := quietLogger()
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "", "no notes"},
		{"only separators", " ; ;", "no notes"},
		{"missing fields", "0 A4", "entry 1"},
		{"bad start", "0 A4 1 0;x A4 1 0", "entry 2: invalid start"},
		{"negative start", "-1 A4 1 0", "must not be negative"},
		{"bad pitch", "0 H4 1 0", "invalid pitch string"},
		{"zero duration", "0 A4 0 0", "duration must be positive"},
		{"bad volume", "0 A4 1 loud", "invalid volume"},
		{"header only", "Online Sequencer:123", "clipboard header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.in, DefaultOptions(), logger)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestParserCanOnlyBeUsedOnce(t *testing.T) {
	logger, _ := quietLogger()
	p := NewParser(bytes.NewBufferString("0 A4 1 0"), DefaultOptions(), logger)
	_, err := p.Parse()
	require.NoError(t, err)
	_, err = p.Parse()
	assert.ErrorContains(t, err, "already used")
}

func TestParsedSongPlays(t *testing.T) {
	logger, _ := quietLogger()
	song, err := ParseString("0 D5 1 11;2 D5 1 11;4 D6 1 11;8 A5 1 11;0 D4 1.75 14;2 D4 1.75 14", DefaultOptions(), logger)
	require.NoError(t, err)
	assert.Equal(t, 2, song.PeakPolyphony(true))
}
