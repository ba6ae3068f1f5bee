package trace

import (
	"testing"

	"github.com/QEStudios/BuzzerMusic/buzzer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBeatPlayer(t *testing.T, r *Recorder, looping bool) *buzzer.Player {
	song := &buzzer.Song{
		Beats: [][]buzzer.Note{
			{{Frequency: 440, Duration: 1}},
			{{Frequency: 880, Duration: 1}},
		},
		End: 2,
	}
	p, err := buzzer.New(song, buzzer.Config{Looping: looping, TicksPerBeat: 3, Duty: 100}, r.Channels())
	require.NoError(t, err)
	return p
}

func TestRunRecordsEvents(t *testing.T) {
	r := NewRecorder(1)
	p := twoBeatPlayer(t, r, false)

	ticks, err := r.Run(p, 10)
	require.NoError(t, err)
	assert.Equal(t, 6, ticks)

	assert.Equal(t, []Event{
		{Tick: 0, Channel: 0, Kind: Mute},
		{Tick: 3, Channel: 0, Kind: Mute},
		{Tick: 3, Channel: 0, Kind: Tone, Frequency: 440, Duty: 100},
		{Tick: 6, Channel: 0, Kind: Mute},
		{Tick: 6, Channel: 0, Kind: Tone, Frequency: 880, Duty: 100},
		{Tick: 6, Channel: 0, Kind: Mute},
	}, r.Events())
}

func TestRunLoopingUsesAllTicks(t *testing.T) {
	r := NewRecorder(1)
	p := twoBeatPlayer(t, r, true)

	ticks, err := r.Run(p, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, ticks)
	assert.Equal(t, 12, r.Events()[len(r.Events())-1].Tick)
}

func TestTable(t *testing.T) {
	r := NewRecorder(1)
	p := twoBeatPlayer(t, r, false)
	_, err := r.Run(p, 10)
	require.NoError(t, err)

	expected := "" +
		"  +----------+-----------+\n" +
		"  | Tick     | Channel 0 |\n" +
		"  +----------+-----------+\n" +
		"  | 0        | off       |\n" +
		"  | 3        | 440 Hz    |\n" +
		"  | 6        | off       |\n" +
		"  +----------+-----------+\n"
	assert.Equal(t, expected, r.Table(2))
}

func TestTableLeavesUntouchedChannelsBlank(t *testing.T) {
	r := NewRecorder(2)
	require.NoError(t, r.Channels()[1].SetTone(1000, 5))

	table := r.Table(0)
	assert.Contains(t, table, "| 0        |           | 1000 Hz   |")
}
