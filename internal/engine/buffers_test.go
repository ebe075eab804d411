package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestAudioBufferSilenceTracking(t *testing.T) {
	buf := NewAudioBuffer(8)
	assert.True(t, buf.Silent())

	buf.Write([]float32{0.5, -0.25})
	assert.False(t, buf.Silent())
	assert.InDelta(t, 0.5, buf.Data()[0], 1e-6)
	assert.InDelta(t, 0.0, buf.Data()[2], 1e-6)

	buf.Clear()
	assert.True(t, buf.Silent())
	assert.InDelta(t, 0.0, buf.Data()[0], 1e-6)
}

func TestMIDIBufferCapacity(t *testing.T) {
	buf := NewMIDIBuffer(2)

	require.True(t, buf.PushBack(0, midi.ProgramChange(0, 1)))
	require.True(t, buf.PushBack(10, midi.ProgramChange(0, 2)))
	assert.False(t, buf.PushBack(20, midi.ProgramChange(0, 3)), "push beyond capacity must fail")

	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, FramePos(10), buf.Events()[1].Offset)

	buf.Clear()
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 2, buf.Capacity())
}

func TestBufferSetLayout(t *testing.T) {
	bs := NewBufferSet(ChanCount{MIDI: 1, Audio: 2}, 64, 16)

	assert.Equal(t, ChanCount{MIDI: 1, Audio: 2}, bs.Count())
	assert.Equal(t, 3, bs.Count().NTotal())
	assert.Len(t, bs.Audio(0).Data(), 64)
	assert.Equal(t, 16, bs.MIDI(0).Capacity())
}
