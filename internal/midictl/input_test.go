package midictl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
)

func TestBankLatchesMSBAndLSB(t *testing.T) {
	in := NewInput()

	assert.Equal(t, BankUnset, in.Bank(0))

	in.Feed(0, midi.ControlChange(0, ccBankSelectMSB, 2))
	assert.Equal(t, 2*128, in.Bank(0))

	in.Feed(0, midi.ControlChange(0, ccBankSelectLSB, 5))
	assert.Equal(t, 2*128+5, in.Bank(0))

	// other channels stay unset
	assert.Equal(t, BankUnset, in.Bank(1))
}

func TestProgramChangeDispatch(t *testing.T) {
	in := NewInput()

	var gotTS engine.FramePos
	var gotProgram uint8
	calls := 0
	in.OnProgramChange(3, func(ts engine.FramePos, program uint8) {
		gotTS = ts
		gotProgram = program
		calls++
	})

	in.Feed(500, midi.ProgramChange(3, 42))
	require.Equal(t, 1, calls)
	assert.Equal(t, engine.FramePos(500), gotTS)
	assert.Equal(t, uint8(42), gotProgram)

	// wrong channel does not dispatch
	in.Feed(600, midi.ProgramChange(4, 1))
	assert.Equal(t, 1, calls)
}

func TestBankChangeDispatchAndUnsubscribe(t *testing.T) {
	in := NewInput()

	calls := 0
	unsub := in.OnBankChange(0, func(ts engine.FramePos) { calls++ })

	in.Feed(10, midi.ControlChange(0, ccBankSelectMSB, 1))
	assert.Equal(t, 1, calls)

	unsub()
	in.Feed(20, midi.ControlChange(0, ccBankSelectLSB, 1))
	assert.Equal(t, 1, calls, "unsubscribed handler must not fire")
}

func TestUnrelatedMessagesIgnored(t *testing.T) {
	in := NewInput()

	calls := 0
	in.OnBankChange(0, func(engine.FramePos) { calls++ })
	in.OnProgramChange(0, func(engine.FramePos, uint8) { calls++ })

	in.Feed(0, midi.NoteOn(0, 60, 100))
	in.Feed(0, midi.ControlChange(0, 7, 90)) // volume, not bank select

	assert.Zero(t, calls)
	assert.Equal(t, BankUnset, in.Bank(0))
}

func TestCycleOutputReuse(t *testing.T) {
	out := NewCycleOutput(8)

	buf := out.EventBuffer(64)
	require.True(t, buf.PushBack(0, midi.ProgramChange(0, 1)))
	assert.Equal(t, 1, out.EventBuffer(64).Len())

	out.BeginCycle()
	assert.Equal(t, 0, out.EventBuffer(64).Len())
}
