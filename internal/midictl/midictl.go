// Package midictl defines the control-message I/O contracts consumed by
// the scene automation scheduler: a 16-channel input exposing per-channel
// latched bank state with bank-change and program-change notifications,
// and an outbound per-cycle event buffer.
package midictl

import (
	"github.com/wavecraft-audio/wavecraft/internal/engine"
)

// NumChannels is the MIDI channel count of a control-message source.
const NumChannels = 16

// BankUnset is the latched bank value of a channel that never received a
// bank select message.
const BankUnset = -1

// Source is a 16-channel control-message input. Notification handlers run
// on the asynchronous message-arrival context, never on the real-time
// cycle. Each subscription returns its own unsubscribe function.
type Source interface {
	// Bank returns the latched bank value (MSB*128 + LSB) for a channel,
	// or BankUnset if none has arrived.
	Bank(channel uint8) int

	// OnBankChange subscribes to bank select arrivals on a channel. The
	// handler receives the message timestamp.
	OnBankChange(channel uint8, fn func(ts engine.FramePos)) (unsubscribe func())

	// OnProgramChange subscribes to program change arrivals on a channel.
	OnProgramChange(channel uint8, fn func(ts engine.FramePos, program uint8)) (unsubscribe func())
}

// Output is the destination for scheduled control messages: it hands out
// the outbound buffer of the current cycle.
type Output interface {
	// EventBuffer returns the outbound buffer covering nframes frames.
	EventBuffer(nframes engine.FramePos) *engine.MIDIBuffer
}
