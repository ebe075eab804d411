// Package scene implements the scene automation scheduler: it turns
// timeline markers carrying MIDI scene payloads into time-accurate
// outbound bank/program messages during playback, and synthesizes markers
// from incoming control messages during recording.
package scene

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/timeline"
)

// AutomationTypeMIDIScene identifies this scheduler's payload kind among
// marker automation payloads.
const AutomationTypeMIDIScene = "midi-scene"

// BankNone marks a payload without bank select information; only the
// program change message is emitted for it.
const BankNone = -1

// Payload is one scene automation point: a bank/program change anchored to
// a timeline position. A marker exclusively owns its payload; the
// scheduler only holds transient references gathered at index rebuild.
type Payload struct {
	Time    engine.FramePos // timeline anchor, matches the owning marker
	Channel uint8           // MIDI channel 0-15
	Bank    int             // 0-16383 via MSB/LSB pair, BankNone if unset
	Program int             // 0-127
}

// AutomationType implements timeline.Automation.
func (p *Payload) AutomationType() string {
	return AutomationTypeMIDIScene
}

// BankMSBMessage returns the bank select MSB message, or false when the
// payload carries no bank.
func (p *Payload) BankMSBMessage() (midi.Message, bool) {
	if p.Bank < 0 {
		return nil, false
	}
	return midi.ControlChange(p.Channel, 0, uint8(p.Bank>>7)&0x7f), true
}

// BankLSBMessage returns the bank select LSB message, or false when the
// payload carries no bank.
func (p *Payload) BankLSBMessage() (midi.Message, bool) {
	if p.Bank < 0 {
		return nil, false
	}
	return midi.ControlChange(p.Channel, 32, uint8(p.Bank)&0x7f), true
}

// ProgramMessage returns the program change message.
func (p *Payload) ProgramMessage() midi.Message {
	return midi.ProgramChange(p.Channel, uint8(p.Program)&0x7f)
}

// interface check
var _ timeline.Automation = (*Payload)(nil)
