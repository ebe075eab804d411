package midictl

import (
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
)

// controller numbers for bank select
const (
	ccBankSelectMSB = 0
	ccBankSelectLSB = 32
)

type bankState struct {
	msb int // -1 until seen
	lsb int
}

func (b bankState) value() int {
	if b.msb < 0 && b.lsb < 0 {
		return BankUnset
	}
	msb, lsb := b.msb, b.lsb
	if msb < 0 {
		msb = 0
	}
	if lsb < 0 {
		lsb = 0
	}
	return msb*128 + lsb
}

type bankHandler struct {
	id int
	fn func(ts engine.FramePos)
}

type programHandler struct {
	id int
	fn func(ts engine.FramePos, program uint8)
}

// Input is a Source fed raw control messages via Feed. It decodes bank
// select (CC0/CC32) and program change messages, latches per-channel bank
// state and dispatches subscriptions synchronously on the feeding
// goroutine, which is the engine's asynchronous message-arrival context.
type Input struct {
	mu          sync.Mutex
	banks       [NumChannels]bankState
	bankSubs    [NumChannels][]bankHandler
	programSubs [NumChannels][]programHandler
	nextSubID   int
	logger      *slog.Logger
}

// NewInput creates an empty control-message input.
func NewInput() *Input {
	logger := logging.ForService("midictl")
	if logger == nil {
		logger = slog.Default()
	}

	in := &Input{logger: logger}
	for c := range in.banks {
		in.banks[c] = bankState{msb: -1, lsb: -1}
	}
	return in
}

// Bank returns the latched bank value for a channel.
func (in *Input) Bank(channel uint8) int {
	if channel >= NumChannels {
		return BankUnset
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.banks[channel].value()
}

// OnBankChange subscribes to bank select arrivals on a channel.
func (in *Input) OnBankChange(channel uint8, fn func(ts engine.FramePos)) func() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.nextSubID++
	id := in.nextSubID
	in.bankSubs[channel] = append(in.bankSubs[channel], bankHandler{id: id, fn: fn})

	return func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		subs := in.bankSubs[channel]
		for i, h := range subs {
			if h.id == id {
				in.bankSubs[channel] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// OnProgramChange subscribes to program change arrivals on a channel.
func (in *Input) OnProgramChange(channel uint8, fn func(ts engine.FramePos, program uint8)) func() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.nextSubID++
	id := in.nextSubID
	in.programSubs[channel] = append(in.programSubs[channel], programHandler{id: id, fn: fn})

	return func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		subs := in.programSubs[channel]
		for i, h := range subs {
			if h.id == id {
				in.programSubs[channel] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Feed decodes one incoming message stamped at ts and dispatches the
// relevant notifications. Messages other than bank select and program
// change are ignored.
func (in *Input) Feed(ts engine.FramePos, msg midi.Message) {
	var channel, controller, value uint8
	var program uint8

	switch {
	case msg.GetControlChange(&channel, &controller, &value):
		switch controller {
		case ccBankSelectMSB:
			in.latchBank(channel, int(value), -1)
		case ccBankSelectLSB:
			in.latchBank(channel, -1, int(value))
		default:
			return
		}
		for _, h := range in.bankHandlers(channel) {
			h(ts)
		}

	case msg.GetProgramChange(&channel, &program):
		for _, h := range in.programHandlers(channel) {
			h(ts, program)
		}
	}
}

func (in *Input) latchBank(channel uint8, msb, lsb int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if msb >= 0 {
		in.banks[channel].msb = msb
	}
	if lsb >= 0 {
		in.banks[channel].lsb = lsb
	}
}

// bankHandlers snapshots the subscriptions so dispatch happens outside the
// lock.
func (in *Input) bankHandlers(channel uint8) []func(engine.FramePos) {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]func(engine.FramePos), 0, len(in.bankSubs[channel]))
	for _, h := range in.bankSubs[channel] {
		out = append(out, h.fn)
	}
	return out
}

func (in *Input) programHandlers(channel uint8) []func(engine.FramePos, uint8) {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]func(engine.FramePos, uint8), 0, len(in.programSubs[channel]))
	for _, h := range in.programSubs[channel] {
		out = append(out, h.fn)
	}
	return out
}

// CycleOutput is a trivial Output handing out a single reusable buffer per
// cycle. The engine clears and re-issues it every cycle.
type CycleOutput struct {
	buf *engine.MIDIBuffer
}

// NewCycleOutput creates an output with the given per-cycle event capacity.
func NewCycleOutput(capacity int) *CycleOutput {
	return &CycleOutput{buf: engine.NewMIDIBuffer(capacity)}
}

// EventBuffer returns the current cycle's outbound buffer.
func (o *CycleOutput) EventBuffer(_ engine.FramePos) *engine.MIDIBuffer {
	return o.buf
}

// BeginCycle clears the outbound buffer for a new cycle.
func (o *CycleOutput) BeginCycle() {
	o.buf.Clear()
}
