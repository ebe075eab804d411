package scene

import (
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
	"github.com/wavecraft-audio/wavecraft/internal/midictl"
	"github.com/wavecraft-audio/wavecraft/internal/observability/metrics"
	"github.com/wavecraft-audio/wavecraft/internal/timeline"
)

// timeUnset is the "never seen" sentinel for message arrival timestamps.
const timeUnset = engine.FramePos(-1)

// deliveryUnset is the "never delivered" sentinel for bank/program history.
const deliveryUnset = -1

// Changer is the scene automation scheduler.
//
// Two execution contexts touch it: the real-time cycle drives Run and
// Locate, the asynchronous control-message context drives the incoming
// message handlers and Gather. The scene index is an immutable snapshot
// swapped atomically between the two. Mode (playback vs. record) is
// derived from the transport on every call, never cached.
type Changer struct {
	name         string
	transport    engine.Transport
	store        *timeline.Store
	gapMs        float64
	markerPrefix string

	logger  *slog.Logger
	metrics *metrics.SceneMetrics

	index atomic.Pointer[sceneIndex]

	input       midictl.Source
	output      midictl.Output
	inputUnsubs []func()

	// message arrival history, async context only
	lastBankMessageTime    engine.FramePos
	lastProgramMessageTime engine.FramePos

	// delivery history, real-time context only
	lastDeliveredBank    int
	lastDeliveredProgram int

	current engine.ChanCount
}

// NewChanger creates a scheduler bound to a transport and marker store.
// It registers for the store's structural and payload change notifications,
// both of which trigger a full index rebuild.
func NewChanger(name string, transport engine.Transport, store *timeline.Store, cfg conf.SceneSettings) *Changer {
	logger := logging.ForService("scene")
	if logger == nil {
		logger = slog.Default()
	}

	c := &Changer{
		name:                   name,
		transport:              transport,
		store:                  store,
		gapMs:                  cfg.InterSceneGapMs,
		markerPrefix:           cfg.MarkerPrefix,
		logger:                 logger.With("changer", name),
		lastBankMessageTime:    timeUnset,
		lastProgramMessageTime: timeUnset,
		lastDeliveredBank:      deliveryUnset,
		lastDeliveredProgram:   deliveryUnset,
	}
	c.index.Store(&sceneIndex{})

	store.OnChange(c.Gather)
	store.OnPayloadChange(c.Gather)

	return c
}

// SetMetrics attaches prometheus collectors. A nil value disables
// recording.
func (c *Changer) SetMetrics(sm *metrics.SceneMetrics) {
	c.metrics = sm
}

// Name returns the scheduler's instance name.
func (c *Changer) Name() string {
	return c.name
}

// State exports the identity record; scheduling state is never persisted.
func (c *Changer) State() engine.ProcessorState {
	return engine.ProcessorState{Name: c.name, Type: "scene-changer"}
}

// CanSupportChannelMapping accepts any 1:1 mapping.
func (c *Changer) CanSupportChannelMapping(in engine.ChanCount) (engine.ChanCount, bool) {
	return in, true
}

// ConfigureChannels records the channel configuration. The scheduler keeps
// no per-channel state, so any configuration succeeds.
func (c *Changer) ConfigureChannels(in, _ engine.ChanCount) error {
	c.current = in
	return nil
}

// recording derives the mode from the live transport state.
func (c *Changer) recording() bool {
	return c.transport.Rolling() && c.transport.RecordEnabled()
}

// Gather rebuilds the entire scene index from the marker store, keeping
// only markers whose payload is this scheduler's kind; other payload kinds
// are silently skipped. Runs on the asynchronous context; the rebuilt
// snapshot replaces the old one atomically. Between a marker mutation and
// the next rebuild the index is stale by design.
func (c *Changer) Gather() {
	markers := c.store.Markers()

	entries := make([]sceneEntry, 0, len(markers))
	for _, m := range markers {
		if p, ok := m.Automation().(*Payload); ok {
			entries = append(entries, sceneEntry{time: p.Time, payload: p})
		}
	}

	idx := buildIndex(entries)
	c.index.Store(idx)

	c.logger.Debug("scene index rebuilt", "entries", idx.len())
	if c.metrics != nil {
		c.metrics.RecordGather(idx.len())
	}
}

// Run delivers the scene events scheduled inside [start, end) into the
// current cycle's outbound buffer, each at its offset from start, in
// ascending time order. A no-op with no bound output or while recording.
// Runs on the real-time context.
func (c *Changer) Run(_ *engine.BufferSet, start, end engine.FramePos, _ int) {
	if c.output == nil || c.recording() {
		return
	}

	idx := c.index.Load()
	buf := c.output.EventBuffer(end - start)

	for _, e := range idx.from(start) {
		if e.time >= end {
			break
		}
		c.deliver(buf, e.time-start, e.payload)
	}
}

// deliver emits up to three messages at the same offset: bank MSB if the
// payload carries a bank, bank LSB only after the MSB, then the program
// change. Delivery history updates whenever the corresponding message is
// emitted; repeats are not suppressed on this path.
func (c *Changer) deliver(buf *engine.MIDIBuffer, when engine.FramePos, p *Payload) {
	if msb, ok := p.BankMSBMessage(); ok {
		buf.PushBack(when, msb)

		if lsb, ok := p.BankLSBMessage(); ok {
			buf.PushBack(when, lsb)
		}

		c.lastDeliveredBank = p.Bank
	}

	buf.PushBack(when, p.ProgramMessage())
	c.lastDeliveredProgram = p.Program

	if c.metrics != nil {
		c.metrics.RecordDelivered()
	}
}

// Locate observes the first scene event strictly after pos. When its bank
// or program differ from the delivery history a scene change is due at the
// new position, but nothing is emitted.
//
// TODO: emitting here needs a decision on duplicate suppression for the
// playback deliver path; until then the pending change is only counted.
func (c *Changer) Locate(pos engine.FramePos) {
	e := c.index.Load().after(pos)
	if e == nil {
		return
	}

	if e.payload.Program != c.lastDeliveredProgram || e.payload.Bank != c.lastDeliveredBank {
		c.logger.Debug("scene change pending after locate",
			"pos", int64(pos),
			"scene_time", int64(e.time),
			"bank", e.payload.Bank,
			"program", e.payload.Program)
		if c.metrics != nil {
			c.metrics.RecordLocatePending()
		}
	}
}

// BindInput rebinds the control-message source. All prior per-channel
// subscriptions are dropped and bank-change plus program-change
// notifications are re-subscribed for all sixteen channels.
func (c *Changer) BindInput(src midictl.Source) {
	for _, unsub := range c.inputUnsubs {
		unsub()
	}
	c.inputUnsubs = nil

	c.input = src
	if src == nil {
		return
	}

	for channel := uint8(0); channel < midictl.NumChannels; channel++ {
		channel := channel
		c.inputUnsubs = append(c.inputUnsubs,
			src.OnBankChange(channel, func(ts engine.FramePos) {
				c.bankChangeInput(ts, channel)
			}),
			src.OnProgramChange(channel, func(ts engine.FramePos, program uint8) {
				c.programChangeInput(ts, program, channel)
			}),
		)
	}
}

// BindOutput rebinds the control-message sink. A nil output disables
// playback delivery.
func (c *Changer) BindOutput(out midictl.Output) {
	c.output = out
}

// bankChangeInput records the arrival time of a bank select message while
// recording. The bank value itself is read later from the input's latched
// per-channel state. Async context.
func (c *Changer) bankChangeInput(ts engine.FramePos, _ uint8) {
	if !c.recording() {
		return
	}
	c.lastBankMessageTime = ts
}

// programChangeInput handles an incoming program change. Outside of
// record mode it requests a relocation to the matching earlier scene. In
// record mode it attaches a payload built from the latched bank and the
// program to a marker near the timestamp, synthesizing a new uniquely
// named marker when none is within the slop tolerance. Async context.
func (c *Changer) programChangeInput(ts engine.FramePos, program uint8, channel uint8) {
	c.lastProgramMessageTime = ts

	if !c.recording() {
		c.JumpTo(c.input.Bank(channel), int(program))
		return
	}

	slop := engine.FramePos(math.Floor((c.gapMs / 1000.0) * float64(c.transport.FrameRate())))

	marker := c.store.MarkAt(ts, slop)
	newMark := false

	if marker == nil {
		name, ok := c.store.NextAvailableName(c.markerPrefix)
		if !ok {
			c.logger.Error("no new marker name available, scene dropped",
				"time", int64(ts),
				"channel", channel)
			if c.metrics != nil {
				c.metrics.RecordMarkerDropped()
			}
			return
		}

		marker = c.store.NewMarker(name, ts)
		newMark = true
	}

	payload := &Payload{
		Time:    marker.Start(),
		Channel: channel,
		Bank:    c.input.Bank(channel),
		Program: int(program & 0x7f),
	}

	// Replacing the payload on a stored marker fires the store's
	// payload-changed notification; adding a new marker fires the
	// structural one. Either way Gather runs and picks the scene up.
	marker.SetAutomation(payload)

	if newMark {
		c.store.Add(marker)
		if c.metrics != nil {
			c.metrics.RecordMarkerCreated()
		}
	}
}

// JumpTo scans all marker payloads for the earliest exact bank/program
// match and requests a transport relocation to it. A no-op when nothing
// matches.
func (c *Changer) JumpTo(bank, program int) {
	where := engine.MaxFramePos

	for _, m := range c.store.Markers() {
		p, ok := m.Automation().(*Payload)
		if !ok {
			continue
		}
		if p.Bank == bank && p.Program == program && m.Start() < where {
			where = m.Start()
		}
	}

	if where == engine.MaxFramePos {
		return
	}

	c.transport.RequestLocate(where)
	if c.metrics != nil {
		c.metrics.RecordJumpRequest()
	}
}

// LastDelivered returns the delivery history: the last delivered bank and
// program, deliveryUnset (-1) for "never delivered".
func (c *Changer) LastDelivered() (bank, program int) {
	return c.lastDeliveredBank, c.lastDeliveredProgram
}
