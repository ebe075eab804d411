package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/midictl"
	"github.com/wavecraft-audio/wavecraft/internal/timeline"
)

type fakeTransport struct {
	rolling       bool
	recordEnabled bool
	frameRate     int
	located       []engine.FramePos
}

func (f *fakeTransport) Rolling() bool       { return f.rolling }
func (f *fakeTransport) RecordEnabled() bool { return f.recordEnabled }
func (f *fakeTransport) FrameRate() int      { return f.frameRate }
func (f *fakeTransport) RequestLocate(pos engine.FramePos) {
	f.located = append(f.located, pos)
}

type foreignPayload struct{}

func (foreignPayload) AutomationType() string { return "tempo-map" }

func testConfig() conf.SceneSettings {
	return conf.SceneSettings{InterSceneGapMs: 100, MarkerPrefix: "Scene "}
}

// newFixture wires a changer to a fresh store, transport, input and output.
func newFixture(t *testing.T) (*Changer, *timeline.Store, *fakeTransport, *midictl.Input, *midictl.CycleOutput) {
	t.Helper()
	store := timeline.NewStore()
	transport := &fakeTransport{frameRate: 48000}
	c := NewChanger("test", transport, store, testConfig())

	input := midictl.NewInput()
	output := midictl.NewCycleOutput(64)
	c.BindInput(input)
	c.BindOutput(output)

	return c, store, transport, input, output
}

// addScene adds a marker carrying a scene payload; the store notification
// triggers the changer's index rebuild.
func addScene(store *timeline.Store, time engine.FramePos, channel uint8, bank, program int) {
	m := store.NewMarker("", time)
	m.SetAutomation(&Payload{Time: time, Channel: channel, Bank: bank, Program: program})
	store.Add(m)
}

func TestRunDeliversWindowInAscendingOrder(t *testing.T) {
	c, store, _, _, output := newFixture(t)

	// inserted out of order on purpose
	addScene(store, 1500, 0, BankNone, 3)
	addScene(store, 100, 0, BankNone, 1)
	addScene(store, 2000, 0, BankNone, 4)
	addScene(store, 1000, 0, BankNone, 2)

	c.Run(nil, 0, 2000, 2000)

	events := output.EventBuffer(2000).Events()
	require.Len(t, events, 3, "entry at end boundary is excluded")

	var prev engine.FramePos = -1
	wantPrograms := []uint8{1, 2, 3}
	wantOffsets := []engine.FramePos{100, 1000, 1500}
	for i, ev := range events {
		assert.GreaterOrEqual(t, ev.Offset, prev, "events must be time ordered")
		prev = ev.Offset
		assert.Equal(t, wantOffsets[i], ev.Offset)

		var ch, program uint8
		require.True(t, ev.Msg.GetProgramChange(&ch, &program))
		assert.Equal(t, wantPrograms[i], program)
	}
}

func TestRunDeliversBankThenProgram(t *testing.T) {
	c, store, _, _, output := newFixture(t)

	addScene(store, 1000, 0, 2, 5)

	c.Run(nil, 0, 2000, 2000)

	events := output.EventBuffer(2000).Events()
	require.Len(t, events, 3)

	var ch, controller, value, program uint8

	require.True(t, events[0].Msg.GetControlChange(&ch, &controller, &value))
	assert.Equal(t, engine.FramePos(1000), events[0].Offset)
	assert.Equal(t, uint8(0), controller, "bank MSB first")
	assert.Equal(t, uint8(0), value)

	require.True(t, events[1].Msg.GetControlChange(&ch, &controller, &value))
	assert.Equal(t, engine.FramePos(1000), events[1].Offset)
	assert.Equal(t, uint8(32), controller, "bank LSB second")
	assert.Equal(t, uint8(2), value)

	require.True(t, events[2].Msg.GetProgramChange(&ch, &program))
	assert.Equal(t, engine.FramePos(1000), events[2].Offset)
	assert.Equal(t, uint8(5), program)

	bank, prog := c.LastDelivered()
	assert.Equal(t, 2, bank)
	assert.Equal(t, 5, prog)
}

func TestRunOmitsBankMessagesWhenUnset(t *testing.T) {
	c, store, _, _, output := newFixture(t)

	addScene(store, 10, 3, BankNone, 7)

	c.Run(nil, 0, 100, 100)

	events := output.EventBuffer(100).Events()
	require.Len(t, events, 1)

	var ch, program uint8
	require.True(t, events[0].Msg.GetProgramChange(&ch, &program))
	assert.Equal(t, uint8(3), ch)

	bank, prog := c.LastDelivered()
	assert.Equal(t, deliveryUnset, bank, "bank history untouched without bank message")
	assert.Equal(t, 7, prog)
}

func TestRunWindowStart(t *testing.T) {
	c, store, _, _, output := newFixture(t)

	addScene(store, 100, 0, BankNone, 1)
	addScene(store, 500, 0, BankNone, 2)

	c.Run(nil, 500, 900, 400)

	events := output.EventBuffer(400).Events()
	require.Len(t, events, 1, "window start is inclusive, earlier events are skipped")
	assert.Equal(t, engine.FramePos(0), events[0].Offset, "offset is relative to window start")
}

func TestRunNoopWhileRecordingOrUnbound(t *testing.T) {
	c, store, transport, _, output := newFixture(t)
	addScene(store, 100, 0, BankNone, 1)

	transport.rolling = true
	transport.recordEnabled = true
	c.Run(nil, 0, 1000, 1000)
	assert.Zero(t, output.EventBuffer(1000).Len(), "recording mode must not deliver")

	transport.recordEnabled = false
	c.BindOutput(nil)
	c.Run(nil, 0, 1000, 1000) // must not panic without an output
}

func TestMultipleEventsMayShareATime(t *testing.T) {
	c, store, _, _, output := newFixture(t)

	addScene(store, 300, 0, BankNone, 1)
	addScene(store, 300, 0, BankNone, 2)

	c.Run(nil, 0, 1000, 1000)
	assert.Equal(t, 2, output.EventBuffer(1000).Len(), "no deduplication of equal times")
}

func TestGatherSkipsForeignPayloadKinds(t *testing.T) {
	c, store, _, _, output := newFixture(t)

	m := store.NewMarker("tempo", 100)
	m.SetAutomation(foreignPayload{})
	store.Add(m)

	bare := store.NewMarker("plain", 200)
	store.Add(bare)

	addScene(store, 300, 0, BankNone, 9)

	c.Run(nil, 0, 1000, 1000)

	events := output.EventBuffer(1000).Events()
	require.Len(t, events, 1, "only this scheduler's payload kind is gathered")

	var ch, program uint8
	require.True(t, events[0].Msg.GetProgramChange(&ch, &program))
	assert.Equal(t, uint8(9), program)
}

func TestIndexIsStaleUntilRegathered(t *testing.T) {
	// a changer with no subscriptions wired would hold a stale index;
	// here the store notification path does the regather, so mutating
	// the store must be immediately visible on the next Run.
	c, store, _, _, output := newFixture(t)

	addScene(store, 100, 0, BankNone, 1)
	c.Run(nil, 0, 1000, 1000)
	require.Equal(t, 1, output.EventBuffer(1000).Len())

	output.BeginCycle()
	for _, m := range store.Markers() {
		store.Remove(m)
	}
	c.Run(nil, 0, 1000, 1000)
	assert.Zero(t, output.EventBuffer(1000).Len(), "structural change must retrigger the rebuild")
}

func TestProgramChangeInPlaybackJumpsToEarliestMatch(t *testing.T) {
	c, store, transport, input, _ := newFixture(t)
	_ = c

	addScene(store, 900, 0, 2*128+5, 42)
	addScene(store, 300, 0, 2*128+5, 42) // earliest match
	addScene(store, 600, 0, 2*128+5, 41) // different program

	// latch bank 2/5 on channel 0, then the program change arrives
	input.Feed(0, midi.ControlChange(0, 0, 2))
	input.Feed(0, midi.ControlChange(0, 32, 5))
	input.Feed(1000, midi.ProgramChange(0, 42))

	require.Len(t, transport.located, 1, "playback program change requests a relocation")
	assert.Equal(t, engine.FramePos(300), transport.located[0])
	assert.Len(t, store.Markers(), 3, "no marker is created outside record mode")
}

func TestJumpToWithoutMatchIsNoop(t *testing.T) {
	c, store, transport, _, _ := newFixture(t)

	addScene(store, 100, 0, 1, 1)
	c.JumpTo(9, 9)

	assert.Empty(t, transport.located)
}

func TestRecordingSynthesizesMarkerAtTimestamp(t *testing.T) {
	c, store, transport, input, output := newFixture(t)

	transport.rolling = true
	transport.recordEnabled = true

	input.Feed(400, midi.ControlChange(0, 0, 2))
	input.Feed(400, midi.ControlChange(0, 32, 5))
	input.Feed(500, midi.ProgramChange(0, 42))

	markers := store.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, engine.FramePos(500), markers[0].Start(), "marker sits exactly at the event timestamp")
	assert.Equal(t, "Scene 1", markers[0].Name())

	p, ok := markers[0].Automation().(*Payload)
	require.True(t, ok)
	assert.Equal(t, uint8(0), p.Channel)
	assert.Equal(t, 2*128+5, p.Bank, "payload carries the latched bank")
	assert.Equal(t, 42, p.Program)

	// the store notification already regathered; the scene plays back
	transport.recordEnabled = false
	c.Run(nil, 0, 1000, 1000)
	events := output.EventBuffer(1000).Events()
	require.Len(t, events, 3)
	assert.Equal(t, engine.FramePos(500), events[0].Offset)

	assert.Empty(t, transport.located, "record mode must not relocate")
}

func TestProgramChangeWithinSlopReusesMarker(t *testing.T) {
	c, store, transport, input, _ := newFixture(t)
	_ = c

	transport.rolling = true
	transport.recordEnabled = true

	// slop = 100 ms at 48 kHz = 4800 frames
	input.Feed(500, midi.ProgramChange(0, 10))
	require.Len(t, store.Markers(), 1)

	input.Feed(600, midi.ProgramChange(0, 11))
	markers := store.Markers()
	require.Len(t, markers, 1, "second event within the tolerance reuses the marker")

	p, ok := markers[0].Automation().(*Payload)
	require.True(t, ok)
	assert.Equal(t, 11, p.Program, "payload is replaced, not duplicated")
}

func TestZeroSlopRequiresExactHit(t *testing.T) {
	store := timeline.NewStore()
	transport := &fakeTransport{frameRate: 48000, rolling: true, recordEnabled: true}
	c := NewChanger("test", transport, store, conf.SceneSettings{InterSceneGapMs: 0, MarkerPrefix: "Scene "})
	input := midictl.NewInput()
	c.BindInput(input)

	input.Feed(500, midi.ProgramChange(0, 1))
	input.Feed(501, midi.ProgramChange(0, 2))

	assert.Len(t, store.Markers(), 2, "zero tolerance never matches a neighbour")
}

func TestNameExhaustionDropsEvent(t *testing.T) {
	store := timeline.NewStore(timeline.WithNameLimit(1))
	transport := &fakeTransport{frameRate: 48000, rolling: true, recordEnabled: true}
	c := NewChanger("test", transport, store, conf.SceneSettings{InterSceneGapMs: 0, MarkerPrefix: "Scene "})
	input := midictl.NewInput()
	c.BindInput(input)

	// occupy the only available name, far from the incoming event
	store.Add(store.NewMarker("Scene 1", 100000))

	input.Feed(500, midi.ProgramChange(0, 1))

	assert.Len(t, store.Markers(), 1, "event is dropped, no marker created")
}

func TestBankChangeRecordsTimestampOnlyWhileRecording(t *testing.T) {
	c, _, transport, input, _ := newFixture(t)

	input.Feed(100, midi.ControlChange(0, 0, 1))
	assert.Equal(t, timeUnset, c.lastBankMessageTime, "playback mode ignores bank arrivals")

	transport.rolling = true
	transport.recordEnabled = true
	input.Feed(200, midi.ControlChange(0, 0, 1))
	assert.Equal(t, engine.FramePos(200), c.lastBankMessageTime)
}

func TestBindInputDropsPriorSubscriptions(t *testing.T) {
	c, store, transport, input, _ := newFixture(t)

	addScene(store, 300, 0, midictl.BankUnset, 7)

	input.Feed(0, midi.ProgramChange(0, 7))
	require.Len(t, transport.located, 1)

	// rebinding must drop the sixteen prior per-channel subscriptions
	c.BindInput(midictl.NewInput())
	input.Feed(0, midi.ProgramChange(0, 7))
	assert.Len(t, transport.located, 1, "old source must no longer dispatch into the changer")
}

func TestLocateIsInert(t *testing.T) {
	c, store, transport, _, output := newFixture(t)

	addScene(store, 1000, 0, 2, 5)

	c.Locate(0)

	assert.Zero(t, output.EventBuffer(0).Len(), "locate must not emit")
	assert.Empty(t, transport.located)
}

func TestLocatePastLastSceneIsNoop(t *testing.T) {
	c, store, _, _, _ := newFixture(t)

	addScene(store, 1000, 0, 2, 5)
	c.Locate(5000) // nothing strictly after, must not panic
}

func TestProcessorIdentity(t *testing.T) {
	c, _, _, _, _ := newFixture(t)

	assert.Equal(t, engine.ProcessorState{Name: "test", Type: "scene-changer"}, c.State())
	assert.Equal(t, "test", c.Name())

	out, ok := c.CanSupportChannelMapping(engine.ChanCount{MIDI: 2})
	assert.True(t, ok)
	assert.Equal(t, engine.ChanCount{MIDI: 2}, out)
	assert.NoError(t, c.ConfigureChannels(engine.ChanCount{MIDI: 2}, engine.ChanCount{MIDI: 2}))
}
