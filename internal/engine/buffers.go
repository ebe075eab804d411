package engine

import (
	"gitlab.com/gomidi/midi/v2"
)

// AudioBuffer holds one channel's samples for the current cycle. A buffer
// marked silent carries no meaningful sample data and consumers may skip it.
type AudioBuffer struct {
	samples []float32
	silent  bool
}

// NewAudioBuffer allocates a silent buffer of the given frame capacity.
func NewAudioBuffer(nframes int) *AudioBuffer {
	return &AudioBuffer{
		samples: make([]float32, nframes),
		silent:  true,
	}
}

// Data returns the raw sample slice.
func (b *AudioBuffer) Data() []float32 {
	return b.samples
}

// Silent reports whether the buffer is known to contain only silence.
func (b *AudioBuffer) Silent() bool {
	return b.silent
}

// Write copies samples into the buffer and clears the silent flag.
// Excess input is truncated to the buffer capacity.
func (b *AudioBuffer) Write(samples []float32) {
	n := copy(b.samples, samples)
	for i := n; i < len(b.samples); i++ {
		b.samples[i] = 0
	}
	b.silent = false
}

// Clear zeroes the buffer and marks it silent.
func (b *AudioBuffer) Clear() {
	for i := range b.samples {
		b.samples[i] = 0
	}
	b.silent = true
}

// MIDIEvent is one control message at a frame offset inside a cycle.
type MIDIEvent struct {
	Offset FramePos     // frame offset relative to cycle start
	Msg    midi.Message // raw message bytes
}

// MIDIBuffer is an ordered, capacity-bounded list of MIDI events. It is
// both the inbound event view a cycle meters and the outbound sink
// scheduled control messages are pushed into.
type MIDIBuffer struct {
	events   []MIDIEvent
	capacity int
}

// NewMIDIBuffer creates a buffer holding at most capacity events.
func NewMIDIBuffer(capacity int) *MIDIBuffer {
	return &MIDIBuffer{
		events:   make([]MIDIEvent, 0, capacity),
		capacity: capacity,
	}
}

// PushBack appends a message at the given offset. It returns false when the
// buffer is full; the message is dropped.
func (b *MIDIBuffer) PushBack(offset FramePos, msg midi.Message) bool {
	if len(b.events) >= b.capacity {
		return false
	}
	b.events = append(b.events, MIDIEvent{Offset: offset, Msg: msg})
	return true
}

// Events returns the events in push order.
func (b *MIDIBuffer) Events() []MIDIEvent {
	return b.events
}

// Len returns the number of buffered events.
func (b *MIDIBuffer) Len() int {
	return len(b.events)
}

// Capacity returns the maximum number of events the buffer holds.
func (b *MIDIBuffer) Capacity() int {
	return b.capacity
}

// Clear drops all buffered events.
func (b *MIDIBuffer) Clear() {
	b.events = b.events[:0]
}

// BufferSet groups the per-channel buffers one cycle operates on.
type BufferSet struct {
	midi  []*MIDIBuffer
	audio []*AudioBuffer
}

// NewBufferSet allocates buffers for the given channel counts. Audio
// buffers hold nframes samples, MIDI buffers hold midiCapacity events.
func NewBufferSet(count ChanCount, nframes, midiCapacity int) *BufferSet {
	bs := &BufferSet{
		midi:  make([]*MIDIBuffer, count.MIDI),
		audio: make([]*AudioBuffer, count.Audio),
	}
	for i := range bs.midi {
		bs.midi[i] = NewMIDIBuffer(midiCapacity)
	}
	for i := range bs.audio {
		bs.audio[i] = NewAudioBuffer(nframes)
	}
	return bs
}

// Count returns the channel counts of this set.
func (bs *BufferSet) Count() ChanCount {
	return ChanCount{MIDI: len(bs.midi), Audio: len(bs.audio)}
}

// MIDI returns the i-th MIDI buffer.
func (bs *BufferSet) MIDI(i int) *MIDIBuffer {
	return bs.midi[i]
}

// Audio returns the i-th audio buffer.
func (bs *BufferSet) Audio(i int) *AudioBuffer {
	return bs.audio[i]
}
