package engine

// ProcessorState is the minimal identity record a processor exports. Full
// runtime state (meter readings, scheduled events) is never persisted.
type ProcessorState struct {
	Name string
	Type string
}

// Processor is the host contract for per-cycle processing components. The
// surrounding engine calls Run once per audio cycle on the real-time
// context; Run must not block or allocate.
//
// ConfigureChannels resizes shared per-channel state and must be serialized
// by the caller against a concurrently running real-time context.
type Processor interface {
	// Name returns the processor's instance name.
	Name() string

	// CanSupportChannelMapping reports the output counts the processor
	// would produce for the given inputs and whether the mapping is
	// supported at all.
	CanSupportChannelMapping(in ChanCount) (out ChanCount, ok bool)

	// ConfigureChannels applies a channel configuration. On failure state
	// is left unchanged.
	ConfigureChannels(in, out ChanCount) error

	// Run processes one cycle spanning [start, end) with nframes frames.
	Run(bufs *BufferSet, start, end FramePos, nframes int)

	// State exports the processor's identity record.
	State() ProcessorState
}

// Transport is the view of the session transport the processing components
// consume. Mode (playback vs. record) is always derived from Rolling and
// RecordEnabled at the point of use, never cached.
type Transport interface {
	// Rolling reports whether the transport is moving.
	Rolling() bool

	// RecordEnabled reports whether the session is record-armed.
	RecordEnabled() bool

	// FrameRate returns the session sample rate in Hz.
	FrameRate() int

	// RequestLocate asks the transport to relocate. The request is
	// fire-and-forget relative to the caller.
	RequestLocate(pos FramePos)
}
