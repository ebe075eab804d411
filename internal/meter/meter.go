// Package meter implements the level metering engine: per-cycle peak and
// loudness computation across MIDI and audio channel slots, four parallel
// ballistics algorithm families, and falloff-smoothed display values.
package meter

import (
	"log/slog"
	"math"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/dsp"
	"github.com/wavecraft-audio/wavecraft/internal/engine"
	"github.com/wavecraft-audio/wavecraft/internal/errors"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
	"github.com/wavecraft-audio/wavecraft/internal/observability/metrics"
)

// meterTickHz is the assumed cadence of Meter calls; configured falloff
// rates are per second and get scaled to one tick.
const meterTickHz = 100

// midiSilenceFloor clamps decayed MIDI activity to zero.
const midiSilenceFloor = 1.0 / 512.0

// Meter computes per-channel level statistics once per audio cycle.
//
// Run executes on the real-time context and must not block or allocate.
// Meter runs on a slower display cadence; callers must serialize it against
// ConfigureChannels, and Meter additionally degrades to a no-op if it
// observes a resize in flight. Slot layout is MIDI slots first, then audio
// slots.
type Meter struct {
	name       string
	sampleRate int
	falloffDB  float64

	logger  *slog.Logger
	metrics *metrics.MeteringMetrics

	current  engine.ChanCount
	typeMask MeterType

	// per-slot state, all kept at current.NTotal() entries outside of a
	// guarded reconfiguration window
	peakSignal       []float32 // instantaneous, max-accumulated per cycle
	visiblePeakPower []float32 // falloff-smoothed display value
	maxPeakPower     []float32 // max held dB since last reset
	maxPeakSignal    []float32 // max held linear since last reset

	// per-audio-slot ballistics instances
	kmeter []*dsp.KMeter
	iec1   []*dsp.IEC1PPM
	iec2   []*dsp.IEC2PPM
	vu     []*dsp.VUMeter

	typeChanged []func(MeterType)
}

// New creates a metering engine. Channel counts start at zero; call
// ConfigureChannels before the first cycle.
func New(name string, sampleRate int, cfg conf.MeteringSettings) *Meter {
	logger := logging.ForService("meter")
	if logger == nil {
		logger = slog.Default()
	}

	return &Meter{
		name:       name,
		sampleRate: sampleRate,
		falloffDB:  cfg.FalloffDB,
		logger:     logger.With("meter", name),
		typeMask:   MeterPeak,
	}
}

// SetMetrics attaches prometheus collectors. A nil metrics value is valid
// and disables recording.
func (m *Meter) SetMetrics(mm *metrics.MeteringMetrics) {
	m.metrics = mm
}

// OnTypeChanged registers a callback fired after the active algorithm mask
// switches.
func (m *Meter) OnTypeChanged(fn func(MeterType)) {
	m.typeChanged = append(m.typeChanged, fn)
}

// Name returns the meter's instance name.
func (m *Meter) Name() string {
	return m.name
}

// State exports the identity record; metering history is never persisted.
func (m *Meter) State() engine.ProcessorState {
	return engine.ProcessorState{Name: m.name, Type: "meter"}
}

// TypeMask returns the active algorithm bitmask.
func (m *Meter) TypeMask() MeterType {
	return m.typeMask
}

// CanSupportChannelMapping reports that only 1:1 mappings are supported.
func (m *Meter) CanSupportChannelMapping(in engine.ChanCount) (engine.ChanCount, bool) {
	return in, true
}

// ConfigureChannels applies a 1:1 channel configuration, resizing all
// per-slot arrays and ballistics instances, then fully resets. Mappings
// with in != out fail with no state mutation. Callers must hold their
// reconfiguration lock against a concurrently running real-time context.
func (m *Meter) ConfigureChannels(in, out engine.ChanCount) error {
	if in != out {
		return errors.Newf("unsupported channel mapping %s -> %s, only 1:1 is supported", in, out).
			Component("meter").
			Category(errors.CategoryValidation).
			Build()
	}

	m.current = in
	m.resizeSlots(in)

	m.logger.Info("channels configured",
		"midi", in.MIDI,
		"audio", in.Audio)
	if m.metrics != nil {
		m.metrics.RecordReconfigure(in.Audio)
	}
	return nil
}

// resizeSlots grows or shrinks per-slot arrays and per-audio-slot
// ballistics instances to the given counts, then resets everything.
// Growth appends fresh silent state, shrinkage removes from the tail.
func (m *Meter) resizeSlots(chn engine.ChanCount) {
	limit := chn.NTotal()
	nAudio := chn.Audio

	for len(m.peakSignal) > limit {
		last := len(m.peakSignal) - 1
		m.peakSignal = m.peakSignal[:last]
		m.visiblePeakPower = m.visiblePeakPower[:last]
		m.maxPeakSignal = m.maxPeakSignal[:last]
		m.maxPeakPower = m.maxPeakPower[:last]
	}
	for len(m.peakSignal) < limit {
		m.peakSignal = append(m.peakSignal, 0)
		m.visiblePeakPower = append(m.visiblePeakPower, minusInfinity)
		m.maxPeakSignal = append(m.maxPeakSignal, 0)
		m.maxPeakPower = append(m.maxPeakPower, minusInfinity)
	}

	for len(m.kmeter) > nAudio {
		last := len(m.kmeter) - 1
		m.kmeter = m.kmeter[:last]
		m.iec1 = m.iec1[:last]
		m.iec2 = m.iec2[:last]
		m.vu = m.vu[:last]
	}
	for len(m.kmeter) < nAudio {
		m.kmeter = append(m.kmeter, dsp.NewKMeter(m.sampleRate))
		m.iec1 = append(m.iec1, dsp.NewIEC1PPM(m.sampleRate))
		m.iec2 = append(m.iec2, dsp.NewIEC2PPM(m.sampleRate))
		m.vu = append(m.vu, dsp.NewVUMeter(m.sampleRate))
	}

	m.Reset()
	m.ResetMax()
}

// Run computes instantaneous activity for every configured slot over the
// current cycle. Input acceptance is lenient: the first n buffers from
// bufs are metered, excess slots are zeroed. Runs on the real-time context.
func (m *Meter) Run(bufs *engine.BufferSet, _, _ engine.FramePos, nframes int) {
	avail := bufs.Count()
	nMIDI := min(m.current.MIDI, avail.MIDI)
	nAudio := min(m.current.Audio, avail.Audio)

	n := 0

	// MIDI slots: max note-on velocity fraction vs. density of other
	// messages, clamped to 1.0, accumulated via max.
	for i := 0; i < nMIDI; i, n = i+1, n+1 {
		var val float32
		buf := bufs.MIDI(i)

		for _, ev := range buf.Events() {
			var ch, key, vel uint8
			if ev.Msg.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				if v := float32(vel) / 127.0; v > val {
					val = v
				}
			} else {
				val += 1.0 / float32(buf.Capacity())
				if val > 1.0 {
					val = 1.0
				}
			}
		}

		if val > m.peakSignal[n] {
			m.peakSignal[n] = val
		}
	}

	// Audio slots: block peak, plus every ballistics family enabled by
	// the current mask.
	for i := 0; i < nAudio; i, n = i+1, n+1 {
		buf := bufs.Audio(i)
		if buf.Silent() {
			m.peakSignal[n] = 0
			continue
		}

		data := buf.Data()
		if nframes < len(data) {
			data = data[:nframes]
		}
		m.peakSignal[n] = computePeak(data, m.peakSignal[n])

		if m.typeMask&familyK != 0 {
			m.kmeter[i].Process(data)
		}
		if m.typeMask&familyIEC1 != 0 {
			m.iec1[i].Process(data)
		}
		if m.typeMask&familyIEC2 != 0 {
			m.iec2[i].Process(data)
		}
		if m.typeMask&MeterVU != 0 {
			m.vu[i].Process(data)
		}
	}

	// zero any excess slots
	for ; n < len(m.peakSignal); n++ {
		m.peakSignal[n] = 0
	}

	if m.metrics != nil {
		m.metrics.RecordRunCycle()
	}
}

// computePeak returns the maximum of current and the absolute sample
// values in data.
func computePeak(data []float32, current float32) float32 {
	for _, s := range data {
		if s < 0 {
			s = -s
		}
		if s > current {
			current = s
		}
	}
	return current
}

// Meter is the snapshot-and-decay step, driven on the display cadence.
// It grabs each slot's instantaneous peak since the last call, updates the
// max-hold statistics and applies the falloff law to the visible value.
// If a channel reconfiguration is in flight the internal arrays disagree
// in size and the call is a safe no-op.
func (m *Meter) Meter() {
	if len(m.visiblePeakPower) != len(m.peakSignal) ||
		len(m.maxPeakPower) != len(m.peakSignal) ||
		len(m.maxPeakSignal) != len(m.peakSignal) {
		return
	}

	limit := min(len(m.peakSignal), m.current.NTotal())
	nMIDI := min(len(m.peakSignal), m.current.MIDI)

	midiFalloff := float32(m.falloffDB) / meterTickHz
	// K-system families override the configured falloff: 24 dB / 2 s
	audioFalloff := midiFalloff
	if m.typeMask&familyKSys != 0 {
		audioFalloff = 0.12
	}

	for n := 0; n < limit; n++ {
		// grab peak since last read
		newPeak := m.peakSignal[n]
		m.peakSignal[n] = 0

		if n < nMIDI {
			// no max-hold tracking for MIDI-type slots
			m.maxPeakPower[n] = minusInfinity
			m.maxPeakSignal[n] = 0

			if midiFalloff != 0 && newPeak <= m.visiblePeakPower[n] {
				v := m.visiblePeakPower[n]
				newPeak = v - float32(math.Sqrt(float64(v*midiFalloff*0.0002)))
				if newPeak < midiSilenceFloor {
					newPeak = 0
				}
			}
			m.visiblePeakPower[n] = newPeak
			continue
		}

		// audio slot
		if newPeak > m.maxPeakSignal[n] {
			m.maxPeakSignal[n] = newPeak
		}

		db := CoefficientToDB(newPeak)
		if db > m.maxPeakPower[n] {
			m.maxPeakPower[n] = db
		}

		if audioFalloff == 0 || db > m.visiblePeakPower[n] {
			m.visiblePeakPower[n] = db
		} else {
			m.visiblePeakPower[n] -= audioFalloff
		}
	}

	if m.metrics != nil {
		m.metrics.RecordMeterTick()
	}
}

// Reset zeroes the instantaneous accumulators and all ballistics state.
func (m *Meter) Reset() {
	for i := range m.peakSignal {
		m.peakSignal[i] = 0
	}
	for i := range m.kmeter {
		m.kmeter[i].Reset()
		m.iec1[i].Reset()
		m.iec2[i].Reset()
		m.vu[i].Reset()
	}
}

// ResetMax resets max-hold statistics. MIDI slots return their visible
// value to the zero activity baseline, audio slots to the silence sentinel.
func (m *Meter) ResetMax() {
	for i := range m.maxPeakPower {
		m.maxPeakPower[i] = minusInfinity
		m.maxPeakSignal[i] = 0
	}

	nMIDI := min(len(m.visiblePeakPower), m.current.MIDI)
	for n := range m.visiblePeakPower {
		if n < nMIDI {
			m.visiblePeakPower[n] = 0
		} else {
			m.visiblePeakPower[n] = minusInfinity
		}
	}
}

// Level returns the reading of the given algorithm at channel slot n.
// Ballistics families read in dB, peak and max types in their native
// quantity. Out-of-range slots and algorithm/slot-class mismatches return
// the minus-infinity sentinel.
func (m *Meter) Level(n int, t MeterType) float32 {
	if n < 0 {
		return minusInfinity
	}

	nMIDI := m.current.MIDI

	inAudioRange := func(size int) bool {
		return n >= nMIDI && n < size+nMIDI
	}

	switch {
	case t&familyK != 0:
		if inAudioRange(len(m.kmeter)) {
			return CoefficientToDB(m.kmeter[n-nMIDI].Read())
		}
	case t&familyIEC1 != 0:
		if inAudioRange(len(m.iec1)) {
			return CoefficientToDB(m.iec1[n-nMIDI].Read())
		}
	case t&familyIEC2 != 0:
		if inAudioRange(len(m.iec2)) {
			return CoefficientToDB(m.iec2[n-nMIDI].Read())
		}
	case t&MeterVU != 0:
		if inAudioRange(len(m.vu)) {
			return CoefficientToDB(m.vu[n-nMIDI].Read())
		}
	case t&MeterPeak != 0:
		if n < len(m.visiblePeakPower) {
			return m.visiblePeakPower[n]
		}
	case t&MeterMaxSignal != 0:
		if n < len(m.maxPeakSignal) {
			return m.maxPeakSignal[n]
		}
	default:
		if n < len(m.maxPeakPower) {
			return m.maxPeakPower[n]
		}
	}
	return minusInfinity
}

// SetTypeMask switches the active algorithm families. Every per-channel
// instance belonging to the new mask is reset so the first reads after a
// switch reflect only post-switch input. A no-op if the mask is unchanged.
func (m *Meter) SetTypeMask(t MeterType) {
	if t == m.typeMask {
		return
	}

	m.typeMask = t

	if t&familyK != 0 {
		for _, k := range m.kmeter {
			k.Reset()
		}
	}
	if t&familyIEC1 != 0 {
		for _, p := range m.iec1 {
			p.Reset()
		}
	}
	if t&familyIEC2 != 0 {
		for _, p := range m.iec2 {
			p.Reset()
		}
	}
	if t&MeterVU != 0 {
		for _, v := range m.vu {
			v.Reset()
		}
	}

	m.logger.Debug("meter type switched", "mask", t.String())
	if m.metrics != nil {
		m.metrics.RecordTypeSwitch(t.String())
	}
	for _, fn := range m.typeChanged {
		fn(t)
	}
}
