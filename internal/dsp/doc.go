// Package dsp implements the stateful ballistics algorithms behind the
// level metering engine: K-system RMS, IEC 60268-10 Type I and Type II
// peak programme meters, and the classic VU integration law.
//
// Each algorithm owns its internal filter state for a single audio channel.
// Process feeds one cycle's samples, Read returns the current linear
// reading (conversion to dB happens at the meter layer), and Reset returns
// the instance to digital silence. Instances are not safe for concurrent
// use; the metering engine serializes access per channel.
package dsp

// Ballistics is the common contract of all metering algorithm instances.
type Ballistics interface {
	// Process feeds one block of samples into the filter state.
	Process(samples []float32)

	// Read returns the linear meter reading accumulated since the last
	// read. A freshly reset instance reads 0.
	Read() float32

	// Reset returns the instance to digital silence.
	Reset()
}
