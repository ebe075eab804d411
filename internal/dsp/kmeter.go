package dsp

import "math"

// KMeter implements K-system RMS ballistics: the squared signal runs
// through a two-stage one-pole lowpass and the reading is the RMS
// equivalent of the second stage. Display falloff for the K families is
// fixed at 24 dB / 2 s and applied by the meter layer, not here.
type KMeter struct {
	omega float64 // per-sample filter coefficient
	z1    float64
	z2    float64
	rms   float32 // max RMS seen since last read
}

// NewKMeter creates a K-system RMS instance for the given sample rate.
func NewKMeter(sampleRate int) *KMeter {
	return &KMeter{
		omega: 9.72 / float64(sampleRate),
	}
}

// Process feeds one block of samples into the filter state.
func (k *KMeter) Process(samples []float32) {
	z1, z2 := k.z1, k.z2
	for _, s := range samples {
		p := float64(s) * float64(s)
		z1 += k.omega * (p - z1)
		z2 += k.omega * (z1 - z2)
	}
	// state can underflow to denormals on long silence
	if z1 < 1e-30 {
		z1 = 0
	}
	if z2 < 1e-30 {
		z2 = 0
	}
	k.z1, k.z2 = z1, z2

	rms := float32(math.Sqrt(2 * z2))
	if rms > k.rms {
		k.rms = rms
	}
}

// Read returns the highest RMS reading since the last read and re-arms
// the hold with the current filter output.
func (k *KMeter) Read() float32 {
	v := k.rms
	k.rms = float32(math.Sqrt(2 * k.z2))
	return v
}

// Reset returns the instance to digital silence.
func (k *KMeter) Reset() {
	k.z1 = 0
	k.z2 = 0
	k.rms = 0
}
