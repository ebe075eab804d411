package dsp

// VUMeter implements classic VU ballistics: the rectified signal runs
// through a two-stage one-pole lowpass giving roughly the standard 300 ms
// response, with a calibration gain mapping a sine's average level back to
// its peak.
type VUMeter struct {
	omega float64
	z1    float64
	z2    float64
}

// sineAverageToPeak compensates the full-wave average of a sine (2/pi of
// its peak) so a 0 dBFS sine reads 1.0.
const sineAverageToPeak = 1.5708

// NewVUMeter creates a VU instance for the given sample rate.
func NewVUMeter(sampleRate int) *VUMeter {
	return &VUMeter{
		omega: 11.1 / float64(sampleRate),
	}
}

// Process feeds one block of samples into the filter state.
func (v *VUMeter) Process(samples []float32) {
	z1, z2 := v.z1, v.z2
	for _, s := range samples {
		t := float64(s)
		if t < 0 {
			t = -t
		}
		z1 += v.omega * (t - z1)
		z2 += v.omega * (z1 - z2)
	}
	if z1 < 1e-30 {
		z1 = 0
	}
	if z2 < 1e-30 {
		z2 = 0
	}
	v.z1, v.z2 = z1, z2
}

// Read returns the current calibrated reading.
func (v *VUMeter) Read() float32 {
	return float32(sineAverageToPeak * v.z2)
}

// Reset returns the instance to digital silence.
func (v *VUMeter) Reset() {
	v.z1 = 0
	v.z2 = 0
}
