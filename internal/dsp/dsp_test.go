package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 48000

// sineBlock generates one block of a full-scale sine at the given frequency.
func sineBlock(freq float64, nframes int) []float32 {
	out := make([]float32, nframes)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / testRate))
	}
	return out
}

func silence(nframes int) []float32 {
	return make([]float32, nframes)
}

func allInstances() map[string]Ballistics {
	return map[string]Ballistics{
		"kmeter": NewKMeter(testRate),
		"iec1":   NewIEC1PPM(testRate),
		"iec2":   NewIEC2PPM(testRate),
		"vu":     NewVUMeter(testRate),
	}
}

func TestFreshInstanceReadsSilence(t *testing.T) {
	for name, m := range allInstances() {
		t.Run(name, func(t *testing.T) {
			assert.Zero(t, m.Read())
		})
	}
}

func TestSignalRaisesReading(t *testing.T) {
	for name, m := range allInstances() {
		t.Run(name, func(t *testing.T) {
			// half a second of full-scale 1 kHz sine
			for i := 0; i < 375; i++ {
				m.Process(sineBlock(1000, 64))
			}
			v := m.Read()
			assert.Greater(t, v, float32(0.2), "steady full-scale sine must read well above silence")
			assert.Less(t, v, float32(1.5), "reading must stay near full scale")
		})
	}
}

func TestReadingDecaysOverSilence(t *testing.T) {
	for name, m := range allInstances() {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 375; i++ {
				m.Process(sineBlock(1000, 64))
			}
			loud := m.Read()
			require.Positive(t, loud)

			// two seconds of silence, sampled every quarter second
			prev := loud
			for i := 0; i < 8; i++ {
				for i := 0; i < 187; i++ {
					m.Process(silence(64))
				}
				v := m.Read()
				assert.LessOrEqual(t, v, prev, "reading must not rise during silence")
				prev = v
			}
			assert.Less(t, prev, loud/2, "reading must have decayed substantially")
		})
	}
}

func TestResetClearsState(t *testing.T) {
	for name, m := range allInstances() {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				m.Process(sineBlock(1000, 64))
			}
			require.Positive(t, m.Read())

			m.Reset()
			assert.Zero(t, m.Read(), "reset instance must read silence")
		})
	}
}

func TestKMeterTracksRMSNotPeak(t *testing.T) {
	m := NewKMeter(testRate)
	for i := 0; i < 750; i++ {
		m.Process(sineBlock(1000, 64))
	}
	// RMS of a sine is 1/sqrt(2); the K reading maps it back to ~1.0
	assert.InDelta(t, 1.0, float64(m.Read()), 0.15)
}
