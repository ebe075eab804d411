package dsp

import "math"

// ppm is the shared quasi-peak engine behind both IEC 60268-10 PPM types:
// an integrator chases the rectified signal with an attack time constant
// and decays exponentially at the family's return rate when the signal
// falls away.
type ppm struct {
	wAttack  float64 // per-sample attack coefficient
	wRelease float64 // per-sample decay multiplier
	z        float64
	hold     float32 // max seen since last read
}

func newPPM(sampleRate int, attackSecs, returnDB, returnSecs float64) ppm {
	rate := float64(sampleRate)
	return ppm{
		wAttack:  1 - math.Exp(-1/(attackSecs*rate)),
		wRelease: math.Pow(10, -returnDB/(20*returnSecs*rate)),
	}
}

func (p *ppm) process(samples []float32) {
	z := p.z
	for _, s := range samples {
		t := math.Abs(float64(s))
		if t > z {
			z += p.wAttack * (t - z)
		} else {
			z *= p.wRelease
		}
	}
	if z < 1e-30 {
		z = 0
	}
	p.z = z

	v := float32(z)
	if v > p.hold {
		p.hold = v
	}
}

func (p *ppm) read() float32 {
	v := p.hold
	p.hold = float32(p.z)
	return v
}

func (p *ppm) reset() {
	p.z = 0
	p.hold = 0
}

// IEC1PPM implements IEC 60268-10 Type I (DIN/Nordic) peak programme meter
// ballistics: 5 ms integration, 20 dB return over 1.7 s.
type IEC1PPM struct {
	ppm
}

// NewIEC1PPM creates a Type I PPM instance for the given sample rate.
func NewIEC1PPM(sampleRate int) *IEC1PPM {
	return &IEC1PPM{ppm: newPPM(sampleRate, 0.005, 20, 1.7)}
}

func (m *IEC1PPM) Process(samples []float32) { m.process(samples) }
func (m *IEC1PPM) Read() float32             { return m.read() }
func (m *IEC1PPM) Reset()                    { m.reset() }

// IEC2PPM implements IEC 60268-10 Type II (BBC/EBU) peak programme meter
// ballistics: 10 ms integration, 24 dB return over 2.8 s.
type IEC2PPM struct {
	ppm
}

// NewIEC2PPM creates a Type II PPM instance for the given sample rate.
func NewIEC2PPM(sampleRate int) *IEC2PPM {
	return &IEC2PPM{ppm: newPPM(sampleRate, 0.010, 24, 2.8)}
}

func (m *IEC2PPM) Process(samples []float32) { m.process(samples) }
func (m *IEC2PPM) Read() float32             { return m.read() }
func (m *IEC2PPM) Reset()                    { m.reset() }
