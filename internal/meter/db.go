package meter

import "math"

// minusInfinity is the sentinel for digital silence. It compares strictly
// less than every finite dB value and survives max/falloff arithmetic
// without turning into NaN.
var minusInfinity = float32(math.Inf(-1))

// MinusInfinity returns the dB sentinel for digital silence.
func MinusInfinity() float32 {
	return minusInfinity
}

// CoefficientToDB converts a linear amplitude coefficient to dB. Silence
// and negative values map to the minus-infinity sentinel.
func CoefficientToDB(coeff float32) float32 {
	if coeff <= 0 {
		return minusInfinity
	}
	return float32(20 * math.Log10(float64(coeff)))
}
