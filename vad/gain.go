package vad

import "math"

const (
	// TargetDB is the RMS level recordings are normalized toward before
	// trimming and upload. Quiet mics otherwise fall under the classifier's
	// floor and transcribe poorly.
	TargetDB = -20.0

	// MaxGain bounds amplification so a near-silent room is not boosted
	// into audible noise.
	MaxGain = 4.0

	silenceFloor = 1e-10
)

// RMS returns the root-mean-square level of samples, normalized to 0..1.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// NormalizeGain scales samples in place toward TargetDB. Silent input is
// left untouched. Scaled values clamp to the int16 range.
func NormalizeGain(samples []int16) {
	rms := RMS(samples)
	if rms < silenceFloor {
		return
	}
	target := math.Pow(10, TargetDB/20)
	gain := target / rms
	if gain > MaxGain {
		gain = MaxGain
	}
	if gain == 1 {
		return
	}
	for i, s := range samples {
		v := float64(s) * gain
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}
}
