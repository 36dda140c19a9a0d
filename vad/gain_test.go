package vad

import (
	"math"
	"testing"
)

func sine(n int, amplitude float64) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(amplitude * 32767 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return s
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v", got)
	}
	if got := RMS(make([]int16, 100)); got != 0 {
		t.Errorf("RMS(silence) = %v", got)
	}
	// full-scale sine has RMS amplitude/sqrt(2)
	got := RMS(sine(16000, 1.0))
	want := 1.0 / math.Sqrt2
	if math.Abs(got-want) > 0.01 {
		t.Errorf("RMS(full sine) = %v, want ~%v", got, want)
	}
}

func TestNormalizeGainBoostsQuietInput(t *testing.T) {
	s := sine(16000, 0.05)
	before := RMS(s)
	NormalizeGain(s)
	after := RMS(s)
	if after <= before {
		t.Fatalf("gain did not boost: before %v after %v", before, after)
	}
	// bounded by MaxGain
	if after > before*MaxGain*1.01 {
		t.Fatalf("gain exceeded bound: before %v after %v", before, after)
	}
}

func TestNormalizeGainReachesTarget(t *testing.T) {
	s := sine(16000, 0.15)
	NormalizeGain(s)
	target := math.Pow(10, TargetDB/20)
	if got := RMS(s); math.Abs(got-target) > 0.01 {
		t.Errorf("RMS after normalize = %v, want ~%v", got, target)
	}
}

func TestNormalizeGainLeavesSilenceAlone(t *testing.T) {
	s := make([]int16, 1000)
	NormalizeGain(s)
	for i, v := range s {
		if v != 0 {
			t.Fatalf("sample %d changed to %d", i, v)
		}
	}
}

func TestNormalizeGainClampsLoudInput(t *testing.T) {
	s := sine(16000, 0.9)
	NormalizeGain(s)
	target := math.Pow(10, TargetDB/20)
	if got := RMS(s); math.Abs(got-target) > 0.02 {
		t.Errorf("loud input not attenuated to target: RMS %v want ~%v", got, target)
	}
}
