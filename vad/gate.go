package vad

import (
	"math"
	"sync/atomic"
)

// Utterance is the result of trimming a recording. Empty means no speech was
// found anywhere; callers skip transcription entirely in that case.
type Utterance struct {
	Samples []int16
	Empty   bool
}

// Gate owns silence trimming and the live level meter. Observe runs on the
// ring consumer during recording; Trim runs once when the recording stops.
type Gate struct {
	detector Detector
	level    atomic.Uint64 // float64 bits, smoothed RMS 0..1
}

// NewGate builds a gate around the webrtc classifier, falling back to the
// energy detector when the classifier is unavailable. The returned bool is
// false when the fallback was taken.
func NewGate(threshold float64) (*Gate, bool) {
	d, err := NewWebRTCDetector(threshold)
	if err != nil {
		return &Gate{detector: &EnergyDetector{Threshold: threshold}}, false
	}
	return &Gate{detector: d}, true
}

// NewGateWithDetector injects a specific detector.
func NewGateWithDetector(d Detector) *Gate {
	return &Gate{detector: d}
}

// Observe updates the level meter from one drained frame.
func (g *Gate) Observe(samples []int16) {
	rms := RMS(samples)
	prev := math.Float64frombits(g.level.Load())
	// light smoothing so the meter doesn't flicker
	g.level.Store(math.Float64bits(prev*0.6 + rms*0.4))
}

// Level returns the current smoothed input level, 0..1.
func (g *Gate) Level() float64 {
	return math.Float64frombits(g.level.Load())
}

// ResetLevel zeroes the meter between sessions.
func (g *Gate) ResetLevel() {
	g.level.Store(0)
}

// Trim normalizes gain and cuts silence from both ends of the recording,
// keeping PadWindows of context around the speech. All-silence input yields
// an empty utterance. If the detector fails mid-scan the gate fails open:
// the whole normalized recording is returned along with the error, so a
// broken classifier degrades to "no trimming" rather than lost words.
func (g *Gate) Trim(samples []int16) (Utterance, error) {
	if len(samples) == 0 {
		return Utterance{Empty: true}, nil
	}
	NormalizeGain(samples)
	g.detector.Reset()

	windows := len(samples) / WindowSamples
	firstSpeech, lastSpeech := -1, -1
	for w := 0; w < windows; w++ {
		win := samples[w*WindowSamples : (w+1)*WindowSamples]
		speech, err := g.detector.Classify(win)
		if err != nil {
			return Utterance{Samples: samples}, err
		}
		if speech {
			if firstSpeech < 0 {
				firstSpeech = w
			}
			lastSpeech = w
		}
	}
	if firstSpeech < 0 {
		// a trailing partial window can still hold a syllable
		if tail := samples[windows*WindowSamples:]; len(tail) > 0 {
			if speech, err := g.detector.Classify(pad(tail)); err == nil && speech {
				return Utterance{Samples: samples}, nil
			}
		}
		return Utterance{Empty: true}, nil
	}

	start := max(0, firstSpeech-PadWindows) * WindowSamples
	endWindow := lastSpeech + 1 + PadWindows
	end := len(samples)
	if endWindow < windows {
		end = endWindow * WindowSamples
	}
	return Utterance{Samples: samples[start:end]}, nil
}

func pad(tail []int16) []int16 {
	win := make([]int16, WindowSamples)
	copy(win, tail)
	return win
}
