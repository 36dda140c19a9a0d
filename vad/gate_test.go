package vad

import (
	"errors"
	"testing"
)

// scriptDetector classifies window w as speech when script[w] is true.
type scriptDetector struct {
	script []bool
	errAt  int // classify call index that returns an error, -1 for never
	calls  int
	resets int
}

func (d *scriptDetector) Classify(window []int16) (bool, error) {
	i := d.calls
	d.calls++
	if d.errAt >= 0 && i == d.errAt {
		return false, errors.New("classifier died")
	}
	if i < len(d.script) {
		return d.script[i], nil
	}
	return false, nil
}

func (d *scriptDetector) Reset() { d.resets++ }

func windows(n int) []int16 {
	return make([]int16, n*WindowSamples)
}

func TestTrimAllSilenceIsEmpty(t *testing.T) {
	g := NewGateWithDetector(&scriptDetector{script: make([]bool, 50), errAt: -1})
	u, err := g.Trim(windows(50))
	if err != nil {
		t.Fatal(err)
	}
	if !u.Empty {
		t.Fatal("all-silence recording should yield an empty utterance")
	}
}

func TestTrimEmptyInput(t *testing.T) {
	g := NewGateWithDetector(&scriptDetector{errAt: -1})
	u, err := g.Trim(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !u.Empty {
		t.Fatal("empty input should yield an empty utterance")
	}
}

func TestTrimKeepsSpeechWithPadding(t *testing.T) {
	// 100 windows, speech in 40..59
	script := make([]bool, 100)
	for w := 40; w < 60; w++ {
		script[w] = true
	}
	g := NewGateWithDetector(&scriptDetector{script: script, errAt: -1})
	u, err := g.Trim(windows(100))
	if err != nil {
		t.Fatal(err)
	}
	if u.Empty {
		t.Fatal("speech present but utterance empty")
	}
	wantStart := (40 - PadWindows) * WindowSamples
	wantEnd := (60 + PadWindows) * WindowSamples
	if len(u.Samples) != wantEnd-wantStart {
		t.Fatalf("trimmed length %d, want %d", len(u.Samples), wantEnd-wantStart)
	}
}

func TestTrimPaddingClipsAtEdges(t *testing.T) {
	// speech starts in window 2: padding cannot reach before sample 0
	script := make([]bool, 30)
	script[2] = true
	script[3] = true
	g := NewGateWithDetector(&scriptDetector{script: script, errAt: -1})
	u, err := g.Trim(windows(30))
	if err != nil {
		t.Fatal(err)
	}
	wantEnd := min(30, 4+PadWindows) * WindowSamples
	if len(u.Samples) != wantEnd {
		t.Fatalf("trimmed length %d, want %d", len(u.Samples), wantEnd)
	}
}

func TestTrimSpeechAtTailKeepsEverythingAfterStart(t *testing.T) {
	script := make([]bool, 30)
	script[29] = true
	g := NewGateWithDetector(&scriptDetector{script: script, errAt: -1})
	u, err := g.Trim(windows(30))
	if err != nil {
		t.Fatal(err)
	}
	wantLen := 30*WindowSamples - (29-PadWindows)*WindowSamples
	if len(u.Samples) != wantLen {
		t.Fatalf("trimmed length %d, want %d", len(u.Samples), wantLen)
	}
}

func TestTrimFailsOpenOnDetectorError(t *testing.T) {
	g := NewGateWithDetector(&scriptDetector{script: make([]bool, 50), errAt: 10})
	in := windows(50)
	u, err := g.Trim(in)
	if err == nil {
		t.Fatal("expected detector error to surface")
	}
	if u.Empty {
		t.Fatal("fail-open must not report empty")
	}
	if len(u.Samples) != len(in) {
		t.Fatalf("fail-open returned %d samples, want the full %d", len(u.Samples), len(in))
	}
}

func TestTrimResetsDetectorPerCall(t *testing.T) {
	d := &scriptDetector{script: make([]bool, 10), errAt: -1}
	g := NewGateWithDetector(d)
	g.Trim(windows(10))
	g.Trim(windows(10))
	if d.resets != 2 {
		t.Fatalf("detector reset %d times, want 2", d.resets)
	}
}

func TestLevelMeter(t *testing.T) {
	g := NewGateWithDetector(&EnergyDetector{Threshold: 0.05})
	if g.Level() != 0 {
		t.Fatal("fresh gate should meter at zero")
	}
	loud := sine(WindowSamples, 0.8)
	for i := 0; i < 10; i++ {
		g.Observe(loud)
	}
	if g.Level() < 0.3 {
		t.Fatalf("level %v after loud frames, want > 0.3", g.Level())
	}
	g.ResetLevel()
	if g.Level() != 0 {
		t.Fatal("ResetLevel did not zero the meter")
	}
}

func TestEnergyDetectorGatesOnRMS(t *testing.T) {
	d := &EnergyDetector{Threshold: 0.05}
	if speech, _ := d.Classify(make([]int16, WindowSamples)); speech {
		t.Fatal("silence classified as speech")
	}
	if speech, _ := d.Classify(sine(WindowSamples, 0.5)); !speech {
		t.Fatal("loud tone classified as silence")
	}
}
