// Package vad trims leading and trailing silence from captured utterances and
// exposes a live input level for metering.
package vad

import (
	"encoding/binary"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

const (
	// SampleRate matches the capture format; the classifier only accepts
	// 10/20/30ms windows at 8/16/32/48kHz.
	SampleRate    = 16000
	WindowMs      = 20
	WindowSamples = SampleRate * WindowMs / 1000 // 320

	// PadWindows of context kept on each side of detected speech so word
	// onsets and trailing consonants survive the trim.
	PadWindows = 12 // 240ms
)

// Detector classifies one 20ms window as speech or not.
type Detector interface {
	Classify(window []int16) (bool, error)
	Reset()
}

type webrtcDetector struct {
	vad *webrtcvad.VAD
	buf []byte
}

// NewWebRTCDetector builds the primary detector. The aggressiveness mode is
// derived from the configured threshold: stricter thresholds filter more.
func NewWebRTCDetector(threshold float64) (Detector, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	mode := 1
	switch {
	case threshold >= 0.05:
		mode = 3
	case threshold >= 0.02:
		mode = 2
	}
	if err := v.SetMode(mode); err != nil {
		return nil, err
	}
	return &webrtcDetector{
		vad: v,
		buf: make([]byte, WindowSamples*2),
	}, nil
}

func (d *webrtcDetector) Classify(window []int16) (bool, error) {
	for i, s := range window {
		binary.LittleEndian.PutUint16(d.buf[i*2:], uint16(s))
	}
	return d.vad.Process(SampleRate, d.buf)
}

func (d *webrtcDetector) Reset() {}

// EnergyDetector is the fallback when the webrtc classifier cannot be built.
// A window counts as speech when its RMS clears the threshold.
type EnergyDetector struct {
	Threshold float64 // 0..1, against normalized RMS
}

func (d *EnergyDetector) Classify(window []int16) (bool, error) {
	return RMS(window) >= d.Threshold, nil
}

func (d *EnergyDetector) Reset() {}
