package audio

import (
	"encoding/binary"
	"sync"
	"time"
)

const fakeChunkSamples = 1024

// FakeContext hands out FakeCapture devices that replay an in-memory sample
// buffer through the data callback, then emit silence until stopped.
type FakeContext struct {
	samples []int16
	paced   bool

	FailDevices error // returned from Devices when set
	FailOpen    error // returned from NewCapture when set
	FailStart   error // returned from CaptureDevice.Start when set

	mu   sync.Mutex
	last *FakeCapture
}

func NewFakeContext(samples []int16, paced bool) *FakeContext {
	return &FakeContext{samples: samples, paced: paced}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	if f.FailDevices != nil {
		return nil, f.FailDevices
	}
	return []DeviceInfo{{ID: "fake0", Name: "fake microphone"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	if f.FailOpen != nil {
		return nil, f.FailOpen
	}
	c := &FakeCapture{
		samples:   f.samples,
		paced:     f.paced,
		failStart: f.FailStart,
		audioDone: make(chan struct{}),
	}
	f.mu.Lock()
	f.last = c
	f.mu.Unlock()
	return c, nil
}

// LastCapture returns the most recently opened device.
func (f *FakeContext) LastCapture() *FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type FakeCapture struct {
	samples   []int16
	paced     bool
	failStart error
	audioDone chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
	started  bool
}

// AudioDone closes once every buffered sample has been fed; only silence
// follows after that.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) loadCallback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos int) int {
	end := min(pos+fakeChunkSamples, len(f.samples))
	data := make([]byte, (end-pos)*2)
	for i, s := range f.samples[pos:end] {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	cb(data, uint32(end-pos))
	return end
}

func (f *FakeCapture) Start() error {
	if f.failStart != nil {
		return f.failStart
	}
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return nil
	}
	f.started = true
	f.mu.Unlock()

	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	interval := time.Duration(0)
	if f.paced {
		interval = time.Duration(fakeChunkSamples) * time.Second / 16000
	}

	go func() {
		defer close(f.feedDone)
		pos := 0
		silence := make([]byte, fakeChunkSamples*2)
		audioFinished := false

		for {
			select {
			case <-f.stopCh:
				return
			default:
			}

			cb := f.loadCallback()
			if cb == nil {
				time.Sleep(time.Millisecond)
				continue
			}

			if pos < len(f.samples) {
				pos = f.feedChunk(cb, pos)
			} else {
				if !audioFinished {
					audioFinished = true
					close(f.audioDone)
				}
				cb(silence, fakeChunkSamples)
			}

			select {
			case <-f.stopCh:
				return
			case <-time.After(interval + time.Millisecond):
			}
		}
	}()

	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	started := f.started
	f.mu.Unlock()
	if !started {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
}

func (f *FakeCapture) Close() {}
