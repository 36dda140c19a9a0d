package audio

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Capture bridges a hardware capture device into a Ring. The device callback
// chops incoming S16LE bytes into fixed 20ms frames without allocating;
// partial frames carry over to the next callback.
type Capture struct {
	ctx  Context
	ring *Ring

	mu      sync.Mutex
	dev     CaptureDevice
	running bool

	carry    []int16 // producer-side only, touched from the device callback
	carryLen int
}

func NewCapture(ctx Context, ring *Ring) *Capture {
	return &Capture{
		ctx:   ctx,
		ring:  ring,
		carry: make([]int16, FrameSamples),
	}
}

// Start opens the device and begins feeding the ring. A nil device picks the
// platform default. Push failures are silent here; the orchestrator reads the
// ring's overflow counter when the session ends.
func (c *Capture) Start(device *DeviceInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("capture already running")
	}

	dev, err := c.ctx.NewCapture(device, CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		return fmt.Errorf("open capture device: %w", err)
	}

	c.carryLen = 0
	dev.SetCallback(c.onData)
	if err := dev.Start(); err != nil {
		dev.Close()
		return fmt.Errorf("start capture stream: %w", err)
	}
	c.dev = dev
	c.running = true
	return nil
}

// Stop halts capture and flushes any partial frame held in the carry buffer
// so the tail of the utterance is not lost. Idempotent; whatever is in the
// ring stays there for the consumer to drain.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.dev.ClearCallback()
	c.dev.Stop()
	c.dev.Close()
	c.dev = nil
	c.running = false
	if c.carryLen > 0 {
		c.ring.Push(c.carry[:c.carryLen])
		c.carryLen = 0
	}
}

func (c *Capture) onData(data []byte, frameCount uint32) {
	// byte pairs only; a trailing odd byte is dropped
	for i := 0; i+1 < len(data); i += 2 {
		c.carry[c.carryLen] = int16(binary.LittleEndian.Uint16(data[i:]))
		c.carryLen++
		if c.carryLen == FrameSamples {
			c.ring.Push(c.carry)
			c.carryLen = 0
		}
	}
}
