package audio

import (
	"fmt"
	"sync/atomic"
)

// FrameSamples is the fixed frame size moved through the ring: 20ms of mono
// audio at 16kHz. Matches the VAD window so trimming never re-chops.
const FrameSamples = 320

// Frame is one fixed-size chunk of captured audio. Seq increases by one per
// pushed frame, including frames that were dropped on overflow, so gaps are
// detectable downstream.
type Frame struct {
	Seq     uint64
	Samples []int16
}

// Ring is a single-producer single-consumer lock-free queue of audio frames.
// The producer is the hardware callback and must never block or allocate;
// the consumer drains on its own schedule. When the ring is full, Push drops
// the newest frame and counts it: audio already buffered is worth more than
// the frame that just arrived.
type Ring struct {
	slots [][]int16
	seqs  []uint64
	mask  uint64

	// free-running counters; write-read is the fill level
	write     atomic.Uint64
	read      atomic.Uint64
	overflows atomic.Uint64
	seq       uint64 // producer-only
}

// NewRing creates a ring holding capacity frames, rounded up to a power of
// two. Capacity must cover at least 500ms of audio (25 frames at 20ms).
func NewRing(capacity int) (*Ring, error) {
	const minFrames = 25
	if capacity < minFrames {
		return nil, fmt.Errorf("ring capacity %d below minimum %d frames", capacity, minFrames)
	}
	n := 1
	for n < capacity {
		n <<= 1
	}
	r := &Ring{
		slots: make([][]int16, n),
		seqs:  make([]uint64, n),
		mask:  uint64(n - 1),
	}
	for i := range r.slots {
		r.slots[i] = make([]int16, FrameSamples)
	}
	return r, nil
}

// Capacity returns the number of frames the ring can hold.
func (r *Ring) Capacity() int { return len(r.slots) }

// Push copies samples into the next free slot. Producer side only.
// Returns false when the ring is full; the frame is dropped and counted.
// Samples beyond FrameSamples are ignored; shorter input is zero-padded.
func (r *Ring) Push(samples []int16) bool {
	w := r.write.Load()
	rd := r.read.Load() // acquire: slot at w is free once consumer passed it
	seq := r.seq
	r.seq++
	if w-rd >= uint64(len(r.slots)) {
		r.overflows.Add(1)
		return false
	}
	slot := r.slots[w&r.mask]
	n := copy(slot, samples)
	for i := n; i < FrameSamples; i++ {
		slot[i] = 0
	}
	r.seqs[w&r.mask] = seq
	r.write.Store(w + 1) // release: publishes the slot contents
	return true
}

// Available returns the number of frames ready to drain.
func (r *Ring) Available() int {
	return int(r.write.Load() - r.read.Load())
}

// Drain pops every available frame. Consumer side only. The returned frames
// own their sample slices; ring slots are immediately reusable.
func (r *Ring) Drain() []Frame {
	rd := r.read.Load()
	w := r.write.Load() // acquire: contents up to w are published
	if w == rd {
		return nil
	}
	out := make([]Frame, 0, w-rd)
	for ; rd < w; rd++ {
		src := r.slots[rd&r.mask]
		samples := make([]int16, FrameSamples)
		copy(samples, src)
		out = append(out, Frame{Seq: r.seqs[rd&r.mask], Samples: samples})
	}
	r.read.Store(rd) // release: frees the slots for the producer
	return out
}

// Clear discards all buffered frames. Consumer side only.
func (r *Ring) Clear() {
	r.read.Store(r.write.Load())
}

// Overflows returns the total number of frames dropped since construction.
func (r *Ring) Overflows() uint64 {
	return r.overflows.Load()
}
