package audio

import (
	"testing"
)

func frame(fill int16) []int16 {
	s := make([]int16, FrameSamples)
	for i := range s {
		s[i] = fill
	}
	return s
}

func TestNewRingRoundsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{25, 32},
		{32, 32},
		{33, 64},
		{100, 128},
	}
	for _, tt := range tests {
		r, err := NewRing(tt.in)
		if err != nil {
			t.Fatalf("NewRing(%d): %v", tt.in, err)
		}
		if got := r.Capacity(); got != tt.want {
			t.Errorf("NewRing(%d).Capacity() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewRingRejectsTinyCapacity(t *testing.T) {
	if _, err := NewRing(10); err == nil {
		t.Fatal("expected error for capacity below 500ms of audio")
	}
}

func TestPushDrainRoundTrip(t *testing.T) {
	r, err := NewRing(32)
	if err != nil {
		t.Fatal(err)
	}
	for i := int16(1); i <= 3; i++ {
		if !r.Push(frame(i)) {
			t.Fatalf("push %d failed on empty ring", i)
		}
	}
	if got := r.Available(); got != 3 {
		t.Fatalf("Available() = %d, want 3", got)
	}
	frames := r.Drain()
	if len(frames) != 3 {
		t.Fatalf("Drain() returned %d frames, want 3", len(frames))
	}
	for i, f := range frames {
		if f.Seq != uint64(i) {
			t.Errorf("frame %d has Seq %d", i, f.Seq)
		}
		if f.Samples[0] != int16(i+1) {
			t.Errorf("frame %d starts with %d, want %d", i, f.Samples[0], i+1)
		}
	}
	if r.Drain() != nil {
		t.Error("second Drain() should return nil")
	}
}

func TestPushNeverBlocksWhenFull(t *testing.T) {
	r, err := NewRing(32)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < r.Capacity(); i++ {
		if !r.Push(frame(1)) {
			t.Fatalf("push %d failed before ring was full", i)
		}
	}
	for i := 0; i < 5; i++ {
		if r.Push(frame(2)) {
			t.Fatal("push succeeded on full ring")
		}
	}
	if got := r.Overflows(); got != 5 {
		t.Fatalf("Overflows() = %d, want 5", got)
	}
	// buffered frames survive; dropped ones never appear
	frames := r.Drain()
	if len(frames) != r.Capacity() {
		t.Fatalf("Drain() returned %d frames, want %d", len(frames), r.Capacity())
	}
	for _, f := range frames {
		if f.Samples[0] != 1 {
			t.Fatal("drained a frame that should have been dropped")
		}
	}
}

func TestOverflowLeavesSeqGap(t *testing.T) {
	r, err := NewRing(32)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < r.Capacity(); i++ {
		r.Push(frame(1))
	}
	r.Push(frame(2)) // dropped, consumes seq
	r.Drain()
	if !r.Push(frame(3)) {
		t.Fatal("push failed after drain")
	}
	frames := r.Drain()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Seq != uint64(r.Capacity())+1 {
		t.Errorf("Seq = %d, want %d (gap for the dropped frame)", frames[0].Seq, r.Capacity()+1)
	}
}

func TestClear(t *testing.T) {
	r, err := NewRing(32)
	if err != nil {
		t.Fatal(err)
	}
	r.Push(frame(1))
	r.Push(frame(2))
	r.Clear()
	if got := r.Available(); got != 0 {
		t.Fatalf("Available() after Clear() = %d", got)
	}
	if !r.Push(frame(3)) {
		t.Fatal("push failed after Clear()")
	}
}

func TestShortPushZeroPads(t *testing.T) {
	r, err := NewRing(32)
	if err != nil {
		t.Fatal(err)
	}
	r.Push([]int16{7, 7})
	frames := r.Drain()
	if len(frames) != 1 {
		t.Fatal("expected one frame")
	}
	if frames[0].Samples[0] != 7 || frames[0].Samples[1] != 7 {
		t.Error("short push lost its samples")
	}
	for i := 2; i < FrameSamples; i++ {
		if frames[0].Samples[i] != 0 {
			t.Fatalf("sample %d not zero-padded", i)
		}
	}
}

// One producer, one concurrent consumer. Every frame that makes it through
// must arrive in push order with its payload intact.
func TestConcurrentSPSCOrdering(t *testing.T) {
	r, err := NewRing(64)
	if err != nil {
		t.Fatal(err)
	}
	const total = 10000

	pushed := make(map[uint64]int16, total)
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		buf := make([]int16, FrameSamples)
		var seq uint64
		for i := 0; i < total; i++ {
			val := int16(i % 32767)
			for j := range buf {
				buf[j] = val
			}
			if r.Push(buf) {
				pushed[seq] = val
			}
			seq++
		}
	}()

	var got []Frame
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for {
			got = append(got, r.Drain()...)
			select {
			case <-producerDone:
				got = append(got, r.Drain()...)
				return
			default:
			}
		}
	}()
	<-consumerDone

	var prev uint64
	first := true
	for _, f := range got {
		if !first && f.Seq <= prev {
			t.Fatalf("sequence went backwards: %d after %d", f.Seq, prev)
		}
		prev = f.Seq
		first = false
		want, ok := pushed[f.Seq]
		if !ok {
			t.Fatalf("drained seq %d that was never pushed", f.Seq)
		}
		for j, s := range f.Samples {
			if s != want {
				t.Fatalf("seq %d sample %d = %d, want %d", f.Seq, j, s, want)
			}
		}
	}
}
