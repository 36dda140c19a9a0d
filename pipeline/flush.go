package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"murmur/output"
)

// flusher coalesces enhancement fragments and flushes them to the output
// writer on a fixed cadence, so rapid token streams become a few larger
// typing operations. An interval of zero writes each fragment through
// immediately. Nothing is flushed once the session context is cancelled.
type flusher struct {
	ctx      context.Context
	out      output.Writer
	interval time.Duration

	mu      sync.Mutex
	pending strings.Builder
	all     strings.Builder
	err     error

	stop chan struct{}
	done chan struct{}
}

func newFlusher(ctx context.Context, out output.Writer, interval time.Duration) *flusher {
	f := &flusher{ctx: ctx, out: out, interval: interval}
	if interval > 0 {
		f.stop = make(chan struct{})
		f.done = make(chan struct{})
		go f.loop()
	}
	return f
}

// Add queues one fragment. Returns the first write error or the context
// error, which aborts the enhancement stream upstream.
func (f *flusher) Add(fragment string) error {
	if err := f.ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.all.WriteString(fragment)
	if f.interval <= 0 {
		if err := f.out.Write(fragment); err != nil {
			f.err = err
			return err
		}
		return nil
	}
	f.pending.WriteString(fragment)
	return nil
}

func (f *flusher) loop() {
	defer close(f.done)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			f.flush()
		}
	}
}

func (f *flusher) flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending.Len() == 0 || f.err != nil {
		return
	}
	if err := f.ctx.Err(); err != nil {
		f.err = err
		f.pending.Reset()
		return
	}
	if err := f.out.Write(f.pending.String()); err != nil {
		f.err = err
	}
	f.pending.Reset()
}

// Close flushes whatever is still pending and returns the first error seen.
func (f *flusher) Close() error {
	if f.stop != nil {
		close(f.stop)
		<-f.done
	}
	f.flush()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Text returns everything accepted so far, flushed or not.
func (f *flusher) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all.String()
}
