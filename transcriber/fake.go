package transcriber

import (
	"context"
	"sync"
)

// FakeTranscriber returns a canned result. Set Block to hold requests open
// until the channel is closed, for exercising cancellation mid-call.
type FakeTranscriber struct {
	Text  string
	Err   error
	Block chan struct{}

	mu       sync.Mutex
	calls    int
	requests []Request
	started  chan struct{}
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{Text: text, Err: err, started: make(chan struct{}, 16)}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Transcribe(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	block := f.Block
	f.mu.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.Text, f.Err
}

// Started receives one token per Transcribe call, as it begins.
func (f *FakeTranscriber) Started() <-chan struct{} { return f.started }

func (f *FakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeTranscriber) LastRequest() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return Request{}
	}
	return f.requests[len(f.requests)-1]
}
