package enhancer

import (
	"context"
	"sync"
)

// FakeEnhancer emits canned fragments in order. ErrAt injects a failure
// after that many fragments (-1 for never).
type FakeEnhancer struct {
	Fragments []string
	Err       error
	ErrAt     int

	mu    sync.Mutex
	calls int
}

func NewFake(fragments ...string) *FakeEnhancer {
	return &FakeEnhancer{Fragments: fragments, ErrAt: -1}
}

func (f *FakeEnhancer) Name() string { return "fake" }

func (f *FakeEnhancer) Enhance(ctx context.Context, transcript, mode string, emit func(string) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	for i, frag := range f.Fragments {
		if f.Err != nil && f.ErrAt >= 0 && i == f.ErrAt {
			return f.Err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(frag); err != nil {
			return err
		}
	}
	if f.Err != nil && (f.ErrAt < 0 || f.ErrAt >= len(f.Fragments)) {
		return f.Err
	}
	return nil
}

func (f *FakeEnhancer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
