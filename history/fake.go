package history

import (
	"context"
	"sync"
)

// FakeStore keeps records in memory.
type FakeStore struct {
	Err error

	mu      sync.Mutex
	records []Record
}

func NewFake() *FakeStore {
	return &FakeStore{}
}

func (s *FakeStore) Append(_ context.Context, rec Record) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *FakeStore) List(context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...), s.Err
}
