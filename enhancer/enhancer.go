// Package enhancer rewrites a raw transcript into polished text, streaming
// the result fragment by fragment.
package enhancer

import (
	"context"
	"fmt"
	"time"
)

const requestTimeout = 120 * time.Second

// Enhancer streams polished text for one transcript. emit is called once per
// fragment, in order; returning an error from emit aborts the stream.
type Enhancer interface {
	Name() string
	Enhance(ctx context.Context, transcript, mode string, emit func(fragment string) error) error
}

type Kind int

const (
	KindNetwork Kind = iota
	KindUnauthorized
	KindRateLimited
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate limited"
	case KindEmpty:
		return "empty response"
	default:
		return "network"
	}
}

type Error struct {
	Kind     Kind
	Provider string
	Status   int
	Msg      string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s enhancement failed (%s, HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s enhancement failed (%s): %s", e.Provider, e.Kind, e.Msg)
}

func kindForStatus(status int) Kind {
	switch status {
	case 401, 403:
		return KindUnauthorized
	case 429:
		return KindRateLimited
	default:
		return KindNetwork
	}
}
