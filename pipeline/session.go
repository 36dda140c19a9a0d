package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// session is one hotkey-hold cycle from the moment processing starts. done
// closes only after the output writer has finalized, which is what barge-in
// waits on before opening the next recording.
type session struct {
	id      string
	mode    string
	started time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func newSession(parent context.Context, mode string) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{
		id:      uuid.NewString(),
		mode:    mode,
		started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

func (s *session) cancelled() bool {
	return s.ctx.Err() != nil
}
