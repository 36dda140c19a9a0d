// Package history keeps an encrypted, append-only record of past dictation
// sessions. Appends are fire-and-forget from the pipeline's point of view.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one completed dictation.
type Record struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Transcript string    `json:"transcript"`
	Enhanced   string    `json:"enhanced"`
	Mode       string    `json:"mode"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewRecord stamps a record with a fresh id and timestamp.
func NewRecord(sessionID, transcript, enhanced, mode string, duration time.Duration) Record {
	return Record{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Transcript: transcript,
		Enhanced:   enhanced,
		Mode:       mode,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

type Store interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
}
