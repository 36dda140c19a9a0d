// Package transcriber turns an encoded utterance into text via a remote
// speech-to-text service.
package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"
)

const requestTimeout = 60 * time.Second

// Request carries one encoded utterance to the service.
type Request struct {
	Audio       []byte
	FileName    string
	ContentType string
	SampleRate  int
	Language    string // optional hint, empty for auto-detect
}

type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, req Request) (string, error)
}

// New picks a provider from the environment: OPENAI_API_KEY wins, then
// GROQ_API_KEY. model applies to the OpenAI provider; Groq pins its own.
func New(model string) (Transcriber, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAI(key, model), nil
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		return NewGroq(key), nil
	}
	return nil, fmt.Errorf("set OPENAI_API_KEY or GROQ_API_KEY environment variable")
}
