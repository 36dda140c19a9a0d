package pipeline

// EventSink receives pipeline events for the UI layer. Implementations must
// return quickly; they are called from pipeline goroutines.
type EventSink interface {
	AudioLevel(level float64)
	SessionEmpty(id string)
	SessionComplete(id, text string)
	SessionFailed(id string, err error)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) AudioLevel(float64)            {}
func (NopSink) SessionEmpty(string)           {}
func (NopSink) SessionComplete(string, string) {}
func (NopSink) SessionFailed(string, error)   {}
