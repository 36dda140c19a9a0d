package transcriber

import "fmt"

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
		return "no speech detected"
	default:
		return "network"
	}
}

// Error is the typed failure every provider maps onto. The pipeline decides
// what to tell the user from Kind alone.
type Error struct {
	Kind     Kind
	Provider string
	Status   int    // HTTP status, 0 for transport failures
	Msg      string // response body excerpt or transport detail
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s transcription failed (%s, HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s transcription failed (%s): %s", e.Provider, e.Kind, e.Msg)
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
