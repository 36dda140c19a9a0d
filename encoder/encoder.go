// Package encoder produces the upload body for transcription requests.
package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder turns a trimmed utterance into one upload-ready byte blob.
type Encoder interface {
	Encode(samples []int16) ([]byte, error)
	FileName() string
	ContentType() string
}

// New selects the upload encoding. WAV is the safe default; FLAC roughly
// halves upload size for the same lossless content.
func New(format string) (Encoder, error) {
	switch format {
	case "", "wav":
		return &WavEncoder{}, nil
	case "flac":
		return &FlacEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown upload encoding %q", format)
	}
}
