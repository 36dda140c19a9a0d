package output

import cb "github.com/atotto/clipboard"

// SystemClipboard is the real clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Read() (string, error) {
	return cb.ReadAll()
}

func (SystemClipboard) Write(text string) error {
	return cb.WriteAll(text)
}
