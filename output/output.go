// Package output delivers streamed text at the cursor without permanently
// disturbing the user's clipboard.
package output

import "errors"

// ErrOutputPermission means keystroke injection is unavailable, usually
// because the OS has not granted input permissions.
var ErrOutputPermission = errors.New("keystroke injection unavailable")

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Typer injects text as simulated keystrokes at the cursor.
type Typer interface {
	Ready() error
	Type(text string) error
}

// Writer is the scoped output path for one session: Begin saves the
// clipboard, Write types fragments, Finalize restores the clipboard on
// every exit path.
type Writer interface {
	Begin() error
	Write(fragment string) error
	Finalize(ok bool)
}
