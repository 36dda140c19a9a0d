package output

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"murmur/log"
)

// StreamWriter owns the clipboard for the duration of one session. Begin
// checks the typer and snapshots the clipboard; Write types fragments as
// keystrokes (never clipboard paste, which would clobber the snapshot
// mid-stream); Finalize puts the snapshot back after a short delay and is a
// no-op when called again before the next Begin.
type StreamWriter struct {
	clip         Clipboard
	typer        Typer
	restoreDelay time.Duration

	mu    sync.Mutex
	began bool
	saved string
}

func NewStreamWriter(clip Clipboard, typer Typer, restoreDelay time.Duration) *StreamWriter {
	return &StreamWriter{clip: clip, typer: typer, restoreDelay: restoreDelay}
}

func (w *StreamWriter) Begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.began {
		return errors.New("output already in progress")
	}
	if err := w.typer.Ready(); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputPermission, err)
	}
	saved, err := w.clip.Read()
	if err != nil {
		// unreadable clipboard (empty, or non-text content) restores to empty
		log.Warnf("clipboard unreadable, will restore empty: %v", err)
		saved = ""
	}
	w.saved = saved
	w.began = true
	return nil
}

func (w *StreamWriter) Write(fragment string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.began {
		return errors.New("write before begin")
	}
	if fragment == "" {
		return nil
	}
	if err := w.typer.Type(fragment); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputPermission, err)
	}
	return nil
}

func (w *StreamWriter) Finalize(ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.began {
		return
	}
	w.began = false
	// let the focused app settle before touching the clipboard again
	time.Sleep(w.restoreDelay)
	if err := w.clip.Write(w.saved); err != nil {
		log.Errorf("clipboard restore failed: %v", err)
	}
	if !ok {
		log.Info("output finalized after aborted session, clipboard restored")
	}
	w.saved = ""
}
