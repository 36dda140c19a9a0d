package output

import (
	"errors"
	"testing"
)

func newTestWriter() (*StreamWriter, *FakeClipboard, *FakeTyper) {
	clip := NewFakeClipboard("precious clipboard data")
	typer := NewFakeTyper()
	return NewStreamWriter(clip, typer, 0), clip, typer
}

func TestWriterTypesFragmentsAndRestores(t *testing.T) {
	w, clip, typer := newTestWriter()
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := w.Write("Hello, "); err != nil {
		t.Fatal(err)
	}
	if err := w.Write("world."); err != nil {
		t.Fatal(err)
	}
	w.Finalize(true)

	got := typer.Fragments()
	if len(got) != 2 || got[0] != "Hello, " || got[1] != "world." {
		t.Fatalf("typed fragments = %q", got)
	}
	if clip.Content() != "precious clipboard data" {
		t.Fatalf("clipboard after finalize = %q", clip.Content())
	}
}

func TestWriterRestoresOnFailure(t *testing.T) {
	w, clip, _ := newTestWriter()
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	w.Finalize(false)
	if clip.Content() != "precious clipboard data" {
		t.Fatalf("clipboard after failed session = %q", clip.Content())
	}
}

func TestWriterFinalizeIdempotent(t *testing.T) {
	w, clip, _ := newTestWriter()
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	w.Finalize(true)
	w.Finalize(true)
	w.Finalize(false)
	if n := len(clip.Writes()); n != 1 {
		t.Fatalf("clipboard written %d times, want 1", n)
	}
}

func TestWriterFinalizeWithoutBegin(t *testing.T) {
	w, clip, _ := newTestWriter()
	w.Finalize(true)
	if n := len(clip.Writes()); n != 0 {
		t.Fatalf("clipboard written %d times without begin", n)
	}
}

func TestWriterBeginTwice(t *testing.T) {
	w, _, _ := newTestWriter()
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := w.Begin(); err == nil {
		t.Fatal("second Begin before Finalize should fail")
	}
	w.Finalize(true)
	if err := w.Begin(); err != nil {
		t.Fatalf("Begin after Finalize: %v", err)
	}
	w.Finalize(true)
}

func TestWriterPermissionError(t *testing.T) {
	clip := NewFakeClipboard("x")
	typer := NewFakeTyper()
	typer.ReadyErr = errors.New("no uinput access")
	w := NewStreamWriter(clip, typer, 0)
	err := w.Begin()
	if !errors.Is(err, ErrOutputPermission) {
		t.Fatalf("err = %v, want ErrOutputPermission", err)
	}
	if n := len(clip.Writes()); n != 0 {
		t.Fatal("failed Begin must not touch the clipboard")
	}
}

func TestWriterTypeFailureIsPermissionError(t *testing.T) {
	w, _, typer := newTestWriter()
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	typer.TypeErr = errors.New("device gone")
	err := w.Write("text")
	if !errors.Is(err, ErrOutputPermission) {
		t.Fatalf("err = %v, want ErrOutputPermission", err)
	}
	w.Finalize(false)
}

func TestWriterWriteBeforeBegin(t *testing.T) {
	w, _, _ := newTestWriter()
	if err := w.Write("text"); err == nil {
		t.Fatal("Write before Begin should fail")
	}
}

func TestWriterUnreadableClipboardRestoresEmpty(t *testing.T) {
	clip := NewFakeClipboard("binary stuff")
	clip.ReadErr = errors.New("unsupported content")
	typer := NewFakeTyper()
	w := NewStreamWriter(clip, typer, 0)
	if err := w.Begin(); err != nil {
		t.Fatal(err)
	}
	clip.ReadErr = nil
	w.Finalize(true)
	if clip.Content() != "" {
		t.Fatalf("clipboard = %q, want empty restore", clip.Content())
	}
}
