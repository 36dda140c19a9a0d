package output

import "sync"

// FakeClipboard holds clipboard content in memory and records every write.
type FakeClipboard struct {
	mu       sync.Mutex
	content  string
	writes   []string
	ReadErr  error
	WriteErr error
}

func NewFakeClipboard(content string) *FakeClipboard {
	return &FakeClipboard{content: content}
}

func (c *FakeClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return "", c.ReadErr
	}
	return c.content, nil
}

func (c *FakeClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.content = text
	c.writes = append(c.writes, text)
	return nil
}

func (c *FakeClipboard) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

func (c *FakeClipboard) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

// FakeTyper records typed fragments.
type FakeTyper struct {
	mu        sync.Mutex
	fragments []string
	ReadyErr  error
	TypeErr   error
}

func NewFakeTyper() *FakeTyper {
	return &FakeTyper{}
}

func (t *FakeTyper) Ready() error {
	return t.ReadyErr
}

func (t *FakeTyper) Type(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.TypeErr != nil {
		return t.TypeErr
	}
	t.fragments = append(t.fragments, text)
	return nil
}

func (t *FakeTyper) Fragments() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.fragments...)
}
