//go:build !linux

package output

import (
	"sync"

	"github.com/micmonay/keybd_event"
)

// kbTyper drives keybd_event, which wraps the native synthetic-keystroke
// APIs on macOS and Windows.
type kbTyper struct {
	once sync.Once
	kb   keybd_event.KeyBonding
	err  error
}

// NewTyper returns the platform keystroke backend.
func NewTyper() Typer {
	return &kbTyper{}
}

func (t *kbTyper) init() error {
	t.once.Do(func() {
		t.kb, t.err = keybd_event.NewKeyBonding()
	})
	return t.err
}

func (t *kbTyper) Ready() error {
	return t.init()
}

func (t *kbTyper) Type(text string) error {
	if err := t.init(); err != nil {
		return err
	}
	for i := 0; i < len(text); i++ {
		code, shift, ok := charToVK(text[i])
		if !ok {
			continue // skip characters with no key mapping
		}
		t.kb.Clear()
		t.kb.SetKeys(code)
		t.kb.HasSHIFT(shift)
		if err := t.kb.Launching(); err != nil {
			return err
		}
	}
	return nil
}

var vkLetters = [26]int{
	keybd_event.VK_A, keybd_event.VK_B, keybd_event.VK_C, keybd_event.VK_D,
	keybd_event.VK_E, keybd_event.VK_F, keybd_event.VK_G, keybd_event.VK_H,
	keybd_event.VK_I, keybd_event.VK_J, keybd_event.VK_K, keybd_event.VK_L,
	keybd_event.VK_M, keybd_event.VK_N, keybd_event.VK_O, keybd_event.VK_P,
	keybd_event.VK_Q, keybd_event.VK_R, keybd_event.VK_S, keybd_event.VK_T,
	keybd_event.VK_U, keybd_event.VK_V, keybd_event.VK_W, keybd_event.VK_X,
	keybd_event.VK_Y, keybd_event.VK_Z,
}

var vkDigits = [10]int{
	keybd_event.VK_0, keybd_event.VK_1, keybd_event.VK_2, keybd_event.VK_3,
	keybd_event.VK_4, keybd_event.VK_5, keybd_event.VK_6, keybd_event.VK_7,
	keybd_event.VK_8, keybd_event.VK_9,
}

func charToVK(c byte) (code int, shift bool, ok bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return vkLetters[c-'a'], false, true
	case c >= 'A' && c <= 'Z':
		return vkLetters[c-'A'], true, true
	case c >= '0' && c <= '9':
		return vkDigits[c-'0'], false, true
	case c == ' ':
		return keybd_event.VK_SPACE, false, true
	case c == '\n':
		return keybd_event.VK_ENTER, false, true
	case c == '\t':
		return keybd_event.VK_TAB, false, true
	}
	type km struct {
		code  int
		shift bool
	}
	m := map[byte]km{
		'.': {keybd_event.VK_DOT, false}, ',': {keybd_event.VK_COMMA, false},
		'/': {keybd_event.VK_SLASH, false}, ';': {keybd_event.VK_SEMICOLON, false},
		'\'': {keybd_event.VK_APOSTROPHE, false}, '[': {keybd_event.VK_LEFTBRACE, false},
		']': {keybd_event.VK_RIGHTBRACE, false}, '-': {keybd_event.VK_MINUS, false},
		'=': {keybd_event.VK_EQUAL, false}, '\\': {keybd_event.VK_BACKSLASH, false},
		'`': {keybd_event.VK_GRAVE, false},
		'!': {keybd_event.VK_1, true}, '@': {keybd_event.VK_2, true},
		'#': {keybd_event.VK_3, true}, '$': {keybd_event.VK_4, true},
		'%': {keybd_event.VK_5, true}, '^': {keybd_event.VK_6, true},
		'&': {keybd_event.VK_7, true}, '*': {keybd_event.VK_8, true},
		'(': {keybd_event.VK_9, true}, ')': {keybd_event.VK_0, true},
		'_': {keybd_event.VK_MINUS, true}, '+': {keybd_event.VK_EQUAL, true},
		'{': {keybd_event.VK_LEFTBRACE, true}, '}': {keybd_event.VK_RIGHTBRACE, true},
		'|': {keybd_event.VK_BACKSLASH, true}, ':': {keybd_event.VK_SEMICOLON, true},
		'"': {keybd_event.VK_APOSTROPHE, true}, '<': {keybd_event.VK_COMMA, true},
		'>': {keybd_event.VK_DOT, true}, '?': {keybd_event.VK_SLASH, true},
		'~': {keybd_event.VK_GRAVE, true},
	}
	if k, ok := m[c]; ok {
		return k.code, k.shift, true
	}
	return 0, false, false
}
