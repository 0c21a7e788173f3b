package ui

import (
	"strings"
	"unicode"
)

// TextField is a single-line input. While focused it owns the keyboard
// and pointer, which the editor router checks through HasFocus.
type TextField struct {
	Rect    Rect
	Max     int
	text    []rune
	focused bool
}

func NewTextField(r Rect, max int, text string) *TextField {
	f := &TextField{Rect: r, Max: max}
	f.SetText(text)
	return f
}

func (f *TextField) HasFocus() bool { return f.focused }
func (f *TextField) Text() string   { return string(f.text) }

func (f *TextField) SetText(s string) {
	f.text = f.text[:0]
	for _, r := range s {
		f.Type(r)
	}
}

// Click focuses the field when (x, y) is inside it and blurs it otherwise.
// It reports whether the click landed on the field.
func (f *TextField) Click(x, y float64) bool {
	f.focused = f.Rect.Contains(x, y)
	return f.focused
}

// Type appends a printable rune; anything else, or overflow, is dropped.
func (f *TextField) Type(r rune) {
	if !unicode.IsPrint(r) || (f.Max > 0 && len(f.text) >= f.Max) {
		return
	}
	f.text = append(f.text, r)
}

func (f *TextField) Backspace() {
	if n := len(f.text); n > 0 {
		f.text = f.text[:n-1]
	}
}

// Submit blurs the field and returns its trimmed text.
func (f *TextField) Submit() string {
	f.focused = false
	return strings.TrimSpace(f.Text())
}

// Cancel blurs the field and restores text.
func (f *TextField) Cancel(text string) {
	f.focused = false
	f.SetText(text)
}
