package ui

import (
	"errors"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits and, when bounds are
// set, validates the value against an inclusive range.
type NumericalEntry struct {
	widget.Entry

	Min, Max int
	bounded  bool

	// Messages shown by the validator. Set by the caller for localization.
	NotANumberMsg string
	OutOfRangeMsg string
}

// NewNumericalEntry creates an unbounded numerical entry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// NewRangeEntry creates a numerical entry that validates min <= value <= max.
// When optional is true an empty entry is valid.
func NewRangeEntry(minVal, maxVal int, optional bool) *NumericalEntry {
	entry := &NumericalEntry{Min: minVal, Max: maxVal, bounded: true}
	entry.ExtendBaseWidget(entry)
	entry.Validator = entry.validate(optional)
	return entry
}

func (e *NumericalEntry) validate(optional bool) fyne.StringValidator {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return errors.New(e.NotANumberMsg)
		}
		if e.bounded && (v < e.Min || v > e.Max) {
			return errors.New(e.OutOfRangeMsg)
		}
		return nil
	}
}

// Value parses the text. The second result is false when the entry is empty
// or does not hold a number.
func (e *NumericalEntry) Value() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(e.Text))
	return v, err == nil
}

// TypedRune drops everything but 0-9.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// TypedShortcut filters pasted text down to its digits.
func (e *NumericalEntry) TypedShortcut(s fyne.Shortcut) {
	paste, ok := s.(*fyne.ShortcutPaste)
	if !ok || paste.Clipboard == nil {
		e.Entry.TypedShortcut(s)
		return
	}
	for _, r := range paste.Clipboard.Content() {
		e.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
