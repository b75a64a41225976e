// Package buffer accumulates streamed text for one generation turn.
package buffer

import (
	"strings"
	"unicode/utf8"
)

// utf16Len returns the length of text measured in UTF-16 code units.
func utf16Len(text string) int {
	count := 0
	for _, r := range text {
		if r > 0xFFFF {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// Accumulator is the growing buffer of one streaming turn. Chunks are
// appended in arrival order and never retracted. A chunk ending inside a
// multi-byte UTF-8 sequence keeps that tail pending until the next chunk
// completes it, so every snapshot is valid UTF-8 when the source is.
//
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	text        strings.Builder
	pending     []byte
	version     int
	utf16Offset int
}

// New creates an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Append adds chunk to the buffer and returns the text committed by this
// call. The version advances only when committed text grows.
func (a *Accumulator) Append(chunk string) string {
	if chunk == "" {
		return ""
	}
	var data string
	if len(a.pending) > 0 {
		data = string(a.pending) + chunk
		a.pending = a.pending[:0]
	} else {
		data = chunk
	}

	cut := incompleteTail(data)
	if cut < len(data) {
		a.pending = append(a.pending, data[cut:]...)
	}
	return a.commit(data[:cut])
}

func (a *Accumulator) commit(text string) string {
	if text == "" {
		return ""
	}
	a.text.WriteString(text)
	a.utf16Offset += utf16Len(text)
	a.version++
	return text
}

// incompleteTail returns the offset of a trailing partial UTF-8 sequence in
// s, or len(s) if s ends on a rune boundary. Invalid bytes are not held.
func incompleteTail(s string) int {
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax+1; i-- {
		if utf8.RuneStart(s[i]) {
			if !utf8.FullRuneInString(s[i:]) {
				return i
			}
			return len(s)
		}
	}
	return len(s)
}

// Flush commits any pending partial sequence as is. Call it when the stream
// ends.
func (a *Accumulator) Flush() string {
	if len(a.pending) == 0 {
		return ""
	}
	tail := string(a.pending)
	a.pending = a.pending[:0]
	return a.commit(tail)
}

// String returns the committed text. Earlier snapshots stay valid after
// further appends.
func (a *Accumulator) String() string {
	return a.text.String()
}

// Len returns the committed length in bytes.
func (a *Accumulator) Len() int {
	return a.text.Len()
}

// UTF16Offset returns the committed length in UTF-16 code units.
func (a *Accumulator) UTF16Offset() int {
	return a.utf16Offset
}

// Pending returns the number of bytes held back awaiting completion.
func (a *Accumulator) Pending() int {
	return len(a.pending)
}

// Version counts the appends that grew the committed text.
func (a *Accumulator) Version() int {
	return a.version
}

// Reset clears the buffer for a new turn.
func (a *Accumulator) Reset() {
	a.text.Reset()
	a.pending = a.pending[:0]
	a.version = 0
	a.utf16Offset = 0
}
