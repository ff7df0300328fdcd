// Package lang holds small string, data and URL helpers used alongside the
// event binder.
package lang

import (
	"strings"

	"github.com/google/uuid"
)

// UUID returns a random identifier. With n == 0 it returns an RFC 4122
// version 4 UUID in its canonical 36 character form; otherwise it returns n
// random lowercase hex characters.
func UUID(n int) string {
	if n <= 0 {
		return uuid.NewString()
	}

	var b strings.Builder
	b.Grow(n + 32)
	for b.Len() < n {
		id := uuid.New()
		b.WriteString(strings.ReplaceAll(id.String(), "-", ""))
	}
	return b.String()[:n]
}

// ByteLength returns the display width of s where every rune above U+00FF
// counts as two bytes and every other rune as one.
//
// Width is counted per rune, so a rune outside the Basic Multilingual Plane
// (an emoji, say) counts as two. Counters working on UTF-16 code units see a
// surrogate pair there and count it as four.
func ByteLength(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xff {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func singleByte(r rune) bool {
	return (r >= 0x0001 && r <= 0x007e) || (r >= 0xff60 && r <= 0xff9f)
}

// TrimRight truncates s to at most limit bytes of display width.
// ASCII printable runes and half-width katakana count as one byte, every
// other rune as two, including runes outside the Basic Multilingual Plane.
// A rune that would cross the limit is dropped entirely.
func TrimRight(s string, limit int) string {
	if ByteLength(s) <= limit {
		return s
	}

	l := 0
	for i, r := range s {
		if singleByte(r) {
			l++
		} else {
			l += 2
		}
		if l > limit {
			return s[:i]
		}
	}
	return s
}
