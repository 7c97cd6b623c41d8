// Package scanner provides UTF-8 safe character access over a byte buffer:
// a single forward scan with O(1) advance, bounded lookahead windows, and a
// rune-offset counter kept incrementally so reported positions never require
// re-walking the buffer from the start on every access.
package scanner

import "unicode/utf8"

// Scanner walks a string byte-by-byte while tracking the rune (character)
// offset separately, since RepairAction.position is a character offset but
// internal processing is cheaper over bytes.
type Scanner struct {
	buf      []byte
	bytePos  int
	charPos  int
}

// New creates a Scanner positioned at the start of s.
func New(s string) *Scanner {
	return &Scanner{buf: []byte(s)}
}

// Len returns the total byte length of the underlying buffer.
func (s *Scanner) Len() int { return len(s.buf) }

// BytePos returns the current byte offset.
func (s *Scanner) BytePos() int { return s.bytePos }

// CharPos returns the current character (rune) offset — what gets reported
// in a RepairAction.Position.
func (s *Scanner) CharPos() int { return s.charPos }

// Eof reports whether the scanner has consumed the whole buffer.
func (s *Scanner) Eof() bool { return s.bytePos >= len(s.buf) }

// Byte returns the byte at the current position and true, or 0 and false at EOF.
func (s *Scanner) Byte() (byte, bool) {
	if s.Eof() {
		return 0, false
	}
	return s.buf[s.bytePos], true
}

// PeekByteAt returns the byte `offset` bytes ahead of the current position
// (bounded lookahead), or 0 and false if that is past EOF.
func (s *Scanner) PeekByteAt(offset int) (byte, bool) {
	p := s.bytePos + offset
	if p < 0 || p >= len(s.buf) {
		return 0, false
	}
	return s.buf[p], true
}

// Rune decodes the rune at the current position without advancing.
func (s *Scanner) Rune() (rune, int) {
	if s.Eof() {
		return 0, 0
	}
	r, size := utf8.DecodeRune(s.buf[s.bytePos:])
	return r, size
}

// Advance consumes one byte and returns it. Callers that need rune-aware
// advancing should use AdvanceRune instead.
func (s *Scanner) Advance() byte {
	b := s.buf[s.bytePos]
	s.bytePos++
	// A continuation byte (10xxxxxx) does not start a new rune, so the
	// character counter only increments on lead bytes.
	if b&0xC0 != 0x80 {
		s.charPos++
	}
	return b
}

// AdvanceRune consumes one full rune and returns it with its byte width.
func (s *Scanner) AdvanceRune() (rune, int) {
	r, size := s.Rune()
	if size == 0 {
		return 0, 0
	}
	s.bytePos += size
	s.charPos++
	return r, size
}

// SkipWhitespace advances past ASCII whitespace (space, tab, CR, LF).
func (s *Scanner) SkipWhitespace() {
	for {
		b, ok := s.Byte()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			s.Advance()
		default:
			return
		}
	}
}

// Window returns up to n bytes starting at the current position, for
// bounded-lookahead pattern checks.
func (s *Scanner) Window(n int) string {
	end := s.bytePos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	return string(s.buf[s.bytePos:end])
}

// Remainder returns everything from the current position to the end.
func (s *Scanner) Remainder() string {
	return string(s.buf[s.bytePos:])
}

// Seek moves the scanner to an absolute byte offset, recomputing the
// character counter for everything before it. No layer calls it; the
// layers scan forward only, where charPos is free.
func (s *Scanner) Seek(bytePos int) {
	if bytePos < 0 {
		bytePos = 0
	}
	if bytePos > len(s.buf) {
		bytePos = len(s.buf)
	}
	chars := 0
	for i := 0; i < bytePos; {
		_, size := utf8.DecodeRune(s.buf[i:])
		if size == 0 {
			size = 1
		}
		i += size
		chars++
	}
	s.bytePos = bytePos
	s.charPos = chars
}

// IsIdentChar reports whether b can appear in a bare identifier (unquoted
// key, Python-literal token, etc.) per the grammar rules layers rely on.
func IsIdentChar(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// IsDigit reports whether b is an ASCII digit.
func IsDigit(b byte) bool { return b >= '0' && b <= '9' }
