package jsonh

// charCursor is a peekable rune stream over a JSONH document, with a
// one-rune lookahead and a running count of runes consumed.
//
// Unlike the teacher's regexp-driven lexer (which slices whole tokens
// out of a byte buffer with MustCompile patterns), the tokenizer here
// needs to react one rune at a time to implement the braceless-object
// and quoteless-string disambiguation rules, so the cursor exposes
// read/peek primitives instead of a Find-based scan.
type charCursor struct {
	runes   []rune
	pos     int
	counter uint64
}

func newCharCursor(s string) *charCursor {
	return &charCursor{runes: []rune(s)}
}

// peek returns the next rune without consuming it.
func (c *charCursor) peek() (rune, bool) {
	if c.pos >= len(c.runes) {
		return 0, false
	}
	return c.runes[c.pos], true
}

// read consumes and returns the next rune, advancing the counter.
func (c *charCursor) read() (rune, bool) {
	r, ok := c.peek()
	if !ok {
		return 0, false
	}
	c.pos++
	c.counter++
	return r, true
}

// readOne consumes the next rune iff it equals want.
func (c *charCursor) readOne(want rune) bool {
	r, ok := c.peek()
	if !ok || r != want {
		return false
	}
	c.read()
	return true
}

// readAny consumes the next rune iff it is a member of options.
func (c *charCursor) readAny(options string) (rune, bool) {
	r, ok := c.peek()
	if !ok || !containsRune(options, r) {
		return 0, false
	}
	c.read()
	return r, true
}

// peekAt looks offset runes past the current position without
// consuming anything. offset 0 is equivalent to peek. This never
// re-reads a rune already returned by read; it only looks further
// into runes not yet consumed, so it doesn't violate the no-rereading
// invariant the cursor otherwise maintains.
func (c *charCursor) peekAt(offset int) (rune, bool) {
	i := c.pos + offset
	if i < 0 || i >= len(c.runes) {
		return 0, false
	}
	return c.runes[i], true
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

// Character classes, fixed per spec §4.1.

func isNewline(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return false
}

// isWhitespace implements the portable approximation from spec.md §4.1:
// Unicode Zs/Zl/Zp plus U+0009..U+000D and U+0085.
func isWhitespace(r rune) bool {
	switch r {
	case 0x0009, 0x000A, 0x000B, 0x000C, 0x000D, 0x0020, 0x0085, 0x00A0,
		0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000:
		return true
	}
	if r >= 0x2000 && r <= 0x200A {
		return true
	}
	return false
}

const reservedQuotelessV1 = "\\,:[]{}/#\"'"
const reservedQuotelessV2Extra = "@"

func isReservedQuoteless(r rune, version Version) bool {
	if containsRune(reservedQuotelessV1, r) {
		return true
	}
	if version != V1 && containsRune(reservedQuotelessV2Extra, r) {
		return true
	}
	return false
}
