package jsonh

import "fmt"

// decodeEscape interprets a single backslash escape sequence starting
// right after the consumed '\', returning zero or one decoded rune (zero
// for a line continuation). Grounded in the teacher's escapesRE switch
// in ccl.go (same single-char escape table, same \x/\u/\U hex forms),
// generalized here to read straight from the cursor one rune at a time
// instead of matching a precompiled regex against a whole buffer, since
// \u/\U escapes may need to recurse into a second escape for surrogate
// pairs.
func decodeEscape(c *charCursor, version Version) (rune, bool, error) {
	r, ok := c.read()
	if !ok {
		return 0, false, fmt.Errorf("Expected escape sequence, got end of input")
	}

	switch r {
	case '\\':
		return '\\', true, nil
	case 'b':
		return '\b', true, nil
	case 'f':
		return '\f', true, nil
	case 'n':
		return '\n', true, nil
	case 'r':
		return '\r', true, nil
	case 't':
		return '\t', true, nil
	case 'v':
		return '\v', true, nil
	case '0':
		return '\x00', true, nil
	case 'a':
		return '\a', true, nil
	case 'e':
		return '\x1b', true, nil
	case 'x':
		return decodeHexEscape(c, 2, version)
	case 'u':
		return decodeHexEscape(c, 4, version)
	case 'U':
		return decodeHexEscape(c, 8, version)
	}

	if isNewline(r) {
		if r == '\r' {
			c.readOne('\n')
		}
		return 0, false, nil
	}

	return r, true, nil
}

func decodeHexEscape(c *charCursor, digits int, version Version) (rune, bool, error) {
	cp, err := readHexDigits(c, digits)
	if err != nil {
		return 0, false, err
	}

	if cp >= 0xD800 && cp <= 0xDBFF {
		return joinSurrogate(c, cp, version)
	}

	r, err := safeRune(cp)
	if err != nil {
		return 0, false, err
	}
	return r, true, nil
}

// joinSurrogate is invoked with a pending high surrogate hi. If the
// next two characters are '\' followed by u/x/U, the following escape
// is read and combined into a single scalar per spec.md §4.2. A lone
// high surrogate is passed through to safeRune, which errors.
func joinSurrogate(c *charCursor, hi rune, version Version) (rune, bool, error) {
	if !c.readOne('\\') {
		r, err := safeRune(hi)
		if err != nil {
			return 0, false, err
		}
		return r, true, nil
	}

	kind, ok := c.readAny("uxU")
	if !ok {
		return 0, false, fmt.Errorf("Expected low surrogate after high surrogate")
	}

	var digits int
	switch kind {
	case 'x':
		digits = 2
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	}
	lo, err := readHexDigits(c, digits)
	if err != nil {
		return 0, false, err
	}
	if lo < 0xDC00 || lo > 0xDFFF {
		return 0, false, fmt.Errorf("Expected low surrogate after high surrogate")
	}

	cp := 0x10000 + ((hi - 0xD800) << 10) + (lo - 0xDC00)
	return cp, true, nil
}

func readHexDigits(c *charCursor, n int) (rune, error) {
	var value rune
	for i := 0; i < n; i++ {
		r, ok := c.read()
		if !ok || !isHexDigit(r) {
			return 0, fmt.Errorf("Incorrect number of hexadecimal digits in unicode escape sequence")
		}
		value = value*16 + rune(hexDigitValue(r))
	}
	return value, nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexDigitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

// safeRune validates that cp is not a lone (unpaired) surrogate, the
// reference behavior of attempting char_from_u32 and erroring on
// failure (spec.md §4.2, §9 open questions).
func safeRune(cp rune) (rune, error) {
	if cp >= 0xD800 && cp <= 0xDFFF {
		if cp <= 0xDBFF {
			return 0, fmt.Errorf("High surrogate out of range")
		}
		return 0, fmt.Errorf("Low surrogate out of range")
	}
	if cp > 0x10FFFF {
		return 0, fmt.Errorf("Invalid hex escape sequence")
	}
	return cp, nil
}
