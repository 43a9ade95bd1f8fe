package jsonh

import (
	"fmt"
	"iter"
	"strings"
)

// Reader turns a JSONH source string into a lazy stream of tokens, and
// (via ParseElement) into a built Value. It mirrors the shape of the
// teacher's lexer.go tokens(data []byte) iter.Seq2[token, error]
// generator, generalized from a regexp-driven scan to a rune-by-rune
// state machine since JSONH's braceless-object and quoteless-string
// rules are context sensitive in a way regexes can't express cleanly.
type Reader struct {
	cursor *charCursor
	opts   ReaderOptions
	depth  int
}

// NewReader constructs a Reader over source with the given options.
func NewReader(source string, opts ReaderOptions) *Reader {
	return &Reader{cursor: newCharCursor(source), opts: opts}
}

func (r *Reader) version() Version { return r.opts.Version.resolve() }

// tokenEmitter adapts the recursive tokenizer calls to iter.Seq2's
// yield callback, tracking whether the consumer has stopped pulling
// or an error has already been surfaced so later calls become no-ops.
type tokenEmitter struct {
	yield func(Token, error) bool
	done  bool
}

func (e *tokenEmitter) emit(t Token) bool {
	if e.done {
		return false
	}
	if !e.yield(t, nil) {
		e.done = true
		return false
	}
	return true
}

func (e *tokenEmitter) fail(err error) bool {
	if !e.done {
		e.yield(Token{}, err)
	}
	e.done = true
	return false
}

// ReadElement reads one JSONH element (a value, or a top-level
// braceless object) as a pull-based stream of tokens.
func (r *Reader) ReadElement() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		e := &tokenEmitter{yield: yield}
		r.readElement(e, true)
	}
}

func (r *Reader) readElement(e *tokenEmitter, topLevel bool) bool {
	if !r.skipCommentsAndWhitespace(e) {
		return false
	}
	ch, has := r.cursor.peek()
	if !has {
		return e.fail(fmt.Errorf("Expected token, got end of input"))
	}
	switch ch {
	case '{':
		return r.readObject(e)
	case '[':
		return r.readArray(e)
	}
	tok, err := r.readPrimitiveElement()
	if err != nil {
		return e.fail(err)
	}
	if topLevel {
		return r.detectBracelessObjectOrEndOfPrimitive(e, tok)
	}
	return e.emit(tok)
}

// detectBracelessObjectOrEndOfPrimitive implements §4.4.3: a primitive
// read at the top level might actually be the first property name of
// a braceless object, discovered only by looking past any trailing
// comments/whitespace for a ':'.
func (r *Reader) detectBracelessObjectOrEndOfPrimitive(e *tokenEmitter, primTok Token) bool {
	buffered, err := r.collectCommentsAndWhitespace()
	if err != nil {
		return e.fail(err)
	}
	if r.cursor.readOne(':') {
		nameTok := Token{Kind: PropertyName, Value: primitiveText(primTok)}
		initial := append([]Token{nameTok}, buffered...)
		return r.readBracelessObject(e, initial)
	}
	if !e.emit(primTok) {
		return false
	}
	for _, t := range buffered {
		if !e.emit(t) {
			return false
		}
	}
	return true
}

// primitiveText reconstructs the textual form of a primitive token,
// used when promoting it into a property name: String/Number tokens
// already carry their text in Value, but Null/True/False don't.
func primitiveText(t Token) string {
	switch t.Kind {
	case Null:
		return "null"
	case True:
		return "true"
	case False:
		return "false"
	default:
		return t.Value
	}
}

func namedLiteral(text string) (Token, bool) {
	switch text {
	case "null":
		return Token{Kind: Null}, true
	case "true":
		return Token{Kind: True}, true
	case "false":
		return Token{Kind: False}, true
	}
	return Token{}, false
}

func (r *Reader) enterContainer(e *tokenEmitter) bool {
	r.depth++
	if r.depth > r.opts.MaxDepth {
		return e.fail(fmt.Errorf("Exceeded max depth"))
	}
	return true
}

func (r *Reader) exitContainer() { r.depth-- }

// readObject and readBracelessObject together implement §4.4.2.

func (r *Reader) readObject(e *tokenEmitter) bool {
	ch, has := r.cursor.peek()
	if !has || ch != '{' {
		return r.readBracelessObject(e, nil)
	}
	r.cursor.read()
	if !e.emit(Token{Kind: StartObject}) {
		return false
	}
	if !r.enterContainer(e) {
		return false
	}
	for {
		if !r.skipCommentsAndWhitespace(e) {
			return false
		}
		ch, has := r.cursor.peek()
		if !has {
			if r.opts.IncompleteInputs {
				r.exitContainer()
				return e.emit(Token{Kind: EndObject})
			}
			return e.fail(fmt.Errorf("Expected `}` to end object, got end of input"))
		}
		if ch == '}' {
			r.cursor.read()
			r.exitContainer()
			return e.emit(Token{Kind: EndObject})
		}
		if !r.readProperty(e, nil) {
			return false
		}
	}
}

// readBracelessObject emits StartObject/EndObject around a sequence of
// properties with no surrounding braces, terminated only by EOF. When
// initial is non-nil it carries the already-decided first property
// name (plus any comments buffered while looking for ':'); the rest of
// that property (value, trailing comma) is finished before the object
// falls into its normal per-property loop.
func (r *Reader) readBracelessObject(e *tokenEmitter, initial []Token) bool {
	if !e.emit(Token{Kind: StartObject}) {
		return false
	}
	if !r.enterContainer(e) {
		return false
	}
	if initial != nil {
		for _, t := range initial {
			if !e.emit(t) {
				return false
			}
		}
		if !r.finishProperty(e) {
			return false
		}
	}
	for {
		if !r.skipCommentsAndWhitespace(e) {
			return false
		}
		if _, has := r.cursor.peek(); !has {
			r.exitContainer()
			return e.emit(Token{Kind: EndObject})
		}
		if !r.readProperty(e, nil) {
			return false
		}
	}
}

func (r *Reader) readProperty(e *tokenEmitter, nameTokens []Token) bool {
	if nameTokens != nil {
		for _, t := range nameTokens {
			if !e.emit(t) {
				return false
			}
		}
	} else if !r.readPropertyName(e) {
		return false
	}
	return r.finishProperty(e)
}

func (r *Reader) finishProperty(e *tokenEmitter) bool {
	if !r.skipCommentsAndWhitespace(e) {
		return false
	}
	if !r.readElement(e, false) {
		return false
	}
	if !r.skipCommentsAndWhitespace(e) {
		return false
	}
	r.cursor.readOne(',')
	return true
}

func (r *Reader) readPropertyName(e *tokenEmitter) bool {
	text, _, _, err := r.readStringText()
	if err != nil {
		return e.fail(err)
	}
	if !r.skipCommentsAndWhitespace(e) {
		return false
	}
	if !r.cursor.readOne(':') {
		return e.fail(fmt.Errorf("Expected `:` after property name in object"))
	}
	return e.emit(Token{Kind: PropertyName, Value: text})
}

// readArray implements §4.4.4.
func (r *Reader) readArray(e *tokenEmitter) bool {
	if !r.cursor.readOne('[') {
		return e.fail(fmt.Errorf("Expected `[` to start array"))
	}
	if !e.emit(Token{Kind: StartArray}) {
		return false
	}
	if !r.enterContainer(e) {
		return false
	}
	for {
		if !r.skipCommentsAndWhitespace(e) {
			return false
		}
		ch, has := r.cursor.peek()
		if !has {
			if r.opts.IncompleteInputs {
				r.exitContainer()
				return e.emit(Token{Kind: EndArray})
			}
			return e.fail(fmt.Errorf("Expected `]` to end array, got end of input"))
		}
		if ch == ']' {
			r.cursor.read()
			r.exitContainer()
			return e.emit(Token{Kind: EndArray})
		}
		if !r.readElement(e, false) {
			return false
		}
		if !r.skipCommentsAndWhitespace(e) {
			return false
		}
		r.cursor.readOne(',')
	}
}

// readPrimitiveElement implements the dispatch at the top of §4.4.1's
// "otherwise" branch: verbatim/quoted strings, then numbers, then
// quoteless strings, with null/true/false recognized only when the
// text wasn't quoted.
func (r *Reader) readPrimitiveElement() (Token, error) {
	ch, has := r.cursor.peek()
	if !has {
		return Token{}, fmt.Errorf("Expected primitive element, got end of input")
	}
	if ch == '@' || ch == '"' || ch == '\'' {
		text, quoted, verbatim, err := r.readStringText()
		if err != nil {
			return Token{}, err
		}
		if !quoted && !verbatim {
			if tok, ok := namedLiteral(text); ok {
				return tok, nil
			}
		}
		return Token{Kind: String, Value: text}, nil
	}
	if ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9') {
		return r.readNumberOrQuoteless()
	}
	text, err := r.readQuotelessString("", false)
	if err != nil {
		return Token{}, err
	}
	if tok, ok := namedLiteral(text); ok {
		return tok, nil
	}
	return Token{Kind: String, Value: text}, nil
}

// readStringText implements the common string-reading logic shared by
// property names and primitive string values (§4.4.5): an optional
// verbatim '@' prefix, then either a quoted run or a quoteless run.
// verbatim is reported back so callers can suppress null/true/false
// literal promotion for an unquoted `@null`-style string, which must
// stay a literal string even though it was never quoted. The '@'
// prefix is a V2-only feature (§4.4.5/SPEC_FULL.md §3); under V1 it
// is left alone to fall through as an ordinary leading character of a
// quoteless string, with escapes still decoded normally.
func (r *Reader) readStringText() (text string, quoted bool, verbatim bool, err error) {
	if r.version() != V1 {
		verbatim = r.cursor.readOne('@')
	}
	if verbatim {
		next, ok := r.cursor.peek()
		if !ok || isWhitespace(next) || next == '#' || next == '/' {
			return "", false, true, fmt.Errorf("Expected string to immediately follow verbatim symbol")
		}
	}
	if q, ok := r.cursor.peek(); ok && (q == '"' || q == '\'') {
		text, err = r.readQuotedString(q, verbatim)
		return text, true, verbatim, err
	}
	text, err = r.readQuotelessString("", verbatim)
	return text, false, verbatim, err
}

// readQuotedString reads the body of a single/double/multi-quoted
// string starting at the open quote q (not yet consumed), applying
// indent stripping when three or more quotes open it (§4.4.5).
func (r *Reader) readQuotedString(q rune, verbatim bool) (string, error) {
	n := r.peekRunLength(q)
	for i := 0; i < n; i++ {
		r.cursor.read()
	}
	if n == 2 {
		return "", nil
	}

	var raw []rune
	for {
		run := r.peekRunLength(q)
		switch {
		case run >= n:
			for i := 0; i < n; i++ {
				r.cursor.read()
			}
			content := string(raw)
			if n >= 3 {
				content = stripMultiQuoteIndent(content)
			}
			return content, nil
		case run > 0:
			for i := 0; i < run; i++ {
				r.cursor.read()
				raw = append(raw, q)
			}
		default:
			ch, has := r.cursor.read()
			if !has {
				return "", fmt.Errorf("Expected end of string, got end of input")
			}
			if ch == '\\' && !verbatim {
				dr, ok, err := decodeEscape(r.cursor, r.version())
				if err != nil {
					return "", err
				}
				if ok {
					raw = append(raw, dr)
				}
				continue
			}
			raw = append(raw, ch)
		}
	}
}

// peekRunLength counts consecutive occurrences of q starting at the
// current cursor position, without consuming anything.
func (r *Reader) peekRunLength(q rune) int {
	n := 0
	for {
		c, ok := r.cursor.peekAt(n)
		if !ok || c != q {
			return n
		}
		n++
	}
}

// stripMultiQuoteIndent applies the five-pass algorithm of §4.4.5 to
// the raw, already-escape-decoded content of a multi-quoted string.
func stripMultiQuoteIndent(content string) string {
	runes := []rune(content)
	n := len(runes)

	// Pass 1: find the leading-whitespace-newline region length L.
	leadingEnd := -1
	for i := 0; i < n; i++ {
		if !isWhitespace(runes[i]) {
			break
		}
		if isNewline(runes[i]) {
			end := i + 1
			if runes[i] == '\r' && end < n && runes[end] == '\n' {
				end++
			}
			leadingEnd = end
		}
		if leadingEnd >= 0 {
			break
		}
	}
	if leadingEnd < 0 {
		return content
	}
	L := leadingEnd

	// Pass 2: find the last newline followed solely by whitespace.
	lastNewlineStart := -1
	lastNewlineEnd := -1
	for i := 0; i < n; i++ {
		if !isNewline(runes[i]) {
			continue
		}
		end := i + 1
		if runes[i] == '\r' && end < n && runes[end] == '\n' {
			end++
		}
		allWS := true
		for t := end; t < n; t++ {
			if !isWhitespace(runes[t]) {
				allWS = false
				break
			}
		}
		if allWS {
			lastNewlineStart = i
			lastNewlineEnd = end
		}
	}
	if lastNewlineStart < 0 {
		return content
	}
	W := n - lastNewlineEnd

	// Pass 3: drop everything from the last newline (inclusive) on.
	body := runes[:lastNewlineStart]
	// Pass 4: drop the first L characters.
	if L > len(body) {
		L = len(body)
	}
	body = body[L:]
	// Pass 5: strip up to W leading whitespace characters per line.
	if W > 0 {
		body = stripLeadingWhitespacePerLine(body, W)
	}
	return string(body)
}

func stripLeadingWhitespacePerLine(body []rune, w int) []rune {
	var out []rune
	lineStart := true
	stripped := 0
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if lineStart {
			if stripped < w && isWhitespace(ch) && !isNewline(ch) {
				stripped++
				continue
			}
			lineStart = false
		}
		out = append(out, ch)
		if isNewline(ch) {
			if ch == '\r' && i+1 < len(body) && body[i+1] == '\n' {
				i++
				out = append(out, body[i])
			}
			lineStart = true
			stripped = 0
		}
	}
	return out
}

// readQuotelessString implements the quoteless-string rules of
// §4.4.5: initial seeds any already-consumed text (e.g. a number
// lexeme that turned out not to be a number), verbatim disables
// escape decoding.
func (r *Reader) readQuotelessString(initial string, verbatim bool) (string, error) {
	var sb strings.Builder
	sb.WriteString(initial)
	for {
		ch, has := r.cursor.peek()
		if !has {
			break
		}
		if !verbatim && ch == '\\' {
			r.cursor.read()
			dr, ok, err := decodeEscape(r.cursor, r.version())
			if err != nil {
				return "", err
			}
			if ok {
				sb.WriteRune(dr)
			}
			continue
		}
		if isNewline(ch) || isReservedQuoteless(ch, r.version()) {
			break
		}
		r.cursor.read()
		sb.WriteRune(ch)
	}
	text := strings.TrimFunc(sb.String(), isWhitespace)
	if text == "" {
		return "", fmt.Errorf("Empty quoteless string")
	}
	return text, nil
}

// readNumberOrQuoteless implements §4.4.6 together with the
// quoteless-after-number detection of §4.4.5. A malformed number
// shape (duplicate '.', underscore touching a dot, an exponent marker
// with no exponent digits, an underscore opening the exponent digits,
// or no digits at all) is not a hard error:
// the whole accumulated lexeme, including the offending characters,
// falls back to being read the rest of the way as a quoteless string.
// This deviates from a literal reading of the error list in spec §7,
// but matches the reference parser's test suite, which accepts inputs
// like "0_.0", "0x0e+", and "0e" as strings rather than raising an
// error (see DESIGN.md).
func (r *Reader) readNumberOrQuoteless() (Token, error) {
	lexeme, ok := r.scanNumberLexeme()
	if !ok {
		text, err := r.readQuotelessString(lexeme, false)
		if err != nil {
			return Token{}, err
		}
		if tok, ok := namedLiteral(text); ok {
			return tok, nil
		}
		return Token{Kind: String, Value: text}, nil
	}
	if isQuoteless, seed := r.detectQuotelessAfterNumber(lexeme); isQuoteless {
		text, err := r.readQuotelessString(seed, false)
		if err != nil {
			return Token{}, err
		}
		if tok, ok := namedLiteral(text); ok {
			return tok, nil
		}
		return Token{Kind: String, Value: text}, nil
	}
	return Token{Kind: Number, Value: lexeme}, nil
}

// detectQuotelessAfterNumber implements the lookahead of §4.4.5: a
// numeric lexeme followed (after optional whitespace, but before any
// newline) by a backslash or a non-reserved character is actually the
// start of a quoteless string, not a complete number.
func (r *Reader) detectQuotelessAfterNumber(lexeme string) (bool, string) {
	var ws strings.Builder
	for {
		ch, has := r.cursor.peek()
		if !has {
			return false, ""
		}
		if isNewline(ch) {
			return false, ""
		}
		if !isWhitespace(ch) {
			break
		}
		r.cursor.read()
		ws.WriteRune(ch)
	}
	ch, _ := r.cursor.peek()
	if ch == '\\' || !isReservedQuoteless(ch, r.version()) {
		return true, lexeme + ws.String()
	}
	return false, ""
}

// scanNumberLexeme consumes a candidate numeric lexeme from the
// cursor per §4.4.6. ok is false when the shape was invalid or no
// digits were found; the caller then treats the accumulated (and
// already-consumed) text as the seed of a quoteless string.
func (r *Reader) scanNumberLexeme() (string, bool) {
	var buf strings.Builder
	if ch, has := r.cursor.peek(); has && (ch == '+' || ch == '-') {
		r.cursor.read()
		buf.WriteRune(ch)
	}

	baseDigits := "0123456789"
	digits := 0
	if ch, has := r.cursor.peek(); has && ch == '0' {
		next, has2 := r.cursor.peekAt(1)
		switch {
		case has2 && (next == 'x' || next == 'X'):
			r.cursor.read()
			r.cursor.read()
			buf.WriteRune('0')
			buf.WriteRune(next)
			baseDigits = "0123456789abcdef"
		case has2 && (next == 'b' || next == 'B'):
			r.cursor.read()
			r.cursor.read()
			buf.WriteRune('0')
			buf.WriteRune(next)
			baseDigits = "01"
		case has2 && (next == 'o' || next == 'O'):
			r.cursor.read()
			r.cursor.read()
			buf.WriteRune('0')
			buf.WriteRune(next)
			baseDigits = "01234567"
		default:
			r.cursor.read()
			buf.WriteRune('0')
			digits++
		}
	}

	runDigits, _, runOK := r.scanDigitRun(&buf, baseDigits)
	digits += runDigits
	if !runOK {
		return buf.String(), false
	}

	isHex := baseDigits == "0123456789abcdef"
	if ch, has := r.cursor.peek(); has && (ch == 'e' || ch == 'E') {
		take := true
		if isHex {
			next, has2 := r.cursor.peekAt(1)
			take = has2 && (next == '+' || next == '-')
		}
		if take {
			r.cursor.read()
			buf.WriteRune(ch)
			if sch, shas := r.cursor.peek(); shas && (sch == '+' || sch == '-') {
				r.cursor.read()
				buf.WriteRune(sch)
			}
			if uch, uhas := r.cursor.peek(); uhas && uch == '_' {
				return buf.String(), false
			}
			expDigits, _, expOK := r.scanDigitRun(&buf, baseDigits)
			if !expOK || expDigits == 0 {
				return buf.String(), false
			}
			digits += expDigits
		}
	}

	if digits == 0 {
		return buf.String(), false
	}
	return buf.String(), true
}

// scanDigitRun greedily consumes base digits, underscores and at most
// one '.' from the cursor, appending everything consumed to buf. It
// stops (without consuming) at a hex lexeme's 'e'/'E' when it is
// immediately followed by '+'/'-', reserving it for the exponent
// marker instead of reading it as an ordinary hex digit.
func (r *Reader) scanDigitRun(buf *strings.Builder, baseDigits string) (digitCount, dotCount int, ok bool) {
	hexCheck := baseDigits == "0123456789abcdef"
	lastWasDot := false
	lastWasUnderscore := false
	for {
		ch, has := r.cursor.peek()
		if !has {
			break
		}
		if hexCheck && (ch == 'e' || ch == 'E') {
			if next, has2 := r.cursor.peekAt(1); has2 && (next == '+' || next == '-') {
				break
			}
		}
		switch {
		case ch == '_':
			if lastWasDot {
				return digitCount, dotCount, false
			}
			r.cursor.read()
			buf.WriteRune('_')
			lastWasUnderscore = true
			lastWasDot = false
			continue
		case ch == '.':
			if dotCount > 0 || lastWasUnderscore {
				return digitCount, dotCount, false
			}
			dotCount++
			r.cursor.read()
			buf.WriteRune('.')
			lastWasDot = true
			lastWasUnderscore = false
			continue
		case isBaseDigit(ch, baseDigits):
			r.cursor.read()
			buf.WriteRune(ch)
			digitCount++
			lastWasDot = false
			lastWasUnderscore = false
			continue
		}
		break
	}
	if lastWasUnderscore {
		return digitCount, dotCount, false
	}
	return digitCount, dotCount, true
}

func isBaseDigit(ch rune, baseDigits string) bool {
	if ch >= 'A' && ch <= 'Z' {
		ch = ch - 'A' + 'a'
	}
	return containsRune(baseDigits, ch)
}

// tryReadComment implements §4.4.7. matched is false (with a nil
// error) when the cursor isn't at a comment at all.
func (r *Reader) tryReadComment() (Token, bool, error) {
	ch, has := r.cursor.peek()
	if !has || (ch != '#' && ch != '/') {
		return Token{}, false, nil
	}
	if ch == '#' {
		r.cursor.read()
		return r.readLineCommentBody(), true, nil
	}

	next, has2 := r.cursor.peekAt(1)
	if !has2 {
		return Token{}, false, fmt.Errorf("Unexpected `/`")
	}
	switch {
	case next == '/':
		r.cursor.read()
		r.cursor.read()
		return r.readLineCommentBody(), true, nil
	case next == '*':
		r.cursor.read()
		r.cursor.read()
		tok, err := r.readBlockCommentBody()
		return tok, true, err
	case next == '=' && r.version() != V1:
		r.cursor.read()
		k := 0
		for {
			eq, has3 := r.cursor.peek()
			if !has3 || eq != '=' {
				break
			}
			r.cursor.read()
			k++
		}
		if !r.cursor.readOne('*') {
			return Token{}, true, fmt.Errorf("Expected `*` after start of nesting block comment")
		}
		tok, err := r.readNestableBlockCommentBody(k)
		return tok, true, err
	default:
		return Token{}, false, fmt.Errorf("Unexpected `/`")
	}
}

func (r *Reader) readLineCommentBody() Token {
	var sb strings.Builder
	for {
		ch, has := r.cursor.peek()
		if !has {
			break
		}
		if isNewline(ch) {
			r.cursor.read()
			if ch == '\r' {
				r.cursor.readOne('\n')
			}
			break
		}
		r.cursor.read()
		sb.WriteRune(ch)
	}
	return Token{Kind: Comment, Value: sb.String()}
}

func (r *Reader) readBlockCommentBody() (Token, error) {
	var sb strings.Builder
	for {
		ch, has := r.cursor.read()
		if !has {
			return Token{}, fmt.Errorf("Expected end of block comment, got end of input")
		}
		if ch == '*' {
			if n, ok := r.cursor.peek(); ok && n == '/' {
				r.cursor.read()
				return Token{Kind: Comment, Value: sb.String()}, nil
			}
		}
		sb.WriteRune(ch)
	}
}

// readNestableBlockCommentBody scans a V2 `/=...=*` comment whose
// close must match the same count k of '=' characters. A '*' that
// doesn't lead into a full matching close is folded back into the
// comment body verbatim and scanning continues (§4.4.7).
func (r *Reader) readNestableBlockCommentBody(k int) (Token, error) {
	var sb strings.Builder
	for {
		ch, has := r.cursor.read()
		if !has {
			return Token{}, fmt.Errorf("Expected end of block comment, got end of input")
		}
		if ch != '*' {
			sb.WriteRune(ch)
			continue
		}
		consumedEq := 0
		matched := true
		for consumedEq < k {
			eq, ok := r.cursor.peek()
			if !ok || eq != '=' {
				matched = false
				break
			}
			r.cursor.read()
			consumedEq++
		}
		if matched && r.cursor.readOne('/') {
			return Token{Kind: Comment, Value: sb.String()}, nil
		}
		sb.WriteRune('*')
		for i := 0; i < consumedEq; i++ {
			sb.WriteRune('=')
		}
	}
}

// skipCommentsAndWhitespace emits any Comment tokens found while
// skipping whitespace and comments, stopping at the first character
// that starts neither.
func (r *Reader) skipCommentsAndWhitespace(e *tokenEmitter) bool {
	for {
		progressed := r.skipWhitespaceRun()
		tok, matched, err := r.tryReadComment()
		if err != nil {
			return e.fail(err)
		}
		if matched {
			if !e.emit(tok) {
				return false
			}
			progressed = true
		}
		if !progressed {
			return true
		}
	}
}

// collectCommentsAndWhitespace behaves like skipCommentsAndWhitespace
// but buffers Comment tokens instead of emitting them immediately,
// used by the braceless-object lookahead of §4.4.3 and by
// readEndOfElements/HasToken, which don't drive a token stream.
func (r *Reader) collectCommentsAndWhitespace() ([]Token, error) {
	var toks []Token
	for {
		progressed := r.skipWhitespaceRun()
		tok, matched, err := r.tryReadComment()
		if err != nil {
			return toks, err
		}
		if matched {
			toks = append(toks, tok)
			progressed = true
		}
		if !progressed {
			return toks, nil
		}
	}
}

func (r *Reader) skipWhitespaceRun() bool {
	progressed := false
	for {
		ch, has := r.cursor.peek()
		if !has || !isWhitespace(ch) {
			return progressed
		}
		r.cursor.read()
		progressed = true
	}
}

// readEndOfElements enforces ParseSingleElement: after the root value,
// only trailing comments and whitespace may remain.
func (r *Reader) readEndOfElements() error {
	if _, err := r.collectCommentsAndWhitespace(); err != nil {
		return err
	}
	if _, has := r.cursor.peek(); has {
		return fmt.Errorf("Expected end of elements")
	}
	return nil
}

// HasToken reports whether any non-whitespace, non-comment input
// remains.
func (r *Reader) HasToken() bool {
	if _, err := r.collectCommentsAndWhitespace(); err != nil {
		return false
	}
	_, has := r.cursor.peek()
	return has
}

// FindPropertyValue scans (without building a value tree) for a
// top-level property named name, per §4.5.
func (r *Reader) FindPropertyValue(name string) bool {
	for tok, err := range r.ReadElement() {
		if err != nil {
			return false
		}
		if tok.Kind == PropertyName && r.depth == 1 && tok.Value == name {
			return true
		}
	}
	return false
}

// ParseElement reads one element and builds it into a Value.
func (r *Reader) ParseElement() (*Value, error) {
	next, stop := iter.Pull2(r.ReadElement())
	defer stop()
	val, err := buildValue(next)
	if err != nil {
		return nil, err
	}
	if r.opts.ParseSingleElement {
		if err := r.readEndOfElements(); err != nil {
			return nil, err
		}
	}
	return val, nil
}
