package jsonh

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tokensOf(t *testing.T, src string, opts ReaderOptions) []Token {
	t.Helper()
	r := NewReader(src, opts)
	var got []Token
	for tok, err := range r.ReadElement() {
		if err != nil {
			t.Fatalf("tokenizing %q: %v", src, err)
		}
		got = append(got, tok)
	}
	return got
}

func TestTokensSimpleObject(t *testing.T) {
	got := tokensOf(t, `{ "a": "b" }`, DefaultReaderOptions())
	want := []Token{
		{Kind: StartObject},
		{Kind: PropertyName, Value: "a"},
		{Kind: String, Value: "b"},
		{Kind: EndObject},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArrayWithQuotelessGap(t *testing.T) {
	r := NewReader(`[1, 2, 3 4 5,6]`, DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	arr, ok := val.AsArray()
	if !ok || len(arr) != 5 {
		t.Fatalf("got %v; want a 5-element array", val)
	}
	n0, _ := arr[0].AsNumber()
	if n0 != 1 {
		t.Errorf("arr[0] = %v; want 1", n0)
	}
	s, ok := arr[3].AsString()
	if !ok || s != "3 4 5" {
		t.Errorf("arr[3] = %v, %v; want \"3 4 5\", true", s, ok)
	}
	n4, _ := arr[4].AsNumber()
	if n4 != 6 {
		t.Errorf("arr[4] = %v; want 6", n4)
	}
}

func TestParseBracelessObject(t *testing.T) {
	r := NewReader("a: b\nc: d", DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	if val.Kind() != KindObject {
		t.Fatalf("got kind %v; want Object", val.Kind())
	}
	a, _ := val.Property("a").AsString()
	c, _ := val.Property("c").AsString()
	if a != "b" || c != "d" {
		t.Errorf("got a=%q c=%q; want b, d", a, c)
	}
}

func TestMultiQuoteIndentStripping(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"\"\"\"\n  hello\n  \"\"\"", "hello"},
		{"\"\"\"\n  hello world  \"\"\"", "\n  hello world  "},
	}
	for _, c := range cases {
		r := NewReader(c.in, DefaultReaderOptions())
		val, err := r.ParseElement()
		if err != nil {
			t.Fatalf("ParseElement(%q) error: %v", c.in, err)
		}
		s, ok := val.AsString()
		if !ok || s != c.want {
			t.Errorf("ParseElement(%q) = %q, %v; want %q, true", c.in, s, ok, c.want)
		}
	}
}

func TestSurrogateJoiningInQuotedString(t *testing.T) {
	r := NewReader(`"\U0001F47D and \U0000D83D\U0000DC7D"`, DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	s, _ := val.AsString()
	if s != "👽 and 👽" {
		t.Errorf("got %q; want \"👽 and 👽\"", s)
	}
}

// tokensUntilError collects the tokens read from src and the error, if
// any, that ended the stream.
func tokensUntilError(src string, opts ReaderOptions) ([]Token, error) {
	r := NewReader(src, opts)
	var got []Token
	for tok, err := range r.ReadElement() {
		if err != nil {
			return got, err
		}
		got = append(got, tok)
	}
	return got, nil
}

func TestNestableBlockComments(t *testing.T) {
	// A comment-only input yields its Comment token; the stream then
	// ends with an error because no element follows the comment.
	got, err := tokensUntilError(`/=* *=/`, DefaultReaderOptions())
	if len(got) != 1 || got[0].Kind != Comment || got[0].Value != " " {
		t.Fatalf("got %v; want one Comment(\" \")", got)
	}
	if err == nil || !strings.Contains(err.Error(), "Expected token") {
		t.Fatalf("err = %v; want end-of-input error after the comment", err)
	}

	got, err = tokensUntilError(`/==*/=**=/*==/`, DefaultReaderOptions())
	if len(got) != 1 || got[0].Kind != Comment || got[0].Value != "/=**=/" {
		t.Fatalf("got %v; want one Comment(\"/=**=/\")", got)
	}
	if err == nil || !strings.Contains(err.Error(), "Expected token") {
		t.Fatalf("err = %v; want end-of-input error after the comment", err)
	}
}

func TestNestableBlockCommentsRejectedInV1(t *testing.T) {
	r := NewReader(`/=* *=/`, ReaderOptions{Version: V1, MaxDepth: 64})
	_, err := r.ParseElement()
	if err == nil {
		t.Fatal("expected error parsing a nestable block comment under V1")
	}
	if !strings.Contains(err.Error(), "Unexpected `/`") {
		t.Errorf("error = %v; want the `/=` opener rejected", err)
	}
}

func TestNumberShapeSoftFailures(t *testing.T) {
	cases := []string{".", "-.", "0_.0", "0._0", "0x0e+", "0b0e+_1", "0e"}
	for _, in := range cases {
		r := NewReader(in, ReaderOptions{Version: Latest, MaxDepth: 64, ParseSingleElement: true})
		val, err := r.ParseElement()
		if err != nil {
			t.Errorf("ParseElement(%q) error: %v; want string fallback", in, err)
			continue
		}
		s, ok := val.AsString()
		if !ok || s != in {
			t.Errorf("ParseElement(%q) = %v (%q, %v); want string %q", in, val, s, ok, in)
		}
	}
}

func TestDuplicateProperty(t *testing.T) {
	r := NewReader(`{a:1, c:2, a:3}`, DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	n, _ := val.Property("a").AsNumber()
	if n != 3 {
		t.Errorf("a = %v; want 3", n)
	}
	if val.Len() != 2 {
		t.Errorf("object has %d properties; want 2", val.Len())
	}
}

func TestParseSingleElement(t *testing.T) {
	r := NewReader("1\n2", ReaderOptions{Version: Latest, MaxDepth: 64, ParseSingleElement: true})
	if _, err := r.ParseElement(); err == nil {
		t.Fatal("expected error for trailing element after single-element parse")
	}

	r2 := NewReader("1\n\n", ReaderOptions{Version: Latest, MaxDepth: 64, ParseSingleElement: true})
	val, err := r2.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	n, _ := val.AsNumber()
	if n != 1 {
		t.Errorf("got %v; want 1", n)
	}
}

func TestMaxDepth(t *testing.T) {
	src := `{a:{b:{c:""}}}`
	r := NewReader(src, ReaderOptions{Version: Latest, MaxDepth: 2})
	if _, err := r.ParseElement(); err == nil {
		t.Fatal("expected error exceeding max depth 2")
	}
	r2 := NewReader(src, ReaderOptions{Version: Latest, MaxDepth: 3})
	if _, err := r2.ParseElement(); err != nil {
		t.Fatalf("ParseElement with MaxDepth 3 error: %v", err)
	}
}

func TestVerbatimString(t *testing.T) {
	r := NewReader(`@"a\\"`, DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	s, _ := val.AsString()
	if s != `a\\` {
		t.Errorf("got %q; want `a\\\\`", s)
	}

	r2 := NewReader(`"a\\"`, DefaultReaderOptions())
	val2, err := r2.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	s2, _ := val2.AsString()
	if s2 != `a\` {
		t.Errorf("got %q; want single backslash", s2)
	}
}

func TestVerbatimStringIsV2Only(t *testing.T) {
	// Under V1, a leading '@' is not a verbatim prefix: it stays a
	// literal character and backslash escapes still decode normally.
	r := NewReader(`@c\\: @d\\`, ReaderOptions{Version: V1, MaxDepth: 64})
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	name, _ := val.Property(`@c\`).AsString()
	if name != `@d\` {
		t.Errorf(`got property "@c\\" = %q; want value "@d\\"`, name)
	}
}

func TestFindPropertyValue(t *testing.T) {
	r := NewReader(`{a: 1, b: {c: 2}}`, DefaultReaderOptions())
	if !r.FindPropertyValue("b") {
		t.Error("FindPropertyValue(\"b\") = false; want true")
	}

	r2 := NewReader(`{a: 1, b: {c: 2}}`, DefaultReaderOptions())
	if r2.FindPropertyValue("c") {
		t.Error("FindPropertyValue(\"c\") = true; want false (nested, not top-level)")
	}
}

func TestHasToken(t *testing.T) {
	r := NewReader("  # comment\n  ", DefaultReaderOptions())
	if r.HasToken() {
		t.Error("HasToken() = true for comment-only input")
	}
	r2 := NewReader("  5", DefaultReaderOptions())
	if !r2.HasToken() {
		t.Error("HasToken() = false; want true")
	}
}

func TestNamedLiterals(t *testing.T) {
	for in, want := range map[string]Token{
		"null":  {Kind: Null},
		"true":  {Kind: True},
		"false": {Kind: False},
	} {
		r := NewReader(in, DefaultReaderOptions())
		val, err := r.ParseElement()
		if err != nil {
			t.Fatalf("ParseElement(%q) error: %v", in, err)
		}
		switch want.Kind {
		case Null:
			if !val.IsNull() {
				t.Errorf("%q did not parse as null", in)
			}
		case True, False:
			b, ok := val.AsBool()
			if !ok || b != (want.Kind == True) {
				t.Errorf("%q parsed as %v, %v", in, b, ok)
			}
		}
	}
}

func TestVerbatimSuppressesNamedLiteral(t *testing.T) {
	r := NewReader(`@null`, DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	s, ok := val.AsString()
	if !ok || s != "null" {
		t.Errorf("got %v (%q, %v); want string \"null\"", val, s, ok)
	}
}
