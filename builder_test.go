package jsonh

import "testing"

func TestBuildValueNestedArray(t *testing.T) {
	r := NewReader(`[1, [2, 3], {a: 4}]`, DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	arr, ok := val.AsArray()
	if !ok || len(arr) != 3 {
		t.Fatalf("got %v; want a 3-element array", val)
	}
	inner, ok := arr[1].AsArray()
	if !ok || len(inner) != 2 {
		t.Fatalf("arr[1] = %v; want a 2-element array", arr[1])
	}
	n, _ := arr[2].Property("a").AsNumber()
	if n != 4 {
		t.Errorf("arr[2].a = %v; want 4", n)
	}
}

func TestBuildValueNonFiniteNumberRejected(t *testing.T) {
	// An out-of-range decimal exponent produces +Inf, which the
	// builder must reject per spec.md §4.5/§8.
	r := NewReader("1e400", DefaultReaderOptions())
	if _, err := r.ParseElement(); err == nil {
		t.Fatal("expected error converting a non-finite number to JSON")
	}
}

func TestBuildValueComment(t *testing.T) {
	r := NewReader("# leading comment\n42", DefaultReaderOptions())
	val, err := r.ParseElement()
	if err != nil {
		t.Fatalf("ParseElement error: %v", err)
	}
	n, ok := val.AsNumber()
	if !ok || n != 42 {
		t.Errorf("got %v, %v; want 42, true", n, ok)
	}
}

func TestValueAccessors(t *testing.T) {
	obj := newObjectValue()
	obj.setProperty("x", newNumberValue(1))
	obj.setProperty("y", newStringValue("hi"))
	obj.setProperty("x", newNumberValue(2))

	if obj.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", obj.Len())
	}
	n, _ := obj.Property("x").AsNumber()
	if n != 2 {
		t.Errorf("x = %v; want 2 (replace in place)", n)
	}
	if got, want := obj.Keys(), []string{"x", "y"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Keys() = %v; want %v", got, want)
	}
}
