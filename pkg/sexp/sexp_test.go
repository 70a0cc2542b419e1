package sexp

import (
	"reflect"
	"testing"
)

// ============================================================================
// Positive Tests
// ============================================================================

func TestSexp_0(t *testing.T) {
	CheckOk(t, nil, "")
}

func TestSexp_1(t *testing.T) {
	e1 := List{nil, 1}
	CheckOk(t, &e1, "()")
}

func TestSexp_2(t *testing.T) {
	e1 := List{nil, 1}
	e2 := List{[]SExp{&e1}, 1}
	CheckOk(t, &e2, "(())")
}

func TestSexp_3(t *testing.T) {
	e1 := Symbol{"symbol", 1}
	CheckOk(t, &e1, "symbol")
}

func TestSexp_4(t *testing.T) {
	e1 := Symbol{"12345", 1}
	CheckOk(t, &e1, "12345")
}

func TestSexp_5(t *testing.T) {
	e1 := Symbol{"symbol123", 1}
	e2 := List{[]SExp{&e1}, 1}
	CheckOk(t, &e2, "(symbol123)")
}

func TestSexp_6(t *testing.T) {
	e1 := Symbol{"a", 1}
	e2 := Symbol{"b", 1}
	e3 := List{[]SExp{&e1, &e2}, 1}
	CheckOk(t, &e3, "(a b)")
}

func TestSexp_7(t *testing.T) {
	e1 := Symbol{"a", 1}
	e2 := List{[]SExp{&e1}, 1}
	e3 := List{[]SExp{&e2}, 1}
	CheckOk(t, &e3, "((a))")
}

func TestSexp_8(t *testing.T) {
	// Comments are skipped entirely
	e1 := Symbol{"a", 2}
	e2 := List{[]SExp{&e1}, 1}
	CheckOk(t, &e2, "(; ignore me\na)")
}

func TestSexp_9(t *testing.T) {
	e1 := Symbol{"a", 2}
	e2 := Symbol{"b", 3}
	e3 := List{[]SExp{&e1, &e2}, 1}
	CheckOk(t, &e3, "(\na\nb\n)")
}

// ============================================================================
// Negative Tests
// ============================================================================

func TestSexp_Err_0(t *testing.T) {
	CheckErr(t, "(")
}

func TestSexp_Err_1(t *testing.T) {
	CheckErr(t, ")")
}

func TestSexp_Err_2(t *testing.T) {
	CheckErr(t, "(a))")
}

func TestSexp_Err_3(t *testing.T) {
	CheckErr(t, "((a)")
}

// ============================================================================
// ParseAll tests
// ============================================================================

func TestSexpAll_0(t *testing.T) {
	terms, err := ParseAll("(a) (b)\n(c)")
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	//
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	}
	//
	if terms[2].Line() != 2 {
		t.Errorf("expected line 2, got %d", terms[2].Line())
	}
}

// ============================================================================
// Test Helpers
// ============================================================================

func CheckOk(t *testing.T, expected SExp, input string) {
	actual, err := Parse(input)
	//
	if err != nil {
		t.Errorf("parsing %q failed: %s", input, err)
	} else if expected == nil && actual != nil {
		t.Errorf("parsing %q should have given nothing back", input)
	} else if expected != nil && !reflect.DeepEqual(expected, actual) {
		t.Errorf("parsing %q gave %v, expected %v", input, actual, expected)
	}
}

func CheckErr(t *testing.T, input string) {
	if _, err := Parse(input); err == nil {
		t.Errorf("parsing %q should have failed", input)
	}
}
