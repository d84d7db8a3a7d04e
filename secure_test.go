package gotoon_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/gotoon"
	"github.com/reoring/gotoon/source/toon"
)

func wantForbidden(t *testing.T, text string) {
	t.Helper()
	_, err := gotoon.SecureDecode(text)
	if err == nil {
		t.Fatalf("SecureDecode(%q): expected rejection", text)
	}
	var se *toon.SyntaxError
	if !errors.As(err, &se) || se.Code != toon.CodeForbiddenKey {
		t.Fatalf("SecureDecode(%q): unexpected error %T (%v)", text, err, err)
	}
	if se.Message != "Object contains forbidden prototype property" {
		t.Fatalf("SecureDecode(%q): message = %q", text, se.Message)
	}
}

func TestSecureDecode_RejectsProtoKey(t *testing.T) {
	wantForbidden(t, "__proto__: 1")
	wantForbidden(t, "a:\n  __proto__: 1")
	wantForbidden(t, "\"__proto__\": 1")
	wantForbidden(t, "rows[1]{__proto__}:\n  1")
	wantForbidden(t, "items[1]:\n  - __proto__: 1")
}

func TestSecureDecode_ConstructorHeuristic(t *testing.T) {
	wantForbidden(t, "constructor:\n  prototype: 1")

	// a "constructor" key is fine unless its object value owns "prototype"
	for _, text := range []string{
		"constructor: builder",
		"constructor:\n  name: x",
	} {
		if _, err := gotoon.SecureDecode(text); err != nil {
			t.Fatalf("SecureDecode(%q): %v", text, err)
		}
	}
}

func TestSecureDecode_ForbiddenNamesAsValues(t *testing.T) {
	// the patterns appear in the text, but only as values, never as keys
	v, err := gotoon.SecureDecode("note: __proto__\nkind: constructor")
	if err != nil {
		t.Fatalf("SecureDecode: %v", err)
	}
	want := map[string]any{"note": "__proto__", "kind": "constructor"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v, want %#v", v, want)
	}
}

func TestSecureDecode_CleanTextFastPath(t *testing.T) {
	v, err := gotoon.SecureDecode("users[2]{id,name}:\n  1,Alice\n  2,Bob")
	if err != nil {
		t.Fatalf("SecureDecode: %v", err)
	}
	if _, ok := v.(map[string]any); !ok {
		t.Fatalf("got %T", v)
	}
}

func TestSecureDecode_ScalarRoot(t *testing.T) {
	v, err := gotoon.SecureDecode("__proto__")
	if err != nil {
		t.Fatalf("a scalar root cannot carry pollution: %v", err)
	}
	if v != "__proto__" {
		t.Fatalf("got %#v", v)
	}
}

func TestTryDecode_NormalizesPollutionRejection(t *testing.T) {
	r := gotoon.TryDecode("__proto__: 1")
	if r.OK {
		t.Fatalf("expected failure")
	}
	var se *toon.SyntaxError
	if !errors.As(r.Err, &se) || se.Code != toon.CodeForbiddenKey {
		t.Fatalf("cause lost under normalization: %#v", r.Err)
	}
}
