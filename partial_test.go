package gotoon_test

import (
	"reflect"
	"testing"

	"github.com/reoring/gotoon"
)

func TestDecodePartial_NilInput(t *testing.T) {
	r := gotoon.DecodePartial(nil)
	if r.State != gotoon.PartialUndefinedInput || r.Value != nil {
		t.Fatalf("got %#v", r)
	}
}

func TestDecodePartial_FullBuffer(t *testing.T) {
	text := "foo: bar\n"
	r := gotoon.DecodePartial(&text)
	if r.State != gotoon.PartialSuccess {
		t.Fatalf("state = %v", r.State)
	}
	want := map[string]any{"foo": "bar"}
	if !reflect.DeepEqual(r.Value, want) {
		t.Fatalf("got %#v, want %#v", r.Value, want)
	}
}

func TestDecodePartial_TruncatedTabularRow(t *testing.T) {
	// the last row is cut inside a quoted cell; the row before it survives
	text := "users[2]{id,name}:\n  1,Alice\n  2,\"B"
	r := gotoon.DecodePartial(&text)
	if r.State == gotoon.PartialSuccess {
		t.Fatalf("a truncated buffer must never report a full parse")
	}
	if r.State != gotoon.PartialRepaired {
		t.Fatalf("state = %v", r.State)
	}
	want := map[string]any{"users": []any{
		map[string]any{"id": float64(1), "name": "Alice"},
	}}
	if !reflect.DeepEqual(r.Value, want) {
		t.Fatalf("got %#v, want %#v", r.Value, want)
	}
}

func TestDecodePartial_TruncatedQuotedValue(t *testing.T) {
	text := "a: 1\nb: \"unfinish"
	r := gotoon.DecodePartial(&text)
	if r.State != gotoon.PartialRepaired {
		t.Fatalf("state = %v (%#v)", r.State, r.Value)
	}
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(r.Value, want) {
		t.Fatalf("got %#v, want %#v", r.Value, want)
	}
}

func TestDecodePartial_HeaderOnlyBuffer(t *testing.T) {
	// a tabular header with no rows yet is itself a valid document
	text := "users[2]{id,name}:"
	r := gotoon.DecodePartial(&text)
	if r.State != gotoon.PartialSuccess {
		t.Fatalf("state = %v", r.State)
	}
	want := map[string]any{"users": []any{}}
	if !reflect.DeepEqual(r.Value, want) {
		t.Fatalf("got %#v, want %#v", r.Value, want)
	}
}

func TestDecodePartial_NoDecodablePrefix(t *testing.T) {
	for _, text := range []string{"", "   ", "msg: \"hel"} {
		text := text
		r := gotoon.DecodePartial(&text)
		if r.State != gotoon.PartialFailed || r.Value != nil {
			t.Fatalf("DecodePartial(%q) = %#v", text, r)
		}
	}
}

func TestDecodePartial_StopsAtFirstCompleteLookingPrefix(t *testing.T) {
	// "c" looks complete, so the scan cuts there and stops when the decode
	// fails, even though the shorter prefix "a: 1\nb:" would have decoded
	text := "a: 1\nb:\nc"
	r := gotoon.DecodePartial(&text)
	if r.State != gotoon.PartialFailed {
		t.Fatalf("state = %v (%#v)", r.State, r.Value)
	}
}

func TestPartialState_String(t *testing.T) {
	cases := map[gotoon.PartialState]string{
		gotoon.PartialUndefinedInput: "undefined-input",
		gotoon.PartialSuccess:        "successful-parse",
		gotoon.PartialRepaired:       "repaired-parse",
		gotoon.PartialFailed:         "failed-parse",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Fatalf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
