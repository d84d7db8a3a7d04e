package gotoon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reoring/gotoon"
)

func TestDecodeValidateWithRepair_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	repair := func(context.Context, gotoon.RepairRequest) (string, error) {
		calls++
		return "", nil
	}
	n, err := gotoon.DecodeValidateWithRepair[int](context.Background(), "count: 5", countSchema{}, repair, gotoon.GenerationContext{})
	if err != nil || n != 5 {
		t.Fatalf("got (%v, %v)", n, err)
	}
	if calls != 0 {
		t.Fatalf("repair invoked %d times on a clean first attempt", calls)
	}
}

func TestDecodeValidateWithRepair_RepairFixesDecodeFailure(t *testing.T) {
	const text = "count: \"ten"
	calls := 0
	repair := func(_ context.Context, req gotoon.RepairRequest) (string, error) {
		calls++
		if req.Text != text {
			t.Fatalf("request text = %q", req.Text)
		}
		if _, ok := gotoon.AsDecodeError(req.Err); !ok {
			t.Fatalf("request error = %T (%v)", req.Err, req.Err)
		}
		return "count: 10", nil
	}
	n, err := gotoon.DecodeValidateWithRepair[int](context.Background(), text, countSchema{}, repair, gotoon.GenerationContext{})
	if err != nil || n != 10 {
		t.Fatalf("got (%v, %v)", n, err)
	}
	if calls != 1 {
		t.Fatalf("repair invoked %d times", calls)
	}
}

func TestDecodeValidateWithRepair_DeclineKeepsOriginalCause(t *testing.T) {
	const text = "count: \"ten"
	calls := 0
	repair := func(context.Context, gotoon.RepairRequest) (string, error) {
		calls++
		return "", nil
	}
	_, err := gotoon.DecodeValidateWithRepair[int](context.Background(), text, countSchema{}, repair, gotoon.GenerationContext{})
	ne, ok := gotoon.AsNoResultError(err)
	if !ok {
		t.Fatalf("expected *NoResultError, got %T (%v)", err, err)
	}
	if ne.Reason != gotoon.ReasonNotParsable {
		t.Fatalf("reason = %q", ne.Reason)
	}
	if ne.Text != text {
		t.Fatalf("terminal error should carry the original text, got %q", ne.Text)
	}
	de, ok := gotoon.AsDecodeError(ne.Cause)
	if !ok || de.Text != text {
		t.Fatalf("cause should be the original decode failure: %#v", ne.Cause)
	}
	if calls != 1 {
		t.Fatalf("repair invoked %d times", calls)
	}
}

func TestDecodeValidateWithRepair_RepairErrorIsADecline(t *testing.T) {
	repair := func(context.Context, gotoon.RepairRequest) (string, error) {
		return "count: 10", errors.New("model unavailable")
	}
	_, err := gotoon.DecodeValidateWithRepair[int](context.Background(), "count: \"ten", countSchema{}, repair, gotoon.GenerationContext{})
	ne, ok := gotoon.AsNoResultError(err)
	if !ok {
		t.Fatalf("expected *NoResultError, got %T", err)
	}
	if _, ok := gotoon.AsDecodeError(ne.Cause); !ok {
		t.Fatalf("a failing repair must surface the original cause, got %#v", ne.Cause)
	}
}

func TestDecodeValidateWithRepair_SecondFailureIsTerminal(t *testing.T) {
	const repaired = "count: still wrong"
	calls := 0
	repair := func(context.Context, gotoon.RepairRequest) (string, error) {
		calls++
		return repaired, nil
	}
	_, err := gotoon.DecodeValidateWithRepair[int](context.Background(), "count: \"ten", countSchema{}, repair, gotoon.GenerationContext{})
	ne, ok := gotoon.AsNoResultError(err)
	if !ok {
		t.Fatalf("expected *NoResultError, got %T (%v)", err, err)
	}
	// the second attempt decoded but failed the schema; its error wins
	if ne.Reason != gotoon.ReasonNoMatch {
		t.Fatalf("reason = %q", ne.Reason)
	}
	if ne.Text != repaired {
		t.Fatalf("terminal error should carry the repaired text, got %q", ne.Text)
	}
	if _, ok := gotoon.AsValidationError(ne.Cause); !ok {
		t.Fatalf("cause = %#v", ne.Cause)
	}
	if calls != 1 {
		t.Fatalf("repair invoked %d times, want exactly one round trip", calls)
	}
}

func TestDecodeValidateWithRepair_NilRepair(t *testing.T) {
	_, err := gotoon.DecodeValidateWithRepair[int](context.Background(), "count: nope", countSchema{}, nil, gotoon.GenerationContext{})
	ne, ok := gotoon.AsNoResultError(err)
	if !ok {
		t.Fatalf("expected *NoResultError, got %T", err)
	}
	if ne.Reason != gotoon.ReasonNoMatch {
		t.Fatalf("reason = %q", ne.Reason)
	}
}

func TestDecodeValidateWithRepair_CancellationPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	repair := func(context.Context, gotoon.RepairRequest) (string, error) {
		calls++
		return "count: 1", nil
	}
	s := gotoon.SchemaFunc[int](func(ctx context.Context, _ any) (int, error) {
		return 0, ctx.Err()
	})
	_, err := gotoon.DecodeValidateWithRepair[int](ctx, "count: 1", s, repair, gotoon.GenerationContext{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %T (%v)", err, err)
	}
	if _, ok := gotoon.AsNoResultError(err); ok {
		t.Fatalf("cancellation must not be converted into a terminal result")
	}
	if calls != 0 {
		t.Fatalf("repair invoked %d times during cancellation", calls)
	}
}

func TestDecodeValidateWithRepair_CarriesGenerationContext(t *testing.T) {
	gen := gotoon.GenerationContext{
		Response:     gotoon.ResponseMeta{ID: "resp-1", Model: "m-large", Timestamp: time.Unix(1700000000, 0)},
		Usage:        gotoon.Usage{InputTokens: 12, OutputTokens: 34, TotalTokens: 46},
		FinishReason: "length",
	}
	_, err := gotoon.DecodeValidateWithRepair[int](context.Background(), "count: \"ten", countSchema{}, nil, gen)
	ne, ok := gotoon.AsNoResultError(err)
	if !ok {
		t.Fatalf("expected *NoResultError, got %T", err)
	}
	if ne.Response != gen.Response || ne.Usage != gen.Usage || ne.FinishReason != gen.FinishReason {
		t.Fatalf("generation context dropped: %#v", ne)
	}
}
