package gotoon

import (
	"context"
	"errors"
	"time"
)

// RepairRequest is handed to the repair collaborator: the failing text and
// the specific error it failed with.
type RepairRequest struct {
	Text string
	Err  error
}

// RepairFunc attempts to produce corrected text for a failing buffer.
// Returning an empty string (or an error) signals "cannot repair".
type RepairFunc func(ctx context.Context, req RepairRequest) (string, error)

// ResponseMeta describes the upstream generation response.
type ResponseMeta struct {
	ID        string
	Model     string
	Timestamp time.Time
}

// Usage carries the token accounting of the upstream generation call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// GenerationContext bundles generation metadata propagated into terminal
// errors for diagnostics.
type GenerationContext struct {
	Response     ResponseMeta
	Usage        Usage
	FinishReason string
}

// DecodeValidateWithRepair decodes and validates text, and on a decode- or
// validation-class failure invokes the repair collaborator once, retrying
// decode+validate exactly once against the repaired text. Every terminal
// failure is a *NoResultError carrying the failing text, the cause, and the
// generation context. Context cancellation passes through untouched.
func DecodeValidateWithRepair[T any](ctx context.Context, text string, s Schema[T], repair RepairFunc, gen GenerationContext, opts ...DecodeOpt) (T, error) {
	var zero T
	r := TryDecodeValidate(ctx, text, s, opts...)
	if r.OK {
		return r.Value, nil
	}
	err := r.Err
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return zero, err
	}
	if repair == nil || !repairable(err) {
		return zero, terminalError(err, text, gen)
	}
	repaired, rerr := repair(ctx, RepairRequest{Text: text, Err: err})
	if rerr != nil || repaired == "" {
		// repair declined; surface the original cause
		return zero, terminalError(err, text, gen)
	}
	r = TryDecodeValidate(ctx, repaired, s, opts...)
	if r.OK {
		return r.Value, nil
	}
	if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
		return zero, r.Err
	}
	return zero, terminalError(r.Err, repaired, gen)
}

// repairable gates repair to decode- and validation-class failures; unrelated
// runtime failures must not trigger a "repair".
func repairable(err error) bool {
	if _, ok := AsDecodeError(err); ok {
		return true
	}
	_, ok := AsValidationError(err)
	return ok
}

func terminalError(cause error, text string, gen GenerationContext) *NoResultError {
	reason := ReasonNotParsable
	if _, ok := AsValidationError(cause); ok {
		reason = ReasonNoMatch
	}
	return &NoResultError{
		Reason:       reason,
		Text:         text,
		Cause:        cause,
		Response:     gen.Response,
		Usage:        gen.Usage,
		FinishReason: gen.FinishReason,
	}
}
