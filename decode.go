package gotoon

import (
	"context"
	"errors"

	eng "github.com/reoring/gotoon/internal/engine"
	"github.com/reoring/gotoon/source/toon"
)

// Decode runs the raw grammar decoder without the pollution scan. Most
// callers want SecureDecode or the Try* variants instead.
func Decode(text string, opts ...DecodeOpt) (any, error) {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	src := toon.NewBytes([]byte(text), toon.Options{MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes})
	num := eng.Float64Number
	if opt.NumberMode == NumberJSONNumber {
		num = eng.KeepNumber
	}
	return eng.BuildValue(src, num)
}

// TryDecode securely decodes text into a generic value, converting every
// failure into a result object. It never returns a raw grammar error; decode
// failures are normalized into *DecodeError exactly once.
func TryDecode(text string, opts ...DecodeOpt) DecodeResult {
	v, err := SecureDecode(text, opts...)
	if err != nil {
		if de, ok := AsDecodeError(err); ok {
			return DecodeResult{Err: de}
		}
		return DecodeResult{Err: &DecodeError{Text: text, Cause: err}}
	}
	return DecodeResult{OK: true, Value: v}
}

// TryDecodeValidate decodes text and runs the result through s. The decoded
// value is retained as RawValue even when the schema coerces the returned
// value. Already-normalized errors pass through unwrapped.
func TryDecodeValidate[T any](ctx context.Context, text string, s Schema[T], opts ...DecodeOpt) ValidationResult[T] {
	dr := TryDecode(text, opts...)
	if !dr.OK {
		return ValidationResult[T]{Err: dr.Err}
	}
	if s == nil {
		return ValidationResult[T]{Err: &ValidationError{Value: dr.Value, Cause: errors.New("nil schema")}}
	}
	typed, err := s.Parse(ctx, dr.Value)
	if err != nil {
		if ve, ok := AsValidationError(err); ok {
			return ValidationResult[T]{Err: ve}
		}
		if de, ok := AsDecodeError(err); ok {
			return ValidationResult[T]{Err: de}
		}
		return ValidationResult[T]{Err: &ValidationError{Value: dr.Value, Cause: err}}
	}
	return ValidationResult[T]{OK: true, Value: typed, RawValue: dr.Value}
}

// DecodeValidate is the error-returning form of TryDecodeValidate.
func DecodeValidate[T any](ctx context.Context, text string, s Schema[T], opts ...DecodeOpt) (T, error) {
	r := TryDecodeValidate(ctx, text, s, opts...)
	if !r.OK {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}

// IsDecodable reports whether text securely decodes, swallowing the error.
// Useful for lightweight probing in a calling pipeline.
func IsDecodable(text string) bool {
	_, err := SecureDecode(text)
	return err == nil
}
