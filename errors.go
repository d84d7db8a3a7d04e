package gotoon

import (
	"errors"
	"fmt"
)

// Failure reasons carried by NoResultError, distinguishing parse failures
// from schema mismatches.
const (
	ReasonNotParsable = "response could not be parsed"
	ReasonNoMatch     = "response did not match schema"
)

// DecodeError is the normalized boundary error for any decode failure. It
// carries the offending text and the underlying cause; grammar-internal
// errors never cross the package boundary raw.
type DecodeError struct {
	Text  string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gotoon: decode failed: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// ValidationError reports a schema mismatch. Value holds the decoded value
// that was handed to the schema.
type ValidationError struct {
	Value any
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gotoon: value did not match schema: %v", e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// NoResultError is the orchestrator-terminal error: decode, validation, and
// (if attempted) repair all failed to produce a usable value. It embeds
// enough context for the caller to log or retry without re-deriving anything.
type NoResultError struct {
	Reason       string
	Text         string
	Cause        error
	Response     ResponseMeta
	Usage        Usage
	FinishReason string
}

func (e *NoResultError) Error() string {
	return fmt.Sprintf("gotoon: no structured result: %s: %v", e.Reason, e.Cause)
}

func (e *NoResultError) Unwrap() error { return e.Cause }

// AsDecodeError extracts a *DecodeError using errors.As internally.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AsValidationError extracts a *ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsNoResultError extracts a *NoResultError using errors.As internally.
func AsNoResultError(err error) (*NoResultError, bool) {
	var ne *NoResultError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}
