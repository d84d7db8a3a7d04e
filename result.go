package gotoon

// DecodeResult is the discriminated outcome of a schema-less decode. Exactly
// one of Value/Err is meaningful, selected by OK.
type DecodeResult struct {
	OK    bool
	Value any
	Err   *DecodeError
}

// ValidationResult is the discriminated outcome of decode-plus-validate.
// RawValue holds the pre-validation decoded value on success; schema
// validation may coerce or transform Value, RawValue never changes.
type ValidationResult[T any] struct {
	OK       bool
	Value    T
	RawValue any
	Err      error // *DecodeError or *ValidationError
}
