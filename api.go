package gotoon

import "context"

// Schema validates and optionally coerces a decoded value into T. Schema
// objects are opaque and caller-supplied; any validation library exposing
// this capability can be bridged.
type Schema[T any] interface {
	// Parse transforms a decoded value into T, returning an error when the
	// value does not conform.
	Parse(ctx context.Context, v any) (T, error)
}

// SchemaFunc adapts a plain function into a Schema.
type SchemaFunc[T any] func(ctx context.Context, v any) (T, error)

func (f SchemaFunc[T]) Parse(ctx context.Context, v any) (T, error) { return f(ctx, v) }
