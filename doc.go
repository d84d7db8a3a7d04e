// Package gotoon provides:
//
// - Secure decoding of a line-oriented, indentation-based notation into a
//   generic value tree, with prototype-pollution key rejection
// - A discriminated result model (DecodeResult/ValidationResult) bridging
//   decoded values into caller-supplied Schema implementations
// - Partial decoding of truncated, mid-stream buffers, recovering the longest
//   structurally valid prefix
// - A validate-with-repair orchestrator for text produced by generating
//   models, with a single uniform terminal error (NoResultError)
//
// Design policy:
// - Keep only public APIs in the root package; put the grammar tokenizer
//   under source/toon and value assembly under internal/engine.
// - Prefer the non-throwing result forms; the error-returning forms are thin
//   adapters over them.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	v, err := gotoon.SecureDecode(text)
//	typed, err := gotoon.DecodeValidate(ctx, text, schema)
//	out := gotoon.DecodePartial(&buffer)
//	typed, err := gotoon.DecodeValidateWithRepair(ctx, text, schema, repairFn, gen)
package gotoon
