package toon

import "fmt"

// Syntax issue codes (exported consts for type safety by convention).
const (
	CodeEmptyInput          = "empty_input"
	CodeBadIndent           = "bad_indent"
	CodeBadHeader           = "bad_header"
	CodeUnexpectedLine      = "unexpected_line"
	CodeUnterminatedString  = "unterminated_string"
	CodeDuplicateKey        = "duplicate_key"
	CodeLengthMismatch      = "length_mismatch"
	CodeRowArityMismatch    = "row_arity_mismatch"
	CodeMaxDepthExceeded    = "max_depth"
	CodeMaxBytesExceeded    = "max_bytes"
	CodeForbiddenKey        = "forbidden_key"
)

// SyntaxError reports a grammar-level failure with the 1-based line it was
// detected on (0 when the failure is not tied to a line).
type SyntaxError struct {
	Line    int
	Code    string
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("toon: line %d: %s", e.Line, e.Message)
	}
	return "toon: " + e.Message
}

func errAt(line int, code, msg string) *SyntaxError {
	return &SyntaxError{Line: line, Code: code, Message: msg}
}
