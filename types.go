package gotoon

// NumberMode dictates how numbers in the notation are interpreted.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Plain float64 values (default for model output).
	NumberJSONNumber                   // Preserve json.Number for lossless round-trips.
)

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	NumberMode NumberMode
	MaxDepth   int   // Maximum nesting depth; 0 disables the check.
	MaxBytes   int64 // Maximum input size in bytes; 0 disables the check.
}
