package gotoon

import "strings"

// PartialState tags the outcome of a partial decode.
type PartialState int

const (
	PartialUndefinedInput PartialState = iota // No buffer was supplied (distinct from empty text).
	PartialSuccess                            // The full buffer decoded as-is.
	PartialRepaired                           // A shorter prefix decoded after dropping trailing lines.
	PartialFailed                             // No prefix decoded.
)

func (s PartialState) String() string {
	switch s {
	case PartialUndefinedInput:
		return "undefined-input"
	case PartialSuccess:
		return "successful-parse"
	case PartialRepaired:
		return "repaired-parse"
	default:
		return "failed-parse"
	}
}

// PartialResult carries the best-effort value for a possibly truncated
// buffer. Value is non-nil only for PartialSuccess and PartialRepaired.
type PartialResult struct {
	Value any
	State PartialState
}

// DecodePartial decodes a buffer sampled mid-stream. A nil pointer means no
// text was supplied yet; empty or whitespace text is attempted normally. On
// full-decode failure it scans line prefixes from longest to shortest,
// cutting at the first prefix whose last line looks structurally complete.
//
// Known limitation, kept deliberately: once a prefix looks complete the scan
// stops, even if decoding that prefix then fails. The heuristic also inspects
// one line at a time, so a cut point can be accepted while an earlier header
// still awaits its body; the candidate decode is what catches those.
func DecodePartial(text *string) PartialResult {
	if text == nil {
		return PartialResult{State: PartialUndefinedInput}
	}
	if r := TryDecode(*text); r.OK {
		return PartialResult{Value: r.Value, State: PartialSuccess}
	}
	lines := strings.Split(*text, "\n")
	for i := len(lines); i >= 1; i-- {
		candidate := strings.TrimRight(strings.Join(lines[:i], "\n"), " \t\r\n")
		if candidate == "" {
			continue
		}
		last := candidate
		if j := strings.LastIndexByte(candidate, '\n'); j >= 0 {
			last = candidate[j+1:]
		}
		if !looksComplete(last) {
			continue
		}
		if r := TryDecode(candidate); r.OK {
			if candidate != *text {
				return PartialResult{Value: r.Value, State: PartialRepaired}
			}
			return PartialResult{Value: r.Value, State: PartialSuccess}
		}
		break
	}
	return PartialResult{State: PartialFailed}
}

// looksComplete estimates whether a single line of the notation is
// structurally closed. Intentionally cheap: it runs on every streamed chunk
// and trades precision for speed.
func looksComplete(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	if line == "" {
		return true
	}
	// a header announcing nested content is a safe truncation point
	if strings.HasSuffix(line, ":") {
		return true
	}
	return strings.Count(line, "\"")%2 == 0
}
