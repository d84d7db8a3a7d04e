package gotoon

import (
	"regexp"

	"github.com/reoring/gotoon/source/toon"
)

// Pollution patterns are process-wide, compiled once, never mutated. The
// grammar cannot synthesize a key that was not present in the source text, so
// a raw-text miss on both patterns makes the tree scan unnecessary.
var (
	protoKeyPattern       = regexp.MustCompile(`__proto__`)
	constructorKeyPattern = regexp.MustCompile(`constructor`)
)

// SecureDecode decodes text and rejects structures carrying prototype
// pollution keys: an explicit "__proto__" data key, or a "constructor" key
// whose value owns a "prototype" key. Scalar roots cannot carry pollution and
// are returned immediately.
func SecureDecode(text string, opts ...DecodeOpt) (any, error) {
	v, err := Decode(text, opts...)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
	default:
		return v, nil
	}
	if !protoKeyPattern.MatchString(text) && !constructorKeyPattern.MatchString(text) {
		return v, nil
	}
	if err := scanForbidden(v); err != nil {
		return nil, err
	}
	return v, nil
}

// scanForbidden walks the tree breadth-first with an explicit queue so that
// hostile nesting depth cannot exhaust the stack.
func scanForbidden(root any) error {
	queue := []any{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		switch n := node.(type) {
		case map[string]any:
			if _, ok := n["__proto__"]; ok {
				return errForbiddenProperty()
			}
			if c, ok := n["constructor"]; ok {
				if cm, ok := c.(map[string]any); ok {
					if _, ok := cm["prototype"]; ok {
						return errForbiddenProperty()
					}
				}
			}
			for _, v := range n {
				if isComposite(v) {
					queue = append(queue, v)
				}
			}
		case []any:
			for _, v := range n {
				if isComposite(v) {
					queue = append(queue, v)
				}
			}
		}
	}
	return nil
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func errForbiddenProperty() error {
	return &toon.SyntaxError{Code: toon.CodeForbiddenKey, Message: "Object contains forbidden prototype property"}
}
