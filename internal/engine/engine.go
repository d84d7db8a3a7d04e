package engine

import (
	"encoding/json"
	"io"
	"strconv"
)

// Kind represents token kinds emitted by a grammar source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string // key/string payload
	Number string // number payload, kept as text
	Bool   bool
	Offset int64
}

// TokenSource is the minimal interface the engine consumes.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NumberFunc converts a number token's text into its in-tree representation.
type NumberFunc func(string) (any, error)

// Float64Number interprets number tokens as float64.
func Float64Number(s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// KeepNumber preserves number tokens as json.Number.
func KeepNumber(s string) (any, error) { return json.Number(s), nil }

// BuildValue assembles a generic value tree from the token source. Objects
// become map[string]any, arrays []any.
func BuildValue(src TokenSource, num NumberFunc) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return buildValue(src, tok, num)
}

func buildValue(src TokenSource, tok Token, num NumberFunc) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return buildObject(src, num)
	case KindBeginArray:
		return buildArray(src, num)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return num(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func buildObject(src TokenSource, num NumberFunc) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := buildValue(src, vt, num)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func buildArray(src TokenSource, num NumberFunc) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := buildValue(src, tok, num)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
