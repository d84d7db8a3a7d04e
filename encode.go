package gotoon

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/gotoon/source/toon"
)

// Encode renders a value tree as canonical notation text: sorted keys, inline
// arrays for primitive sequences, tabular form for uniform flat-object
// sequences, dash-prefixed list rows otherwise. decode(Encode(v)) is
// structurally equal to v for any cycle-free tree.
func Encode(v any) (string, error) {
	nv, err := normalizeValue(v)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	switch t := nv.(type) {
	case map[string]any:
		if len(t) == 0 {
			return "", fmt.Errorf("gotoon: an empty object has no document form")
		}
		if err := encodeObject(&b, t, 0); err != nil {
			return "", err
		}
	case []any:
		if err := encodeArray(&b, "", "", t, 1); err != nil {
			return "", err
		}
	default:
		lit, err := scalarLiteral(t)
		if err != nil {
			return "", err
		}
		b.WriteString(lit)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func encodeObject(b *strings.Builder, m map[string]any, depth int) error {
	for _, k := range sortedKeys(m) {
		if err := encodeField(b, indent(depth), k, m[k], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// encodeField writes one field. lead is the text preceding the key on its
// first line (indentation, possibly a dash prefix); childDepth is where any
// nested block goes.
func encodeField(b *strings.Builder, lead, key string, v any, childDepth int) error {
	k := keyLiteral(key)
	switch t := v.(type) {
	case map[string]any:
		b.WriteString(lead + k + ":\n")
		return encodeObject(b, t, childDepth)
	case []any:
		return encodeArray(b, lead, k, t, childDepth)
	default:
		lit, err := scalarLiteral(t)
		if err != nil {
			return err
		}
		b.WriteString(lead + k + ": " + lit + "\n")
		return nil
	}
}

func encodeArray(b *strings.Builder, lead, name string, arr []any, rowDepth int) error {
	n := strconv.Itoa(len(arr))
	fields := tabularFields(arr)
	switch {
	case allPrimitive(arr):
		cells := make([]string, len(arr))
		for i, e := range arr {
			lit, err := scalarLiteral(e)
			if err != nil {
				return err
			}
			cells[i] = lit
		}
		b.WriteString(lead + name + "[" + n + "]:")
		if len(cells) > 0 {
			b.WriteString(" " + strings.Join(cells, ","))
		}
		b.WriteByte('\n')
		return nil
	case fields != nil:
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = keyLiteral(f)
		}
		b.WriteString(lead + name + "[" + n + "]{" + strings.Join(quoted, ",") + "}:\n")
		for _, e := range arr {
			row := e.(map[string]any)
			cells := make([]string, len(fields))
			for i, f := range fields {
				lit, err := scalarLiteral(row[f])
				if err != nil {
					return err
				}
				cells[i] = lit
			}
			b.WriteString(indent(rowDepth) + strings.Join(cells, ",") + "\n")
		}
		return nil
	default:
		b.WriteString(lead + name + "[" + n + "]:\n")
		for _, e := range arr {
			if err := encodeListItem(b, e, rowDepth); err != nil {
				return err
			}
		}
		return nil
	}
}

func encodeListItem(b *strings.Builder, item any, rowDepth int) error {
	switch t := item.(type) {
	case map[string]any:
		keys := sortedKeys(t)
		if len(keys) == 0 {
			return fmt.Errorf("gotoon: an empty object cannot be a list item")
		}
		if err := encodeField(b, indent(rowDepth)+"- ", keys[0], t[keys[0]], rowDepth+2); err != nil {
			return err
		}
		for _, k := range keys[1:] {
			if err := encodeField(b, indent(rowDepth+1), k, t[k], rowDepth+2); err != nil {
				return err
			}
		}
		return nil
	case []any:
		return fmt.Errorf("gotoon: arrays nested directly in lists need an object wrapper")
	default:
		lit, err := scalarLiteral(t)
		if err != nil {
			return err
		}
		b.WriteString(indent(rowDepth) + "- " + lit + "\n")
		return nil
	}
}

// ---- literals and normalization ----

func scalarLiteral(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", fmt.Errorf("gotoon: cannot encode non-finite number")
		}
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case json.Number:
		if !toon.IsNumberLiteral(string(t)) {
			return "", fmt.Errorf("gotoon: invalid number literal %q", string(t))
		}
		return string(t), nil
	case string:
		if needsQuote(t) {
			return quoteString(t), nil
		}
		return t, nil
	default:
		return "", fmt.Errorf("gotoon: unsupported scalar type %T", v)
	}
}

func needsQuote(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	if s == "true" || s == "false" || s == "null" || s == "-" {
		return true
	}
	if toon.IsNumberLiteral(s) {
		return true
	}
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "\"") {
		return true
	}
	return strings.ContainsAny(s, ",:\"[]{}\n\r\t")
}

func keyLiteral(k string) string {
	if k == "" || k != strings.TrimSpace(k) || strings.HasPrefix(k, "\"") ||
		strings.ContainsAny(k, ",:\"[]{}\n\r\t") {
		return quoteString(k)
	}
	return k
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func allPrimitive(arr []any) bool {
	for _, e := range arr {
		if isComposite(e) {
			return false
		}
	}
	return true
}

// tabularFields returns the shared sorted field set when every element is a
// flat object over identical keys, nil otherwise.
func tabularFields(arr []any) []string {
	if len(arr) == 0 {
		return nil
	}
	var fields []string
	for i, e := range arr {
		m, ok := e.(map[string]any)
		if !ok || len(m) == 0 {
			return nil
		}
		for _, v := range m {
			if isComposite(v) {
				return nil
			}
		}
		keys := sortedKeys(m)
		if i == 0 {
			fields = keys
			continue
		}
		if len(keys) != len(fields) {
			return nil
		}
		for j := range keys {
			if keys[j] != fields[j] {
				return nil
			}
		}
	}
	return fields
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

// normalizeValue converts arbitrary Go values into the canonical tree shape
// (map[string]any / []any / scalars, numerics as float64).
func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64, json.Number:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = ne
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := normalizeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ne, err := normalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("gotoon: unsupported map key type %s", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ne, err := normalizeValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = ne
		}
		return out, nil
	}
	return nil, fmt.Errorf("gotoon: unsupported type %T", v)
}
