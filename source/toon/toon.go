// Package toon tokenizes the line-oriented, indentation-based notation into
// engine tokens. It is the trusted grammar primitive: it either produces a
// token stream describing exactly one root value, or a *SyntaxError.
package toon

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	eng "github.com/reoring/gotoon/internal/engine"
)

// Options bundles tokenizer limits for hostile inputs.
type Options struct {
	MaxDepth int   // maximum nesting depth; 0 disables the check
	MaxBytes int64 // maximum input size in bytes; 0 disables the check
}

// NewBytes tokenizes b eagerly and returns a TokenSource over the result.
// Grammar failures surface from the first NextToken call.
func NewBytes(b []byte, opt Options) eng.TokenSource {
	if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
		return &tokenSource{err: errAt(0, CodeMaxBytesExceeded, "max bytes exceeded")}
	}
	p := &parser{maxDepth: opt.MaxDepth}
	if err := p.splitLines(string(b)); err != nil {
		return &tokenSource{err: err}
	}
	if err := p.parseDocument(); err != nil {
		return &tokenSource{err: err}
	}
	return &tokenSource{toks: p.toks}
}

// NewReader drains r and tokenizes the result.
func NewReader(r io.Reader, opt Options) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &tokenSource{err: err}
	}
	return NewBytes(b, opt)
}

type tokenSource struct {
	toks []eng.Token
	i    int
	err  error
	loc  int64
}

func (s *tokenSource) NextToken() (eng.Token, error) {
	if s.err != nil {
		return eng.Token{}, s.err
	}
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	s.loc = t.Offset
	return t, nil
}

func (s *tokenSource) Location() int64 { return s.loc }

// numberPattern admits JSON-style numbers; everything else unquoted is a string.
var numberPattern = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// IsNumberLiteral reports whether s would decode as a number when unquoted.
// Encoders use it to decide which strings need quoting.
func IsNumberLiteral(s string) bool { return numberPattern.MatchString(s) }

type line struct {
	depth int
	text  string // content with indentation stripped
	num   int    // 1-based line number
	off   int64  // byte offset of the line start
}

type parser struct {
	lines    []line
	pos      int
	toks     []eng.Token
	maxDepth int
	nesting  int
}

func (p *parser) splitLines(text string) error {
	var off int64
	for n, raw := range strings.Split(text, "\n") {
		ln := line{num: n + 1, off: off}
		off += int64(len(raw)) + 1
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		if indent < len(raw) && raw[indent] == '\t' {
			return errAt(ln.num, CodeBadIndent, "tab indentation is not allowed")
		}
		if indent%2 != 0 {
			return errAt(ln.num, CodeBadIndent, "indentation must be a multiple of two spaces")
		}
		ln.depth = indent / 2
		ln.text = raw[indent:]
		p.lines = append(p.lines, ln)
	}
	return nil
}

func (p *parser) parseDocument() error {
	if len(p.lines) == 0 {
		return errAt(0, CodeEmptyInput, "empty input")
	}
	first := p.lines[0]
	if first.depth != 0 {
		return errAt(first.num, CodeBadIndent, "unexpected indentation at document root")
	}
	switch {
	case strings.HasPrefix(first.text, "["):
		hdr, err := parseArrayHeader(first.text[1:], first.num)
		if err != nil {
			return err
		}
		p.pos = 1
		if err := p.emitArray(hdr, first, 1); err != nil {
			return err
		}
	case len(p.lines) == 1 && !isFieldLine(first.text):
		tok, err := scalarToken(first.text, first)
		if err != nil {
			return err
		}
		p.toks = append(p.toks, tok)
		p.pos = 1
	default:
		p.emit(eng.Token{Kind: eng.KindBeginObject, Offset: first.off})
		if err := p.enter(first); err != nil {
			return err
		}
		if err := p.parseObjectBlock(0); err != nil {
			return err
		}
		p.exit()
		p.emit(eng.Token{Kind: eng.KindEndObject, Offset: first.off})
	}
	if p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		return errAt(ln.num, CodeUnexpectedLine, "content after end of document")
	}
	return nil
}

// parseObjectBlock consumes consecutive field lines at depth d.
func (p *parser) parseObjectBlock(d int) error {
	seen := map[string]struct{}{}
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.depth < d {
			return nil
		}
		if ln.depth > d {
			return errAt(ln.num, CodeBadIndent, "unexpected indentation")
		}
		p.pos++
		if err := p.parseField(ln.text, ln, d+1, seen); err != nil {
			return err
		}
	}
	return nil
}

// parseField emits one key/value pair. childDepth is the depth at which the
// field's nested block, if any, must appear.
func (p *parser) parseField(content string, ln line, childDepth int, seen map[string]struct{}) error {
	hdr, err := parseFieldHeader(content, ln.num)
	if err != nil {
		return err
	}
	if _, dup := seen[hdr.key]; dup {
		return errAt(ln.num, CodeDuplicateKey, "duplicate key "+strconv.Quote(hdr.key))
	}
	seen[hdr.key] = struct{}{}
	p.emit(eng.Token{Kind: eng.KindKey, String: hdr.key, Offset: ln.off})
	if hdr.isArray {
		return p.emitArray(hdr, ln, childDepth)
	}
	rest := strings.TrimSpace(hdr.rest)
	if rest == "" {
		// nested object (possibly empty)
		p.emit(eng.Token{Kind: eng.KindBeginObject, Offset: ln.off})
		if err := p.enter(ln); err != nil {
			return err
		}
		if p.pos < len(p.lines) && p.lines[p.pos].depth >= childDepth {
			if err := p.parseObjectBlock(childDepth); err != nil {
				return err
			}
		}
		p.exit()
		p.emit(eng.Token{Kind: eng.KindEndObject, Offset: ln.off})
		return nil
	}
	tok, err := scalarToken(rest, ln)
	if err != nil {
		return err
	}
	p.toks = append(p.toks, tok)
	return nil
}

// emitArray handles the three array productions: inline primitives, tabular
// rows, and dash-prefixed list rows. rowDepth is where body rows must sit.
func (p *parser) emitArray(hdr fieldHeader, ln line, rowDepth int) error {
	p.emit(eng.Token{Kind: eng.KindBeginArray, Offset: ln.off})
	if err := p.enter(ln); err != nil {
		return err
	}
	switch {
	case len(hdr.fields) > 0:
		if err := p.emitTabularRows(hdr, rowDepth); err != nil {
			return err
		}
	case strings.TrimSpace(hdr.rest) != "":
		cells, err := splitCells(strings.TrimSpace(hdr.rest), ln.num)
		if err != nil {
			return err
		}
		// inline arrays carry their full contents on one line; the declared
		// length is authoritative
		if len(cells) != hdr.length {
			return errAt(ln.num, CodeLengthMismatch,
				"array declares "+strconv.Itoa(hdr.length)+" elements, found "+strconv.Itoa(len(cells)))
		}
		for _, c := range cells {
			tok, err := scalarToken(c, ln)
			if err != nil {
				return err
			}
			p.toks = append(p.toks, tok)
		}
	default:
		if err := p.emitListRows(hdr, rowDepth); err != nil {
			return err
		}
	}
	p.exit()
	p.emit(eng.Token{Kind: eng.KindEndArray, Offset: ln.off})
	return nil
}

// emitTabularRows consumes CSV rows under a {field} header. Fewer rows than
// declared are tolerated (the buffer may be truncated mid-stream); extras are
// rejected.
func (p *parser) emitTabularRows(hdr fieldHeader, rowDepth int) error {
	rows := 0
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.depth < rowDepth {
			break
		}
		if ln.depth > rowDepth {
			return errAt(ln.num, CodeBadIndent, "unexpected indentation in tabular rows")
		}
		p.pos++
		rows++
		if rows > hdr.length {
			return errAt(ln.num, CodeLengthMismatch,
				"array declares "+strconv.Itoa(hdr.length)+" rows, found more")
		}
		cells, err := splitCells(ln.text, ln.num)
		if err != nil {
			return err
		}
		if len(cells) != len(hdr.fields) {
			return errAt(ln.num, CodeRowArityMismatch,
				"row has "+strconv.Itoa(len(cells))+" cells, header declares "+strconv.Itoa(len(hdr.fields)))
		}
		p.emit(eng.Token{Kind: eng.KindBeginObject, Offset: ln.off})
		if err := p.enter(ln); err != nil {
			return err
		}
		for i, f := range hdr.fields {
			p.emit(eng.Token{Kind: eng.KindKey, String: f, Offset: ln.off})
			tok, err := scalarToken(cells[i], ln)
			if err != nil {
				return err
			}
			p.toks = append(p.toks, tok)
		}
		p.exit()
		p.emit(eng.Token{Kind: eng.KindEndObject, Offset: ln.off})
	}
	return nil
}

// emitListRows consumes "- item" rows. Items are scalars, or objects opened
// by a "- field: value" row whose remaining fields sit two levels below the
// array header (one past the row, matching the two-column dash prefix).
func (p *parser) emitListRows(hdr fieldHeader, rowDepth int) error {
	rows := 0
	for p.pos < len(p.lines) {
		ln := p.lines[p.pos]
		if ln.depth < rowDepth {
			break
		}
		if ln.depth > rowDepth || !isListRow(ln.text) {
			return errAt(ln.num, CodeUnexpectedLine, "expected a \"- \" list row")
		}
		p.pos++
		rows++
		if rows > hdr.length {
			return errAt(ln.num, CodeLengthMismatch,
				"array declares "+strconv.Itoa(hdr.length)+" rows, found more")
		}
		rest := strings.TrimSpace(strings.TrimPrefix(ln.text, "-"))
		if isFieldLine(rest) {
			if err := p.emitListObject(rest, ln, rowDepth); err != nil {
				return err
			}
			continue
		}
		tok, err := scalarToken(rest, ln)
		if err != nil {
			return err
		}
		p.toks = append(p.toks, tok)
	}
	return nil
}

func (p *parser) emitListObject(first string, ln line, rowDepth int) error {
	fieldDepth := rowDepth + 1
	p.emit(eng.Token{Kind: eng.KindBeginObject, Offset: ln.off})
	if err := p.enter(ln); err != nil {
		return err
	}
	seen := map[string]struct{}{}
	if err := p.parseField(first, ln, fieldDepth+1, seen); err != nil {
		return err
	}
	for p.pos < len(p.lines) {
		next := p.lines[p.pos]
		if next.depth != fieldDepth || isListRow(next.text) {
			break
		}
		p.pos++
		if err := p.parseField(next.text, next, fieldDepth+1, seen); err != nil {
			return err
		}
	}
	p.exit()
	p.emit(eng.Token{Kind: eng.KindEndObject, Offset: ln.off})
	return nil
}

func (p *parser) emit(t eng.Token) { p.toks = append(p.toks, t) }

func (p *parser) enter(ln line) error {
	p.nesting++
	if p.maxDepth > 0 && p.nesting > p.maxDepth {
		return errAt(ln.num, CodeMaxDepthExceeded, "max depth exceeded")
	}
	return nil
}

func (p *parser) exit() { p.nesting-- }

func isListRow(content string) bool {
	return content == "-" || strings.HasPrefix(content, "- ")
}

// ---- line-level parsing helpers ----

type fieldHeader struct {
	key     string
	isArray bool
	length  int
	fields  []string
	rest    string // everything after the terminating ':'
}

// isFieldLine reports whether content could open a key/value field, i.e. a
// field header parses.
func isFieldLine(content string) bool {
	_, err := parseFieldHeader(content, 0)
	return err == nil
}

func parseFieldHeader(content string, lineNo int) (fieldHeader, error) {
	var hdr fieldHeader
	rest := content
	if strings.HasPrefix(rest, "\"") {
		key, rem, err := decodeQuoted(rest, lineNo)
		if err != nil {
			return hdr, err
		}
		hdr.key = key
		rest = rem
	} else {
		stop := strings.IndexAny(rest, ":[")
		if stop < 0 {
			return hdr, errAt(lineNo, CodeBadHeader, "expected a key followed by ':'")
		}
		hdr.key = strings.TrimSpace(rest[:stop])
		rest = rest[stop:]
		if hdr.key == "" {
			return hdr, errAt(lineNo, CodeBadHeader, "empty key")
		}
	}
	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return hdr, errAt(lineNo, CodeBadHeader, "unterminated length marker")
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil || n < 0 {
			return hdr, errAt(lineNo, CodeBadHeader, "invalid length marker")
		}
		hdr.isArray = true
		hdr.length = n
		rest = rest[end+1:]
		if strings.HasPrefix(rest, "{") {
			close := strings.IndexByte(rest, '}')
			if close < 0 {
				return hdr, errAt(lineNo, CodeBadHeader, "unterminated field list")
			}
			cells, err := splitCells(rest[1:close], lineNo)
			if err != nil {
				return hdr, err
			}
			seen := map[string]struct{}{}
			for i, c := range cells {
				f, err := headerFieldName(c, lineNo)
				if err != nil {
					return hdr, err
				}
				if _, dup := seen[f]; dup {
					return hdr, errAt(lineNo, CodeDuplicateKey, "duplicate field "+strconv.Quote(f))
				}
				seen[f] = struct{}{}
				cells[i] = f
			}
			if len(cells) == 0 {
				return hdr, errAt(lineNo, CodeBadHeader, "empty field list")
			}
			hdr.fields = cells
			rest = rest[close+1:]
		}
	}
	if !strings.HasPrefix(rest, ":") {
		return hdr, errAt(lineNo, CodeBadHeader, "expected ':' after key")
	}
	hdr.rest = rest[1:]
	return hdr, nil
}

// parseArrayHeader parses a root-level "[N]..." header; content starts just
// past the '['.
func parseArrayHeader(content string, lineNo int) (fieldHeader, error) {
	hdr, err := parseFieldHeader("\"\"["+content, lineNo)
	if err != nil {
		return hdr, err
	}
	return hdr, nil
}

func headerFieldName(cell string, lineNo int) (string, error) {
	if strings.HasPrefix(cell, "\"") {
		name, rem, err := decodeQuoted(cell, lineNo)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(rem) != "" {
			return "", errAt(lineNo, CodeBadHeader, "malformed field name")
		}
		return name, nil
	}
	if cell == "" {
		return "", errAt(lineNo, CodeBadHeader, "empty field name")
	}
	return cell, nil
}

// scalarToken interprets a trimmed scalar literal.
func scalarToken(s string, ln line) (eng.Token, error) {
	switch {
	case s == "":
		return eng.Token{Kind: eng.KindString, Offset: ln.off}, nil
	case strings.HasPrefix(s, "\""):
		v, rem, err := decodeQuoted(s, ln.num)
		if err != nil {
			return eng.Token{}, err
		}
		if strings.TrimSpace(rem) != "" {
			return eng.Token{}, errAt(ln.num, CodeUnexpectedLine, "content after closing quote")
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: ln.off}, nil
	case s == "true" || s == "false":
		return eng.Token{Kind: eng.KindBool, Bool: s == "true", Offset: ln.off}, nil
	case s == "null":
		return eng.Token{Kind: eng.KindNull, Offset: ln.off}, nil
	case numberPattern.MatchString(s):
		return eng.Token{Kind: eng.KindNumber, Number: s, Offset: ln.off}, nil
	default:
		if strings.Count(s, "\"")%2 != 0 {
			return eng.Token{}, errAt(ln.num, CodeUnterminatedString, "unterminated string")
		}
		return eng.Token{Kind: eng.KindString, String: s, Offset: ln.off}, nil
	}
}

// decodeQuoted decodes a leading double-quoted string and returns the
// remainder of the input.
func decodeQuoted(s string, lineNo int) (string, string, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", errAt(lineNo, CodeUnterminatedString, "unterminated escape sequence")
			}
			i++
			switch s[i] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return "", "", errAt(lineNo, CodeUnterminatedString, "unsupported escape sequence")
			}
		default:
			b.WriteByte(c)
		}
		i++
	}
	return "", "", errAt(lineNo, CodeUnterminatedString, "unterminated string")
}

// splitCells splits comma-separated cells, honoring quoted sections. Cells
// come back trimmed of surrounding spaces.
func splitCells(s string, lineNo int) ([]string, error) {
	var cells []string
	var b strings.Builder
	inQuote := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
			b.WriteByte(c)
		case c == ',':
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if inQuote {
		return nil, errAt(lineNo, CodeUnterminatedString, "unterminated string")
	}
	cells = append(cells, strings.TrimSpace(b.String()))
	return cells, nil
}
