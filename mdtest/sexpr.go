// Package mdtest extracts lowering test cases from Markdown documents. A
// case is a "Test:" heading followed by a tria-ast input fence holding an
// s-expression AST and one or more assertion fences (tac, diagnostics,
// error) describing the expected lowering output.
package mdtest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SExprKind represents the type of an SExpr
type SExprKind int

const (
	SymbolExpr SExprKind = iota
	StringExpr
	IntExpr
	FloatExpr
	ListExpr
)

// SExpr is one parsed s-expression value.
type SExpr struct {
	Kind SExprKind

	Text  string // SymbolExpr, StringExpr
	Int   int64  // IntExpr
	Float float64

	Items []*SExpr // ListExpr
}

func (e *SExpr) String() string {
	switch e.Kind {
	case SymbolExpr:
		return e.Text
	case StringExpr:
		return strconv.Quote(e.Text)
	case IntExpr:
		return strconv.FormatInt(e.Int, 10)
	case FloatExpr:
		return strconv.FormatFloat(e.Float, 'g', -1, 64)
	case ListExpr:
		parts := make([]string, len(e.Items))
		for i, item := range e.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_SEXPR_KIND_%d", e.Kind)
	}
}

// Head returns the leading symbol of a list, or "" when the expression is
// not a list starting with a symbol.
func (e *SExpr) Head() string {
	if e.Kind == ListExpr && len(e.Items) > 0 && e.Items[0].Kind == SymbolExpr {
		return e.Items[0].Text
	}
	return ""
}

// Args returns a list's items after the head symbol.
func (e *SExpr) Args() []*SExpr {
	if e.Kind != ListExpr || len(e.Items) == 0 {
		return nil
	}
	return e.Items[1:]
}

// Parse parses a single s-expression from input. Trailing content after the
// expression is an error.
func Parse(input string) (*SExpr, error) {
	p := &parser{input: input}
	p.skipSpace()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected trailing content at offset %d: %q", p.pos, p.rest())
	}
	return expr, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) rest() string {
	r := p.input[p.pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ';' {
			// comment to end of line
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(c)) {
			return
		}
		p.pos++
	}
}

func (p *parser) parseExpr() (*SExpr, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch c := p.input[p.pos]; {
	case c == '(':
		return p.parseList()
	case c == '"':
		return p.parseString()
	case c == ')':
		return nil, fmt.Errorf("unexpected ')' at offset %d", p.pos)
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseList() (*SExpr, error) {
	p.pos++ // consume '('
	list := &SExpr{Kind: ListExpr}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated list")
		}
		if p.input[p.pos] == ')' {
			p.pos++
			return list, nil
		}
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
}

func (p *parser) parseString() (*SExpr, error) {
	p.pos++ // consume opening quote
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '"' {
			p.pos++
			return &SExpr{Kind: StringExpr, Text: sb.String()}, nil
		}
		if c == '\\' && p.pos+1 < len(p.input) {
			p.pos++
			switch p.input[p.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(p.input[p.pos])
			}
			p.pos++
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	return nil, fmt.Errorf("unterminated string")
}

func isAtomChar(c byte) bool {
	switch c {
	case '(', ')', '"', ';':
		return false
	}
	return !unicode.IsSpace(rune(c))
}

func (p *parser) parseAtom() (*SExpr, error) {
	start := p.pos
	for p.pos < len(p.input) && isAtomChar(p.input[p.pos]) {
		p.pos++
	}
	text := p.input[start:p.pos]
	if text == "" {
		return nil, fmt.Errorf("empty atom at offset %d", start)
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &SExpr{Kind: IntExpr, Int: i}, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && strings.ContainsAny(text, ".eE") {
		return &SExpr{Kind: FloatExpr, Float: f}, nil
	}
	return &SExpr{Kind: SymbolExpr, Text: text}, nil
}
