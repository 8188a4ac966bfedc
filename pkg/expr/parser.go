package expr

import (
	"fmt"
	"strconv"
	"strings"

	vberrors "github.com/vango-dev/vbind/internal/errors"
)

// Parser turns expression text into an Expression.
// Implementations must be deterministic and free of side effects.
type Parser interface {
	Parse(src string) (*Expression, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(src string) (*Expression, error)

// Parse implements Parser.
func (f ParserFunc) Parse(src string) (*Expression, error) { return f(src) }

// Default is the built-in grammar.
var Default Parser = ParserFunc(Parse)

// Parse parses src with the built-in grammar.
func Parse(src string) (*Expression, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, parseError(src, err)
	}
	p := &parser{src: src, toks: toks}
	e, err := p.expression()
	if err != nil {
		return nil, parseError(src, err)
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, parseError(src, fmt.Errorf("unexpected %s at offset %d", t.kind, t.pos))
	}
	return e, nil
}

func parseError(src string, err error) error {
	return vberrors.New(vberrors.CodeParse).WithDetailf("%q", src).Wrap(err)
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind) (token, error) {
	t := p.next()
	if t.kind != k {
		return t, fmt.Errorf("expected %s, found %s at offset %d", k, t.kind, t.pos)
	}
	return t, nil
}

func (p *parser) expression() (*Expression, error) {
	start := p.peek().pos
	e := &Expression{VarTree: make(map[string]*Var)}
	w, err := p.primary(e)
	if err != nil {
		return nil, err
	}
	e.Words = append(e.Words, w)

	for p.peek().kind == tokPipe {
		p.next()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		call := FilterCall{Name: name.text}
		for p.peek().kind == tokColon {
			p.next()
			arg, err := p.arg()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		e.Filters = append(e.Filters, call)
	}
	e.Source = strings.TrimSpace(p.slice(start, p.peek().pos))
	return e, nil
}

// arg parses a filter argument. Paths become nested expressions that are
// evaluated against the same component as the outer expression.
func (p *parser) arg() (Arg, error) {
	if p.peek().kind == tokIdent && !isLiteralIdent(p.peek().text) {
		start := p.peek().pos
		sub := &Expression{VarTree: make(map[string]*Var)}
		w, err := p.primary(sub)
		if err != nil {
			return Arg{}, err
		}
		sub.Words = []Word{w}
		sub.Source = strings.TrimSpace(p.slice(start, p.peek().pos))
		return Arg{Exp: sub}, nil
	}
	w, err := p.primary(nil)
	if err != nil {
		return Arg{}, err
	}
	return Arg{Literal: w.Value}, nil
}

func (p *parser) primary(e *Expression) (Word, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		return Word{Text: t.text, Value: t.val}, nil
	case tokNumber:
		p.next()
		v, err := parseNumber(t.text)
		if err != nil {
			return Word{}, fmt.Errorf("invalid number %q at offset %d", t.text, t.pos)
		}
		return Word{Text: t.text, Value: v}, nil
	case tokIdent:
		switch t.text {
		case "true", "false":
			p.next()
			return Word{Text: t.text, Value: t.text == "true"}, nil
		case "null", "nil":
			p.next()
			return Word{Text: t.text}, nil
		}
		v, err := p.path()
		if err != nil {
			return Word{}, err
		}
		if e == nil {
			return Word{}, fmt.Errorf("unexpected path %q at offset %d", v.Name, t.pos)
		}
		if _, ok := e.VarTree[v.Name]; !ok {
			e.VarTree[v.Name] = v
		}
		return Word{Text: v.Name, Var: v.Name}, nil
	default:
		return Word{}, fmt.Errorf("unexpected %s at offset %d", t.kind, t.pos)
	}
}

func (p *parser) path() (*Var, error) {
	start := p.peek().pos
	root, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	v := &Var{Steps: []Step{{Kind: StepField, Key: root.text}}, WatchDepth: 1}

	for {
		switch p.peek().kind {
		case tokDot:
			p.next()
			name, err := p.expect(tokIdent)
			if err != nil {
				return nil, err
			}
			v.Steps = append(v.Steps, Step{Kind: StepField, Key: name.text})
		case tokLBrack:
			p.next()
			step, err := p.bracket(v)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBrack); err != nil {
				return nil, err
			}
			v.Steps = append(v.Steps, step)
		default:
			v.Name = strings.TrimSpace(p.slice(start, p.peek().pos))
			if v.IsThis() {
				// this.x is probed on the component itself.
				v.WatchDepth = 0
			}
			return v, nil
		}
	}
}

func (p *parser) bracket(parent *Var) (Step, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return Step{}, fmt.Errorf("invalid index %q at offset %d", t.text, t.pos)
		}
		return Step{Kind: StepIndex, Key: n}, nil
	case tokString:
		p.next()
		return Step{Kind: StepIndex, Key: t.val}, nil
	case tokIdent:
		sub, err := p.path()
		if err != nil {
			return Step{}, err
		}
		if parent.SubVars == nil {
			parent.SubVars = make(map[string]*Var)
		}
		parent.SubVars[sub.Name] = sub
		return Step{Kind: StepVar, Var: sub.Name}, nil
	default:
		return Step{}, fmt.Errorf("unexpected %s in index at offset %d", t.kind, t.pos)
	}
}

// slice returns the source between two rune offsets.
func (p *parser) slice(from, to int) string {
	rs := []rune(p.src)
	if to > len(rs) {
		to = len(rs)
	}
	return string(rs[from:to])
}

func isLiteralIdent(s string) bool {
	switch s {
	case "true", "false", "null", "nil":
		return true
	}
	return false
}

func parseNumber(s string) (any, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	return strconv.ParseFloat(s, 64)
}
