package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokDot
	tokLBrack
	tokRBrack
	tokPipe
	tokColon
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokDot:
		return `"."`
	case tokLBrack:
		return `"["`
	case tokRBrack:
		return `"]"`
	case tokPipe:
		return `"|"`
	case tokColon:
		return `":"`
	default:
		return "unknown"
	}
}

type token struct {
	kind tokenKind
	text string // raw source text
	val  string // unquoted value for strings
	pos  int
}

// lex splits src into tokens.
func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '.' && (i+1 >= len(rs) || !unicode.IsDigit(rs[i+1])):
			toks = append(toks, token{kind: tokDot, text: ".", pos: i})
			i++
		case r == '[':
			toks = append(toks, token{kind: tokLBrack, text: "[", pos: i})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokRBrack, text: "]", pos: i})
			i++
		case r == '|':
			toks = append(toks, token{kind: tokPipe, text: "|", pos: i})
			i++
		case r == ':':
			toks = append(toks, token{kind: tokColon, text: ":", pos: i})
			i++
		case r == '\'' || r == '"':
			j, val, err := lexString(rs, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: string(rs[i:j]), val: val, pos: i})
			i = j
		case unicode.IsDigit(r) || r == '.' || (r == '-' && i+1 < len(rs) && (unicode.IsDigit(rs[i+1]) || rs[i+1] == '.')):
			j := i + 1
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.' || rs[j] == 'e' || rs[j] == 'E') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j]), pos: i})
			i = j
		case isIdentStart(r):
			j := i + 1
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[i:j]), pos: i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

func lexString(rs []rune, start int) (int, string, error) {
	quote := rs[start]
	var b strings.Builder
	for i := start + 1; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) {
			i++
			switch rs[i] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(rs[i])
			}
			continue
		}
		if r == quote {
			return i + 1, b.String(), nil
		}
		b.WriteRune(r)
	}
	return 0, "", fmt.Errorf("unterminated string at offset %d", start)
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '-'
}
