package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse compiles a textual expression to its AST.
//
// Grammar (loosest binding first):
//
//	expr    := or
//	or      := and ("or" and)*
//	and     := not ("and" not)*
//	not     := "not" not | cmp
//	cmp     := add (cmpOp add)?
//	add     := primary (("+" | "-") primary)*
//	primary := int | string | bool | ident "(" args ")" | path | "(" expr ")"
//
// Keywords (and, or, not, true, false) are case-insensitive and
// whitespace-delimited. Paths are dotted identifiers resolved by the
// evaluation scope.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, fmt.Errorf("parse %q: unexpected %q at offset %d", src, p.peek().text, p.peek().pos)
	}
	return node, nil
}

// MustParse is Parse for hand-authored expressions in specs and tests.
func MustParse(src string) Node {
	node, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return node
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokSymbol // ( ) , + - == != <= >= < >
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++

		case unicode.IsDigit(c):
			start := i
			for i < len(src) && unicode.IsDigit(rune(src[i])) {
				i++
			}
			toks = append(toks, token{tokNumber, src[start:i], start})

		case c == '\'' || c == '"':
			quote := src[i]
			start := i
			i++
			for i < len(src) && src[i] != quote {
				i++
			}
			if i >= len(src) {
				return nil, fmt.Errorf("lex %q: unterminated string at offset %d", src, start)
			}
			toks = append(toks, token{tokString, src[start+1 : i], start})
			i++

		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(src) && isIdentRune(rune(src[i])) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})

		default:
			start := i
			two := ""
			if i+1 < len(src) {
				two = src[i : i+2]
			}
			switch two {
			case "==", "!=", "<=", ">=":
				toks = append(toks, token{tokSymbol, two, start})
				i += 2
				continue
			}
			switch c {
			case '(', ')', ',', '+', '-', '<', '>':
				toks = append(toks, token{tokSymbol, string(c), start})
				i++
			default:
				return nil, fmt.Errorf("lex %q: unexpected character %q at offset %d", src, c, start)
			}
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

func isIdentRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.'
}

type parser struct {
	src  string
	toks []token
	idx  int
}

func (p *parser) peek() token { return p.toks[p.idx] }

func (p *parser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func (p *parser) atEOF() bool { return p.peek().kind == tokEOF }

func (p *parser) peekKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	operands := []Node{left}
	for p.peekKeyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return Or{Operands: operands}, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	operands := []Node{left}
	for p.peekKeyword("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return And{Operands: operands}, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peekKeyword("not") {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	}
	return p.parseCompare()
}

func (p *parser) parseCompare() (Node, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokSymbol {
		if op, ok := compareOps[t.text]; ok {
			p.next()
			right, err := p.parseAdd()
			if err != nil {
				return nil, err
			}
			return Compare{Op: op, Left: left, Right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseAdd() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokSymbol || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if t.text == "+" {
			left = Add{Left: left, Right: right}
		} else {
			left = Sub{Left: left, Right: right}
		}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: bad number %q", p.src, t.text)
		}
		return Literal{Value: Int(n)}, nil

	case tokString:
		return Literal{Value: Str(t.text)}, nil

	case tokIdent:
		if strings.EqualFold(t.text, "true") {
			return Literal{Value: Bool(true)}, nil
		}
		if strings.EqualFold(t.text, "false") {
			return Literal{Value: Bool(false)}, nil
		}
		// Function call when immediately followed by a parenthesis.
		if p.peek().kind == tokSymbol && p.peek().text == "(" && !strings.Contains(t.text, ".") {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Fn: strings.ToLower(t.text), Args: args}, nil
		}
		return Property{Path: splitPath(t.text)}, nil

	case tokSymbol:
		if t.text == "(" {
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
		if t.text == "-" {
			// Unary minus on a numeric literal.
			inner, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			if lit, ok := inner.(Literal); ok {
				if n, ok := lit.Value.(Int); ok {
					return Literal{Value: Int(-n)}, nil
				}
			}
			return Sub{Left: Literal{Value: Int(0)}, Right: inner}, nil
		}
		return nil, fmt.Errorf("parse %q: unexpected %q at offset %d", p.src, t.text, t.pos)

	default:
		return nil, fmt.Errorf("parse %q: unexpected end of expression", p.src)
	}
}

func (p *parser) parseArgs() ([]Node, error) {
	var args []Node
	if p.peek().kind == tokSymbol && p.peek().text == ")" {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.next()
		if t.kind != tokSymbol {
			return nil, fmt.Errorf("parse %q: expected , or ) at offset %d", p.src, t.pos)
		}
		switch t.text {
		case ",":
			continue
		case ")":
			return args, nil
		default:
			return nil, fmt.Errorf("parse %q: expected , or ) but got %q at offset %d", p.src, t.text, t.pos)
		}
	}
}

func (p *parser) expect(sym string) error {
	t := p.next()
	if t.kind != tokSymbol || t.text != sym {
		return fmt.Errorf("parse %q: expected %q at offset %d", p.src, sym, t.pos)
	}
	return nil
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}
