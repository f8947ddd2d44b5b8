package equation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// The formula language is a closed algebraic grammar: +, -, *, /, ^ (right
// associative), unary minus, parentheses, numbers, identifiers, and calls to
// a fixed set of named functions. Identifiers resolve against the caller's
// bindings; anything else is a parse or eval error.

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t' || l.input[l.pos] == '\n') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.input[l.pos]

	switch c {
	case '+':
		l.pos++
		return token{tokPlus, "+", start}, nil
	case '-':
		l.pos++
		return token{tokMinus, "-", start}, nil
	case '*':
		// Accept Python-style ** as exponentiation.
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '*' {
			l.pos += 2
			return token{tokCaret, "**", start}, nil
		}
		l.pos++
		return token{tokStar, "*", start}, nil
	case '/':
		l.pos++
		return token{tokSlash, "/", start}, nil
	case '^':
		l.pos++
		return token{tokCaret, "^", start}, nil
	case '(':
		l.pos++
		return token{tokLParen, "(", start}, nil
	case ')':
		l.pos++
		return token{tokRParen, ")", start}, nil
	case ',':
		l.pos++
		return token{tokComma, ",", start}, nil
	}

	if c >= '0' && c <= '9' || c == '.' {
		for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.' ||
			l.input[l.pos] == 'e' || l.input[l.pos] == 'E' ||
			((l.input[l.pos] == '+' || l.input[l.pos] == '-') && l.pos > start && (l.input[l.pos-1] == 'e' || l.input[l.pos-1] == 'E'))) {
			l.pos++
		}
		return token{tokNumber, l.input[start:l.pos], start}, nil
	}

	if isIdentStart(c) {
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{tokIdent, l.input[start:l.pos], start}, nil
	}

	return token{}, eris.Errorf("equation: unexpected character %q at position %d", c, start)
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// AST.

type node interface {
	eval(bindings map[string]float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(map[string]float64) (float64, error) { return float64(n), nil }

type varNode string

func (n varNode) eval(bindings map[string]float64) (float64, error) {
	v, ok := bindings[string(n)]
	if !ok {
		return 0, eris.Errorf("equation: unbound variable %q", string(n))
	}
	return v, nil
}

type unaryNode struct {
	operand node
}

func (n unaryNode) eval(bindings map[string]float64) (float64, error) {
	v, err := n.operand.eval(bindings)
	return -v, err
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval(bindings map[string]float64) (float64, error) {
	l, err := n.left.eval(bindings)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(bindings)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case tokPlus:
		return l + r, nil
	case tokMinus:
		return l - r, nil
	case tokStar:
		return l * r, nil
	case tokSlash:
		return l / r, nil
	case tokCaret:
		return math.Pow(l, r), nil
	}
	return 0, eris.Errorf("equation: unknown operator %d", n.op)
}

type callNode struct {
	name string
	args []node
}

func (n callNode) eval(bindings map[string]float64) (float64, error) {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(bindings)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return applyFunc(n.name, args)
}

// applyFunc dispatches the closed function namespace. Aggregates accept any
// arity; a single scalar passes through unchanged.
func applyFunc(name string, args []float64) (float64, error) {
	switch name {
	case "sum", "SUM":
		total := 0.0
		for _, v := range args {
			total += v
		}
		return total, nil
	case "min":
		if len(args) == 0 {
			return 0, eris.New("equation: min of no arguments")
		}
		out := args[0]
		for _, v := range args[1:] {
			out = math.Min(out, v)
		}
		return out, nil
	case "max":
		if len(args) == 0 {
			return 0, eris.New("equation: max of no arguments")
		}
		out := args[0]
		for _, v := range args[1:] {
			out = math.Max(out, v)
		}
		return out, nil
	case "avg", "mean":
		if len(args) == 0 {
			return 0, nil
		}
		total := 0.0
		for _, v := range args {
			total += v
		}
		return total / float64(len(args)), nil
	case "abs":
		if len(args) != 1 {
			return 0, eris.Errorf("equation: abs expects 1 argument, got %d", len(args))
		}
		return math.Abs(args[0]), nil
	case "pow":
		if len(args) != 2 {
			return 0, eris.Errorf("equation: pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(args[0], args[1]), nil
	case "exp", "log", "log10", "sqrt", "sin", "cos", "tan":
		if len(args) != 1 {
			return 0, eris.Errorf("equation: %s expects 1 argument, got %d", name, len(args))
		}
		fn := map[string]func(float64) float64{
			"exp": math.Exp, "log": math.Log, "log10": math.Log10,
			"sqrt": math.Sqrt, "sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		}[name]
		return fn(args[0]), nil
	case "CRF":
		if len(args) != 2 {
			return 0, eris.Errorf("equation: CRF expects 2 arguments, got %d", len(args))
		}
		return crf(args[0], args[1]), nil
	}
	return 0, eris.Errorf("equation: unknown function %q", name)
}

// crf is the capital recovery factor. The zero-discount-rate boundary is
// defined as 1/n to avoid a 0/0.
func crf(wacc, n float64) float64 {
	if wacc == 0 {
		return 1 / n
	}
	growth := math.Pow(1+wacc, n)
	return wacc * growth / (growth - 1)
}

// Parser. Grammar, lowest to highest precedence:
//
//	expr    := term   (('+' | '-') term)*
//	term    := unary  (('*' | '/') unary)*
//	unary   := '-' unary | power
//	power   := primary ('^' unary)?          right associative
//	primary := NUMBER | IDENT | IDENT '(' args ')' | '(' expr ')'
type parser struct {
	lex lexer
	cur token
}

func parseFormula(formula string) (node, error) {
	p := &parser{lex: lexer{input: formula}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, eris.Errorf("equation: unexpected %q at position %d", p.cur.text, p.cur.pos)
	}
	return n, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.cur.kind == tokMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind == tokCaret {
		if err := p.advance(); err != nil {
			return nil, err
		}
		exponent, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: tokCaret, left: base, right: exponent}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch p.cur.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(p.cur.text, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "equation: bad number %q", p.cur.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return numberNode(v), nil

	case tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokLParen {
			return varNode(name), nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []node
		if p.cur.kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.kind != tokComma {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if p.cur.kind != tokRParen {
			return nil, eris.Errorf("equation: expected ) in call to %s at position %d", name, p.cur.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return callNode{name: name, args: args}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, eris.Errorf("equation: expected ) at position %d", p.cur.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, eris.Errorf("equation: unexpected %s at position %d", describeToken(p.cur), p.cur.pos)
}

func describeToken(t token) string {
	if t.kind == tokEOF {
		return "end of formula"
	}
	return fmt.Sprintf("%q", t.text)
}

// Eval parses a formula and evaluates it against the bindings. It is a pure
// function of its inputs.
func Eval(formula string, bindings map[string]float64) (float64, error) {
	ast, err := parseFormula(strings.TrimSpace(formula))
	if err != nil {
		return 0, err
	}
	result, err := ast.eval(bindings)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, eris.Errorf("equation: formula %q evaluated to a non-finite value", formula)
	}
	return result, nil
}
