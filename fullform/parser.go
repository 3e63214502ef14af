package fullform

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/njchilds90/mathlink/symbolic"
)

// brackets folds function brackets and list braces into one parenthesis
// pair. Calls and lists become indistinguishable groups; heads such as List
// decide what a group means.
var brackets = strings.NewReplacer("[", "(", "]", ")", "{", "(", "}", ")")

// Decode parses FullForm text into a simplified host expression.
//
// Besides prefix applications it accepts the infix forms a kernel prints in
// InputForm (+ - * / ^, unary minus, juxtaposition for multiplication). A
// parenthesised group holding zero or several comma-separated items is a
// tuple; a single item is plain grouping. An identifier followed by a
// bracket is an application resolved through the vocabulary, with or
// without whitespace between them, so "Sin [x]" is Sin[x] and "Foo [x]"
// fails as an unknown head. Only a spaced parenthesis or brace after an
// identifier multiplies: "x (1 + y)" is a product.
func (c *Codec) Decode(s string) (e symbolic.Expr, err error) {
	src := brackets.Replace(s)
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, raw: s, toks: toks, codec: c}

	// Exact arithmetic panics on a zero divisor; surface that as a decode
	// failure instead.
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, syntaxErr(src, p.peek().pos, "%v", r)
		}
	}()

	e, err = p.expr(0)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxErr(src, t.pos, "unexpected %s after expression", t.kind)
	}
	return e, nil
}

const (
	precSum     = 10
	precProduct = 20
	precUnary   = 30
	precPower   = 40
)

type parser struct {
	src   string
	raw   string // before bracket folding
	toks  []token
	pos   int
	codec *Codec
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// binary returns the precedence of the operator at t, zero when t does not
// continue an expression. Juxtaposed operands multiply.
func binary(t token) int {
	switch t.kind {
	case tokPlus, tokMinus:
		return precSum
	case tokStar, tokSlash:
		return precProduct
	case tokCaret:
		return precPower
	case tokInt, tokReal, tokIdent, tokLParen:
		return precProduct
	}
	return 0
}

func (p *parser) expr(minPrec int) (symbolic.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec := binary(op)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		implicit := op.kind != tokPlus && op.kind != tokMinus &&
			op.kind != tokStar && op.kind != tokSlash && op.kind != tokCaret
		if !implicit {
			p.next()
		}
		nextMin := prec + 1
		if op.kind == tokCaret {
			nextMin = prec
		}
		right, err := p.expr(nextMin)
		if err != nil {
			return nil, err
		}
		switch op.kind {
		case tokPlus:
			left = symbolic.AddOf(left, right)
		case tokMinus:
			left = symbolic.AddOf(left, symbolic.MulOf(symbolic.N(-1), right))
		case tokSlash:
			left = symbolic.MulOf(left, symbolic.PowOf(right, symbolic.N(-1)))
		case tokCaret:
			left = symbolic.PowOf(left, right)
		default:
			left = symbolic.MulOf(left, right)
		}
	}
}

func (p *parser) unary() (symbolic.Expr, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		operand, err := p.expr(precUnary)
		if err != nil {
			return nil, err
		}
		return symbolic.MulOf(symbolic.N(-1), operand), nil
	case tokPlus:
		p.next()
		return p.expr(precUnary)
	}
	return p.primary()
}

func (p *parser) primary() (symbolic.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokInt:
		n, ok := new(big.Int).SetString(t.text, 10)
		if !ok {
			return nil, syntaxErr(p.src, t.pos, "invalid integer %q", t.text)
		}
		return symbolic.NInt(n), nil

	case tokReal:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, syntaxErr(p.src, t.pos, "invalid real %q", t.text)
		}
		return symbolic.R(f), nil

	case tokIdent:
		if la := p.peek(); la.kind == tokLParen && (!la.spaced || p.raw[la.pos] == '[') {
			p.next()
			args, err := p.list()
			if err != nil {
				return nil, err
			}
			return p.codec.apply(p.src, t, args)
		}
		if k, ok := constants[t.text]; ok {
			return k(), nil
		}
		return symbolic.S(t.text), nil

	case tokLParen:
		items, err := p.list()
		if err != nil {
			return nil, err
		}
		if len(items) == 1 {
			return items[0], nil
		}
		return symbolic.TupleOf(items...), nil
	}
	return nil, syntaxErr(p.src, t.pos, "unexpected %s", t.kind)
}

// list parses comma-separated items up to the closing parenthesis; the
// opening one is already consumed.
func (p *parser) list() ([]symbolic.Expr, error) {
	if p.peek().kind == tokRParen {
		p.next()
		return nil, nil
	}
	var items []symbolic.Expr
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		t := p.next()
		switch t.kind {
		case tokComma:
			continue
		case tokRParen:
			return items, nil
		case tokEOF:
			return nil, syntaxErr(p.src, t.pos, "unclosed bracket")
		default:
			return nil, syntaxErr(p.src, t.pos, "expected ',' or ')', found %s", t.kind)
		}
	}
}

// headSpec describes a core head. hi < 0 means any number of arguments.
type headSpec struct {
	lo, hi int
	build  func(args []symbolic.Expr) symbolic.Expr
}

var core = map[string]headSpec{
	"Plus":  {0, -1, func(a []symbolic.Expr) symbolic.Expr { return symbolic.AddOf(a...) }},
	"Times": {0, -1, func(a []symbolic.Expr) symbolic.Expr { return symbolic.MulOf(a...) }},
	"Power": {2, 2, func(a []symbolic.Expr) symbolic.Expr { return symbolic.PowOf(a[0], a[1]) }},
	"List":  {0, -1, func(a []symbolic.Expr) symbolic.Expr { return symbolic.TupleOf(a...) }},
	"Sqrt":  {1, 1, func(a []symbolic.Expr) symbolic.Expr { return symbolic.SqrtOf(a[0]) }},
	"Exp":   {1, 1, func(a []symbolic.Expr) symbolic.Expr { return symbolic.ExpOf(a[0]) }},
	"Log": {1, 2, func(a []symbolic.Expr) symbolic.Expr {
		if len(a) == 2 {
			return symbolic.LogOf(a[0], a[1])
		}
		return symbolic.LnOf(a[0])
	}},
	"Complex":          {2, 2, func(a []symbolic.Expr) symbolic.Expr { return symbolic.ComplexOf(a[0], a[1]) }},
	"Rational":         {2, 2, rational},
	"DirectedInfinity": {0, 1, directedInfinity},
}

func rational(a []symbolic.Expr) symbolic.Expr {
	p, ok1 := a[0].(*symbolic.Num)
	q, ok2 := a[1].(*symbolic.Num)
	if !ok1 || !ok2 || !p.IsInteger() || !q.IsInteger() {
		return symbolic.MulOf(a[0], symbolic.PowOf(a[1], symbolic.N(-1)))
	}
	if q.IsZero() {
		return symbolic.ComplexInfinity()
	}
	return symbolic.NRat(new(big.Rat).SetFrac(p.Rat().Num(), q.Rat().Num()))
}

func directedInfinity(a []symbolic.Expr) symbolic.Expr {
	if len(a) == 0 {
		return symbolic.ComplexInfinity()
	}
	if n, ok := a[0].(*symbolic.Num); ok {
		switch {
		case n.IsPositive():
			return symbolic.Infinity()
		case n.IsNegative():
			return symbolic.NegInfinity()
		}
		return symbolic.ComplexInfinity()
	}
	return symbolic.Apply("DirectedInfinity", a[0])
}

func (c *Codec) apply(src string, name token, args []symbolic.Expr) (symbolic.Expr, error) {
	if spec, ok := core[name.text]; ok {
		if len(args) < spec.lo || (spec.hi >= 0 && len(args) > spec.hi) {
			return nil, &DecodeError{Input: src, Pos: name.pos, Kind: ErrArity,
				Msg: fmt.Sprintf("%s takes %s, got %d", name.text, arity(spec.lo, spec.hi), len(args))}
		}
		return spec.build(args), nil
	}
	if host, ok := elementary[name.text]; ok {
		if len(args) != 1 {
			return nil, &DecodeError{Input: src, Pos: name.pos, Kind: ErrArity,
				Msg: fmt.Sprintf("%s takes 1 argument, got %d", name.text, len(args))}
		}
		return symbolic.Apply(host, args[0]), nil
	}
	if _, ok := c.heads[name.text]; ok {
		return symbolic.Apply(name.text, args...), nil
	}
	return nil, &DecodeError{Input: src, Pos: name.pos, Kind: ErrUnknownHead,
		Msg: fmt.Sprintf("unknown head %q", name.text)}
}

func arity(lo, hi int) string {
	switch {
	case hi < 0:
		return fmt.Sprintf("at least %d arguments", lo)
	case lo == hi && lo == 1:
		return "1 argument"
	case lo == hi:
		return fmt.Sprintf("%d arguments", lo)
	}
	return fmt.Sprintf("%d to %d arguments", lo, hi)
}
