package fullform

import (
	"math"
	"strconv"
	"strings"

	"github.com/njchilds90/mathlink/symbolic"
)

// Encode renders e as FullForm text. No evaluation happens locally; the
// result is kernel input. A top-level Hold wrapper is stripped.
func (c *Codec) Encode(e symbolic.Expr) string {
	var b strings.Builder
	encode(&b, e)
	return StripHold(b.String())
}

func encode(b *strings.Builder, e symbolic.Expr) {
	switch v := e.(type) {
	case *symbolic.Num:
		encodeNum(b, v)
	case *symbolic.Real:
		b.WriteString(formatReal(v.Float64()))
	case *symbolic.Sym:
		b.WriteString(v.Name())
	case *symbolic.Const:
		encodeConst(b, v)
	case *symbolic.Complex:
		b.WriteString("Complex[")
		encodeNum(b, v.Re())
		b.WriteString(", ")
		encodeNum(b, v.Im())
		b.WriteByte(']')
	case *symbolic.Add:
		head(b, "Plus", v.Terms())
	case *symbolic.Mul:
		head(b, "Times", v.Factors())
	case *symbolic.Pow:
		head(b, "Power", []symbolic.Expr{v.Base(), v.ExpExpr()})
	case *symbolic.Func:
		name := v.FuncName()
		if remote, ok := hostNames[name]; ok {
			name = remote
		}
		head(b, name, v.Args())
	case *symbolic.Tuple:
		// {x} would decode as a parenthesised x, so one-item lists keep
		// their head.
		if v.Len() == 1 {
			head(b, "List", v.Items())
			return
		}
		b.WriteByte('{')
		args(b, v.Items())
		b.WriteByte('}')
	default:
		// Unreachable for trees built by package symbolic.
		b.WriteString(e.String())
	}
}

func head(b *strings.Builder, name string, items []symbolic.Expr) {
	b.WriteString(name)
	b.WriteByte('[')
	args(b, items)
	b.WriteByte(']')
}

func args(b *strings.Builder, items []symbolic.Expr) {
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		encode(b, it)
	}
}

func encodeNum(b *strings.Builder, n *symbolic.Num) {
	r := n.Rat()
	if r.IsInt() {
		b.WriteString(r.Num().String())
		return
	}
	b.WriteString("Rational[")
	b.WriteString(r.Num().String())
	b.WriteString(", ")
	b.WriteString(r.Denom().String())
	b.WriteByte(']')
}

func encodeConst(b *strings.Builder, c *symbolic.Const) {
	switch c.Name() {
	case symbolic.ConstNegInfinity:
		b.WriteString("DirectedInfinity[-1]")
	default:
		// The other constants share the kernel's spelling.
		b.WriteString(c.Name())
	}
}

// formatReal prints f the way the kernel reads machine reals: a mandatory
// decimal point and *^ for the exponent (2., 1.5*^-10).
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "Indeterminate"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "DirectedInfinity[-1]"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	mant, exp, hasExp := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += "."
	}
	if !hasExp {
		return mant
	}
	sign := ""
	switch exp[0] {
	case '-':
		sign = "-"
		exp = exp[1:]
	case '+':
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		return mant
	}
	return mant + "*^" + sign + exp
}
