// Package symbolic provides the host expression tree that mathlink translates
// to and from FullForm text.
//
// Design goals:
//   - Exact rational and complex-rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Structural equality, so a tree decoded from a kernel reply compares
//     equal to the same tree built with the constructors
//   - JSON and LaTeX renderings for tool-call and agent backends
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NInt(i *big.Int) *Num { return &Num{val: new(big.Rat).SetInt(i)} }
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

// ============================================================
// Real: floating point approximation
// ============================================================

type Real struct{ val float64 }

func R(f float64) *Real { return &Real{val: f} }

func (r *Real) Simplify() Expr        { return r }
func (r *Real) Sub(string, Expr) Expr { return r }
func (r *Real) Equal(other Expr) bool { o, ok := other.(*Real); return ok && r.val == o.val }
func (r *Real) exprType() string      { return "real" }
func (r *Real) Float64() float64      { return r.val }
func (r *Real) String() string        { return strconv.FormatFloat(r.val, 'g', -1, 64) }
func (r *Real) LaTeX() string         { return r.String() }
func (r *Real) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "real", "value": r.val}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym             { return &Sym{name: name} }
func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

// ============================================================
// Const: well-known constants
// ============================================================

const (
	ConstPi              = "Pi"
	ConstE               = "E"
	ConstInfinity        = "Infinity"
	ConstNegInfinity     = "NegInfinity"
	ConstComplexInfinity = "ComplexInfinity"
	ConstIndeterminate   = "Indeterminate"
)

type Const struct{ name string }

func Pi() *Const              { return &Const{name: ConstPi} }
func E() *Const               { return &Const{name: ConstE} }
func Infinity() *Const        { return &Const{name: ConstInfinity} }
func NegInfinity() *Const     { return &Const{name: ConstNegInfinity} }
func ComplexInfinity() *Const { return &Const{name: ConstComplexInfinity} }

// Indeterminate is the value of forms such as 0*Infinity.
func Indeterminate() *Const { return &Const{name: ConstIndeterminate} }

// ConstOf returns the constant with the given name, or false when the name is
// not one of the Const* names.
func ConstOf(name string) (*Const, bool) {
	switch name {
	case ConstPi, ConstE, ConstInfinity, ConstNegInfinity, ConstComplexInfinity, ConstIndeterminate:
		return &Const{name: name}, true
	}
	return nil, false
}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Name() string          { return c.name }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) String() string {
	switch c.name {
	case ConstPi:
		return "pi"
	case ConstInfinity:
		return "oo"
	case ConstNegInfinity:
		return "-oo"
	case ConstComplexInfinity:
		return "zoo"
	case ConstIndeterminate:
		return "nan"
	}
	return c.name
}

func (c *Const) LaTeX() string {
	switch c.name {
	case ConstPi:
		return "\\pi"
	case ConstE:
		return "e"
	case ConstInfinity:
		return "\\infty"
	case ConstNegInfinity:
		return "-\\infty"
	case ConstComplexInfinity:
		return "\\tilde{\\infty}"
	case ConstIndeterminate:
		return "\\mathrm{NaN}"
	}
	return c.name
}

func isInfinity(e Expr) (sign int, ok bool) {
	c, isConst := e.(*Const)
	if !isConst {
		return 0, false
	}
	switch c.name {
	case ConstInfinity:
		return 1, true
	case ConstNegInfinity:
		return -1, true
	}
	return 0, false
}

// infinite reports whether any of es is a directed or complex infinity.
func infinite(es []Expr) bool {
	for _, e := range es {
		if _, ok := isInfinity(e); ok || isConst(e, ConstComplexInfinity) {
			return true
		}
	}
	return false
}

// ============================================================
// Complex: exact complex number re + im*I
// ============================================================

type Complex struct{ re, im *Num }

// I is the imaginary unit.
func I() *Complex { return &Complex{re: N(0), im: N(1)} }

func complexOf(re, im *Num) Expr {
	if im.IsZero() {
		return re
	}
	return &Complex{re: re, im: im}
}

// ComplexOf builds re + I*im. Exact numeric parts fold into a *Complex (or a
// *Num when im is zero); anything else becomes a sum.
func ComplexOf(re, im Expr) Expr {
	rn, ok1 := re.Simplify().(*Num)
	in, ok2 := im.Simplify().(*Num)
	if ok1 && ok2 {
		return complexOf(rn, in)
	}
	return AddOf(re, MulOf(im, I()))
}

func (c *Complex) Simplify() Expr        { return complexOf(c.re, c.im) }
func (c *Complex) Sub(string, Expr) Expr { return c }
func (c *Complex) exprType() string      { return "complex" }
func (c *Complex) Re() *Num              { return c.re }
func (c *Complex) Im() *Num              { return c.im }
func (c *Complex) Equal(other Expr) bool {
	o, ok := other.(*Complex)
	return ok && c.re.Equal(o.re) && c.im.Equal(o.im)
}
func (c *Complex) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "complex", "re": c.re.String(), "im": c.im.String()}
}

func (c *Complex) String() string { return c.render((*Num).String, "I") }
func (c *Complex) LaTeX() string  { return c.render((*Num).LaTeX, "i") }

func (c *Complex) render(num func(*Num) string, unit string) string {
	var imag string
	switch {
	case c.im.IsOne():
		imag = unit
	case c.im.IsNegOne():
		imag = "-" + unit
	default:
		imag = num(c.im) + "*" + unit
	}
	if c.re.IsZero() {
		return imag
	}
	if c.im.IsNegative() {
		abs := numNeg(c.im)
		if abs.IsOne() {
			return num(c.re) + " - " + unit
		}
		return num(c.re) + " - " + num(abs) + "*" + unit
	}
	return num(c.re) + " + " + imag
}

func complexMul(ar, ai, br, bi *Num) (*Num, *Num) {
	re := numSub(numMul(ar, br), numMul(ai, bi))
	im := numAdd(numMul(ar, bi), numMul(ai, br))
	return re, im
}

func complexRecip(re, im *Num) (*Num, *Num) {
	d := numAdd(numMul(re, re), numMul(im, im))
	inv := numRecip(d)
	return numMul(re, inv), numNeg(numMul(im, inv))
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	re, im := N(0), N(0)
	var floatSum *float64
	type group struct {
		rest  Expr
		coeff *Num
	}
	groups := map[string]*group{}
	keys := []string{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			re = numAdd(re, v)
		case *Complex:
			re = numAdd(re, v.re)
			im = numAdd(im, v.im)
		case *Real:
			if floatSum == nil {
				floatSum = new(float64)
			}
			*floatSum += v.val
		default:
			coeff, rest := splitCoefficient(t)
			key := rest.exprType() + ":" + rest.String()
			g, seen := groups[key]
			if !seen {
				g = &group{rest: rest, coeff: N(0)}
				groups[key] = g
				keys = append(keys, key)
			}
			g.coeff = numAdd(g.coeff, coeff)
		}
	}

	sort.Strings(keys)
	result := []Expr{}
	for _, k := range keys {
		g := groups[k]
		switch {
		case g.coeff.IsZero():
		case g.coeff.IsOne():
			result = append(result, g.rest)
		default:
			result = append(result, MulOf(g.coeff, g.rest))
		}
	}
	if floatSum != nil {
		result = append(result, R(*floatSum+re.Float64()))
		if !im.IsZero() {
			result = append(result, complexOf(N(0), im))
		}
	} else if !re.IsZero() || !im.IsZero() {
		result = append(result, complexOf(re, im))
	}

	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoefficient separates a leading rational coefficient from a term.
func splitCoefficient(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}
	return c, &Mul{factors: append([]Expr(nil), rest...)}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalSlices(a.terms, o.terms)
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": jsonSlice(a.terms)}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	re, im := N(1), N(0)
	var floatProd *float64
	others := []Expr{}
	fold := func(e Expr) bool {
		switch v := e.(type) {
		case *Num:
			re, im = complexMul(re, im, v, N(0))
		case *Complex:
			re, im = complexMul(re, im, v.re, v.im)
		case *Real:
			if floatProd == nil {
				floatProd = new(float64)
				*floatProd = 1
			}
			*floatProd *= v.val
		default:
			return false
		}
		return true
	}
	for _, f := range flat {
		if !fold(f) {
			others = append(others, f)
		}
	}
	zero := re.IsZero() && im.IsZero()
	floatZero := floatProd != nil && *floatProd == 0
	switch {
	case (zero || floatZero) && infinite(others):
		return Indeterminate()
	case zero:
		return N(0)
	case floatZero:
		return R(0)
	}

	// Merge equal bases: x*x -> x^2, x*x^-1 -> 1.
	type powGroup struct {
		base Expr
		exps []Expr
		orig Expr
	}
	groups := map[string]*powGroup{}
	order := []string{}
	for _, f := range others {
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.exprType() + ":" + base.String()
		g, seen := groups[key]
		if !seen {
			g = &powGroup{base: base, orig: f}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	others = others[:0]
	for _, k := range order {
		g := groups[k]
		merged := g.orig
		if len(g.exps) > 1 {
			merged = PowOf(g.base, AddOf(g.exps...))
		}
		if inner, ok := merged.(*Mul); ok {
			for _, f := range inner.factors {
				if !fold(f) {
					others = append(others, f)
				}
			}
			continue
		}
		if !fold(merged) {
			others = append(others, merged)
		}
	}

	// Fold a real rational sign into a lone infinity.
	if floatProd == nil && im.IsZero() {
		for i, f := range others {
			sign, ok := isInfinity(f)
			if !ok {
				continue
			}
			if re.IsNegative() {
				sign = -sign
			}
			if sign > 0 {
				others[i] = Infinity()
			} else {
				others[i] = NegInfinity()
			}
			re = N(1)
			break
		}
	}

	var coeff []Expr
	switch {
	case floatProd != nil && im.IsZero():
		coeff = []Expr{R(*floatProd * re.Float64())}
	case floatProd != nil:
		coeff = []Expr{R(*floatProd), complexOf(re, im)}
	case !(im.IsZero() && re.IsOne()):
		coeff = []Expr{complexOf(re, im)}
	}

	if len(others) == 0 {
		if len(coeff) == 0 {
			return N(1)
		}
		if len(coeff) == 1 {
			return coeff[0]
		}
		return &Mul{factors: coeff}
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, 0, len(coeff)+len(ks))
	sorted = append(sorted, coeff...)
	for i := range ks {
		sorted = append(sorted, ks[i].e)
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	return &Mul{factors: sorted}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if needsParens(f) {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if needsParens(f) {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func needsParens(e Expr) bool {
	switch v := e.(type) {
	case *Add:
		return true
	case *Complex:
		return !v.re.IsZero()
	}
	return false
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalSlices(m.factors, o.factors)
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": jsonSlice(m.factors)}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }
func SqrtOf(arg Expr) Expr      { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	// Handle 0^exp carefully.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if expIsNum && en.IsNegative() {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}

	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if expIsNum && en.IsInteger() {
		e := en.val.Num().Int64()
		if en.val.Num().IsInt64() && e >= -20 && e <= 20 {
			switch b := base.(type) {
			case *Num:
				result := N(1)
				for i := int64(0); i < abs64(e); i++ {
					result = numMul(result, b)
				}
				if e < 0 {
					// base==0 was handled above.
					return numRecip(result)
				}
				return result
			case *Complex:
				re, im := N(1), N(0)
				for i := int64(0); i < abs64(e); i++ {
					re, im = complexMul(re, im, b.re, b.im)
				}
				if e < 0 {
					re, im = complexRecip(re, im)
				}
				return complexOf(re, im)
			}
		}
	}
	if bf, ok := floatValue(base); ok {
		if ef, ok2 := floatValue(exp); ok2 {
			_, bReal := base.(*Real)
			_, eReal := exp.(*Real)
			if bReal || eReal {
				if pf := math.Pow(bf, ef); !math.IsNaN(pf) && !math.IsInf(pf, 0) {
					return R(pf)
				}
			}
		}
	}
	if c, ok := base.(*Const); ok && c.name == ConstE {
		return ExpOf(exp)
	}
	if inner, ok := base.(*Pow); ok && expIsNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func floatValue(e Expr) (float64, bool) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), true
	case *Real:
		return v.val, true
	}
	return 0, false
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	if powBaseNeedsParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	if powExpNeedsParens(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	expStr := p.exp.LaTeX()
	if powBaseNeedsParens(p.base) {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + expStr + "}"
}

func powBaseNeedsParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow, *Complex:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	case *Real:
		return v.val < 0
	}
	return false
}

func powExpNeedsParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow, *Complex:
		return true
	case *Num:
		return !v.IsInteger()
	}
	return false
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func equalSlices(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func jsonSlice(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}
