package symbolic

import (
	"maps"
	"math"
	"strings"
)

// ============================================================
// Func: named function applications
// ============================================================

// Func is a named function applied to an ordered argument list. Elementary
// functions use lower-case names (sin, ln, acoth, ...); any other name, such
// as Integrate or FourierTransform, is an uninterpreted head.
type Func struct {
	name string
	args []Expr
}

// kernelHeads maps the kernel's names for the one-argument elementary
// functions to their host names.
var kernelHeads = map[string]string{
	"Exp":     "exp",
	"Log":     "ln",
	"Sin":     "sin",
	"Cos":     "cos",
	"Tan":     "tan",
	"Cot":     "cot",
	"ArcSin":  "asin",
	"ArcCos":  "acos",
	"ArcTan":  "atan",
	"ArcSinh": "asinh",
	"ArcCosh": "acosh",
	"ArcTanh": "atanh",
	"ArcCoth": "acoth",
	"Sinh":    "sinh",
	"Cosh":    "cosh",
	"Tanh":    "tanh",
	"Coth":    "coth",
}

// ElementaryHeads returns the kernel head to host name mapping of the
// elementary functions, e.g. ArcSin to asin.
func ElementaryHeads() map[string]string { return maps.Clone(kernelHeads) }

// Apply applies the named function to args. A kernel spelling of an
// elementary function with one argument becomes its host name, so
// Apply("Sin", x) is SinOf(x); Log[b, x] and Sqrt[x] build LogOf and SqrtOf.
// Elementary functions are unary: an elementary name given any other number
// of arguments stays an application the FullForm decoder rejects.
func Apply(name string, args ...Expr) Expr {
	switch {
	case name == "Log" && len(args) == 2:
		return LogOf(args[0], args[1])
	case name == "Sqrt" && len(args) == 1:
		return SqrtOf(args[0])
	case len(args) == 1:
		if host, ok := kernelHeads[name]; ok {
			name = host
		}
	}
	return (&Func{name: name, args: append([]Expr(nil), args...)}).Simplify()
}

func ExpOf(arg Expr) Expr   { return Apply("exp", arg) }
func LnOf(arg Expr) Expr    { return Apply("ln", arg) }
func SinOf(arg Expr) Expr   { return Apply("sin", arg) }
func CosOf(arg Expr) Expr   { return Apply("cos", arg) }
func TanOf(arg Expr) Expr   { return Apply("tan", arg) }
func CotOf(arg Expr) Expr   { return Apply("cot", arg) }
func AsinOf(arg Expr) Expr  { return Apply("asin", arg) }
func AcosOf(arg Expr) Expr  { return Apply("acos", arg) }
func AtanOf(arg Expr) Expr  { return Apply("atan", arg) }
func AsinhOf(arg Expr) Expr { return Apply("asinh", arg) }
func AcoshOf(arg Expr) Expr { return Apply("acosh", arg) }
func AtanhOf(arg Expr) Expr { return Apply("atanh", arg) }
func AcothOf(arg Expr) Expr { return Apply("acoth", arg) }
func SinhOf(arg Expr) Expr  { return Apply("sinh", arg) }
func CoshOf(arg Expr) Expr  { return Apply("cosh", arg) }
func TanhOf(arg Expr) Expr  { return Apply("tanh", arg) }
func CothOf(arg Expr) Expr  { return Apply("coth", arg) }

// LogOf is the logarithm of x in the given base, ln(x)/ln(base).
func LogOf(base, x Expr) Expr { return MulOf(LnOf(x), PowOf(LnOf(base), N(-1))) }

var floatFuncs = map[string]func(float64) float64{
	"exp":   math.Exp,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"cot":   func(v float64) float64 { return 1 / math.Tan(v) },
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"asinh": math.Asinh,
	"acosh": math.Acosh,
	"atanh": math.Atanh,
	"acoth": func(v float64) float64 { return math.Atanh(1 / v) },
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"coth":  func(v float64) float64 { return 1 / math.Tanh(v) },
	"ln": func(v float64) float64 {
		if v <= 0 {
			return math.NaN()
		}
		return math.Log(v)
	},
}

// IsElementary reports whether name is one of the built-in elementary
// function names.
func IsElementary(name string) bool {
	_, ok := floatFuncs[name]
	return ok
}

func (f *Func) Simplify() Expr {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		args[i] = a.Simplify()
	}
	if len(args) != 1 {
		return &Func{name: f.name, args: args}
	}
	arg := args[0]

	if r, ok := arg.(*Real); ok {
		if fn, ok := floatFuncs[f.name]; ok {
			if v := fn(r.val); !math.IsNaN(v) && !math.IsInf(v, 0) {
				return R(v)
			}
		}
	}

	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh", "asinh", "atanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
		if (f.name == "sin" || f.name == "tan") && isConst(arg, ConstPi) {
			return N(0)
		}
	case "cos", "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if f.name == "cos" && isConst(arg, ConstPi) {
			return N(-1)
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if isConst(arg, ConstE) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" && len(inner.args) == 1 {
			return inner.args[0]
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if isNumEqual(arg, 1) {
			return E()
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" && len(inner.args) == 1 {
			return inner.args[0]
		}
	}
	return &Func{name: f.name, args: args}
}

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

func (f *Func) LaTeX() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	inner := "\\left(" + strings.Join(parts, ", ") + "\\right)"
	switch f.name {
	case "sin", "cos", "tan", "cot", "exp", "ln", "sinh", "cosh", "tanh", "coth":
		return "\\" + f.name + inner
	case "asin":
		return "\\arcsin" + inner
	case "acos":
		return "\\arccos" + inner
	case "atan":
		return "\\arctan" + inner
	}
	return "\\operatorname{" + f.name + "}" + inner
}

func (f *Func) Sub(varName string, value Expr) Expr {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		args[i] = a.Sub(varName, value)
	}
	return Apply(f.name, args...)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && equalSlices(f.args, o.args)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "args": jsonSlice(f.args)}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Args() []Expr     { return f.args }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

func isConst(e Expr, name string) bool {
	c, ok := e.(*Const)
	return ok && c.name == name
}

// ============================================================
// Tuple: ordered sequence (integration bounds, variable pairs)
// ============================================================

type Tuple struct{ items []Expr }

func TupleOf(items ...Expr) *Tuple {
	out := make([]Expr, len(items))
	for i, it := range items {
		out[i] = it.Simplify()
	}
	return &Tuple{items: out}
}

func (t *Tuple) Simplify() Expr { return TupleOf(t.items...) }

func (t *Tuple) String() string {
	parts := make([]string, len(t.items))
	for i, it := range t.items {
		parts[i] = it.String()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *Tuple) LaTeX() string {
	parts := make([]string, len(t.items))
	for i, it := range t.items {
		parts[i] = it.LaTeX()
	}
	return "\\left(" + strings.Join(parts, ", ") + "\\right)"
}

func (t *Tuple) Sub(varName string, value Expr) Expr {
	items := make([]Expr, len(t.items))
	for i, it := range t.items {
		items[i] = it.Sub(varName, value)
	}
	return TupleOf(items...)
}

func (t *Tuple) Equal(other Expr) bool {
	o, ok := other.(*Tuple)
	return ok && equalSlices(t.items, o.items)
}

func (t *Tuple) exprType() string { return "tuple" }
func (t *Tuple) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "tuple", "items": jsonSlice(t.items)}
}
func (t *Tuple) Items() []Expr { return t.items }
func (t *Tuple) Len() int      { return len(t.items) }
