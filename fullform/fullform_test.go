package fullform_test

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathlink/fullform"
	. "github.com/njchilds90/mathlink/symbolic"
)

var (
	x = S("x")
	y = S("y")
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   Expr
		want string
	}{
		{"half x squared", MulOf(F(1, 2), PowOf(x, N(2))), "Times[Rational[1, 2], Power[x, 2]]"},
		{"difference", AddOf(x, MulOf(N(-1), y)), "Plus[x, Times[-1, y]]"},
		{"negative integer", N(-7), "-7"},
		{"negative rational", F(-3, 4), "Rational[-3, 4]"},
		{"machine real", R(2), "2."},
		{"small real", R(1.5e-10), "1.5*^-10"},
		{"large real", R(1e21), "1.*^21"},
		{"pi", Pi(), "Pi"},
		{"negative infinity", NegInfinity(), "DirectedInfinity[-1]"},
		{"imaginary unit", I(), "Complex[0, 1]"},
		{"complex", ComplexOf(F(1, 2), N(-3)), "Complex[Rational[1, 2], -3]"},
		{"elementary", AsinOf(x), "ArcSin[x]"},
		{"log", LnOf(x), "Log[x]"},
		{"exp", ExpOf(x), "Exp[x]"},
		{"tuple", TupleOf(x, N(-1), N(1)), "{x, -1, 1}"},
		{"one-item tuple", TupleOf(x), "List[x]"},
		{"empty tuple", TupleOf(), "{}"},
		{"pass-through", Apply("Integrate", x, TupleOf(x, N(0), Infinity())), "Integrate[x, {x, 0, Infinity}]"},
		{"hold stripped", Apply("Hold", AddOf(x, N(1))), "Plus[x, 1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fullform.Encode(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Expr
	}{
		{"difference", "Plus[x, Times[-1, y]]", AddOf(x, MulOf(N(-1), y))},
		{"sqrt pi", "Power[Pi, Rational[1,2]]", SqrtOf(Pi())},
		{"half x squared", "Times[Rational[1, 2], Power[x, 2]]", MulOf(PowOf(x, N(2)), F(1, 2))},
		{"cosine", "Cos[x]", CosOf(x)},
		{"rational", "Rational[2, 3]", F(2, 3)},
		{"negative one", "-1", N(-1)},
		{"imaginary unit", "Complex[0, 1]", I()},
		{"bare I", "I", I()},
		{"infinity", "DirectedInfinity[1]", Infinity()},
		{"negative infinity", "DirectedInfinity[-1]", NegInfinity()},
		{"complex infinity", "DirectedInfinity[]", ComplexInfinity()},
		{"machine complex with zero imaginary part", "Complex[1.5, 0.]", R(1.5)},
		{"indeterminate", "Indeterminate", Indeterminate()},
		{"zero times infinity", "Times[0, Infinity]", Indeterminate()},
		{"braced list", "{x, -1, 1}", TupleOf(x, N(-1), N(1))},
		{"one-item list", "List[x]", TupleOf(x)},
		{"empty list", "{}", TupleOf()},
		{"machine real", "2.", R(2)},
		{"precision mark", "1.5`20.", R(1.5)},
		{"exponent", "1.5*^-10", R(1.5e-10)},
		{"precision and exponent", "3.`*^2", R(300)},
		{"infix", "x^2 + 2 x - 1", AddOf(PowOf(x, N(2)), MulOf(N(2), x), N(-1))},
		{"division", "(x + y)/x", MulOf(AddOf(x, y), PowOf(x, N(-1)))},
		{"unary minus binds looser than power", "-x^2", MulOf(N(-1), PowOf(x, N(2)))},
		{"negative exponent", "2^-1", F(1, 2)},
		{"log base", "Log[2, 8]", LogOf(N(2), N(8))},
		{"sqrt", "Sqrt[x]", SqrtOf(x)},
		{"pass-through", "Integrate[Exp[x], {x, 0, Infinity}]", Apply("Integrate", ExpOf(x), TupleOf(x, N(0), Infinity()))},
		{"context mark", "Global`x", S("Global`x")},
		{"hold", "Hold[x]", Apply("Hold", x)},
		{"wrapped whitespace", "Plus[x,\n   y]", AddOf(x, y)},
		{"space before bracket", "Sin [x]", SinOf(x)},
		{"wrapped before bracket", "Power\n   [x, 2]", PowOf(x, N(2))},
		{"spaced parenthesis multiplies", "x (1 + y)", MulOf(x, AddOf(N(1), y))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fullform.Decode(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		in   string
		kind error
	}{
		{"", fullform.ErrSyntax},
		{"Sin[x", fullform.ErrSyntax},
		{"Sin[x]]", fullform.ErrSyntax},
		{"{x, y", fullform.ErrSyntax},
		{"x @ y", fullform.ErrSyntax},
		{"1.5*^", fullform.ErrSyntax},
		{"Plus[x,]", fullform.ErrSyntax},
		{"Foo[x]", fullform.ErrUnknownHead},
		{"Foo [x]", fullform.ErrUnknownHead},
		{"Sin [x, y]", fullform.ErrArity},
		{"FourierSinTransform[f, t, w]", fullform.ErrUnknownHead},
		{"Power[x]", fullform.ErrArity},
		{"Sin[x, y]", fullform.ErrArity},
		{"Rational[1, 2, 3]", fullform.ErrArity},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := fullform.Decode(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, fullform.ErrDecode)
			assert.ErrorIs(t, err, tt.kind)

			var de *fullform.DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.kind, de.Kind)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	z := S("z")
	exprs := []Expr{
		x, N(5), F(-3, 4), R(2), R(1.5e-10), R(-0.25), R(1e21),
		Pi(), E(), I(), Infinity(), NegInfinity(), ComplexInfinity(),
		ComplexOf(F(1, 2), N(-3)),
		AddOf(x, y, N(1)),
		MulOf(N(3), x, PowOf(y, N(-1))),
		MulOf(R(2.5), I(), x),
		SqrtOf(x),
		PowOf(x, y),
		SinOf(x), CosOf(AddOf(x, Pi())), TanOf(x), CotOf(x),
		AsinOf(x), AcosOf(x), AtanOf(x),
		AsinhOf(x), AcoshOf(x), AtanhOf(x), AcothOf(x),
		SinhOf(x), CoshOf(x), TanhOf(x), CothOf(x),
		ExpOf(MulOf(N(-1), z)), LnOf(x), LogOf(N(2), x),
		TupleOf(x, N(-1), N(1)), TupleOf(x), TupleOf(),
		Apply("Integrate", ExpOf(x), TupleOf(x, N(0), Infinity())),
		Apply("D", SinOf(x), x),
		Apply("DiracDelta", AddOf(x, N(-1))),
		Indeterminate(),
		Apply("Sin", x), Apply("ArcTan", x), Apply("Log", N(2), x),
	}
	for _, e := range exprs {
		text := fullform.Encode(e)
		back, err := fullform.Decode(text)
		require.NoError(t, err, "decode %q", text)
		assert.True(t, back.Equal(e), "round trip of %s through %q gave %s", e, text, back)
	}
}

func TestWithHeads(t *testing.T) {
	base := fullform.Default()
	ext := base.WithHeads("FourierSinTransform")

	_, err := base.Decode("FourierSinTransform[f, t, w]")
	assert.ErrorIs(t, err, fullform.ErrUnknownHead)

	got, err := ext.Decode("FourierSinTransform[f, t, w]")
	require.NoError(t, err)
	assert.True(t, got.Equal(Apply("FourierSinTransform", S("f"), S("t"), S("w"))))

	assert.Contains(t, ext.Heads(), "FourierSinTransform")
	assert.NotContains(t, base.Heads(), "FourierSinTransform")
}

func TestVocabulary(t *testing.T) {
	v := fullform.Vocabulary()
	assert.True(t, sort.StringsAreSorted(v))
	for _, h := range []string{
		"Plus", "Times", "Power", "List", "Complex", "Rational", "DirectedInfinity",
		"Exp", "Log", "Sin", "Cos", "Tan", "Cot", "ArcSin", "ArcCos", "ArcTan",
		"ArcSinh", "ArcCosh", "ArcTanh", "ArcCoth", "Cosh", "Coth", "Sinh", "Tanh",
		"Sqrt", "DiracDelta", "Integrate", "D", "Sum", "FourierTransform",
		"InverseFourierTransform",
	} {
		assert.Contains(t, v, h)
	}
}

func TestStripHold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hold[x]", "x"},
		{"Hold[Hold[x]]", "x"},
		{"Hold[f[x, y]]", "f[x, y]"},
		{"Hold[x +\n y]", "x +\n y"},
		{"Hold[a] + Hold[b]", "Hold[a] + Hold[b]"},
		{"Hold[a]]", "Hold[a]]"},
		{"x", "x"},
		{"Plus[x, Hold[y]]", "Plus[x, Hold[y]]"},
		{" Hold[x]", " Hold[x]"},
		{"", ""},
	}
	for _, tt := range tests {
		got := fullform.StripHold(tt.in)
		assert.Equal(t, tt.want, got, "StripHold(%q)", tt.in)
		assert.Equal(t, got, fullform.StripHold(got), "StripHold not idempotent on %q", tt.in)
	}
}
