// Package fullform translates between symbolic expression trees and the
// bracketed prefix notation a Wolfram kernel prints with FullForm.
//
//	Times[Rational[1, 2], Power[x, 2]]  <->  symbolic.MulOf(F(1, 2), PowOf(x, N(2)))
//
// Decoding resolves every Head[...] through an explicit vocabulary:
//
//   - core heads map onto host constructors (Plus, Times, Power, List,
//     Complex, Rational, DirectedInfinity, Sqrt, Exp, Log and the
//     trigonometric/hyperbolic family);
//   - the bare constants Pi, E, I, Infinity, ComplexInfinity and
//     Indeterminate map onto host constants;
//   - pass-through heads (Integrate, D, Sum, DiracDelta, ...) become
//     uninterpreted symbolic.Apply nodes and encode back verbatim.
//
// Any other head is rejected with ErrUnknownHead. Callers that expect a
// kernel to return an application of some other function add its name with
// Codec.WithHeads.
package fullform

import (
	"sort"

	"github.com/njchilds90/mathlink/symbolic"
)

// elementary is the fixed bijection between kernel heads and host function
// names for one-argument elementary functions.
var elementary = symbolic.ElementaryHeads()

var hostNames = func() map[string]string {
	m := make(map[string]string, len(elementary))
	for remote, host := range elementary {
		m[host] = remote
	}
	return m
}()

// passThrough heads decode to symbolic.Apply(head, args...) unchanged.
var passThrough = []string{
	"Integrate", "D", "Sum", "Product", "Limit", "Series", "Rule",
	"FourierTransform", "InverseFourierTransform",
	"LaplaceTransform", "InverseLaplaceTransform",
	"DiracDelta", "HeavisideTheta", "Hold",
}

var constants = map[string]func() symbolic.Expr{
	"Pi":              func() symbolic.Expr { return symbolic.Pi() },
	"E":               func() symbolic.Expr { return symbolic.E() },
	"I":               func() symbolic.Expr { return symbolic.I() },
	"Infinity":        func() symbolic.Expr { return symbolic.Infinity() },
	"ComplexInfinity": func() symbolic.Expr { return symbolic.ComplexInfinity() },
	"Indeterminate":   func() symbolic.Expr { return symbolic.Indeterminate() },
}

// Codec holds the set of heads Decode accepts. The zero value is not usable;
// start from Default or New.
type Codec struct {
	heads map[string]struct{}
}

var defaultCodec = New()

// New returns a codec that accepts the fixed vocabulary plus extra
// pass-through heads.
func New(extra ...string) *Codec {
	c := &Codec{heads: make(map[string]struct{}, len(passThrough)+len(extra))}
	for _, h := range passThrough {
		c.heads[h] = struct{}{}
	}
	for _, h := range extra {
		c.heads[h] = struct{}{}
	}
	return c
}

// Default returns the shared codec for the fixed vocabulary.
func Default() *Codec { return defaultCodec }

// WithHeads returns a copy of c that also accepts names as pass-through
// heads. c is not modified.
func (c *Codec) WithHeads(names ...string) *Codec {
	out := &Codec{heads: make(map[string]struct{}, len(c.heads)+len(names))}
	for h := range c.heads {
		out.heads[h] = struct{}{}
	}
	for _, h := range names {
		if h != "" {
			out.heads[h] = struct{}{}
		}
	}
	return out
}

// Heads lists every head name c resolves, sorted.
func (c *Codec) Heads() []string {
	seen := map[string]struct{}{}
	for h := range core {
		seen[h] = struct{}{}
	}
	for h := range elementary {
		seen[h] = struct{}{}
	}
	for h := range c.heads {
		seen[h] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Vocabulary lists the head names of the default codec.
func Vocabulary() []string { return defaultCodec.Heads() }

// Encode renders e in FullForm using the default codec.
func Encode(e symbolic.Expr) string { return defaultCodec.Encode(e) }

// Decode parses FullForm text using the default codec.
func Decode(s string) (symbolic.Expr, error) { return defaultCodec.Decode(s) }
