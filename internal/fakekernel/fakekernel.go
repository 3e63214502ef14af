// Package fakekernel is a scripted stand-in for a Wolfram kernel started
// with -rawterm. It prints the same banner, In[n]:= prompts and
// Out[n]//FullForm= blocks, so the real process code path can run in tests
// on machines without Mathematica.
//
// Test binaries become the fake kernel by calling Main from TestMain and
// starting themselves (os.Args[0]) with Env(ModeServe) in the environment.
package fakekernel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvVar selects the fake kernel mode in a re-executed test binary.
const EnvVar = "MATHLINK_FAKE_KERNEL"

const (
	// ModeServe answers requests from DefaultScript until Quit.
	ModeServe = "serve"
	// ModeMute prints the banner and exits without ever prompting.
	ModeMute = "mute"
	// ModeCrash prompts once, reads one request and exits with status 3.
	ModeCrash = "crash"
)

const banner = "Mathematica 13.3.0 Kernel for Linux x86 (64-bit)\nCopyright 1988-2023 Wolfram Research, Inc.\n"

// lineWidth is where the fake kernel wraps long output, continuing with
// a ">" marker like the real terminal front end.
const lineWidth = 70

// Reply is the scripted answer to one input.
type Reply struct {
	// Out is the FullForm payload. Empty means no Out line is printed.
	Out string
	// Print is printed before the Out line (messages, Print output).
	Print string
}

// Script maps the text inside FullForm[...] to its reply. Inputs missing
// from the script are returned unevaluated.
type Script map[string]Reply

// DefaultScript answers the inputs the test suites and examples send.
func DefaultScript() Script {
	return Script{
		"Integrate[x, x]":       {Out: "Times[Rational[1, 2], Power[x, 2]]"},
		"Integrate[Exp[x], x]":  {Out: "Power[E, x]"},
		"x+y":                   {Out: "Plus[x, y]"},
		"x-y":                   {Out: "Plus[x, Times[-1, y]]"},
		"x/y":                   {Out: "Times[x, Power[y, -1]]"},
		"D[Sin[x], x]":          {Out: "Cos[x]"},
		"D[Sin[Sin[x]], x]":     {Out: "Times[Cos[x], Cos[Sin[x]]]"},
		"Integrate[x^2, {x, -1, 1}]":                 {Out: "Rational[2, 3]"},
		"Integrate[Power[x, 2], {x, -1, 1}]":         {Out: "Rational[2, 3]"},
		"Integrate[Exp[I x], {x, 0, Pi}]":            {Out: "Complex[0, 2]"},
		"Integrate[Exp[-x^2], {x, -Infinity, +Infinity}]": {Out: "Power[Pi, Rational[1, 2]]"},
		"Integrate[Exp[Times[-1, Power[x, 2]]], {x, DirectedInfinity[-1], Infinity}]": {Out: "Power[Pi, Rational[1, 2]]"},
		"Integrate[Power[Plus[Power[x, 2], 1], -1], {x, 0, Infinity}]":               {Out: "Times[Rational[1, 2], Pi]"},
		"Integrate[Exp[Times[Complex[0, 1], x]], {x, 0, Pi}]":                        {Out: "Complex[0, 2]"},
		"FourierTransform[Sin[x], {x, y}, {u, v}]": {
			Out: "Times[Complex[0, 1], Pi, Plus[DiracDelta[Plus[-1, u]], Times[-1, DiracDelta[Plus[1, u]]]], DiracDelta[v]]",
		},
		"Expand[(1 + x)^10]": {
			Out: "Plus[1, Times[10, x], Times[45, Power[x, 2]], Times[120, Power[x, 3]], Times[210, Power[x, 4]], " +
				"Times[252, Power[x, 5]], Times[210, Power[x, 6]], Times[120, Power[x, 7]], Times[45, Power[x, 8]], " +
				"Times[10, Power[x, 9]], Power[x, 10]]",
		},
		"Apply[Integrate, {x, x}]":                   {Out: "Times[Rational[1, 2], Power[x, 2]]"},
		"Apply[D, {Sin[x], x}]":                      {Out: "Cos[x]"},
		"Apply[Integrate, {Power[x, 2], {x, -1, 1}}]": {Out: "Rational[2, 3]"},
		"I*I":                         {Out: "-1"},
		"Apply[Sum, {n, {n, 1, 10}}]": {Out: "55"},
		"Hold[x]":                     {Out: "Hold[x]"},
		"1/0": {
			Print: "Power::infy: Infinite expression 1/0 encountered.\n",
			Out:   "ComplexInfinity",
		},
		"Print[1]": {Print: "1"},
	}
}

// Env returns the environment entry that turns a test binary into the fake
// kernel in the given mode.
func Env(mode string) string { return EnvVar + "=" + mode }

// Main runs the fake kernel on stdin/stdout and exits when EnvVar is set.
// It returns immediately otherwise.
func Main() {
	mode := os.Getenv(EnvVar)
	if mode == "" {
		return
	}
	os.Exit(run(mode, os.Stdin, os.Stdout))
}

func run(mode string, in io.Reader, out io.Writer) int {
	switch mode {
	case ModeMute:
		fmt.Fprint(out, banner)
		return 0
	case ModeCrash:
		fmt.Fprintf(out, "%s\nIn[1]:= ", banner)
		bufio.NewReader(in).ReadString('\n')
		return 3
	}
	if err := Serve(in, out, DefaultScript()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// Serve speaks the kernel protocol on in/out until Quit or end of input.
func Serve(in io.Reader, out io.Writer, script Script) error {
	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(in)

	fmt.Fprintf(w, "%s\nIn[1]:= ", banner)
	if err := w.Flush(); err != nil {
		return err
	}
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "Quit" || line == "Quit[]" {
			return nil
		}
		input := line
		if strings.HasPrefix(line, "FullForm[") && strings.HasSuffix(line, "]") {
			input = line[len("FullForm[") : len(line)-1]
		}

		reply, ok := script[input]
		if !ok {
			reply = Reply{Out: input}
		}
		if reply.Print != "" {
			fmt.Fprintf(w, "%s\n", reply.Print)
		}
		if reply.Out != "" {
			fmt.Fprintf(w, "Out[%d]//FullForm= %s\n\n", n, wrap(reply.Out))
		}
		fmt.Fprintf(w, "In[%d]:= ", n+1)
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return sc.Err()
}

// wrap breaks s after ", " so no line exceeds lineWidth, starting each
// continuation line with ">   ".
func wrap(s string) string {
	if len(s) <= lineWidth {
		return s
	}
	var b strings.Builder
	col := 0
	for _, part := range strings.SplitAfter(s, ", ") {
		if col > 0 && col+len(part) > lineWidth {
			b.WriteString("\n>   ")
			col = 0
		}
		b.WriteString(part)
		col += len(part)
	}
	return b.String()
}
