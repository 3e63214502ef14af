package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/njchilds90/mathlink"
	"github.com/njchilds90/mathlink/kernel"
	"github.com/njchilds90/mathlink/symbolic"
)

// REPL reads FullForm lines and prints the kernel's replies.
//
// A plain line goes to the kernel as text. ":expr TEXT" decodes TEXT
// locally, evaluates the expression and prints the decoded result with
// its LaTeX. ":quit" or end of input stops the loop.
type REPL struct {
	Client *mathlink.Client
	In     io.Reader
	Out    io.Writer
	// Color enables ANSI prompts. Callers set it when Out is a terminal.
	Color bool
}

// Run loops until ctx is done, :quit or end of input. Evaluation errors are
// printed and the loop continues; only the kernel going away ends it early.
func (r *REPL) Run(ctx context.Context) error {
	p := termenv.Ascii
	if r.Color {
		p = termenv.ColorProfile()
	}
	prompt := func(n int) string {
		return termenv.String(fmt.Sprintf("In[%d]:= ", n)).Foreground(p.Color("#818cf8")).String()
	}
	outLabel := func(n int) string {
		return termenv.String(fmt.Sprintf("Out[%d]= ", n)).Foreground(p.Color("#a78bfa")).String()
	}
	failure := func(err error) string {
		return termenv.String("error: " + err.Error()).Foreground(p.Color("#fb7185")).String()
	}

	sc := bufio.NewScanner(r.In)
	for n := 1; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.Out, prompt(n))
		if !sc.Scan() {
			fmt.Fprintln(r.Out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":q":
			return nil
		}

		out, err := r.eval(ctx, line)
		if err != nil {
			fmt.Fprintln(r.Out, failure(err))
			if isFatal(err) {
				return err
			}
			continue
		}
		fmt.Fprintf(r.Out, "%s%s\n", outLabel(n), out)
		n++
	}
}

func (r *REPL) eval(ctx context.Context, line string) (string, error) {
	text, isExpr := strings.CutPrefix(line, ":expr ")
	if !isExpr {
		return r.Client.EvaluateText(ctx, line)
	}
	e, err := r.Client.Codec().Decode(text)
	if err != nil {
		return "", err
	}
	res, err := r.Client.Evaluate(ctx, e)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s    [%s]", symbolic.String(res), symbolic.LaTeX(res)), nil
}

// isFatal reports errors after which the session cannot answer again.
func isFatal(err error) bool {
	return errors.Is(err, kernel.ErrProcessExited) || errors.Is(err, kernel.ErrClosed)
}
