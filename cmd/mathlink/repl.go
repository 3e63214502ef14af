package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/njchilds90/mathlink/internal/cli"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive kernel session",
	Long: `Reads FullForm lines from stdin and prints the kernel's replies.

Prefix a line with :expr to round-trip it through the expression decoder.
Type :quit or press Ctrl-D to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := openRuntime(cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		color := term.IsTerminal(int(os.Stdout.Fd()))
		if color {
			if b, ok := rt.Client.Session().(interface{ Banner() string }); ok {
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(b.Banner()))
			}
		}
		r := &cli.REPL{
			Client: rt.Client,
			In:     cmd.InOrStdin(),
			Out:    cmd.OutOrStdout(),
			Color:  color,
		}
		return r.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
