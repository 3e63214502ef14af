package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/mathlink/symbolic"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] INPUT...",
	Short: "Evaluate FullForm inputs and print the replies",
	Long: `Sends each INPUT to the kernel in order and prints the FullForm reply.

With --expr each INPUT is decoded locally first, and the reply is decoded
and printed as an expression.`,
	Example: `  mathlink eval 'Integrate[x, x]' 'D[Sin[x], x]'
  mathlink eval --expr 'Integrate[Power[x, 2], List[x, -1, 1]]'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asExpr, _ := cmd.Flags().GetBool("expr")
		rt, _, err := openRuntime(cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		for _, in := range args {
			if !asExpr {
				reply, err := rt.Client.EvaluateText(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, reply)
				continue
			}
			e, err := rt.Client.Codec().Decode(in)
			if err != nil {
				return err
			}
			res, err := rt.Client.Evaluate(ctx, e)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, symbolic.String(res))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Bool("expr", false, "Decode inputs and replies as expressions")
}
