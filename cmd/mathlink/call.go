package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/mathlink/fullform"
	"github.com/njchilds90/mathlink/symbolic"
)

var callCmd = &cobra.Command{
	Use:     "call NAME [ARG...]",
	Short:   "Apply a kernel function to FullForm arguments",
	Example: `  mathlink call Sum n 'List[n, 1, 10]'`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		latex, _ := cmd.Flags().GetBool("latex")
		rt, _, err := openRuntime(cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		var operands []symbolic.Expr
		for _, a := range args[1:] {
			e, err := rt.Client.Codec().Decode(a)
			if err != nil {
				return err
			}
			operands = append(operands, e)
		}
		res, err := rt.Client.Call(cmd.Context(), args[0], operands...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, fullform.Encode(res))
		if latex {
			fmt.Fprintln(out, symbolic.LaTeX(res))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().Bool("latex", false, "Also print the result as LaTeX")
}
