package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/mathlink"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mathlink",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mathlink version %s\n", mathlink.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
