package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the swapflow CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "swapflow version %s\n", version)
		fmt.Fprintln(out, "Cashflow and PnL accrual for interest rate swap positions")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
