package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storectl",
	Short:         "Operator commands for the storefront database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(newCreateAdminCmd())
	rootCmd.AddCommand(newPruneTokensCmd())
}
