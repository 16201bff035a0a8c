package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "grove",
	Short:         "Validate hierarchical tree layouts against declarative schemas",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if err != errValidationFailed {
			rootCmd.PrintErrln("Error:", err)
		}
		os.Exit(1)
	}
}
