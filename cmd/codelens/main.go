// codelens generates documentation and runs multi-category analysis over a
// codebase using LLM providers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "codelens",
		Short:         "codelens — LLM-powered codebase documentation and analysis",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (default ~/.codelens.yaml)")
	root.PersistentFlags().String("logfile", "", "write JSON logs to this file instead of stderr")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(),
		newDocsCmd(),
		newCacheCmd(),
		newProvidersCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
