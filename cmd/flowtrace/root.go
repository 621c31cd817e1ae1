package main

import (
	"github.com/spf13/cobra"

	"flowtrace/internal/version"
)

var (
	// graphFlag is the CLI --graph flag value
	graphFlag string
	// rootFlag is where the .flowtrace directory lives
	rootFlag string
	// verboseFlag enables debug logging
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "flowtrace",
	Short: "flowtrace - constant propagation tracing over dependency graphs",
	Long: `flowtrace builds a typed program dependency graph from YAML documents,
SCIP indexes, or Java sources, and answers dataflow questions over it:
which literal and enum constants reach a given variable or call site,
and along which propagation paths.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("flowtrace version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&graphFlag, "graph", "g", "",
		"Graph input: .yaml document, .scip index, or .java source")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Directory holding the .flowtrace config and history")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")
}
