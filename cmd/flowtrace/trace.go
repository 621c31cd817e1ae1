package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/output"
	"flowtrace/internal/query"
	"flowtrace/internal/storage"
)

var (
	traceClass  string
	traceMethod string
	traceParams []string
	traceRegex  bool
	traceArg    int
	traceFormat string
	traceOutput string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Trace constants reaching matched call sites",
	Long: `Find call sites matching a class/method pattern and backward slice
one argument of each, collecting every literal and enum constant that
can reach it.

Examples:
  flowtrace --graph app.yaml trace --class com.app.Experiments --method isEnabled
  flowtrace --graph app.yaml trace --method "is.*" --regex --arg 0
  flowtrace --graph app.scip trace --method isEnabled --output trace.json.gz`,
	Run: runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceClass, "class", "", "Callee class to match")
	traceCmd.Flags().StringVar(&traceMethod, "method", "", "Callee method to match")
	traceCmd.Flags().StringSliceVar(&traceParams, "params", nil, "Callee parameter types to match")
	traceCmd.Flags().BoolVar(&traceRegex, "regex", false, "Treat class and method as regular expressions")
	traceCmd.Flags().IntVar(&traceArg, "arg", 0, "Zero-based argument position to trace")
	traceCmd.Flags().IntVar(&sliceDepth, "depth", 0, "Override max traversal depth (0 keeps config)")
	traceCmd.Flags().BoolVar(&sliceExpand, "expand-collections", false, "Trace into collection factory arguments")
	traceCmd.Flags().IntVar(&sliceCollectionDepth, "collection-depth", 0, "Override max nested factory depth (0 keeps config)")
	traceCmd.Flags().StringVar(&traceFormat, "format", "human", "Output format (json, human)")
	traceCmd.Flags().StringVar(&traceOutput, "output", "", "Write the JSON report to a file (.gz compresses)")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) {
	engine, cfg, logger := mustLoadEngine()

	resp, err := engine.TraceCallSites(query.TraceOptions{
		Class:     traceClass,
		Method:    traceMethod,
		Params:    traceParams,
		Regex:     traceRegex,
		Arg:       traceArg,
		Overrides: sliceOverrides(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error tracing: %v\n", err)
		os.Exit(1)
	}

	if db := openHistory(cfg, logger); db != nil {
		defer db.Close()
		run := storage.Run{
			ID:         resp.Provenance.RunID,
			Kind:       "trace",
			Target:     resp.Pattern,
			Matched:    resp.Matched,
			Distinct:   len(resp.Distinct),
			DurationMs: resp.Provenance.DurationMs,
		}
		if err := db.RecordRun(run, historyFindings(resp.Distinct)); err != nil {
			logger.Warn("Failed to record run", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if traceOutput != "" {
		if err := output.WriteReport(traceOutput, resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	}

	switch traceFormat {
	case "json":
		data, err := output.EncodeIndented(resp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default:
		fmt.Print(output.RenderTrace(resp))
	}
}
