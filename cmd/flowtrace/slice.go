package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/output"
	"flowtrace/internal/query"
	"flowtrace/internal/slice"
	"flowtrace/internal/storage"
)

var (
	sliceDirection       string
	sliceDepth           int
	sliceExpand          bool
	sliceCollectionDepth int
	sliceFormat          string
	sliceOutput          string
)

var sliceCmd = &cobra.Command{
	Use:   "slice <node>",
	Short: "Slice the dataflow reaching or leaving a node",
	Long: `Slice the dataflow graph from a node, by label or numeric id.

Backward slices answer "which constant values can this node hold";
forward slices answer "where does this value flow to".

Examples:
  flowtrace --graph app.yaml slice x
  flowtrace --graph app.yaml slice 42 --direction forward
  flowtrace --graph app.yaml slice x --expand-collections --output slice.json.gz`,
	Args: cobra.ExactArgs(1),
	Run:  runSlice,
}

func init() {
	sliceCmd.Flags().StringVar(&sliceDirection, "direction", "backward", "Slice direction (backward, forward)")
	sliceCmd.Flags().IntVar(&sliceDepth, "depth", 0, "Override max traversal depth (0 keeps config)")
	sliceCmd.Flags().BoolVar(&sliceExpand, "expand-collections", false, "Trace into collection factory arguments")
	sliceCmd.Flags().IntVar(&sliceCollectionDepth, "collection-depth", 0, "Override max nested factory depth (0 keeps config)")
	sliceCmd.Flags().StringVar(&sliceFormat, "format", "human", "Output format (json, human)")
	sliceCmd.Flags().StringVar(&sliceOutput, "output", "", "Write the JSON report to a file (.gz compresses)")
	rootCmd.AddCommand(sliceCmd)
}

func runSlice(cmd *cobra.Command, args []string) {
	engine, cfg, logger := mustLoadEngine()

	resp, err := engine.TraceValue(query.SliceOptions{
		Node:      args[0],
		Direction: slice.Direction(sliceDirection),
		Overrides: sliceOverrides(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error slicing: %v\n", err)
		os.Exit(1)
	}

	if db := openHistory(cfg, logger); db != nil {
		defer db.Close()
		run := storage.Run{
			ID:         resp.Provenance.RunID,
			Kind:       "slice",
			Target:     args[0],
			Matched:    1,
			Distinct:   len(resp.Constants),
			DurationMs: resp.Provenance.DurationMs,
		}
		if err := db.RecordRun(run, historyFindings(resp.Constants)); err != nil {
			logger.Warn("Failed to record run", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if sliceOutput != "" {
		if err := output.WriteReport(sliceOutput, resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	}

	switch sliceFormat {
	case "json":
		data, err := output.EncodeIndented(resp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	default:
		fmt.Print(output.RenderSlice(resp))
	}
}

func sliceOverrides() func(*slice.Config) {
	return func(sc *slice.Config) {
		if sliceDepth > 0 {
			sc.MaxDepth = sliceDepth
		}
		if sliceExpand {
			sc.ExpandCollections = true
		}
		if sliceCollectionDepth > 0 {
			sc.MaxCollectionDepth = sliceCollectionDepth
		}
	}
}
