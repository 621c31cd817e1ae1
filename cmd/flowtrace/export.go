package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/output"
	"flowtrace/internal/storage"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a recorded run as a JSON report",
	Long: `Export a run from the findings history as a JSON report file.
An --output path ending in .gz is gzip compressed.

Examples:
  flowtrace export 2f1c... --output report.json
  flowtrace export 2f1c... --output report.json.gz`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "report.json.gz", "Report file path (.gz compresses)")
	rootCmd.AddCommand(exportCmd)
}

type runReport struct {
	Run      storage.Run       `json:"run"`
	Findings []storage.Finding `json:"findings,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) {
	db := mustOpenHistory()
	defer db.Close()

	run, err := db.GetRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
		os.Exit(1)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run %s\n", args[0])
		os.Exit(1)
	}
	findings, err := db.RunFindings(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading findings: %v\n", err)
		os.Exit(1)
	}

	if err := output.WriteReport(exportOutput, runReport{Run: *run, Findings: findings}); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", exportOutput)
}
