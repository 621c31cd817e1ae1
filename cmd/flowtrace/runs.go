package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/output"
	"flowtrace/internal/storage"
)

var (
	runsLimit int
	runsKeep  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the findings history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Run:   runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its findings",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsShow,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Run:   runRunsPrune,
}

func init() {
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	runsPruneCmd.Flags().IntVar(&runsKeep, "keep", 20, "Runs to keep")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsPruneCmd)
	rootCmd.AddCommand(runsCmd)
}

func mustOpenHistory() *storage.DB {
	cfg := mustLoadConfig()
	db, err := storage.Open(rootFlag, newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	return db
}

func runRunsList(cmd *cobra.Command, args []string) {
	db := mustOpenHistory()
	defer db.Close()

	runs, err := db.ListRuns(runsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}
	output.RenderRuns(os.Stdout, runs)
}

func runRunsShow(cmd *cobra.Command, args []string) {
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

	fmt.Printf("%s %s %s (matched %d, distinct %d, %dms)\n",
		run.ID, run.Kind, run.Target, run.Matched, run.Distinct, run.DurationMs)

	findings, err := db.RunFindings(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading findings: %v\n", err)
		os.Exit(1)
	}
	for _, f := range findings {
		if f.EnumName != "" {
			fmt.Printf("  %s.%s\n", f.EnumClass, f.EnumName)
		} else {
			fmt.Printf("  %s (%s)\n", f.Value, f.ConstType)
		}
	}
}

func runRunsPrune(cmd *cobra.Command, args []string) {
	db := mustOpenHistory()
	defer db.Close()

	deleted, err := db.PruneRuns(runsKeep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error pruning runs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d run(s), kept newest %d.\n", deleted, runsKeep)
}
