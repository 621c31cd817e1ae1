package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .flowtrace/config.json",
	Run:   runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := config.Default()
	if err := cfg.Save(rootFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s/.flowtrace/config.json\n", rootFlag)
}
