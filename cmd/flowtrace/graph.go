package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowtrace/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect a loaded dependency graph",
}

var graphInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show graph size and enum registry",
	Run:   runGraphInfo,
}

var graphCallSitesCmd = &cobra.Command{
	Use:   "callsites",
	Short: "List call sites, optionally filtered by pattern",
	Run:   runGraphCallSites,
}

func init() {
	graphCallSitesCmd.Flags().StringVar(&traceClass, "class", "", "Callee class to match")
	graphCallSitesCmd.Flags().StringVar(&traceMethod, "method", "", "Callee method to match")
	graphCallSitesCmd.Flags().BoolVar(&traceRegex, "regex", false, "Treat class and method as regular expressions")
	graphCmd.AddCommand(graphInfoCmd, graphCallSitesCmd)
	rootCmd.AddCommand(graphCmd)
}

func runGraphInfo(cmd *cobra.Command, args []string) {
	engine, _, _ := mustLoadEngine()
	g := engine.Graph()

	fmt.Printf("nodes: %d\n", g.NumNodes())
	fmt.Printf("edges: %d\n", g.NumEdges())
	fmt.Printf("call sites: %d\n", len(g.CallSites(graph.CallPattern{})))
}

func runGraphCallSites(cmd *cobra.Command, args []string) {
	engine, _, _ := mustLoadEngine()

	sites := engine.Graph().CallSites(graph.CallPattern{
		Class:  traceClass,
		Method: traceMethod,
		Regex:  traceRegex,
	})
	if len(sites) == 0 {
		fmt.Println("No matching call sites.")
		return
	}
	for _, cs := range sites {
		fmt.Fprintf(os.Stdout, "%s  args=%d  at %s\n", cs.Callee.String(), len(cs.Args), cs.Location())
	}
}
