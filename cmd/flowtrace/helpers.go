package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flowtrace/internal/config"
	"flowtrace/internal/graphio"
	"flowtrace/internal/logging"
	"flowtrace/internal/query"
	"flowtrace/internal/storage"
)

func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.Level(cfg.Logging.Level)
	if verboseFlag {
		level = logging.DebugLevel
	}
	return logging.New(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// loadGraph builds a graph from the --graph input, dispatching on the
// file extension.
func loadGraph(logger *logging.Logger) (*graphio.Loaded, error) {
	if graphFlag == "" {
		return nil, fmt.Errorf("no graph input: pass --graph <file>")
	}

	switch strings.ToLower(filepath.Ext(graphFlag)) {
	case ".yaml", ".yml":
		return graphio.LoadDocument(graphFlag)
	case ".scip":
		return graphio.LoadSCIP(graphFlag)
	case ".java":
		p := graphio.NewJavaProducer()
		if err := p.ParseFile(context.Background(), graphFlag); err != nil {
			return nil, err
		}
		return p.Result(), nil
	default:
		return nil, fmt.Errorf("unsupported graph input %q: want .yaml, .scip, or .java", graphFlag)
	}
}

// mustLoadEngine wires config, logger, and graph into a query engine.
func mustLoadEngine() (*query.Engine, *config.Config, *logging.Logger) {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	loaded, err := loadGraph(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading graph: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("Graph loaded", map[string]interface{}{
		"input": graphFlag,
		"nodes": loaded.Graph.NumNodes(),
		"edges": loaded.Graph.NumEdges(),
	})

	return query.NewEngine(cfg, logger, loaded), cfg, logger
}

// openHistory opens the findings database when history is enabled.
// Returns nil when disabled or unavailable; recording is best effort.
func openHistory(cfg *config.Config, logger *logging.Logger) *storage.DB {
	if !cfg.History.Enabled {
		return nil
	}
	db, err := storage.Open(rootFlag, logger)
	if err != nil {
		logger.Warn("History database unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return db
}

func historyFindings(constants []query.ConstantInfo) []storage.Finding {
	out := make([]storage.Finding, 0, len(constants))
	for _, c := range constants {
		f := storage.Finding{ConstType: c.Type}
		if c.Enum != nil {
			f.EnumClass = c.Enum.Class
			f.EnumName = c.Enum.Name
		} else if c.Value != nil {
			f.Value = fmt.Sprintf("%v", c.Value)
		}
		out = append(out, f)
	}
	return out
}
