// Package query exposes the analysis operations the CLI drives:
// slicing single nodes and tracing constants into matched call sites.
// Responses are JSON-ready structs in the shape the output layer and
// the findings store consume.
package query

import (
	"strconv"

	"flowtrace/internal/config"
	"flowtrace/internal/errors"
	"flowtrace/internal/graph"
	"flowtrace/internal/graphio"
	"flowtrace/internal/logging"
	"flowtrace/internal/slice"
)

// Engine runs queries against one loaded graph.
type Engine struct {
	cfg    *config.Config
	logger *logging.Logger
	graph  *graph.Graph
	alloc  *graph.Allocator
	ids    map[string]graph.NodeID
}

// NewEngine creates an engine over a loaded graph.
func NewEngine(cfg *config.Config, logger *logging.Logger, loaded *graphio.Loaded) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		graph:  loaded.Graph,
		alloc:  loaded.Alloc,
		ids:    loaded.IDs,
	}
}

// Graph returns the engine's graph store.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// resolveNode accepts either a producer label or a numeric node id.
func (e *Engine) resolveNode(ref string) (graph.NodeID, error) {
	if id, ok := e.ids[ref]; ok {
		return id, nil
	}
	if n, err := strconv.ParseUint(ref, 10, 32); err == nil {
		id := graph.NodeID(n)
		if _, ok := e.graph.Node(id); ok {
			return id, nil
		}
	}
	return graph.NoNode, errors.Newf(errors.NodeNotFound, nil, "no node labeled or numbered %q", ref)
}

// slicer builds a slicer from the engine config plus per-query overrides.
func (e *Engine) slicer(overrides func(*slice.Config)) (*slice.Slicer, error) {
	sc, err := e.cfg.SliceConfig()
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		overrides(&sc)
	}
	return slice.New(e.graph, e.alloc, sc), nil
}
