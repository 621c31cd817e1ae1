// Package slice implements the dataflow slicing engine: depth-bounded,
// cycle-safe backward and forward traversals over the dependency graph,
// with human-readable propagation-path reconstruction.
package slice

// Config controls one slice traversal.
type Config struct {
	// MaxDepth bounds the number of dataflow hops from the start node.
	// Branches past it are truncated silently. This is the mandatory
	// termination guarantee for cyclic graphs.
	MaxDepth int

	// InterProcedural enables tracing across method boundaries.
	// Parameter and field frontiers are still reported as sources; the
	// recursive merge into call-site arguments and field stores is a
	// known limitation (see package docs).
	InterProcedural bool

	// ContextSensitive is accepted for compatibility and unused.
	ContextSensitive bool

	// FlowSensitive is accepted for compatibility and unused.
	FlowSensitive bool

	// ExpandCollections enables the collection-factory heuristic:
	// arguments of recognized varargs factory calls are traced as if
	// they flowed into the slice directly.
	ExpandCollections bool

	// MaxCollectionDepth bounds how many nested factory call sites may
	// be expanded along a single path.
	MaxCollectionDepth int

	// Factories overrides the factory registry. Nil means DefaultFactories.
	Factories FactorySet
}

// DefaultConfig returns the default slicing configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:           50,
		InterProcedural:    true,
		ContextSensitive:   false,
		FlowSensitive:      true,
		ExpandCollections:  false,
		MaxCollectionDepth: 3,
	}
}
