package slice

import (
	"flowtrace/internal/graph"
)

// Slicer runs backward and forward slices over one immutable graph.
// Each call owns its own visited set and accumulators, so concurrent
// calls against the same graph are safe. The allocator mints ids for
// enum constants synthesized in derived result views; it must be the
// run's allocator so synthesized ids never collide with graph ids.
type Slicer struct {
	g         *graph.Graph
	alloc     *graph.Allocator
	cfg       Config
	factories FactorySet
}

// New creates a slicer. A nil config's zero MaxDepth would terminate
// immediately, so callers normally pass DefaultConfig with overrides.
func New(g *graph.Graph, alloc *graph.Allocator, cfg Config) *Slicer {
	factories := cfg.Factories
	if factories == nil {
		factories = DefaultFactories()
	}
	return &Slicer{g: g, alloc: alloc, cfg: cfg, factories: factories}
}

// Backward traces which literal values can reach start. An unknown
// start id yields an empty result, not an error.
func (s *Slicer) Backward(start graph.NodeID) *Result {
	t := &tracer{
		s:       s,
		visited: make(map[graph.NodeID]struct{}),
		res:     newResult(Backward, start, s.g, s.alloc),
	}
	t.backward(start, nil, "", 0, 0)
	return t.res
}

// Forward traces where the value at start can end up.
func (s *Slicer) Forward(start graph.NodeID) *Result {
	t := &tracer{
		s:       s,
		visited: make(map[graph.NodeID]struct{}),
		res:     newResult(Forward, start, s.g, s.alloc),
	}
	t.forward(start, nil, "", 0)
	return t.res
}

// tracer carries the per-call traversal state. The visited set is
// shared across the whole traversal: a node reached once, via any path,
// is never re-entered. A diamond dependency is therefore explored from
// whichever path gets there first; that caps work at O(graph size) and
// is a deliberate precision/cost tradeoff.
type tracer struct {
	s       *Slicer
	visited map[graph.NodeID]struct{}
	res     *Result
}

// appendStep appends to a copy whenever the backing array is shared, so
// sibling branches never clobber each other's steps.
func appendStep(steps []PropagationStep, step PropagationStep) []PropagationStep {
	return append(steps[:len(steps):len(steps)], step)
}

func nodeLocation(n graph.Node) string {
	if cs, ok := n.(*graph.CallSite); ok {
		return cs.Location()
	}
	return ""
}

// backward visits one node at the given depth, having arrived over a
// dataflow edge of kind via ("" for the start node). Nodes are marked
// visited before recursing, so self-referential and mutually-recursive
// dataflow cycles terminate even before the depth bound kicks in.
func (t *tracer) backward(id graph.NodeID, steps []PropagationStep, via graph.FlowKind, depth, collDepth int) {
	if depth > t.s.cfg.MaxDepth {
		return
	}
	node, ok := t.s.g.Node(id)
	if !ok {
		return
	}
	if _, seen := t.visited[id]; seen {
		return
	}
	t.visited[id] = struct{}{}

	steps = appendStep(steps, PropagationStep{
		Node:        id,
		Kind:        node.Kind(),
		Description: node.Describe(),
		Location:    nodeLocation(node),
		Edge:        via,
		Depth:       depth,
	})

	switch n := node.(type) {
	case *graph.Constant:
		st := SourceConstant
		if n.Type == graph.ConstEnum {
			st = SourceEnumConstant
		}
		t.res.record(Finding{Node: n, Type: st}, reverseSteps(steps), depth)

	case *graph.Param:
		// The parameter is reported as the frontier. With
		// InterProcedural set, call sites of the enclosing method are
		// where the trace would continue (one sub-slice per argument
		// position, merged into this result); that continuation is not
		// implemented and the parameter stays the reported origin.
		t.res.record(Finding{Node: n, Type: SourceParameter}, reverseSteps(steps), depth)

	case *graph.Field:
		st := SourceField
		if n.EnumShaped() {
			st = SourceEnumConstant
		}
		// Stores to this field from other methods are likewise not
		// traced; the field itself is the reported origin.
		t.res.record(Finding{Node: n, Type: st}, reverseSteps(steps), depth)

	case *graph.CallSite:
		if n.HasReceiver() {
			// Tracing receiver.getter() back to receiver: the call's
			// value came out of the receiver, so the hop is tagged as
			// a return value.
			t.backward(n.Receiver, steps, graph.FlowReturnValue, depth+1, collDepth)
		}
		if t.s.cfg.ExpandCollections &&
			collDepth < t.s.cfg.MaxCollectionDepth &&
			t.s.factories.IsFactory(n.Callee.Class, n.Callee.Name) {
			// Varargs factory calls receive their elements as direct
			// argument-pass edges, not as stores into a collection
			// object; expand them here.
			for _, e := range t.s.g.InFlow(id) {
				t.backward(e.From, steps, e.Kind, depth+1, collDepth+1)
			}
		}
		// A call site's remaining incoming dataflow edges are argument
		// passes; they do not produce the call's value, so the generic
		// continuation does not apply here.
		return
	}

	for _, e := range t.s.g.InFlow(id) {
		t.backward(e.From, steps, e.Kind, depth+1, collDepth)
	}
}

// forward is the symmetric traversal over outgoing dataflow edges.
// Returns and fields are sinks; steps stay in traversal order since the
// walk already proceeds source to sink.
func (t *tracer) forward(id graph.NodeID, steps []PropagationStep, via graph.FlowKind, depth int) {
	if depth > t.s.cfg.MaxDepth {
		return
	}
	node, ok := t.s.g.Node(id)
	if !ok {
		return
	}
	if _, seen := t.visited[id]; seen {
		return
	}
	t.visited[id] = struct{}{}

	steps = appendStep(steps, PropagationStep{
		Node:        id,
		Kind:        node.Kind(),
		Description: node.Describe(),
		Location:    nodeLocation(node),
		Edge:        via,
		Depth:       depth,
	})

	switch n := node.(type) {
	case *graph.Return:
		t.res.record(Finding{Node: n, Type: SourceReturn}, steps, depth)
	case *graph.Field:
		t.res.record(Finding{Node: n, Type: SourceField}, steps, depth)
	}

	for _, e := range t.s.g.OutFlow(id) {
		t.forward(e.To, steps, e.Kind, depth+1)
	}
}

func reverseSteps(steps []PropagationStep) []PropagationStep {
	out := make([]PropagationStep, len(steps))
	for i, s := range steps {
		out[len(steps)-1-i] = s
	}
	return out
}
