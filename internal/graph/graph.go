package graph

import (
	"regexp"
)

// Graph is the dependency-graph store. A producer populates it before
// any slicing begins; afterwards it is treated as read-only, so any
// number of concurrent slices may read it. Lookups for unknown ids or
// non-matching patterns return empty results, never errors.
type Graph struct {
	nodes map[NodeID]Node
	in    map[NodeID][]Edge
	out   map[NodeID][]Edge

	callSites []*CallSite
	// enums maps enum class -> constant name -> ordered ctor args.
	enums map[string]map[string][]EnumArg
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		in:    make(map[NodeID][]Edge),
		out:   make(map[NodeID][]Edge),
		enums: make(map[string]map[string][]EnumArg),
	}
}

// AddNode registers a node. Adding an enum constant also registers its
// constructor arguments for EnumValues lookups. Re-adding an id is a
// no-op so producers may be idempotent.
func (g *Graph) AddNode(n Node) {
	if n == nil || n.ID() == NoNode {
		return
	}
	if _, exists := g.nodes[n.ID()]; exists {
		return
	}
	g.nodes[n.ID()] = n

	switch t := n.(type) {
	case *Constant:
		if t.Type == ConstEnum && t.Enum != nil {
			g.RegisterEnum(t.Enum.Class, t.Enum.Name, t.Enum.Args)
		}
	case *CallSite:
		g.callSites = append(g.callSites, t)
	}
}

// AddEdge registers an edge. Both endpoints must already exist in the
// graph; edges with a missing endpoint are dropped, keeping the store's
// invariant that every edge references live nodes.
func (g *Graph) AddEdge(e Edge) bool {
	from, to := e.Endpoints()
	if _, ok := g.nodes[from]; !ok {
		return false
	}
	if _, ok := g.nodes[to]; !ok {
		return false
	}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
	return true
}

// RegisterEnum records the ordered constructor arguments of one enum
// constant, making them available to EnumValues even when no Constant
// node exists for it.
func (g *Graph) RegisterEnum(enumClass, name string, args []EnumArg) {
	byName := g.enums[enumClass]
	if byName == nil {
		byName = make(map[string][]EnumArg)
		g.enums[enumClass] = byName
	}
	byName[name] = args
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int {
	total := 0
	for _, edges := range g.out {
		total += len(edges)
	}
	return total
}

// Incoming returns the edges arriving at id, filtered by category.
func (g *Graph) Incoming(id NodeID, cat EdgeCategory) []Edge {
	return filterEdges(g.in[id], cat)
}

// Outgoing returns the edges leaving id, filtered by category.
func (g *Graph) Outgoing(id NodeID, cat EdgeCategory) []Edge {
	return filterEdges(g.out[id], cat)
}

// InFlow returns the dataflow edges arriving at id.
func (g *Graph) InFlow(id NodeID) []DataFlowEdge {
	return flowEdges(g.in[id])
}

// OutFlow returns the dataflow edges leaving id.
func (g *Graph) OutFlow(id NodeID) []DataFlowEdge {
	return flowEdges(g.out[id])
}

func filterEdges(edges []Edge, cat EdgeCategory) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Category() == cat {
			out = append(out, e)
		}
	}
	return out
}

func flowEdges(edges []Edge) []DataFlowEdge {
	var out []DataFlowEdge
	for _, e := range edges {
		if df, ok := e.(DataFlowEdge); ok {
			out = append(out, df)
		}
	}
	return out
}

// CallPattern matches call sites by callee. Empty fields match
// anything. With Regex set, Class and Method are compiled as regular
// expressions; a pattern that fails to compile matches nothing.
type CallPattern struct {
	Class  string
	Method string
	Params []string
	Regex  bool
}

func (p CallPattern) matches(callee MethodRef) bool {
	if p.Regex {
		if p.Class != "" && !regexMatch(p.Class, callee.Class) {
			return false
		}
		if p.Method != "" && !regexMatch(p.Method, callee.Name) {
			return false
		}
	} else {
		if p.Class != "" && p.Class != callee.Class {
			return false
		}
		if p.Method != "" && p.Method != callee.Name {
			return false
		}
	}
	if len(p.Params) > 0 {
		if len(p.Params) != len(callee.Params) {
			return false
		}
		for i, want := range p.Params {
			if want != "" && want != callee.Params[i] {
				return false
			}
		}
	}
	return true
}

func regexMatch(pattern, s string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// CallSites returns every call site whose callee matches the pattern,
// in insertion order.
func (g *Graph) CallSites(p CallPattern) []*CallSite {
	var out []*CallSite
	for _, cs := range g.callSites {
		if p.matches(cs.Callee) {
			out = append(out, cs)
		}
	}
	return out
}

// CallSitesTo returns every call site whose callee descriptor equals
// the given method.
func (g *Graph) CallSitesTo(m MethodRef) []*CallSite {
	var out []*CallSite
	for _, cs := range g.callSites {
		if cs.Callee.String() == m.String() {
			out = append(out, cs)
		}
	}
	return out
}

// EnumValues returns the ordered constructor-argument values recorded
// for the named enum constant, or nil when unknown.
func (g *Graph) EnumValues(enumClass, constantName string) []EnumArg {
	byName := g.enums[enumClass]
	if byName == nil {
		return nil
	}
	return byName[constantName]
}
