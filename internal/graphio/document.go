// Package graphio holds the graph producers: declarative YAML graph
// documents, SCIP index import, and a best-effort Java source lowering.
// Producers populate a graph.Graph before slicing begins and guarantee
// that every edge's endpoints exist.
package graphio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"flowtrace/internal/graph"
)

// Document is the YAML graph-description format. Node ids are
// document-local labels; the loader maps them to allocated NodeIDs.
type Document struct {
	Nodes []NodeDoc `yaml:"nodes"`
	Edges []EdgeDoc `yaml:"edges"`
	Enums []EnumDoc `yaml:"enums,omitempty"`
}

// NodeDoc describes one node. Kind selects which of the remaining
// fields apply.
type NodeDoc struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`

	// constant
	Type  string   `yaml:"type,omitempty"`
	Value any      `yaml:"value,omitempty"`
	Enum  *EnumDoc `yaml:"enum,omitempty"`

	// local / param / field / return
	Name       string           `yaml:"name,omitempty"`
	VarType    string           `yaml:"varType,omitempty"`
	Index      int              `yaml:"index,omitempty"`
	Declaring  string           `yaml:"declaring,omitempty"`
	Static     bool             `yaml:"static,omitempty"`
	ActualType string           `yaml:"actualType,omitempty"`
	Method     *graph.MethodRef `yaml:"method,omitempty"`

	// callsite
	Caller   *graph.MethodRef `yaml:"caller,omitempty"`
	Callee   *graph.MethodRef `yaml:"callee,omitempty"`
	Line     int              `yaml:"line,omitempty"`
	Receiver string           `yaml:"receiver,omitempty"`
	Args     []string         `yaml:"args,omitempty"`
}

// EdgeDoc describes one edge between two node labels.
type EdgeDoc struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Category string `yaml:"category,omitempty"` // defaults to dataflow
	Kind     string `yaml:"kind,omitempty"`

	// call
	Virtual bool `yaml:"virtual,omitempty"`
	Dynamic bool `yaml:"dynamic,omitempty"`

	// type
	Relation string `yaml:"relation,omitempty"`

	// controlflow
	Operator  string `yaml:"operator,omitempty"`
	Comparand string `yaml:"comparand,omitempty"`
}

// EnumDoc describes one enum constant and its constructor arguments.
type EnumDoc struct {
	Class string       `yaml:"class"`
	Name  string       `yaml:"name"`
	Args  []EnumArgDoc `yaml:"args,omitempty"`
}

// EnumArgDoc is either a literal or a reference to another enum
// constant; exactly one of the two fields is set.
type EnumArgDoc struct {
	Literal any           `yaml:"literal,omitempty"`
	Ref     *EnumRefField `yaml:"ref,omitempty"`
}

// EnumRefField names a cross-referenced enum constant.
type EnumRefField struct {
	Class string `yaml:"class"`
	Name  string `yaml:"name"`
}

// Loaded is a fully built graph together with the run's allocator and
// the label-to-id mapping for callers that address nodes by label.
type Loaded struct {
	Graph *graph.Graph
	Alloc *graph.Allocator
	IDs   map[string]graph.NodeID
}

// LoadDocument reads and builds a YAML graph document from disk.
func LoadDocument(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph document: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument builds a graph from YAML bytes. It validates the
// producer contract: duplicate labels, unknown node kinds, and edges or
// call-site references naming absent labels are errors.
func ParseDocument(data []byte) (*Loaded, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph document: %w", err)
	}
	return buildGraph(&doc)
}

func buildGraph(doc *Document) (*Loaded, error) {
	alloc := graph.NewAllocator()
	g := graph.New()
	ids := make(map[string]graph.NodeID, len(doc.Nodes))
	callSites := make(map[string]*graph.CallSite)
	callDocs := make(map[string]NodeDoc)

	// First pass: create every node so later references by label
	// (call-site receivers/args, edges) can resolve in any order.
	for _, nd := range doc.Nodes {
		if nd.ID == "" {
			return nil, fmt.Errorf("node without id")
		}
		if _, dup := ids[nd.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", nd.ID)
		}
		node, err := buildNode(alloc, nd)
		if err != nil {
			return nil, err
		}
		g.AddNode(node)
		ids[nd.ID] = node.ID()
		if cs, ok := node.(*graph.CallSite); ok {
			callSites[nd.ID] = cs
			callDocs[nd.ID] = nd
		}
	}

	// Second pass: resolve call-site receiver and argument labels.
	for label, cs := range callSites {
		nd := callDocs[label]
		if nd.Receiver != "" {
			id, ok := ids[nd.Receiver]
			if !ok {
				return nil, fmt.Errorf("call site %q: unknown receiver %q", label, nd.Receiver)
			}
			cs.Receiver = id
		}
		for _, arg := range nd.Args {
			id, ok := ids[arg]
			if !ok {
				return nil, fmt.Errorf("call site %q: unknown argument %q", label, arg)
			}
			cs.Args = append(cs.Args, id)
		}
	}

	for _, ed := range doc.Edges {
		edge, err := buildEdge(ids, ed)
		if err != nil {
			return nil, err
		}
		if !g.AddEdge(edge) {
			return nil, fmt.Errorf("edge %s -> %s dropped by store", ed.From, ed.To)
		}
	}

	for _, en := range doc.Enums {
		g.RegisterEnum(en.Class, en.Name, buildEnumArgs(en.Args))
	}

	return &Loaded{Graph: g, Alloc: alloc, IDs: ids}, nil
}

func buildNode(alloc *graph.Allocator, nd NodeDoc) (graph.Node, error) {
	method := graph.MethodRef{}
	if nd.Method != nil {
		method = *nd.Method
	}

	switch graph.NodeKind(nd.Kind) {
	case graph.KindConstant:
		if graph.ConstType(nd.Type) == graph.ConstEnum {
			if nd.Enum == nil {
				return nil, fmt.Errorf("node %q: enum constant without enum block", nd.ID)
			}
			return graph.NewEnumConstant(alloc, &graph.EnumConstant{
				Class: nd.Enum.Class,
				Name:  nd.Enum.Name,
				Args:  buildEnumArgs(nd.Enum.Args),
			}), nil
		}
		return graph.NewConstant(alloc, graph.ConstType(nd.Type), normalizeValue(graph.ConstType(nd.Type), nd.Value)), nil
	case graph.KindLocalVar:
		return graph.NewLocalVar(alloc, nd.Name, nd.VarType, method), nil
	case graph.KindParam:
		return graph.NewParam(alloc, nd.Index, nd.VarType, method), nil
	case graph.KindField:
		return graph.NewField(alloc, nd.Declaring, nd.Name, nd.VarType, nd.Static), nil
	case graph.KindReturn:
		return graph.NewReturn(alloc, method, nd.ActualType), nil
	case graph.KindCallSite:
		if nd.Caller == nil || nd.Callee == nil {
			return nil, fmt.Errorf("node %q: call site needs caller and callee", nd.ID)
		}
		// Receiver and args are resolved in the second pass.
		return graph.NewCallSite(alloc, *nd.Caller, *nd.Callee, nd.Line, graph.NoNode, nil), nil
	default:
		return nil, fmt.Errorf("node %q: unknown kind %q", nd.ID, nd.Kind)
	}
}

// normalizeValue widens YAML's scalar decoding to the representation
// the graph uses: int64 for integral constants, float64 for floating.
func normalizeValue(t graph.ConstType, v any) any {
	switch t {
	case graph.ConstInt, graph.ConstLong:
		switch n := v.(type) {
		case int:
			return int64(n)
		case int64:
			return n
		}
	case graph.ConstFloat, graph.ConstDouble:
		switch n := v.(type) {
		case int:
			return float64(n)
		case float64:
			return n
		}
	case graph.ConstNull:
		return nil
	}
	return v
}

func buildEdge(ids map[string]graph.NodeID, ed EdgeDoc) (graph.Edge, error) {
	from, ok := ids[ed.From]
	if !ok {
		return nil, fmt.Errorf("edge from unknown node %q", ed.From)
	}
	to, ok := ids[ed.To]
	if !ok {
		return nil, fmt.Errorf("edge to unknown node %q", ed.To)
	}

	cat := graph.EdgeCategory(ed.Category)
	if ed.Category == "" {
		cat = graph.CategoryDataFlow
	}
	switch cat {
	case graph.CategoryDataFlow:
		return graph.DataFlowEdge{From: from, To: to, Kind: graph.FlowKind(ed.Kind)}, nil
	case graph.CategoryCall:
		return graph.CallEdge{From: from, To: to, Virtual: ed.Virtual, Dynamic: ed.Dynamic}, nil
	case graph.CategoryType:
		return graph.TypeEdge{From: from, To: to, Relation: graph.TypeRelation(ed.Relation)}, nil
	case graph.CategoryControlFlow:
		var cmp *graph.BranchComparison
		if ed.Operator != "" {
			cmp = &graph.BranchComparison{Operator: ed.Operator, Comparand: ed.Comparand}
		}
		return graph.ControlFlowEdge{From: from, To: to, Kind: graph.CFKind(ed.Kind), Comparison: cmp}, nil
	default:
		return nil, fmt.Errorf("edge %s -> %s: unknown category %q", ed.From, ed.To, ed.Category)
	}
}

func buildEnumArgs(docs []EnumArgDoc) []graph.EnumArg {
	args := make([]graph.EnumArg, 0, len(docs))
	for _, d := range docs {
		if d.Ref != nil {
			args = append(args, graph.EnumValueRef{EnumClass: d.Ref.Class, Name: d.Ref.Name})
			continue
		}
		v := d.Literal
		if n, ok := v.(int); ok {
			v = int64(n)
		}
		args = append(args, graph.LiteralArg{Value: v})
	}
	return args
}
