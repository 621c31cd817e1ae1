package slice

import (
	"flowtrace/internal/graph"
)

// Result is the immutable outcome of one slice call.
//
// Findings, Paths and PropagationPaths correspond positionally: the
// i-th finding was discovered over the i-th path. Derived views depend
// on that invariant; anything rebuilding a Result must preserve it.
type Result struct {
	Direction Direction
	Start     graph.NodeID

	// Findings are the discovered sources (backward) or sinks (forward).
	Findings []Finding
	// Paths are the node-id skeletons of the discovered paths.
	Paths []DataFlowPath
	// PropagationPaths are the human-readable reconstructions.
	PropagationPaths []PropagationPath

	g     *graph.Graph
	alloc *graph.Allocator
}

func newResult(dir Direction, start graph.NodeID, g *graph.Graph, alloc *graph.Allocator) *Result {
	return &Result{Direction: dir, Start: start, g: g, alloc: alloc}
}

// record appends one finding together with its path snapshots, keeping
// the positional correspondence invariant.
func (r *Result) record(f Finding, steps []PropagationStep, depth int) {
	r.Findings = append(r.Findings, f)

	ids := make([]graph.NodeID, len(steps))
	for i, s := range steps {
		ids[i] = s.Node
	}
	r.Paths = append(r.Paths, DataFlowPath{Nodes: ids})
	r.PropagationPaths = append(r.PropagationPaths, PropagationPath{
		Steps:      steps,
		SourceType: f.Type,
		Depth:      depth,
	})
}

// Constants returns the direct constant sources, in discovery order.
func (r *Result) Constants() []*graph.Constant {
	var out []*graph.Constant
	for _, f := range r.Findings {
		if c, ok := f.Node.(*graph.Constant); ok {
			out = append(out, c)
		}
	}
	return out
}

// AllConstants returns the direct constants plus, for every field
// source that has the enum-constant shape, a freshly synthesized enum
// constant whose constructor arguments come from the graph's enum
// registry (empty when the lookup finds nothing). Synthesized constants
// get new ids from the run's allocator and are not inserted into the
// graph; they exist only in the result.
func (r *Result) AllConstants() []*graph.Constant {
	out := r.Constants()
	for _, f := range r.enumShapedFields() {
		out = append(out, r.synthesizeEnum(f.field))
	}
	return out
}

// ConstantWithPath pairs one discovered constant with the propagation
// path that reached it.
type ConstantWithPath struct {
	Constant *graph.Constant
	Path     PropagationPath
}

// ConstantsWithPaths pairs every constant from AllConstants with its
// propagation path: direct constants first, then field-derived enum
// constants, each matched by position with PropagationPaths.
func (r *Result) ConstantsWithPaths() []ConstantWithPath {
	var out []ConstantWithPath
	for i, f := range r.Findings {
		if c, ok := f.Node.(*graph.Constant); ok {
			out = append(out, ConstantWithPath{Constant: c, Path: r.PropagationPaths[i]})
		}
	}
	for _, f := range r.enumShapedFields() {
		out = append(out, ConstantWithPath{
			Constant: r.synthesizeEnum(f.field),
			Path:     r.PropagationPaths[f.index],
		})
	}
	return out
}

// PropagationPathsBySourceType groups the propagation paths by their
// source-type tag.
func (r *Result) PropagationPathsBySourceType() map[SourceType][]PropagationPath {
	out := make(map[SourceType][]PropagationPath)
	for _, p := range r.PropagationPaths {
		out[p.SourceType] = append(out[p.SourceType], p)
	}
	return out
}

// MaxPropagationDepth returns the deepest recorded propagation depth,
// or 0 for an empty result.
func (r *Result) MaxPropagationDepth() int {
	max := 0
	for _, p := range r.PropagationPaths {
		if p.Depth > max {
			max = p.Depth
		}
	}
	return max
}

type indexedField struct {
	index int
	field *graph.Field
}

// enumShapedFields returns the field findings classified as enum
// constant accesses, with their finding index for path pairing.
func (r *Result) enumShapedFields() []indexedField {
	var out []indexedField
	for i, f := range r.Findings {
		fld, ok := f.Node.(*graph.Field)
		if !ok {
			continue
		}
		if f.Type == SourceEnumConstant && fld.EnumShaped() {
			out = append(out, indexedField{index: i, field: fld})
		}
	}
	return out
}

func (r *Result) synthesizeEnum(f *graph.Field) *graph.Constant {
	args := r.g.EnumValues(f.Declaring, f.Name)
	if args == nil {
		args = []graph.EnumArg{}
	}
	return graph.NewEnumConstant(r.alloc, &graph.EnumConstant{
		Class: f.Declaring,
		Name:  f.Name,
		Args:  args,
	})
}
