package slice

import (
	"testing"

	"flowtrace/internal/graph"
)

// enumFieldFixture builds a slice frontier containing one direct
// constant and one enum-shaped field access.
func enumFieldFixture(registerEnum bool) (*fixture, *graph.LocalVar) {
	f := newFixture()
	c := f.intConst(42)
	l1 := f.local("a")
	f.assign(c, l1)

	fld := graph.NewField(f.alloc, "com.app.Experiment", "EXPERIMENT_A", "com.app.Experiment", true)
	f.g.AddNode(fld)
	if registerEnum {
		f.g.RegisterEnum("com.app.Experiment", "EXPERIMENT_A", []graph.EnumArg{
			graph.LiteralArg{Value: int64(1001)},
			graph.EnumValueRef{EnumClass: "com.app.Owner", Name: "TEAM_GROWTH"},
		})
	}

	sink := f.local("z")
	f.assign(l1, sink)
	f.g.AddEdge(graph.DataFlowEdge{From: fld.ID(), To: sink.ID(), Kind: graph.FlowFieldLoad})
	return f, sink
}

func TestAllConstantsSupersetOfConstants(t *testing.T) {
	f, sink := enumFieldFixture(true)
	res := f.slicer(DefaultConfig()).Backward(sink.ID())

	direct := res.Constants()
	all := res.AllConstants()

	if len(direct) != 1 {
		t.Fatalf("Constants() = %d entries, want 1", len(direct))
	}
	if len(all) != 2 {
		t.Fatalf("AllConstants() = %d entries, want 2", len(all))
	}
	// Direct constants come first, in the same order.
	for i, c := range direct {
		if all[i] != c {
			t.Errorf("AllConstants()[%d] != Constants()[%d]", i, i)
		}
	}

	synth := all[1]
	if synth.Type != graph.ConstEnum || synth.Enum == nil {
		t.Fatalf("synthesized constant = %+v, want enum constant", synth)
	}
	if synth.Enum.Class != "com.app.Experiment" || synth.Enum.Name != "EXPERIMENT_A" {
		t.Errorf("synthesized enum = %s.%s, want com.app.Experiment.EXPERIMENT_A",
			synth.Enum.Class, synth.Enum.Name)
	}
	if len(synth.Enum.Args) != 2 {
		t.Errorf("synthesized enum has %d ctor args, want 2", len(synth.Enum.Args))
	}
}

func TestSynthesizedEnumNotInGraph(t *testing.T) {
	f, sink := enumFieldFixture(true)
	res := f.slicer(DefaultConfig()).Backward(sink.ID())

	all := res.AllConstants()
	synth := all[len(all)-1]
	if _, ok := f.g.Node(synth.ID()); ok {
		t.Error("synthesized enum constant must not be inserted into the graph")
	}
	if synth.ID() == graph.NoNode {
		t.Error("synthesized constant must carry a freshly allocated id")
	}
}

func TestAllConstantsEnumLookupMiss(t *testing.T) {
	f, sink := enumFieldFixture(false)
	res := f.slicer(DefaultConfig()).Backward(sink.ID())

	all := res.AllConstants()
	if len(all) != 2 {
		t.Fatalf("AllConstants() = %d entries, want 2", len(all))
	}
	synth := all[1]
	if synth.Enum == nil || synth.Enum.Args == nil || len(synth.Enum.Args) != 0 {
		t.Errorf("lookup miss should fall back to an empty ctor-arg list, got %+v", synth.Enum)
	}
}

func TestConstantsWithPathsCorrespondence(t *testing.T) {
	f, sink := enumFieldFixture(true)
	res := f.slicer(DefaultConfig()).Backward(sink.ID())

	pairs := res.ConstantsWithPaths()
	if len(pairs) != 2 {
		t.Fatalf("ConstantsWithPaths() = %d pairs, want 2", len(pairs))
	}

	// First pair: the direct constant, with a CONSTANT-tagged path
	// ending at the start node.
	if pairs[0].Constant.Value != int64(42) {
		t.Errorf("first pair constant = %v, want 42", pairs[0].Constant.Value)
	}
	if pairs[0].Path.SourceType != SourceConstant {
		t.Errorf("first pair path tagged %s, want CONSTANT", pairs[0].Path.SourceType)
	}
	last := pairs[0].Path.Steps[len(pairs[0].Path.Steps)-1]
	if last.Node != sink.ID() {
		t.Errorf("first pair path ends at %d, want start node %d", last.Node, sink.ID())
	}

	// Second pair: the field-derived enum constant with its
	// ENUM_CONSTANT path.
	if pairs[1].Constant.Enum == nil {
		t.Fatalf("second pair constant = %+v, want synthesized enum", pairs[1].Constant)
	}
	if pairs[1].Path.SourceType != SourceEnumConstant {
		t.Errorf("second pair path tagged %s, want ENUM_CONSTANT", pairs[1].Path.SourceType)
	}
}

func TestPropagationPathsBySourceType(t *testing.T) {
	f, sink := enumFieldFixture(true)
	res := f.slicer(DefaultConfig()).Backward(sink.ID())

	grouped := res.PropagationPathsBySourceType()
	if len(grouped[SourceConstant]) != 1 {
		t.Errorf("CONSTANT paths = %d, want 1", len(grouped[SourceConstant]))
	}
	if len(grouped[SourceEnumConstant]) != 1 {
		t.Errorf("ENUM_CONSTANT paths = %d, want 1", len(grouped[SourceEnumConstant]))
	}
	total := 0
	for _, paths := range grouped {
		total += len(paths)
	}
	if total != len(res.PropagationPaths) {
		t.Errorf("grouped %d paths, want %d", total, len(res.PropagationPaths))
	}
}

func TestDisplayStrings(t *testing.T) {
	step := PropagationStep{Description: "call com.app.Key.getKey() from com.app.Main.run()", Location: "com.app.Main.run:42"}
	if got := step.DisplayString(); got != "call com.app.Key.getKey() from com.app.Main.run() @ com.app.Main.run:42" {
		t.Errorf("DisplayString() = %q", got)
	}
	bare := PropagationStep{Description: "constant 7 (int)"}
	if got := bare.DisplayString(); got != "constant 7 (int)" {
		t.Errorf("DisplayString() without location = %q", got)
	}

	p := PropagationPath{
		SourceType: SourceConstant,
		Depth:      1,
		Steps: []PropagationStep{
			{Description: "constant 7 (int)"},
			{Description: "local x (int) in com.app.Main.run()"},
		},
	}
	want := "[CONSTANT depth=1] constant 7 (int) -> local x (int) in com.app.Main.run()"
	if got := p.DisplayString(); got != want {
		t.Errorf("path DisplayString() = %q, want %q", got, want)
	}
}
