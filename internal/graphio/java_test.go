package graphio

import (
	"context"
	"testing"

	"flowtrace/internal/graph"
	"flowtrace/internal/slice"
)

const javaSource = `
package com.app;

class Main {
    void run() {
        int flag = 1001;
        int copy = flag;
        Experiments.isEnabled(copy);
        java.util.List<Integer> opts = Arrays.asList(5001, 5002);
        Experiments.getOptions(opts);
    }
}
`

func parseJava(t *testing.T, source string) *Loaded {
	t.Helper()
	p := NewJavaProducer()
	if err := p.Parse(context.Background(), []byte(source)); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p.Result()
}

func TestJavaLocalChain(t *testing.T) {
	loaded := parseJava(t, javaSource)

	copyID, ok := loaded.IDs["com.app.Main.run.copy"]
	if !ok {
		t.Fatal("local 'copy' was not lowered")
	}

	s := slice.New(loaded.Graph, loaded.Alloc, slice.DefaultConfig())
	res := s.Backward(copyID)

	consts := res.Constants()
	if len(consts) != 1 || consts[0].Value != int64(1001) {
		t.Fatalf("Constants() = %v, want [1001]", consts)
	}
}

func TestJavaCallSites(t *testing.T) {
	loaded := parseJava(t, javaSource)

	sites := loaded.Graph.CallSites(graph.CallPattern{Method: "isEnabled"})
	if len(sites) != 1 {
		t.Fatalf("isEnabled call sites = %d, want 1", len(sites))
	}
	if len(sites[0].Args) != 1 {
		t.Errorf("isEnabled args = %d, want 1", len(sites[0].Args))
	}
	if sites[0].Callee.Class != "Experiments" {
		t.Errorf("callee class = %q, want Experiments", sites[0].Callee.Class)
	}
	if sites[0].Line == 0 {
		t.Error("call site should carry a line number")
	}
}

func TestJavaCollectionFactory(t *testing.T) {
	loaded := parseJava(t, javaSource)

	sites := loaded.Graph.CallSites(graph.CallPattern{Class: "Arrays", Method: "asList"})
	if len(sites) != 1 {
		t.Fatalf("asList call sites = %d, want 1", len(sites))
	}

	cfg := slice.DefaultConfig()
	cfg.ExpandCollections = true
	// The producer emits bare class names for unresolved receivers, so
	// register the unqualified factory too.
	cfg.Factories = slice.DefaultFactories()
	cfg.Factories["Arrays.asList"] = true

	s := slice.New(loaded.Graph, loaded.Alloc, cfg)
	res := s.Backward(sites[0].ID())

	values := make(map[int64]bool)
	for _, c := range res.Constants() {
		values[c.Value.(int64)] = true
	}
	if !values[5001] || !values[5002] {
		t.Errorf("expanded constants = %v, want 5001 and 5002", values)
	}
}

func TestJavaParameters(t *testing.T) {
	loaded := parseJava(t, `
package com.app;

class Util {
    int identity(int value) {
        int out = value;
        return out;
    }
}
`)

	outID, ok := loaded.IDs["com.app.Util.identity.out"]
	if !ok {
		t.Fatal("local 'out' was not lowered")
	}

	s := slice.New(loaded.Graph, loaded.Alloc, slice.DefaultConfig())
	res := s.Backward(outID)

	foundParam := false
	for _, f := range res.Findings {
		if f.Type == slice.SourceParameter {
			foundParam = true
		}
	}
	if !foundParam {
		t.Error("tracing through a parameter should report a PARAMETER source")
	}
}
