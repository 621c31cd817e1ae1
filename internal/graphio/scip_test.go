package graphio

import (
	"os"
	"path/filepath"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"flowtrace/internal/graph"
)

func TestSymbolToMethod(t *testing.T) {
	tests := []struct {
		symbol    string
		wantClass string
		wantName  string
		ok        bool
	}{
		{"scip-java maven pkg 1.0 com/app/Main#run().", "com.app.Main", "run", true},
		{"scip-java maven pkg 1.0 com/app/Experiments#isEnabled().", "com.app.Experiments", "isEnabled", true},
		{"scip-java maven pkg 1.0 com/app/Main#field.", "", "", false},
		{"scip-java maven pkg 1.0 com/app/Main#", "", "", false},
		{"local 3", "", "", false},
	}
	for _, tt := range tests {
		got, ok := symbolToMethod(tt.symbol)
		if ok != tt.ok {
			t.Errorf("symbolToMethod(%q) ok = %v, want %v", tt.symbol, ok, tt.ok)
			continue
		}
		if ok && (got.Class != tt.wantClass || got.Name != tt.wantName) {
			t.Errorf("symbolToMethod(%q) = %s.%s, want %s.%s",
				tt.symbol, got.Class, got.Name, tt.wantClass, tt.wantName)
		}
	}
}

func TestLoadSCIP(t *testing.T) {
	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			ToolInfo: &scippb.ToolInfo{Name: "scip-java"},
		},
		Documents: []*scippb.Document{
			{
				RelativePath: "com/app/Main.java",
				Occurrences: []*scippb.Occurrence{
					{
						Symbol:      "scip-java maven pkg 1.0 com/app/Main#run().",
						SymbolRoles: int32(scippb.SymbolRole_Definition),
						Range:       []int32{4, 0, 4, 3},
					},
					{
						Symbol: "scip-java maven pkg 1.0 com/app/Experiments#isEnabled().",
						Range:  []int32{6, 8, 6, 17},
					},
					{
						// Duplicate occurrence of the same call.
						Symbol: "scip-java maven pkg 1.0 com/app/Experiments#isEnabled().",
						Range:  []int32{6, 8, 6, 17},
					},
				},
			},
		},
	}

	data, err := proto.Marshal(index)
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}
	path := filepath.Join(t.TempDir(), "index.scip")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadSCIP(path)
	if err != nil {
		t.Fatalf("LoadSCIP: %v", err)
	}

	sites := loaded.Graph.CallSites(graph.CallPattern{Class: "com.app.Experiments", Method: "isEnabled"})
	if len(sites) != 1 {
		t.Fatalf("call sites = %d, want 1 (duplicates collapsed)", len(sites))
	}
	cs := sites[0]
	if cs.Caller.Class != "com.app.Main" || cs.Caller.Name != "run" {
		t.Errorf("caller = %s, want com.app.Main.run", cs.Caller)
	}
	if cs.Line != 7 {
		t.Errorf("line = %d, want 7 (SCIP ranges are 0-based)", cs.Line)
	}
}

func TestLoadSCIPMissingFile(t *testing.T) {
	if _, err := LoadSCIP(filepath.Join(t.TempDir(), "absent.scip")); err == nil {
		t.Error("missing index should return an error")
	}
}
