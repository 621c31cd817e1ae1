package graphio

import (
	"fmt"
	"os"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"flowtrace/internal/graph"
)

// LoadSCIP builds a call-site graph from a SCIP index. SCIP records
// symbol occurrences, not dataflow, so the import produces CallSite
// nodes and call edges only: enough to drive CallSites(pattern) queries
// against a real index, with dataflow supplied by other producers.
func LoadSCIP(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read SCIP index: %w", err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse SCIP index %s: %w", path, err)
	}

	alloc := graph.NewAllocator()
	g := graph.New()
	ids := make(map[string]graph.NodeID)
	// One call site per (caller, callee, line); SCIP can report the
	// same reference occurrence more than once.
	seen := make(map[string]bool)

	for _, doc := range index.Documents {
		var container graph.MethodRef
		haveContainer := false

		for _, occ := range doc.Occurrences {
			method, ok := symbolToMethod(occ.Symbol)
			if !ok {
				continue
			}
			if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0 {
				container = method
				haveContainer = true
				continue
			}
			if !haveContainer || method.String() == container.String() {
				continue
			}

			line := 0
			if len(occ.Range) > 0 {
				line = int(occ.Range[0]) + 1 // SCIP ranges are 0-based
			}
			key := fmt.Sprintf("%s|%s|%d", container, method, line)
			if seen[key] {
				continue
			}
			seen[key] = true

			cs := graph.NewCallSite(alloc, container, method, line, graph.NoNode, nil)
			g.AddNode(cs)
			ids[key] = cs.ID()
		}
	}

	return &Loaded{Graph: g, Alloc: alloc, IDs: ids}, nil
}

// symbolToMethod extracts a MethodRef from a SCIP symbol. Method
// descriptors end with "().": `... com/app/Main#run().` maps to class
// com.app.Main, method run. Non-method symbols are skipped.
func symbolToMethod(symbol string) (graph.MethodRef, bool) {
	if !strings.HasSuffix(symbol, ").") {
		return graph.MethodRef{}, false
	}
	// Last space-separated part is the descriptor chain.
	idx := strings.LastIndex(symbol, " ")
	desc := symbol[idx+1:]

	open := strings.Index(desc, "(")
	if open < 0 {
		return graph.MethodRef{}, false
	}
	qualified := desc[:open]
	qualified = strings.TrimSuffix(qualified, ".")

	sep := strings.LastIndex(qualified, "#")
	if sep < 0 {
		sep = strings.LastIndex(qualified, "/")
		if sep < 0 {
			return graph.MethodRef{}, false
		}
	}
	class := strings.ReplaceAll(strings.Trim(qualified[:sep], "/"), "/", ".")
	name := strings.Trim(qualified[sep+1:], "`.")
	if class == "" || name == "" {
		return graph.MethodRef{}, false
	}
	return graph.MethodRef{Class: class, Name: name}, true
}
