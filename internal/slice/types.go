package slice

import (
	"fmt"
	"strings"

	"flowtrace/internal/graph"
)

// Direction selects backward (origins) or forward (destinations) slicing.
type Direction string

const (
	Backward Direction = "backward"
	Forward  Direction = "forward"
)

// SourceType tags a discovered frontier node. Backward slices discover
// CONSTANT, ENUM_CONSTANT, FIELD and PARAMETER sources; forward slices
// discover RETURN and FIELD sinks.
type SourceType string

const (
	SourceConstant     SourceType = "CONSTANT"
	SourceEnumConstant SourceType = "ENUM_CONSTANT"
	SourceField        SourceType = "FIELD"
	SourceParameter    SourceType = "PARAMETER"
	SourceReturn       SourceType = "RETURN"
)

// PropagationStep is one hop of a propagation path.
type PropagationStep struct {
	Node        graph.NodeID   `json:"node"`
	Kind        graph.NodeKind `json:"kind"`
	Description string         `json:"description"`
	Location    string         `json:"location,omitempty"`
	Edge        graph.FlowKind `json:"edge,omitempty"`
	Depth       int            `json:"depth"`
}

// DisplayString renders the step as "description @ location", dropping
// the location part when none was recorded.
func (s PropagationStep) DisplayString() string {
	if s.Location == "" {
		return s.Description
	}
	return s.Description + " @ " + s.Location
}

// DataFlowPath is the node-id skeleton of one discovered path. For
// backward slices the nodes are ordered source first, start node last.
type DataFlowPath struct {
	Nodes []graph.NodeID `json:"nodes"`
}

// PropagationPath is the human-readable reconstruction of one
// discovered path, ordered like its DataFlowPath. Depth is the number
// of dataflow hops between the start node and the discovered frontier.
type PropagationPath struct {
	Steps      []PropagationStep `json:"steps"`
	SourceType SourceType        `json:"sourceType"`
	Depth      int               `json:"depth"`
}

// DisplayString renders the path as a single arrow-joined line.
func (p PropagationPath) DisplayString() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.DisplayString()
	}
	return fmt.Sprintf("[%s depth=%d] %s", p.SourceType, p.Depth, strings.Join(parts, " -> "))
}

// Finding is one discovered frontier node: a source for backward
// slices, a sink for forward slices.
type Finding struct {
	Node graph.Node
	Type SourceType
}
