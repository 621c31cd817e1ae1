package query

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowtrace/internal/errors"
	"flowtrace/internal/graph"
	"flowtrace/internal/slice"
)

// Provenance records how a response was produced.
type Provenance struct {
	RunID      string `json:"runId"`
	DurationMs int64  `json:"durationMs"`
	GraphNodes int    `json:"graphNodes"`
	GraphEdges int    `json:"graphEdges"`
}

// ConstantInfo is one discovered constant in response form.
type ConstantInfo struct {
	NodeID graph.NodeID `json:"nodeId"`
	Type   string       `json:"type"`
	Value  any          `json:"value,omitempty"`
	Enum   *EnumInfo    `json:"enum,omitempty"`
}

// EnumInfo describes a discovered enum constant.
type EnumInfo struct {
	Class string   `json:"class"`
	Name  string   `json:"name"`
	Args  []string `json:"args,omitempty"`
}

// PathInfo is one propagation path in response form.
type PathInfo struct {
	SourceType string   `json:"sourceType"`
	Depth      int      `json:"depth"`
	Steps      []string `json:"steps"`
}

// FrontierInfo is one discovered source or sink.
type FrontierInfo struct {
	NodeID      graph.NodeID `json:"nodeId"`
	Kind        string       `json:"kind"`
	SourceType  string       `json:"sourceType"`
	Description string       `json:"description"`
}

// SliceOptions selects the node and direction for TraceValue.
type SliceOptions struct {
	Node      string
	Direction slice.Direction
	// Overrides applies per-query config tweaks (CLI flags).
	Overrides func(*slice.Config)
}

// SliceResponse is the response for TraceValue.
type SliceResponse struct {
	Start      graph.NodeID    `json:"start"`
	Direction  slice.Direction `json:"direction"`
	Frontier   []FrontierInfo  `json:"frontier"`
	Constants  []ConstantInfo  `json:"constants"`
	Paths      []PathInfo      `json:"paths"`
	MaxDepth   int             `json:"maxDepth"`
	Provenance *Provenance     `json:"provenance"`
}

// TraceValue slices a single node in the requested direction.
func (e *Engine) TraceValue(opts SliceOptions) (*SliceResponse, error) {
	start := time.Now()

	id, err := e.resolveNode(opts.Node)
	if err != nil {
		return nil, err
	}
	s, err := e.slicer(opts.Overrides)
	if err != nil {
		return nil, err
	}

	var res *slice.Result
	switch opts.Direction {
	case slice.Forward:
		res = s.Forward(id)
	case slice.Backward, "":
		res = s.Backward(id)
	default:
		return nil, errors.Newf(errors.PatternInvalid, nil, "unknown direction %q", opts.Direction)
	}

	resp := &SliceResponse{
		Start:     id,
		Direction: res.Direction,
		Frontier:  frontierInfos(res),
		Constants: constantInfos(res.AllConstants()),
		Paths:     pathInfos(res.PropagationPaths),
		MaxDepth:  res.MaxPropagationDepth(),
		Provenance: &Provenance{
			RunID:      uuid.NewString(),
			DurationMs: time.Since(start).Milliseconds(),
			GraphNodes: e.graph.NumNodes(),
			GraphEdges: e.graph.NumEdges(),
		},
	}
	e.logger.Debug("slice complete", map[string]any{
		"node":      opts.Node,
		"direction": string(res.Direction),
		"frontier":  len(resp.Frontier),
	})
	return resp, nil
}

// TraceOptions selects call sites and the argument to trace.
type TraceOptions struct {
	Class  string
	Method string
	Params []string
	Regex  bool
	// Arg is the zero-based argument position to slice at each site.
	Arg       int
	Overrides func(*slice.Config)
}

// CallSiteTrace is the trace of one matched call site.
type CallSiteTrace struct {
	Callee    string         `json:"callee"`
	Caller    string         `json:"caller"`
	Location  string         `json:"location,omitempty"`
	Constants []ConstantInfo `json:"constants"`
	Paths     []PathInfo     `json:"paths"`
	// Skipped is set when the site had no modeled argument at the
	// requested position.
	Skipped string `json:"skipped,omitempty"`
}

// TraceResponse is the response for TraceCallSites.
type TraceResponse struct {
	Pattern    string          `json:"pattern"`
	Matched    int             `json:"matched"`
	Traces     []CallSiteTrace `json:"traces"`
	Distinct   []ConstantInfo  `json:"distinctConstants"`
	Provenance *Provenance     `json:"provenance"`
}

// TraceCallSites finds call sites matching the pattern and backward
// slices the chosen argument of each: the flagship "which experiment
// ids reach this API" query.
func (e *Engine) TraceCallSites(opts TraceOptions) (*TraceResponse, error) {
	start := time.Now()
	if opts.Class == "" && opts.Method == "" {
		return nil, errors.New(errors.PatternInvalid, "pattern needs a class or a method", nil)
	}

	s, err := e.slicer(opts.Overrides)
	if err != nil {
		return nil, err
	}

	pattern := graph.CallPattern{
		Class:  opts.Class,
		Method: opts.Method,
		Params: opts.Params,
		Regex:  opts.Regex,
	}
	sites := e.graph.CallSites(pattern)

	resp := &TraceResponse{
		Pattern: fmt.Sprintf("%s.%s", opts.Class, opts.Method),
		Matched: len(sites),
	}
	seen := make(map[string]bool)

	for _, cs := range sites {
		trace := CallSiteTrace{
			Callee:   cs.Callee.String(),
			Caller:   cs.Caller.String(),
			Location: cs.Location(),
		}
		if opts.Arg < 0 || opts.Arg >= len(cs.Args) {
			trace.Skipped = fmt.Sprintf("argument %d not modeled", opts.Arg)
			resp.Traces = append(resp.Traces, trace)
			continue
		}

		res := s.Backward(cs.Args[opts.Arg])
		trace.Constants = constantInfos(res.AllConstants())
		trace.Paths = pathInfos(res.PropagationPaths)
		resp.Traces = append(resp.Traces, trace)

		for _, c := range trace.Constants {
			key := constantKey(c)
			if !seen[key] {
				seen[key] = true
				resp.Distinct = append(resp.Distinct, c)
			}
		}
	}

	resp.Provenance = &Provenance{
		RunID:      uuid.NewString(),
		DurationMs: time.Since(start).Milliseconds(),
		GraphNodes: e.graph.NumNodes(),
		GraphEdges: e.graph.NumEdges(),
	}
	e.logger.Info("trace complete", map[string]any{
		"pattern":  resp.Pattern,
		"matched":  resp.Matched,
		"distinct": len(resp.Distinct),
	})
	return resp, nil
}

func frontierInfos(res *slice.Result) []FrontierInfo {
	out := make([]FrontierInfo, 0, len(res.Findings))
	for _, f := range res.Findings {
		out = append(out, FrontierInfo{
			NodeID:      f.Node.ID(),
			Kind:        string(f.Node.Kind()),
			SourceType:  string(f.Type),
			Description: f.Node.Describe(),
		})
	}
	return out
}

func constantInfos(consts []*graph.Constant) []ConstantInfo {
	out := make([]ConstantInfo, 0, len(consts))
	for _, c := range consts {
		info := ConstantInfo{NodeID: c.ID(), Type: string(c.Type), Value: c.Value}
		if c.Enum != nil {
			args := make([]string, len(c.Enum.Args))
			for i, a := range c.Enum.Args {
				args[i] = a.String()
			}
			info.Enum = &EnumInfo{Class: c.Enum.Class, Name: c.Enum.Name, Args: args}
		}
		out = append(out, info)
	}
	return out
}

func pathInfos(paths []slice.PropagationPath) []PathInfo {
	out := make([]PathInfo, 0, len(paths))
	for _, p := range paths {
		steps := make([]string, len(p.Steps))
		for i, s := range p.Steps {
			steps[i] = s.DisplayString()
		}
		out = append(out, PathInfo{
			SourceType: string(p.SourceType),
			Depth:      p.Depth,
			Steps:      steps,
		})
	}
	return out
}

// constantKey dedups constants by value identity, not node id, since
// synthesized enum constants get fresh ids on every slice.
func constantKey(c ConstantInfo) string {
	if c.Enum != nil {
		return "enum:" + c.Enum.Class + "." + c.Enum.Name
	}
	return fmt.Sprintf("%s:%v", c.Type, c.Value)
}
