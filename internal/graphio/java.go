package graphio

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"flowtrace/internal/graph"
)

// JavaProducer lowers simple Java method bodies into graph nodes and
// edges: literals, local declarations and assignments, and invocation
// argument passing. It is deliberately best-effort; anything it cannot
// model is skipped, and the slicer degrades to partial results.
type JavaProducer struct {
	parser *sitter.Parser
	alloc  *graph.Allocator
	g      *graph.Graph
	ids    map[string]graph.NodeID

	pkg    string
	class  string
	method graph.MethodRef
	// locals maps variable name -> node, scoped per method.
	locals map[string]*graph.LocalVar
}

// NewJavaProducer creates a producer that accumulates every parsed file
// into one graph.
func NewJavaProducer() *JavaProducer {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &JavaProducer{
		parser: p,
		alloc:  graph.NewAllocator(),
		g:      graph.New(),
		ids:    make(map[string]graph.NodeID),
	}
}

// Result returns the accumulated graph, allocator, and the
// name-to-id mapping (keys are `Class.method.var` for locals).
func (p *JavaProducer) Result() *Loaded {
	return &Loaded{Graph: p.g, Alloc: p.alloc, IDs: p.ids}
}

// ParseFile lowers one Java source file into the graph.
func (p *JavaProducer) ParseFile(ctx context.Context, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read java source: %w", err)
	}
	return p.Parse(ctx, source)
}

// Parse lowers Java source bytes into the graph.
func (p *JavaProducer) Parse(ctx context.Context, source []byte) error {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fmt.Errorf("parse java source: %w", err)
	}
	root := tree.RootNode()

	p.pkg = ""
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			if name := child.NamedChild(0); name != nil {
				p.pkg = name.Content(source)
			}
		case "class_declaration", "enum_declaration":
			p.lowerClass(child, source)
		}
	}
	return nil
}

func (p *JavaProducer) lowerClass(node *sitter.Node, source []byte) {
	name := node.ChildByFieldName("name")
	if name == nil {
		return
	}
	p.class = p.qualify(name.Content(source))

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "method_declaration" || member.Type() == "constructor_declaration" {
			p.lowerMethod(member, source)
		}
	}
}

func (p *JavaProducer) qualify(name string) string {
	if p.pkg == "" {
		return name
	}
	return p.pkg + "." + name
}

func (p *JavaProducer) lowerMethod(node *sitter.Node, source []byte) {
	name := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if name == nil || body == nil {
		return
	}
	p.method = graph.MethodRef{Class: p.class, Name: name.Content(source)}
	p.locals = make(map[string]*graph.LocalVar)

	// Formal parameters become Param nodes addressable as locals.
	if params := node.ChildByFieldName("parameters"); params != nil {
		ordinal := 0
		for i := 0; i < int(params.NamedChildCount()); i++ {
			fp := params.NamedChild(i)
			if fp.Type() != "formal_parameter" {
				continue
			}
			pname := fp.ChildByFieldName("name")
			ptype := fp.ChildByFieldName("type")
			if pname == nil {
				continue
			}
			typ := ""
			if ptype != nil {
				typ = ptype.Content(source)
			}
			param := graph.NewParam(p.alloc, ordinal, typ, p.method)
			p.g.AddNode(param)
			// Model the parameter as a local-like origin for reads.
			lv := graph.NewLocalVar(p.alloc, pname.Content(source), typ, p.method)
			p.g.AddNode(lv)
			p.g.AddEdge(graph.DataFlowEdge{From: param.ID(), To: lv.ID(), Kind: graph.FlowParamPass})
			p.registerLocal(pname.Content(source), lv)
			ordinal++
		}
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		p.lowerStatement(body.NamedChild(i), source)
	}
}

func (p *JavaProducer) registerLocal(name string, lv *graph.LocalVar) {
	p.locals[name] = lv
	p.ids[p.method.Class+"."+p.method.Name+"."+name] = lv.ID()
}

func (p *JavaProducer) lowerStatement(node *sitter.Node, source []byte) {
	switch node.Type() {
	case "local_variable_declaration":
		typ := ""
		if t := node.ChildByFieldName("type"); t != nil {
			typ = t.Content(source)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			decl := node.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			if name == nil {
				continue
			}
			lv := graph.NewLocalVar(p.alloc, name.Content(source), typ, p.method)
			p.g.AddNode(lv)
			p.registerLocal(name.Content(source), lv)
			if value := decl.ChildByFieldName("value"); value != nil {
				if from := p.lowerExpression(value, source); from != graph.NoNode {
					p.g.AddEdge(graph.DataFlowEdge{From: from, To: lv.ID(), Kind: graph.FlowAssign})
				}
			}
		}
	case "expression_statement":
		if expr := node.NamedChild(0); expr != nil {
			p.lowerStatement(expr, source)
		}
	case "assignment_expression":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left == nil || right == nil || left.Type() != "identifier" {
			return
		}
		lv, ok := p.locals[left.Content(source)]
		if !ok {
			return
		}
		if from := p.lowerExpression(right, source); from != graph.NoNode {
			p.g.AddEdge(graph.DataFlowEdge{From: from, To: lv.ID(), Kind: graph.FlowAssign})
		}
	case "method_invocation":
		p.lowerInvocation(node, source)
	}
}

// lowerExpression models one expression and returns the node producing
// its value, or NoNode when the expression is not modeled.
func (p *JavaProducer) lowerExpression(node *sitter.Node, source []byte) graph.NodeID {
	switch node.Type() {
	case "identifier":
		if lv, ok := p.locals[node.Content(source)]; ok {
			return lv.ID()
		}
		return graph.NoNode
	case "method_invocation":
		if cs := p.lowerInvocation(node, source); cs != nil {
			return cs.ID()
		}
		return graph.NoNode
	case "parenthesized_expression":
		if inner := node.NamedChild(0); inner != nil {
			return p.lowerExpression(inner, source)
		}
		return graph.NoNode
	default:
		if c := p.lowerLiteral(node, source); c != nil {
			return c.ID()
		}
		return graph.NoNode
	}
}

func (p *JavaProducer) lowerLiteral(node *sitter.Node, source []byte) *graph.Constant {
	text := node.Content(source)
	var c *graph.Constant
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal":
		t := graph.ConstInt
		if strings.HasSuffix(text, "L") || strings.HasSuffix(text, "l") {
			t = graph.ConstLong
			text = text[:len(text)-1]
		}
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil
		}
		c = graph.NewConstant(p.alloc, t, v)
	case "decimal_floating_point_literal":
		v, err := strconv.ParseFloat(strings.TrimRight(text, "fFdD"), 64)
		if err != nil {
			return nil
		}
		c = graph.NewConstant(p.alloc, graph.ConstDouble, v)
	case "string_literal":
		c = graph.NewConstant(p.alloc, graph.ConstString, strings.Trim(text, `"`))
	case "true":
		c = graph.NewConstant(p.alloc, graph.ConstBool, true)
	case "false":
		c = graph.NewConstant(p.alloc, graph.ConstBool, false)
	case "null_literal":
		c = graph.NewConstant(p.alloc, graph.ConstNull, nil)
	default:
		return nil
	}
	p.g.AddNode(c)
	return c
}

func (p *JavaProducer) lowerInvocation(node *sitter.Node, source []byte) *graph.CallSite {
	name := node.ChildByFieldName("name")
	if name == nil {
		return nil
	}

	calleeClass := p.class
	receiver := graph.NoNode
	if object := node.ChildByFieldName("object"); object != nil {
		text := object.Content(source)
		if lv, ok := p.locals[text]; ok {
			receiver = lv.ID()
		} else {
			// An unresolved uppercase-leading object is treated as a
			// class reference, e.g. Arrays.asList.
			calleeClass = text
		}
	}

	callee := graph.MethodRef{Class: calleeClass, Name: name.Content(source)}
	line := int(node.StartPoint().Row) + 1
	cs := graph.NewCallSite(p.alloc, p.method, callee, line, receiver, nil)
	p.g.AddNode(cs)

	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			from := p.lowerExpression(args.NamedChild(i), source)
			if from == graph.NoNode {
				continue
			}
			cs.Args = append(cs.Args, from)
			p.g.AddEdge(graph.DataFlowEdge{From: from, To: cs.ID(), Kind: graph.FlowParamPass})
		}
	}
	return cs
}
