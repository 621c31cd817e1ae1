// Package graph defines the typed program dependency graph: nodes for
// constants, variables, fields, parameters, returns and call sites, and
// the edge taxonomy connecting them. The graph is populated once by a
// producer (see graphio) and read-only afterwards.
package graph

import (
	"fmt"
	"strings"
)

// NodeKind discriminates the node union.
type NodeKind string

const (
	KindConstant NodeKind = "constant"
	KindLocalVar NodeKind = "local"
	KindParam    NodeKind = "param"
	KindField    NodeKind = "field"
	KindReturn   NodeKind = "return"
	KindCallSite NodeKind = "callsite"
)

// Node is one vertex of the dependency graph. Concrete types are
// Constant, LocalVar, Param, Field, Return and CallSite; classification
// sites dispatch with a type switch over those.
type Node interface {
	ID() NodeID
	Kind() NodeKind
	// Describe returns a short human-readable description used in
	// propagation paths, e.g. `constant 1001 (int)`.
	Describe() string
}

// MethodRef identifies a method by declaring class, name and parameter
// type names. It is a value type; two refs are equal iff their rendered
// descriptors are equal.
type MethodRef struct {
	Class  string   `json:"class" yaml:"class"`
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// String renders the method descriptor, e.g. `com.foo.Bar.baz(int, java.lang.String)`.
func (m MethodRef) String() string {
	return m.Class + "." + m.Name + "(" + strings.Join(m.Params, ", ") + ")"
}

// ConstType is the value type of a Constant node.
type ConstType string

const (
	ConstInt    ConstType = "int"
	ConstLong   ConstType = "long"
	ConstFloat  ConstType = "float"
	ConstDouble ConstType = "double"
	ConstString ConstType = "string"
	ConstBool   ConstType = "boolean"
	ConstNull   ConstType = "null"
	ConstEnum   ConstType = "enum"
)

// EnumArg is one constructor argument of an enum constant: either a
// literal value or a reference to another enum constant.
type EnumArg interface {
	isEnumArg()
	String() string
}

// LiteralArg is a literal enum constructor argument.
type LiteralArg struct {
	Value any
}

func (LiteralArg) isEnumArg()       {}
func (a LiteralArg) String() string { return fmt.Sprintf("%v", a.Value) }

// EnumValueRef is an enum constructor argument that references another
// enum constant (possibly of a different enum type).
type EnumValueRef struct {
	EnumClass string
	Name      string
}

func (EnumValueRef) isEnumArg()       {}
func (r EnumValueRef) String() string { return r.EnumClass + "." + r.Name }

// EnumConstant describes one constant of an enum type together with its
// ordered constructor-argument values.
type EnumConstant struct {
	Class string
	Name  string
	Args  []EnumArg
}

// Constant is a literal value. For Type == ConstEnum, Enum carries the
// enum constant and Value is nil. For ConstNull both are nil.
type Constant struct {
	id    NodeID
	Type  ConstType
	Value any
	Enum  *EnumConstant
}

// NewConstant creates a literal constant node.
func NewConstant(a *Allocator, t ConstType, value any) *Constant {
	return &Constant{id: a.Next(), Type: t, Value: value}
}

// NewEnumConstant creates an enum constant node.
func NewEnumConstant(a *Allocator, enum *EnumConstant) *Constant {
	return &Constant{id: a.Next(), Type: ConstEnum, Enum: enum}
}

func (c *Constant) ID() NodeID     { return c.id }
func (c *Constant) Kind() NodeKind { return KindConstant }

func (c *Constant) Describe() string {
	if c.Type == ConstEnum && c.Enum != nil {
		return fmt.Sprintf("enum %s.%s", c.Enum.Class, c.Enum.Name)
	}
	if c.Type == ConstNull {
		return "constant null"
	}
	if c.Type == ConstString {
		return fmt.Sprintf("constant %q", c.Value)
	}
	return fmt.Sprintf("constant %v (%s)", c.Value, c.Type)
}

// LocalVar is a named local variable inside a method body.
type LocalVar struct {
	id     NodeID
	Name   string
	Type   string
	Method MethodRef
}

// NewLocalVar creates a local variable node.
func NewLocalVar(a *Allocator, name, typ string, method MethodRef) *LocalVar {
	return &LocalVar{id: a.Next(), Name: name, Type: typ, Method: method}
}

func (v *LocalVar) ID() NodeID     { return v.id }
func (v *LocalVar) Kind() NodeKind { return KindLocalVar }

func (v *LocalVar) Describe() string {
	return fmt.Sprintf("local %s (%s) in %s", v.Name, v.Type, v.Method)
}

// Param is a formal parameter of a method, identified by ordinal index.
type Param struct {
	id     NodeID
	Index  int
	Type   string
	Method MethodRef
}

// NewParam creates a parameter node.
func NewParam(a *Allocator, index int, typ string, method MethodRef) *Param {
	return &Param{id: a.Next(), Index: index, Type: typ, Method: method}
}

func (p *Param) ID() NodeID     { return p.id }
func (p *Param) Kind() NodeKind { return KindParam }

func (p *Param) Describe() string {
	return fmt.Sprintf("param #%d (%s) of %s", p.Index, p.Type, p.Method)
}

// Field is a class field. An instance whose declared type equals its
// declaring class is the idiomatic shape of an enum constant access.
type Field struct {
	id        NodeID
	Declaring string
	Name      string
	Type      string
	Static    bool
}

// NewField creates a field node.
func NewField(a *Allocator, declaring, name, typ string, static bool) *Field {
	return &Field{id: a.Next(), Declaring: declaring, Name: name, Type: typ, Static: static}
}

func (f *Field) ID() NodeID     { return f.id }
func (f *Field) Kind() NodeKind { return KindField }

// EnumShaped reports whether the field looks like an enum constant
// access: its declared type equals its declaring class.
func (f *Field) EnumShaped() bool {
	return f.Type != "" && f.Type == f.Declaring
}

func (f *Field) Describe() string {
	qual := "field"
	if f.Static {
		qual = "static field"
	}
	return fmt.Sprintf("%s %s.%s (%s)", qual, f.Declaring, f.Name, f.Type)
}

// Return is the return value of a method. ActualType, when non-empty,
// is a more specific type than the declared return type.
type Return struct {
	id         NodeID
	Method     MethodRef
	ActualType string
}

// NewReturn creates a return-value node.
func NewReturn(a *Allocator, method MethodRef, actualType string) *Return {
	return &Return{id: a.Next(), Method: method, ActualType: actualType}
}

func (r *Return) ID() NodeID     { return r.id }
func (r *Return) Kind() NodeKind { return KindReturn }

func (r *Return) Describe() string {
	if r.ActualType != "" {
		return fmt.Sprintf("return of %s (%s)", r.Method, r.ActualType)
	}
	return fmt.Sprintf("return of %s", r.Method)
}

// CallSite is one invocation site. Receiver is NoNode for static calls.
// Args may record fewer ids than the callee declares parameters when an
// argument was not modeled by the producer.
type CallSite struct {
	id       NodeID
	Caller   MethodRef
	Callee   MethodRef
	Line     int
	Receiver NodeID
	Args     []NodeID
}

// NewCallSite creates a call-site node. line may be 0 when unknown.
func NewCallSite(a *Allocator, caller, callee MethodRef, line int, receiver NodeID, args []NodeID) *CallSite {
	return &CallSite{id: a.Next(), Caller: caller, Callee: callee, Line: line, Receiver: receiver, Args: args}
}

func (c *CallSite) ID() NodeID     { return c.id }
func (c *CallSite) Kind() NodeKind { return KindCallSite }

// HasReceiver reports whether the call has a modeled receiver.
func (c *CallSite) HasReceiver() bool { return c.Receiver != NoNode }

func (c *CallSite) Describe() string {
	return fmt.Sprintf("call %s from %s", c.Callee, c.Caller)
}

// Location renders the call's source position, e.g. `com.foo.Bar.baz:42`,
// or "" when no line was recorded.
func (c *CallSite) Location() string {
	if c.Line <= 0 {
		return ""
	}
	return fmt.Sprintf("%s.%s:%d", c.Caller.Class, c.Caller.Name, c.Line)
}
