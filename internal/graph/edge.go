package graph

// EdgeCategory groups edges by the analysis that consumes them.
type EdgeCategory string

const (
	CategoryDataFlow    EdgeCategory = "dataflow"
	CategoryCall        EdgeCategory = "call"
	CategoryType        EdgeCategory = "type"
	CategoryControlFlow EdgeCategory = "controlflow"
)

// FlowKind classifies a dataflow edge. Direction is producer to
// consumer: walking edges in reverse finds origins, walking them
// forward finds destinations.
type FlowKind string

const (
	FlowAssign      FlowKind = "assign"
	FlowReturnValue FlowKind = "return_value"
	FlowParamPass   FlowKind = "param_pass"
	FlowFieldLoad   FlowKind = "field_load"
	FlowFieldStore  FlowKind = "field_store"
	FlowArrayLoad   FlowKind = "array_load"
	FlowArrayStore  FlowKind = "array_store"
	FlowReceiver    FlowKind = "receiver"
	FlowCast        FlowKind = "cast"
)

// TypeRelation classifies a type edge.
type TypeRelation string

const (
	RelationExtends    TypeRelation = "extends"
	RelationImplements TypeRelation = "implements"
)

// CFKind classifies a control-flow edge.
type CFKind string

const (
	CFNext   CFKind = "next"
	CFBranch CFKind = "branch"
	CFLoop   CFKind = "loop"
)

// BranchComparison records the comparison guarding a conditional branch.
type BranchComparison struct {
	Operator  string
	Comparand string
}

// Edge is one directed edge of the graph. Concrete types are
// DataFlowEdge, CallEdge, TypeEdge and ControlFlowEdge.
type Edge interface {
	Endpoints() (from, to NodeID)
	Category() EdgeCategory
}

// DataFlowEdge records that the value produced at From is consumed at To.
type DataFlowEdge struct {
	From NodeID
	To   NodeID
	Kind FlowKind
}

func (e DataFlowEdge) Endpoints() (NodeID, NodeID) { return e.From, e.To }
func (e DataFlowEdge) Category() EdgeCategory      { return CategoryDataFlow }

// CallEdge records an invocation relationship between two methods.
type CallEdge struct {
	From    NodeID
	To      NodeID
	Virtual bool
	Dynamic bool
}

func (e CallEdge) Endpoints() (NodeID, NodeID) { return e.From, e.To }
func (e CallEdge) Category() EdgeCategory      { return CategoryCall }

// TypeEdge records a subtyping relationship.
type TypeEdge struct {
	From     NodeID
	To       NodeID
	Relation TypeRelation
}

func (e TypeEdge) Endpoints() (NodeID, NodeID) { return e.From, e.To }
func (e TypeEdge) Category() EdgeCategory      { return CategoryType }

// ControlFlowEdge records execution order. Comparison is set only for
// conditional branches.
type ControlFlowEdge struct {
	From       NodeID
	To         NodeID
	Kind       CFKind
	Comparison *BranchComparison
}

func (e ControlFlowEdge) Endpoints() (NodeID, NodeID) { return e.From, e.To }
func (e ControlFlowEdge) Category() EdgeCategory      { return CategoryControlFlow }
