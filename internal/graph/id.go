package graph

import "sync/atomic"

// NodeID uniquely identifies a node within one analysis run.
// The zero value is reserved and never issued; it marks "no node"
// (e.g. the missing receiver of a static call).
type NodeID uint32

// NoNode is the reserved NodeID meaning "no node".
const NoNode NodeID = 0

// Allocator issues monotonically increasing node ids for a single
// analysis run. Construct one per run; do not share an allocator
// across runs. Next is safe for concurrent use.
type Allocator struct {
	next atomic.Uint32
}

// NewAllocator creates an allocator whose first issued id is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next unused NodeID. Ids are never reused within a run.
func (a *Allocator) Next() NodeID {
	return NodeID(a.next.Add(1))
}

// Issued returns how many ids have been issued so far.
func (a *Allocator) Issued() int {
	return int(a.next.Load())
}
