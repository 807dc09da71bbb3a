package witness

import "github.com/holiman/uint256"

// RwKind tags the resource touched by a state access.
type RwKind uint8

const (
	RwStack RwKind = iota
	RwMemory
	RwStorage
	RwCallContext
)

func (k RwKind) String() string {
	switch k {
	case RwStack:
		return "stack"
	case RwMemory:
		return "memory"
	case RwStorage:
		return "storage"
	case RwCallContext:
		return "callContext"
	default:
		return "unknown"
	}
}

// Rw is one recorded state access. Counters are strictly increasing across the
// whole block. Events are immutable once recorded; steps reference them by
// index into Block.Rws and never mutate them.
type Rw struct {
	Counter uint64
	Kind    RwKind
	IsWrite bool
	CallID  uint64
	Key     uint64
	Value   *uint256.Int
}
