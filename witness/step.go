package witness

import "fmt"

// Opcode is an EVM opcode identifier.
type Opcode uint8

const (
	OpStop   Opcode = 0x00
	OpSlt    Opcode = 0x12
	OpSgt    Opcode = 0x13
	OpPush32 Opcode = 0x7f
)

func (o Opcode) String() string {
	switch o {
	case OpStop:
		return "STOP"
	case OpSlt:
		return "SLT"
	case OpSgt:
		return "SGT"
	case OpPush32:
		return "PUSH32"
	default:
		return fmt.Sprintf("0x%02x", uint8(o))
	}
}

// ExecutionState identifies which gadget handles a step. The set is closed:
// one state per supported opcode family, plus the control states that frame a
// trace. Every reachable state has exactly one gadget and vice versa.
type ExecutionState uint8

const (
	// StateBeginTx is the entry control state of each transaction.
	StateBeginTx ExecutionState = iota
	// StateSignedComparator handles the SLT and SGT opcodes.
	StateSignedComparator
	// StatePush handles the PUSH32 opcode.
	StatePush
	// StateEndTx closes a transaction's call context.
	StateEndTx
	// StateEndBlock is the terminal state; it also pads the table's unused
	// rows.
	StateEndBlock

	// StateCount is the number of execution states.
	StateCount
)

func (s ExecutionState) String() string {
	switch s {
	case StateBeginTx:
		return "BeginTx"
	case StateSignedComparator:
		return "SCMP"
	case StatePush:
		return "PUSH"
	case StateEndTx:
		return "EndTx"
	case StateEndBlock:
		return "EndBlock"
	default:
		return "invalid"
	}
}

// StackDepth is the EVM stack capacity; the stack pointer of an empty stack.
const StackDepth = 1024

// ExecStep is one row of the trace. It is created once during witness
// construction and consumed read-only by gadgets.
type ExecStep struct {
	State          ExecutionState
	Opcode         Opcode
	ProgramCounter uint64
	StackPointer   uint64
	RwCounter      uint64
	CallID         uint64

	// RwIndices are the positions in Block.Rws of the events this step
	// consumes and produces, in access order.
	RwIndices []int
}
