package evm

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/zkevm-prover/witness"
)

// ExecutionGadget is the per-state unit of the step machine. Configure runs at
// build time with no concrete values and declares the state's constraints over
// the row's cells; Assign runs at witness time and computes concrete values
// for the same cells, strictly from the step's recorded events. The declared
// StepStateTransition and the assigned counter deltas must agree exactly.
type ExecutionGadget interface {
	Name() string
	State() witness.ExecutionState
	Transition() StepStateTransition
	Configure(cb *Builder, row *StepRow)
	Assign(row *StepRow, blk *witness.Block, tx *witness.Transaction, step *witness.ExecStep) error
}

// registry maps every execution state to its gadget. The mapping is total and
// injective; both are checked once at startup and a violation is a build
// defect, not a recoverable error.
var registry [witness.StateCount]ExecutionGadget

func init() {
	for _, g := range []ExecutionGadget{
		beginTxGadget{},
		signedComparatorGadget{},
		pushGadget{},
		endTxGadget{},
		endBlockGadget{},
	} {
		s := g.State()
		if registry[s] != nil {
			panic(fmt.Sprintf("evm: states %s and %s share a gadget slot", registry[s].Name(), g.Name()))
		}
		registry[s] = g
	}
	for s, g := range registry {
		if g == nil {
			panic(fmt.Sprintf("evm: execution state %s has no gadget", witness.ExecutionState(s)))
		}
	}
}

// SameContextGadget is the context-continuity layer shared by every opcode
// gadget: it pins the row's opcode to the state's opcode set, keeps the call
// context unless the transition says otherwise, and declares the step state
// transition. Opcode gadgets only specify their own deltas through it.
type SameContextGadget struct{}

// Configure binds the row's opcode column to the given opcode set and
// declares the transition.
func (SameContextGadget) Configure(cb *Builder, opcodes []witness.Opcode, t StepStateTransition) {
	op := cb.Opcode()
	prod := frontend.Variable(1)
	for _, o := range opcodes {
		prod = cb.api.Mul(prod, cb.api.Sub(op, uint64(o)))
	}
	cb.RequireZero(prod)
	cb.RequireStepStateTransition(t)
}

// beginTxGadget handles the entry control state of a transaction. The call
// entry re-seats the program counter, stack pointer and call id, so the
// transition out of it leaves them unconstrained; no state access is recorded.
type beginTxGadget struct{}

func (beginTxGadget) Name() string                  { return "BeginTx" }
func (beginTxGadget) State() witness.ExecutionState { return witness.StateBeginTx }

func (beginTxGadget) Transition() StepStateTransition {
	return StepStateTransition{
		ProgramCounter: Any(),
		StackPointer:   Any(),
		CallID:         Any(),
	}
}

func (g beginTxGadget) Configure(cb *Builder, row *StepRow) {
	cb.RequireZero(row.State.Opcode)
	cb.RequireZero(row.State.ProgramCounter)
	cb.RequireEqual(row.State.StackPointer, witness.StackDepth)
	cb.RequireStepStateTransition(g.Transition())
}

func (beginTxGadget) Assign(*StepRow, *witness.Block, *witness.Transaction, *witness.ExecStep) error {
	return nil
}

// endTxGadget closes a transaction's call context. The next step re-seats the
// program counter, stack pointer and call id (a new transaction) or freezes
// them (end of block), so its transition leaves them unconstrained; it must be
// another control state, never an opcode.
type endTxGadget struct{}

func (endTxGadget) Name() string                  { return "EndTx" }
func (endTxGadget) State() witness.ExecutionState { return witness.StateEndTx }

func (endTxGadget) Transition() StepStateTransition {
	return StepStateTransition{
		ProgramCounter: Any(),
		StackPointer:   Any(),
		CallID:         Any(),
	}
}

func (g endTxGadget) Configure(cb *Builder, row *StepRow) {
	cb.RequireZero(row.State.Opcode)
	cb.RequireNextStateIn(witness.StateBeginTx, witness.StateEndBlock)
	cb.RequireStepStateTransition(g.Transition())
}

func (endTxGadget) Assign(*StepRow, *witness.Block, *witness.Transaction, *witness.ExecStep) error {
	return nil
}

// endBlockGadget handles the terminal state and the padding rows after it.
// Once reached, the state perpetuates itself and all counters freeze, so a
// single assigned terminal step can pad the table to capacity.
type endBlockGadget struct{}

func (endBlockGadget) Name() string                  { return "EndBlock" }
func (endBlockGadget) State() witness.ExecutionState { return witness.StateEndBlock }

func (endBlockGadget) Transition() StepStateTransition {
	return StepStateTransition{}
}

func (g endBlockGadget) Configure(cb *Builder, row *StepRow) {
	cb.RequireZero(row.State.Opcode)
	cb.RequireNextState(witness.StateEndBlock)
	cb.RequireStepStateTransition(g.Transition())
}

func (endBlockGadget) Assign(*StepRow, *witness.Block, *witness.Transaction, *witness.ExecStep) error {
	return nil
}
