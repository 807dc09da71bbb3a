package evm

import (
	"fmt"

	"github.com/consensys/zkevm-prover/witness"
)

// PushCells is the witness layout of the PUSH32 gadget: the immediate word
// written to the top of the stack.
type PushCells struct {
	Value Word
}

func newPushCells() PushCells {
	var c PushCells
	for i := 0; i < WordBytes; i++ {
		c.Value[i] = 0
	}
	return c
}

// pushGadget handles the PUSH32 opcode.
type pushGadget struct{}

func (pushGadget) Name() string                  { return "PUSH" }
func (pushGadget) State() witness.ExecutionState { return witness.StatePush }

// Transition writes one word: the read/write counter advances by 1, the
// program counter skips the opcode byte plus the 32 immediate bytes, and the
// stack grows by one slot.
func (pushGadget) Transition() StepStateTransition {
	return StepStateTransition{
		RwCounter:      Delta(1),
		ProgramCounter: Delta(33),
		StackPointer:   Delta(-1),
	}
}

func (g pushGadget) Configure(cb *Builder, row *StepRow) {
	c := &row.Push
	cb.RangeCheckWord(&c.Value)
	cb.StackPush(cb.WordRLC(&c.Value))
	SameContextGadget{}.Configure(cb,
		[]witness.Opcode{witness.OpPush32},
		g.Transition())
}

func (pushGadget) Assign(row *StepRow, blk *witness.Block, _ *witness.Transaction, step *witness.ExecStep) error {
	if len(step.RwIndices) != 1 {
		return fmt.Errorf("push step carries %d rw events, want 1", len(step.RwIndices))
	}
	row.Push.Value.Assign(blk.Rws[step.RwIndices[0]].Value)
	return nil
}
