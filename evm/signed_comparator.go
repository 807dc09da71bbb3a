package evm

import (
	"fmt"
	"math/big"

	"github.com/consensys/zkevm-prover/witness"
)

// SignedComparatorCells is the witness layout of the SLT/SGT gadget. Both
// operands are treated as two's-complement signed 256-bit integers; the sign
// lives in the top bit of the most-significant byte (cell 31, little-endian),
// so a value is non-negative iff that byte is < 128.
type SignedComparatorCells struct {
	A Word
	B Word

	SignCheckA LtGadget // 1 byte: a[31] < 128
	SignCheckB LtGadget // 1 byte: b[31] < 128

	LtLo         LtGadget         // 16 bytes: low halves
	ComparisonHi ComparisonGadget // 16 bytes: high halves

	IsSgt IsEqualGadget // opcode == SGT
}

func newSignedComparatorCells() SignedComparatorCells {
	c := SignedComparatorCells{
		SignCheckA:   newLtGadget(1),
		SignCheckB:   newLtGadget(1),
		LtLo:         newLtGadget(16),
		ComparisonHi: newComparisonGadget(16),
		IsSgt:        newIsEqualGadget(),
	}
	for i := 0; i < WordBytes; i++ {
		c.A[i] = 0
		c.B[i] = 0
	}
	return c
}

// signedComparatorGadget handles the SLT and SGT opcodes. SGT is not a second
// circuit: the opcode selects which operand plays "a" going into the same
// sub-circuit, by swapping the order the operands are popped.
type signedComparatorGadget struct{}

func (signedComparatorGadget) Name() string                  { return "SCMP" }
func (signedComparatorGadget) State() witness.ExecutionState { return witness.StateSignedComparator }

// Transition pops two words and pushes one: the read/write counter advances by
// exactly 3, the program counter by 1 and the stack pointer by 1.
func (signedComparatorGadget) Transition() StepStateTransition {
	return StepStateTransition{
		RwCounter:      Delta(3),
		ProgramCounter: Delta(1),
		StackPointer:   Delta(1),
	}
}

func (g signedComparatorGadget) Configure(cb *Builder, row *StepRow) {
	c := &row.Scmp

	cb.RangeCheckWord(&c.A)
	cb.RangeCheckWord(&c.B)

	isSgt := c.IsSgt.Configure(cb, cb.Opcode(), uint64(witness.OpSgt))

	// aPos/bPos hold iff the most-significant byte is < 2^7, i.e. the
	// operand is non-negative.
	aPos := c.SignCheckA.Configure(cb, c.A[WordBytes-1], 128)
	bPos := c.SignCheckB.Configure(cb, c.B[WordBytes-1], 128)

	// Unsigned magnitude ordering, needed only when the signs agree:
	// a < b iff a_hi < b_hi, or a_hi == b_hi and a_lo < b_lo.
	aLtBLo := c.LtLo.Configure(cb, cb.FromBytes(c.A[0:16]), cb.FromBytes(c.B[0:16]))
	aLtBHi, aEqBHi := c.ComparisonHi.Configure(cb, cb.FromBytes(c.A[16:32]), cb.FromBytes(c.B[16:32]))
	aLtB := cb.Select(aLtBHi, 1, cb.api.Mul(aEqBHi, aLtBLo))

	// When the signs differ the negative operand is smaller outright.
	aNegBPos := cb.api.Mul(cb.api.Sub(1, aPos), bPos)
	bNegAPos := cb.api.Mul(cb.api.Sub(1, bPos), aPos)
	result := cb.api.Add(aNegBPos,
		cb.api.Mul(cb.api.Sub(cb.api.Sub(1, aNegBPos), bNegAPos), aLtB))

	// Pop a and b, push the result. For SGT the stack order of a and b is
	// swapped.
	aRLC := cb.WordRLC(&c.A)
	bRLC := cb.WordRLC(&c.B)
	cb.StackPop(cb.Select(isSgt, bRLC, aRLC))
	cb.StackPop(cb.Select(isSgt, aRLC, bRLC))
	cb.StackPush(result)

	SameContextGadget{}.Configure(cb,
		[]witness.Opcode{witness.OpSlt, witness.OpSgt},
		g.Transition())
}

func (signedComparatorGadget) Assign(row *StepRow, blk *witness.Block, _ *witness.Transaction, step *witness.ExecStep) error {
	c := &row.Scmp

	if len(step.RwIndices) != 3 {
		return fmt.Errorf("signed comparator step carries %d rw events, want 3", len(step.RwIndices))
	}

	c.IsSgt.Assign(uint64(step.Opcode), uint64(witness.OpSgt))

	// SLT is the canonical orientation; swap the popped operands for SGT.
	indices := [2]int{step.RwIndices[0], step.RwIndices[1]}
	if step.Opcode == witness.OpSgt {
		indices[0], indices[1] = indices[1], indices[0]
	}
	a := blk.Rws[indices[0]].Value
	b := blk.Rws[indices[1]].Value
	aLE := wordLEBytes(a)
	bLE := wordLEBytes(b)

	c.A.Assign(a)
	c.B.Assign(b)

	c.SignCheckA.Assign(fromLEBytes(aLE[31:]), big128)
	c.SignCheckB.Assign(fromLEBytes(bLE[31:]), big128)
	c.LtLo.Assign(fromLEBytes(aLE[0:16]), fromLEBytes(bLE[0:16]))
	c.ComparisonHi.Assign(fromLEBytes(aLE[16:32]), fromLEBytes(bLE[16:32]))

	return nil
}

var big128 = big.NewInt(128)
