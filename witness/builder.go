package witness

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
)

// TraceBuilder assembles a witness Block step by step. It keeps the global
// counters consistent with the transitions the circuit gadgets declare, so a
// block it produces assigns cleanly.
//
// Production witnesses come from a node through a Provider; the builder covers
// local traces and tests.
type TraceBuilder struct {
	chainID   uint64
	txs       []Transaction
	rws       []Rw
	steps     []ExecStep
	stack     []*uint256.Int
	rwCounter uint64
	pc        uint64
	sp        uint64
	callID    uint64
	gasUsed   uint64
}

// NewTraceBuilder returns a builder for a block on the given chain. Read/write
// counters start at 1.
func NewTraceBuilder(chainID uint64) *TraceBuilder {
	return &TraceBuilder{chainID: chainID, rwCounter: 1}
}

// StartTx opens a new transaction context and records its BeginTx step. Any
// transaction already open is closed with an EndTx step first.
func (tb *TraceBuilder) StartTx(tx Transaction) {
	tb.endOpenTx()
	tb.txs = append(tb.txs, tx)
	tb.callID++
	tb.pc = 0
	tb.sp = StackDepth
	tb.stack = tb.stack[:0]
	tb.gasUsed += tx.Gas
	tb.steps = append(tb.steps, ExecStep{
		State:          StateBeginTx,
		ProgramCounter: 0,
		StackPointer:   StackDepth,
		RwCounter:      tb.rwCounter,
		CallID:         tb.callID,
	})
}

// Push records one PUSH32 step writing v to the top of the stack.
func (tb *TraceBuilder) Push(v *uint256.Int) {
	if len(tb.steps) == 0 {
		panic("witness: Push before StartTx")
	}
	if tb.sp == 0 {
		panic("witness: stack overflow")
	}
	base := len(tb.rws)
	tb.rws = append(tb.rws, Rw{
		Counter: tb.rwCounter,
		Kind:    RwStack,
		IsWrite: true,
		CallID:  tb.callID,
		Key:     tb.sp - 1,
		Value:   v.Clone(),
	})
	tb.steps = append(tb.steps, ExecStep{
		State:          StatePush,
		Opcode:         OpPush32,
		ProgramCounter: tb.pc,
		StackPointer:   tb.sp,
		RwCounter:      tb.rwCounter,
		CallID:         tb.callID,
		RwIndices:      []int{base},
	})
	tb.stack = append(tb.stack, v.Clone())
	tb.rwCounter++
	tb.pc += 33 // opcode byte plus 32 immediate bytes
	tb.sp--
}

// SignedComparison records one SLT or SGT step after pushing its operands, so
// every recorded stack slot is written before it is read: y first, then x,
// leaving x on top (first pop). The result word (0 or 1) is written back to
// the stack and returned. op must be OpSlt or OpSgt; anything else is a
// programming error.
func (tb *TraceBuilder) SignedComparison(op Opcode, x, y *uint256.Int) *uint256.Int {
	if op != OpSlt && op != OpSgt {
		panic(fmt.Sprintf("witness: opcode %#x is not a signed comparison", uint8(op)))
	}
	if len(tb.steps) == 0 {
		panic("witness: SignedComparison before StartTx")
	}
	tb.Push(y)
	tb.Push(x)

	result := uint256.NewInt(0)
	switch op {
	case OpSlt:
		if x.Slt(y) {
			result.SetOne()
		}
	case OpSgt:
		if x.Sgt(y) {
			result.SetOne()
		}
	}

	top := len(tb.stack) - 1
	base := len(tb.rws)
	tb.rws = append(tb.rws,
		Rw{Counter: tb.rwCounter, Kind: RwStack, CallID: tb.callID, Key: tb.sp, Value: tb.stack[top].Clone()},
		Rw{Counter: tb.rwCounter + 1, Kind: RwStack, CallID: tb.callID, Key: tb.sp + 1, Value: tb.stack[top-1].Clone()},
		Rw{Counter: tb.rwCounter + 2, Kind: RwStack, IsWrite: true, CallID: tb.callID, Key: tb.sp + 1, Value: result.Clone()},
	)
	tb.steps = append(tb.steps, ExecStep{
		State:          StateSignedComparator,
		Opcode:         op,
		ProgramCounter: tb.pc,
		StackPointer:   tb.sp,
		RwCounter:      tb.rwCounter,
		CallID:         tb.callID,
		RwIndices:      []int{base, base + 1, base + 2},
	})

	// Two reads and one write; the stack is one word shorter.
	tb.stack = append(tb.stack[:top-1], result.Clone())
	tb.rwCounter += 3
	tb.pc++
	tb.sp++

	return result
}

// endOpenTx records the EndTx step of the transaction in progress, if any.
func (tb *TraceBuilder) endOpenTx() {
	if len(tb.steps) == 0 {
		return
	}
	tb.steps = append(tb.steps, ExecStep{
		State:          StateEndTx,
		ProgramCounter: tb.pc,
		StackPointer:   tb.sp,
		RwCounter:      tb.rwCounter,
		CallID:         tb.callID,
	})
}

// Finish seals the trace with its terminal EndBlock step and draws the block
// randomness from a cryptographically secure source. Reusing randomness
// across blocks is a soundness bug; there is deliberately no way to inject a
// fixed scalar here.
func (tb *TraceBuilder) Finish(bytecodeSize uint64) (*Block, error) {
	tb.endOpenTx()
	tb.steps = append(tb.steps, ExecStep{
		State:          StateEndBlock,
		ProgramCounter: tb.pc,
		StackPointer:   tb.sp,
		RwCounter:      tb.rwCounter,
		CallID:         tb.callID,
	})

	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, fmt.Errorf("draw block randomness: %w", err)
	}

	return &Block{
		ChainID:      tb.chainID,
		Randomness:   r.BigInt(new(big.Int)),
		GasUsed:      tb.gasUsed,
		BytecodeSize: bytecodeSize,
		Txs:          tb.txs,
		Rws:          tb.rws,
		Steps:        tb.steps,
	}, nil
}
