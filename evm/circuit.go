package evm

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/rangecheck"

	"github.com/consensys/zkevm-prover/params"
	"github.com/consensys/zkevm-prover/witness"
)

const (
	// maxRwOps is the number of rw slots a step row carries; the widest
	// gadget (two pops, one push) bounds it.
	maxRwOps = 3

	// rowsPerStep is the backing-table cost of one step row, used to derive
	// the step capacity from the bucket's 2^k table size.
	rowsPerStep = 32

	// blindingSteps is the fixed reserve kept free at the end of the table
	// for the prover's blinding rows.
	blindingSteps = 6
)

// StepCapacity returns the number of step rows a table of 2^k rows holds,
// after the blinding reserve.
func StepCapacity(k uint32) int {
	c := (1<<k)/rowsPerStep - blindingSteps
	if c < 1 {
		return 1
	}
	return c
}

// StepRow is one row of the table. Every row carries the step-state columns,
// one boolean selector per execution state, the rw value slots, and the cells
// of every gadget; selectors gate which gadget's constraints are live.
type StepRow struct {
	State     StepState
	Selectors [witness.StateCount]frontend.Variable
	RwValues  [maxRwOps]frontend.Variable
	Scmp      SignedComparatorCells
	Push      PushCells
}

func newStepRow() StepRow {
	row := StepRow{
		State: newStepState(),
		Scmp:  newSignedComparatorCells(),
		Push:  newPushCells(),
	}
	for i := range row.Selectors {
		row.Selectors[i] = 0
	}
	for i := range row.RwValues {
		row.RwValues[i] = 0
	}
	return row
}

// Circuit is the whole-execution proof table. Its shape is a pure function of
// the step capacity; all concrete block data, including the randomness used
// for the lookup-argument encoding, enters as witness.
type Circuit struct {
	Randomness frontend.Variable
	Steps      []StepRow
}

// NewCircuit returns the circuit shape for the given step capacity. The same
// constructor seeds assignment instances, so every cell starts at zero.
func NewCircuit(capacity int) *Circuit {
	if capacity < 1 {
		panic("evm: circuit capacity must be positive")
	}
	c := &Circuit{Randomness: 0, Steps: make([]StepRow, capacity)}
	for i := range c.Steps {
		c.Steps[i] = newStepRow()
	}
	return c
}

// Define declares the constraints of every gadget on every row, gated by the
// per-state selectors, plus the boot constraints framing the trace: the table
// starts in BeginTx and ends in EndBlock.
func (c *Circuit) Define(api frontend.API) error {
	rc := rangecheck.New(api)

	api.AssertIsEqual(c.Steps[0].Selectors[witness.StateBeginTx], 1)
	api.AssertIsEqual(c.Steps[len(c.Steps)-1].Selectors[witness.StateEndBlock], 1)

	for i := range c.Steps {
		cur := &c.Steps[i]
		var next *StepRow
		if i+1 < len(c.Steps) {
			next = &c.Steps[i+1]
		}

		// exactly one selector is set, and it matches the state tag
		sum := frontend.Variable(0)
		tag := frontend.Variable(0)
		for j := range cur.Selectors {
			api.AssertIsBoolean(cur.Selectors[j])
			sum = api.Add(sum, cur.Selectors[j])
			tag = api.Add(tag, api.Mul(cur.Selectors[j], j))
		}
		api.AssertIsEqual(sum, 1)
		api.AssertIsEqual(tag, cur.State.ExecState)

		for _, g := range registry {
			cb := newBuilder(api, rc, c.Randomness, cur.Selectors[g.State()], cur, next)
			g.Configure(cb, cur)
			cb.finalize()
		}
	}
	return nil
}

// Assign builds the assignment instance for blk in a table of the given
// capacity, validating the bucket limits and padding the unused rows with the
// terminal EndBlock step. The returned instance satisfies Define's constraints
// iff every gadget's assignment agrees with its declared constraints.
func Assign(p params.CircuitParameters, capacity int, blk *witness.Block) (*Circuit, error) {
	if err := checkCapacity(p, capacity, blk); err != nil {
		return nil, err
	}
	if len(blk.Steps) == 0 {
		return nil, fmt.Errorf("empty trace")
	}
	if first := blk.Steps[0].State; first != witness.StateBeginTx {
		return nil, fmt.Errorf("trace starts in %s, want %s", first, witness.StateBeginTx)
	}
	if last := blk.Steps[len(blk.Steps)-1].State; last != witness.StateEndBlock {
		return nil, fmt.Errorf("trace ends in %s, want %s", last, witness.StateEndBlock)
	}
	if err := auditTransitions(blk.Steps); err != nil {
		return nil, err
	}

	var r fr.Element
	r.SetBigInt(blk.Randomness)

	c := NewCircuit(capacity)
	c.Randomness = new(big.Int).Set(blk.Randomness)

	txIdx := -1
	for i := range blk.Steps {
		step := &blk.Steps[i]
		if step.State == witness.StateBeginTx {
			txIdx++
		}
		var tx *witness.Transaction
		if txIdx >= 0 && txIdx < len(blk.Txs) {
			tx = &blk.Txs[txIdx]
		}
		if err := assignStepRow(&c.Steps[i], blk, tx, step, &r); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.State, err)
		}
	}

	// pad to capacity by repeating the terminal step
	terminal := &blk.Steps[len(blk.Steps)-1]
	for i := len(blk.Steps); i < capacity; i++ {
		if err := assignStepRow(&c.Steps[i], blk, nil, terminal, &r); err != nil {
			return nil, fmt.Errorf("padding step %d: %w", i, err)
		}
	}

	return c, nil
}

func checkCapacity(p params.CircuitParameters, capacity int, blk *witness.Block) error {
	if blk.GasUsed > p.BlockGasLimit {
		return &params.CapacityError{Resource: "gas", Used: blk.GasUsed, Limit: p.BlockGasLimit}
	}
	if n := uint64(len(blk.Txs)); n > p.MaxTxs {
		return &params.CapacityError{Resource: "txs", Used: n, Limit: p.MaxTxs}
	}
	if n := blk.CalldataSize(); n > p.MaxCalldata {
		return &params.CapacityError{Resource: "calldata", Used: n, Limit: p.MaxCalldata}
	}
	if blk.BytecodeSize > p.MaxBytecode {
		return &params.CapacityError{Resource: "bytecode", Used: blk.BytecodeSize, Limit: p.MaxBytecode}
	}
	if n := uint64(len(blk.Steps)); n > uint64(capacity) {
		return &params.CapacityError{Resource: "steps", Used: n, Limit: uint64(capacity)}
	}
	return nil
}

func assignStepRow(row *StepRow, blk *witness.Block, tx *witness.Transaction, step *witness.ExecStep, r *fr.Element) error {
	row.State.ExecState = uint64(step.State)
	row.State.Opcode = uint64(step.Opcode)
	row.State.ProgramCounter = step.ProgramCounter
	row.State.StackPointer = step.StackPointer
	row.State.RwCounter = step.RwCounter
	row.State.CallID = step.CallID

	for j := range row.Selectors {
		row.Selectors[j] = 0
	}
	row.Selectors[step.State] = 1

	for j, idx := range step.RwIndices {
		if j >= maxRwOps {
			return fmt.Errorf("step carries %d rw events, table row holds %d", len(step.RwIndices), maxRwOps)
		}
		if idx < 0 || idx >= len(blk.Rws) {
			return fmt.Errorf("rw index %d out of range", idx)
		}
		row.RwValues[j] = rlcValue(blk.Rws[idx].Value, r)
	}

	return registry[step.State].Assign(row, blk, tx, step)
}

// auditTransitions cross-checks each step's actual counter deltas against the
// transition its gadget declares. A mismatch means the witness construction
// and the circuit disagree; catching it here beats an unsatisfiable table
// later.
func auditTransitions(steps []witness.ExecStep) error {
	for i := 0; i+1 < len(steps); i++ {
		cur, next := &steps[i], &steps[i+1]
		t := registry[cur.State].Transition()
		if err := auditCounter("rw counter", cur.RwCounter, next.RwCounter, t.RwCounter); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, cur.State, err)
		}
		if err := auditCounter("program counter", cur.ProgramCounter, next.ProgramCounter, t.ProgramCounter); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, cur.State, err)
		}
		if err := auditCounter("stack pointer", cur.StackPointer, next.StackPointer, t.StackPointer); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, cur.State, err)
		}
		if err := auditCounter("call id", cur.CallID, next.CallID, t.CallID); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, cur.State, err)
		}
		if next.RwCounter < cur.RwCounter {
			return fmt.Errorf("step %d (%s): rw counter decreases", i, cur.State)
		}
	}
	return nil
}

func auditCounter(name string, cur, next uint64, t Transition) error {
	actual := int64(next) - int64(cur)
	switch t.Kind {
	case TransitionSame:
		if actual != 0 {
			return fmt.Errorf("%s moves by %d, declared unchanged", name, actual)
		}
	case TransitionDelta:
		if actual != t.Delta {
			return fmt.Errorf("%s moves by %d, declared delta %d", name, actual, t.Delta)
		}
	case TransitionAny:
	}
	return nil
}
