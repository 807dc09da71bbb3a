package evm

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/zkevm-prover/witness"
)

// Builder is the constraint builder handed to gadgets during the configure
// phase. It is created per (row, execution state) with that state's selector
// as gating condition: every constraint a gadget declares through it is
// multiplied by the selector, so inactive gadgets on a row are satisfied by
// their zero-valued cells.
//
// The builder exists only while constraints are being declared; it is
// discarded before any assignment runs. The two phases never interleave.
type Builder struct {
	api        frontend.API
	rc         frontend.Rangechecker
	randomness frontend.Variable
	condition  frontend.Variable

	cur  *StepRow
	next *StepRow // nil on the terminal row

	rwSlot     int
	transition StepStateTransition
	declared   bool
}

func newBuilder(api frontend.API, rc frontend.Rangechecker, randomness, condition frontend.Variable, cur, next *StepRow) *Builder {
	return &Builder{
		api:        api,
		rc:         rc,
		randomness: randomness,
		condition:  condition,
		cur:        cur,
		next:       next,
	}
}

// RequireZero adds the gated constraint condition · v = 0.
func (cb *Builder) RequireZero(v frontend.Variable) {
	cb.api.AssertIsEqual(cb.api.Mul(cb.condition, v), 0)
}

// RequireEqual adds the gated constraint condition · (a − b) = 0.
func (cb *Builder) RequireEqual(a, b frontend.Variable) {
	cb.RequireZero(cb.api.Sub(a, b))
}

// RequireBoolean adds the gated constraint condition · v · (1 − v) = 0.
func (cb *Builder) RequireBoolean(v frontend.Variable) {
	cb.RequireZero(cb.api.Mul(v, cb.api.Sub(1, v)))
}

// RangeCheckByte constrains the cell to the byte domain [0,256). Range checks
// are not gated: a zero cell on an inactive row passes them.
func (cb *Builder) RangeCheckByte(v frontend.Variable) {
	cb.rc.Check(v, 8)
}

// RangeCheckWord range-checks all 32 byte cells of w.
func (cb *Builder) RangeCheckWord(w *Word) {
	for i := range w {
		cb.RangeCheckByte(w[i])
	}
}

// FromBytes reconstructs the unsigned integer Σ cells[i]·256^i. Callers are
// responsible for the cells being range-checked bytes.
func (cb *Builder) FromBytes(cells []frontend.Variable) frontend.Variable {
	acc := frontend.Variable(0)
	for i := len(cells) - 1; i >= 0; i-- {
		acc = cb.api.Add(cb.api.Mul(acc, 256), cells[i])
	}
	return acc
}

// WordRLC encodes w as the random linear combination Σ w[i]·r^i in the block
// randomness, the encoding used by the lookup argument.
func (cb *Builder) WordRLC(w *Word) frontend.Variable {
	acc := frontend.Variable(0)
	for i := len(w) - 1; i >= 0; i-- {
		acc = cb.api.Add(cb.api.Mul(acc, cb.randomness), w[i])
	}
	return acc
}

// Select returns t when cond is 1 and f when cond is 0.
func (cb *Builder) Select(cond, t, f frontend.Variable) frontend.Variable {
	return cb.api.Select(cond, t, f)
}

// Opcode returns the row's opcode column.
func (cb *Builder) Opcode() frontend.Variable {
	return cb.cur.State.Opcode
}

// StackPop binds the next read slot of this row to the RLC-encoded value
// popped from the stack. Each call consumes one rw slot and contributes one
// unit to the step's read/write-counter delta.
func (cb *Builder) StackPop(valueRLC frontend.Variable) {
	cb.rwAccess(valueRLC)
}

// StackPush binds the next write slot of this row to the RLC-encoded value
// pushed onto the stack.
func (cb *Builder) StackPush(valueRLC frontend.Variable) {
	cb.rwAccess(valueRLC)
}

func (cb *Builder) rwAccess(valueRLC frontend.Variable) {
	if cb.rwSlot >= maxRwOps {
		panic(fmt.Sprintf("evm: gadget exceeds %d rw slots per step", maxRwOps))
	}
	cb.RequireEqual(valueRLC, cb.cur.RwValues[cb.rwSlot])
	cb.rwSlot++
}

// RequireStepStateTransition declares how the global counters move into the
// next step. A gadget declares its transition exactly once.
func (cb *Builder) RequireStepStateTransition(t StepStateTransition) {
	if cb.declared {
		panic("evm: step state transition declared twice")
	}
	cb.transition = t
	cb.declared = true
}

// RequireNextState adds the gated constraint that the next row is handled by
// the given execution state.
func (cb *Builder) RequireNextState(s witness.ExecutionState) {
	if cb.next == nil {
		return
	}
	cb.RequireEqual(cb.next.Selectors[s], 1)
}

// RequireNextStateIn adds the gated constraint that the next row is handled by
// one of the given execution states.
func (cb *Builder) RequireNextStateIn(states ...witness.ExecutionState) {
	if cb.next == nil {
		return
	}
	sum := frontend.Variable(0)
	for _, s := range states {
		sum = cb.api.Add(sum, cb.next.Selectors[s])
	}
	cb.RequireEqual(sum, 1)
}

// finalize applies the declared transition between this row and the next, and
// checks that the declared read/write-counter delta agrees with the access
// declarations made through StackPop/StackPush. It is called once per
// (row, state) after the gadget's Configure returns.
func (cb *Builder) finalize() {
	if d := cb.transition.RwCounter; d.Kind == TransitionDelta && d.Delta != int64(cb.rwSlot) {
		panic(fmt.Sprintf("evm: declared rw counter delta %d but %d accesses declared", d.Delta, cb.rwSlot))
	}
	if cb.next == nil {
		return
	}
	cb.applyTransition(cb.cur.State.RwCounter, cb.next.State.RwCounter, cb.transition.RwCounter)
	cb.applyTransition(cb.cur.State.ProgramCounter, cb.next.State.ProgramCounter, cb.transition.ProgramCounter)
	cb.applyTransition(cb.cur.State.StackPointer, cb.next.State.StackPointer, cb.transition.StackPointer)
	cb.applyTransition(cb.cur.State.CallID, cb.next.State.CallID, cb.transition.CallID)
}

func (cb *Builder) applyTransition(cur, next frontend.Variable, t Transition) {
	switch t.Kind {
	case TransitionSame:
		cb.RequireEqual(next, cur)
	case TransitionDelta:
		cb.RequireEqual(next, cb.api.Add(cur, t.Delta))
	case TransitionAny:
	}
}
