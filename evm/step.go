package evm

import "github.com/consensys/gnark/frontend"

// TransitionKind says how a step-state counter moves between consecutive
// steps.
type TransitionKind uint8

const (
	// TransitionSame requires the counter to be unchanged. It is the zero
	// value, so counters a gadget does not mention stay fixed.
	TransitionSame TransitionKind = iota
	// TransitionDelta requires the counter to move by a fixed amount.
	TransitionDelta
	// TransitionAny leaves the counter unconstrained.
	TransitionAny
)

// Transition is the declared movement of one counter.
type Transition struct {
	Kind  TransitionKind
	Delta int64
}

// Same requires the counter to be unchanged.
func Same() Transition { return Transition{} }

// Delta requires the counter to move by exactly d.
func Delta(d int64) Transition { return Transition{Kind: TransitionDelta, Delta: d} }

// Any leaves the counter unconstrained.
func Any() Transition { return Transition{Kind: TransitionAny} }

// StepStateTransition declares, per step, how each global counter moves into
// the next step. A gadget's declared transition and its assigned witness
// deltas must agree exactly; disagreement is a circuit-build defect.
type StepStateTransition struct {
	RwCounter      Transition
	ProgramCounter Transition
	StackPointer   Transition
	CallID         Transition
}

// StepState holds the per-row step-state columns.
type StepState struct {
	ExecState      frontend.Variable
	Opcode         frontend.Variable
	ProgramCounter frontend.Variable
	StackPointer   frontend.Variable
	RwCounter      frontend.Variable
	CallID         frontend.Variable
}

func newStepState() StepState {
	return StepState{
		ExecState:      0,
		Opcode:         0,
		ProgramCounter: 0,
		StackPointer:   0,
		RwCounter:      0,
		CallID:         0,
	}
}
