package prover

import (
	"errors"
	"fmt"

	"github.com/consensys/zkevm-prover/params"
)

// Stage identifies the pipeline stage an error originated from. Every stage
// fails fast: the whole pipeline aborts, no partial proof is kept and no retry
// happens at this layer.
type Stage uint8

const (
	// StageParams covers parameter-bucket selection.
	StageParams Stage = iota + 1
	// StageWitness covers the external witness retrieval.
	StageWitness
	// StageBuild covers circuit instantiation and witness assignment.
	StageBuild
	// StageKeygen covers compiling the constraint system and deriving keys.
	StageKeygen
	// StageProve covers proof creation.
	StageProve
)

func (s Stage) String() string {
	switch s {
	case StageParams:
		return "params"
	case StageWitness:
		return "witness"
	case StageBuild:
		return "build"
	case StageKeygen:
		return "keygen"
	case StageProve:
		return "prove"
	default:
		return "unknown"
	}
}

// Error is the tagged failure value surfaced to callers: the stage that
// failed plus the underlying cause, enough to tell "my block doesn't fit this
// circuit" apart from an infrastructure problem or an internal soundness bug.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("prove: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func stageErr(s Stage, err error) error {
	return &Error{Stage: s, Err: err}
}

// ErrorCode maps a pipeline error to the stable JSON-RPC error code the
// transport layer puts on the wire.
func ErrorCode(err error) int {
	var capErr *params.CapacityError
	if errors.As(err, &capErr) {
		return -32001
	}
	var perr *Error
	if errors.As(err, &perr) {
		switch perr.Stage {
		case StageWitness:
			return -32002
		case StageBuild:
			return -32003
		case StageKeygen:
			return -32004
		case StageProve:
			return -32005
		}
	}
	return -32603
}
