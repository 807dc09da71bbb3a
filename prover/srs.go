package prover

import (
	"github.com/consensys/gnark-crypto/kzg"
	"github.com/consensys/gnark/constraint"
)

// SRSSource supplies the universal KZG parameters for a compiled constraint
// system. The parameters are generated once in a trusted ceremony and loaded
// from storage by an external collaborator; the returned objects are read-only
// and safe to share across concurrent proof runs.
type SRSSource interface {
	SRS(ccs constraint.ConstraintSystem) (srs, srsLagrange kzg.SRS, err error)
}
