// Package params maps a block's estimated resource usage to fixed circuit
// table dimensions.
//
// The mapping is a total function over gas estimates up to MaxBlockGas: each
// estimate falls into exactly one bucket of the ascending table below, and
// estimates above MaxBlockGas have no bucket at all. Bucket selection is pure
// and side-effect free; a caller holding an out-of-range estimate must provide
// its own alternate handling path.
package params

import "fmt"

// MaxBlockGas is the largest gas estimate any bucket can accommodate.
const MaxBlockGas = 1_000_000

// MaxK caps the table size a request may demand. The largest bucket needs
// k = 23; anything past this bound would only allocate memory, never fit a
// larger block.
const MaxK = 26

// CircuitParameters fixes the dimensions of one proving table. Proving and
// verifying keys are bound to one CircuitParameters value and must never be
// reused across buckets.
type CircuitParameters struct {
	BlockGasLimit uint64
	MaxTxs        uint64
	MaxCalldata   uint64
	MaxBytecode   uint64
	MinK          uint32
}

// CapacityError reports that a resource does not fit the circuit: either no
// bucket covers the gas estimate, or the witness exceeds one of the chosen
// bucket's limits.
type CapacityError struct {
	Resource string
	Used     uint64
	Limit    uint64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %s %d > %d", e.Resource, e.Used, e.Limit)
}

// buckets is ordered by BlockGasLimit; Select relies on the ordering.
var buckets = []CircuitParameters{
	{BlockGasLimit: 100_000, MaxTxs: 4, MaxCalldata: 19_750, MaxBytecode: 26_333, MinK: 20},
	{BlockGasLimit: 200_000, MaxTxs: 9, MaxCalldata: 44_750, MaxBytecode: 59_666, MinK: 21},
	{BlockGasLimit: 500_000, MaxTxs: 23, MaxCalldata: 119_750, MaxBytecode: 159_666, MinK: 22},
	{BlockGasLimit: 1_000_000, MaxTxs: 47, MaxCalldata: 244_750, MaxBytecode: 326_333, MinK: 23},
}

// Select returns the smallest bucket whose BlockGasLimit covers gasUsed.
// Estimates above MaxBlockGas yield a *CapacityError; there is no default
// bucket.
func Select(gasUsed uint64) (CircuitParameters, error) {
	for _, b := range buckets {
		if gasUsed <= b.BlockGasLimit {
			return b, nil
		}
	}
	return CircuitParameters{}, &CapacityError{Resource: "gas", Used: gasUsed, Limit: MaxBlockGas}
}
