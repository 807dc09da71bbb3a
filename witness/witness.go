// Package witness holds the trace representation consumed by the EVM circuit:
// recorded state accesses, execution steps, transactions and the per-block
// witness container, together with the interface to the external collaborator
// that produces them from a live node.
package witness

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Transaction is an immutable input to circuit construction.
type Transaction struct {
	From     common.Address
	To       common.Address
	Nonce    uint64
	Gas      uint64
	GasPrice *uint256.Int
	Value    *uint256.Int
	CallData hexutil.Bytes
}

// Block is the full witness for one block: the transactions, the read/write
// event log and the randomness used to encode values into the lookup argument.
//
// A Block is owned by exactly one proof-generation run. Gadgets bind to it by
// reference for the lifetime of the run, so it must not be shared across
// concurrent runs.
type Block struct {
	ChainID      uint64
	Randomness   *big.Int
	GasUsed      uint64
	BytecodeSize uint64
	Txs          []Transaction
	Rws          []Rw
	Steps        []ExecStep
}

// CalldataSize returns the total calldata bytes carried by the block's
// transactions.
func (b *Block) CalldataSize() uint64 {
	var n uint64
	for i := range b.Txs {
		n += uint64(len(b.Txs[i].CallData))
	}
	return n
}

// Provider retrieves the witness for a block from an external source (a node
// with debug/archive capabilities, behind trace conversion that is outside
// this module). The call blocks on I/O and honors ctx cancellation; its output
// is treated as authoritative input by the proof pipeline.
type Provider interface {
	BlockWitness(ctx context.Context, blockNumber uint64) (*Block, error)
}
