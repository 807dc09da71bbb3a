package evm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/holiman/uint256"
)

// WordBytes is the width of an EVM word in byte cells.
const WordBytes = 32

// Word represents a 256-bit unsigned integer as 32 little-endian byte cells
// (cell 0 is the least-significant byte). Each cell is independently
// range-checked to [0,256), so reconstruction by the weighted sum
// Σ cell[i]·256^i round-trips exactly. Gadgets address sub-ranges of cells
// (e.g. w[0:16], w[16:32]) to implement sub-word arithmetic.
type Word [WordBytes]frontend.Variable

// Assign fills the cells with the little-endian bytes of v.
func (w *Word) Assign(v *uint256.Int) {
	le := wordLEBytes(v)
	for i := range w {
		w[i] = uint64(le[i])
	}
}

// wordLEBytes returns the little-endian byte decomposition of v.
func wordLEBytes(v *uint256.Int) [WordBytes]byte {
	be := v.Bytes32()
	var le [WordBytes]byte
	for i := range le {
		le[i] = be[WordBytes-1-i]
	}
	return le
}

// fromLEBytes reconstructs the unsigned integer Σ b[i]·256^i.
func fromLEBytes(b []byte) *big.Int {
	v := new(big.Int)
	for i := len(b) - 1; i >= 0; i-- {
		v.Lsh(v, 8)
		v.Or(v, big.NewInt(int64(b[i])))
	}
	return v
}

// rlcValue encodes the little-endian bytes of v as the random linear
// combination Σ b[i]·r^i in the scalar field. It is the witness-side
// counterpart of Builder.WordRLC.
func rlcValue(v *uint256.Int, r *fr.Element) *big.Int {
	le := wordLEBytes(v)
	var acc, b fr.Element
	for i := len(le) - 1; i >= 0; i-- {
		b.SetUint64(uint64(le[i]))
		acc.Mul(&acc, r).Add(&acc, &b)
	}
	return acc.BigInt(new(big.Int))
}
