package evm

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/holiman/uint256"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/zkevm-prover/params"
	"github.com/consensys/zkevm-prover/witness"
)

const testCapacity = 8

func testBucket(t *testing.T, gasUsed uint64) params.CircuitParameters {
	t.Helper()
	bucket, err := params.Select(gasUsed)
	require.NoError(t, err)
	return bucket
}

// comparisonBlock records a single-transaction trace running one SLT/SGT over
// x (top of stack) and y.
func comparisonBlock(t *testing.T, op witness.Opcode, x, y *uint256.Int) *witness.Block {
	t.Helper()
	tb := witness.NewTraceBuilder(99)
	tb.StartTx(witness.Transaction{Gas: 21_000, Value: uint256.NewInt(0)})
	tb.SignedComparison(op, x, y)
	blk, err := tb.Finish(0)
	require.NoError(t, err)
	return blk
}

// comparisonResult returns the word the block's comparison step wrote back to
// the stack.
func comparisonResult(t *testing.T, blk *witness.Block) *uint256.Int {
	t.Helper()
	for i := range blk.Steps {
		if blk.Steps[i].State == witness.StateSignedComparator {
			return blk.Rws[blk.Steps[i].RwIndices[2]].Value
		}
	}
	t.Fatal("trace has no comparison step")
	return nil
}

// signedRef interprets v as a two's-complement 256-bit integer.
func signedRef(v *uint256.Int) *big.Int {
	b := v.ToBig()
	if b.Bit(255) == 1 {
		b.Sub(b, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return b
}

func solveComparison(t *testing.T, op witness.Opcode, x, y *uint256.Int) {
	t.Helper()
	blk := comparisonBlock(t, op, x, y)
	assignment, err := Assign(testBucket(t, blk.GasUsed), testCapacity, blk)
	require.NoError(t, err)
	err = test.IsSolved(NewCircuit(testCapacity), assignment, ecc.BN254.ScalarField())
	require.NoError(t, err, "op=%s x=%s y=%s", op, x, y)
}

func negWord(v uint64) *uint256.Int {
	// two's complement of v
	return new(uint256.Int).Neg(uint256.NewInt(v))
}

func TestSignedComparatorKnownCases(t *testing.T) {
	minusOne := negWord(1)
	minusTwo := negWord(2)
	one := uint256.NewInt(1)
	two := uint256.NewInt(2)

	cases := []struct {
		op   witness.Opcode
		x, y *uint256.Int
		want uint64
	}{
		{witness.OpSlt, minusTwo, minusOne, 1},
		{witness.OpSgt, minusTwo, minusOne, 0},
		{witness.OpSlt, minusOne, minusTwo, 0},
		{witness.OpSgt, minusOne, minusTwo, 1},
		{witness.OpSlt, one, two, 1},
		{witness.OpSgt, one, two, 0},
		{witness.OpSlt, two, one, 0},
		{witness.OpSlt, one, one, 0},
		{witness.OpSgt, one, one, 0},
		{witness.OpSlt, minusOne, one, 1},
		{witness.OpSlt, one, minusOne, 0},
	}
	for _, tc := range cases {
		blk := comparisonBlock(t, tc.op, tc.x, tc.y)
		// the write event carries the result word
		require.Equal(t, tc.want, comparisonResult(t, blk).Uint64(), "op=%s x=%s y=%s", tc.op, tc.x, tc.y)
		solveComparison(t, tc.op, tc.x, tc.y)
	}
}

func TestSignedComparatorTieOnHighHalf(t *testing.T) {
	// equal high halves, ordering decided by the low half
	aBytes := append(repeatByte(0x01, 16), repeatByte(0x02, 16)...) // big-endian
	bBytes := append(repeatByte(0x01, 16), repeatByte(0x03, 16)...)
	a := new(uint256.Int).SetBytes(aBytes)
	b := new(uint256.Int).SetBytes(bBytes)

	blk := comparisonBlock(t, witness.OpSlt, a, b)
	require.Equal(t, uint64(1), comparisonResult(t, blk).Uint64())
	solveComparison(t, witness.OpSlt, a, b)
	solveComparison(t, witness.OpSgt, a, b)
	solveComparison(t, witness.OpSlt, b, a)
}

func TestSignedComparatorNegativeTieOnHighHalf(t *testing.T) {
	aBytes := append(repeatByte(0x81, 16), repeatByte(0x02, 16)...)
	bBytes := append(repeatByte(0x81, 16), repeatByte(0x03, 16)...)
	a := new(uint256.Int).SetBytes(aBytes)
	b := new(uint256.Int).SetBytes(bBytes)
	solveComparison(t, witness.OpSlt, a, b)
	solveComparison(t, witness.OpSgt, a, b)
}

func repeatByte(b byte, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestSignedComparatorMatchesReference(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("SLT(x,y) == (x < y) signed; SGT(x,y) == SLT(y,x)", prop.ForAll(
		func(x, y *uint256.Int) bool {
			sltBlk := comparisonBlock(t, witness.OpSlt, x, y)
			sgtBlk := comparisonBlock(t, witness.OpSgt, x, y)
			sltSwapBlk := comparisonBlock(t, witness.OpSlt, y, x)

			want := uint64(0)
			if signedRef(x).Cmp(signedRef(y)) < 0 {
				want = 1
			}
			slt := comparisonResult(t, sltBlk).Uint64()
			sgt := comparisonResult(t, sgtBlk).Uint64()
			sltSwap := comparisonResult(t, sltSwapBlk).Uint64()
			return slt == want && sgt == sltSwap
		},
		genWord(), genWord(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSignedComparatorRandomSolves(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10

	properties := gopter.NewProperties(parameters)
	properties.Property("assignment satisfies the configured constraints", prop.ForAll(
		func(x, y *uint256.Int) bool {
			blk := comparisonBlock(t, witness.OpSlt, x, y)
			assignment, err := Assign(testBucket(t, blk.GasUsed), testCapacity, blk)
			if err != nil {
				return false
			}
			return test.IsSolved(NewCircuit(testCapacity), assignment, ecc.BN254.ScalarField()) == nil
		},
		genWord(), genWord(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSignedComparatorStackEffect(t *testing.T) {
	// the declared transition is rw +3, pc +1, sp +1
	declared := signedComparatorGadget{}.Transition()
	assert.Equal(t, Delta(3), declared.RwCounter)
	assert.Equal(t, Delta(1), declared.ProgramCounter)
	assert.Equal(t, Delta(1), declared.StackPointer)
	assert.Equal(t, Same(), declared.CallID)

	// and the assigned witness exhibits exactly those deltas
	blk := comparisonBlock(t, witness.OpSlt, uint256.NewInt(3), uint256.NewInt(4))
	var scmp, next *witness.ExecStep
	for i := range blk.Steps {
		if blk.Steps[i].State == witness.StateSignedComparator {
			scmp, next = &blk.Steps[i], &blk.Steps[i+1]
			break
		}
	}
	require.NotNil(t, scmp)
	assert.Equal(t, scmp.RwCounter+3, next.RwCounter)
	assert.Equal(t, scmp.ProgramCounter+1, next.ProgramCounter)
	assert.Equal(t, scmp.StackPointer+1, next.StackPointer)
	assert.Equal(t, scmp.CallID, next.CallID)
	require.NoError(t, auditTransitions(blk.Steps))
}

func TestSignedComparatorTamperedResultFails(t *testing.T) {
	blk := comparisonBlock(t, witness.OpSlt, uint256.NewInt(1), uint256.NewInt(2))
	// flip the recorded result word of the stack write
	comparisonResult(t, blk).Clear()

	assignment, err := Assign(testBucket(t, blk.GasUsed), testCapacity, blk)
	require.NoError(t, err)
	err = test.IsSolved(NewCircuit(testCapacity), assignment, ecc.BN254.ScalarField())
	require.Error(t, err)
}
