package witness

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTx(gas uint64) Transaction {
	return Transaction{
		Gas:      gas,
		Value:    uint256.NewInt(0),
		GasPrice: uint256.NewInt(1),
	}
}

func TestTraceBuilderSingleComparison(t *testing.T) {
	tb := NewTraceBuilder(99)
	tb.StartTx(testTx(21_000))
	res := tb.SignedComparison(OpSlt, uint256.NewInt(1), uint256.NewInt(2))
	assert.Equal(t, uint64(1), res.Uint64())

	blk, err := tb.Finish(128)
	require.NoError(t, err)

	// BeginTx, two operand pushes, the comparison, EndTx, EndBlock
	require.Len(t, blk.Steps, 6)
	require.Len(t, blk.Rws, 5)
	assert.Equal(t, uint64(99), blk.ChainID)
	assert.Equal(t, uint64(21_000), blk.GasUsed)
	assert.Equal(t, uint64(128), blk.BytecodeSize)
	assert.NotNil(t, blk.Randomness)
	assert.NotZero(t, blk.Randomness.Sign())

	begin, pushY, pushX := blk.Steps[0], blk.Steps[1], blk.Steps[2]
	scmp, endTx, endBlock := blk.Steps[3], blk.Steps[4], blk.Steps[5]

	assert.Equal(t, StateBeginTx, begin.State)
	assert.Equal(t, uint64(0), begin.ProgramCounter)
	assert.Equal(t, uint64(StackDepth), begin.StackPointer)

	// each push writes one slot below the previous top: rw +1, pc +33, sp -1
	assert.Equal(t, StatePush, pushY.State)
	assert.Equal(t, OpPush32, pushY.Opcode)
	assert.Equal(t, uint64(StackDepth), pushY.StackPointer)
	assert.Equal(t, StatePush, pushX.State)
	assert.Equal(t, pushY.RwCounter+1, pushX.RwCounter)
	assert.Equal(t, pushY.ProgramCounter+33, pushX.ProgramCounter)
	assert.Equal(t, pushY.StackPointer-1, pushX.StackPointer)
	assert.Equal(t, uint64(StackDepth-1), blk.Rws[0].Key)
	assert.Equal(t, uint64(StackDepth-2), blk.Rws[1].Key)

	assert.Equal(t, StateSignedComparator, scmp.State)
	assert.Equal(t, OpSlt, scmp.Opcode)
	assert.Equal(t, uint64(StackDepth-2), scmp.StackPointer)
	assert.Equal(t, []int{2, 3, 4}, scmp.RwIndices)

	// the comparator's declared transition: rw +3, pc +1, sp +1
	assert.Equal(t, StateEndTx, endTx.State)
	assert.Equal(t, scmp.RwCounter+3, endTx.RwCounter)
	assert.Equal(t, scmp.ProgramCounter+1, endTx.ProgramCounter)
	assert.Equal(t, scmp.StackPointer+1, endTx.StackPointer)
	assert.Equal(t, scmp.CallID, endTx.CallID)

	assert.Equal(t, StateEndBlock, endBlock.State)
	assert.Equal(t, endTx.RwCounter, endBlock.RwCounter)
}

func TestTraceBuilderStackKeysPlausible(t *testing.T) {
	tb := NewTraceBuilder(1)
	tb.StartTx(testTx(21_000))
	tb.SignedComparison(OpSlt, uint256.NewInt(1), uint256.NewInt(2))
	tb.SignedComparison(OpSgt, uint256.NewInt(3), uint256.NewInt(4))
	blk, err := tb.Finish(0)
	require.NoError(t, err)

	// every key addresses a real slot, and every read follows a write
	written := map[uint64]bool{}
	for _, rw := range blk.Rws {
		require.Less(t, rw.Key, uint64(StackDepth))
		if rw.IsWrite {
			written[rw.Key] = true
		} else {
			assert.True(t, written[rw.Key], "slot %d read before any write", rw.Key)
		}
	}
}

func TestTraceBuilderRwCountersMonotonic(t *testing.T) {
	tb := NewTraceBuilder(1)
	tb.StartTx(testTx(40_000))
	tb.SignedComparison(OpSlt, uint256.NewInt(7), uint256.NewInt(7))
	tb.SignedComparison(OpSgt, uint256.NewInt(3), uint256.NewInt(4))
	tb.StartTx(testTx(30_000))
	tb.SignedComparison(OpSgt, uint256.NewInt(5), uint256.NewInt(4))

	blk, err := tb.Finish(0)
	require.NoError(t, err)

	for i := 1; i < len(blk.Rws); i++ {
		assert.Less(t, blk.Rws[i-1].Counter, blk.Rws[i].Counter)
	}
	for i := 1; i < len(blk.Steps); i++ {
		assert.LessOrEqual(t, blk.Steps[i-1].RwCounter, blk.Steps[i].RwCounter)
	}
	assert.Equal(t, uint64(70_000), blk.GasUsed)
	assert.Equal(t, uint64(2), blk.Steps[len(blk.Steps)-1].CallID)
}

func TestTraceBuilderSignedResults(t *testing.T) {
	minusOne := new(uint256.Int).SetAllOne()
	minusTwo := new(uint256.Int).Sub(minusOne, uint256.NewInt(1))

	tb := NewTraceBuilder(1)
	tb.StartTx(testTx(21_000))
	assert.Equal(t, uint64(1), tb.SignedComparison(OpSlt, minusTwo, minusOne).Uint64())
	assert.Equal(t, uint64(0), tb.SignedComparison(OpSgt, minusTwo, minusOne).Uint64())
	assert.Equal(t, uint64(0), tb.SignedComparison(OpSlt, minusOne, minusTwo).Uint64())
}

func TestTraceBuilderRejectsBadOpcode(t *testing.T) {
	tb := NewTraceBuilder(1)
	tb.StartTx(testTx(21_000))
	assert.Panics(t, func() {
		tb.SignedComparison(OpStop, uint256.NewInt(1), uint256.NewInt(2))
	})
}

func TestTraceBuilderPushBeforeStartTxPanics(t *testing.T) {
	tb := NewTraceBuilder(1)
	assert.Panics(t, func() { tb.Push(uint256.NewInt(1)) })
}

func TestCalldataSize(t *testing.T) {
	tb := NewTraceBuilder(1)
	tx := testTx(21_000)
	tx.CallData = []byte{1, 2, 3, 4}
	tb.StartTx(tx)
	blk, err := tb.Finish(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), blk.CalldataSize())
}
