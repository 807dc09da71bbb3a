package evm

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func genWord() gopter.Gen {
	return gen.SliceOfN(WordBytes, gen.UInt8()).Map(func(b []uint8) *uint256.Int {
		return new(uint256.Int).SetBytes(b)
	})
}

func TestWordRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000

	properties := gopter.NewProperties(parameters)
	properties.Property("reconstruct(decompose(v)) == v", prop.ForAll(
		func(v *uint256.Int) bool {
			le := wordLEBytes(v)
			return fromLEBytes(le[:]).Cmp(v.ToBig()) == 0
		},
		genWord(),
	))
	properties.Property("halves recombine to the full word", prop.ForAll(
		func(v *uint256.Int) bool {
			le := wordLEBytes(v)
			lo := fromLEBytes(le[0:16])
			hi := fromLEBytes(le[16:32])
			full := new(big.Int).Lsh(hi, 128)
			full.Add(full, lo)
			return full.Cmp(v.ToBig()) == 0
		},
		genWord(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestWordAssignLittleEndian(t *testing.T) {
	v := uint256.NewInt(0x0201) // bytes 0x01, 0x02 little-endian
	var w Word
	w.Assign(v)
	assert.Equal(t, uint64(0x01), w[0])
	assert.Equal(t, uint64(0x02), w[1])
	for i := 2; i < WordBytes; i++ {
		assert.Equal(t, uint64(0), w[i])
	}
}

func TestRlcValueMatchesHorner(t *testing.T) {
	var r fr.Element
	r.SetUint64(7)

	v := uint256.NewInt(0)
	v.SetBytes([]byte{0x03, 0x02, 0x01}) // big-endian: le bytes 0x01,0x02,0x03

	// 1 + 2*7 + 3*49 = 162
	got := rlcValue(v, &r)
	assert.Equal(t, int64(162), got.Int64())
}
