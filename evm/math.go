package evm

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
)

// LtGadget produces the boolean a < b for two unsigned values of at most n
// bytes via a borrow-chain identity: a − b = diff − lt·2^(8n), with diff
// range-checked to n bytes and lt boolean. Proof cost is constant in the
// numeric values.
type LtGadget struct {
	Lt   frontend.Variable
	Diff []frontend.Variable // n little-endian byte cells
}

func newLtGadget(n int) LtGadget {
	g := LtGadget{Lt: 0, Diff: make([]frontend.Variable, n)}
	for i := range g.Diff {
		g.Diff[i] = 0
	}
	return g
}

// range2Pow8 returns 2^(8n).
func range2Pow8(n int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(8*n))
}

// Configure declares the borrow-chain constraints and returns the lt cell.
func (g *LtGadget) Configure(cb *Builder, a, b frontend.Variable) frontend.Variable {
	cb.RequireBoolean(g.Lt)
	for i := range g.Diff {
		cb.RangeCheckByte(g.Diff[i])
	}
	diff := cb.FromBytes(g.Diff)
	lhs := cb.api.Sub(a, b)
	rhs := cb.api.Sub(diff, cb.api.Mul(g.Lt, range2Pow8(len(g.Diff))))
	cb.RequireEqual(lhs, rhs)
	return g.Lt
}

// Assign computes lt and the borrow bytes for concrete values a, b in
// [0, 2^(8n)) and returns the assigned diff bytes.
func (g *LtGadget) Assign(a, b *big.Int) []byte {
	n := len(g.Diff)
	diff := new(big.Int).Sub(a, b)
	if a.Cmp(b) < 0 {
		g.Lt = 1
		diff.Add(diff, range2Pow8(n))
	} else {
		g.Lt = 0
	}
	le := make([]byte, n)
	diff.FillBytes(le) // big-endian
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		le[i], le[j] = le[j], le[i]
	}
	for i := range g.Diff {
		g.Diff[i] = uint64(le[i])
	}
	return le
}

// IsZeroGadget produces the boolean x == 0 with the standard invertibility
// trick: the inverse cell is witnessed only when x ≠ 0, and
// isZero = 1 − x·inv with x·isZero = 0.
type IsZeroGadget struct {
	Inverse frontend.Variable
}

func newIsZeroGadget() IsZeroGadget {
	return IsZeroGadget{Inverse: 0}
}

// Configure declares the constraints and returns the isZero expression.
func (g *IsZeroGadget) Configure(cb *Builder, x frontend.Variable) frontend.Variable {
	isZero := cb.api.Sub(1, cb.api.Mul(x, g.Inverse))
	cb.RequireZero(cb.api.Mul(x, isZero))
	return isZero
}

// Assign witnesses the inverse for the concrete value x.
func (g *IsZeroGadget) Assign(x *fr.Element) {
	if x.IsZero() {
		g.Inverse = 0
		return
	}
	var inv fr.Element
	inv.Inverse(x)
	g.Inverse = inv.BigInt(new(big.Int))
}

// ComparisonGadget produces the pair (lt, eq) for two unsigned values of at
// most n bytes, reusing the borrow chain: eq is derived from the borrow bytes
// summing to zero, so no second decomposition is needed.
type ComparisonGadget struct {
	Lt LtGadget
	Eq IsZeroGadget
}

func newComparisonGadget(n int) ComparisonGadget {
	return ComparisonGadget{Lt: newLtGadget(n), Eq: newIsZeroGadget()}
}

// Configure declares the constraints and returns the (lt, eq) expressions.
func (g *ComparisonGadget) Configure(cb *Builder, a, b frontend.Variable) (lt, eq frontend.Variable) {
	lt = g.Lt.Configure(cb, a, b)
	sum := frontend.Variable(0)
	for i := range g.Lt.Diff {
		sum = cb.api.Add(sum, g.Lt.Diff[i])
	}
	eq = g.Eq.Configure(cb, sum)
	return lt, eq
}

// Assign computes the comparison witness for concrete values a, b.
func (g *ComparisonGadget) Assign(a, b *big.Int) {
	diff := g.Lt.Assign(a, b)
	var sum uint64
	for _, d := range diff {
		sum += uint64(d)
	}
	var s fr.Element
	s.SetUint64(sum)
	g.Eq.Assign(&s)
}

// IsEqualGadget produces the boolean a == b between two field elements.
type IsEqualGadget struct {
	IsZero IsZeroGadget
}

func newIsEqualGadget() IsEqualGadget {
	return IsEqualGadget{IsZero: newIsZeroGadget()}
}

// Configure declares the constraints and returns the equality expression.
func (g *IsEqualGadget) Configure(cb *Builder, a, b frontend.Variable) frontend.Variable {
	return g.IsZero.Configure(cb, cb.api.Sub(a, b))
}

// Assign witnesses the equality check for concrete values a, b.
func (g *IsEqualGadget) Assign(a, b uint64) {
	var fa, fb fr.Element
	fa.SetUint64(a)
	fb.SetUint64(b)
	fa.Sub(&fa, &fb)
	g.IsZero.Assign(&fa)
}
