package prover

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"golang.org/x/sync/singleflight"

	"github.com/consensys/zkevm-prover/params"
)

// circuitShape is the cache key for proving artifacts: the full parameter
// bucket plus the effective table size. Keys derived for one shape are never
// valid for another.
type circuitShape struct {
	params params.CircuitParameters
	k      uint32
}

func (s circuitShape) String() string {
	return fmt.Sprintf("gas=%d/txs=%d/calldata=%d/bytecode=%d/k=%d",
		s.params.BlockGasLimit, s.params.MaxTxs, s.params.MaxCalldata, s.params.MaxBytecode, s.k)
}

// provingArtifacts bundles a compiled constraint system with the keys derived
// from it. Immutable once built.
type provingArtifacts struct {
	ccs constraint.ConstraintSystem
	pk  plonk.ProvingKey
	vk  plonk.VerifyingKey
}

// keyCache memoizes proving artifacts per circuit shape. Key derivation is
// expensive and non-preemptible, so concurrent misses for the same shape are
// collapsed to a single builder; losers wait for the winner's result.
type keyCache struct {
	mu      sync.RWMutex
	entries map[circuitShape]*provingArtifacts
	group   singleflight.Group
}

func newKeyCache() *keyCache {
	return &keyCache{entries: make(map[circuitShape]*provingArtifacts)}
}

func (c *keyCache) get(shape circuitShape, build func() (*provingArtifacts, error)) (*provingArtifacts, error) {
	c.mu.RLock()
	art, ok := c.entries[shape]
	c.mu.RUnlock()
	if ok {
		return art, nil
	}

	v, err, _ := c.group.Do(shape.String(), func() (interface{}, error) {
		c.mu.RLock()
		art, ok := c.entries[shape]
		c.mu.RUnlock()
		if ok {
			return art, nil
		}
		art, err := build()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[shape] = art
		c.mu.Unlock()
		return art, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*provingArtifacts), nil
}
