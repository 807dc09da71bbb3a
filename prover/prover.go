// Package prover runs the end-to-end proof pipeline: parameter selection,
// witness retrieval, circuit instantiation, key derivation and proof
// creation.
//
// One Prove call is one logical unit of work. Witness retrieval is the only
// suspension point; everything after it is CPU-bound and runs to completion
// without cancellation. Callers wanting timeouts must abandon the pipeline
// and discard its state.
package prover

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/rs/zerolog"

	"github.com/consensys/zkevm-prover/evm"
	"github.com/consensys/zkevm-prover/logger"
	"github.com/consensys/zkevm-prover/params"
	"github.com/consensys/zkevm-prover/rpc"
	"github.com/consensys/zkevm-prover/witness"
)

// Request asks for a proof of one block. GasEstimate selects the parameter
// bucket before the witness is fetched; the fetched block is then validated
// against the bucket. Options may override the derived table size.
type Request struct {
	BlockNumber uint64
	GasEstimate uint64
	Options     rpc.ProofRequestOptions
}

// Prover generates EVM proofs. It is safe for concurrent use: the witness
// source is called per request, the SRS is read-only, and key derivation is
// memoized per circuit shape with at-most-one concurrent builder.
type Prover struct {
	witness witness.Provider
	srs     SRSSource
	keys    *keyCache
	log     zerolog.Logger
}

// New returns a Prover drawing witnesses from src and universal parameters
// from srs.
func New(src witness.Provider, srs SRSSource) *Prover {
	return &Prover{
		witness: src,
		srs:     srs,
		keys:    newKeyCache(),
		log:     logger.Logger().With().Str("component", "prover").Logger(),
	}
}

// Prove runs the pipeline for one block and packages the proof bytes with the
// elapsed wall-clock time. Two honest runs over the same block may yield
// different valid proof bytes: blinding comes from a cryptographically secure
// randomness source, never a fixed seed.
func (p *Prover) Prove(ctx context.Context, req Request) (*rpc.Proofs, error) {
	start := time.Now()

	bucket, err := params.Select(req.GasEstimate)
	if err != nil {
		return nil, stageErr(StageParams, err)
	}
	k := bucket.MinK
	if req.Options.K != nil {
		k = *req.Options.K
		if k > params.MaxK {
			return nil, stageErr(StageParams, &params.CapacityError{Resource: "k", Used: uint64(k), Limit: params.MaxK})
		}
	}
	log := p.log.With().Uint64("block", req.BlockNumber).Uint32("k", k).Logger()
	log.Info().Uint64("gasEstimate", req.GasEstimate).Uint64("bucket", bucket.BlockGasLimit).Msg("bucket selected")

	blk, err := p.witness.BlockWitness(ctx, req.BlockNumber)
	if err != nil {
		return nil, stageErr(StageWitness, fmt.Errorf("retrieve block witness: %w", err))
	}

	capacity := evm.StepCapacity(k)
	assignment, err := evm.Assign(bucket, capacity, blk)
	if err != nil {
		return nil, stageErr(StageBuild, err)
	}
	log.Debug().Int("steps", len(blk.Steps)).Int("capacity", capacity).Msg("circuit assigned")

	artifacts, err := p.artifacts(bucket, k)
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, stageErr(StageProve, fmt.Errorf("parse assignment: %w", err))
	}
	proof, err := plonk.Prove(artifacts.ccs, artifacts.pk, w)
	if err != nil {
		return nil, stageErr(StageProve, err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, stageErr(StageProve, fmt.Errorf("serialize proof: %w", err))
	}

	elapsed := time.Since(start)
	log.Info().Dur("took", elapsed).Int("proofBytes", buf.Len()).Msg("proof created")

	return &rpc.Proofs{
		StateProof: []byte{},
		EvmProof:   buf.Bytes(),
		Duration:   uint64(elapsed.Milliseconds()),
	}, nil
}

// Verify checks proof bytes produced by Prove against the verifying key of
// the given bucket and table size.
func (p *Prover) Verify(proofBytes []byte, bucket params.CircuitParameters, k uint32) error {
	artifacts, err := p.artifacts(bucket, k)
	if err != nil {
		return err
	}
	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("deserialize proof: %w", err)
	}
	// the proof carries no external public inputs
	public, err := frontend.NewWitness(evm.NewCircuit(evm.StepCapacity(k)), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}
	return plonk.Verify(proof, artifacts.vk, public)
}

// artifacts returns the proving artifacts for the shape, deriving and caching
// them on first use. Derivation is deterministic given the universal
// parameters and the circuit shape.
func (p *Prover) artifacts(bucket params.CircuitParameters, k uint32) (*provingArtifacts, error) {
	shape := circuitShape{params: bucket, k: k}
	art, err := p.keys.get(shape, func() (*provingArtifacts, error) {
		start := time.Now()
		ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, evm.NewCircuit(evm.StepCapacity(k)))
		if err != nil {
			return nil, fmt.Errorf("compile circuit: %w", err)
		}
		srs, srsLagrange, err := p.srs.SRS(ccs)
		if err != nil {
			return nil, fmt.Errorf("universal parameters: %w", err)
		}
		pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
		if err != nil {
			return nil, fmt.Errorf("key generation: %w", err)
		}
		p.log.Info().Stringer("shape", shape).Dur("took", time.Since(start)).Msg("proving key derived")
		return &provingArtifacts{ccs: ccs, pk: pk, vk: vk}, nil
	})
	if err != nil {
		return nil, stageErr(StageKeygen, err)
	}
	return art, nil
}
