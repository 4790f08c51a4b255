// Package element implements the ring-element surface: a thin wrapper around
// lattigo's RNS/NTT polynomial arithmetic that the multiparty core builds on.
// The core never manipulates raw ring.Poly coefficients directly; every
// arithmetic step goes through the Element/Params types defined here.
package element

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/ring"

	"github.com/latticefold/mhe/mherr"
)

// Mode selects the distribution a party's secret share is sampled from.
type Mode int

const (
	// RLWE samples secret shares from a discrete Gaussian.
	RLWE Mode = iota
	// Optimized samples secret shares from a ternary distribution.
	Optimized
	// Sparse samples secret shares from a ternary distribution with fixed
	// Hamming weight.
	Sparse
)

// SparseHammingWeight is the Hamming weight used for Mode == Sparse, matching
// OpenFHE's base-multiparty.cpp constant.
const SparseHammingWeight = 64

func (m Mode) String() string {
	switch m {
	case RLWE:
		return "RLWE"
	case Optimized:
		return "OPTIMIZED"
	case Sparse:
		return "SPARSE"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Params bundles the ring parameters shared by all parties in a threshold
// deployment: the RLWE ring parameters plus the multiparty-specific
// scalars (key-distribution mode, noise scale, flooding standard deviation)
// that spec.md §3 requires and rlwe.Parameters alone doesn't carry.
type Params struct {
	rlwe.Parameters
	mode       Mode
	sigma      float64
	sigmaMP    float64
	noiseScale uint64
}

// NewParams builds a Params from an already-constructed rlwe.Parameters, the
// key-distribution mode, the ordinary noise standard deviation, the
// multiparty noise-flooding standard deviation, and the noise scale ns
// (either the plaintext modulus p, or 1, depending on the scheme).
func NewParams(rlweParams rlwe.Parameters, mode Mode, sigma, sigmaMP float64, noiseScale uint64) (Params, error) {
	switch mode {
	case RLWE, Optimized, Sparse:
	default:
		return Params{}, fmt.Errorf("%w: mode %v is not one of RLWE, OPTIMIZED, SPARSE", mherr.ErrInvalidParameter, mode)
	}
	if sigmaMP <= sigma {
		return Params{}, fmt.Errorf("%w: sigmaMP (%f) must exceed sigma (%f)", mherr.ErrInvalidParameter, sigmaMP, sigma)
	}
	if noiseScale == 0 {
		return Params{}, fmt.Errorf("%w: noiseScale must be non-zero", mherr.ErrInvalidParameter)
	}
	return Params{
		Parameters: rlweParams,
		mode:       mode,
		sigma:      sigma,
		sigmaMP:    sigmaMP,
		noiseScale: noiseScale,
	}, nil
}

// Mode returns the key-distribution mode.
func (p Params) Mode() Mode { return p.mode }

// Sigma returns the ordinary noise standard deviation σ.
func (p Params) Sigma() float64 { return p.sigma }

// SigmaMP returns the multiparty noise-flooding standard deviation σ_MP.
func (p Params) SigmaMP() float64 { return p.sigmaMP }

// NoiseScale returns ns, the plaintext scaling factor applied to noise terms.
func (p Params) NoiseScale() uint64 { return p.noiseScale }

// RingQ returns the ciphertext-modulus ring.
func (p Params) RingQ() *ring.Ring { return p.Parameters.RingQ() }

// N returns the ring dimension.
func (p Params) N() int { return p.Parameters.N() }

// M returns the cyclotomic order (2N for a power-of-two ring).
func (p Params) M() uint64 { return uint64(2 * p.N()) }
