package mhe

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// parallelThreshold is the index-set size at which
// MultiEvalAutomorphismKeyGen switches from serial to sync.WaitGroup
// fan-out. Below it, goroutine setup overhead outweighs the per-index
// work; this is a performance break-even point, not a correctness
// constraint.
const parallelThreshold = 4

// MultiEvalAutomorphismKeyGen derives, for each automorphism index k in
// indices, this party's contribution to the key that lets φ_k be
// evaluated homomorphically after aggregation across all parties. For
// each k: computes inv = k^-1 mod M, permutes sI by inv, and key-switches
// from the permuted secret back to sI against templateMap[k].
//
// Independent across k; parallelized with a worker per index when
// len(indices) >= parallelThreshold, matching examples/drlwe's own
// sync.WaitGroup party-fan-out style. Fails with out-of-range if
// len(indices) > N-1.
func MultiEvalAutomorphismKeyGen(params element.Params, sI element.Element, templateMap EvalKeyMap, indices []uint64) (EvalKeyMap, error) {
	if len(indices) > params.N()-1 {
		return nil, fmt.Errorf("%w: %d indices exceeds N-1 (%d)", mherr.ErrOutOfRange, len(indices), params.N()-1)
	}

	out := make(EvalKeyMap, len(indices))
	if len(indices) == 0 {
		return out, nil
	}

	type result struct {
		idx uint64
		ek  EvalKey
		err error
	}

	compute := func(k uint64) result {
		tmpl, ok := templateMap[k]
		if !ok {
			return result{idx: k, err: fmt.Errorf("%w: no key-switch template for index %d", mherr.ErrPreconditionFailed, k)}
		}
		inv, err := invertMod(k, params.M())
		if err != nil {
			return result{idx: k, err: err}
		}
		table := element.PrecomputeAutoMap(params.RingQ(), inv)
		sPermuted, err := sI.AutomorphismTransform(table)
		if err != nil {
			return result{idx: k, err: err}
		}
		ek, err := MultiKeySwitchGen(params, sPermuted, sI, tmpl)
		return result{idx: k, ek: ek, err: err}
	}

	if len(indices) < parallelThreshold {
		for _, k := range indices {
			r := compute(k)
			if r.err != nil {
				return nil, r.err
			}
			out[r.idx] = r.ek
		}
		return out, nil
	}

	results := make(chan result, len(indices))
	var wg sync.WaitGroup
	for _, k := range indices {
		wg.Add(1)
		go func(k uint64) {
			defer wg.Done()
			results <- compute(k)
		}(k)
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out[r.idx] = r.ek
	}
	return out, nil
}

// invertMod computes k^-1 mod m via the extended Euclidean algorithm.
// k not being invertible means it isn't coprime to m, which spec.md
// §4.1/§7 classifies as out-of-range, not invalid-parameter.
func invertMod(k, m uint64) (uint64, error) {
	g, x, _ := extGCD(int64(k), int64(m))
	if g != 1 {
		return 0, fmt.Errorf("%w: %d is not invertible mod %d", mherr.ErrOutOfRange, k, m)
	}
	inv := x % int64(m)
	if inv < 0 {
		inv += int64(m)
	}
	return uint64(inv), nil
}

func extGCD(a, b int64) (g, x, y int64) {
	if b == 0 {
		return a, 1, 0
	}
	g, x1, y1 := extGCD(b, a%b)
	return g, y1, x1 - (a/b)*y1
}

// rotationIndexToAutomorphism converts a signed slot-rotation offset to
// an automorphism index via the scheme-specific mapping SchemeLink
// provides (2N-complex for CKKS-style schemes, 2N for BFV/BGV-style).
func rotationIndexToAutomorphism(link SchemeLink, m uint64, rotation int) (uint64, error) {
	if rotation == 0 {
		return 0, fmt.Errorf("%w: rotation index must be non-zero", mherr.ErrInvalidParameter)
	}
	return link.RotationIndexToAutomorphism(m, rotation)
}

// MultiEvalAtIndexKeyGen converts each signed rotation offset in
// signedIndices to an automorphism index using link's scheme-specific
// mapping, then delegates to MultiEvalAutomorphismKeyGen.
func MultiEvalAtIndexKeyGen(params element.Params, link SchemeLink, sI element.Element, templateMap EvalKeyMap, signedIndices []int) (EvalKeyMap, error) {
	indices := make([]uint64, len(signedIndices))
	for i, r := range signedIndices {
		idx, err := rotationIndexToAutomorphism(link, params.M(), r)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return MultiEvalAutomorphismKeyGen(params, sI, templateMap, indices)
}

// MultiEvalSumKeyGen enumerates the automorphism indices 5^(2^j) mod M
// for j = 0 .. ceil(log2(batchSize))-1 — the standard power-of-five
// generator of the cyclic subgroup used for baby-step/giant-step inner
// sums — then delegates to MultiEvalAutomorphismKeyGen.
func MultiEvalSumKeyGen(params element.Params, sI element.Element, templateMap EvalKeyMap, batchSize int) (EvalKeyMap, error) {
	indices, err := sumKeyIndices(batchSize, params.M())
	if err != nil {
		return nil, err
	}
	return MultiEvalAutomorphismKeyGen(params, sI, templateMap, indices)
}

// SumKeyIndices exposes the automorphism index set MultiEvalSumKeyGen
// enumerates for batchSize, so a caller can build the per-index
// key-switch templates every party's MultiEvalSumKeyGen call needs
// before any party has generated a share.
func SumKeyIndices(params element.Params, batchSize int) ([]uint64, error) {
	return sumKeyIndices(batchSize, params.M())
}

// InvertMod exposes the modular inverse ApplyAutomorphismKey and
// MultiEvalAutomorphismKeyGen compute internally, for callers that
// need to independently replay the automorphism a given map key
// realizes (see mhe/apply_test.go for the pattern).
func InvertMod(k, m uint64) (uint64, error) {
	return invertMod(k, m)
}

// sumKeyIndices returns the automorphism indices 5^(2^j) mod m for
// j = 0 .. ceil(log2(batchSize))-1, in doubling order. Shared between
// MultiEvalSumKeyGen (which needs the index set to request keys for)
// and ApplyEvalSumKey (which needs the same indices, in the same
// order, to replay the rotate-and-add doubling steps against a
// ciphertext).
func sumKeyIndices(batchSize int, m uint64) ([]uint64, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batchSize must be positive, got %d", mherr.ErrInvalidParameter, batchSize)
	}
	steps := bits.Len(uint(batchSize - 1))
	if batchSize == 1 {
		steps = 0
	}
	indices := make([]uint64, steps)
	gen := uint64(5)
	pow := uint64(1)
	for j := 0; j < steps; j++ {
		indices[j] = modExp(gen, pow, m)
		pow *= 2
	}
	return indices, nil
}

func modExp(base, exp, mod uint64) uint64 {
	result := uint64(1)
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = (result * base) % mod
		}
		exp >>= 1
		base = (base * base) % mod
	}
	return result
}
