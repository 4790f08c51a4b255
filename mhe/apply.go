package mhe

import (
	"fmt"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// ApplyAutomorphismKey homomorphically evaluates the automorphism a
// party's contribution to EvalKeyMap[k] was generated for, on
// ciphertext c. k is the same map key MultiEvalAutomorphismKeyGen /
// MultiEvalAtIndexKeyGen used, and the ek passed in is the
// party-aggregated key for that k (combined across parties by
// MultiAddEvalAutomorphismKeys / MultiAddEvalSumKeys).
//
// MultiEvalAutomorphismKeyGen permutes the secret by inv = k^-1 mod M
// before switching it back to s, so the ciphertext must be permuted
// by that same inv to land under the secret the key actually switches
// from — using k directly here would key-switch a ciphertext permuted
// by the wrong automorphism. Permuting by inv turns an encryption of m
// under s into an encryption of φ_inv(m) under φ_inv(s); switching
// back to s then yields an encryption of φ_inv(m) under s.
//
// The switch decomposes the permuted ciphertext's c1' into per-digit
// CRT terms and dot-products each against the matching key digit,
// mirroring lattigo's own GadgetProduct: c1' = Σ_i digit_i(c1')·g_i mod
// Q exactly (the gadget scalars g_i sum to 1 mod Q), and digit i of ek
// encrypts g_i·φ_inv(s) under s, so
//
//	c0Out = c0' + Σ_i digit_i(c1')·ek.BVec[i]
//	c1Out =       Σ_i digit_i(c1')·ek.AVec[i]
//
// satisfies c0Out + c1Out·s ≈ c0' + c1'·φ_inv(s) ≈ φ_inv(m), with the
// accumulated noise bounded by digit size (at most one RNS prime) times
// the key's own noise, not by the full ciphertext magnitude. Summing
// the key's digits before multiplying — instead of decomposing the
// ciphertext — would multiply the key's noise by the whole, ~uniform-
// mod-Q value of c1' and destroy the ciphertext.
func ApplyAutomorphismKey(params element.Params, c Ciphertext, k uint64, ek EvalKey) (Ciphertext, error) {
	if len(c.Value) != 2 {
		return Ciphertext{}, fmt.Errorf("%w: ApplyAutomorphismKey requires a 2-element ciphertext, got %d", mherr.ErrPreconditionFailed, len(c.Value))
	}
	if len(ek.BVec) == 0 || len(ek.BVec) != len(ek.AVec) {
		return Ciphertext{}, fmt.Errorf("%w: ApplyAutomorphismKey requires a non-empty, equal-length digit pair, got %d/%d", mherr.ErrPreconditionFailed, len(ek.BVec), len(ek.AVec))
	}

	inv, err := invertMod(k, params.M())
	if err != nil {
		return Ciphertext{}, err
	}
	table := element.PrecomputeAutoMap(params.RingQ(), inv)
	c0p, err := c.Value[0].AutomorphismTransform(table)
	if err != nil {
		return Ciphertext{}, err
	}
	c1p, err := c.Value[1].AutomorphismTransform(table)
	if err != nil {
		return Ciphertext{}, err
	}

	bAcc, aAcc, err := decomposeAndDot(c1p, ek)
	if err != nil {
		return Ciphertext{}, err
	}

	c0Out, err := c0p.Add(bAcc)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{Value: []element.Element{c0Out, aAcc}}, nil
}

// decomposeAndDot CRT-decomposes c1p (which must be in Evaluation
// format, like any ciphertext component) into ek's digit count and
// returns Σ_i digit_i(c1p)·ek.BVec[i] and Σ_i digit_i(c1p)·ek.AVec[i].
func decomposeAndDot(c1p element.Element, ek EvalKey) (element.Element, element.Element, error) {
	c1pCoeff := c1p.ToCoefficient()
	digits := c1pCoeff.Digits()
	if digits != len(ek.BVec) {
		return element.Element{}, element.Element{}, fmt.Errorf("%w: eval key has %d digits, ciphertext ring has %d", mherr.ErrPreconditionFailed, len(ek.BVec), digits)
	}

	var bAcc, aAcc element.Element
	for i := 0; i < digits; i++ {
		d, err := c1pCoeff.DigitDecompose(i)
		if err != nil {
			return element.Element{}, element.Element{}, err
		}
		dEval := d.ToEvaluation()

		if i == 0 {
			if bAcc, err = dEval.MulCoeffs(ek.BVec[i]); err != nil {
				return element.Element{}, element.Element{}, err
			}
			if aAcc, err = dEval.MulCoeffs(ek.AVec[i]); err != nil {
				return element.Element{}, element.Element{}, err
			}
			continue
		}
		if bAcc, err = dEval.MulCoeffsAndAdd(ek.BVec[i], bAcc); err != nil {
			return element.Element{}, element.Element{}, err
		}
		if aAcc, err = dEval.MulCoeffsAndAdd(ek.AVec[i], aAcc); err != nil {
			return element.Element{}, element.Element{}, err
		}
	}
	return bAcc, aAcc, nil
}

// ApplyEvalSumKey homomorphically computes the batchSize-wide cyclic
// inner sum of c's slots, using the aggregated EvalKeyMap
// MultiEvalSumKeyGen's indices key (combined across parties by
// MultiAddEvalSumKeys). It replays the same rotate-and-add doubling
// steps core/rlwe's Evaluator.InnerSum documents: after step j, each
// slot holds the sum of a window of 2^(j+1) of its original
// neighbors; after all steps every slot in a batchSize-wide group
// holds the group's total.
func ApplyEvalSumKey(params element.Params, c Ciphertext, ek EvalKeyMap, batchSize int) (Ciphertext, error) {
	indices, err := sumKeyIndices(batchSize, params.M())
	if err != nil {
		return Ciphertext{}, err
	}

	acc := c
	for _, idx := range indices {
		digitKey, ok := ek[idx]
		if !ok {
			return Ciphertext{}, fmt.Errorf("%w: no eval-sum key for automorphism index %d", mherr.ErrPreconditionFailed, idx)
		}
		rotated, err := ApplyAutomorphismKey(params, acc, idx, digitKey)
		if err != nil {
			return Ciphertext{}, err
		}
		c0, err := acc.Value[0].Add(rotated.Value[0])
		if err != nil {
			return Ciphertext{}, err
		}
		c1, err := acc.Value[1].Add(rotated.Value[1])
		if err != nil {
			return Ciphertext{}, err
		}
		acc = Ciphertext{Value: []element.Element{c0, c1}}
	}
	return acc, nil
}
