package mhe

import (
	"fmt"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// sampleSecret draws a fresh SecretShare from the distribution
// params.Mode() dictates: discrete-Gaussian for RLWE, ternary for
// Optimized, sparse-ternary (Hamming weight element.SparseHammingWeight)
// for Sparse.
func sampleSecret(params element.Params) (SecretShare, error) {
	var s element.Element
	var err error
	switch params.Mode() {
	case element.RLWE:
		s, err = element.SampleGaussian(params.RingQ(), params.Sigma())
	case element.Optimized:
		s, err = element.SampleTernary(params.RingQ(), 0, 2.0/3.0)
	case element.Sparse:
		s, err = element.SampleTernary(params.RingQ(), element.SparseHammingWeight, 0)
	default:
		return SecretShare{}, fmt.Errorf("%w: mode %v is not one of RLWE, OPTIMIZED, SPARSE", mherr.ErrInvalidParameter, params.Mode())
	}
	if err != nil {
		return SecretShare{}, err
	}
	return SecretShare{Value: s.ToEvaluation()}, nil
}

// KeyGenLead produces the first party's secret share and public key
// (b_1, a): a is drawn fresh and uniform, e is fresh discrete-Gaussian
// noise, and b_1 = ns·e − a·s_1. Every subsequent party's KeyGenJoin
// reuses this a.
func KeyGenLead(params element.Params) (SecretShare, PublicKey, error) {
	s, err := sampleSecret(params)
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}

	a, err := element.SampleUniform(params.RingQ())
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}
	a = a.ToEvaluation()

	e, err := element.SampleGaussian(params.RingQ(), params.Sigma())
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}
	e = e.ToEvaluation()

	b, err := computeB(params, a, e, s.Value, nil)
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}

	return s, NewPublicKey(b, a), nil
}

// KeyGenJoin produces party i's secret share and public key, reusing
// pkPrev.A as the shared randomness. When fresh is true the returned
// public key stands alone (b = ns·e − a·s_i, pkPrev.B is not read); when
// fresh is false the returned public key extends the running joint key
// (b = ns·e − a·s_i + pkPrev.B), making it the joint public key through
// party i inclusive.
func KeyGenJoin(params element.Params, pkPrev PublicKey, fresh bool) (SecretShare, PublicKey, error) {
	s, err := sampleSecret(params)
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}

	e, err := element.SampleGaussian(params.RingQ(), params.Sigma())
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}
	e = e.ToEvaluation()

	var prevB *element.Element
	if !fresh {
		b := pkPrev.B
		prevB = &b
	}

	b, err := computeB(params, pkPrev.A, e, s.Value, prevB)
	if err != nil {
		return SecretShare{}, PublicKey{}, err
	}

	return s, NewPublicKey(b, pkPrev.A), nil
}

// computeB evaluates ns·e − a·s, adding prevB when non-nil (the
// running-chain case, fresh == false).
func computeB(params element.Params, a, e, s element.Element, prevB *element.Element) (element.Element, error) {
	as, err := a.MulCoeffs(s)
	if err != nil {
		return element.Element{}, err
	}
	scaledE := e
	if params.NoiseScale() != 1 {
		scaledE = e.MulScalarBigint(bigFromUint64(params.NoiseScale()))
	}
	b, err := scaledE.Sub(as)
	if err != nil {
		return element.Element{}, err
	}
	if prevB != nil {
		b, err = b.Add(*prevB)
		if err != nil {
			return element.Element{}, err
		}
	}
	return b, nil
}

// JointSecretFromShares sums an already-known vector of per-party
// secret shares into the joint secret directly, without running the
// interactive lead/join chain. This mirrors OpenFHE's
// MultipartyKeyGen(cc, privateKeyVec, makeSparse) overload for
// deployments where a single simulated environment already holds every
// party's share (tests, or a non-interactive trusted-dealer variant of
// the protocol) — it does not change the chain protocol itself.
func JointSecretFromShares(shares []SecretShare) (SecretShare, error) {
	if len(shares) == 0 {
		return SecretShare{}, fmt.Errorf("%w: JointSecretFromShares requires at least one share", mherr.ErrInvalidParameter)
	}
	joint := shares[0].Value
	for _, s := range shares[1:] {
		var err error
		joint, err = joint.Add(s.Value)
		if err != nil {
			return SecretShare{}, err
		}
	}
	return SecretShare{Value: joint}, nil
}
