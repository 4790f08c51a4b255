package mhe

import (
	"fmt"
	"math/big"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// GadgetBasis is the per-RNS-prime CRT gadget decomposition used to
// digit-decompose a secret when generating a key-switching key. Digit i
// corresponds to the i-th prime q_i of the modulus chain Q = q_0*...*q_{L-1};
// its gadget scalar is the CRT basis element g_i = Q_i * (Q_i^-1 mod q_i)
// for Q_i = Q/q_i, so that Sum_i g_i mod Q reconstructs 1 mod Q while
// g_i mod q_j is zero for j != i and one for j == i — the same identity
// lattigo's key-switch generator documents as "(qiBarre*qiStar)%qi = 1,
// else 0". This skips the auxiliary P-modulus lattigo introduces purely
// as a noise-reduction optimization for hybrid key-switching; the data
// model here has no second modulus chain to place it in.
type GadgetBasis struct {
	scalars []*big.Int
}

// NewGadgetBasis computes the gadget scalars for params' modulus chain.
func NewGadgetBasis(params element.Params) GadgetBasis {
	moduli := params.RingQ().ModuliChain()
	q := new(big.Int).SetUint64(1)
	for _, qi := range moduli {
		q.Mul(q, new(big.Int).SetUint64(qi))
	}

	scalars := make([]*big.Int, len(moduli))
	for i, qi := range moduli {
		qiBig := new(big.Int).SetUint64(qi)
		Qi := new(big.Int).Div(q, qiBig)
		QiInv := new(big.Int).ModInverse(new(big.Int).Mod(Qi, qiBig), qiBig)
		scalars[i] = new(big.Int).Mul(Qi, QiInv)
	}
	return GadgetBasis{scalars: scalars}
}

// Digits returns the number of decomposition digits (one per RNS prime).
func (g GadgetBasis) Digits() int { return len(g.scalars) }

// Scale returns Element scaled by the i-th gadget coefficient, i.e. the
// contribution D_i·s_old this digit's key-switch invariant requires.
func (g GadgetBasis) Scale(i int, e element.Element) element.Element {
	return e.MulScalarBigint(g.scalars[i])
}

// MultiKeySwitchGen produces the party's contribution to a key-switching
// key from sOld to sNew, reusing templateEvalKey.AVec as the shared
// random aVec so that independently-generated contributions aggregate
// correctly under AddEvalKeys. For each digit i:
//
//	bVec[i] = ns·e_i − aVec[i]·sNew + g_i·sOld
//
// where g_i is the i-th gadget-basis scalar.
func MultiKeySwitchGen(params element.Params, sOld, sNew element.Element, templateEvalKey EvalKey) (EvalKey, error) {
	basis := NewGadgetBasis(params)
	if len(templateEvalKey.AVec) != basis.Digits() {
		return EvalKey{}, fmt.Errorf("%w: key-switch template has %d digits, expected %d", mherr.ErrPreconditionFailed, len(templateEvalKey.AVec), basis.Digits())
	}

	bVec := make([]element.Element, basis.Digits())
	for i, a := range templateEvalKey.AVec {
		as, err := a.MulCoeffs(sNew)
		if err != nil {
			return EvalKey{}, err
		}

		e, err := element.SampleGaussian(params.RingQ(), params.Sigma())
		if err != nil {
			return EvalKey{}, err
		}
		e = e.ToEvaluation()
		scaledE := e
		if params.NoiseScale() != 1 {
			scaledE = e.MulScalarBigint(bigFromUint64(params.NoiseScale()))
		}

		b, err := scaledE.Sub(as)
		if err != nil {
			return EvalKey{}, err
		}
		gs := basis.Scale(i, sOld)
		b, err = b.Add(gs)
		if err != nil {
			return EvalKey{}, err
		}
		bVec[i] = b
	}

	out := NewEvalKey(bVec, templateEvalKey.AVec)
	out.aVecFingerprint = templateEvalKey.aVecFingerprint
	return out, nil
}

// NewKeySwitchTemplate samples a fresh shared-randomness aVec of
// basis.Digits() uniform elements, for use as templateEvalKey by every
// party's MultiKeySwitchGen call (the "one party's evalkey is used as
// the shared-randomness template" step of §4.4).
func NewKeySwitchTemplate(params element.Params) (EvalKey, error) {
	basis := NewGadgetBasis(params)
	aVec := make([]element.Element, basis.Digits())
	for i := range aVec {
		a, err := element.SampleUniform(params.RingQ())
		if err != nil {
			return EvalKey{}, err
		}
		aVec[i] = a.ToEvaluation()
	}
	bVec := make([]element.Element, basis.Digits())
	for i := range bVec {
		bVec[i] = element.NewElement(params.RingQ(), element.Evaluation)
	}
	return NewEvalKey(bVec, aVec), nil
}
