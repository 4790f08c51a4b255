package mhe

import (
	"fmt"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// PartialDecryptLead produces the lead party's contribution to a
// threshold decryption of ciphertext c under joint secret s = Σ s_i.
// Exactly one party (conventionally "party 1") calls this; every other
// party calls PartialDecryptMain. Flooding noise is drawn from
// DiscreteGaussian(σ_MP), not the ordinary σ — this is what hides an
// individual party's share in the fused result.
func PartialDecryptLead(params element.Params, c Ciphertext, sI element.Element) (Ciphertext, error) {
	if len(c.Value) != 2 {
		return Ciphertext{}, fmt.Errorf("%w: PartialDecryptLead requires a 2-element ciphertext, got %d", mherr.ErrPreconditionFailed, len(c.Value))
	}

	e, err := element.SampleGaussian(params.RingQ(), params.SigmaMP())
	if err != nil {
		return Ciphertext{}, err
	}
	e = e.ToEvaluation()
	scaledE := e
	if params.NoiseScale() != 1 {
		scaledE = e.MulScalarBigint(bigFromUint64(params.NoiseScale()))
	}

	c1s, err := c.Value[1].MulCoeffs(sI)
	if err != nil {
		return Ciphertext{}, err
	}
	b, err := c.Value[0].Add(c1s)
	if err != nil {
		return Ciphertext{}, err
	}
	b, err = b.Add(scaledE)
	if err != nil {
		return Ciphertext{}, err
	}

	return Ciphertext{Value: []element.Element{b.ToCoefficient()}}, nil
}

// PartialDecryptMain produces a non-lead party's contribution: b =
// c_1·s_i + ns·e, left in evaluation form (Fuse re-aligns formats before
// summing).
func PartialDecryptMain(params element.Params, c Ciphertext, sI element.Element) (Ciphertext, error) {
	if len(c.Value) != 2 {
		return Ciphertext{}, fmt.Errorf("%w: PartialDecryptMain requires a 2-element ciphertext, got %d", mherr.ErrPreconditionFailed, len(c.Value))
	}

	e, err := element.SampleGaussian(params.RingQ(), params.SigmaMP())
	if err != nil {
		return Ciphertext{}, err
	}
	e = e.ToEvaluation()
	scaledE := e
	if params.NoiseScale() != 1 {
		scaledE = e.MulScalarBigint(bigFromUint64(params.NoiseScale()))
	}

	c1s, err := c.Value[1].MulCoeffs(sI)
	if err != nil {
		return Ciphertext{}, err
	}
	b, err := c1s.Add(scaledE)
	if err != nil {
		return Ciphertext{}, err
	}

	return Ciphertext{Value: []element.Element{b}}, nil
}

// Fuse sums element-zero across every partial decryption, switching
// each to coefficient form before summing, then extracts the plaintext
// via link's scheme-specific reduction. All partials must be defined
// over the same ring (same degree and modulus chain) — a partial
// produced under different Params fails closed with a
// parameter-mismatch error rather than reaching element.Element.Add,
// which has no ring-identity check of its own and would panic or
// silently corrupt the sum.
func Fuse(link SchemeLink, partials []Ciphertext) (element.Element, error) {
	if len(partials) == 0 {
		return element.Element{}, fmt.Errorf("%w: Fuse requires at least one partial decryption", mherr.ErrInvalidParameter)
	}

	var sum element.Element
	for i, p := range partials {
		if len(p.Value) != 1 {
			return element.Element{}, fmt.Errorf("%w: partial decryption %d has %d elements, expected 1", mherr.ErrPreconditionFailed, i, len(p.Value))
		}
		if i > 0 && !p.Value[0].SameRing(partials[0].Value[0]) {
			return element.Element{}, fmt.Errorf("%w: Fuse requires all partials to share ring parameters, partial %d differs from partial 0", mherr.ErrParameterMismatch, i)
		}
		term := p.Value[0].ToCoefficient()
		if i == 0 {
			sum = term
			continue
		}
		var err error
		sum, err = sum.Add(term)
		if err != nil {
			return element.Element{}, err
		}
	}

	return link.ExtractPlaintext(sum), nil
}
