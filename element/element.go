package element

import (
	"fmt"
	"math/big"

	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"

	"github.com/latticefold/mhe/mherr"
)

// Format tags whether an Element's coefficients are in coefficient
// representation or NTT (evaluation) representation. Arithmetic between two
// Elements requires matching Format; the core never converts implicitly.
type Format uint8

const (
	// Coefficient is the standard polynomial-coefficient representation.
	Coefficient Format = iota
	// Evaluation is the NTT (point-value) representation.
	Evaluation
)

func (f Format) String() string {
	switch f {
	case Coefficient:
		return "Coefficient"
	case Evaluation:
		return "Evaluation"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Element is a single ring element (one modulus-chain layer of a
// ciphertext, key, or share), tagged with the representation its
// coefficients are currently in. The multiparty core only ever touches
// polynomial data through Element and Params; it never holds a raw
// ring.Poly.
type Element struct {
	poly   ring.Poly
	format Format
	ringQ  *ring.Ring
}

// NewElement allocates a zero Element in the given Format over ringQ.
func NewElement(ringQ *ring.Ring, format Format) Element {
	return Element{
		poly:   ring.NewPoly(ringQ.N(), ringQ.MaxLevel()),
		format: format,
		ringQ:  ringQ,
	}
}

// Format returns the Element's current representation.
func (e Element) Format() Format { return e.format }

// Poly exposes the underlying ring.Poly for collaborator calls (samplers,
// the RNS/NTT surface) that need the raw type. Callers outside this
// package should prefer the Element methods below wherever one exists.
func (e Element) Poly() *ring.Poly { return &e.poly }

// Copy returns an independent copy of e.
func (e Element) Copy() Element {
	out := NewElement(e.ringQ, e.format)
	out.poly.Copy(e.poly)
	return out
}

// Equal reports whether e and other hold identical coefficients in the
// same Format.
func (e Element) Equal(other Element) bool {
	return e.format == other.format && e.poly.Equal(&other.poly)
}

// SameRing reports whether e and other are defined over rings with the
// same degree and modulus chain. Arithmetic methods like Add/MulCoeffs
// only check Format via checkCompat — mixing Elements from two
// different Params would panic deep inside the ring package (mismatched
// limb counts) or silently produce garbage rather than a caller-visible
// error, so callers that combine Elements sourced from separate parties
// or configurations (e.g. Fuse) must check this themselves first.
func (e Element) SameRing(other Element) bool {
	if e.ringQ.N() != other.ringQ.N() {
		return false
	}
	m1, m2 := e.ringQ.ModuliChain(), other.ringQ.ModuliChain()
	if len(m1) != len(m2) {
		return false
	}
	for i := range m1 {
		if m1[i] != m2[i] {
			return false
		}
	}
	return true
}

func (e Element) checkCompat(other Element, op string) error {
	if e.format != other.format {
		return fmt.Errorf("%w: %s requires matching format, got %v and %v", mherr.ErrPreconditionFailed, op, e.format, other.format)
	}
	return nil
}

// ToEvaluation returns e transformed into NTT representation. It is a
// no-op (returns a copy) if e is already in Evaluation format.
func (e Element) ToEvaluation() Element {
	if e.format == Evaluation {
		return e.Copy()
	}
	out := NewElement(e.ringQ, Evaluation)
	e.ringQ.NTT(e.poly, out.poly)
	return out
}

// ToCoefficient returns e transformed into coefficient representation. It
// is a no-op (returns a copy) if e is already in Coefficient format.
func (e Element) ToCoefficient() Element {
	if e.format == Coefficient {
		return e.Copy()
	}
	out := NewElement(e.ringQ, Coefficient)
	e.ringQ.INTT(e.poly, out.poly)
	return out
}

// Add returns e + other. Both operands must share the same Format.
func (e Element) Add(other Element) (Element, error) {
	if err := e.checkCompat(other, "Add"); err != nil {
		return Element{}, err
	}
	out := NewElement(e.ringQ, e.format)
	e.ringQ.Add(e.poly, other.poly, out.poly)
	return out, nil
}

// Sub returns e - other. Both operands must share the same Format.
func (e Element) Sub(other Element) (Element, error) {
	if err := e.checkCompat(other, "Sub"); err != nil {
		return Element{}, err
	}
	out := NewElement(e.ringQ, e.format)
	e.ringQ.Sub(e.poly, other.poly, out.poly)
	return out, nil
}

// MulCoeffs returns the coefficient-wise (NTT-domain) product of e and
// other. Both operands must already be in Evaluation format: this is a
// pointwise product, not a polynomial convolution, and is meaningless in
// Coefficient format.
func (e Element) MulCoeffs(other Element) (Element, error) {
	if err := e.checkCompat(other, "MulCoeffs"); err != nil {
		return Element{}, err
	}
	if e.format != Evaluation {
		return Element{}, fmt.Errorf("%w: MulCoeffs requires Evaluation format, got %v", mherr.ErrPreconditionFailed, e.format)
	}
	out := NewElement(e.ringQ, e.format)
	e.ringQ.MulCoeffsBarrett(e.poly, other.poly, out.poly)
	return out, nil
}

// MulCoeffsAndAdd computes out += e*other in-place style, returning the
// updated accumulator acc + e*other. Used by the key-switch
// application's digit dot-product loop (mhe/apply.go), which repeatedly
// folds digit contributions into a running total.
func (e Element) MulCoeffsAndAdd(other, acc Element) (Element, error) {
	if err := e.checkCompat(other, "MulCoeffsAndAdd"); err != nil {
		return Element{}, err
	}
	if err := e.checkCompat(acc, "MulCoeffsAndAdd"); err != nil {
		return Element{}, err
	}
	out := acc.Copy()
	e.ringQ.MulCoeffsBarrettThenAdd(e.poly, other.poly, out.poly)
	return out, nil
}

// MulScalarBigint returns e scaled by the arbitrary-precision scalar s,
// reduced modulo each RNS prime. Used by the gadget decomposition
// (per-digit CRT basis scalars) in the key-switch generator.
func (e Element) MulScalarBigint(s *big.Int) Element {
	out := NewElement(e.ringQ, e.format)
	e.ringQ.MulScalarBigint(e.poly, s, out.poly)
	return out
}

// MForm returns e converted into Montgomery form, matching lattigo's
// convention that key material is stored in Montgomery form to avoid a
// per-multiplication conversion.
func (e Element) MForm() Element {
	out := NewElement(e.ringQ, e.format)
	e.ringQ.MForm(e.poly, out.poly)
	return out
}

// PrecomputeAutoMap returns the coefficient permutation table for the
// automorphism x -> x^galEl over a ring of degree N, i.e. the index
// array lattigo's ring.AutomorphismNTTIndex produces for use with
// AutomorphismTransform. galEl must be odd and less than 2N (the
// cyclotomic order); callers that rotate by a slot index k should
// convert k to a Galois element first (see mheint.Link / mhefloat.Link).
func PrecomputeAutoMap(ringQ *ring.Ring, galEl uint64) []uint64 {
	index, err := ring.AutomorphismNTTIndex(ringQ.N(), ringQ.NthRoot(), galEl)
	if err != nil {
		panic(err)
	}
	return index
}

// AutomorphismTransform applies the automorphism whose permutation table
// is index (as produced by PrecomputeAutoMap) to e, returning
// phi_galEl(e). e must be in Evaluation format: AutomorphismNTTIndex
// produces an NTT-domain permutation, matching lattigo's own
// automorphism.go.
func (e Element) AutomorphismTransform(index []uint64) (Element, error) {
	if e.format != Evaluation {
		return Element{}, fmt.Errorf("%w: AutomorphismTransform requires Evaluation format, got %v", mherr.ErrPreconditionFailed, e.format)
	}
	out := NewElement(e.ringQ, e.format)
	e.ringQ.AutomorphismNTTWithIndex(e.poly, index, out.poly)
	return out, nil
}

// Digits returns the number of RNS limbs (CRT digits) e's ring carries,
// one per prime of the modulus chain.
func (e Element) Digits() int {
	return len(e.poly.Coeffs)
}

// DigitDecompose returns the i-th CRT digit of e: e's own residue at
// RNS limb i, reduced into every other limb. Since that residue is
// already smaller than the i-th prime, reducing it into limb l is a
// single uint64 mod rather than a big.Int reduction. This is the
// ciphertext-side counterpart of GadgetBasis.Scale's secret-side CRT
// scaling: because the gadget scalars g_i sum to 1 mod Q, e equals
// exactly Sum_i DigitDecompose(i) * g_i mod Q.
//
// e must be in Coefficient format — the CRT digit is only meaningful
// coefficient by coefficient, not point-value by point-value, so an
// Evaluation-format operand must be converted with ToCoefficient first
// (and the returned digit converted back with ToEvaluation before use
// in MulCoeffs), mirroring lattigo's own INTT/decompose/NTT bracket
// around RNS digit decomposition.
func (e Element) DigitDecompose(i int) (Element, error) {
	if e.format != Coefficient {
		return Element{}, fmt.Errorf("%w: DigitDecompose requires Coefficient format, got %v", mherr.ErrPreconditionFailed, e.format)
	}
	moduli := e.ringQ.ModuliChain()
	if i < 0 || i >= len(moduli) {
		return Element{}, fmt.Errorf("%w: digit index %d out of range for %d moduli", mherr.ErrOutOfRange, i, len(moduli))
	}
	out := NewElement(e.ringQ, Coefficient)
	src := e.poly.Coeffs[i]
	for l, qi := range moduli {
		dst := out.poly.Coeffs[l]
		for c, v := range src {
			dst[c] = v % qi
		}
	}
	return out, nil
}

// ReduceCoefficients reduces every coefficient of e (which must be in
// Coefficient format) modulo p, the BFV/BGV plaintext-extraction step:
// each RNS-limb coefficient is centered around zero relative to its own
// modulus and then reduced mod p, matching the "reduce mod plaintext
// modulus" post-processing every scheme performs after CRT
// reconstruction.
func (e Element) ReduceCoefficients(p uint64) Element {
	out := e.Copy()
	moduli := e.ringQ.ModuliChain()
	for i, qi := range moduli {
		half := qi / 2
		row := out.poly.Coeffs[i]
		for j, c := range row {
			signed := int64(c)
			if c > half {
				signed = int64(c) - int64(qi)
			}
			reduced := signed % int64(p)
			if reduced < 0 {
				reduced += int64(p)
			}
			row[j] = uint64(reduced)
		}
	}
	return out
}

// SampleUniform draws a fresh uniformly random Element in Coefficient
// format over ringQ, seeded from a freshly constructed per-operation
// PRNG (never a package-level shared generator).
func SampleUniform(ringQ *ring.Ring) (Element, error) {
	return sample(ringQ, ring.Uniform{})
}

// SampleGaussian draws a fresh Element with coefficients from the
// discrete Gaussian of standard deviation sigma, bounded at 6*sigma as
// lattigo's own default samplers do.
func SampleGaussian(ringQ *ring.Ring, sigma float64) (Element, error) {
	return sample(ringQ, ring.DiscreteGaussian{Sigma: sigma, Bound: 6 * sigma})
}

// SampleTernary draws a fresh Element with coefficients in {-1,0,1} and
// exactly hammingWeight non-zero coefficients (Mode == Sparse), or with
// probability p per non-zero coefficient when hammingWeight is zero
// (Mode == Optimized, p = 2/3 conventionally).
func SampleTernary(ringQ *ring.Ring, hammingWeight int, p float64) (Element, error) {
	if hammingWeight > 0 {
		return sample(ringQ, ring.Ternary{H: hammingWeight})
	}
	return sample(ringQ, ring.Ternary{P: p})
}

func sample(ringQ *ring.Ring, dist ring.DistributionParameters) (Element, error) {
	prng, err := sampling.NewPRNG()
	if err != nil {
		return Element{}, fmt.Errorf("%w: %v", mherr.ErrSamplingFailure, err)
	}
	sampler, err := ring.NewSampler(prng, ringQ, dist, false)
	if err != nil {
		return Element{}, fmt.Errorf("%w: %v", mherr.ErrSamplingFailure, err)
	}
	out := NewElement(ringQ, Coefficient)
	sampler.Read(out.poly)
	return out, nil
}
