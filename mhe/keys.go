// Package mhe implements the threshold (multiparty) key-generation,
// key-aggregation, and distributed-decryption core built on top of the
// ring-element surface in package element. It follows the lead/join
// chain protocol OpenFHE's schemebase/base-multiparty.cpp implements,
// written in the idiom of lattigo's multiparty/mhe packages.
package mhe

import (
	"github.com/zeebo/blake3"

	"github.com/latticefold/mhe/element"
)

// SecretShare is a single party's share s_i of the joint secret key. It
// is sampled once per party at protocol start, read-only thereafter,
// and must never leave the owning party's process.
type SecretShare struct {
	Value element.Element
}

// fingerprint returns a blake3 digest of e's coefficients. PublicKey and
// EvalKey carry the fingerprint of their shared randomness (a / aVec) so
// that aggregation can refuse to combine keys built against different
// shared randomness (Design Notes §9, option (b)) instead of silently
// producing garbage.
func fingerprint(e element.Element) [32]byte {
	h := blake3.New()
	for _, level := range e.Poly().Coeffs {
		for _, c := range level {
			h.Write([]byte{
				byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24),
				byte(c >> 32), byte(c >> 40), byte(c >> 48), byte(c >> 56),
			})
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PublicKey is the pair (b, a) with invariant b ≡ ns·e − a·s (mod Q) for
// the aggregated secret s and some small-noise e. Stored in evaluation
// form. aFingerprint is the blake3 digest of A at construction time,
// used by AddPublicKeys to detect keys built against different shared
// randomness.
type PublicKey struct {
	B, A         element.Element
	aFingerprint [32]byte
}

// NewPublicKey builds a PublicKey from its two components, computing and
// caching the fingerprint of a.
func NewPublicKey(b, a element.Element) PublicKey {
	return PublicKey{B: b, A: a, aFingerprint: fingerprint(a)}
}

// SharesA reports whether pk and other were built from the same shared
// randomness a, by comparing fingerprints rather than the (possibly
// large) polynomials themselves.
func (pk PublicKey) SharesA(other PublicKey) bool {
	return pk.aFingerprint == other.aFingerprint
}

// EvalKey is a relinearization / key-switch / rotation key: two
// equal-length ordered sequences of ring elements (aVec, bVec), sized by
// the key-switching digit decomposition. For digit i, the invariant is
// bVec[i] + aVec[i]·s_new ≈ ns·e_i + D_i·s_old.
type EvalKey struct {
	BVec, AVec     []element.Element
	aVecFingerprint [32]byte
}

// NewEvalKey builds an EvalKey from its two digit vectors, computing and
// caching the fingerprint of aVec (all digits concatenated).
func NewEvalKey(bVec, aVec []element.Element) EvalKey {
	return EvalKey{BVec: bVec, AVec: aVec, aVecFingerprint: fingerprintVec(aVec)}
}

func fingerprintVec(vec []element.Element) [32]byte {
	h := blake3.New()
	for _, e := range vec {
		f := fingerprint(e)
		h.Write(f[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SharesA reports whether ek and other were generated against the same
// shared aVec template.
func (ek EvalKey) SharesA(other EvalKey) bool {
	return ek.aVecFingerprint == other.aVecFingerprint
}

// EvalKeyMap maps an automorphism index k (odd, in [1, M)) to the EvalKey
// that switches from s permuted by k^-1 mod M back to s.
type EvalKeyMap map[uint64]EvalKey

// Ciphertext is an ordered sequence of ring elements. A fresh encryption
// has exactly two; a partial decryption has exactly one.
type Ciphertext struct {
	Value []element.Element
}

// Elements returns the number of ring elements the ciphertext carries.
func (c Ciphertext) Elements() int { return len(c.Value) }
