package mhe

import "github.com/latticefold/mhe/element"

// SchemeLink is the small capability interface Design Notes §9 calls
// for: the two points where CKKS-style complex-slot schemes and
// BFV/BGV-style integer-slot schemes diverge. It is injected at
// construction (see mheint.Link, mhefloat.Link) rather than modeled
// with inheritance.
type SchemeLink interface {
	// RotationIndexToAutomorphism converts a signed slot-rotation
	// offset into the unsigned automorphism index (odd, in [1, m)) that
	// realizes it, using the scheme's slot-to-coefficient mapping.
	RotationIndexToAutomorphism(m uint64, rotation int) (uint64, error)

	// ExtractPlaintext reduces a fused, coefficient-form ring element
	// down to the scheme's plaintext representation. For integer
	// schemes this reduces modulo the plaintext modulus; for CKKS-style
	// schemes decoding is deferred to the caller, so this is the
	// identity.
	ExtractPlaintext(fused element.Element) element.Element
}
