// Package mhefloat implements mhe.SchemeLink for complex-slot
// (CKKS-style) schemes: rotation maps to the "2n-complex" mapping, and
// plaintext extraction leaves the fused coefficient polynomial
// untouched since CKKS defers scaling and rounding to the caller's
// decoder, outside the core's scope.
package mhefloat

import (
	"fmt"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// Link implements mhe.SchemeLink for CKKS-style schemes.
type Link struct{}

// RotationIndexToAutomorphism implements the FindAutomorphismIndex2nComplex
// mapping: CKKS packs N/2 complex slots two-to-a-coefficient-pair, so
// rotation by r corresponds to automorphism index 5^-r mod M — the
// inverse exponent of the real-slot (mheint) mapping — reflecting that
// CKKS's slot order runs opposite the natural bit-reversed coefficient
// order the real-packing scheme uses.
func (l Link) RotationIndexToAutomorphism(m uint64, rotation int) (uint64, error) {
	if rotation == 0 {
		return 0, fmt.Errorf("%w: rotation index must be non-zero", mherr.ErrInvalidParameter)
	}
	return powFiveSigned(m, -rotation)
}

// ExtractPlaintext is the identity: CKKS decoding (descaling, rounding,
// complex-to-real projection) is a caller concern, out of scope per
// spec §1's "plaintext packing/encoding" exclusion.
func (l Link) ExtractPlaintext(fused element.Element) element.Element {
	return fused
}

func powFiveSigned(m uint64, rotation int) (uint64, error) {
	exp := rotation
	neg := exp < 0
	if neg {
		exp = -exp
	}
	base := uint64(5)
	if neg {
		inv, err := invertMod(base, m)
		if err != nil {
			return 0, err
		}
		base = inv
	}
	return modExp(base, uint64(exp), m), nil
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

func invertMod(k, m uint64) (uint64, error) {
	g, x, _ := extGCD(int64(k), int64(m))
	if g != 1 {
		return 0, fmt.Errorf("%w: %d is not invertible mod %d", mherr.ErrInvalidParameter, k, m)
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
