// Package mheint implements mhe.SchemeLink for integer/real-slot
// (BFV/BGV-style) schemes: rotation maps to the standard "2n" mapping
// via the power-of-five generator of Z_M^*, and plaintext extraction
// reduces the fused coefficient polynomial modulo the plaintext
// modulus.
package mheint

import (
	"fmt"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// Link implements mhe.SchemeLink for BFV/BGV-style schemes.
type Link struct {
	// PlaintextModulus is p, the modulus plaintext coefficients are
	// reduced against on extraction.
	PlaintextModulus uint64
}

// RotationIndexToAutomorphism implements the FindAutomorphismIndex2n
// mapping: rotation by r corresponds to the automorphism index
// 5^r mod M (5^-r mod M for negative r), the standard power-of-five
// generator used for 2n-real slot rotation.
func (l Link) RotationIndexToAutomorphism(m uint64, rotation int) (uint64, error) {
	if rotation == 0 {
		return 0, fmt.Errorf("%w: rotation index must be non-zero", mherr.ErrInvalidParameter)
	}
	return powFiveSigned(m, rotation)
}

// ExtractPlaintext reduces fused's coefficients modulo PlaintextModulus,
// the BFV/BGV decryption post-processing step.
func (l Link) ExtractPlaintext(fused element.Element) element.Element {
	return fused.ReduceCoefficients(l.PlaintextModulus)
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
