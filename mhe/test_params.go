package mhe

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/latticefold/mhe/element"
)

// testParametersLiteral pairs an rlwe.ParametersLiteral with the
// multiparty-specific scalars element.Params needs (mode, σ, σ_MP, ns),
// matching the shape of the teacher's own TestParametersLiteral.
type testParametersLiteral struct {
	Mode       element.Mode
	Sigma      float64
	SigmaMP    float64
	NoiseScale uint64
	rlwe.ParametersLiteral
}

var (
	testLogN = 10
	testQi   = []uint64{0x200000440001, 0x7fff80001, 0x800280001, 0x7ffd80001, 0x7ffc80001}
	testPj   = []uint64{0x3ffffffb80001}

	// testInsecure are insecure, fast-to-generate parameters for use in
	// this package's tests only — never for a real deployment.
	testInsecure = []testParametersLiteral{
		{
			Mode:       element.RLWE,
			Sigma:      3.2,
			SigmaMP:    3.2e6,
			NoiseScale: 65537,
			ParametersLiteral: rlwe.ParametersLiteral{
				LogN:    testLogN,
				Q:       testQi,
				P:       testPj,
				NTTFlag: true,
			},
		},
		{
			Mode:       element.Optimized,
			Sigma:      3.2,
			SigmaMP:    3.2e6,
			NoiseScale: 65537,
			ParametersLiteral: rlwe.ParametersLiteral{
				LogN:    testLogN,
				Q:       testQi,
				P:       testPj,
				NTTFlag: true,
			},
		},
		{
			Mode:       element.Sparse,
			Sigma:      3.2,
			SigmaMP:    3.2e6,
			NoiseScale: 1,
			ParametersLiteral: rlwe.ParametersLiteral{
				LogN:    testLogN,
				Q:       testQi,
				P:       testPj,
				NTTFlag: true,
			},
		},
	}
)

// newTestParams builds an element.Params from a testParametersLiteral,
// the way the teacher's tests build rlwe.Parameters from
// TestParametersLiteral via rlwe.NewParametersFromLiteral.
func newTestParams(lit testParametersLiteral) (element.Params, error) {
	rlweParams, err := rlwe.NewParametersFromLiteral(lit.ParametersLiteral)
	if err != nil {
		return element.Params{}, err
	}
	return element.NewParams(rlweParams, lit.Mode, lit.Sigma, lit.SigmaMP, lit.NoiseScale)
}
