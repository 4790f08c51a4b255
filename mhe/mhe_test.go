package mhe

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// noiselessParams returns element.Params with noise standard deviations
// small enough that DiscreteGaussian sampling is, for testing purposes,
// indistinguishable from returning the zero polynomial. This isolates
// the algebraic identities the end-to-end scenarios check from the
// scheme's statistical noise budget, which TestNoiseFloodingHidesShare
// below exercises separately using the real, insecure-but-noisy
// testInsecure parameters instead of these.
func noiselessParams(t *testing.T, mode element.Mode, noiseScale uint64) element.Params {
	rlweParams, err := rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    testLogN,
		Q:       testQi,
		P:       testPj,
		NTTFlag: true,
	})
	require.NoError(t, err)
	params, err := element.NewParams(rlweParams, mode, 1e-300, 2e-300, noiseScale)
	require.NoError(t, err)
	return params
}

// encryptForTest mirrors cmd/mhedemo's minimal collaborator encryption:
// c = (pk.B + m, pk.A) satisfies c_0 + c_1*s = ns*e + m for joint secret
// s and aggregate noise e.
func encryptForTest(pk PublicKey, m element.Element) (Ciphertext, error) {
	c0, err := pk.B.Add(m)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{Value: []element.Element{c0, pk.A}}, nil
}

// TestS1ThreePartyJointDecrypt exercises scenario S1: three parties
// chain joint keygen, one encrypts, all three partial-decrypt, fusion
// recovers the plaintext.
func TestS1ThreePartyJointDecrypt(t *testing.T) {
	params := noiselessParams(t, element.Optimized, 65537)

	s1, pk1, err := KeyGenLead(params)
	require.NoError(t, err)
	s2, pk2, err := KeyGenJoin(params, pk1, false)
	require.NoError(t, err)
	s3, pk3, err := KeyGenJoin(params, pk2, false)
	require.NoError(t, err)
	shares := []SecretShare{s1, s2, s3}

	m, err := element.SampleUniform(params.RingQ())
	require.NoError(t, err)
	m = m.ToEvaluation()

	ct, err := encryptForTest(pk3, m)
	require.NoError(t, err)

	lead, err := PartialDecryptLead(params, ct, shares[0].Value)
	require.NoError(t, err)
	main1, err := PartialDecryptMain(params, ct, shares[1].Value)
	require.NoError(t, err)
	main2, err := PartialDecryptMain(params, ct, shares[2].Value)
	require.NoError(t, err)

	fused, err := Fuse(passthroughLink{}, []Ciphertext{lead, main1, main2})
	require.NoError(t, err)

	require.True(t, fused.Equal(m.ToCoefficient()))
}

// TestS4AggregationCommutativity exercises scenario S4: for three
// rotation-key shares eA, eB, eC, Add(eA,eB) == Add(eB,eA) and
// Add(Add(eA,eB),eC) == Add(eA,Add(eB,eC)).
func TestS4AggregationCommutativity(t *testing.T) {
	params := noiselessParams(t, element.RLWE, 1)

	tmpl, err := NewKeySwitchTemplate(params)
	require.NoError(t, err)

	_, pkA, err := KeyGenLead(params)
	require.NoError(t, err)
	_, pkB, err := KeyGenJoin(params, pkA, true)
	require.NoError(t, err)
	_, pkC, err := KeyGenJoin(params, pkA, true)
	require.NoError(t, err)

	eA, err := MultiKeySwitchGen(params, pkA.A, pkA.A, tmpl)
	require.NoError(t, err)
	eB, err := MultiKeySwitchGen(params, pkB.A, pkB.A, tmpl)
	require.NoError(t, err)
	eC, err := MultiKeySwitchGen(params, pkC.A, pkC.A, tmpl)
	require.NoError(t, err)

	ab, err := AddEvalKeys(eA, eB)
	require.NoError(t, err)
	ba, err := AddEvalKeys(eB, eA)
	require.NoError(t, err)
	require.Equal(t, len(ab.BVec), len(ba.BVec))
	for i := range ab.BVec {
		require.True(t, ab.BVec[i].Equal(ba.BVec[i]))
	}

	abc1, err := AddEvalKeys(ab, eC)
	require.NoError(t, err)

	bc, err := AddEvalKeys(eB, eC)
	require.NoError(t, err)
	abc2, err := AddEvalKeys(eA, bc)
	require.NoError(t, err)

	require.Equal(t, len(abc1.BVec), len(abc2.BVec))
	for i := range abc1.BVec {
		require.True(t, abc1.BVec[i].Equal(abc2.BVec[i]))
	}
}

// TestNoiseFloodingHidesShare exercises scenario S5: a party's partial
// decryption of the same ciphertext must come out different every
// time it is computed when σ_MP is the scheme's real flooding
// standard deviation, and must come out identical every time when
// σ_MP collapses to (effectively) zero. The former is the property
// the whole flooding mechanism exists to provide — an attacker who
// can only ever observe one randomized sample of b = c_1·s_i + ns·e
// per query gains far less about s_i than one who observes the exact,
// repeatable c_1·s_i a noiseless partial decryption would hand over.
func TestNoiseFloodingHidesShare(t *testing.T) {
	unflooded := noiselessParams(t, element.RLWE, 1)
	_, pkUnflooded, err := KeyGenLead(unflooded)
	require.NoError(t, err)
	sUnflooded, err := sampleSecret(unflooded)
	require.NoError(t, err)

	m, err := element.SampleUniform(unflooded.RingQ())
	require.NoError(t, err)
	ctUnflooded, err := encryptForTest(pkUnflooded, m.ToEvaluation())
	require.NoError(t, err)

	b1, err := PartialDecryptMain(unflooded, ctUnflooded, sUnflooded.Value)
	require.NoError(t, err)
	b2, err := PartialDecryptMain(unflooded, ctUnflooded, sUnflooded.Value)
	require.NoError(t, err)
	require.True(t, b1.Value[0].Equal(b2.Value[0]), "with σ_MP ≈ 0, repeated partial decryptions of the same ciphertext should deterministically leak c1*s_i")

	flooded, err := newTestParams(testInsecure[0])
	require.NoError(t, err)
	_, pkFlooded, err := KeyGenLead(flooded)
	require.NoError(t, err)
	sFlooded, err := sampleSecret(flooded)
	require.NoError(t, err)

	mFlooded, err := element.SampleUniform(flooded.RingQ())
	require.NoError(t, err)
	ctFlooded, err := encryptForTest(pkFlooded, mFlooded.ToEvaluation())
	require.NoError(t, err)

	c1, err := PartialDecryptMain(flooded, ctFlooded, sFlooded.Value)
	require.NoError(t, err)
	c2, err := PartialDecryptMain(flooded, ctFlooded, sFlooded.Value)
	require.NoError(t, err)
	require.False(t, c1.Value[0].Equal(c2.Value[0]), "with the scheme's real σ_MP, repeated partial decryptions of the same ciphertext must not repeat the same value")
}

// TestS6ParameterMismatchFails exercises scenario S6: aggregating two
// public keys produced against different a must fail with
// parameter-mismatch, not silently produce garbage.
func TestS6ParameterMismatchFails(t *testing.T) {
	params := noiselessParams(t, element.RLWE, 1)

	_, pk1, err := KeyGenLead(params)
	require.NoError(t, err)
	_, pk2, err := KeyGenLead(params) // independent a
	require.NoError(t, err)

	_, err = AddPublicKeys(pk1, pk2)
	require.Error(t, err)
	kind, ok := mherr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, mherr.ParameterMismatch, kind)
}
