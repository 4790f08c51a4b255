package mhe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

func testString(params element.Params, opname string) string {
	return fmt.Sprintf("%s/mode=%s/logN=%d", opname, params.Mode(), params.RingQ().N())
}

func TestKeyGenLeadJoin(t *testing.T) {
	for _, lit := range testInsecure {
		params, err := newTestParams(lit)
		require.NoError(t, err)

		t.Run(testString(params, "LeadJoinChain"), func(t *testing.T) {
			s1, pk1, err := KeyGenLead(params)
			require.NoError(t, err)
			require.NotNil(t, pk1.A.Poly())

			s2, pk2, err := KeyGenJoin(params, pk1, false)
			require.NoError(t, err)
			require.True(t, pk2.SharesA(pk1))

			s3, pk3, err := KeyGenJoin(params, pk2, false)
			require.NoError(t, err)
			require.True(t, pk3.SharesA(pk1))

			joint, err := JointSecretFromShares([]SecretShare{s1, s2, s3})
			require.NoError(t, err)
			require.NotNil(t, joint.Value.Poly())
		})
	}
}

func TestKeyGenJoinFreshDoesNotReadPrevB(t *testing.T) {
	lit := testInsecure[0]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	s1, pk1, err := KeyGenLead(params)
	require.NoError(t, err)
	_ = s1

	// pkPrev.B deliberately left as its zero value: fresh=true must not
	// read it.
	pkPrev := PublicKey{A: pk1.A}
	pkPrev.aFingerprint = pk1.aFingerprint

	_, pkFresh, err := KeyGenJoin(params, pkPrev, true)
	require.NoError(t, err)
	require.True(t, pkFresh.SharesA(pk1))
}

func TestJointSecretFromSharesEmpty(t *testing.T) {
	_, err := JointSecretFromShares(nil)
	require.Error(t, err)
	kind, ok := mherr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, mherr.InvalidParameter, kind)
}

func TestKeyGenSingleParty(t *testing.T) {
	// Boundary (§8): with k=1 the joint secret is the lead party's own
	// share.
	lit := testInsecure[0]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	s1, pk1, err := KeyGenLead(params)
	require.NoError(t, err)

	joint, err := JointSecretFromShares([]SecretShare{s1})
	require.NoError(t, err)
	require.True(t, joint.Value.Equal(s1.Value))
	require.NotNil(t, pk1.A.Poly())
}
