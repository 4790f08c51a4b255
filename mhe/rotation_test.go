package mhe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticefold/mhe/mherr"
)

func TestMultiEvalSumKeyGenIndexCount(t *testing.T) {
	lit := testInsecure[1]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	_, pk, err := KeyGenLead(params)
	require.NoError(t, err)

	batchSize := 4
	// ceil(log2(4)) = 2 indices: 5^1, 5^2 mod M.
	m := params.M()
	want := []uint64{modExp(5, 1, m), modExp(5, 2, m)}

	tmpl := make(EvalKeyMap, len(want))
	for _, idx := range want {
		ek, err := NewKeySwitchTemplate(params)
		require.NoError(t, err)
		tmpl[idx] = ek
	}

	got, err := MultiEvalSumKeyGen(params, pk.A, tmpl, batchSize)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for _, idx := range want {
		_, ok := got[idx]
		require.True(t, ok, "missing index %d", idx)
	}
}

func TestMultiEvalAutomorphismKeyGenOutOfRange(t *testing.T) {
	lit := testInsecure[0]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	_, pk, err := KeyGenLead(params)
	require.NoError(t, err)

	tooMany := make([]uint64, params.N())
	for i := range tooMany {
		tooMany[i] = uint64(3 + 2*i)
	}

	_, err = MultiEvalAutomorphismKeyGen(params, pk.A, EvalKeyMap{}, tooMany)
	require.Error(t, err)
	kind, ok := mherr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, mherr.OutOfRange, kind)
}

func TestMultiEvalAutomorphismKeyGenNonCoprimeIndexOutOfRange(t *testing.T) {
	lit := testInsecure[0]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	_, pk, err := KeyGenLead(params)
	require.NoError(t, err)

	// M is a power of two (2N); any even index shares a factor with it
	// and so has no inverse mod M.
	nonCoprime := uint64(4)
	tmpl, err := NewKeySwitchTemplate(params)
	require.NoError(t, err)

	_, err = MultiEvalAutomorphismKeyGen(params, pk.A, EvalKeyMap{nonCoprime: tmpl}, []uint64{nonCoprime})
	require.Error(t, err)
	kind, ok := mherr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, mherr.OutOfRange, kind)
}

func TestMultiEvalAutomorphismKeyGenEmptyIndices(t *testing.T) {
	lit := testInsecure[0]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	_, pk, err := KeyGenLead(params)
	require.NoError(t, err)

	got, err := MultiEvalAutomorphismKeyGen(params, pk.A, EvalKeyMap{}, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMultiEvalAutomorphismKeyGenParallelAndSerialAgree(t *testing.T) {
	lit := testInsecure[0]
	params, err := newTestParams(lit)
	require.NoError(t, err)

	_, pk, err := KeyGenLead(params)
	require.NoError(t, err)

	m := params.M()
	serialIdx := []uint64{3}
	parallelIdx := []uint64{3, 7, 9, 11}

	tmpl := make(EvalKeyMap)
	for _, idx := range append(append([]uint64{}, serialIdx...), parallelIdx...) {
		ek, err := NewKeySwitchTemplate(params)
		require.NoError(t, err)
		tmpl[idx] = ek
	}
	_ = m

	gotSerial, err := MultiEvalAutomorphismKeyGen(params, pk.A, tmpl, serialIdx)
	require.NoError(t, err)
	require.Len(t, gotSerial, 1)

	gotParallel, err := MultiEvalAutomorphismKeyGen(params, pk.A, tmpl, parallelIdx)
	require.NoError(t, err)
	require.Len(t, gotParallel, len(parallelIdx))

	// Index 3 is in both sets: both paths must build its key against the
	// same template, with the same digit count.
	require.Len(t, gotParallel[3].BVec, len(gotSerial[3].BVec))
	require.True(t, gotSerial[3].SharesA(gotParallel[3]))
}
