package element

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

func TestElementAddRequiresMatchingFormat(t *testing.T) {
	rlweParams, err := rlwe.NewParametersFromLiteral(testLiteral())
	require.NoError(t, err)
	ringQ := rlweParams.RingQ()

	a := NewElement(ringQ, Coefficient)
	b := NewElement(ringQ, Evaluation)

	_, err = a.Add(b)
	require.Error(t, err)
}

func TestElementFormatRoundTrip(t *testing.T) {
	rlweParams, err := rlwe.NewParametersFromLiteral(testLiteral())
	require.NoError(t, err)
	ringQ := rlweParams.RingQ()

	a, err := SampleUniform(ringQ)
	require.NoError(t, err)

	evalForm := a.ToEvaluation()
	back := evalForm.ToCoefficient()
	require.True(t, a.Equal(back))
}

func TestElementAddSubInverse(t *testing.T) {
	rlweParams, err := rlwe.NewParametersFromLiteral(testLiteral())
	require.NoError(t, err)
	ringQ := rlweParams.RingQ()

	a, err := SampleUniform(ringQ)
	require.NoError(t, err)
	b, err := SampleUniform(ringQ)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	diff, err := sum.Sub(b)
	require.NoError(t, err)
	require.True(t, a.Equal(diff))
}

func TestPrecomputeAutoMapIdentity(t *testing.T) {
	rlweParams, err := rlwe.NewParametersFromLiteral(testLiteral())
	require.NoError(t, err)
	ringQ := rlweParams.RingQ()

	table := PrecomputeAutoMap(ringQ, 1)
	require.Len(t, table, ringQ.N())

	a, err := SampleUniform(ringQ)
	require.NoError(t, err)
	evalForm := a.ToEvaluation()

	transformed, err := evalForm.AutomorphismTransform(table)
	require.NoError(t, err)
	require.True(t, evalForm.Equal(transformed))
}
