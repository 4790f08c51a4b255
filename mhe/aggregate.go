package mhe

import (
	"fmt"

	"github.com/latticefold/mhe/mherr"
)

// AddPublicKeys sums two public keys built against the same shared a:
// the result has B = pk1.B + pk2.B, A = pk1.A. Fails with
// parameter-mismatch if pk1 and pk2 were not built from the same a.
func AddPublicKeys(pk1, pk2 PublicKey) (PublicKey, error) {
	if !pk1.SharesA(pk2) {
		return PublicKey{}, fmt.Errorf("%w: AddPublicKeys requires both keys to share a", mherr.ErrParameterMismatch)
	}
	b, err := pk1.B.Add(pk2.B)
	if err != nil {
		return PublicKey{}, err
	}
	out := NewPublicKey(b, pk1.A)
	out.aFingerprint = pk1.aFingerprint
	return out, nil
}

// AddEvalKeys sums the bVec of two eval keys elementwise, keeping aVec
// from ek1. Used to combine rotation/sum keys. Fails with
// parameter-mismatch if ek1 and ek2 were not built from the same aVec
// template.
func AddEvalKeys(ek1, ek2 EvalKey) (EvalKey, error) {
	if !ek1.SharesA(ek2) {
		return EvalKey{}, fmt.Errorf("%w: AddEvalKeys requires both keys to share aVec", mherr.ErrParameterMismatch)
	}
	if len(ek1.BVec) != len(ek2.BVec) {
		return EvalKey{}, fmt.Errorf("%w: AddEvalKeys operands have %d and %d digits", mherr.ErrPreconditionFailed, len(ek1.BVec), len(ek2.BVec))
	}
	bOut, err := addSlices(ek1.BVec, ek2.BVec)
	if err != nil {
		return EvalKey{}, err
	}
	out := NewEvalKey(bOut, ek1.AVec)
	out.aVecFingerprint = ek1.aVecFingerprint
	return out, nil
}

// AddEvalMultKeys sums both aVec and bVec elementwise. Used when
// combining per-party contributions to the joint relinearization key,
// where — unlike a rotation/sum key — every party contributes a fresh
// a as well as b.
func AddEvalMultKeys(ek1, ek2 EvalKey) (EvalKey, error) {
	if len(ek1.BVec) != len(ek2.BVec) || len(ek1.AVec) != len(ek2.AVec) {
		return EvalKey{}, fmt.Errorf("%w: AddEvalMultKeys operands have mismatched digit counts", mherr.ErrPreconditionFailed)
	}
	bOut, err := addSlices(ek1.BVec, ek2.BVec)
	if err != nil {
		return EvalKey{}, err
	}
	aOut, err := addSlices(ek1.AVec, ek2.AVec)
	if err != nil {
		return EvalKey{}, err
	}
	return NewEvalKey(bOut, aOut), nil
}

// AggregationPolicy controls how MultiAddEvalAutomorphismKeys and
// MultiAddEvalSumKeys handle indices present in only one input map.
type AggregationPolicy int

const (
	// Intersection keeps only indices present in both maps (the
	// default: an index missing a contribution from every party is
	// dropped rather than left partially aggregated).
	Intersection AggregationPolicy = iota
	// Union keeps every index present in either map, passing through
	// single-party contributions unmodified for indices the other map
	// lacks.
	Union
)

// MultiAddEvalAutomorphismKeys aggregates two automorphism EvalKeyMaps
// under policy (Intersection by default). It returns the aggregated map
// and, under Intersection, the indices present in exactly one input
// that were dropped from the result.
func MultiAddEvalAutomorphismKeys(map1, map2 EvalKeyMap, policy AggregationPolicy) (EvalKeyMap, []uint64, error) {
	return mergeKeyMaps(map1, map2, policy)
}

// MultiAddEvalSumKeys aggregates two inner-sum EvalKeyMaps under the
// same policy as MultiAddEvalAutomorphismKeys; the two operations share
// an identical aggregation rule; only the indices' meaning differs.
func MultiAddEvalSumKeys(map1, map2 EvalKeyMap, policy AggregationPolicy) (EvalKeyMap, []uint64, error) {
	return mergeKeyMaps(map1, map2, policy)
}

func mergeKeyMaps(map1, map2 EvalKeyMap, policy AggregationPolicy) (EvalKeyMap, []uint64, error) {
	out := make(EvalKeyMap, len(map1))
	var dropped []uint64

	for idx, ek1 := range map1 {
		ek2, ok := map2[idx]
		switch {
		case ok:
			sum, err := AddEvalKeys(ek1, ek2)
			if err != nil {
				return nil, nil, err
			}
			out[idx] = sum
		case policy == Union:
			out[idx] = ek1
		default:
			dropped = append(dropped, idx)
		}
	}
	if policy == Union {
		for idx, ek2 := range map2 {
			if _, ok := map1[idx]; !ok {
				out[idx] = ek2
			}
		}
	} else {
		for idx := range map2 {
			if _, ok := map1[idx]; !ok {
				dropped = append(dropped, idx)
			}
		}
	}
	return out, dropped, nil
}
