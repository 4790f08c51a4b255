package mhe

import (
	"fmt"
	"math/big"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mherr"
)

// bigFromUint64 lifts a uint64 scalar into math/big, for use with
// element.Element.MulScalarBigint (the noise-scale and gadget-basis
// multiplications).
func bigFromUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// addSlices adds two equal-length element.Element slices elementwise,
// the shared building block behind AddEvalKeys/AddEvalMultKeys' bVec
// and aVec sums.
func addSlices(a, b []element.Element) ([]element.Element, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: mismatched slice lengths %d and %d", mherr.ErrPreconditionFailed, len(a), len(b))
	}
	out := make([]element.Element, len(a))
	for i := range a {
		sum, err := a[i].Add(b[i])
		if err != nil {
			return nil, err
		}
		out[i] = sum
	}
	return out, nil
}
