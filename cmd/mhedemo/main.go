// Command mhedemo walks through scenario S1: three parties jointly
// generate a public key, one encrypts under it, and all three
// cooperate to decrypt, without any party ever holding the joint
// secret. It exists to give the core a runnable, observable entry
// point; production deployments wire mhe's functions into their own
// transport instead of using this CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/latticefold/mhe/element"
	"github.com/latticefold/mhe/mhe"
	"github.com/latticefold/mhe/mheint"
)

var (
	flagParties   = flag.Int("N", 3, "number of parties")
	flagLogN      = flag.Int("logN", 10, "log2 of the ring dimension")
	flagPlain     = flag.Uint64("p", 65537, "plaintext modulus")
	flagBatchSize = flag.Int("batch", 4, "inner-sum batch size for the eval-sum key walkthrough")
)

func main() {
	flag.Parse()

	if *flagParties < 1 {
		fmt.Fprintln(os.Stderr, "-N must be >= 1")
		os.Exit(1)
	}

	rlweParams, err := rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    *flagLogN,
		Q:       []uint64{0x200000440001, 0x7fff80001, 0x800280001},
		P:       []uint64{0x3ffffffb80001},
		NTTFlag: true,
	})
	if err != nil {
		panic(err)
	}

	params, err := element.NewParams(rlweParams, element.Optimized, 3.2, 3.2e6, *flagPlain)
	if err != nil {
		panic(err)
	}

	link := mheint.Link{PlaintextModulus: *flagPlain}

	fmt.Printf("Starting for N=%d parties, LogN=%d\n", *flagParties, *flagLogN)
	start := time.Now()

	shares, pkJoint := jointKeyGen(params, *flagParties)
	fmt.Printf("Joint key generation for %d parties completed in %s\n", *flagParties, time.Since(start))

	m, err := element.SampleUniform(params.RingQ())
	if err != nil {
		panic(err)
	}
	m = m.ToEvaluation()

	ct, err := encrypt(params, pkJoint, m)
	if err != nil {
		panic(err)
	}

	start = time.Now()
	partials := make([]mhe.Ciphertext, len(shares))
	var wg sync.WaitGroup
	wg.Add(len(shares))
	for i, s := range shares {
		go func(i int, s mhe.SecretShare) {
			defer wg.Done()
			var p mhe.Ciphertext
			var err error
			if i == 0 {
				p, err = mhe.PartialDecryptLead(params, ct, s.Value)
			} else {
				p, err = mhe.PartialDecryptMain(params, ct, s.Value)
			}
			if err != nil {
				panic(err)
			}
			partials[i] = p
		}(i, s)
	}
	wg.Wait()

	plaintext, err := mhe.Fuse(link, partials)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Threshold decryption of %d partials completed in %s\n", len(partials), time.Since(start))

	fmt.Println("Roundtrip check:", plaintext.Equal(link.ExtractPlaintext(m.ToCoefficient())))

	start = time.Now()
	summed, err := evalSum(params, shares, pkJoint, ct, *flagBatchSize)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Eval-sum key generation, aggregation, and application for batch=%d completed in %s\n", *flagBatchSize, time.Since(start))

	sumPartials := make([]mhe.Ciphertext, len(shares))
	wg.Add(len(shares))
	for i, s := range shares {
		go func(i int, s mhe.SecretShare) {
			defer wg.Done()
			var p mhe.Ciphertext
			var err error
			if i == 0 {
				p, err = mhe.PartialDecryptLead(params, summed, s.Value)
			} else {
				p, err = mhe.PartialDecryptMain(params, summed, s.Value)
			}
			if err != nil {
				panic(err)
			}
			sumPartials[i] = p
		}(i, s)
	}
	wg.Wait()

	summedPlaintext, err := mhe.Fuse(link, sumPartials)
	if err != nil {
		panic(err)
	}

	wantSum, err := replayInnerSum(params, m, *flagBatchSize)
	if err != nil {
		panic(err)
	}
	fmt.Println("Eval-sum roundtrip check:", summedPlaintext.Equal(link.ExtractPlaintext(wantSum.ToCoefficient())))
}

// evalSum has each party generate its contribution to the eval-sum
// key for batchSize, aggregates them into a single joint key, and
// applies it to ct, returning a ciphertext that homomorphically
// carries the batchSize-wide cyclic inner sum of ct's encrypted value.
func evalSum(params element.Params, shares []mhe.SecretShare, pkJoint mhe.PublicKey, ct mhe.Ciphertext, batchSize int) (mhe.Ciphertext, error) {
	indices, err := mhe.SumKeyIndices(params, batchSize)
	if err != nil {
		return mhe.Ciphertext{}, err
	}

	tmpl := make(mhe.EvalKeyMap, len(indices))
	for _, idx := range indices {
		t, err := mhe.NewKeySwitchTemplate(params)
		if err != nil {
			return mhe.Ciphertext{}, err
		}
		tmpl[idx] = t
	}

	agg, err := mhe.MultiEvalSumKeyGen(params, shares[0].Value, tmpl, batchSize)
	if err != nil {
		return mhe.Ciphertext{}, err
	}
	for _, s := range shares[1:] {
		contribution, err := mhe.MultiEvalSumKeyGen(params, s.Value, tmpl, batchSize)
		if err != nil {
			return mhe.Ciphertext{}, err
		}
		agg, _, err = mhe.MultiAddEvalSumKeys(agg, contribution, mhe.Intersection)
		if err != nil {
			return mhe.Ciphertext{}, err
		}
	}

	return mhe.ApplyEvalSumKey(params, ct, agg, batchSize)
}

// replayInnerSum recomputes, in the clear, the same rotate-and-add
// doubling steps ApplyEvalSumKey performs homomorphically, giving the
// expected value the eval-sum roundtrip check compares against.
func replayInnerSum(params element.Params, m element.Element, batchSize int) (element.Element, error) {
	indices, err := mhe.SumKeyIndices(params, batchSize)
	if err != nil {
		return element.Element{}, err
	}

	acc := m
	for _, idx := range indices {
		inv, err := mhe.InvertMod(idx, params.M())
		if err != nil {
			return element.Element{}, err
		}
		table := element.PrecomputeAutoMap(params.RingQ(), inv)
		rotated, err := acc.AutomorphismTransform(table)
		if err != nil {
			return element.Element{}, err
		}
		acc, err = acc.Add(rotated)
		if err != nil {
			return element.Element{}, err
		}
	}
	return acc, nil
}

// jointKeyGen runs the lead/join chain across n parties and returns
// each party's secret share plus the resulting joint public key.
func jointKeyGen(params element.Params, n int) ([]mhe.SecretShare, mhe.PublicKey) {
	shares := make([]mhe.SecretShare, n)

	s1, pk, err := mhe.KeyGenLead(params)
	if err != nil {
		panic(err)
	}
	shares[0] = s1

	for i := 1; i < n; i++ {
		si, pkI, err := mhe.KeyGenJoin(params, pk, false)
		if err != nil {
			panic(err)
		}
		shares[i] = si
		pk = pkI
	}
	return shares, pk
}

// encrypt is a minimal single-party-collaborator encryption used only
// to exercise the demo end to end: c = (b + m, a) satisfies
// c_0 + c_1*s = ns*e + m for the joint secret s (m is not scaled by ns).
// Real deployments delegate this to the scheme collaborator
// (out of this module's scope per §1).
func encrypt(params element.Params, pk mhe.PublicKey, m element.Element) (mhe.Ciphertext, error) {
	c0, err := pk.B.Add(m)
	if err != nil {
		return mhe.Ciphertext{}, err
	}
	return mhe.Ciphertext{Value: []element.Element{c0, pk.A}}, nil
}
