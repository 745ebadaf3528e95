package fri_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/challenger"
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/fri"
)

// lowDegreePolynomial returns coefficients for a polynomial of degree
// exactly degree-1, padded with zeros up to size n, matching boundary
// scenario 5 (spec.md §8): a coefficient vector of exactly
// 2^{log_n-rate_bits} nonzero coefficients.
func lowDegreePolynomial(n, degree int) []field.Quadratic {
	coeffs := make([]field.Quadratic, n)
	for i := 0; i < degree; i++ {
		coeffs[i] = field.FromBase(field.NewElement(uint64(i + 1)))
	}
	return coeffs
}

func evaluate(coeffs []field.Quadratic) []field.Quadratic {
	a0 := make([]field.Element, len(coeffs))
	a1 := make([]field.Element, len(coeffs))
	for i, c := range coeffs {
		a0[i] = c.A0
		a1[i] = c.A1
	}
	field.FFT(a0)
	field.FFT(a1)
	out := make([]field.Quadratic, len(coeffs))
	for i := range out {
		out[i] = field.Quadratic{A0: a0[i], A1: a1[i]}
	}
	return out
}

func TestFRICommitPhaseAcceptsLowDegreePolynomial(t *testing.T) {
	const logN = 6
	n := 1 << logN
	cfg := fri.Config{
		ReductionArityBits: []int{1, 1, 1},
		RateBits:           3,
		CapHeight:          2,
		NumQueryRounds:     4,
		ProofOfWorkBits:    4,
	}

	degree := n >> cfg.RateBits
	coeffs := lowDegreePolynomial(n, degree)
	values := evaluate(coeffs)

	chal := challenger.New()
	proof, err := fri.Prove(cfg, coeffs, values, nil, chal)
	require.NoError(t, err)
	require.NotNil(t, proof)
	require.Len(t, proof.CommitPhaseCaps, len(cfg.ReductionArityBits))
	require.Len(t, proof.QueryRounds, cfg.NumQueryRounds)

	// Full prover/verifier acceptance (combine wired to the real
	// out-of-domain composition) is exercised at the stark/ package level,
	// which owns the alpha/zeta challenges combine depends on.
}

func TestFRIRejectsNonzeroTail(t *testing.T) {
	const logN = 6
	n := 1 << logN
	cfg := fri.Config{
		ReductionArityBits: []int{1, 1, 1},
		RateBits:           3,
		CapHeight:          2,
		NumQueryRounds:     4,
		ProofOfWorkBits:    4,
	}

	degree := n >> cfg.RateBits
	coeffs := lowDegreePolynomial(n, degree)
	// Corrupt a coefficient in the tail that low-degreeness requires to be
	// zero (boundary scenario 6, spec.md §8).
	coeffs[degree] = field.FromBase(field.NewElement(1))
	values := evaluate(coeffs)

	chal := challenger.New()
	_, err := fri.Prove(cfg, coeffs, values, nil, chal)
	require.Error(t, err)
}

func TestFRIProveRejectsLengthMismatch(t *testing.T) {
	chal := challenger.New()
	cfg := fri.DefaultConfig(1)
	_, err := fri.Prove(cfg, make([]field.Quadratic, 4), make([]field.Quadratic, 8), nil, chal)
	require.Error(t, err)
}

func TestProofOfWorkWitnessMeetsDifficulty(t *testing.T) {
	const logN = 5
	n := 1 << logN
	cfg := fri.Config{
		ReductionArityBits: []int{1, 1},
		RateBits:           2,
		CapHeight:          1,
		NumQueryRounds:     2,
		ProofOfWorkBits:    8,
	}
	degree := n >> cfg.RateBits
	coeffs := lowDegreePolynomial(n, degree)
	values := evaluate(coeffs)

	chal := challenger.New()
	proof, err := fri.Prove(cfg, coeffs, values, nil, chal)
	require.NoError(t, err)
	require.NotNil(t, proof)

	// Replay the commit-phase transcript to recover the proof-of-work seed,
	// then check the witness's digest has the required leading zeros.
	replay := challenger.New()
	for _, c := range proof.CommitPhaseCaps {
		replay.ObserveCap(c)
		replay.GetExtensionChallenge()
	}
	replay.ObserveExtensionElements(proof.FinalPoly)
	digest := challenger.HashWithWitness(replay.GetHash(), proof.PowWitness.Uint64())
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(digest[i]) << (8 * uint(i))
	}
	require.GreaterOrEqual(t, bits.LeadingZeros64(v), int(cfg.ProofOfWorkBits))
}
