package fri

import (
	"context"
	"fmt"
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/goldstark/goldstark/challenger"
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
)

// flatten packs a slice of extension-field coefficients into Merkle leaves
// of base-field elements, two per quadratic element (A0 then A1).
func flatten(chunk []field.Quadratic) []field.Element {
	out := make([]field.Element, 0, 2*len(chunk))
	for _, q := range chunk {
		out = append(out, q.A0, q.A1)
	}
	return out
}

// unflatten is the inverse of flatten.
func unflatten(leaf []field.Element) []field.Quadratic {
	out := make([]field.Quadratic, 0, len(leaf)/2)
	for i := 0; i+1 < len(leaf); i += 2 {
		out = append(out, field.Quadratic{A0: leaf[i], A1: leaf[i+1]})
	}
	return out
}

// reduceWithPowers evaluates chunk, read as polynomial coefficients
// (lowest degree first), at beta via Horner's method.
func reduceWithPowers(chunk []field.Quadratic, beta field.Quadratic) field.Quadratic {
	acc := field.ZeroQuadratic()
	for i := len(chunk) - 1; i >= 0; i-- {
		acc = acc.Mul(beta).Add(chunk[i])
	}
	return acc
}

// Prove runs the FRI commit, proof-of-work, and query phases over an
// already-computed low-degree-extended codeword, binding every commitment
// into chal via Fiat-Shamir (spec.md §4.6).
func Prove(cfg Config, coeffs []field.Quadratic, values []field.Quadratic, initialTrees []*merkle.Tree, chal *challenger.Challenger) (*Proof, error) {
	n := len(values)
	if len(coeffs) != n {
		return nil, fmt.Errorf("fri: coeffs/values length mismatch: %d vs %d", len(coeffs), n)
	}

	trees, finalCoeffs, err := committedTrees(cfg, coeffs, values, chal)
	if err != nil {
		return nil, err
	}

	hash := chal.GetHash()
	powWitness, err := proofOfWork(hash, cfg.ProofOfWorkBits)
	if err != nil {
		return nil, err
	}

	queryRounds := make([]QueryRound, cfg.NumQueryRounds)
	for i := 0; i < cfg.NumQueryRounds; i++ {
		queryRounds[i] = proverQueryRound(initialTrees, trees, chal, n, cfg)
	}

	caps := make([]merkle.Cap, len(trees))
	for i, t := range trees {
		caps[i] = t.Cap()
	}

	return &Proof{
		CommitPhaseCaps: caps,
		FinalPoly:       finalCoeffs,
		PowWitness:      powWitness,
		QueryRounds:     queryRounds,
	}, nil
}

// committedTrees implements the commit phase (spec.md §4.6): repeatedly
// reverse-bit-permute the evaluation domain, chunk it by the round's arity,
// commit each chunk as a Merkle leaf, draw a folding challenge beta, and
// fold both the coefficient and evaluation representations for the next
// round.
func committedTrees(cfg Config, coeffs []field.Quadratic, values []field.Quadratic, chal *challenger.Challenger) ([]*merkle.Tree, []field.Quadratic, error) {
	var trees []*merkle.Tree

	shift := field.NewElement(field.Generator)

	for _, arityBits := range cfg.ReductionArityBits {
		arity := 1 << arityBits

		reverseBitsQuadratic(values)
		chunked := chunkAndFlatten(values, arity)

		tree, err := merkle.NewTree(chunked, cfg.CapHeight)
		if err != nil {
			return nil, nil, fmt.Errorf("fri: commit round tree: %w", err)
		}
		chal.ObserveCap(tree.Cap())
		trees = append(trees, tree)

		beta := chal.GetExtensionChallenge()

		coeffs = foldCoeffs(coeffs, arity, beta)
		shift = shift.Exp(uint64(arity))
		values = evaluateAtCoset(coeffs, shift)
	}

	rate := 1 << cfg.RateBits
	if rate > 0 && len(coeffs) >= rate {
		keep := len(coeffs) / rate
		for _, c := range coeffs[keep:] {
			if !c.IsZero() {
				return nil, nil, fmt.Errorf("fri: final polynomial tail is nonzero — witness does not have the claimed low degree")
			}
		}
		coeffs = coeffs[:keep]
	}

	chal.ObserveExtensionElements(coeffs)
	return trees, coeffs, nil
}

func chunkAndFlatten(values []field.Quadratic, arity int) [][]field.Element {
	numChunks := len(values) / arity
	chunks := make([][]field.Element, numChunks)
	for i := 0; i < numChunks; i++ {
		chunks[i] = flatten(values[i*arity : (i+1)*arity])
	}
	return chunks
}

func foldCoeffs(coeffs []field.Quadratic, arity int, beta field.Quadratic) []field.Quadratic {
	numChunks := len(coeffs) / arity
	out := make([]field.Quadratic, numChunks)
	for i := 0; i < numChunks; i++ {
		out[i] = reduceWithPowers(coeffs[i*arity:(i+1)*arity], beta)
	}
	return out
}

// evaluateAtCoset re-evaluates the (now shorter) coefficient vector over a
// coset of the shrunken domain, one extension coordinate at a time, using
// field.CosetFFT on each of the two base-field component polynomials.
func evaluateAtCoset(coeffs []field.Quadratic, shift field.Element) []field.Quadratic {
	a0 := make([]field.Element, len(coeffs))
	a1 := make([]field.Element, len(coeffs))
	for i, c := range coeffs {
		a0[i] = c.A0
		a1[i] = c.A1
	}
	field.CosetFFT(a0, shift)
	field.CosetFFT(a1, shift)

	out := make([]field.Quadratic, len(coeffs))
	for i := range out {
		out[i] = field.Quadratic{A0: a0[i], A1: a1[i]}
	}
	return out
}

func reverseBitsQuadratic(values []field.Quadratic) {
	n := len(values)
	bitsLen := bits.Len(uint(n - 1))
	for i := 0; i < n; i++ {
		j := reverse(uint(i), bitsLen)
		if i < int(j) {
			values[i], values[j] = values[j], values[i]
		}
	}
}

func reverse(x uint, bitsLen int) uint {
	var r uint
	for i := 0; i < bitsLen; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// proofOfWork searches for a witness w such that hashing chal's current
// state together with w produces a digest with at least powBits leading
// zero bits, partitioning the search space across GOMAXPROCS workers and
// taking the first witness any worker finds (spec.md §4.6, §5).
func proofOfWork(hash [4]field.Element, powBits uint32) (field.Element, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var found uint64
	var foundOnce sync.Once
	var foundAny atomic.Bool

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := uint64(w)
		stride := uint64(workers)
		g.Go(func() error {
			for i := start; i < field.Modulus; i += stride {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if leadingZeros(hash, i) >= powBits {
					foundOnce.Do(func() {
						found = i
						foundAny.Store(true)
						cancel()
					})
					return nil
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return field.Element{}, err
	}
	if !foundAny.Load() {
		return field.Element{}, fmt.Errorf("fri: proof-of-work search exhausted without a witness")
	}
	return field.NewElement(found), nil
}

func leadingZeros(hash [4]field.Element, witness uint64) uint32 {
	digest := challenger.HashWithWitness(hash, witness)
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(digest[i]) << (8 * uint(i))
	}
	return uint32(bits.LeadingZeros64(v))
}

// proverQueryRound implements the query phase for a single sampled index
// (spec.md §4.6): draw an index from the challenger, open every initial
// tree at that index, then open each commit-phase tree at the
// progressively right-shifted index.
func proverQueryRound(initialTrees []*merkle.Tree, trees []*merkle.Tree, chal *challenger.Challenger, n int, cfg Config) QueryRound {
	x := chal.GetChallenge()
	xIndex := int(x.Uint64() % uint64(n))
	xIndex0 := xIndex

	initial := InitialTreesProof{
		Leafs: make([][]field.Element, len(initialTrees)),
		Paths: make([]merkle.Path, len(initialTrees)),
	}
	for i, t := range initialTrees {
		leaf, path := t.Open(xIndex)
		initial.Leafs[i] = leaf
		initial.Paths[i] = path
	}

	steps := make([]QueryStep, len(trees))
	for i, t := range trees {
		arityBits := cfg.ReductionArityBits[i]
		leaf, path := t.Open(xIndex >> arityBits)
		steps[i] = QueryStep{Evals: unflatten(leaf), Path: path}
		xIndex >>= arityBits
	}

	return QueryRound{Index: xIndex0, InitialTrees: initial, Steps: steps}
}
