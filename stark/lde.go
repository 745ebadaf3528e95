package stark

import (
	"fmt"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
)

// ldeShift is the coset shift used for every low-degree extension in this
// package; a fixed multiplicative generator keeps the coset disjoint from
// the trace domain's subgroup of roots of unity, which is what makes
// pointwise division by the vanishing polynomial valid.
var ldeShift = field.NewElement(field.Generator)

// commitment is a table's trace or auxiliary commitment: per-column
// coefficient vectors (on the un-extended trace domain), per-column LDE
// values (on the blowup-times-larger coset), and the Merkle tree over the
// LDE values with all columns of one domain point in a single leaf.
type commitment struct {
	n          int // trace domain size (power of two)
	blowup     int // LDE domain size / n
	coeffs     [][]field.Element
	lde        [][]field.Element
	tree       *merkle.Tree
	numColumns int
}

func commitColumns(cols [][]field.Element, n int, blowupBits int, capHeight int) (*commitment, error) {
	blowup := 1 << blowupBits
	m := n * blowup

	coeffs := make([][]field.Element, len(cols))
	lde := make([][]field.Element, len(cols))

	for c, col := range cols {
		if len(col) != n {
			return nil, fmt.Errorf("stark: column %d has length %d, expected %d", c, len(col), n)
		}
		coeff := make([]field.Element, n)
		copy(coeff, col)
		field.InverseFFT(coeff)
		coeffs[c] = coeff

		padded := make([]field.Element, m)
		copy(padded, coeff)
		field.CosetFFT(padded, ldeShift)
		lde[c] = padded
	}

	leaves := make([][]field.Element, m)
	for i := 0; i < m; i++ {
		leaf := make([]field.Element, len(cols))
		for c := range cols {
			leaf[c] = lde[c][i]
		}
		leaves[i] = leaf
	}

	tree, err := merkle.NewTree(leaves, capHeight)
	if err != nil {
		return nil, fmt.Errorf("stark: committing trace: %w", err)
	}

	return &commitment{
		n:          n,
		blowup:     blowup,
		coeffs:     coeffs,
		lde:        lde,
		tree:       tree,
		numColumns: len(cols),
	}, nil
}

// localNext returns the full column vector at LDE index i and at the
// corresponding "next row" index i+blowup (mod domain size), the offset
// that lifts the trace domain's +1 step onto the larger coset.
func (c *commitment) localNext(i int) (local, next []field.Element) {
	m := c.n * c.blowup
	j := (i + c.blowup) % m
	local = make([]field.Element, c.numColumns)
	next = make([]field.Element, c.numColumns)
	for col := 0; col < c.numColumns; col++ {
		local[col] = c.lde[col][i]
		next[col] = c.lde[col][j]
	}
	return local, next
}

// evalAtZeta evaluates every column's coefficient polynomial at an
// extension-field point via Horner's method, returning one opening per
// column (spec.md §4.7 step 3f).
func (c *commitment) evalAtZeta(zeta field.Quadratic) []field.Quadratic {
	out := make([]field.Quadratic, c.numColumns)
	for col := 0; col < c.numColumns; col++ {
		out[col] = hornerBase(c.coeffs[col], zeta)
	}
	return out
}

func hornerBase(coeffs []field.Element, x field.Quadratic) field.Quadratic {
	acc := field.ZeroQuadratic()
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(field.FromBase(coeffs[i]))
	}
	return acc
}

// vanishingAt evaluates Z_H(x) = x^n - 1 for the trace domain of size n.
func vanishingAt(x field.Quadratic, n int) field.Quadratic {
	return x.Exp(uint64(n)).Sub(field.OneQuadratic())
}

// traceDomainGenerator returns the generator g of the trace domain's
// subgroup of roots of unity, so the verifier and prover agree on the
// "next row" point g*zeta used in openings.
func traceDomainGenerator(n int) field.Element {
	return field.RootOfUnity(logTwo(n))
}

// tableBlowupBits sizes a table's LDE domain so it comfortably contains
// both the quotient polynomial (degree up to (ConstraintDegree-1)*n, since
// the constraint polynomial has degree ConstraintDegree*n and is divided
// by the degree-n vanishing polynomial) and the FRI rate margin
// cfg.FRI.RateBits asks for on top of that true degree bound.
func tableBlowupBits(cfg Config, constraintDegree int) int {
	return cfg.FRI.RateBits + ceilLog2(constraintDegree)
}

func ceilLog2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
