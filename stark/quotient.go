package stark

import (
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
	"github.com/goldstark/goldstark/table"
)

// quotient holds the committed low-degree extension of a table's quotient
// polynomial: the coefficient vector FRI folds and the Merkle tree over its
// LDE values, alongside the values themselves for opening at query indices.
type quotient struct {
	coeffs []field.Quadratic
	values []field.Quadratic
	tree   *merkle.Tree
}

// buildQuotient evaluates tbl's alpha-combined constraint polynomial
// pointwise across the full LDE coset and divides by the trace domain's
// vanishing polynomial Z_H(x) = x^n - 1 (spec.md §4.6, §9): since the LDE
// coset shift*<root of unity> is disjoint from the trace subgroup H of
// order trace.n, Z_H never vanishes there and this pointwise division
// recovers the quotient's own evaluations without polynomial long division.
//
// A table with a lookup argument (aux != nil) contributes two constraint
// groups instead of one: its transition constraints (main Eval plus the
// grand-product EvalAux, which shares the transition group's alpha powers
// and divisor since it too must hold cyclically at every row) divide by
// Z_H(x) same as always, while its lone boundary constraint (Z[0] = 1, not
// true at every row) divides by (x - 1) instead — the vanishing polynomial
// of the trace domain's identity element, the only point that constraint is
// required to hold at.
func buildQuotient(tbl table.Table, trace, aux *commitment, alpha, beta, gamma field.Quadratic, capHeight int) (*quotient, error) {
	m := trace.n * trace.blowup
	logM := logTwo(m)
	rootM := field.RootOfUnity(logM)

	values := make([]field.Quadratic, m)
	x := ldeShift
	for i := 0; i < m; i++ {
		local, next := trace.localNext(i)
		constraints := tbl.Eval(local, next)

		var auxConstraints []field.Quadratic
		var auxLocal []field.Element
		if aux != nil {
			var auxNext []field.Element
			auxLocal, auxNext = aux.localNext(i)
			auxConstraints = tbl.EvalAux(local, next, auxLocal, auxNext, beta, gamma)
		}
		combined, nextPower := combinedWithAux(constraints, auxConstraints, alpha)

		invZH := vanishingBase(x, trace.n).Inverse()
		transitionTerm := combined.MulBase(invZH)

		boundaryTerm := field.ZeroQuadratic()
		if aux != nil {
			boundaryConstraints := tbl.EvalBoundary(auxLocal)
			boundaryCombined, _ := combinedExtension(boundaryConstraints, nextPower, alpha)
			invBoundary := x.Sub(field.One()).Inverse()
			boundaryTerm = boundaryCombined.MulBase(invBoundary)
		}

		values[i] = transitionTerm.Add(boundaryTerm)

		x = x.Mul(rootM)
	}

	a0 := make([]field.Element, m)
	a1 := make([]field.Element, m)
	for i, v := range values {
		a0[i] = v.A0
		a1[i] = v.A1
	}
	field.CosetIFFT(a0, ldeShift)
	field.CosetIFFT(a1, ldeShift)

	coeffs := make([]field.Quadratic, m)
	for i := range coeffs {
		coeffs[i] = field.Quadratic{A0: a0[i], A1: a1[i]}
	}

	leaves := make([][]field.Element, m)
	for i, v := range values {
		leaves[i] = []field.Element{v.A0, v.A1}
	}
	tree, err := merkle.NewTree(leaves, capHeight)
	if err != nil {
		return nil, err
	}

	return &quotient{coeffs: coeffs, values: values, tree: tree}, nil
}

// evalAtZeta evaluates the quotient's coefficient polynomial at zeta via
// Horner's method over the extension field.
func (q *quotient) evalAtZeta(zeta field.Quadratic) field.Quadratic {
	return hornerExt(q.coeffs, zeta)
}

func hornerExt(coeffs []field.Quadratic, x field.Quadratic) field.Quadratic {
	acc := field.ZeroQuadratic()
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(coeffs[i])
	}
	return acc
}

// vanishingBase evaluates Z_H(x) = x^n - 1 over the base field.
func vanishingBase(x field.Element, n int) field.Element {
	return x.Exp(uint64(n)).Sub(field.One())
}

func logTwo(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
