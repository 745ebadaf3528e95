package stark

import (
	"fmt"

	"github.com/goldstark/goldstark/field"
)

// gammaPowers returns gamma^0..gamma^(count-1), computed once rather than
// repeatedly from scratch, for the batched DEEP composition below.
func gammaPowers(gamma field.Quadratic, count int) []field.Quadratic {
	out := make([]field.Quadratic, count)
	p := field.OneQuadratic()
	for i := range out {
		out[i] = p
		p = p.Mul(gamma)
	}
	return out
}

// compositionGroup is one committed column set's contribution to the DEEP
// composition below: its width and its claimed openings at zeta and g*zeta.
// The main trace is always one group; a table with a lookup argument adds a
// second group for its auxiliary columns.
type compositionGroup struct {
	numColumns int
	local      []field.Quadratic
	next       []field.Quadratic
}

func groupWidth(groups []compositionGroup) int {
	total := 0
	for _, g := range groups {
		total += g.numColumns
	}
	return total
}

// buildComposition constructs the DEEP-ALI polynomial FRI actually tests:
// for every committed column f (across every group, trace first then
// auxiliary) with claimed openings f(zeta)=local[c] and f(g*zeta)=next[c],
// and the quotient q with claimed opening q(zeta), it batches
//
//	Σ_c gamma^c · (f_c(x) - local[c])/(x - zeta)
//	  + Σ_c gamma^(nc+c) · (f_c(x) - next[c])/(x - g*zeta)
//	  + gamma^(2nc) · (q(x) - Quotient)/(x - zeta)
//
// pointwise across the LDE domain. Each term's numerator has an honest
// root at its pole (the claimed opening is exactly the trace/quotient
// polynomial's true value there), so the quotient is a polynomial, not a
// rational function with a pole — this is why it can be computed pointwise
// without ever forming (x - zeta) as a polynomial divisor.
func buildComposition(traces []*commitment, groups []compositionGroup, quot *quotient, zeta, gZeta field.Quadratic, quotOpen field.Quadratic, gamma field.Quadratic) []field.Quadratic {
	nc := groupWidth(groups)
	powers := gammaPowers(gamma, 2*nc+1)

	m := traces[0].n * traces[0].blowup
	rootM := field.RootOfUnity(logTwo(m))

	values := make([]field.Quadratic, m)
	x := ldeShift
	for i := 0; i < m; i++ {
		xq := field.FromBase(x)
		invXZeta := xq.Sub(zeta).Inverse()
		invXGZeta := xq.Sub(gZeta).Inverse()

		acc := field.ZeroQuadratic()
		p := 0
		for gi, g := range groups {
			for c := 0; c < g.numColumns; c++ {
				num := field.FromBase(traces[gi].lde[c][i]).Sub(g.local[c])
				acc = acc.Add(powers[p].Mul(num).Mul(invXZeta))
				p++
			}
		}
		for gi, g := range groups {
			for c := 0; c < g.numColumns; c++ {
				num := field.FromBase(traces[gi].lde[c][i]).Sub(g.next[c])
				acc = acc.Add(powers[p].Mul(num).Mul(invXGZeta))
				p++
			}
		}
		quotNum := quot.values[i].Sub(quotOpen)
		acc = acc.Add(powers[p].Mul(quotNum).Mul(invXZeta))

		values[i] = acc
		x = x.Mul(rootM)
	}

	return values
}

// combineAtQuery recomputes the same DEEP composition value the prover
// committed to FRI, but using only the single query index's initial-tree
// openings (one leaf per group plus the quotient leaf) plus the publicly
// known openings and challenges — the verifier-side half of
// buildComposition, and the function fri.Verify's CombineFunc seam exists
// for.
func combineAtQuery(index, m int, groups []compositionGroup, zeta, gZeta field.Quadratic, quotOpen field.Quadratic, gamma field.Quadratic, leaves [][]field.Element, quotientLeaf []field.Element) (field.Quadratic, error) {
	if len(leaves) != len(groups) {
		return field.Quadratic{}, fmt.Errorf("stark: got %d leaves, expected %d groups", len(leaves), len(groups))
	}
	for gi, g := range groups {
		if len(leaves[gi]) != g.numColumns {
			return field.Quadratic{}, fmt.Errorf("stark: group %d leaf has %d columns, expected %d", gi, len(leaves[gi]), g.numColumns)
		}
	}
	if len(quotientLeaf) != 2 {
		return field.Quadratic{}, fmt.Errorf("stark: quotient leaf has %d elements, expected 2", len(quotientLeaf))
	}

	x := ldeShift.Mul(field.RootOfUnity(logTwo(m)).Exp(uint64(index)))
	xq := field.FromBase(x)
	invXZeta := xq.Sub(zeta).Inverse()
	invXGZeta := xq.Sub(gZeta).Inverse()

	nc := groupWidth(groups)
	powers := gammaPowers(gamma, 2*nc+1)

	acc := field.ZeroQuadratic()
	p := 0
	for gi, g := range groups {
		for c := 0; c < g.numColumns; c++ {
			num := field.FromBase(leaves[gi][c]).Sub(g.local[c])
			acc = acc.Add(powers[p].Mul(num).Mul(invXZeta))
			p++
		}
	}
	for gi, g := range groups {
		for c := 0; c < g.numColumns; c++ {
			num := field.FromBase(leaves[gi][c]).Sub(g.next[c])
			acc = acc.Add(powers[p].Mul(num).Mul(invXGZeta))
			p++
		}
	}
	quotientValue := field.Quadratic{A0: quotientLeaf[0], A1: quotientLeaf[1]}
	quotNum := quotientValue.Sub(quotOpen)
	acc = acc.Add(powers[p].Mul(quotNum).Mul(invXZeta))

	return acc, nil
}

// combinedWithAux folds a table's base-field transition constraints
// (cheaply evaluated pointwise many times across the full LDE domain) and
// its already-extension-valued auxiliary/permutation constraints into one
// alpha-combined sum, continuing the same power sequence across both
// groups. Returning the power alongside the sum lets a boundary-constraint
// group continue the sequence afterward, so the prover's quotient and the
// verifier's out-of-domain check agree on which alpha power lands on which
// constraint.
func combinedWithAux(baseConstraints []field.Element, auxConstraints []field.Quadratic, alpha field.Quadratic) (sum field.Quadratic, nextPower field.Quadratic) {
	power := field.OneQuadratic()
	for _, c := range baseConstraints {
		sum = sum.Add(power.MulBase(c))
		power = power.Mul(alpha)
	}
	for _, c := range auxConstraints {
		sum = sum.Add(power.Mul(c))
		power = power.Mul(alpha)
	}
	return sum, power
}

// combinedExtension folds already extension-valued constraints into an
// alpha-combined sum starting from startPower, mirroring combinedWithAux's
// power sequencing for the out-of-domain check, where every constraint
// (transition or boundary) is evaluated directly at the extension-field
// openings.
func combinedExtension(constraints []field.Quadratic, startPower field.Quadratic, alpha field.Quadratic) (sum field.Quadratic, nextPower field.Quadratic) {
	power := startPower
	for _, c := range constraints {
		sum = sum.Add(power.Mul(c))
		power = power.Mul(alpha)
	}
	return sum, power
}
