package field

// Quadratic is an element of the degree-2 extension F_{p^2} = F[X]/(X^2 - W),
// with W = 7 (the same non-residue plonky2 uses for the Goldilocks
// quadratic extension). Fiat-Shamir challenges and FRI folding coefficients
// live in this type.
type Quadratic struct {
	A0, A1 Element
}

// nonResidue is the W in X^2 - W.
var nonResidue = NewElement(7)

// ZeroQuadratic returns the additive identity of F_{p^2}.
func ZeroQuadratic() Quadratic { return Quadratic{} }

// OneQuadratic returns the multiplicative identity of F_{p^2}.
func OneQuadratic() Quadratic { return Quadratic{A0: One()} }

// FromBase embeds a base field element into the extension.
func FromBase(a Element) Quadratic { return Quadratic{A0: a} }

// IsZero reports whether q is the additive identity.
func (q Quadratic) IsZero() bool { return q.A0.IsZero() && q.A1.IsZero() }

// Equal reports whether q and r are equal.
func (q Quadratic) Equal(r Quadratic) bool { return q.A0.Equal(r.A0) && q.A1.Equal(r.A1) }

// Add returns q+r.
func (q Quadratic) Add(r Quadratic) Quadratic {
	return Quadratic{A0: q.A0.Add(r.A0), A1: q.A1.Add(r.A1)}
}

// Sub returns q-r.
func (q Quadratic) Sub(r Quadratic) Quadratic {
	return Quadratic{A0: q.A0.Sub(r.A0), A1: q.A1.Sub(r.A1)}
}

// Neg returns -q.
func (q Quadratic) Neg() Quadratic { return Quadratic{A0: q.A0.Neg(), A1: q.A1.Neg()} }

// MulBase returns q scaled by a base field element.
func (q Quadratic) MulBase(a Element) Quadratic {
	return Quadratic{A0: q.A0.Mul(a), A1: q.A1.Mul(a)}
}

// Mul returns q*r, computed as (a0+a1 X)(b0+b1 X) = a0 b0 + W a1 b1 + (a0 b1 + a1 b0) X.
func (q Quadratic) Mul(r Quadratic) Quadratic {
	a0b0 := q.A0.Mul(r.A0)
	a1b1 := q.A1.Mul(r.A1)
	crossA := q.A0.Mul(r.A1)
	crossB := q.A1.Mul(r.A0)
	return Quadratic{
		A0: a0b0.Add(a1b1.Mul(nonResidue)),
		A1: crossA.Add(crossB),
	}
}

// Square returns q*q.
func (q Quadratic) Square() Quadratic { return q.Mul(q) }

// normSquare returns a0^2 - W a1^2, the field norm used for inversion.
func (q Quadratic) normSquare() Element {
	return q.A0.Square().Sub(q.A1.Square().Mul(nonResidue))
}

// Inverse returns q^-1. Panics on zero.
func (q Quadratic) Inverse() Quadratic {
	if q.IsZero() {
		panic("field: inverse of zero extension element")
	}
	nInv := q.normSquare().Inverse()
	return Quadratic{A0: q.A0.Mul(nInv), A1: q.A1.Neg().Mul(nInv)}
}

// Exp returns q^e via square-and-multiply.
func (q Quadratic) Exp(e uint64) Quadratic {
	result := OneQuadratic()
	base := q
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}
