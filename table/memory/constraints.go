package memory

import (
	"github.com/consensys/gnark/frontend"

	"github.com/goldstark/goldstark/backend"
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/register"
)

// ConstraintDegree is the maximum algebraic degree among this table's
// constraints (the read-consistency gate next_is_read * ts_fc * Δval is
// degree 3).
const ConstraintDegree = 3

// Table implements table.Table for the read/write memory argument.
type Table struct{}

func (Table) Name() string          { return "memory" }
func (Table) NumColumns() int       { return register.NumMemoryColumns }
func (Table) ConstraintDegree() int { return ConstraintDegree }

func (Table) Eval(local, next []field.Element) []field.Element { return Eval(local, next) }

func (Table) EvalRecursive(api frontend.API, local, next []frontend.Variable) {
	EvalRecursive(api, local, next)
}

func (Table) EvalExtension(local, next []field.Quadratic) []field.Quadratic {
	return EvalExtension(local, next)
}

func (Table) NumAuxColumns() int { return register.NumMemoryAuxColumns }

func (Table) EvalAux(local, next, auxLocal, auxNext []field.Element, beta, gamma field.Quadratic) []field.Quadratic {
	return EvalAux(local, next, auxLocal, auxNext, beta, gamma)
}

func (Table) EvalAuxRecursive(api frontend.API, local, next, auxLocal, auxNext []frontend.Variable, beta, gamma [2]frontend.Variable) {
	EvalAuxRecursive(api, local, next, auxLocal, auxNext, beta, gamma)
}

func (Table) EvalAuxExtension(local, next, auxLocal, auxNext []field.Quadratic, beta, gamma field.Quadratic) []field.Quadratic {
	return EvalAuxExtension(local, next, auxLocal, auxNext, beta, gamma)
}

func (Table) EvalBoundary(auxLocal []field.Element) []field.Quadratic {
	return EvalBoundary(auxLocal)
}

func (Table) EvalBoundaryRecursive(api frontend.API, auxLocal []frontend.Variable) {
	EvalBoundaryRecursive(api, auxLocal)
}

func (Table) EvalBoundaryExtension(auxLocal []field.Quadratic) []field.Quadratic {
	return EvalBoundaryExtension(auxLocal)
}

// Eval evaluates every memory constraint natively over the base field.
func Eval(local, next []field.Element) []field.Element {
	return evalConstraints[field.Element](backend.Field{}, local, next)
}

// EvalRecursive evaluates the identical constraint set inside a gnark
// circuit and asserts every value equals zero.
func EvalRecursive(api frontend.API, local, next []frontend.Variable) {
	ar := backend.Circuit{API: api}
	for _, v := range evalConstraints[frontend.Variable](ar, local, next) {
		api.AssertIsEqual(v, 0)
	}
}

// EvalExtension evaluates the identical constraint set over the degree-2
// extension field, for the out-of-domain consistency check.
func EvalExtension(local, next []field.Quadratic) []field.Quadratic {
	return evalConstraints[field.Quadratic](backend.Extension{}, local, next)
}

// evalConstraints is the constraint text shared by all three backends
// (spec.md §4.5). Every returned value must be zero for a valid sorted log.
func evalConstraints[T any](ar backend.Arithmetic[T], local, next []T) []T {
	var out []T

	ctxFC := local[register.MemoryContextFirstChange]
	segFC := local[register.MemorySegmentFirstChange]
	virtFC := local[register.MemoryVirtualFirstChange]

	one := ar.Const(1)

	// Booleanity of the first-change indicators.
	for _, fc := range []T{ctxFC, segFC, virtFC} {
		out = append(out, ar.Mul(fc, ar.Sub(one, fc)))
	}

	dCtx := ar.Sub(next[register.SortedMemoryAddrContext], local[register.SortedMemoryAddrContext])
	dSeg := ar.Sub(next[register.SortedMemoryAddrSegment], local[register.SortedMemoryAddrSegment])
	dVirt := ar.Sub(next[register.SortedMemoryAddrVirtual], local[register.SortedMemoryAddrVirtual])
	dTs := ar.Sub(next[register.SortedMemoryTimestamp], local[register.SortedMemoryTimestamp])

	// Same-value-when-not-first-change: the corrected polarity (spec.md
	// §9) is "(1 - fc) * delta = 0", since fc = 1 marks the row where that
	// coordinate is about to change. A change in a higher-priority
	// coordinate also releases the lower ones, so seg is held only while
	// neither ctx nor seg changes, and virt only while none of the three does.
	out = append(out, ar.Mul(ar.Sub(one, ctxFC), dCtx))
	out = append(out, ar.Mul(ar.Sub(ar.Sub(one, ctxFC), segFC), dSeg))
	out = append(out, ar.Mul(ar.Sub(ar.Sub(ar.Sub(one, ctxFC), segFC), virtFC), dVirt))

	// Range check: the one-hot-selected delta-minus-one must equal the
	// witnessed range_check cell, enforcing strict monotonic ordering.
	tsFC := ar.Sub(ar.Sub(ar.Sub(one, ctxFC), segFC), virtFC)
	rangeCheck := ar.Add(
		ar.Add(
			ar.Mul(ctxFC, ar.Sub(dCtx, one)),
			ar.Mul(segFC, ar.Sub(dSeg, one)),
		),
		ar.Add(
			ar.Mul(virtFC, ar.Sub(dVirt, one)),
			ar.Mul(tsFC, ar.Sub(dTs, one)),
		),
	)
	out = append(out, ar.Sub(local[register.MemoryRangeCheck], rangeCheck))

	// Read-consistency: when only the timestamp changes (tsFC = 1) and the
	// next row is a read, its value must equal the current row's value.
	nextIsRead := next[register.SortedMemoryIsRead]
	gate := ar.Mul(nextIsRead, tsFC)
	for i := 0; i < register.ValueLimbs; i++ {
		dVal := ar.Sub(next[register.SortedMemoryValueLimb(i)], local[register.SortedMemoryValueLimb(i)])
		out = append(out, ar.Mul(gate, dVal))
	}

	return out
}

// memoryColumnIndices lists the column indices of one memory operation's
// tuple (ctx, seg, virt, val, is_read, ts) — the unsorted copy when sorted
// is false, the sorted copy when sorted is true — in the fixed order the
// grand-product row term combines them.
func memoryColumnIndices(sorted bool) []int {
	idx := make([]int, 0, 3+register.ValueLimbs+2)
	if sorted {
		idx = append(idx, register.SortedMemoryAddrContext, register.SortedMemoryAddrSegment, register.SortedMemoryAddrVirtual)
		for i := 0; i < register.ValueLimbs; i++ {
			idx = append(idx, register.SortedMemoryValueLimb(i))
		}
		return append(idx, register.SortedMemoryIsRead, register.SortedMemoryTimestamp)
	}
	idx = append(idx, register.MemoryAddrContext, register.MemoryAddrSegment, register.MemoryAddrVirtual)
	for i := 0; i < register.ValueLimbs; i++ {
		idx = append(idx, register.MemoryValueLimb(i))
	}
	return append(idx, register.MemoryIsRead, register.MemoryTimestamp)
}

// extGenerator is w = X, the degree-2 extension's basis element above the
// base field (field.Quadratic{A1: 1}), used to recombine a base-field
// quantity split across two columns (Z0, Z1) back into one extension value.
var extGenerator = field.Quadratic{A1: field.One()}

// rowTermNative combines one row's tuple into the grand-product row term
// beta + Σ gamma^k * col_k, lifting base-field trace cells into the
// extension via FromBase (spec.md §4.5/§4.7's lookup-style binding).
func rowTermNative(row []field.Element, idx []int, beta, gamma field.Quadratic) field.Quadratic {
	term := beta
	power := field.OneQuadratic()
	for _, i := range idx {
		term = term.Add(power.MulBase(row[i]))
		power = power.Mul(gamma)
	}
	return term
}

// rowTermExt is rowTermNative's counterpart when the row's cells are
// themselves already extension-valued (out-of-domain openings).
func rowTermExt(row []field.Quadratic, idx []int, beta, gamma field.Quadratic) field.Quadratic {
	term := beta
	power := field.OneQuadratic()
	for _, i := range idx {
		term = term.Add(power.Mul(row[i]))
		power = power.Mul(gamma)
	}
	return term
}

// reconstructZNative recombines the auxiliary trace's two base-field limbs
// into the running-product value Z = Z0 + w*Z1 they encode.
func reconstructZNative(auxRow []field.Element) field.Quadratic {
	return field.Quadratic{A0: auxRow[register.MemoryPermutationZ0], A1: auxRow[register.MemoryPermutationZ1]}
}

// reconstructZExt is reconstructZNative's counterpart when Z0 and Z1 are
// themselves already-opened extension values rather than raw trace cells:
// each is the independent extension-field evaluation of its own base-field
// coefficient polynomial, so they recombine through genuine Quadratic
// arithmetic against the basis element rather than a struct literal.
func reconstructZExt(auxRow []field.Quadratic) field.Quadratic {
	return auxRow[register.MemoryPermutationZ0].Add(auxRow[register.MemoryPermutationZ1].Mul(extGenerator))
}

// EvalAux evaluates the grand-product transition constraint binding the
// unsorted memory log to the sorted one (spec.md §4.5's defining property):
// Z advances row by row as Z_next * sorted_term = Z_local * unsorted_term,
// where both terms read from the same physical row (the unsorted and
// sorted columns of row i live side by side in that row). Running this
// cyclically around the full trace domain, together with the boundary
// constraint Z[0] = 1 below, forces the product of unsorted terms to equal
// the product of sorted terms, which holds (with overwhelming probability
// over the verifier's random beta, gamma) exactly when the two multisets
// of (ctx, seg, virt, val, is_read, ts) tuples are equal.
func EvalAux(local, next, auxLocal, auxNext []field.Element, beta, gamma field.Quadratic) []field.Quadratic {
	zLocal := reconstructZNative(auxLocal)
	zNext := reconstructZNative(auxNext)
	unsorted := rowTermNative(local, memoryColumnIndices(false), beta, gamma)
	sorted := rowTermNative(local, memoryColumnIndices(true), beta, gamma)
	return []field.Quadratic{zNext.Mul(sorted).Sub(zLocal.Mul(unsorted))}
}

// EvalAuxExtension is EvalAux evaluated at already-opened extension values,
// for the out-of-domain consistency check.
func EvalAuxExtension(local, next, auxLocal, auxNext []field.Quadratic, beta, gamma field.Quadratic) []field.Quadratic {
	zLocal := reconstructZExt(auxLocal)
	zNext := reconstructZExt(auxNext)
	unsorted := rowTermExt(local, memoryColumnIndices(false), beta, gamma)
	sorted := rowTermExt(local, memoryColumnIndices(true), beta, gamma)
	return []field.Quadratic{zNext.Mul(sorted).Sub(zLocal.Mul(unsorted))}
}

// EvalBoundary pins the running product's starting value: Z[0] must equal
// the extension field's multiplicative identity, since without this the
// transition constraint alone is satisfied vacuously by an all-zero Z.
func EvalBoundary(auxLocal []field.Element) []field.Quadratic {
	z := reconstructZNative(auxLocal)
	return []field.Quadratic{z.Sub(field.OneQuadratic())}
}

// EvalBoundaryExtension is EvalBoundary evaluated at an already-opened
// extension value, for the out-of-domain consistency check.
func EvalBoundaryExtension(auxLocal []field.Quadratic) []field.Quadratic {
	z := reconstructZExt(auxLocal)
	return []field.Quadratic{z.Sub(field.OneQuadratic())}
}

// extVar is a degree-2 extension-field element inside a gnark circuit,
// mirroring field.Quadratic's representation so EvalAuxRecursive can assert
// the grand-product constraint with the same arithmetic the native and
// extension passes use.
type extVar struct {
	a0, a1 frontend.Variable
}

// extNonResidue is the non-residue the extension's multiplication reduces
// by (field.Quadratic's W), mirrored here as a circuit constant.
const extNonResidue = 7

func extAdd(api frontend.API, a, b extVar) extVar {
	return extVar{a0: api.Add(a.a0, b.a0), a1: api.Add(a.a1, b.a1)}
}

func extSub(api frontend.API, a, b extVar) extVar {
	return extVar{a0: api.Sub(a.a0, b.a0), a1: api.Sub(a.a1, b.a1)}
}

// extMul computes (a0+a1X)(b0+b1X) = a0b0 + W*a1b1 + (a0b1+a1b0)X, the same
// formula field.Quadratic.Mul uses over the base field.
func extMul(api frontend.API, a, b extVar) extVar {
	a0b0 := api.Mul(a.a0, b.a0)
	a1b1 := api.Mul(a.a1, b.a1)
	a0b1 := api.Mul(a.a0, b.a1)
	a1b0 := api.Mul(a.a1, b.a0)
	return extVar{
		a0: api.Add(a0b0, api.Mul(a1b1, extNonResidue)),
		a1: api.Add(a0b1, a1b0),
	}
}

func extMulByBase(api frontend.API, a extVar, scalar frontend.Variable) extVar {
	return extVar{a0: api.Mul(a.a0, scalar), a1: api.Mul(a.a1, scalar)}
}

func reconstructZRecursive(auxRow []frontend.Variable) extVar {
	return extVar{a0: auxRow[register.MemoryPermutationZ0], a1: auxRow[register.MemoryPermutationZ1]}
}

func rowTermRecursive(api frontend.API, row []frontend.Variable, idx []int, beta, gamma extVar) extVar {
	term := beta
	power := extVar{a0: 1, a1: 0}
	for _, i := range idx {
		term = extAdd(api, term, extMulByBase(api, power, row[i]))
		power = extMul(api, power, gamma)
	}
	return term
}

// EvalAuxRecursive is EvalAux's gnark-circuit counterpart, for the
// recursive verifier.
func EvalAuxRecursive(api frontend.API, local, next, auxLocal, auxNext []frontend.Variable, beta, gamma [2]frontend.Variable) {
	b := extVar{a0: beta[0], a1: beta[1]}
	g := extVar{a0: gamma[0], a1: gamma[1]}

	zLocal := reconstructZRecursive(auxLocal)
	zNext := reconstructZRecursive(auxNext)
	unsorted := rowTermRecursive(api, local, memoryColumnIndices(false), b, g)
	sorted := rowTermRecursive(api, local, memoryColumnIndices(true), b, g)

	diff := extSub(api, extMul(api, zNext, sorted), extMul(api, zLocal, unsorted))
	api.AssertIsEqual(diff.a0, 0)
	api.AssertIsEqual(diff.a1, 0)
}

// EvalBoundaryRecursive is EvalBoundary's gnark-circuit counterpart.
func EvalBoundaryRecursive(api frontend.API, auxLocal []frontend.Variable) {
	z := reconstructZRecursive(auxLocal)
	api.AssertIsEqual(z.a0, 1)
	api.AssertIsEqual(z.a1, 0)
}
