// Package memory implements the read/write memory argument (spec.md
// §4.4/§4.5): a permutation-style STARK proving that a sorted view of memory
// operations is consistent (reads return the last written value) and
// correctly ordered.
package memory

import (
	"fmt"
	"sort"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/register"
)

// Op is one memory operation before sorting.
type Op struct {
	Context   uint64
	Segment   uint64
	Virtual   uint64
	Value     [register.ValueLimbs]uint64
	IsRead    bool
	Timestamp uint64
}

// Row is one row of the memory trace, width register.NumMemoryColumns.
type Row [register.NumMemoryColumns]field.Element

// GenerateTrace lays out the unsorted log, stable-sorts it by
// (ctx, seg, virt, ts) into the sorted columns, and derives the first-change
// indicator columns and the range-check column (spec.md §4.4).
//
// Indicator polarity: ctx_fc[i] = 1 means ctx is the first coordinate that
// differs between sorted rows i and i+1 — i.e. it is set on the row where
// the change is about to happen, not on the row after. This is the
// "first column that changes" convention (spec.md §9), the opposite of the
// source's buggy "unchanged" polarity.
func GenerateTrace(ops []Op) ([]Row, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("memory: GenerateTrace requires a non-empty log")
	}

	sorted := make([]Op, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	padded := make([]Op, len(ops))
	copy(padded, ops)

	numRows := nextPowerOfTwo(len(ops))
	if numRows > len(ops) {
		last := sorted[len(sorted)-1]
		for k := 1; numRows > len(sorted); k++ {
			// Pad with synthetic writes at strictly increasing virtual
			// addresses: each padding row's virt_fc is the only set
			// indicator and its delta is exactly 1, so the range-check
			// column stays 0 (trivially within the external argument's
			// [0, 2^k) bound) without perturbing any real operation.
			pad := Op{
				Context:   last.Context,
				Segment:   last.Segment,
				Virtual:   last.Virtual + uint64(k),
				Value:     last.Value,
				IsRead:    false,
				Timestamp: last.Timestamp,
			}
			sorted = append(sorted, pad)
			padded = append(padded, pad)
		}
	}

	rows := make([]Row, numRows)
	for i, op := range padded {
		writeUnsorted(&rows[i], op)
	}
	for i, op := range sorted {
		writeSorted(&rows[i], op)
	}

	for i := 0; i < len(sorted); i++ {
		var ctxFC, segFC, virtFC field.Element
		if i+1 < len(sorted) {
			cur, next := sorted[i], sorted[i+1]
			switch {
			case cur.Context != next.Context:
				ctxFC = field.One()
			case cur.Segment != next.Segment:
				segFC = field.One()
			case cur.Virtual != next.Virtual:
				virtFC = field.One()
			}
		}
		rows[i][register.MemoryContextFirstChange] = ctxFC
		rows[i][register.MemorySegmentFirstChange] = segFC
		rows[i][register.MemoryVirtualFirstChange] = virtFC
		rows[i][register.MemoryRangeCheck] = rangeCheckValue(sorted, i, ctxFC, segFC, virtFC)
	}

	return rows, nil
}

// nextPowerOfTwo returns the smallest power of two >= n (n > 0).
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// less orders two operations by (ctx, seg, virt, ts) as unsigned integers,
// the key spec.md §4.4 requires the stable sort to use.
func less(a, b Op) bool {
	if a.Context != b.Context {
		return a.Context < b.Context
	}
	if a.Segment != b.Segment {
		return a.Segment < b.Segment
	}
	if a.Virtual != b.Virtual {
		return a.Virtual < b.Virtual
	}
	return a.Timestamp < b.Timestamp
}

func writeUnsorted(row *Row, op Op) {
	row[register.MemoryAddrContext] = field.NewElement(op.Context)
	row[register.MemoryAddrSegment] = field.NewElement(op.Segment)
	row[register.MemoryAddrVirtual] = field.NewElement(op.Virtual)
	for i := 0; i < register.ValueLimbs; i++ {
		row[register.MemoryValueLimb(i)] = field.NewElement(op.Value[i])
	}
	row[register.MemoryIsRead] = boolElement(op.IsRead)
	row[register.MemoryTimestamp] = field.NewElement(op.Timestamp)
}

func writeSorted(row *Row, op Op) {
	row[register.SortedMemoryAddrContext] = field.NewElement(op.Context)
	row[register.SortedMemoryAddrSegment] = field.NewElement(op.Segment)
	row[register.SortedMemoryAddrVirtual] = field.NewElement(op.Virtual)
	for i := 0; i < register.ValueLimbs; i++ {
		row[register.SortedMemoryValueLimb(i)] = field.NewElement(op.Value[i])
	}
	row[register.SortedMemoryIsRead] = boolElement(op.IsRead)
	row[register.SortedMemoryTimestamp] = field.NewElement(op.Timestamp)
}

func boolElement(b bool) field.Element {
	if b {
		return field.One()
	}
	return field.Zero()
}

// Transpose converts row-major trace rows into column-major polynomial
// values, the form spec.md §3 requires before Merkle commitment.
func Transpose(rows []Row) [register.NumMemoryColumns][]field.Element {
	var cols [register.NumMemoryColumns][]field.Element
	for c := range cols {
		cols[c] = make([]field.Element, len(rows))
	}
	for r, row := range rows {
		for c := 0; c < register.NumMemoryColumns; c++ {
			cols[c][r] = row[c]
		}
	}
	return cols
}

// AuxRow is one row of the auxiliary trace: the grand-product running
// product Z, split into its two base-field limbs (register.NumMemoryAuxColumns).
type AuxRow [register.NumMemoryAuxColumns]field.Element

// GenerateAuxTrace computes the grand-product running-product column Z
// binding rows' unsorted and sorted tuples (spec.md §4.5/§4.7), given the
// lookup challenge pair (beta, gamma) drawn after the main trace is
// committed. Z[0] = 1, and Z advances cyclically around the trace domain as
// Z[i+1] = Z[i] * unsorted_term(row i) / sorted_term(row i), so that going
// all the way around forces the unsorted and sorted multisets to match.
func GenerateAuxTrace(rows []Row, beta, gamma field.Quadratic) ([]AuxRow, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("memory: GenerateAuxTrace requires a non-empty trace")
	}

	unsortedIdx := memoryColumnIndices(false)
	sortedIdx := memoryColumnIndices(true)

	z := make([]field.Quadratic, n)
	z[0] = field.OneQuadratic()
	for i := 0; i < n-1; i++ {
		unsorted := rowTermNative(rows[i][:], unsortedIdx, beta, gamma)
		sorted := rowTermNative(rows[i][:], sortedIdx, beta, gamma)
		z[i+1] = z[i].Mul(unsorted).Mul(sorted.Inverse())
	}

	auxRows := make([]AuxRow, n)
	for i, zi := range z {
		auxRows[i][register.MemoryPermutationZ0] = zi.A0
		auxRows[i][register.MemoryPermutationZ1] = zi.A1
	}
	return auxRows, nil
}

// AuxTranspose converts row-major auxiliary rows into column-major
// polynomial values, mirroring Transpose.
func AuxTranspose(rows []AuxRow) [register.NumMemoryAuxColumns][]field.Element {
	var cols [register.NumMemoryAuxColumns][]field.Element
	for c := range cols {
		cols[c] = make([]field.Element, len(rows))
	}
	for r, row := range rows {
		for c := 0; c < register.NumMemoryAuxColumns; c++ {
			cols[c][r] = row[c]
		}
	}
	return cols
}

func rangeCheckValue(sorted []Op, i int, ctxFC, segFC, virtFC field.Element) field.Element {
	if i+1 >= len(sorted) {
		return field.Zero()
	}
	cur, next := sorted[i], sorted[i+1]

	one := field.One()
	tsFC := one.Sub(ctxFC).Sub(segFC).Sub(virtFC)

	dCtx := field.NewElement(next.Context).Sub(field.NewElement(cur.Context)).Sub(one)
	dSeg := field.NewElement(next.Segment).Sub(field.NewElement(cur.Segment)).Sub(one)
	dVirt := field.NewElement(next.Virtual).Sub(field.NewElement(cur.Virtual)).Sub(one)
	dTs := field.NewElement(next.Timestamp).Sub(field.NewElement(cur.Timestamp)).Sub(one)

	return ctxFC.Mul(dCtx).Add(segFC.Mul(dSeg)).Add(virtFC.Mul(dVirt)).Add(tsFC.Mul(dTs))
}
