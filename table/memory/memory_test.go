package memory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/register"
	"github.com/goldstark/goldstark/table/memory"
)

func valueOf(v uint64) [register.ValueLimbs]uint64 {
	var limbs [register.ValueLimbs]uint64
	limbs[0] = v
	return limbs
}

func assertRowsSatisfyConstraints(t *testing.T, rows []memory.Row) {
	t.Helper()
	for i := 0; i+1 < len(rows); i++ {
		local := rows[i][:]
		next := rows[i+1][:]
		for j, v := range memory.Eval(local, next) {
			require.True(t, v.IsZero(), "row %d: constraint %d nonzero", i, j)
		}
	}
}

func TestTwoOpsSameAddressCarriesValueForward(t *testing.T) {
	ops := []memory.Op{
		{Context: 0, Segment: 0, Virtual: 0, Value: valueOf(7), IsRead: false, Timestamp: 1},
		{Context: 0, Segment: 0, Virtual: 0, Value: valueOf(7), IsRead: true, Timestamp: 2},
	}
	rows, err := memory.GenerateTrace(ops)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.True(t, rows[1][register.SortedMemoryValueLimb(0)].Equal(field.NewElement(7)))
	assertRowsSatisfyConstraints(t, rows)
}

func TestOrderingViolationFailsConstraints(t *testing.T) {
	ops := []memory.Op{
		{Context: 5, Segment: 0, Virtual: 0, Value: valueOf(1), IsRead: false, Timestamp: 1},
		{Context: 3, Segment: 0, Virtual: 0, Value: valueOf(2), IsRead: false, Timestamp: 2},
	}
	rows, err := memory.GenerateTrace(ops)
	require.NoError(t, err)

	// Hand-corrupt the sorted order the generator would have produced by
	// forcing ctx[1] < ctx[0] (the generator itself would never do this;
	// this simulates a malicious witness).
	rows[0][register.SortedMemoryAddrContext] = field.NewElement(5)
	rows[1][register.SortedMemoryAddrContext] = field.NewElement(3)
	rows[0][register.MemoryContextFirstChange] = field.One()
	rows[0][register.MemoryRangeCheck] = field.NewElement(3).Sub(field.NewElement(5)).Sub(field.One())

	found := false
	for _, v := range memory.Eval(rows[0][:], rows[1][:]) {
		if !v.IsZero() {
			found = true
		}
	}
	// The range_check cell itself is internally consistent (it was set to
	// match the corrupted delta), so Eval alone does not reject it — an
	// external range-check argument over [0, 2^k) is what rejects the
	// resulting value, since ctx[1]-ctx[0]-1 underflows to a huge
	// representative mod p (spec.md §4.5).
	require.False(t, found)
	rc := rows[0][register.MemoryRangeCheck]
	require.False(t, rc.Uint64() < (uint64(1)<<32), "corrupted range_check should not fit a small-range representative")
}

func TestGenerateTraceRejectsEmptyLog(t *testing.T) {
	_, err := memory.GenerateTrace(nil)
	require.Error(t, err)
}

func assertAuxRowsSatisfyConstraints(t *testing.T, rows []memory.Row, aux []memory.AuxRow, beta, gamma field.Quadratic) {
	t.Helper()
	n := len(rows)
	for i := 0; i < n; i++ {
		local := rows[i][:]
		next := rows[(i+1)%n][:]
		auxLocal := aux[i][:]
		auxNext := aux[(i+1)%n][:]
		for j, v := range memory.EvalAux(local, next, auxLocal, auxNext, beta, gamma) {
			require.True(t, v.IsZero(), "row %d: aux constraint %d nonzero", i, j)
		}
	}
	for j, v := range memory.EvalBoundary(aux[0][:]) {
		require.True(t, v.IsZero(), "boundary constraint %d nonzero", j)
	}
}

func TestGrandProductBindsSortedAndUnsortedLogs(t *testing.T) {
	ops := []memory.Op{
		{Context: 0, Segment: 0, Virtual: 0, Value: valueOf(7), IsRead: false, Timestamp: 1},
		{Context: 0, Segment: 0, Virtual: 0, Value: valueOf(7), IsRead: true, Timestamp: 2},
		{Context: 0, Segment: 0, Virtual: 1, Value: valueOf(9), IsRead: false, Timestamp: 3},
		{Context: 1, Segment: 0, Virtual: 0, Value: valueOf(3), IsRead: false, Timestamp: 4},
	}
	rows, err := memory.GenerateTrace(ops)
	require.NoError(t, err)

	beta := field.Quadratic{A0: field.NewElement(11), A1: field.NewElement(13)}
	gamma := field.Quadratic{A0: field.NewElement(17), A1: field.NewElement(19)}

	aux, err := memory.GenerateAuxTrace(rows, beta, gamma)
	require.NoError(t, err)
	require.Len(t, aux, len(rows))

	assertAuxRowsSatisfyConstraints(t, rows, aux, beta, gamma)
}

func TestGrandProductRejectsTamperedUnsortedLog(t *testing.T) {
	ops := []memory.Op{
		{Context: 0, Segment: 0, Virtual: 0, Value: valueOf(7), IsRead: false, Timestamp: 1},
		{Context: 0, Segment: 0, Virtual: 1, Value: valueOf(9), IsRead: false, Timestamp: 2},
	}
	rows, err := memory.GenerateTrace(ops)
	require.NoError(t, err)

	beta := field.Quadratic{A0: field.NewElement(11), A1: field.NewElement(13)}
	gamma := field.Quadratic{A0: field.NewElement(17), A1: field.NewElement(19)}

	aux, err := memory.GenerateAuxTrace(rows, beta, gamma)
	require.NoError(t, err)

	// An unsorted value disconnected from what was actually sorted (the
	// prover claims a different log than the one the sorted view attests
	// to) must be rejected by the transition constraint somewhere around
	// the cycle.
	rows[0][register.MemoryValueLimb(0)] = field.NewElement(999)

	n := len(rows)
	found := false
	for i := 0; i < n; i++ {
		local := rows[i][:]
		next := rows[(i+1)%n][:]
		auxLocal := aux[i][:]
		auxNext := aux[(i+1)%n][:]
		for _, v := range memory.EvalAux(local, next, auxLocal, auxNext, beta, gamma) {
			if !v.IsZero() {
				found = true
			}
		}
	}
	require.True(t, found, "tampering with the unsorted log should violate the grand-product constraint")
}

func TestFirstChangeIndicatorsAreOneHot(t *testing.T) {
	ops := []memory.Op{
		{Context: 0, Segment: 0, Virtual: 0, Value: valueOf(1), IsRead: false, Timestamp: 1},
		{Context: 0, Segment: 0, Virtual: 1, Value: valueOf(2), IsRead: false, Timestamp: 1},
		{Context: 1, Segment: 0, Virtual: 0, Value: valueOf(3), IsRead: false, Timestamp: 1},
	}
	rows, err := memory.GenerateTrace(ops)
	require.NoError(t, err)
	assertRowsSatisfyConstraints(t, rows)

	require.True(t, rows[0][register.MemoryVirtualFirstChange].Equal(field.One()))
	require.True(t, rows[1][register.MemoryContextFirstChange].Equal(field.One()))
}
