package keccak_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/register"
	"github.com/goldstark/goldstark/table/keccak"
)

// assertRowsSatisfyConstraints checks every adjacent row pair of a
// generated trace against keccak.Eval, failing with the first nonzero
// constraint value found.
func assertRowsSatisfyConstraints(t *testing.T, rows []keccak.Row) {
	t.Helper()
	for i := 0; i+1 < len(rows); i++ {
		local := rows[i][:]
		next := rows[i+1][:]
		for j, v := range keccak.Eval(local, next) {
			require.True(t, v.IsZero(), "row %d: constraint %d nonzero", i, j)
		}
	}
}

func TestGenerateTraceAllZeroPreimage(t *testing.T) {
	var input [register.InputLimbs]uint64
	rows, err := keccak.GenerateTrace([][register.InputLimbs]uint64{input})
	require.NoError(t, err)
	require.Len(t, rows, 32) // 24 rounds padded up to the next power of two
	assertRowsSatisfyConstraints(t, rows)
}

func TestGenerateTraceSingleBitSet(t *testing.T) {
	var input [register.InputLimbs]uint64
	input[0] = 1
	rows, err := keccak.GenerateTrace([][register.InputLimbs]uint64{input})
	require.NoError(t, err)
	assertRowsSatisfyConstraints(t, rows)

	// The first row's A[0,0,0] must reflect the preimage's low bit.
	require.True(t, rows[0][register.RegA(0, 0, 0)].Equal(field.One()))
}

func TestGenerateTracePadsToPowerOfTwo(t *testing.T) {
	var input [register.InputLimbs]uint64
	rows, err := keccak.GenerateTrace([][register.InputLimbs]uint64{input, input, input})
	require.NoError(t, err)
	require.Equal(t, 128, len(rows)) // 3*24=72 rounded up to 128
}

func TestGenerateTraceRejectsEmptyInput(t *testing.T) {
	_, err := keccak.GenerateTrace(nil)
	require.Error(t, err)
}

func TestTransposeRoundTrips(t *testing.T) {
	var input [register.InputLimbs]uint64
	rows, err := keccak.GenerateTrace([][register.InputLimbs]uint64{input})
	require.NoError(t, err)

	cols := keccak.Transpose(rows)
	for c := 0; c < register.NumKeccakColumns; c++ {
		require.Len(t, cols[c], len(rows))
		for r := range rows {
			require.True(t, cols[c][r].Equal(rows[r][c]))
		}
	}
}
