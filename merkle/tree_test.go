package merkle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
)

func leaves(n, width int) [][]field.Element {
	out := make([][]field.Element, n)
	for i := range out {
		row := make([]field.Element, width)
		for j := range row {
			row[j] = field.NewElement(uint64(i*width + j + 1))
		}
		out[i] = row
	}
	return out
}

func TestOpenVerifyRoundTrip(t *testing.T) {
	tree, err := merkle.NewTree(leaves(16, 2), 1)
	require.NoError(t, err)
	cap := tree.Cap()

	for i := 0; i < 16; i++ {
		leaf, path := tree.Open(i)
		require.True(t, merkle.Verify(cap, i, leaf, path))
	}
}

func TestVerifyRejectsTamperedLeaf(t *testing.T) {
	tree, err := merkle.NewTree(leaves(8, 1), 0)
	require.NoError(t, err)
	cap := tree.Cap()

	leaf, path := tree.Open(3)
	tampered := append([]field.Element(nil), leaf...)
	tampered[0] = tampered[0].Add(field.One())
	require.False(t, merkle.Verify(cap, 3, tampered, path))
}

func TestVerifyRejectsWrongIndex(t *testing.T) {
	tree, err := merkle.NewTree(leaves(8, 1), 0)
	require.NoError(t, err)
	cap := tree.Cap()

	leaf, path := tree.Open(3)
	require.False(t, merkle.Verify(cap, 4, leaf, path))
}

func TestNewTreeRejectsNonPowerOfTwo(t *testing.T) {
	_, err := merkle.NewTree(leaves(5, 1), 0)
	require.Error(t, err)
}
