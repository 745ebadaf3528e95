package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/backend"
	"github.com/goldstark/goldstark/field"
)

func bit(v uint64) field.Element { return field.NewElement(v) }

func TestXorMatchesBooleanTruthTable(t *testing.T) {
	ar := backend.Field{}
	cases := []struct{ a, b, want uint64 }{
		{0, 0, 0}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0},
	}
	for _, c := range cases {
		got := backend.Xor[field.Element](ar, bit(c.a), bit(c.b))
		require.True(t, got.Equal(bit(c.want)), "xor(%d,%d)", c.a, c.b)
	}
}

func TestXor3MatchesBooleanTruthTable(t *testing.T) {
	ar := backend.Field{}
	for a := uint64(0); a <= 1; a++ {
		for b := uint64(0); b <= 1; b++ {
			for c := uint64(0); c <= 1; c++ {
				want := a ^ b ^ c
				got := backend.Xor3[field.Element](ar, bit(a), bit(b), bit(c))
				require.True(t, got.Equal(bit(want)), "xor3(%d,%d,%d)", a, b, c)
			}
		}
	}
}

func TestAndnMatchesBooleanTruthTable(t *testing.T) {
	ar := backend.Field{}
	cases := []struct{ a, b, want uint64 }{
		{0, 0, 0}, {0, 1, 1}, {1, 0, 0}, {1, 1, 0},
	}
	for _, c := range cases {
		got := backend.Andn[field.Element](ar, bit(c.a), bit(c.b))
		require.True(t, got.Equal(bit(c.want)), "andn(%d,%d)", c.a, c.b)
	}
}

func TestBitsToInt(t *testing.T) {
	ar := backend.Field{}
	bits := []field.Element{bit(1), bit(1), bit(0), bit(1)} // 1 + 2 + 0 + 8 = 11
	got := backend.BitsToInt[field.Element](ar, bits)
	require.True(t, got.Equal(field.NewElement(11)))
}
