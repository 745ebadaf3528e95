package field_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/field"
)

func TestAddSubRoundTrip(t *testing.T) {
	a := field.NewElement(123456789)
	b := field.NewElement(987654321)
	require.True(t, a.Add(b).Sub(b).Equal(a))
}

func TestMulInverse(t *testing.T) {
	a := field.NewElement(42)
	inv := a.Inverse()
	require.True(t, a.Mul(inv).Equal(field.One()))
}

func TestNegWraps(t *testing.T) {
	a := field.NewElement(7)
	require.True(t, a.Add(a.Neg()).IsZero())
}

func TestModulusWraps(t *testing.T) {
	// p - 1 + 2 should wrap to 1.
	pMinus1 := field.NewElement(field.Modulus - 1)
	two := field.NewElement(2)
	require.True(t, pMinus1.Add(two).Equal(field.One()))
}

func TestExpMatchesRepeatedMul(t *testing.T) {
	a := field.NewElement(3)
	want := field.One()
	for i := 0; i < 10; i++ {
		want = want.Mul(a)
	}
	require.True(t, a.Exp(10).Equal(want))
}

func TestRootOfUnityOrder(t *testing.T) {
	for _, bits := range []int{1, 2, 3, 8} {
		root := field.RootOfUnity(bits)
		order := uint64(1) << uint(bits)
		require.True(t, root.Exp(order).Equal(field.One()))
		require.False(t, root.Exp(order/2).Equal(field.One()))
	}
}

func TestQuadraticMulInverse(t *testing.T) {
	q := field.Quadratic{A0: field.NewElement(5), A1: field.NewElement(11)}
	inv := q.Inverse()
	require.True(t, q.Mul(inv).Equal(field.OneQuadratic()))
}

func TestFFTInverseRoundTrip(t *testing.T) {
	coeffs := make([]field.Element, 8)
	for i := range coeffs {
		coeffs[i] = field.NewElement(uint64(i*i + 1))
	}
	original := append([]field.Element(nil), coeffs...)

	field.FFT(coeffs)
	field.InverseFFT(coeffs)

	for i := range coeffs {
		require.True(t, coeffs[i].Equal(original[i]), "index %d", i)
	}
}
