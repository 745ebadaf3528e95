// Package backend implements the polymorphic constraint-evaluation layer
// spec.md §9 calls for: every Keccak and Memory constraint is written once
// against the Arithmetic[T] interface, and evaluated twice — natively over
// field elements by the prover/verifier, and against a circuit builder by
// the recursive verifier — without duplicating the constraint expressions
// themselves.
package backend

// Arithmetic is the minimal ring interface a constraint expression needs:
// addition, subtraction, multiplication, and small integer constants. Field
// implements it over field.Element, Extension over field.Quadratic (for
// extension-field evaluation), and Circuit over a gnark frontend.Variable.
type Arithmetic[T any] interface {
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Const(v uint64) T
}

// Xor encodes xor(a,b) = a + b - 2ab for a, b carrying boolean values, per
// spec.md §4.3.
func Xor[T any](ar Arithmetic[T], a, b T) T {
	ab := ar.Mul(a, b)
	twoAB := ar.Mul(ar.Const(2), ab)
	return ar.Sub(ar.Add(a, b), twoAB)
}

// Xor3 encodes the degree-3 three-input xor identity
// xor3(a,b,c) = a + b + c - 2(ab+bc+ca) + 4abc, per spec.md §4.3.
func Xor3[T any](ar Arithmetic[T], a, b, c T) T {
	ab := ar.Mul(a, b)
	bc := ar.Mul(b, c)
	ca := ar.Mul(c, a)
	abc := ar.Mul(ab, c)

	sum := ar.Add(ar.Add(a, b), c)
	pairSum := ar.Add(ar.Add(ab, bc), ca)
	twoPairSum := ar.Mul(ar.Const(2), pairSum)
	fourABC := ar.Mul(ar.Const(4), abc)

	return ar.Add(ar.Sub(sum, twoPairSum), fourABC)
}

// Andn encodes andn(a,b) = b - ab, per spec.md §4.3.
func Andn[T any](ar Arithmetic[T], a, b T) T {
	return ar.Sub(b, ar.Mul(a, b))
}

// BitsToInt reduces bits[0..len) as Σ 2^i · bits[i], the bit-to-integer
// reduction spec.md §3 invariant 5 uses to pack A''[x,y] into lo/hi cells.
func BitsToInt[T any](ar Arithmetic[T], bits []T) T {
	acc := ar.Const(0)
	power := ar.Const(1)
	for _, b := range bits {
		acc = ar.Add(acc, ar.Mul(power, b))
		power = ar.Mul(power, ar.Const(2))
	}
	return acc
}
