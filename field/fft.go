package field

import (
	"runtime"
	"sync"
)

// ReverseBitsInPlace permutes values into bit-reversed order, the standard
// precondition/postcondition of the iterative radix-2 FFT below.
func ReverseBitsInPlace(values []Element) {
	n := len(values)
	if n&(n-1) != 0 {
		panic("field: ReverseBitsInPlace requires a power-of-two length")
	}
	logN := bitLen(n) - 1
	for i := 0; i < n; i++ {
		j := reverseBits(uint(i), logN)
		if i < j {
			values[i], values[j] = values[j], values[i]
		}
	}
}

func bitLen(n int) int {
	l := 0
	for n > 0 {
		l++
		n >>= 1
	}
	return l
}

func reverseBits(x uint, bits int) uint {
	var r uint
	for i := 0; i < bits; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// FFT evaluates the polynomial given by coeffs (length must be a power of
// two) at the subgroup of roots of unity of that order, in place.
// coeffs is consumed and overwritten with the evaluations.
func FFT(coeffs []Element) {
	n := len(coeffs)
	if n == 0 {
		return
	}
	if n&(n-1) != 0 {
		panic("field: FFT requires a power-of-two length")
	}
	logN := bitLen(n) - 1
	root := RootOfUnity(logN)

	ReverseBitsInPlace(coeffs)

	for stage := 1; stage <= logN; stage++ {
		m := 1 << stage
		half := m / 2
		wm := root.Exp(uint64(n / m))
		for start := 0; start < n; start += m {
			w := One()
			for j := 0; j < half; j++ {
				u := coeffs[start+j]
				t := coeffs[start+j+half].Mul(w)
				coeffs[start+j] = u.Add(t)
				coeffs[start+j+half] = u.Sub(t)
				w = w.Mul(wm)
			}
		}
	}
}

// InverseFFT computes the coefficient vector from a vector of evaluations at
// the roots-of-unity domain of the same power-of-two size.
func InverseFFT(values []Element) {
	n := len(values)
	if n == 0 {
		return
	}
	logN := bitLen(n) - 1
	root := RootOfUnity(logN)
	rootInv := root.Inverse()

	// Run the forward butterfly network with the inverse root, then scale
	// by n^-1; this produces the inverse transform without re-deriving a
	// separate recursive routine.
	ReverseBitsInPlace(values)
	for stage := 1; stage <= logN; stage++ {
		m := 1 << stage
		half := m / 2
		wm := rootInv.Exp(uint64(n / m))
		for start := 0; start < n; start += m {
			w := One()
			for j := 0; j < half; j++ {
				u := values[start+j]
				t := values[start+j+half].Mul(w)
				values[start+j] = u.Add(t)
				values[start+j+half] = u.Sub(t)
				w = w.Mul(wm)
			}
		}
	}

	nInv := NewElement(uint64(n)).Inverse()
	for i := range values {
		values[i] = values[i].Mul(nInv)
	}
}

// CosetFFT evaluates coeffs on the coset shift*<root of unity> rather than
// the subgroup itself, as used when re-evaluating folded FRI polynomials at
// each reduction step.
func CosetFFT(coeffs []Element, shift Element) {
	shiftPower := One()
	scaled := make([]Element, len(coeffs))
	for i, c := range coeffs {
		scaled[i] = c.Mul(shiftPower)
		shiftPower = shiftPower.Mul(shift)
	}
	FFT(scaled)
	copy(coeffs, scaled)
}

// CosetIFFT inverts CosetFFT: given values evaluated on the coset
// shift*<root of unity>, it recovers the coefficient vector. Used to turn a
// quotient polynomial's pointwise-computed coset evaluations back into a
// coefficient form suitable for FRI.
func CosetIFFT(values []Element, shift Element) {
	InverseFFT(values)
	shiftInv := shift.Inverse()
	power := One()
	for i := range values {
		values[i] = values[i].Mul(power)
		power = power.Mul(shiftInv)
	}
}

// ParallelCosetFFT behaves like CosetFFT but parallelizes the coset-scaling
// pass across goroutines, matching the bulk-synchronous data-parallel FFT
// workers the concurrency model calls for on large domains.
func ParallelCosetFFT(coeffs []Element, shift Element) {
	n := len(coeffs)
	if n < 1<<14 {
		CosetFFT(coeffs, shift)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	scaled := make([]Element, n)
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			shiftPower := shift.Exp(uint64(lo))
			for i := lo; i < hi; i++ {
				scaled[i] = coeffs[i].Mul(shiftPower)
				shiftPower = shiftPower.Mul(shift)
			}
		}(lo, hi)
	}
	wg.Wait()

	FFT(scaled)
	copy(coeffs, scaled)
}
