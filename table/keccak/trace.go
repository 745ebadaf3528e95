// Package keccak implements the algebraic trace and constraint set for the
// Keccak-f[1600] permutation (spec.md §4.2/§4.3): how the 24-round
// permutation is unrolled into column registers, and the polynomial
// identities that must hold between adjacent rows.
package keccak

import (
	"fmt"

	"github.com/goldstark/goldstark/backend"
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/register"
)

var fieldArith = backend.Field{}

// NumPublicInputs mirrors the source's count of reserved public-input slots.
// No trace column, constraint or proof field uses it.
const NumPublicInputs = 4

// Row is one row of the Keccak trace: a fixed-width vector of field
// elements, width register.NumKeccakColumns.
type Row [register.NumKeccakColumns]field.Element

// GenerateTrace produces ceil(len(inputs)*24) rows, rounded up to the next
// power of two, of the Keccak algebraic trace for the given preimages. Each
// preimage must be exactly 25 64-bit limbs; the array type enforces this at
// compile time. GenerateTrace returns an error (a prover precondition
// failure per spec.md §7, never retried) only if inputs is empty.
func GenerateTrace(inputs [][register.InputLimbs]uint64) ([]Row, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("keccak: GenerateTrace requires at least one preimage")
	}

	numRows := nextPowerOfTwo(len(inputs) * register.NumRounds)
	rows := make([]Row, 0, numRows)

	for _, input := range inputs {
		rows = append(rows, generateRowsForPermutation(input)...)
	}

	for i := len(rows); i < numRows; i++ {
		var row Row
		round := i % register.NumRounds
		if round != 0 {
			propagateState(&rows[i-1], &row)
		}
		generateRoundRow(&row, round)
		rows = append(rows, row)
	}

	return rows, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func generateRowsForPermutation(input [register.InputLimbs]uint64) []Row {
	rows := make([]Row, register.NumRounds)

	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			v := input[5*x+y]
			for z := 0; z < 64; z++ {
				rows[0][register.RegA(x, y, z)] = bitOfUint(v, z)
			}
		}
	}

	generateRoundRow(&rows[0], 0)
	for r := 1; r < register.NumRounds; r++ {
		propagateState(&rows[r-1], &rows[r])
		generateRoundRow(&rows[r], r)
	}
	return rows
}

// propagateState implements the cross-round linkage this spec resolves as
// option (a) of spec.md §9: row r+1's A is taken from row r's A''
// (A''' for cell (0,0), since ι only touches that cell).
func propagateState(prev, next *Row) {
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			if x == 0 && y == 0 {
				lo := prev[register.RegAPrimePrimePrime00Lo].Uint64()
				hi := prev[register.RegAPrimePrimePrime00Hi].Uint64()
				for z := 0; z < 32; z++ {
					next[register.RegA(x, y, z)] = bitOfUint(lo, z)
				}
				for z := 32; z < 64; z++ {
					next[register.RegA(x, y, z)] = bitOfUint(hi, z-32)
				}
				continue
			}
			for z := 0; z < 64; z++ {
				next[register.RegA(x, y, z)] = prev[register.RegAPrimePrimeBit(x, y, z)]
			}
		}
	}
}

func bitOfUint(v uint64, z int) field.Element {
	return field.NewElement((v >> uint(z)) & 1)
}

// generateRoundRow computes C_partial, C, A', A'', the ι round-constant XOR
// and A''' for round, given that row's A is already populated. This mirrors
// the source's generate_trace_rows_for_round, with RC now real (resolving
// spec.md §9's "rc_lo = 0; rc_hi = 0; // TODO" open point).
func generateRoundRow(row *Row, round int) {
	row[register.RegStep(round)] = field.One()

	for x := 0; x < 5; x++ {
		for z := 0; z < 64; z++ {
			a0 := row[register.RegA(x, 0, z)]
			a1 := row[register.RegA(x, 1, z)]
			a2 := row[register.RegA(x, 2, z)]
			a3 := row[register.RegA(x, 3, z)]
			a4 := row[register.RegA(x, 4, z)]
			cPartial := backend.Xor3(fieldArith, a0, a1, a2)
			c := backend.Xor3(fieldArith, cPartial, a3, a4)
			row[register.RegCPartial(x, z)] = cPartial
			row[register.RegC(x, z)] = c
		}
	}

	for x := 0; x < 5; x++ {
		for z := 0; z < 64; z++ {
			cLeft := row[register.RegC((x+4)%5, z)]
			cRight := row[register.RegC((x+1)%5, (z+1)%64)]
			for y := 0; y < 5; y++ {
				a := row[register.RegA(x, y, z)]
				row[register.RegAPrime(x, y, z)] = backend.Xor3(fieldArith, a, cLeft, cRight)
			}
		}
	}

	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			getBit := func(z int) field.Element {
				b := row[register.RegB(x, y, z)]
				b1 := row[register.RegB((x+1)%5, y, z)]
				b2 := row[register.RegB((x+2)%5, y, z)]
				return backend.Xor(fieldArith, b, backend.Andn(fieldArith, b1, b2))
			}

			bits := make([]field.Element, 64)
			for z := 0; z < 64; z++ {
				bits[z] = getBit(z)
				row[register.RegAPrimePrimeBit(x, y, z)] = bits[z]
			}
			row[register.RegAPrimePrimeLo(x, y)] = backend.BitsToInt(fieldArith, bits[:32])
			row[register.RegAPrimePrimeHi(x, y)] = backend.BitsToInt(fieldArith, bits[32:])
		}
	}

	// ι: XOR the round constant into A''[0,0].
	rc := register.RoundConstants[round]
	rcLo := rc & 0xFFFFFFFF
	rcHi := rc >> 32
	lo := row[register.RegAPrimePrimeLo(0, 0)].Uint64()
	hi := row[register.RegAPrimePrimeHi(0, 0)].Uint64()
	row[register.RegAPrimePrimePrime00Lo] = field.NewElement(lo ^ rcLo)
	row[register.RegAPrimePrimePrime00Hi] = field.NewElement(hi ^ rcHi)
}

// Transpose converts row-major trace rows into column-major polynomial
// values, the form spec.md §3 requires before Merkle commitment.
func Transpose(rows []Row) [register.NumKeccakColumns][]field.Element {
	var cols [register.NumKeccakColumns][]field.Element
	for c := range cols {
		cols[c] = make([]field.Element, len(rows))
	}
	for r, row := range rows {
		for c := 0; c < register.NumKeccakColumns; c++ {
			cols[c][r] = row[c]
		}
	}
	return cols
}
