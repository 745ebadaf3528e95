// Package register is the compile-time contract of column indices shared by
// every other component (spec.md §4.1): the trace generator, the constraint
// set, and (for the memory table) the sorted-log argument all address trace
// cells only through the functions in this package. Changing a layout here
// is a breaking change to every trace and constraint in the module.
package register

// NumRounds is the number of rounds in a Keccak-f[1600] permutation.
const NumRounds = 24

// InputLimbs is the number of 64-bit limbs in one Keccak preimage.
const InputLimbs = 25

// RotationOffsets is the standard Keccak rotation-constants table R[x][y],
// indexed R[a][b] where a = (x+3y) mod 5, b = x (see RegB).
var RotationOffsets = [5][5]uint{
	{0, 36, 3, 41, 18},
	{1, 44, 10, 45, 2},
	{62, 6, 43, 15, 61},
	{28, 55, 25, 21, 56},
	{27, 20, 39, 8, 14},
}

// RoundConstants are the 24 ι-step round constants of Keccak-f[1600].
var RoundConstants = [NumRounds]uint64{
	0x0000000000000001, 0x0000000000008082,
	0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001,
	0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088,
	0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B,
	0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080,
	0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080,
	0x0000000080000001, 0x8000000080008008,
}

// RCBit returns bit i (0-63) of RoundConstants[round].
func RCBit(round int, i int) uint64 {
	return (RoundConstants[round] >> uint(i)) & 1
}

// Column layout, built up as a running offset. This resolves spec.md §9's
// cross-round-linkage open point as option (a): unlike the source, which
// only kept a bit decomposition for cell (0,0) (the one cell ι touches),
// every A'' cell is additionally decomposed into 64 bit columns so that the
// transition to the next row's A[x,y,z] can be expressed as a direct
// equality constraint instead of being left to the witness generator.
const (
	startStep = 0
	// Step: one-hot round indicator, NumRounds columns.
	startA = startStep + NumRounds
	// A[x,y,z]: 5*5*64 columns.
	startCPartial = startA + 5*5*64
	// C_partial[x,z]: 5*64 columns.
	startC = startCPartial + 5*64
	// C[x,z]: 5*64 columns.
	startAPrime = startC + 5*64
	// A'[x,y,z]: 5*5*64 columns. B is aliased onto these, no separate columns.
	startAPrimePrime = startAPrime + 5*5*64
	// A''[x,y]_lo/hi: 5*5*2 columns.
	startAPrimePrimeBit = startAPrimePrime + 5*5*2
	// A''[x,y]_bit[0..64): 5*5*64 columns, re-expansion used for ι and for
	// cross-round linkage into the next row's A.
	startAPrimePrimePrime00 = startAPrimePrimeBit + 5*5*64
	// A'''[0,0]_lo/hi: 2 columns (ι only touches (0,0)).
	keccakColumnsEnd = startAPrimePrimePrime00 + 2
)

// NumKeccakColumns is the total column width of the Keccak trace.
const NumKeccakColumns = keccakColumnsEnd

// RegStep returns the column index of the one-hot round indicator for
// round r.
func RegStep(r int) int {
	if r < 0 || r >= NumRounds {
		panic("register: round index out of range")
	}
	return startStep + r
}

// RegA returns the column index of A[x,y,z].
func RegA(x, y, z int) int {
	checkXYZ(x, y, z)
	return startA + x*64*5 + y*64 + z
}

// RegCPartial returns the column index of C_partial[x,z].
func RegCPartial(x, z int) int {
	checkXZ(x, z)
	return startCPartial + x*64 + z
}

// RegC returns the column index of C[x,z].
func RegC(x, z int) int {
	checkXZ(x, z)
	return startC + x*64 + z
}

// RegAPrime returns the column index of A'[x,y,z].
func RegAPrime(x, y, z int) int {
	checkXYZ(x, y, z)
	return startAPrime + x*64*5 + y*64 + z
}

// RegB returns the column index aliasing B[x,y,z] onto A', applying the
// π∘ρ rotation: B[x,y,z] = A'[a,b,(z+R[a][b]) mod 64] with
// a = (x+3y) mod 5, b = x.
func RegB(x, y, z int) int {
	checkXYZ(x, y, z)
	a := (x + 3*y) % 5
	b := x
	rot := RotationOffsets[a][b]
	return RegAPrime(a, b, (z+int(rot))%64)
}

// RegAPrimePrimeLo returns the column index of A''[x,y]_lo.
func RegAPrimePrimeLo(x, y int) int {
	checkXY(x, y)
	return startAPrimePrime + x*2*5 + y*2
}

// RegAPrimePrimeHi returns the column index of A''[x,y]_hi.
func RegAPrimePrimeHi(x, y int) int { return RegAPrimePrimeLo(x, y) + 1 }

// RegAPrimePrimeBit returns the column index of the i-th re-expanded bit of
// A''[x,y].
func RegAPrimePrimeBit(x, y, i int) int {
	checkXY(x, y)
	if i < 0 || i >= 64 {
		panic("register: bit index out of range")
	}
	return startAPrimePrimeBit + (x*5+y)*64 + i
}

// RegAPrimePrime00Bit returns the column index of the i-th re-expanded bit
// of A''[0,0]; an alias of RegAPrimePrimeBit(0, 0, i) kept for readability
// at call sites that only ever touch cell (0,0).
func RegAPrimePrime00Bit(i int) int { return RegAPrimePrimeBit(0, 0, i) }

// RegAPrimePrimePrime00Lo is the column index of A'''[0,0]_lo.
const RegAPrimePrimePrime00Lo = startAPrimePrimePrime00

// RegAPrimePrimePrime00Hi is the column index of A'''[0,0]_hi.
const RegAPrimePrimePrime00Hi = startAPrimePrimePrime00 + 1

func checkXYZ(x, y, z int) {
	if x < 0 || x >= 5 || y < 0 || y >= 5 || z < 0 || z >= 64 {
		panic("register: (x,y,z) out of range")
	}
}

func checkXZ(x, z int) {
	if x < 0 || x >= 5 || z < 0 || z >= 64 {
		panic("register: (x,z) out of range")
	}
}

func checkXY(x, y int) {
	if x < 0 || x >= 5 || y < 0 || y >= 5 {
		panic("register: (x,y) out of range")
	}
}
