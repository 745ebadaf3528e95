package register_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/register"
)

func TestKeccakColumnsAreDistinct(t *testing.T) {
	seen := make(map[int]string)
	record := func(idx int, name string) {
		if prev, ok := seen[idx]; ok {
			t.Fatalf("column %d used by both %s and %s", idx, prev, name)
		}
		seen[idx] = name
	}

	for r := 0; r < register.NumRounds; r++ {
		record(register.RegStep(r), "step")
	}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			for z := 0; z < 64; z++ {
				record(register.RegA(x, y, z), "A")
				record(register.RegAPrime(x, y, z), "A'")
			}
		}
	}
	for x := 0; x < 5; x++ {
		for z := 0; z < 64; z++ {
			record(register.RegCPartial(x, z), "C_partial")
			record(register.RegC(x, z), "C")
		}
	}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			record(register.RegAPrimePrimeLo(x, y), "A''lo")
			record(register.RegAPrimePrimeHi(x, y), "A''hi")
			for i := 0; i < 64; i++ {
				record(register.RegAPrimePrimeBit(x, y, i), "A''bit")
			}
		}
	}
	record(register.RegAPrimePrimePrime00Lo, "A'''lo")
	record(register.RegAPrimePrimePrime00Hi, "A'''hi")

	require.Equal(t, register.NumKeccakColumns, len(seen))
}

func TestRegBAliasesAPrime(t *testing.T) {
	// B[x,y,z] must always resolve to a valid A' column.
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			for z := 0; z < 64; z++ {
				idx := register.RegB(x, y, z)
				require.GreaterOrEqual(t, idx, register.RegAPrime(0, 0, 0))
			}
		}
	}
}

func TestMemoryColumnsAreDistinct(t *testing.T) {
	seen := make(map[int]bool)
	add := func(idx int) {
		require.False(t, seen[idx], "duplicate column %d", idx)
		seen[idx] = true
	}
	add(register.MemoryAddrContext)
	add(register.MemoryAddrSegment)
	add(register.MemoryAddrVirtual)
	for i := 0; i < register.ValueLimbs; i++ {
		add(register.MemoryValueLimb(i))
	}
	add(register.MemoryIsRead)
	add(register.MemoryTimestamp)
	add(register.SortedMemoryAddrContext)
	add(register.SortedMemoryAddrSegment)
	add(register.SortedMemoryAddrVirtual)
	for i := 0; i < register.ValueLimbs; i++ {
		add(register.SortedMemoryValueLimb(i))
	}
	add(register.SortedMemoryIsRead)
	add(register.SortedMemoryTimestamp)
	add(register.MemoryContextFirstChange)
	add(register.MemorySegmentFirstChange)
	add(register.MemoryVirtualFirstChange)
	add(register.MemoryRangeCheck)

	require.Equal(t, register.NumMemoryColumns, len(seen))
}
