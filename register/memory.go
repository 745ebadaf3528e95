package register

// ValueLimbs is the number of limbs a memory value is decomposed into. The
// source's final variant (system_zero/src/memory.rs) uses 8 limbs per value;
// this module adopts that as its one convention rather than the
// scalar-value (L=1) variant also present in the source's history, per
// spec.md §9's instruction to pick one convention consistently.
const ValueLimbs = 8

const (
	MemoryAddrContext = 0
	MemoryAddrSegment = MemoryAddrContext + 1
	MemoryAddrVirtual = MemoryAddrSegment + 1
	memoryValueStart  = MemoryAddrVirtual + 1
	MemoryIsRead      = memoryValueStart + ValueLimbs
	MemoryTimestamp   = MemoryIsRead + 1

	SortedMemoryAddrContext = MemoryTimestamp + 1
	SortedMemoryAddrSegment = SortedMemoryAddrContext + 1
	SortedMemoryAddrVirtual = SortedMemoryAddrSegment + 1
	sortedValueStart        = SortedMemoryAddrVirtual + 1
	SortedMemoryIsRead      = sortedValueStart + ValueLimbs
	SortedMemoryTimestamp   = SortedMemoryIsRead + 1

	MemoryContextFirstChange = SortedMemoryTimestamp + 1
	MemorySegmentFirstChange = MemoryContextFirstChange + 1
	MemoryVirtualFirstChange = MemorySegmentFirstChange + 1
	MemoryRangeCheck         = MemoryVirtualFirstChange + 1

	NumMemoryColumns = MemoryRangeCheck + 1
)

// Auxiliary columns: the grand-product running-product Z that binds the
// unsorted log to the sorted log (spec.md §4.5/§4.7), split into its two
// degree-2-extension limbs Z0 (constant term) and Z1 (coefficient of the
// extension generator). These live in a separate commitment from the main
// trace columns above, built once the lookup challenges (β, γ) are known.
const (
	MemoryPermutationZ0 = 0
	MemoryPermutationZ1 = MemoryPermutationZ0 + 1

	NumMemoryAuxColumns = MemoryPermutationZ1 + 1
)

// MemoryValueLimb returns the column index of limb i of the unsorted value.
func MemoryValueLimb(i int) int {
	checkLimb(i)
	return memoryValueStart + i
}

// SortedMemoryValueLimb returns the column index of limb i of the sorted
// value.
func SortedMemoryValueLimb(i int) int {
	checkLimb(i)
	return sortedValueStart + i
}

func checkLimb(i int) {
	if i < 0 || i >= ValueLimbs {
		panic("register: value limb index out of range")
	}
}
