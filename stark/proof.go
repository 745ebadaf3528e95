package stark

import (
	"github.com/blang/semver/v4"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/fri"
	"github.com/goldstark/goldstark/merkle"
)

// Openings are the claimed evaluations of a table's trace columns,
// auxiliary columns, and quotient polynomial at the out-of-domain point
// zeta and at g*zeta (the next-row point), per spec.md §4.7 step 3f. AuxLocal
// and AuxNext are empty for a table with no lookup argument.
type Openings struct {
	Local       []field.Quadratic
	Next        []field.Quadratic
	AuxLocal    []field.Quadratic
	AuxNext     []field.Quadratic
	Quotient    field.Quadratic
	QuotientNxt field.Quadratic
}

// StarkProof is one table's share of an AllProof: its trace commitment, its
// auxiliary (lookup/permutation) commitment, its quotient commitment, the
// claimed openings, and the FRI proof binding the quotient's low-degreeness.
// AuxiliaryCap is the zero merkle.Cap for a table with no lookup argument.
type StarkProof struct {
	TraceCap       merkle.Cap
	AuxiliaryCap   merkle.Cap
	QuotientCap    merkle.Cap
	Openings       Openings
	FRI            *fri.Proof
	TraceDomainLog int
}

// AllProof bundles every table's StarkProof behind one format version
// (spec.md §6).
type AllProof struct {
	FormatVersion semver.Version
	Keccak        StarkProof
	Memory        StarkProof
}
