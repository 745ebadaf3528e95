package fri

import (
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
)

// QueryStep is one folded round's opening at a single query index: the
// evaluations of the chunk the verifier needs to recompute the fold, plus
// the Merkle path proving those evaluations belong to the committed tree.
type QueryStep struct {
	Evals []field.Quadratic
	Path  merkle.Path
}

// InitialTreesProof carries, for one query index, the leaf values and
// Merkle paths of every tree committed before the FRI commit phase began
// (the trace, auxiliary and quotient polynomial commitments).
type InitialTreesProof struct {
	Leafs [][]field.Element
	Paths []merkle.Path
}

// QueryRound is everything the verifier needs to replay one query. Index is
// the sampled domain index the prover drew from the challenger; it is
// redundant with what the verifier independently recomputes from the same
// transcript, but storing it lets the verifier catch a corrupted or
// replayed proof with a cheap equality check before doing any Merkle work.
type QueryRound struct {
	Index        int
	InitialTrees InitialTreesProof
	Steps        []QueryStep
}

// Proof is the complete FRI transcript: one Merkle cap per commit-phase
// round, the final (unfolded) polynomial coefficients, the proof-of-work
// witness, and one QueryRound per sampled index.
type Proof struct {
	CommitPhaseCaps []merkle.Cap
	FinalPoly       []field.Quadratic
	PowWitness      field.Element
	QueryRounds     []QueryRound
}
