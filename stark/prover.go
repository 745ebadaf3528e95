package stark

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/goldstark/goldstark/challenger"
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/fri"
	"github.com/goldstark/goldstark/merkle"
	"github.com/goldstark/goldstark/register"
	"github.com/goldstark/goldstark/table"
	"github.com/goldstark/goldstark/table/keccak"
	"github.com/goldstark/goldstark/table/memory"
)

// Prove builds an AllProof attesting that keccakInputs and memoryOps admit
// traces satisfying the Keccak and memory constraint sets respectively,
// binding both tables' commitments and FRI proofs into one Fiat-Shamir
// transcript (spec.md §4.7).
func Prove(cfg Config, keccakInputs [][register.InputLimbs]uint64, memoryOps []memory.Op) (*AllProof, error) {
	keccakRows, err := keccak.GenerateTrace(keccakInputs)
	if err != nil {
		return nil, fmt.Errorf("stark: keccak trace: %w", err)
	}
	memoryRows, err := memory.GenerateTrace(memoryOps)
	if err != nil {
		return nil, fmt.Errorf("stark: memory trace: %w", err)
	}

	keccakCols := keccakColumnSlice(keccak.Transpose(keccakRows))
	memoryCols := memoryColumnSlice(memory.Transpose(memoryRows))

	chal := challenger.New()

	keccakTrace, err := commitColumns(keccakCols, len(keccakRows), tableBlowupBits(cfg, keccak.ConstraintDegree), cfg.FRI.CapHeight)
	if err != nil {
		return nil, fmt.Errorf("stark: committing keccak trace: %w", err)
	}
	memoryTrace, err := commitColumns(memoryCols, len(memoryRows), tableBlowupBits(cfg, memory.ConstraintDegree), cfg.FRI.CapHeight)
	if err != nil {
		return nil, fmt.Errorf("stark: committing memory trace: %w", err)
	}

	log.Debug().Int("rows", len(keccakRows)).Msg("stark: keccak trace committed")
	log.Debug().Int("rows", len(memoryRows)).Msg("stark: memory trace committed")

	// Observe every table's trace cap before drawing the lookup challenge
	// pair (beta, gamma), per spec.md §4.7 steps 1-2: this module does not
	// implement a cross-table lookup argument between Keccak and memory
	// (spec.md §9 scopes that out), but memory's own grand-product argument
	// binding its sorted and unsorted views (spec.md §4.5) uses exactly the
	// pair this step draws.
	chal.ObserveCap(keccakTrace.tree.Cap())
	chal.ObserveCap(memoryTrace.tree.Cap())
	lookupChallenges := chal.GetNExtensionChallenges(cfg.NumChallenges)
	if len(lookupChallenges) < 2 {
		return nil, fmt.Errorf("stark: cfg.NumChallenges must draw at least 2 challenges for the (beta, gamma) lookup pair")
	}
	beta, gamma := lookupChallenges[0], lookupChallenges[1]

	keccakProof, err := proveTable(cfg, keccak.Table{}, keccakTrace, nil, beta, gamma, chal)
	if err != nil {
		return nil, fmt.Errorf("stark: keccak: %w", err)
	}

	memoryAuxRows, err := memory.GenerateAuxTrace(memoryRows, beta, gamma)
	if err != nil {
		return nil, fmt.Errorf("stark: memory auxiliary trace: %w", err)
	}
	memoryAuxCols := memoryAuxColumnSlice(memory.AuxTranspose(memoryAuxRows))
	memoryProof, err := proveTable(cfg, memory.Table{}, memoryTrace, memoryAuxCols, beta, gamma, chal)
	if err != nil {
		return nil, fmt.Errorf("stark: memory: %w", err)
	}

	return &AllProof{
		FormatVersion: FormatVersion,
		Keccak:        *keccakProof,
		Memory:        *memoryProof,
	}, nil
}

// proveTable runs one table's share of the transcript (spec.md §4.7): a
// Fiat-Shamir compaction, the auxiliary (lookup/permutation) commitment if
// the table has one, the constraint-combination challenge alpha, the
// quotient commitment, the out-of-domain point zeta and its openings, the
// DEEP batching challenge gamma, and the FRI proof over the resulting
// composition polynomial. auxCols is nil for a table with no lookup
// argument (tbl.NumAuxColumns() == 0); beta/gamma are the lookup challenge
// pair every table's auxiliary argument (if any) is built against.
func proveTable(cfg Config, tbl table.Table, trace *commitment, auxCols [][]field.Element, beta, gamma field.Quadratic, chal *challenger.Challenger) (*StarkProof, error) {
	chal.Compact()

	var aux *commitment
	var auxCap merkle.Cap
	if tbl.NumAuxColumns() > 0 {
		var err error
		aux, err = commitColumns(auxCols, trace.n, tableBlowupBits(cfg, tbl.ConstraintDegree()), cfg.FRI.CapHeight)
		if err != nil {
			return nil, fmt.Errorf("committing auxiliary trace: %w", err)
		}
		auxCap = aux.tree.Cap()
	}
	chal.ObserveCap(auxCap)

	alpha := chal.GetExtensionChallenge()

	quot, err := buildQuotient(tbl, trace, aux, alpha, beta, gamma, cfg.FRI.CapHeight)
	if err != nil {
		return nil, fmt.Errorf("building quotient: %w", err)
	}
	chal.ObserveCap(quot.tree.Cap())

	zeta := chal.GetExtensionChallenge()
	g := traceDomainGenerator(trace.n)
	gZeta := zeta.Mul(field.FromBase(g))

	local := trace.evalAtZeta(zeta)
	next := trace.evalAtZeta(gZeta)
	quotOpen := quot.evalAtZeta(zeta)
	quotOpenNxt := quot.evalAtZeta(gZeta)

	chal.ObserveExtensionElements(local)
	chal.ObserveExtensionElements(next)

	var auxLocal, auxNext []field.Quadratic
	groups := []compositionGroup{{numColumns: trace.numColumns, local: local, next: next}}
	traces := []*commitment{trace}
	if aux != nil {
		auxLocal = aux.evalAtZeta(zeta)
		auxNext = aux.evalAtZeta(gZeta)
		chal.ObserveExtensionElements(auxLocal)
		chal.ObserveExtensionElements(auxNext)
		groups = append(groups, compositionGroup{numColumns: aux.numColumns, local: auxLocal, next: auxNext})
		traces = append(traces, aux)
	}

	chal.ObserveExtensionElement(quotOpen)
	chal.ObserveExtensionElement(quotOpenNxt)

	deepGamma := chal.GetExtensionChallenge()

	compositionValues := buildComposition(traces, groups, quot, zeta, gZeta, quotOpen, deepGamma)
	compositionCoeffs := coeffsFromValues(compositionValues)

	initialTrees := []*merkle.Tree{trace.tree}
	if aux != nil {
		initialTrees = append(initialTrees, aux.tree)
	}
	initialTrees = append(initialTrees, quot.tree)
	friProof, err := fri.Prove(cfg.FRI, compositionCoeffs, compositionValues, initialTrees, chal)
	if err != nil {
		return nil, fmt.Errorf("FRI: %w", err)
	}

	return &StarkProof{
		TraceCap:     trace.tree.Cap(),
		AuxiliaryCap: auxCap,
		QuotientCap:  quot.tree.Cap(),
		Openings: Openings{
			Local:       local,
			Next:        next,
			AuxLocal:    auxLocal,
			AuxNext:     auxNext,
			Quotient:    quotOpen,
			QuotientNxt: quotOpenNxt,
		},
		FRI:            friProof,
		TraceDomainLog: logTwo(trace.n),
	}, nil
}

// coeffsFromValues recovers a composition polynomial's coefficients from
// its pointwise-computed LDE values, so FRI's commit phase can fold it.
func coeffsFromValues(values []field.Quadratic) []field.Quadratic {
	a0 := make([]field.Element, len(values))
	a1 := make([]field.Element, len(values))
	for i, v := range values {
		a0[i] = v.A0
		a1[i] = v.A1
	}
	field.CosetIFFT(a0, ldeShift)
	field.CosetIFFT(a1, ldeShift)
	out := make([]field.Quadratic, len(values))
	for i := range out {
		out[i] = field.Quadratic{A0: a0[i], A1: a1[i]}
	}
	return out
}

func keccakColumnSlice(cols [register.NumKeccakColumns][]field.Element) [][]field.Element {
	out := make([][]field.Element, len(cols))
	for i := range cols {
		out[i] = cols[i]
	}
	return out
}

func memoryColumnSlice(cols [register.NumMemoryColumns][]field.Element) [][]field.Element {
	out := make([][]field.Element, len(cols))
	for i := range cols {
		out[i] = cols[i]
	}
	return out
}

func memoryAuxColumnSlice(cols [register.NumMemoryAuxColumns][]field.Element) [][]field.Element {
	out := make([][]field.Element, len(cols))
	for i := range cols {
		out[i] = cols[i]
	}
	return out
}
