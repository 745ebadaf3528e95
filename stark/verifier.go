package stark

import (
	"errors"
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

// Verify replays the Fiat-Shamir transcript Prove would have produced and
// checks every Merkle cap, out-of-domain consistency equation, and FRI
// proof in proof (spec.md §4.7, §7).
func Verify(cfg Config, proof *AllProof) error {
	if proof.FormatVersion.Major != FormatVersion.Major {
		return newErr(ErrMalformedProof, "", fmt.Errorf("proof format version %s is incompatible with %s", proof.FormatVersion, FormatVersion))
	}

	chal := challenger.New()

	chal.ObserveCap(proof.Keccak.TraceCap)
	chal.ObserveCap(proof.Memory.TraceCap)
	lookupChallenges := chal.GetNExtensionChallenges(cfg.NumChallenges)
	if len(lookupChallenges) < 2 {
		return newErr(ErrMalformedProof, "", fmt.Errorf("cfg.NumChallenges must draw at least 2 challenges for the (beta, gamma) lookup pair"))
	}
	beta, gamma := lookupChallenges[0], lookupChallenges[1]

	if err := verifyTable(cfg, "keccak", keccak.Table{}, &proof.Keccak, beta, gamma, chal); err != nil {
		log.Warn().Err(err).Msg("stark: keccak table rejected")
		return err
	}
	if err := verifyTable(cfg, "memory", memory.Table{}, &proof.Memory, beta, gamma, chal); err != nil {
		log.Warn().Err(err).Msg("stark: memory table rejected")
		return err
	}

	return nil
}

func verifyTable(cfg Config, name string, tbl table.Table, sp *StarkProof, beta, gamma field.Quadratic, chal *challenger.Challenger) error {
	chal.Compact()

	hasAux := tbl.NumAuxColumns() > 0
	chal.ObserveCap(sp.AuxiliaryCap)

	alpha := chal.GetExtensionChallenge()

	chal.ObserveCap(sp.QuotientCap)
	zeta := chal.GetExtensionChallenge()

	n := 1 << sp.TraceDomainLog
	g := traceDomainGenerator(n)
	gZeta := zeta.Mul(field.FromBase(g))

	nc := numColumns(name)
	if len(sp.Openings.Local) != nc || len(sp.Openings.Next) != nc {
		return newErr(ErrMalformedProof, name, fmt.Errorf("opening count %d/%d, expected %d", len(sp.Openings.Local), len(sp.Openings.Next), nc))
	}
	nAux := tbl.NumAuxColumns()
	if len(sp.Openings.AuxLocal) != nAux || len(sp.Openings.AuxNext) != nAux {
		return newErr(ErrMalformedProof, name, fmt.Errorf("auxiliary opening count %d/%d, expected %d", len(sp.Openings.AuxLocal), len(sp.Openings.AuxNext), nAux))
	}

	transition := tbl.EvalExtension(sp.Openings.Local, sp.Openings.Next)
	if hasAux {
		transition = append(transition, tbl.EvalAuxExtension(sp.Openings.Local, sp.Openings.Next, sp.Openings.AuxLocal, sp.Openings.AuxNext, beta, gamma)...)
	}
	transitionSum, nextPower := combinedExtension(transition, field.OneQuadratic(), alpha)

	boundarySum := field.ZeroQuadratic()
	if hasAux {
		boundarySum, _ = combinedExtension(tbl.EvalBoundaryExtension(sp.Openings.AuxLocal), nextPower, alpha)
	}

	zH := vanishingAt(zeta, n)
	lhs := sp.Openings.Quotient.Mul(zH).Mul(zeta.Sub(field.OneQuadratic()))
	rhs := transitionSum.Mul(zeta.Sub(field.OneQuadratic())).Add(boundarySum.Mul(zH))
	if !lhs.Equal(rhs) {
		return newErr(ErrOutOfDomainConsistency, name, fmt.Errorf("quotient(zeta) does not match the alpha-combined constraint value"))
	}

	chal.ObserveExtensionElements(sp.Openings.Local)
	chal.ObserveExtensionElements(sp.Openings.Next)
	if hasAux {
		chal.ObserveExtensionElements(sp.Openings.AuxLocal)
		chal.ObserveExtensionElements(sp.Openings.AuxNext)
	}
	chal.ObserveExtensionElement(sp.Openings.Quotient)
	chal.ObserveExtensionElement(sp.Openings.QuotientNxt)

	deepGamma := chal.GetExtensionChallenge()

	blowup := 1 << tableBlowupBits(cfg, tbl.ConstraintDegree())
	m := n * blowup

	groups := []compositionGroup{{numColumns: nc, local: sp.Openings.Local, next: sp.Openings.Next}}
	if hasAux {
		groups = append(groups, compositionGroup{numColumns: nAux, local: sp.Openings.AuxLocal, next: sp.Openings.AuxNext})
	}
	expectedLeaves := len(groups)

	combine := func(index int, initial fri.InitialTreesProof) (field.Quadratic, error) {
		if len(initial.Leafs) != expectedLeaves+1 {
			return field.Quadratic{}, fmt.Errorf("expected %d initial-tree leaves, got %d", expectedLeaves+1, len(initial.Leafs))
		}
		leaves := initial.Leafs[:expectedLeaves]
		quotientLeaf := initial.Leafs[expectedLeaves]
		return combineAtQuery(index, m, groups, zeta, gZeta, sp.Openings.Quotient, deepGamma, leaves, quotientLeaf)
	}

	initialCaps := []merkle.Cap{sp.TraceCap}
	if hasAux {
		initialCaps = append(initialCaps, sp.AuxiliaryCap)
	}
	initialCaps = append(initialCaps, sp.QuotientCap)
	if err := fri.Verify(cfg.FRI, sp.FRI, initialCaps, m, chal, combine); err != nil {
		return newErr(friErrKind(err), name, err)
	}

	return nil
}

// friErrKind maps an error fri.Verify returned to the stark.Kind discriminant
// spec.md §7 requires, distinguishing a Merkle-opening failure or a
// proof-of-work failure from a general fold-consistency failure.
func friErrKind(err error) Kind {
	switch {
	case errors.Is(err, fri.ErrMerkleOpening):
		return ErrMerkleVerification
	case errors.Is(err, fri.ErrProofOfWork):
		return ErrProofOfWork
	default:
		return ErrFRIConsistency
	}
}

func numColumns(name string) int {
	switch name {
	case "keccak":
		return register.NumKeccakColumns
	case "memory":
		return register.NumMemoryColumns
	default:
		panic("stark: unknown table name " + name)
	}
}
