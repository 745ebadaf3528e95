// Package table defines the shared contract every algebraic table (Keccak,
// memory) implements, so the stark/ package's prover and verifier can treat
// them uniformly (spec.md §6's table registry).
package table

import (
	"github.com/consensys/gnark/frontend"

	"github.com/goldstark/goldstark/field"
)

// Table is one algebraic sub-argument of the overall proof: a fixed-width
// column set, a boundary/transition constraint set, and a constraint
// degree bound used to size the quotient polynomial's low-degree extension.
type Table interface {
	// Name identifies the table in logs and in the challenger's domain
	// separation (spec.md §4.7's compact() step).
	Name() string

	// NumColumns is the fixed trace width.
	NumColumns() int

	// ConstraintDegree bounds the algebraic degree of every constraint
	// this table emits, used to size the low-degree extension blowup
	// factor (spec.md §4.6).
	ConstraintDegree() int

	// Eval evaluates every constraint of this table natively over the
	// base field, given one row and its successor. Every returned value
	// must be zero for a valid trace.
	Eval(local, next []field.Element) []field.Element

	// EvalRecursive evaluates the identical constraint set inside a
	// gnark circuit, for the recursive verifier.
	EvalRecursive(api frontend.API, local, next []frontend.Variable)

	// EvalExtension evaluates the identical constraint set over the
	// degree-2 extension, for the out-of-domain consistency check.
	EvalExtension(local, next []field.Quadratic) []field.Quadratic

	// NumAuxColumns is the width of this table's auxiliary column set: the
	// grand-product/lookup running-product columns committed after the
	// lookup challenges (β, γ) are drawn (spec.md §4.7 steps 3a/3b). A
	// table with no lookup argument returns 0 and leaves every EvalAux*/
	// EvalBoundary* method below returning nothing.
	NumAuxColumns() int

	// EvalAux evaluates the table's permutation/lookup transition
	// constraints natively, given one row and its successor of both the
	// main trace and the auxiliary columns, and the lookup challenge pair
	// (β, γ). Unlike Eval, the result is already extension-valued, since
	// β, γ, and the running product they define live in F_D (spec.md
	// §4.5's binding argument is irreducibly an extension-field relation
	// even when every trace cell it reads is a base-field value).
	EvalAux(local, next, auxLocal, auxNext []field.Element, beta, gamma field.Quadratic) []field.Quadratic

	// EvalAuxRecursive evaluates the identical constraints inside a gnark
	// circuit, for the recursive verifier.
	EvalAuxRecursive(api frontend.API, local, next, auxLocal, auxNext []frontend.Variable, beta, gamma [2]frontend.Variable)

	// EvalAuxExtension evaluates the identical constraints when local/next
	// are themselves already-opened extension values (the out-of-domain
	// consistency check), rather than raw base-field trace cells.
	EvalAuxExtension(local, next, auxLocal, auxNext []field.Quadratic, beta, gamma field.Quadratic) []field.Quadratic

	// EvalBoundary evaluates the auxiliary columns' boundary constraints
	// (pinning the running product's initial value), given only the first
	// row's auxiliary cells.
	EvalBoundary(auxLocal []field.Element) []field.Quadratic

	// EvalBoundaryRecursive is EvalBoundary's gnark-circuit counterpart.
	EvalBoundaryRecursive(api frontend.API, auxLocal []frontend.Variable)

	// EvalBoundaryExtension is EvalBoundary evaluated at an already-opened
	// extension value, for the out-of-domain consistency check.
	EvalBoundaryExtension(auxLocal []field.Quadratic) []field.Quadratic
}
