package backend

import "github.com/goldstark/goldstark/field"

// Field is the native Arithmetic[field.Element] backend used by the prover
// and by non-recursive verification.
type Field struct{}

func (Field) Add(a, b field.Element) field.Element { return a.Add(b) }
func (Field) Sub(a, b field.Element) field.Element { return a.Sub(b) }
func (Field) Mul(a, b field.Element) field.Element { return a.Mul(b) }
func (Field) Const(v uint64) field.Element         { return field.NewElement(v) }

// Extension is the Arithmetic[field.Quadratic] backend used to evaluate
// constraint polynomials at the out-of-domain point ζ, which lives in the
// degree-2 extension.
type Extension struct{}

func (Extension) Add(a, b field.Quadratic) field.Quadratic { return a.Add(b) }
func (Extension) Sub(a, b field.Quadratic) field.Quadratic { return a.Sub(b) }
func (Extension) Mul(a, b field.Quadratic) field.Quadratic { return a.Mul(b) }
func (Extension) Const(v uint64) field.Quadratic           { return field.FromBase(field.NewElement(v)) }
