package backend

import "github.com/consensys/gnark/frontend"

// Circuit is the Arithmetic[frontend.Variable] backend used by the
// recursive verifier: the same constraint expressions that the Field
// backend evaluates natively are, unmodified, turned into gate allocations
// here. This is the "abstract circuit builder" spec.md §4.3/§9 describes as
// the recursive variant's reduction primitive.
type Circuit struct {
	API frontend.API
}

func (c Circuit) Add(a, b frontend.Variable) frontend.Variable { return c.API.Add(a, b) }
func (c Circuit) Sub(a, b frontend.Variable) frontend.Variable { return c.API.Sub(a, b) }
func (c Circuit) Mul(a, b frontend.Variable) frontend.Variable { return c.API.Mul(a, b) }
func (c Circuit) Const(v uint64) frontend.Variable             { return frontend.Variable(v) }
