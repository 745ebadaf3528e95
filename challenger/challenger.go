// Package challenger implements the Fiat-Shamir transcript described in
// spec.md §4.7: a duplex sponge over a hash function that absorbs field
// elements, digests and Merkle caps, and squeezes field or extension-field
// challenges. State is explicit and threaded through the call graph per
// spec.md §9 ("no ambient mutable state"); the challenger is owned
// exclusively by the top-level prover/verifier driver, and components
// borrow it mutably for the duration of one observe/squeeze call, matching
// spec.md §5's shared-resource policy.
package challenger

import (
	"golang.org/x/crypto/sha3"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
)

// spongeWidth is the number of field elements held in the sponge's internal
// state between absorptions.
const spongeWidth = 8

// Challenger is a duplex sponge Fiat-Shamir transcript.
type Challenger struct {
	state       [spongeWidth]field.Element
	inputBuffer []field.Element
}

// New creates a fresh challenger with an all-zero initial state.
func New() *Challenger {
	return &Challenger{}
}

// permute absorbs the pending input buffer into the state and runs the
// sponge's mixing permutation, implemented here as a SHA3-512 hash of the
// state concatenated with the buffer, whose 64-byte digest is split back
// into spongeWidth field elements. The Merkle oracle uses SHA3-256, from the
// same SHA-3 family.
func (c *Challenger) permute() {
	h := sha3.New512()
	for _, e := range c.state {
		writeUint64(h, e.Uint64())
	}
	for _, e := range c.inputBuffer {
		writeUint64(h, e.Uint64())
	}
	digest := h.Sum(nil)

	for i := 0; i < spongeWidth; i++ {
		var v uint64
		for b := 0; b < 8; b++ {
			v |= uint64(digest[(i*8+b)%len(digest)]) << (8 * uint(b))
		}
		c.state[i] = field.NewElement(v)
	}
	c.inputBuffer = c.inputBuffer[:0]
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * uint(i)))
	}
	h.Write(buf[:])
}

// ObserveElement absorbs a single base-field element.
func (c *Challenger) ObserveElement(e field.Element) {
	c.inputBuffer = append(c.inputBuffer, e)
	if len(c.inputBuffer) >= spongeWidth {
		c.permute()
	}
}

// ObserveElements absorbs a slice of base-field elements.
func (c *Challenger) ObserveElements(es []field.Element) {
	for _, e := range es {
		c.ObserveElement(e)
	}
}

// ObserveExtensionElement absorbs an extension-field element as its two
// base-field coordinates.
func (c *Challenger) ObserveExtensionElement(e field.Quadratic) {
	c.ObserveElement(e.A0)
	c.ObserveElement(e.A1)
}

// ObserveExtensionElements absorbs a slice of extension-field elements.
func (c *Challenger) ObserveExtensionElements(es []field.Quadratic) {
	for _, e := range es {
		c.ObserveExtensionElement(e)
	}
}

// ObserveDigest absorbs a single hash digest.
func (c *Challenger) ObserveDigest(d merkle.Digest) {
	for i := 0; i < merkle.DigestSize; i += 8 {
		var v uint64
		for b := 0; b < 8 && i+b < merkle.DigestSize; b++ {
			v |= uint64(d[i+b]) << (8 * uint(b))
		}
		c.ObserveElement(field.NewElement(v))
	}
}

// ObserveCap absorbs every digest of a Merkle cap, in order — this is the
// "observe trace_cap[t]" / "observe auxiliary_polys_cap[t]" /
// "observe quotient_polys_cap[t]" step of spec.md §4.7.
func (c *Challenger) ObserveCap(cap merkle.Cap) {
	for _, d := range cap {
		c.ObserveDigest(d)
	}
}

// flushAndSqueeze forces any buffered input through the permutation (so
// squeezed output reflects everything observed so far) and returns the
// resulting state for sampling.
func (c *Challenger) flushAndSqueeze() [spongeWidth]field.Element {
	c.permute()
	return c.state
}

// GetChallenge squeezes a single base-field challenge.
func (c *Challenger) GetChallenge() field.Element {
	state := c.flushAndSqueeze()
	return state[0]
}

// GetExtensionChallenge squeezes a single extension-field challenge.
func (c *Challenger) GetExtensionChallenge() field.Quadratic {
	state := c.flushAndSqueeze()
	return field.Quadratic{A0: state[0], A1: state[1]}
}

// GetNChallenges squeezes n independent base-field challenges.
func (c *Challenger) GetNChallenges(n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = c.GetChallenge()
	}
	return out
}

// GetNExtensionChallenges squeezes n independent extension-field challenges.
func (c *Challenger) GetNExtensionChallenges(n int) []field.Quadratic {
	out := make([]field.Quadratic, n)
	for i := range out {
		out[i] = c.GetExtensionChallenge()
	}
	return out
}

// State is an opaque snapshot of the sponge's internal state, exposed for
// recursive binding (compact()) and for seeding the proof-of-work search
// (get_hash()).
type State struct {
	Words [spongeWidth]field.Element
}

// Compact flushes pending input and returns a snapshot of the state, usable
// as an explicit domain separator between independently-FRI'd tables (spec
// §4.7's "compacting the challenger between tables").
func (c *Challenger) Compact() State {
	return State{Words: c.flushAndSqueeze()}
}

// GetHash returns a digest-sized snapshot of the state for seeding the
// proof-of-work witness search.
func (c *Challenger) GetHash() [4]field.Element {
	state := c.flushAndSqueeze()
	var out [4]field.Element
	copy(out[:], state[:4])
	return out
}

// HashWithWitness hashes a GetHash seed together with a candidate
// proof-of-work witness, without mutating any Challenger state — the
// search in fri.proofOfWork calls this once per candidate.
func HashWithWitness(seed [4]field.Element, witness uint64) merkle.Digest {
	h := sha3.New256()
	for _, e := range seed {
		writeUint64(h, e.Uint64())
	}
	writeUint64(h, witness)
	var d merkle.Digest
	copy(d[:], h.Sum(nil))
	return d
}
