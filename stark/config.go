// Package stark ties the Keccak and memory tables together behind a single
// Fiat-Shamir transcript and FRI low-degree test, implementing spec.md §6's
// external interface: AllProof in, accept/reject out.
package stark

import (
	"github.com/blang/semver/v4"

	"github.com/goldstark/goldstark/fri"
)

// FormatVersion is the proof wire-format version this build produces and
// accepts. A verifier rejects any proof whose FormatVersion has a different
// major component before doing any cryptographic work (spec.md §7's
// "malformed proof" discriminant, made concrete).
var FormatVersion = semver.MustParse("1.0.0")

// Config is the full parameter set for one STARK instance: how many
// cross-table-lookup challenge sets to draw, and the FRI configuration
// shared by every table (spec.md §4.7/§4.6).
type Config struct {
	NumChallenges int
	FRI           fri.Config
}

// DefaultConfig returns conservative parameters: two independent challenge
// sets and FRI's DefaultConfig.
func DefaultConfig(numFRIFoldRounds int) Config {
	return Config{
		NumChallenges: 2,
		FRI:           fri.DefaultConfig(numFRIFoldRounds),
	}
}
