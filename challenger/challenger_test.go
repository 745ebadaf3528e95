package challenger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/challenger"
	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/merkle"
)

func TestDeterminism(t *testing.T) {
	run := func() []field.Element {
		c := challenger.New()
		c.ObserveElement(field.NewElement(1))
		c.ObserveElement(field.NewElement(2))
		c.ObserveCap(merkle.Cap{{1, 2, 3}, {4, 5, 6}})
		return c.GetNChallenges(4)
	}

	a := run()
	b := run()
	require.Equal(t, a, b)
}

func TestDifferentObservationsDiverge(t *testing.T) {
	c1 := challenger.New()
	c1.ObserveElement(field.NewElement(1))
	out1 := c1.GetChallenge()

	c2 := challenger.New()
	c2.ObserveElement(field.NewElement(2))
	out2 := c2.GetChallenge()

	require.False(t, out1.Equal(out2))
}

func TestCompactDomainSeparates(t *testing.T) {
	c := challenger.New()
	c.ObserveElement(field.NewElement(7))
	beforeCompact := c.GetChallenge()

	c2 := challenger.New()
	c2.ObserveElement(field.NewElement(7))
	c2.Compact()
	afterCompact := c2.GetChallenge()

	// Compacting forces an extra permutation, so the next squeeze differs
	// from squeezing immediately — this is what makes compact() function as
	// a domain separator between tables.
	require.False(t, beforeCompact.Equal(afterCompact))
}
