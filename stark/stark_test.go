package stark_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldstark/goldstark/field"
	"github.com/goldstark/goldstark/fri"
	"github.com/goldstark/goldstark/register"
	"github.com/goldstark/goldstark/stark"
	"github.com/goldstark/goldstark/table/memory"
)

// testConfig is deliberately tiny: small enough that the Keccak and memory
// traces, their LDE domains, and the FRI reduction schedule can all be
// reasoned about by hand rather than tuned for production soundness.
func testConfig() stark.Config {
	return stark.Config{
		NumChallenges: 2,
		FRI: fri.Config{
			ReductionArityBits: []int{1, 1, 1},
			RateBits:           1,
			CapHeight:          1,
			NumQueryRounds:     4,
			ProofOfWorkBits:    8,
		},
	}
}

func testKeccakInputs() [][register.InputLimbs]uint64 {
	var input [register.InputLimbs]uint64
	for i := range input {
		input[i] = uint64(i + 1)
	}
	return [][register.InputLimbs]uint64{input}
}

func testMemoryOps() []memory.Op {
	var value [register.ValueLimbs]uint64
	value[0] = 42
	return []memory.Op{
		{Context: 0, Segment: 0, Virtual: 0, Value: value, IsRead: false, Timestamp: 0},
		{Context: 0, Segment: 0, Virtual: 0, Value: value, IsRead: true, Timestamp: 1},
		{Context: 0, Segment: 0, Virtual: 1, Value: value, IsRead: false, Timestamp: 2},
		{Context: 0, Segment: 1, Virtual: 0, Value: value, IsRead: false, Timestamp: 3},
		{Context: 1, Segment: 0, Virtual: 0, Value: value, IsRead: false, Timestamp: 4},
	}
}

func TestProveVerifyRoundTrip(t *testing.T) {
	cfg := testConfig()
	proof, err := stark.Prove(cfg, testKeccakInputs(), testMemoryOps())
	require.NoError(t, err)
	require.NoError(t, stark.Verify(cfg, proof))
}

func TestVerifyRejectsCorruptedTraceCap(t *testing.T) {
	cfg := testConfig()
	proof, err := stark.Prove(cfg, testKeccakInputs(), testMemoryOps())
	require.NoError(t, err)

	proof.Keccak.TraceCap[0][0] ^= 0xFF

	err = stark.Verify(cfg, proof)
	require.Error(t, err)
}

func TestVerifyRejectsCorruptedAuxiliaryCap(t *testing.T) {
	cfg := testConfig()
	proof, err := stark.Prove(cfg, testKeccakInputs(), testMemoryOps())
	require.NoError(t, err)
	require.NotEmpty(t, proof.Memory.AuxiliaryCap)

	proof.Memory.AuxiliaryCap[0][0] ^= 0xFF

	err = stark.Verify(cfg, proof)
	require.Error(t, err)
}

func TestVerifyRejectsCorruptedProofOfWorkWitness(t *testing.T) {
	cfg := testConfig()
	proof, err := stark.Prove(cfg, testKeccakInputs(), testMemoryOps())
	require.NoError(t, err)

	proof.Memory.FRI.PowWitness = proof.Memory.FRI.PowWitness.Add(field.One())

	err = stark.Verify(cfg, proof)
	require.Error(t, err)
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cfg := testConfig()
	proof, err := stark.Prove(cfg, testKeccakInputs(), testMemoryOps())
	require.NoError(t, err)

	data, err := stark.MarshalProof(proof)
	require.NoError(t, err)

	decoded, err := stark.UnmarshalProof(data)
	require.NoError(t, err)

	require.NoError(t, stark.Verify(cfg, decoded))
}

func TestProveRejectsEmptyMemoryLog(t *testing.T) {
	cfg := testConfig()
	_, err := stark.Prove(cfg, testKeccakInputs(), nil)
	require.Error(t, err)
}
