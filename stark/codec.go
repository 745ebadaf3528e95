package stark

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/ronanh/intcomp"

	"github.com/goldstark/goldstark/fri"
)

// wireProof is AllProof's on-the-wire shape: the format version travels as
// its canonical string (semver.Version itself is not a flat CBOR-friendly
// struct) and every FRI query round's sampled index is also copied into one
// packed list, since it is the single largest repeated small-integer
// structure in a proof. The CBOR-encoded StarkProofs still carry each
// round's Index; UnmarshalProof overwrites them from the packed list.
type wireProof struct {
	FormatVersion string
	Keccak        wireStarkProof
	Memory        wireStarkProof
	PackedIndices []uint32
	IndexCounts   [2]int // number of query rounds in Keccak, then Memory
}

type wireStarkProof struct {
	Proof StarkProof
}

// MarshalProof encodes proof for storage or transmission (spec.md §6's
// "serialization, out of scope" collaborator gets a minimal concrete
// binding here rather than a full wire-format harness).
func MarshalProof(proof *AllProof) ([]byte, error) {
	keccakIdx := queryIndices(proof.Keccak.FRI)
	memoryIdx := queryIndices(proof.Memory.FRI)

	packed := intcomp.CompressUint32(append(append([]uint32{}, keccakIdx...), memoryIdx...), nil)

	w := wireProof{
		FormatVersion: proof.FormatVersion.String(),
		Keccak:        wireStarkProof{Proof: proof.Keccak},
		Memory:        wireStarkProof{Proof: proof.Memory},
		PackedIndices: packed,
		IndexCounts:   [2]int{len(keccakIdx), len(memoryIdx)},
	}
	return cbor.Marshal(w)
}

// UnmarshalProof is the inverse of MarshalProof.
func UnmarshalProof(data []byte) (*AllProof, error) {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("stark: decoding proof: %w", err)
	}

	version, err := semver.Parse(w.FormatVersion)
	if err != nil {
		return nil, fmt.Errorf("stark: parsing format version: %w", err)
	}

	total := w.IndexCounts[0] + w.IndexCounts[1]
	indices := make([]uint32, total)
	indices = intcomp.UncompressUint32(w.PackedIndices, indices)

	restoreQueryIndices(w.Keccak.Proof.FRI, indices[:w.IndexCounts[0]])
	restoreQueryIndices(w.Memory.Proof.FRI, indices[w.IndexCounts[0]:])

	return &AllProof{
		FormatVersion: version,
		Keccak:        w.Keccak.Proof,
		Memory:        w.Memory.Proof,
	}, nil
}

func queryIndices(proof *fri.Proof) []uint32 {
	if proof == nil {
		return nil
	}
	out := make([]uint32, len(proof.QueryRounds))
	for i, r := range proof.QueryRounds {
		out[i] = uint32(r.Index)
	}
	return out
}

func restoreQueryIndices(proof *fri.Proof, indices []uint32) {
	if proof == nil {
		return
	}
	for i := range proof.QueryRounds {
		proof.QueryRounds[i].Index = int(indices[i])
	}
}
