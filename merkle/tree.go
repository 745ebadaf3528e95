// Package merkle implements the commit/open/verify oracle interface that the
// rest of this module treats the Merkle/hash layer as: commit(chunks) -> cap,
// open(index) -> (leaf, path), verify(cap, index, leaf, path) -> bool. The
// underlying compression function is Keccak/SHA-3 (golang.org/x/crypto/sha3)
// — an apt choice given the subject of the proof system is itself a Keccak
// permutation.
package merkle

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"github.com/goldstark/goldstark/field"
)

// DigestSize is the output width of the tree's hash function, in bytes.
const DigestSize = 32

// Digest is a single hash output.
type Digest [DigestSize]byte

func hashLeaf(chunk []field.Element) Digest {
	h := sha3.New256()
	for _, e := range chunk {
		var buf [8]byte
		v := e.Uint64()
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

func hashNode(left, right Digest) Digest {
	h := sha3.New256()
	h.Write(left[:])
	h.Write(right[:])
	var d Digest
	h.Sum(d[:0])
	return d
}

// Cap is the set of digests at the chosen cap height of a tree, traded off
// against opening-path length.
type Cap []Digest

// Tree is an immutable Merkle tree over row-major leaves, each leaf being a
// flattened slice of field elements (e.g. one row of a folded FRI codeword).
type Tree struct {
	leaves [][]field.Element
	// layers[0] is the leaf-hash layer, layers[len-1] has length 2^capHeight.
	layers    [][]Digest
	capHeight int
}

// NewTree builds a tree over leaves (length must be a power of two) whose
// cap is the layer of size 2^capHeight. Leaf hashing is parallelized across
// goroutines per the concurrency model's data-parallel Merkle construction.
func NewTree(leaves [][]field.Element, capHeight int) (*Tree, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("merkle: leaf count %d is not a positive power of two", n)
	}
	if capHeight < 0 || 1<<capHeight > n {
		return nil, fmt.Errorf("merkle: cap height %d incompatible with %d leaves", capHeight, n)
	}

	leafLayer := make([]Digest, n)
	var g errgroup.Group
	workers := 8
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				leafLayer[i] = hashLeaf(leaves[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	layers := [][]Digest{leafLayer}
	cur := leafLayer
	for len(cur) > 1<<capHeight {
		next := make([]Digest, len(cur)/2)
		for i := range next {
			next[i] = hashNode(cur[2*i], cur[2*i+1])
		}
		layers = append(layers, next)
		cur = next
	}

	return &Tree{leaves: leaves, layers: layers, capHeight: capHeight}, nil
}

// Cap returns the tree's cap layer.
func (t *Tree) Cap() Cap { return append(Cap(nil), t.layers[len(t.layers)-1]...) }

// Leaf returns the raw leaf at index, for re-flattening into query proofs.
func (t *Tree) Leaf(index int) []field.Element { return t.leaves[index] }

// Path is an authentication path: the sibling digest at every layer between
// the leaf hash and the cap (exclusive of the cap itself).
type Path []Digest

// Open returns the leaf and its authentication path for index.
func (t *Tree) Open(index int) ([]field.Element, Path) {
	path := make(Path, 0, len(t.layers)-1)
	idx := index
	for l := 0; l < len(t.layers)-1; l++ {
		sibling := idx ^ 1
		path = append(path, t.layers[l][sibling])
		idx >>= 1
	}
	return t.leaves[index], path
}

// Verify checks that leaf opens to cap at index via path.
func Verify(cap Cap, index int, leaf []field.Element, path Path) bool {
	cur := hashLeaf(leaf)
	idx := index
	for _, sibling := range path {
		if idx&1 == 0 {
			cur = hashNode(cur, sibling)
		} else {
			cur = hashNode(sibling, cur)
		}
		idx >>= 1
	}
	if idx >= len(cap) {
		return false
	}
	return bytes.Equal(cur[:], cap[idx][:])
}
