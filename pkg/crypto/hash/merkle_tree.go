package hash

import (
	"errors"

	"github.com/vegetish/ledgernotary/pkg/util"
)

// MerkleTreeNode is one node of a binary Merkle tree built over a
// list of leaf hashes. Odd layers are padded with util.ZeroHash so
// every internal node has exactly two children, per spec.
type MerkleTreeNode struct {
	Hash       util.SecureHash
	parent     *MerkleTreeNode
	leftChild  *MerkleTreeNode
	rightChild *MerkleTreeNode
}

// IsLeaf reports whether n has no children.
func (n *MerkleTreeNode) IsLeaf() bool {
	return n.leftChild == nil && n.rightChild == nil
}

// IsRoot reports whether n has no parent.
func (n *MerkleTreeNode) IsRoot() bool {
	return n.parent == nil
}

// MerkleTree is a binary tree over leaf hashes.
type MerkleTree struct {
	root  *MerkleTreeNode
	depth int
}

// NewMerkleTree builds a MerkleTree over hashes. It fails on an empty
// input, per spec ("getMerkleTree([]) -> error").
func NewMerkleTree(hashes []util.SecureHash) (*MerkleTree, error) {
	if len(hashes) == 0 {
		return nil, errors.New("hash: cannot build a merkle tree with no leaves")
	}
	leaves := make([]*MerkleTreeNode, len(hashes))
	for i, h := range hashes {
		leaves[i] = &MerkleTreeNode{Hash: h}
	}
	root, depth := buildMerkleTree(leaves)
	return &MerkleTree{root: root, depth: depth}, nil
}

// Root returns the tree's root hash.
func (t *MerkleTree) Root() util.SecureHash {
	return t.root.Hash
}

// Depth returns the number of layers above the leaves.
func (t *MerkleTree) Depth() int {
	return t.depth
}

// buildMerkleTree constructs the tree bottom-up from leaf nodes,
// padding each odd layer with a zero-sentinel node so every internal
// node has two children. Panics on no leaves — callers (NewMerkleTree)
// reject that case with a recoverable error first.
func buildMerkleTree(leaves []*MerkleTreeNode) (*MerkleTreeNode, int) {
	if len(leaves) == 0 {
		panic("hash: buildMerkleTree called with no leaves")
	}
	if len(leaves) == 1 {
		return leaves[0], 0
	}

	layer := leaves
	depth := 0
	for len(layer) > 1 {
		if len(layer)%2 == 1 {
			layer = append(layer, &MerkleTreeNode{Hash: util.ZeroHash})
		}
		next := make([]*MerkleTreeNode, 0, len(layer)/2)
		for i := 0; i < len(layer); i += 2 {
			left, right := layer[i], layer[i+1]
			parent := &MerkleTreeNode{
				Hash:       Branch(left.Hash, right.Hash),
				leftChild:  left,
				rightChild: right,
			}
			left.parent = parent
			right.parent = parent
			next = append(next, parent)
		}
		layer = next
		depth++
	}
	return layer[0], depth
}

// CalcMerkleRoot is a convenience wrapper that returns just the root
// hash without retaining the tree structure.
func CalcMerkleRoot(hashes []util.SecureHash) util.SecureHash {
	if len(hashes) == 0 {
		return util.SecureHash{}
	}
	if len(hashes) == 1 {
		return hashes[0]
	}
	t, err := NewMerkleTree(hashes)
	if err != nil {
		return util.SecureHash{}
	}
	return t.Root()
}
