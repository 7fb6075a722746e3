package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegetish/ledgernotary/pkg/util"
)

func leavesFromStrings(values ...string) []util.SecureHash {
	hashes := make([]util.SecureHash, len(values))
	for i, v := range values {
		hashes[i] = Sha256([]byte(v))
	}
	return hashes
}

func TestMerkleTreeSingleLeafRootEqualsLeaf(t *testing.T) {
	leaf := Sha256([]byte("only leaf"))
	tr, err := NewMerkleTree([]util.SecureHash{leaf})
	require.NoError(t, err)
	assert.Equal(t, leaf, tr.Root())
	assert.True(t, tr.root.IsRoot())
	assert.True(t, tr.root.IsLeaf())
}

func TestMerkleTreeDeterministic(t *testing.T) {
	hashes := leavesFromStrings("a", "b", "c", "d")
	tr1, err := NewMerkleTree(hashes)
	require.NoError(t, err)
	tr2, err := NewMerkleTree(hashes)
	require.NoError(t, err)
	assert.Equal(t, tr1.Root(), tr2.Root())
	assert.Equal(t, CalcMerkleRoot(hashes), tr1.Root())
}

func TestMerkleTreeOddLayerPaddedWithZeroSentinel(t *testing.T) {
	// Three leaves: one odd layer, padded with util.ZeroHash per spec
	// (not a duplicate-last-leaf scheme).
	hashes := leavesFromStrings("a", "b", "c")
	tr, err := NewMerkleTree(hashes)
	require.NoError(t, err)

	padded := append(append([]util.SecureHash{}, hashes...), util.ZeroHash)
	manualRoot := Branch(Branch(padded[0], padded[1]), Branch(padded[2], padded[3]))
	assert.Equal(t, manualRoot, tr.Root())
}

func TestMerkleTreeNodeStructure(t *testing.T) {
	hashes := leavesFromStrings("a", "b", "c", "d")
	tr, err := NewMerkleTree(hashes)
	require.NoError(t, err)
	assert.True(t, tr.root.IsRoot())
	assert.False(t, tr.root.IsLeaf())

	leaf := tr.root
	for leaf.leftChild != nil || leaf.rightChild != nil {
		if leaf.leftChild != nil {
			leaf = leaf.leftChild
			continue
		}
		leaf = leaf.rightChild
	}
	assert.True(t, leaf.IsLeaf())
	assert.False(t, leaf.IsRoot())
}

func TestNewMerkleTreeFailsWithoutHashes(t *testing.T) {
	var hashes []util.SecureHash
	_, err := NewMerkleTree(hashes)
	require.Error(t, err)

	hashes = make([]util.SecureHash, 0)
	_, err = NewMerkleTree(hashes)
	require.Error(t, err)
}

func TestBuildMerkleTreePanicsWithoutNodes(t *testing.T) {
	var leaves []*MerkleTreeNode
	assert.Panics(t, func() { buildMerkleTree(leaves) })
	leaves = make([]*MerkleTreeNode, 0)
	assert.Panics(t, func() { buildMerkleTree(leaves) })
}
