package merkletx

import (
	"github.com/vegetish/ledgernotary/pkg/crypto/hash"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// PartialMerkleTree is the minimal subtree that authenticates a chosen
// subset of leaves against a known root: a pre-order traversal of
// "descend further" bits plus the sibling hashes for everything not
// descended into. The shape mirrors the Hashes+Flags pair carried by
// a classic SPV merkle-block payload.
type PartialMerkleTree struct {
	NumLeaves int
	Bits      []bool
	Hashes    []util.SecureHash
}

// calcTreeWidth returns the number of nodes at a given height above
// the leaves, for a tree over nLeaves leaves built by repeatedly
// halving (rounding up) the layer width — exactly the layer-size
// sequence buildMerkleTree produces.
func calcTreeWidth(height, nLeaves int) int {
	w := nLeaves
	for i := 0; i < height; i++ {
		w = (w + 1) / 2
	}
	return w
}

func treeDepth(nLeaves int) int {
	depth := 0
	w := nLeaves
	for w > 1 {
		w = (w + 1) / 2
		depth++
	}
	return depth
}

// calcHash recomputes the hash of the node at (height, pos) directly
// from the leaves, substituting util.ZeroHash for a missing right
// child — the same rule buildMerkleTree applies when padding an odd
// layer, so this reproduces hash.CalcMerkleRoot(leaves) exactly.
func calcHash(height, pos int, leaves []util.SecureHash) util.SecureHash {
	if height == 0 {
		return leaves[pos]
	}
	left := calcHash(height-1, pos*2, leaves)
	rightPos := pos*2 + 1
	if rightPos < calcTreeWidth(height-1, len(leaves)) {
		right := calcHash(height-1, rightPos, leaves)
		return hash.Branch(left, right)
	}
	return hash.Branch(left, util.ZeroHash)
}

// buildPartialMerkleTree constructs the minimal proof authenticating
// the leaves at the positions where matched is true.
func buildPartialMerkleTree(leaves []util.SecureHash, matched []bool) *PartialMerkleTree {
	pmt := &PartialMerkleTree{NumLeaves: len(leaves)}
	depth := treeDepth(len(leaves))
	traverseAndBuild(depth, 0, leaves, matched, pmt)
	return pmt
}

func subtreeHasMatch(pos, height, nLeaves int, matched []bool) bool {
	lo := pos << uint(height)
	hi := (pos + 1) << uint(height)
	if hi > nLeaves {
		hi = nLeaves
	}
	for i := lo; i < hi; i++ {
		if matched[i] {
			return true
		}
	}
	return false
}

func traverseAndBuild(height, pos int, leaves []util.SecureHash, matched []bool, pmt *PartialMerkleTree) {
	parentOfMatch := subtreeHasMatch(pos, height, len(leaves), matched)
	pmt.Bits = append(pmt.Bits, parentOfMatch)
	if height == 0 || !parentOfMatch {
		pmt.Hashes = append(pmt.Hashes, calcHash(height, pos, leaves))
		return
	}
	traverseAndBuild(height-1, pos*2, leaves, matched, pmt)
	if pos*2+1 < calcTreeWidth(height-1, len(leaves)) {
		traverseAndBuild(height-1, pos*2+1, leaves, matched, pmt)
	}
}

// extractResult is the outcome of walking a PartialMerkleTree: the
// reconstructed root, and the matched leaf hashes/positions in
// ascending position order.
type extractResult struct {
	root         util.SecureHash
	matchedPos   []int
	matchedHash  []util.SecureHash
}

func (pmt *PartialMerkleTree) extract() (*extractResult, error) {
	if pmt.NumLeaves == 0 {
		return nil, malformed("partial merkle tree has zero leaves")
	}
	res := &extractResult{}
	bitIdx, hashIdx := 0, 0
	depth := treeDepth(pmt.NumLeaves)
	root, err := pmt.traverseAndExtract(depth, 0, &bitIdx, &hashIdx, res)
	if err != nil {
		return nil, err
	}
	res.root = root
	if bitIdx != len(pmt.Bits) || hashIdx != len(pmt.Hashes) {
		return nil, malformed("partial merkle tree has unconsumed data")
	}
	return res, nil
}

func (pmt *PartialMerkleTree) traverseAndExtract(height, pos int, bitIdx, hashIdx *int, res *extractResult) (util.SecureHash, error) {
	if *bitIdx >= len(pmt.Bits) {
		return util.SecureHash{}, malformed("partial merkle tree ran out of bits")
	}
	b := pmt.Bits[*bitIdx]
	*bitIdx++

	if height == 0 || !b {
		if *hashIdx >= len(pmt.Hashes) {
			return util.SecureHash{}, malformed("partial merkle tree ran out of hashes")
		}
		h := pmt.Hashes[*hashIdx]
		*hashIdx++
		if height == 0 && b {
			res.matchedPos = append(res.matchedPos, pos)
			res.matchedHash = append(res.matchedHash, h)
		}
		return h, nil
	}

	left, err := pmt.traverseAndExtract(height-1, pos*2, bitIdx, hashIdx, res)
	if err != nil {
		return util.SecureHash{}, err
	}
	var right util.SecureHash
	if pos*2+1 < calcTreeWidth(height-1, pmt.NumLeaves) {
		right, err = pmt.traverseAndExtract(height-1, pos*2+1, bitIdx, hashIdx, res)
		if err != nil {
			return util.SecureHash{}, err
		}
	} else {
		right = util.ZeroHash
	}
	return hash.Branch(left, right), nil
}
