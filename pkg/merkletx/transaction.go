package merkletx

import (
	"sort"

	"github.com/vegetish/ledgernotary/pkg/crypto/hash"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// groupState is the fully-materialized per-group Merkle state kept
// after Build: the leaves in order, each one's nonce, and the group's
// own Merkle root.
type groupState struct {
	groupIndex uint16
	components [][]byte
	nonces     []util.SecureHash
	leaves     []util.SecureHash
	root       util.SecureHash
}

// Transaction is the frozen, constructed form of a set of component
// groups under a privacy salt: the component-group Merkle state plus
// the transaction id. Once built it never mutates.
type Transaction struct {
	id          util.SecureHash
	salt        util.SecureHash
	groups      map[uint16]*groupState
	maxGroupIdx uint16
	groupHashes []util.SecureHash
}

// ID returns the transaction's deterministic identity.
func (t *Transaction) ID() util.SecureHash { return t.id }

// GroupHashes returns the complete list of group roots (AllOnesHash
// for absent groups) the top-level Merkle tree was built over.
func (t *Transaction) GroupHashes() []util.SecureHash {
	out := make([]util.SecureHash, len(t.groupHashes))
	copy(out, t.groupHashes)
	return out
}

// Build validates and constructs a Transaction from its component
// groups and privacy salt. salt must be non-nil: it is mandatory, per
// spec. validate may be nil.
func Build(groups []ComponentGroup, salt *util.SecureHash, validate ComponentValidator) (*Transaction, error) {
	if salt == nil {
		return nil, malformed("privacy salt is required")
	}
	if len(groups) == 0 {
		return nil, malformed("at least one component group is required")
	}

	seen := make(map[uint16]bool, len(groups))
	states := make(map[uint16]*groupState, len(groups))
	var maxIdx uint16
	first := true

	for _, g := range groups {
		if seen[g.GroupIndex] {
			return nil, malformed("duplicate group index %d", g.GroupIndex)
		}
		seen[g.GroupIndex] = true

		if len(g.Components) == 0 {
			return nil, malformed("group %d is present but empty; empty groups must be absent", g.GroupIndex)
		}
		if singletonGroups[g.GroupIndex] && len(g.Components) > 1 {
			return nil, malformed("singleton group %d has %d elements", g.GroupIndex, len(g.Components))
		}

		nonces := make([]util.SecureHash, len(g.Components))
		leaves := make([]util.SecureHash, len(g.Components))
		for i, c := range g.Components {
			if validate != nil {
				if err := validate(g.GroupIndex, c); err != nil {
					return nil, malformed("group %d component %d: %v", g.GroupIndex, i, err)
				}
			}
			nonces[i] = hash.Nonce(*salt, g.GroupIndex, uint32(i))
			leaves[i] = hash.ComponentLeaf(nonces[i], c)
		}

		root := hash.CalcMerkleRoot(leaves)
		components := make([][]byte, len(g.Components))
		for i, c := range g.Components {
			cp := make([]byte, len(c))
			copy(cp, c)
			components[i] = cp
		}

		states[g.GroupIndex] = &groupState{
			groupIndex: g.GroupIndex,
			components: components,
			nonces:     nonces,
			leaves:     leaves,
			root:       root,
		}
		if first || g.GroupIndex > maxIdx {
			maxIdx = g.GroupIndex
			first = false
		}
	}

	groupHashes := make([]util.SecureHash, maxIdx+1)
	for i := range groupHashes {
		if st, ok := states[uint16(i)]; ok {
			groupHashes[i] = st.root
		} else {
			groupHashes[i] = util.AllOnesHash
		}
	}

	id := hash.CalcMerkleRoot(groupHashes)

	return &Transaction{
		id:          id,
		salt:        *salt,
		groups:      states,
		maxGroupIdx: maxIdx,
		groupHashes: groupHashes,
	}, nil
}

// Components returns a defensive copy of groupIndex's revealed
// components in original order, for a validating notary that holds
// the full transaction rather than a filtered view of it.
func (t *Transaction) Components(groupIndex uint16) ([][]byte, bool) {
	st, ok := t.groups[groupIndex]
	if !ok {
		return nil, false
	}
	out := make([][]byte, len(st.components))
	for i, c := range st.components {
		cp := make([]byte, len(c))
		copy(cp, c)
		out[i] = cp
	}
	return out, true
}

// presentGroupIndices returns the transaction's present group indices
// in ascending order, for deterministic iteration during filtering.
func (t *Transaction) presentGroupIndices() []uint16 {
	out := make([]uint16, 0, len(t.groups))
	for idx := range t.groups {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
