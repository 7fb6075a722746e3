package merkletx

import (
	"sort"

	"github.com/vegetish/ledgernotary/pkg/util"
)

// Predicate decides whether one component of one group should be
// revealed in a FilteredTransaction.
type Predicate func(groupIndex uint16, internalIndex int, component []byte) bool

// FilteredComponentGroup is the filtered view of one component group:
// the revealed components and their nonces, plus the partial Merkle
// proof tying them back to the group's root.
type FilteredComponentGroup struct {
	GroupIndex         uint16
	RevealedIndices    []int
	RevealedComponents [][]byte
	RevealedNonces     []util.SecureHash
	Proof              *PartialMerkleTree
}

// FilteredTransaction is a partial view of a Transaction that reveals
// only the components a Predicate selected, plus enough proof
// material to authenticate them against the transaction's id without
// disclosing anything else. Filtered transactions are derived views
// and never mutate.
type FilteredTransaction struct {
	ID          util.SecureHash
	Groups      []FilteredComponentGroup
	GroupHashes []util.SecureHash
}

// Filter walks the transaction's component groups applying p to every
// component. If any COMMANDS component is selected, the entire
// SIGNERS group is also revealed — this preserves the ability to
// prove "these are all the commands requiring key K" without exposing
// unrelated commands.
func (t *Transaction) Filter(p Predicate) *FilteredTransaction {
	ft := &FilteredTransaction{
		ID:          t.id,
		GroupHashes: t.GroupHashes(),
	}

	revealSigners := false
	indices := t.presentGroupIndices()

	built := make(map[uint16]FilteredComponentGroup, len(indices))
	order := make([]uint16, 0, len(indices))

	for _, idx := range indices {
		st := t.groups[idx]
		matched := make([]bool, len(st.components))
		anyMatched := false
		for i, c := range st.components {
			if p(idx, i, c) {
				matched[i] = true
				anyMatched = true
			}
		}
		if idx == CommandsGroup && anyMatched {
			revealSigners = true
		}
		if !anyMatched {
			continue
		}
		built[idx] = filterGroup(st, matched)
		order = append(order, idx)
	}

	if revealSigners {
		if st, ok := t.groups[SignersGroup]; ok {
			if _, already := built[SignersGroup]; !already {
				matched := make([]bool, len(st.components))
				for i := range matched {
					matched[i] = true
				}
				built[SignersGroup] = filterGroup(st, matched)
				order = append(order, SignersGroup)
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, idx := range order {
		ft.Groups = append(ft.Groups, built[idx])
	}
	return ft
}

func filterGroup(st *groupState, matched []bool) FilteredComponentGroup {
	var indices []int
	var components [][]byte
	var nonces []util.SecureHash
	for i, m := range matched {
		if !m {
			continue
		}
		cp := make([]byte, len(st.components[i]))
		copy(cp, st.components[i])
		indices = append(indices, i)
		components = append(components, cp)
		nonces = append(nonces, st.nonces[i])
	}
	return FilteredComponentGroup{
		GroupIndex:         st.groupIndex,
		RevealedIndices:    indices,
		RevealedComponents: components,
		RevealedNonces:     nonces,
		Proof:              buildPartialMerkleTree(st.leaves, matched),
	}
}
