package merkletx

import (
	"fmt"

	"github.com/vegetish/ledgernotary/pkg/crypto/hash"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// group returns the filtered group with the given index, if revealed.
func (ft *FilteredTransaction) group(idx uint16) (*FilteredComponentGroup, bool) {
	for i := range ft.Groups {
		if ft.Groups[i].GroupIndex == idx {
			return &ft.Groups[i], true
		}
	}
	return nil, false
}

// Verify checks that every revealed group authenticates against the
// transaction's own id: the top-level tree over GroupHashes must
// reproduce ID, and each group's partial proof must reconstruct to
// the matching entry of GroupHashes with leaves that re-hash from the
// revealed nonce/component pairs in order. A filtered transaction with
// no revealed groups at all — the fully blind case — verifies
// trivially, since there is nothing left to authenticate beyond the id.
func (ft *FilteredTransaction) Verify() error {
	if len(ft.GroupHashes) == 0 {
		return &FilteredTransactionVerificationError{ID: ft.ID.String(), Reason: "groupHashes is empty"}
	}
	if computed := hash.CalcMerkleRoot(ft.GroupHashes); !computed.Equals(ft.ID) {
		return &FilteredTransactionVerificationError{ID: ft.ID.String(), Reason: "groupHashes does not hash to id"}
	}

	for _, g := range ft.Groups {
		if int(g.GroupIndex) >= len(ft.GroupHashes) {
			return &FilteredTransactionVerificationError{
				ID:     ft.ID.String(),
				Reason: fmt.Sprintf("group %d has no corresponding groupHashes entry", g.GroupIndex),
			}
		}
		if g.Proof == nil {
			return &FilteredTransactionVerificationError{
				ID:     ft.ID.String(),
				Reason: fmt.Sprintf("group %d carries no proof", g.GroupIndex),
			}
		}
		res, err := g.Proof.extract()
		if err != nil {
			return &FilteredTransactionVerificationError{
				ID:     ft.ID.String(),
				Reason: fmt.Sprintf("group %d: %v", g.GroupIndex, err),
			}
		}
		if !res.root.Equals(ft.GroupHashes[g.GroupIndex]) {
			return &FilteredTransactionVerificationError{
				ID:     ft.ID.String(),
				Reason: fmt.Sprintf("group %d proof root does not match groupHashes", g.GroupIndex),
			}
		}
		if len(res.matchedHash) != len(g.RevealedComponents) || len(res.matchedHash) != len(g.RevealedNonces) {
			return &FilteredTransactionVerificationError{
				ID:     ft.ID.String(),
				Reason: fmt.Sprintf("group %d: revealed component count does not match proof", g.GroupIndex),
			}
		}
		for i, wantLeaf := range res.matchedHash {
			gotLeaf := hash.ComponentLeaf(g.RevealedNonces[i], g.RevealedComponents[i])
			if !gotLeaf.Equals(wantLeaf) {
				return &FilteredTransactionVerificationError{
					ID:     ft.ID.String(),
					Reason: fmt.Sprintf("group %d: revealed component %d does not re-hash to its proof leaf", g.GroupIndex, i),
				}
			}
		}
	}
	return nil
}

// CheckAllComponentsVisible succeeds if every component of group was
// revealed: the revealed leaves, hashed in order, must reproduce
// GroupHashes[group] exactly, which is only possible if nothing from
// the original group was withheld. It succeeds vacuously if group was
// never present in the source transaction (its stored root is
// AllOnesHash, or the index is beyond the transaction's known groups).
func (ft *FilteredTransaction) CheckAllComponentsVisible(group uint16) error {
	if int(group) >= len(ft.GroupHashes) || ft.GroupHashes[group].Equals(util.AllOnesHash) {
		return nil
	}
	g, ok := ft.group(group)
	if !ok {
		return &ComponentVisibilityError{
			ID:     ft.ID.String(),
			Reason: fmt.Sprintf("group %d was not revealed at all", group),
		}
	}
	leaves := make([]util.SecureHash, len(g.RevealedComponents))
	for i, c := range g.RevealedComponents {
		leaves[i] = hash.ComponentLeaf(g.RevealedNonces[i], c)
	}
	if root := hash.CalcMerkleRoot(leaves); !root.Equals(ft.GroupHashes[group]) {
		return &ComponentVisibilityError{
			ID:     ft.ID.String(),
			Reason: fmt.Sprintf("group %d is only partially revealed", group),
		}
	}
	return nil
}

// SignerSetDecoder recovers the set of public keys a single SIGNERS
// component requires, given its opaque serialized bytes. Decoding
// command/signer payloads belongs to the object codec that produced
// them, which is out of this package's scope — callers supply it.
type SignerSetDecoder func(signerComponent []byte) ([][]byte, error)

// CheckCommandVisibility proves that pubKey has visibility into every
// command it is a party to, and nothing more: if SIGNERS is present it
// must be fully revealed, and the number of revealed COMMANDS entries
// whose parallel SIGNERS entry names pubKey must equal the total
// number of SIGNERS entries naming pubKey across the whole
// transaction. Transactions predating the SIGNERS group fall back to
// requiring full COMMANDS visibility instead.
func (ft *FilteredTransaction) CheckCommandVisibility(pubKey []byte, decode SignerSetDecoder) error {
	signers, hasSigners := ft.group(SignersGroup)
	if !hasSigners {
		return ft.CheckAllComponentsVisible(CommandsGroup)
	}
	if err := ft.CheckAllComponentsVisible(SignersGroup); err != nil {
		return err
	}

	totalWithKey := 0
	for _, sc := range signers.RevealedComponents {
		keys, err := decode(sc)
		if err != nil {
			return &ComponentVisibilityError{ID: ft.ID.String(), Reason: fmt.Sprintf("signers: %v", err)}
		}
		if containsKey(keys, pubKey) {
			totalWithKey++
		}
	}

	revealedWithKey := 0
	if commands, ok := ft.group(CommandsGroup); ok {
		for _, idx := range commands.RevealedIndices {
			if idx >= len(signers.RevealedComponents) {
				return &ComponentVisibilityError{
					ID:     ft.ID.String(),
					Reason: fmt.Sprintf("command %d has no parallel signer entry", idx),
				}
			}
			keys, err := decode(signers.RevealedComponents[idx])
			if err != nil {
				return &ComponentVisibilityError{ID: ft.ID.String(), Reason: fmt.Sprintf("signers: %v", err)}
			}
			if containsKey(keys, pubKey) {
				revealedWithKey++
			}
		}
	}

	if revealedWithKey != totalWithKey {
		return &ComponentVisibilityError{
			ID:     ft.ID.String(),
			Reason: "revealed commands do not account for every command signed by this key",
		}
	}
	return nil
}

func containsKey(keys [][]byte, want []byte) bool {
	for _, k := range keys {
		if len(k) == len(want) {
			match := true
			for i := range k {
				if k[i] != want[i] {
					match = false
					break
				}
			}
			if match {
				return true
			}
		}
	}
	return false
}
