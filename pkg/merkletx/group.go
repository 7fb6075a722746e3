// Package merkletx implements the Merkle-ized transaction
// representation: component groups, the deterministic transaction id,
// filtered (partial) transactions and the privacy-preserving proofs
// that back them.
package merkletx

// Well-known component group indices. Indices beyond SignersGroup are
// unknown-but-preserved forward-compatibility slots: this package
// still Merkle-izes and filters them, it just has no typed view of
// their contents.
const (
	InputsGroup     uint16 = 0
	OutputsGroup    uint16 = 1
	CommandsGroup   uint16 = 2
	AttachmentsGroup uint16 = 3
	NotaryGroup     uint16 = 4
	TimeWindowGroup uint16 = 5
	SignersGroup    uint16 = 6
)

// singletonGroups holds the well-known groups that may carry at most
// one component.
var singletonGroups = map[uint16]bool{
	NotaryGroup:     true,
	TimeWindowGroup: true,
}

// ComponentGroup is a tagged, ordered list of opaque serialized
// byte-strings. Components are opaque to this package — the object
// codec that produced them is out of scope here, and is injected only
// through the optional ComponentValidator passed to Build.
type ComponentGroup struct {
	GroupIndex uint16
	Components [][]byte
}

// ComponentValidator is called once per component during Build, so a
// caller that does own a serialization codec can reject components
// that fail to deserialize as their well-known group's expected type.
// A nil validator skips this check (structural invariants are still
// enforced unconditionally).
type ComponentValidator func(groupIndex uint16, component []byte) error
