package notarychange

import (
	"bytes"
	"fmt"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
	mio "github.com/vegetish/ledgernotary/pkg/io"
	"github.com/vegetish/ledgernotary/pkg/merkletx"
	"github.com/vegetish/ledgernotary/pkg/util"
)

// stateRefBytes is the wire encoding of a StateRef as an INPUTS
// component, matching pkg/notary's own INPUTS encoding.
func stateRefBytes(ref util.StateRef) []byte {
	var buf bytes.Buffer
	w := mio.NewBinWriterFromIO(&buf)
	w.WriteHash(ref.TxID)
	w.WriteU32LE(ref.Index)
	_ = w.Flush()
	return buf.Bytes()
}

// BuildChangeTransaction builds the distinguished notary-change
// transaction: it consumes input under its current notary and
// produces an identical output, data and encumbrance bitwise
// unchanged, referencing newNotary instead. The old notary — the one
// declared in current.Notary — notarises the change, so it is what
// the NOTARY component carries.
//
// extraGroups are any component groups present on the original state
// at an index this package does not know about; per DESIGN.md they
// are forwarded unchanged rather than dropped.
func BuildChangeTransaction(input util.StateRef, current OutputState, newNotary *keys.PublicKey, salt *util.SecureHash, extraGroups []merkletx.ComponentGroup) (*merkletx.Transaction, error) {
	oldNotary, err := keys.DecodePublicKeyBytes(current.Notary)
	if err != nil {
		return nil, fmt.Errorf("notarychange: decoding current notary: %w", err)
	}

	replaced := OutputState{
		Data:        current.Data,
		Notary:      newNotary.Bytes(),
		Encumbrance: current.Encumbrance,
	}

	groups := []merkletx.ComponentGroup{
		{GroupIndex: merkletx.InputsGroup, Components: [][]byte{stateRefBytes(input)}},
		{GroupIndex: merkletx.OutputsGroup, Components: [][]byte{EncodeOutputState(replaced)}},
		{GroupIndex: merkletx.NotaryGroup, Components: [][]byte{oldNotary.Bytes()}},
	}
	for _, g := range extraGroups {
		switch g.GroupIndex {
		case merkletx.InputsGroup, merkletx.OutputsGroup, merkletx.CommandsGroup,
			merkletx.AttachmentsGroup, merkletx.NotaryGroup, merkletx.TimeWindowGroup, merkletx.SignersGroup:
			return nil, fmt.Errorf("notarychange: extra group %d collides with a well-known group index", g.GroupIndex)
		}
		groups = append(groups, g)
	}

	return merkletx.Build(groups, salt, nil)
}
