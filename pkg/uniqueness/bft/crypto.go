package bft

import (
	"github.com/nspcc-dev/dbft"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
)

// privateKey wraps keys.PrivateKey so it satisfies dbft.PrivateKey —
// the same adaptation the consensus layer this module is descended
// from used to plug a domain key type into the library's interfaces —
// and is what Replica.id actually signs with (see replica.go). The
// quorum-set model in protocol.go stands in for running dbft's actual
// Byzantine consensus round (see DESIGN.md's Open Question 3): no
// dbft.Service is constructed or driven, only this key adaptation.
type privateKey struct {
	*keys.PrivateKey
}

var _ dbft.PrivateKey = &privateKey{}

// Sign implements dbft.PrivateKey.
func (p *privateKey) Sign(data []byte) ([]byte, error) {
	return p.PrivateKey.Sign(data), nil
}
