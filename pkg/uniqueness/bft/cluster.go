package bft

import (
	"fmt"

	"github.com/vegetish/ledgernotary/pkg/crypto/keys"
)

// PeerConfig is the static address and identity of one cluster
// replica, discovered by configuration rather than any dynamic
// membership protocol.
type PeerConfig struct {
	Host      string
	Port      int
	PublicKey *keys.PublicKey
}

// Cluster is the static set of N = 3f+1 replicas tolerating up to f
// Byzantine faulty members.
type Cluster struct {
	Peers []PeerConfig
	F     int
}

// NewCluster validates that len(peers) == 3f+1 and returns a Cluster.
func NewCluster(peers []PeerConfig, f int) (*Cluster, error) {
	want := 3*f + 1
	if len(peers) != want {
		return nil, fmt.Errorf("bft: cluster of %d replicas cannot tolerate f=%d faults, need exactly %d", len(peers), f, want)
	}
	return &Cluster{Peers: peers, F: f}, nil
}

// Quorum is the number of matching responses required to reach a
// decision: 2f+1.
func (c *Cluster) Quorum() int {
	return 2*c.F + 1
}
