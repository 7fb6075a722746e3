package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PeerAddr is one BFT replica's static network address and identity,
// per spec.md's "static configuration of (host, port) addresses" —
// no dynamic peer discovery protocol.
type PeerAddr struct {
	Host      string `yaml:"Host"`
	Port      int    `yaml:"Port"`
	PublicKey string `yaml:"PublicKey"`
}

// ClusterConfig describes a replicated (BFT) uniqueness cluster: its
// static peer list and fault tolerance f, from which N = 3f+1 and the
// quorum size 2f+1 are derived.
type ClusterConfig struct {
	Peers []PeerAddr `yaml:"Peers"`
	F     int        `yaml:"F"`
}

// NotaryIdentityConfig configures one notary's own signing identity
// and, for a BFT-mode notary, which peer in the cluster it is.
type NotaryIdentityConfig struct {
	WIF          string `yaml:"WIF"`
	ReplicaIndex int    `yaml:"ReplicaIndex"`
}

// StorageConfig selects and configures the uniqueness ledger's
// persistence backend.
type StorageConfig struct {
	Type      string `yaml:"Type"` // "memory", "bolt", or "leveldb"
	Path      string `yaml:"Path"`
	CacheSize int    `yaml:"CacheSize"`
}

// NotaryConfig is one notary node's full on-disk configuration.
type NotaryConfig struct {
	Identity NotaryIdentityConfig `yaml:"Identity"`
	Cluster  *ClusterConfig       `yaml:"Cluster"`
	Storage  StorageConfig        `yaml:"Storage"`
}

// LoadNotaryConfig reads and parses a NotaryConfig from a yaml file.
func LoadNotaryConfig(path string) (*NotaryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notary config: %w", err)
	}
	var cfg NotaryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing notary config: %w", err)
	}
	return &cfg, nil
}
