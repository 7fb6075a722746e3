// Package keys holds the notary identity key material: the signing
// keys used to produce the signature over a transaction id once
// uniqueness and the time window have been verified. On-disk storage
// and issuance of this key material is out of scope for this core;
// callers construct a PrivateKey from bytes they already hold.
package keys

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
)

// PrivateKey wraps a secp256k1 private scalar.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public point.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// NewPrivateKeyFromBytes builds a PrivateKey from a 32-byte scalar.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("keys: private key must be 32 bytes, got %d", len(b))
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: priv}, nil
}

// PublicKey returns the public counterpart of p.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// Sign produces a deterministic (RFC 6979) ECDSA signature over the
// SHA-256 digest of msg — a SigOverTxId is exactly such a signature
// over a transaction's SecureHash bytes. decred's ecdsa.Sign generates
// its nonce via RFC 6979 internally, so two replicas evaluating the
// same request under the same key never leak an entropy difference
// that could distinguish them.
func (p *PrivateKey) Sign(msg []byte) []byte {
	digest := sha256.Sum256(msg)
	sig := ecdsa.Sign(p.key, digest[:])
	return sig.Serialize()
}

// Bytes returns the public key in compressed SEC1 form.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// DecodePublicKeyBytes parses a compressed SEC1 public key.
func DecodePublicKeyBytes(b []byte) (*PublicKey, error) {
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("keys: decoding public key: %w", err)
	}
	return &PublicKey{key: k}, nil
}

// Verify checks sig (DER-encoded) against msg's SHA-256 digest.
func (pub *PublicKey) Verify(sig, msg []byte) bool {
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return parsed.Verify(digest[:], pub.key)
}

// String renders a base58-encoded fingerprint suitable for logs and
// error messages, never the raw key material.
func (pub *PublicKey) String() string {
	return base58.Encode(pub.Bytes())
}

// Equals reports whether pub and other represent the same point.
func (pub *PublicKey) Equals(other *PublicKey) bool {
	if other == nil {
		return false
	}
	return pub.key.IsEqual(other.key)
}
