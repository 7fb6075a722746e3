// Package hash implements the collision-resistant hashing used to
// build component hashes, nonces and Merkle trees, plus a short
// fingerprint hash for logging peer/key identities.
package hash

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // grounded on the teacher's util package, kept for fingerprinting only

	"github.com/vegetish/ledgernotary/pkg/util"
)

// Sha256 returns the single SHA-256 digest of b as a SecureHash.
func Sha256(b []byte) util.SecureHash {
	return util.SecureHash(sha256.Sum256(b))
}

// DoubleSha256 returns SHA-256(SHA-256(b)), the collision-resistant
// hash SecureHash is built from throughout this subsystem.
func DoubleSha256(b []byte) util.SecureHash {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return util.SecureHash(second)
}

// Fingerprint160 returns a short RIPEMD-160-over-SHA-256 digest, used
// only to render compact human-readable identifiers for peers and
// keys in logs; it is never used in a security-relevant hash chain.
func Fingerprint160(b []byte) [20]byte {
	sha := sha256.Sum256(b)
	r := ripemd160.New()
	_, _ = r.Write(sha[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

// Nonce derives the per-component blinding nonce:
// H(privacySalt ‖ groupIndex ‖ internalIndex).
func Nonce(salt util.SecureHash, groupIndex uint16, internalIndex uint32) util.SecureHash {
	buf := make([]byte, 0, util.SecureHashSize+2+4)
	buf = append(buf, salt[:]...)
	var gi [2]byte
	binary.LittleEndian.PutUint16(gi[:], groupIndex)
	buf = append(buf, gi[:]...)
	var ii [4]byte
	binary.LittleEndian.PutUint32(ii[:], internalIndex)
	buf = append(buf, ii[:]...)
	return DoubleSha256(buf)
}

// ComponentLeaf computes the Merkle leaf for a component:
// H(nonce ‖ componentBytes).
func ComponentLeaf(nonce util.SecureHash, component []byte) util.SecureHash {
	buf := make([]byte, 0, util.SecureHashSize+len(component))
	buf = append(buf, nonce[:]...)
	buf = append(buf, component...)
	return DoubleSha256(buf)
}

// Branch computes the hash of two sibling Merkle nodes.
func Branch(left, right util.SecureHash) util.SecureHash {
	buf := make([]byte, 0, 2*util.SecureHashSize)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return DoubleSha256(buf)
}
