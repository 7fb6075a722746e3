// Package util provides the primitive value types shared by the
// notarisation subsystem: content-addressed hashes and state
// references.
package util

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// SecureHashSize is the length in bytes of a SecureHash.
const SecureHashSize = 32

// SecureHash is a 32-byte content-addressed identifier produced by a
// collision-resistant hash function. It is comparable and usable as a
// map key.
type SecureHash [SecureHashSize]byte

// AllOnesHash is the sentinel used in Merkle padding to stand in for
// an absent group.
var AllOnesHash = func() SecureHash {
	var h SecureHash
	for i := range h {
		h[i] = 0xff
	}
	return h
}()

// ZeroHash is the sentinel used to pad odd layers of a Merkle tree.
var ZeroHash SecureHash

// IsAllOnes reports whether h is the AllOnesHash sentinel.
func (h SecureHash) IsAllOnes() bool {
	return h == AllOnesHash
}

// IsZero reports whether h is the ZeroHash sentinel.
func (h SecureHash) IsZero() bool {
	return h == ZeroHash
}

// Bytes returns a copy of the hash as a byte slice.
func (h SecureHash) Bytes() []byte {
	b := make([]byte, SecureHashSize)
	copy(b, h[:])
	return b
}

// String returns the lowercase hex encoding of h.
func (h SecureHash) String() string {
	return hex.EncodeToString(h[:])
}

// Equals reports whether h and other hold the same bytes.
func (h SecureHash) Equals(other SecureHash) bool {
	return h == other
}

// Compare provides a total order over hashes, used to keep conflict
// reports and group listings deterministic.
func (h SecureHash) Compare(other SecureHash) int {
	return bytes.Compare(h[:], other[:])
}

// SecureHashFromBytes builds a SecureHash from exactly 32 bytes.
func SecureHashFromBytes(b []byte) (SecureHash, error) {
	var h SecureHash
	if len(b) != SecureHashSize {
		return h, fmt.Errorf("util: invalid hash length %d, want %d", len(b), SecureHashSize)
	}
	copy(h[:], b)
	return h, nil
}

// SecureHashFromHex decodes a hex string into a SecureHash.
func SecureHashFromHex(s string) (SecureHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return SecureHash{}, fmt.Errorf("util: decoding hash hex: %w", err)
	}
	return SecureHashFromBytes(b)
}
