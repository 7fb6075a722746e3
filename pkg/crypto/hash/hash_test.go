package hash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vegetish/ledgernotary/pkg/util"
)

func TestSha256(t *testing.T) {
	input := []byte("hello")
	data := Sha256(input)

	expected := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	actual := hex.EncodeToString(data.Bytes())

	assert.Equal(t, expected, actual)
}

func TestDoubleSha256(t *testing.T) {
	input := []byte("hello")
	data := DoubleSha256(input)

	firstSha := Sha256(input)
	doubleSha := Sha256(firstSha.Bytes())

	assert.Equal(t, doubleSha, data)
}

func TestFingerprint160IsStableAndCompact(t *testing.T) {
	input := []byte("a notary identity key")
	f1 := Fingerprint160(input)
	f2 := Fingerprint160(input)
	assert.Equal(t, f1, f2)
	assert.Len(t, f1, 20)
}

func TestNonceDependsOnSaltGroupAndIndex(t *testing.T) {
	salt := Sha256([]byte("privacy salt"))
	n1 := Nonce(salt, 0, 0)
	n2 := Nonce(salt, 0, 1)
	n3 := Nonce(salt, 1, 0)
	n4 := Nonce(Sha256([]byte("other salt")), 0, 0)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, n1, n3)
	assert.NotEqual(t, n1, n4)
}

func TestComponentLeafBindsNonceAndBytes(t *testing.T) {
	salt := Sha256([]byte("privacy salt"))
	nonce := Nonce(salt, 0, 0)
	l1 := ComponentLeaf(nonce, []byte("component a"))
	l2 := ComponentLeaf(nonce, []byte("component b"))
	assert.NotEqual(t, l1, l2)

	var zero util.SecureHash
	assert.NotEqual(t, zero, l1)
}
