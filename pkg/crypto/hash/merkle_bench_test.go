package hash

import (
	"math/rand"
	"testing"

	"github.com/vegetish/ledgernotary/pkg/util"
)

func BenchmarkMerkle(b *testing.B) {
	hashes := make([]util.SecureHash, 100000)
	r := rand.New(rand.NewSource(1))
	for i := range hashes {
		_, _ = r.Read(hashes[i][:])
	}

	b.Run("NewMerkleTree", func(b *testing.B) {
		b.ResetTimer()
		for n := 0; n < b.N; n++ {
			tr, err := NewMerkleTree(hashes)
			if err != nil {
				b.Fatal(err)
			}
			_ = tr.Root()
		}
	})
	b.Run("CalcMerkleRoot", func(b *testing.B) {
		b.ResetTimer()
		for n := 0; n < b.N; n++ {
			_ = CalcMerkleRoot(hashes)
		}
	})
}
