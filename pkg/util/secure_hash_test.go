package util

import "testing"

func TestSecureHashSentinels(t *testing.T) {
	if !AllOnesHash.IsAllOnes() {
		t.Fatal("AllOnesHash.IsAllOnes() = false")
	}
	if AllOnesHash.IsZero() {
		t.Fatal("AllOnesHash.IsZero() = true")
	}
	if !ZeroHash.IsZero() {
		t.Fatal("ZeroHash.IsZero() = false")
	}
	for _, b := range AllOnesHash.Bytes() {
		if b != 0xff {
			t.Fatalf("AllOnesHash byte = %x, want 0xff", b)
		}
	}
}

func TestSecureHashFromBytesRoundTrip(t *testing.T) {
	raw := make([]byte, SecureHashSize)
	for i := range raw {
		raw[i] = byte(i)
	}
	h, err := SecureHashFromBytes(raw)
	if err != nil {
		t.Fatalf("SecureHashFromBytes: %v", err)
	}
	if h.String() == "" {
		t.Fatal("empty string representation")
	}
	h2, err := SecureHashFromHex(h.String())
	if err != nil {
		t.Fatalf("SecureHashFromHex: %v", err)
	}
	if !h.Equals(h2) {
		t.Fatalf("round trip mismatch: %s != %s", h, h2)
	}
}

func TestSecureHashFromBytesWrongLength(t *testing.T) {
	if _, err := SecureHashFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestStateRefCompareOrdersByTxIDThenIndex(t *testing.T) {
	a := StateRef{TxID: SecureHash{1}, Index: 5}
	b := StateRef{TxID: SecureHash{1}, Index: 6}
	c := StateRef{TxID: SecureHash{2}, Index: 0}

	if a.Compare(b) >= 0 {
		t.Fatal("expected a < b")
	}
	if b.Compare(c) >= 0 {
		t.Fatal("expected b < c")
	}
	if a.Compare(a) != 0 {
		t.Fatal("expected a == a")
	}
}
