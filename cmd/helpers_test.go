package cmd

import "testing"

func TestPow10(t *testing.T) {
	cases := map[uint8]float64{0: 1, 2: 100, 8: 1e8}
	for decimals, want := range cases {
		if got := pow10(decimals); got != want {
			t.Errorf("pow10(%d) = %v, want %v", decimals, got, want)
		}
	}
}

func TestDecodeTokenIDRoundTrip(t *testing.T) {
	const idHex = "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
	id, err := decodeTokenID(idHex)
	if err != nil {
		t.Fatalf("decodeTokenID: %v", err)
	}
	if id[0] != 0x01 || id[31] != 0x20 {
		t.Fatalf("unexpected decode: %x", id)
	}
}

func TestDecodeTokenIDRejectsBadInput(t *testing.T) {
	if _, err := decodeTokenID("not-hex"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
	if _, err := decodeTokenID("aabb"); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestTokenIDBase32Deterministic(t *testing.T) {
	var id [32]byte
	for i := range id {
		id[i] = byte(i)
	}
	a := tokenIDBase32(id)
	b := tokenIDBase32(id)
	if a != b {
		t.Fatalf("tokenIDBase32 not deterministic: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("tokenIDBase32 returned empty string")
	}
}
