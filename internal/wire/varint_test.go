package wire

import (
	"bytes"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, 1 << 62}
	for _, n := range cases {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, n); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", n, err)
		}
		got, err := ReadVarInt(&buf)
		if err != nil {
			t.Fatalf("ReadVarInt after %d: %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip %d -> %d", n, got)
		}
	}
}

func TestVarIntEncodingWidths(t *testing.T) {
	widths := map[uint64]int{
		0:          1,
		0xfc:       1,
		0xfd:       3,
		0xffff:     3,
		0x10000:    5,
		0xffffffff: 5,
		1 << 32:    9,
	}
	for n, want := range widths {
		var buf bytes.Buffer
		if err := WriteVarInt(&buf, n); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", n, err)
		}
		if buf.Len() != want {
			t.Fatalf("WriteVarInt(%d) length = %d, want %d", n, buf.Len(), want)
		}
	}
}

func TestVarStrRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := []byte("a trade offer covenant redeem script")
	if err := WriteVarStr(&buf, want); err != nil {
		t.Fatal(err)
	}
	got, err := ReadVarStr(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
}

func TestPutUint64BEIsBigEndian(t *testing.T) {
	got := PutUint64BE(nil, 1)
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("PutUint64BE(1) = %x, want %x", got, want)
	}
}
