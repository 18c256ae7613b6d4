package script

import (
	"bytes"
	"testing"
)

func TestSmallPushMinimalEncoding(t *testing.T) {
	s := New(Push([]byte{5}))
	got := s.Bytes()
	want := []byte{byte(Op5)}
	if !bytes.Equal(got, want) {
		t.Fatalf("minimal push of 5 = %x, want %x", got, want)
	}
}

func TestSmallPushNonMinimalEncoding(t *testing.T) {
	s := NewNonMinimalPush(Push([]byte{5}))
	got := s.Bytes()
	want := []byte{0x01, 0x05}
	if !bytes.Equal(got, want) {
		t.Fatalf("non-minimal push of 5 = %x, want %x", got, want)
	}
}

func TestDirectPushLengthByte(t *testing.T) {
	data := make([]byte, 0x4b)
	s := New(Push(data))
	got := s.Bytes()
	if got[0] != 0x4b {
		t.Fatalf("length byte = %x, want 0x4b", got[0])
	}
	if len(got) != 1+0x4b {
		t.Fatalf("encoded length = %d, want %d", len(got), 1+0x4b)
	}
}

func TestPushData1Boundary(t *testing.T) {
	data := make([]byte, 0x4c)
	s := New(Push(data))
	got := s.Bytes()
	if got[0] != byte(OpPushData1) {
		t.Fatalf("leading byte = %x, want OP_PUSHDATA1", got[0])
	}
	if got[1] != 0x4c {
		t.Fatalf("length byte = %x, want 0x4c", got[1])
	}
}

func TestPushData2RoundTrip(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i)
	}
	s := New(Push(data))
	encoded := s.Bytes()
	if encoded[0] != byte(OpPushData2) {
		t.Fatalf("leading byte = %x, want OP_PUSHDATA2", encoded[0])
	}
	parsed, err := Parse(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Ops()) != 1 || !bytes.Equal(parsed.Ops()[0].PushData(), data) {
		t.Fatalf("round trip through OP_PUSHDATA2 lost data")
	}
}

func TestPushData4RoundTrip(t *testing.T) {
	data := make([]byte, 70000)
	s := New(Push(data))
	encoded := s.Bytes()
	if encoded[0] != byte(OpPushData4) {
		t.Fatalf("leading byte = %x, want OP_PUSHDATA4", encoded[0])
	}
	parsed, err := Parse(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Ops()) != 1 || len(parsed.Ops()[0].PushData()) != len(data) {
		t.Fatalf("round trip through OP_PUSHDATA4 lost data")
	}
}

func TestParseMixedOpsAndPushes(t *testing.T) {
	s := New(Code(OpDup), Code(OpHash160), Push([]byte{1, 2, 3, 4, 5}), Code(OpEqualVfy), Code(OpCheckSig))
	parsed, err := Parse(s.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	ops := parsed.Ops()
	if len(ops) != 5 {
		t.Fatalf("parsed %d ops, want 5", len(ops))
	}
	if ops[0].OpCode() != OpDup || ops[1].OpCode() != OpHash160 {
		t.Fatalf("unexpected op sequence: %v", ops)
	}
	if !ops[2].IsPush() || !bytes.Equal(ops[2].PushData(), []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("push op mismatch: %v", ops[2])
	}
}

func TestTruncatedPushDataIsError(t *testing.T) {
	if _, err := Parse([]byte{byte(OpPushData1), 0x10}); err == nil {
		t.Fatal("expected error for truncated OP_PUSHDATA1")
	}
}
