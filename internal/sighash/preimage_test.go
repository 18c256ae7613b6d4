package sighash

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/bchtrade/bchtrade/internal/script"
	"github.com/bchtrade/bchtrade/internal/txmodel"
)

func samplePreImage() PreImage {
	var prevouts, sequence, outputs, txHash [32]byte
	for i := range prevouts {
		prevouts[i] = byte(i)
		sequence[i] = byte(i * 2)
		outputs[i] = byte(i * 3)
		txHash[i] = byte(255 - i)
	}
	return PreImage{
		Version:      1,
		HashPrevouts: prevouts,
		HashSequence: sequence,
		Outpoint:     txmodel.Outpoint{TxHash: txHash, OutputIdx: 7},
		ScriptCode:   script.New(script.Code(script.OpDup), script.Code(script.OpHash160)),
		Value:        100000,
		Sequence:     0xffffffff,
		HashOutputs:  outputs,
		LockTime:     0,
		SigHashType:  SigHashAll,
	}
}

func TestPreImageFragmentationIdentity(t *testing.T) {
	p := samplePreImage()
	full := p.Write(nil, AllFields())

	begin := p.Write(nil, BeginFields())
	var mid []byte
	mid = append(mid, p.HashOutputs[:]...)
	end := p.Write(nil, EndFields())

	reassembled := append(append(begin, mid...), end...)
	if !bytes.Equal(reassembled, full) {
		t.Fatalf("fragment reassembly mismatch:\n got  %x\n want %x", reassembled, full)
	}
}

func TestPreImageHashIsDoubleSha256OfBytes(t *testing.T) {
	p := samplePreImage()
	h := p.Hash()
	first := sha256.Sum256(p.Bytes())
	want := sha256.Sum256(first[:])
	if h != want {
		t.Fatalf("Hash() = %x, want double-sha256 of Bytes() = %x", h, want)
	}
}

func TestHashPrevoutsOrderSensitive(t *testing.T) {
	a := txmodel.Input{Outpoint: txmodel.Outpoint{OutputIdx: 0}}
	b := txmodel.Input{Outpoint: txmodel.Outpoint{OutputIdx: 1}}
	h1 := HashPrevouts([]txmodel.Input{a, b})
	h2 := HashPrevouts([]txmodel.Input{b, a})
	if h1 == h2 {
		t.Fatal("expected different hash_prevouts for different input orders")
	}
}
