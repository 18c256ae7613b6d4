package outputs

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/script"
)

func TestP2PKHScriptShape(t *testing.T) {
	var hash [20]byte
	for i := range hash {
		hash[i] = byte(i)
	}
	out := P2PKHOutput{ValueSats: 1000, Address: address.FromHash160(address.TypeP2PKH, hash)}
	got := out.Script().Bytes()

	want := append([]byte{byte(script.OpDup), byte(script.OpHash160), 20}, hash[:]...)
	want = append(want, byte(script.OpEqualVfy), byte(script.OpCheckSig))
	if !bytes.Equal(got, want) {
		t.Fatalf("P2PKH locking script mismatch:\n got %x\nwant %x", got, want)
	}
	if !bytes.Equal(out.ScriptCode().Bytes(), got) {
		t.Fatal("P2PKH script code must equal its own locking script")
	}
}

func TestP2SHWrapsInnerScript(t *testing.T) {
	var hash [20]byte
	hash[0] = 0x42
	inner := P2PKHOutput{ValueSats: 777, Address: address.FromHash160(address.TypeP2PKH, hash)}
	p2sh := P2SHOutput{Inner: inner}

	innerBytes := inner.Script().Bytes()
	h := bchhash.Hash160(innerBytes)
	want := append([]byte{byte(script.OpHash160), 20}, h[:]...)
	want = append(want, byte(script.OpEqual))
	if got := p2sh.Script().Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("P2SH shell script mismatch:\n got %x\nwant %x", got, want)
	}
	if p2sh.Value() != 777 {
		t.Fatalf("P2SH value must delegate to inner, got %d", p2sh.Value())
	}
	if !bytes.Equal(p2sh.ScriptCode().Bytes(), innerBytes) {
		t.Fatal("P2SH script code must be the redeem script, not the shell")
	}
}

func TestTokenSendScriptLayout(t *testing.T) {
	var tokenID [32]byte
	for i := range tokenID {
		tokenID[i] = 0xee
	}
	out := TokenSendOutput{TokenType: 1, TokenID: tokenID, OutputQuantities: []uint64{0, 12_345}}
	if out.Value() != 0 {
		t.Fatalf("token SEND output must carry zero satoshis, got %d", out.Value())
	}

	parsed, err := script.Parse(out.Script().Bytes())
	if err != nil {
		t.Fatalf("parsing token SEND script: %v", err)
	}
	ops := parsed.Ops()
	if len(ops) != 7 {
		t.Fatalf("expected OP_RETURN + 6 pushes, got %d ops", len(ops))
	}
	if ops[0].IsPush() || ops[0].OpCode() != script.OpReturn {
		t.Fatal("first op must be OP_RETURN")
	}
	if !bytes.Equal(ops[1].PushData(), []byte("SLP\x00")) {
		t.Fatalf("lokad id push mismatch: %x", ops[1].PushData())
	}
	if !bytes.Equal(ops[2].PushData(), []byte{1}) {
		t.Fatalf("token type push mismatch: %x", ops[2].PushData())
	}
	if !bytes.Equal(ops[3].PushData(), []byte("SEND")) {
		t.Fatalf("action push mismatch: %x", ops[3].PushData())
	}
	if !bytes.Equal(ops[4].PushData(), tokenID[:]) {
		t.Fatal("token id push mismatch")
	}
	for i, want := range []uint64{0, 12_345} {
		data := ops[5+i].PushData()
		if len(data) != 8 {
			t.Fatalf("quantity %d must be a fixed 8-byte push, got %d bytes", i, len(data))
		}
		if got := binary.BigEndian.Uint64(data); got != want {
			t.Fatalf("quantity %d: got %d, want %d", i, got, want)
		}
	}
}

// A token quantity of 1 must serialize as a full 8-byte push, never as
// the one-byte OP_1 a minimal-push script would collapse it to.
func TestTokenSendUsesFixedWidthPushes(t *testing.T) {
	out := TokenSendOutput{TokenType: 1, OutputQuantities: []uint64{1}}
	raw := out.Script().Bytes()
	want := []byte{8, 0, 0, 0, 0, 0, 0, 0, 1}
	if !bytes.HasSuffix(raw, want) {
		t.Fatalf("quantity 1 must serialize as %x, script tail was %x", want, raw[len(raw)-9:])
	}
}

func TestTradeOfferRoundTrip(t *testing.T) {
	var txID [32]byte
	var recvHash, cancelHash [20]byte
	for i := range txID {
		txID[i] = 0x11
	}
	for i := range recvHash {
		recvHash[i] = 0x22
		cancelHash[i] = 0x33
	}
	offer := TradeOffer{
		TxID:             txID,
		OutputIdx:        1,
		SellAmount:       1_000_000,
		BuyAmount:        50_000,
		ReceivingAddress: address.FromHash160(address.TypeP2PKH, recvHash),
		CancelAddress:    address.FromHash160(address.TypeP2PKH, cancelHash),
	}

	opRet := offer.ToOpReturn()
	if opRet.IsMinimalPush {
		t.Fatal("trade offer payload must use fixed-width pushes")
	}
	parsed, err := script.Parse(opRet.Script().Bytes())
	if err != nil {
		t.Fatalf("parsing trade offer script: %v", err)
	}
	ops := parsed.Ops()
	if len(ops) != 10 {
		t.Fatalf("expected OP_RETURN + 9 pushes, got %d ops", len(ops))
	}
	pushes := make([][]byte, 0, 9)
	for _, op := range ops[1:] {
		if !op.IsPush() {
			t.Fatalf("non-push op %v inside trade offer payload", op.OpCode())
		}
		pushes = append(pushes, op.PushData())
	}

	if !bytes.Equal(pushes[0], []byte("EXCH")) {
		t.Fatalf("lokad id: %x", pushes[0])
	}
	if !bytes.Equal(pushes[1], []byte{0x01}) {
		t.Fatalf("version: %x", pushes[1])
	}
	if !bytes.Equal(pushes[2], []byte("SELL")) {
		t.Fatalf("action: %x", pushes[2])
	}
	if !bytes.Equal(pushes[3], txID[:]) {
		t.Fatal("txid push mismatch")
	}
	if got := binary.BigEndian.Uint32(pushes[4]); got != 1 {
		t.Fatalf("output index: got %d, want 1", got)
	}
	if got := binary.BigEndian.Uint64(pushes[5]); got != 1_000_000 {
		t.Fatalf("sell amount: got %d", got)
	}
	if got := binary.BigEndian.Uint64(pushes[6]); got != 50_000 {
		t.Fatalf("buy amount: got %d", got)
	}
	if !bytes.Equal(pushes[7], recvHash[:]) {
		t.Fatal("receive hash mismatch")
	}
	if !bytes.Equal(pushes[8], cancelHash[:]) {
		t.Fatal("cancel hash mismatch")
	}
}

func TestOpReturnSpendPanics(t *testing.T) {
	out := OpReturnOutput{Pushes: [][]byte{[]byte("data")}}
	defer func() {
		if recover() == nil {
			t.Fatal("expected ScriptCode on an OP_RETURN output to panic")
		}
	}()
	out.ScriptCode()
}
