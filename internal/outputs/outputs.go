// Package outputs implements the descriptor polymorphism every spendable
// and unspendable output in this wallet is expressed through: P2PKH,
// P2SH wrapping, OP_RETURN, the SLP-style token SEND payload and the
// trade-offer announcement. The EnforceOutputs covenant lives in package
// covenant.
package outputs

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/script"
	"github.com/bchtrade/bchtrade/internal/sighash"
	"github.com/bchtrade/bchtrade/internal/txmodel"
)

// Output is the capability every output descriptor exposes to the tx
// builder: how much it carries, what locking script it produces, what
// script-code slot it contributes to a preimage when spent, and how to
// unlock it given a signature.
type Output interface {
	Value() uint64
	Script() script.Script
	ScriptCode() script.Script
	SigScript(serializedSig []byte, pubKey *btcec.PublicKey, preImage sighash.PreImage, outputs []txmodel.Output) script.Script
}

// unspendablePanic is called by ScriptCode/SigScript on output
// descriptors that back an OP_RETURN-shaped output: spending one is a
// programming error, not a recoverable one.
func unspendablePanic(kind string) {
	panic("outputs: tried to spend an " + kind + " output, which is impossible to spend")
}

// P2PKHOutput pays to a public-key hash.
type P2PKHOutput struct {
	ValueSats uint64
	Address   address.Address
}

func (o P2PKHOutput) Value() uint64 { return o.ValueSats }

func (o P2PKHOutput) Script() script.Script {
	hash := o.Address.Hash()
	return script.New(
		script.Code(script.OpDup),
		script.Code(script.OpHash160),
		script.Push(hash[:]),
		script.Code(script.OpEqualVfy),
		script.Code(script.OpCheckSig),
	)
}

func (o P2PKHOutput) ScriptCode() script.Script { return o.Script() }

func (o P2PKHOutput) SigScript(serializedSig []byte, pubKey *btcec.PublicKey, _ sighash.PreImage, _ []txmodel.Output) script.Script {
	return script.New(
		script.Push(serializedSig),
		script.Push(pubKey.SerializeCompressed()),
	)
}

// P2SHOutput wraps another Output's script behind a P2SH hash.
type P2SHOutput struct {
	Inner Output
}

func (o P2SHOutput) Value() uint64 { return o.Inner.Value() }

func (o P2SHOutput) Script() script.Script {
	h := bchhash.Hash160(o.Inner.Script().Bytes())
	return script.New(
		script.Code(script.OpHash160),
		script.Push(h[:]),
		script.Code(script.OpEqual),
	)
}

func (o P2SHOutput) ScriptCode() script.Script { return o.Inner.Script() }

func (o P2SHOutput) SigScript(serializedSig []byte, pubKey *btcec.PublicKey, preImage sighash.PreImage, txOutputs []txmodel.Output) script.Script {
	inner := o.Inner.SigScript(serializedSig, pubKey, preImage, txOutputs)
	return inner.Append(script.Push(o.Inner.Script().Bytes()))
}

// OpReturnOutput carries arbitrary data pushes and is never spendable.
type OpReturnOutput struct {
	Pushes        [][]byte
	IsMinimalPush bool
}

func (o OpReturnOutput) Value() uint64 { return 0 }

func (o OpReturnOutput) Script() script.Script {
	ops := make([]script.Op, 0, len(o.Pushes)+1)
	ops = append(ops, script.Code(script.OpReturn))
	for _, p := range o.Pushes {
		ops = append(ops, script.Push(p))
	}
	if o.IsMinimalPush {
		return script.New(ops...)
	}
	return script.NewNonMinimalPush(ops...)
}

func (o OpReturnOutput) ScriptCode() script.Script {
	unspendablePanic("OP_RETURN")
	return script.Script{}
}

func (o OpReturnOutput) SigScript(_ []byte, _ *btcec.PublicKey, _ sighash.PreImage, _ []txmodel.Output) script.Script {
	unspendablePanic("OP_RETURN")
	return script.Script{}
}

// TokenSendOutput is the SLP-style token transfer payload: a
// non-minimal-push OP_RETURN naming a token, its type byte, and the
// big-endian output quantities.
type TokenSendOutput struct {
	TokenType        byte
	TokenID          [32]byte
	OutputQuantities []uint64
}

func (o TokenSendOutput) Value() uint64 { return 0 }

func (o TokenSendOutput) Script() script.Script {
	ops := []script.Op{
		script.Code(script.OpReturn),
		script.Push([]byte("SLP\x00")),
		script.Push([]byte{o.TokenType}),
		script.Push([]byte("SEND")),
		script.Push(o.TokenID[:]),
	}
	for _, qty := range o.OutputQuantities {
		ops = append(ops, script.Push(beUint64(qty)))
	}
	return script.NewNonMinimalPush(ops...)
}

func (o TokenSendOutput) ScriptCode() script.Script {
	unspendablePanic("OP_RETURN")
	return script.Script{}
}

func (o TokenSendOutput) SigScript(_ []byte, _ *btcec.PublicKey, _ sighash.PreImage, _ []txmodel.Output) script.Script {
	unspendablePanic("OP_RETURN")
	return script.Script{}
}

// TradeOffer describes the trade terms announced in an OP_RETURN once
// a covenant UTXO has been funded on chain.
type TradeOffer struct {
	TxID             [32]byte
	OutputIdx        uint32
	SellAmount       uint64
	BuyAmount        uint64
	ReceivingAddress address.Address
	CancelAddress    address.Address
}

// ToOpReturn renders the trade offer as the nine-push OP_RETURN the
// trade index collaborator parses back.
func (t TradeOffer) ToOpReturn() OpReturnOutput {
	recvHash := t.ReceivingAddress.Hash()
	cancelHash := t.CancelAddress.Hash()
	return OpReturnOutput{
		Pushes: [][]byte{
			[]byte("EXCH"),
			[]byte{0x01},
			[]byte("SELL"),
			t.TxID[:],
			beUint32(t.OutputIdx),
			beUint64(t.SellAmount),
			beUint64(t.BuyAmount),
			recvHash[:],
			cancelHash[:],
		},
		IsMinimalPush: false,
	}
}

func beUint32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func beUint64(v uint64) []byte {
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}
