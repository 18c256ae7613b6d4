// Package covenant implements EnforceOutputsOutput, the P2SH-wrapped
// covenant that pins a spending transaction's leading outputs to an
// exact, seller-chosen list — the mechanism the whole trade protocol
// rests on.
package covenant

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/internal/script"
	"github.com/bchtrade/bchtrade/internal/sighash"
	"github.com/bchtrade/bchtrade/internal/txmodel"
)

// EnforceOutputsOutput is the covenant descriptor. EnforcedOutputs are
// the exact leading outputs ("outputs_pre") a buy spend must reproduce;
// CancelAddress is the seller's own key for unconditional cancellation.
// IsCancel must be set before SigScript is called — it selects which of
// the two unlocking shapes to produce and deliberately has no default;
// signing without choosing a branch is a programming error.
type EnforceOutputsOutput struct {
	ValueSats       uint64
	CancelAddress   address.Address
	EnforcedOutputs []outputs.Output
	IsCancel        *bool
}

func (o EnforceOutputsOutput) Value() uint64 { return o.ValueSats }

// SetIsCancel lets the tx builder select the unlocking form through the
// Output interface, without every caller needing to know the concrete
// covenant type.
func (o *EnforceOutputsOutput) SetIsCancel(isCancel bool) {
	o.IsCancel = &isCancel
}

// outputsPre serializes the enforced outputs exactly as they will
// appear at the head of a valid spending transaction.
func (o EnforceOutputsOutput) outputsPre() []byte {
	var buf []byte
	for _, out := range o.EnforcedOutputs {
		txOut := txmodel.Output{Value: out.Value(), Script: out.Script()}
		buf = txOut.WriteTo(buf)
	}
	return buf
}

// Script builds the IF/ELSE/ENDIF covenant locking script described in
// the component design: the buy branch reconstructs hash_outputs from a
// caller-supplied tail appended to this fixed, embedded head, then
// couples a CHECKSIGVERIFY and a CHECKDATASIG over the same signature
// and pubkey so that any deviation in the enforced outputs invalidates
// the signature.
func (o EnforceOutputsOutput) Script() script.Script {
	cancelHash := o.CancelAddress.Hash()
	return script.New(
		script.Code(script.OpIf),

		script.Push(o.outputsPre()),
		script.Code(script.OpSwap),
		script.Code(script.OpCat),
		script.Code(script.OpHash256),
		script.Code(script.OpCat),
		script.Code(script.OpSwap),
		script.Code(script.OpCat),
		script.Code(script.OpSha256),
		script.Code(script.Op3Dup),
		script.Code(script.OpDrop),
		script.Push([]byte{0x41}),
		script.Code(script.OpCat),
		script.Code(script.OpSwap),
		script.Code(script.OpCheckSigVerify),
		script.Code(script.OpRot),
		script.Code(script.OpCheckDataSig),

		script.Code(script.OpElse),

		script.Code(script.OpDup),
		script.Code(script.OpHash160),
		script.Push(cancelHash[:]),
		script.Code(script.OpEqualVfy),
		script.Code(script.OpCheckSig),

		script.Code(script.OpEndIf),
	)
}

func (o EnforceOutputsOutput) ScriptCode() script.Script { return o.Script() }

// SigScript produces the unlocking script. For a cancel spend this is
// the ordinary <sig><pubkey> plus a trailing one-byte 0x00 push, which
// is false and so takes the ELSE branch. For a buy spend, the spender
// supplies the two preimage fragments and the transaction's trailing
// outputs so that the on-chain script can reassemble hash_outputs from
// its own fixed outputs_pre and verify the coupled
// CHECKSIGVERIFY/CHECKDATASIG pair.
func (o EnforceOutputsOutput) SigScript(serializedSig []byte, pubKey *btcec.PublicKey, preImage sighash.PreImage, txOutputs []txmodel.Output) script.Script {
	if o.IsCancel == nil {
		panic("covenant: IsCancel must be set before signing EnforceOutputsOutput")
	}
	pubKeyBytes := pubKey.SerializeCompressed()
	if *o.IsCancel {
		return script.New(
			script.Push(serializedSig),
			script.Push(pubKeyBytes),
			script.Push([]byte{0x00}),
		)
	}

	sigWithoutSuffix := serializedSig[:len(serializedSig)-1]

	preImageBegin := preImage.Write(nil, sighash.BeginFields())
	preImageEnd := preImage.Write(nil, sighash.EndFields())

	var outputsEnd []byte
	for _, out := range txOutputs[len(o.EnforcedOutputs):] {
		outputsEnd = out.WriteTo(outputsEnd)
	}

	return script.New(
		script.Push(pubKeyBytes),
		script.Push(sigWithoutSuffix),
		script.Push(preImageEnd),
		script.Push(preImageBegin),
		script.Push(outputsEnd),
		script.Push([]byte{0x01}),
	)
}
