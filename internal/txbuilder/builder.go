// Package txbuilder assembles a transaction from UTXO-bound signing
// contexts and output descriptors, then signs it with ECDSA over
// secp256k1 using deterministic (RFC-6979) nonces.
package txbuilder

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/internal/sighash"
	"github.com/bchtrade/bchtrade/internal/txmodel"
)

// UTXOContext binds an input's outpoint to the key that unlocks it and
// the descriptor of the output being spent.
type UTXOContext struct {
	Outpoint   txmodel.Outpoint
	Descriptor outputs.Output
	Sequence   uint32
	SecretKey  *btcec.PrivateKey
	// IsCancel, when the descriptor is a *covenant.EnforceOutputsOutput,
	// selects the cancel unlocking form over the buy form. Ignored
	// otherwise, including for a covenant wrapped in outputs.P2SHOutput.
	IsCancel *bool
}

// OutputEntry holds one output descriptor; its index in the builder's
// output list is its position in the transaction.
type OutputEntry struct {
	Descriptor outputs.Output
}

// Builder collects signing contexts and outputs for exactly one
// transaction. It owns its entries exclusively until Sign consumes a
// snapshot of them.
type Builder struct {
	Version  int32
	LockTime uint32
	utxos    []UTXOContext
	outs     []OutputEntry
}

// New creates an empty builder at the given version/locktime (version 2
// and locktime 0 are the wallet's defaults).
func New(version int32, lockTime uint32) *Builder {
	return &Builder{Version: version, LockTime: lockTime}
}

// AddUTXO appends a signing context and returns its index.
func (b *Builder) AddUTXO(ctx UTXOContext) int {
	b.utxos = append(b.utxos, ctx)
	return len(b.utxos) - 1
}

// AddOutput appends an output descriptor and returns its index.
func (b *Builder) AddOutput(desc outputs.Output) int {
	b.outs = append(b.outs, OutputEntry{Descriptor: desc})
	return len(b.outs) - 1
}

// ReplaceOutput swaps the descriptor at index for desc.
func (b *Builder) ReplaceOutput(index int, desc outputs.Output) {
	b.outs[index].Descriptor = desc
}

// RemoveOutput deletes the output at index, shifting later outputs down.
func (b *Builder) RemoveOutput(index int) {
	b.outs = append(b.outs[:index], b.outs[index+1:]...)
}

// Outputs returns the builder's current output descriptors in order.
func (b *Builder) Outputs() []outputs.Output {
	descs := make([]outputs.Output, len(b.outs))
	for i, o := range b.outs {
		descs[i] = o.Descriptor
	}
	return descs
}

// txOutputs renders the builder's current outputs as wire-layout
// txmodel.Output values, needed both for hash_outputs and for the
// sig-scripts that embed a trailing slice of them.
func (b *Builder) txOutputs() []txmodel.Output {
	out := make([]txmodel.Output, len(b.outs))
	for i, o := range b.outs {
		out[i] = txmodel.Output{Value: o.Descriptor.Value(), Script: o.Descriptor.Script()}
	}
	return out
}

func (b *Builder) txInputsForHashing() []txmodel.Input {
	ins := make([]txmodel.Input, len(b.utxos))
	for i, u := range b.utxos {
		ins[i] = txmodel.Input{Outpoint: u.Outpoint, Sequence: u.Sequence}
	}
	return ins
}

// PreImages builds one preimage per input, each sharing the same
// hash_prevouts, hash_sequence, and hash_outputs as required by the
// shared sighash_type.
func (b *Builder) PreImages(sigHashType uint32) []sighash.PreImage {
	ins := b.txInputsForHashing()
	outs := b.txOutputs()
	hashPrevouts := sighash.HashPrevouts(ins)
	hashSequence := sighash.HashSequence(ins)
	hashOutputs := sighash.HashOutputs(outs)

	preImages := make([]sighash.PreImage, len(b.utxos))
	for i, u := range b.utxos {
		preImages[i] = sighash.PreImage{
			Version:      b.Version,
			HashPrevouts: hashPrevouts,
			HashSequence: hashSequence,
			Outpoint:     u.Outpoint,
			ScriptCode:   u.Descriptor.ScriptCode(),
			Value:        u.Descriptor.Value(),
			Sequence:     u.Sequence,
			HashOutputs:  hashOutputs,
			LockTime:     b.LockTime,
			SigHashType:  sigHashType,
		}
	}
	return preImages
}

// Sign builds the preimages, signs each with its bound key using
// RFC-6979 deterministic nonces, and assembles the signed transaction.
func (b *Builder) Sign() (txmodel.Tx, error) {
	if len(b.utxos) == 0 {
		return txmodel.Tx{}, fmt.Errorf("txbuilder: cannot sign a transaction with no inputs")
	}
	preImages := b.PreImages(sighash.SigHashAll)
	txOuts := b.txOutputs()

	inputs := make([]txmodel.Input, len(b.utxos))
	for i, u := range b.utxos {
		msgHash := preImages[i].Hash()
		derSig := ecdsa.Sign(u.SecretKey, msgHash[:])
		serializedSig := append(derSig.Serialize(), byte(sighash.SigHashAll))
		pubKey := u.SecretKey.PubKey()

		setIsCancel(u.Descriptor, u.IsCancel)

		sigScript := u.Descriptor.SigScript(serializedSig, pubKey, preImages[i], txOuts)
		inputs[i] = txmodel.Input{
			Outpoint: u.Outpoint,
			Script:   sigScript,
			Sequence: u.Sequence,
		}
	}

	return txmodel.Tx{
		Version:  b.Version,
		Inputs:   inputs,
		Outputs:  txOuts,
		LockTime: b.LockTime,
	}, nil
}

// isCancelSetter is implemented by descriptors (EnforceOutputsOutput)
// whose unlocking shape depends on a cancel/buy selector the builder
// must thread through from the UTXO context.
type isCancelSetter interface {
	SetIsCancel(bool)
}

func setIsCancel(desc outputs.Output, isCancel *bool) {
	if isCancel == nil {
		return
	}
	if setter, ok := desc.(isCancelSetter); ok {
		setter.SetIsCancel(*isCancel)
	}
}

// EstimateSize gives the coarse byte-size lower bound the fee logic
// prices change outputs from: a flat per-input weight regardless of
// spend kind, so covenant spends (much larger in practice) need extra
// budget from the caller.
func (b *Builder) EstimateSize() uint64 {
	const versionSize = 4
	const lockTimeSize = 4
	const perInputWeight = 148
	const inputCountByte = 1

	size := uint64(versionSize + lockTimeSize + inputCountByte)
	size += uint64(len(b.utxos)) * perInputWeight
	for _, o := range b.outs {
		size += uint64(len(o.Descriptor.Script().Bytes()))
	}
	return size
}
