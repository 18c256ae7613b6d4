// Package sighash assembles the signature preimage shared by every
// input of a transaction signed under sighash type 0x41, and computes
// the hashes the covenant script needs to be able to reconstruct
// independently: hash_prevouts, hash_sequence, hash_outputs.
package sighash

import (
	"bytes"

	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/script"
	"github.com/bchtrade/bchtrade/internal/txmodel"
	"github.com/bchtrade/bchtrade/internal/wire"
)

// SigHashAll is the only sighash type this wallet ever signs with.
const SigHashAll uint32 = 0x41

// PreImage carries every field the segregated-signature-style preimage
// commits to, for one input.
type PreImage struct {
	Version      int32
	HashPrevouts [32]byte
	HashSequence [32]byte
	Outpoint     txmodel.Outpoint
	ScriptCode   script.Script
	Value        uint64
	Sequence     uint32
	HashOutputs  [32]byte
	LockTime     uint32
	SigHashType  uint32
}

// WriteFlags selects which preimage fields serialize — used to split a
// preimage into fragments the covenant reassembles on chain.
type WriteFlags struct {
	Version      bool
	HashPrevouts bool
	HashSequence bool
	Outpoint     bool
	ScriptCode   bool
	Value        bool
	Sequence     bool
	HashOutputs  bool
	LockTime     bool
	SigHashType  bool
}

// AllFields selects every preimage field.
func AllFields() WriteFlags {
	return WriteFlags{true, true, true, true, true, true, true, true, true, true}
}

// BeginFields selects version through sequence — everything that
// precedes hash_outputs in the canonical field order.
func BeginFields() WriteFlags {
	return WriteFlags{Version: true, HashPrevouts: true, HashSequence: true,
		Outpoint: true, ScriptCode: true, Value: true, Sequence: true}
}

// EndFields selects lock_time and sighash_type — everything that
// follows hash_outputs.
func EndFields() WriteFlags {
	return WriteFlags{LockTime: true, SigHashType: true}
}

// Write serializes p under flags and appends the result to dst.
func (p PreImage) Write(dst []byte, flags WriteFlags) []byte {
	if flags.Version {
		dst = wire.PutUint32LE(dst, uint32(p.Version))
	}
	if flags.HashPrevouts {
		dst = append(dst, p.HashPrevouts[:]...)
	}
	if flags.HashSequence {
		dst = append(dst, p.HashSequence[:]...)
	}
	if flags.Outpoint {
		dst = append(dst, p.Outpoint.TxHash[:]...)
		dst = wire.PutUint32LE(dst, p.Outpoint.OutputIdx)
	}
	if flags.ScriptCode {
		var buf bytes.Buffer
		wire.WriteVarStr(&buf, p.ScriptCode.Bytes())
		dst = append(dst, buf.Bytes()...)
	}
	if flags.Value {
		dst = wire.PutUint64LE(dst, p.Value)
	}
	if flags.Sequence {
		dst = wire.PutUint32LE(dst, p.Sequence)
	}
	if flags.HashOutputs {
		dst = append(dst, p.HashOutputs[:]...)
	}
	if flags.LockTime {
		dst = wire.PutUint32LE(dst, p.LockTime)
	}
	if flags.SigHashType {
		dst = wire.PutUint32LE(dst, p.SigHashType)
	}
	return dst
}

// Bytes serializes the full preimage.
func (p PreImage) Bytes() []byte {
	return p.Write(nil, AllFields())
}

// Hash returns the signing message: double-sha256 of the full
// preimage.
func (p PreImage) Hash() [32]byte {
	return bchhash.DoubleSha256(p.Bytes())
}

// HashPrevouts computes hash_prevouts over every input's outpoint, in
// order.
func HashPrevouts(inputs []txmodel.Input) [32]byte {
	var buf []byte
	for _, in := range inputs {
		buf = append(buf, in.Outpoint.TxHash[:]...)
		buf = wire.PutUint32LE(buf, in.Outpoint.OutputIdx)
	}
	return bchhash.DoubleSha256(buf)
}

// HashSequence computes hash_sequence over every input's sequence, in
// order.
func HashSequence(inputs []txmodel.Input) [32]byte {
	var buf []byte
	for _, in := range inputs {
		buf = wire.PutUint32LE(buf, in.Sequence)
	}
	return bchhash.DoubleSha256(buf)
}

// HashOutputs computes hash_outputs over every output's
// value||varstr(script), in order.
func HashOutputs(outputs []txmodel.Output) [32]byte {
	var buf []byte
	for _, out := range outputs {
		buf = out.WriteTo(buf)
	}
	return bchhash.DoubleSha256(buf)
}
