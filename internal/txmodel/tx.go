// Package txmodel implements the canonical transaction wire layout:
// outpoints, inputs, outputs, and the full transaction, serialized the
// same way the sighash preimage serializes its own mirrored fields.
package txmodel

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/script"
	"github.com/bchtrade/bchtrade/internal/wire"
)

// Outpoint identifies the prior output an input spends.
type Outpoint struct {
	TxHash    [32]byte
	OutputIdx uint32
}

// Input is a transaction input: the outpoint it spends, its unlocking
// script, and its sequence number.
type Input struct {
	Outpoint Outpoint
	Script   script.Script
	Sequence uint32
}

// WriteTo appends the canonical serialization of in to dst.
func (in Input) WriteTo(dst []byte) []byte {
	dst = append(dst, in.Outpoint.TxHash[:]...)
	dst = wire.PutUint32LE(dst, in.Outpoint.OutputIdx)
	scriptBytes := in.Script.Bytes()
	var buf bytes.Buffer
	wire.WriteVarInt(&buf, uint64(len(scriptBytes)))
	dst = append(dst, buf.Bytes()...)
	dst = append(dst, scriptBytes...)
	dst = wire.PutUint32LE(dst, in.Sequence)
	return dst
}

// Output is a transaction output: its value in satoshis and its
// locking script.
type Output struct {
	Value  uint64
	Script script.Script
}

// WriteTo appends the canonical serialization of out to dst.
func (out Output) WriteTo(dst []byte) []byte {
	dst = wire.PutUint64LE(dst, out.Value)
	scriptBytes := out.Script.Bytes()
	var buf bytes.Buffer
	wire.WriteVarInt(&buf, uint64(len(scriptBytes)))
	dst = append(dst, buf.Bytes()...)
	dst = append(dst, scriptBytes...)
	return dst
}

// Tx is a full transaction.
type Tx struct {
	Version  int32
	Inputs   []Input
	Outputs  []Output
	LockTime uint32
}

// Bytes serializes the transaction to its canonical wire form.
func (tx Tx) Bytes() []byte {
	var dst []byte
	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], uint32(tx.Version))
	dst = append(dst, verBuf[:]...)

	var countBuf bytes.Buffer
	wire.WriteVarInt(&countBuf, uint64(len(tx.Inputs)))
	dst = append(dst, countBuf.Bytes()...)
	for _, in := range tx.Inputs {
		dst = in.WriteTo(dst)
	}

	countBuf.Reset()
	wire.WriteVarInt(&countBuf, uint64(len(tx.Outputs)))
	dst = append(dst, countBuf.Bytes()...)
	for _, out := range tx.Outputs {
		dst = out.WriteTo(dst)
	}

	dst = wire.PutUint32LE(dst, tx.LockTime)
	return dst
}

// TxID returns the double-SHA256 of the serialized transaction, in the
// byte order it is hashed in (internal order, not the reversed
// display order convention).
func (tx Tx) TxID() [32]byte {
	return bchhash.DoubleSha256(tx.Bytes())
}

// TxIDDisplay returns TxID with its bytes reversed, matching how txids
// are conventionally displayed and referenced by explorers.
func (tx Tx) TxIDDisplay() [32]byte {
	return reverseBytes(tx.TxID())
}

// ParseTxID decodes a display-order (big-endian) 64-hex txid string
// into the internal byte order an Outpoint expects, inverting
// TxIDDisplay.
func ParseTxID(txIDHex string) ([32]byte, error) {
	var hash [32]byte
	decoded, err := hex.DecodeString(txIDHex)
	if err != nil {
		return hash, fmt.Errorf("txmodel: invalid txid hex: %w", err)
	}
	if len(decoded) != 32 {
		return hash, fmt.Errorf("txmodel: txid must decode to 32 bytes, got %d", len(decoded))
	}
	var fixed [32]byte
	copy(fixed[:], decoded)
	return reverseBytes(fixed), nil
}

func reverseBytes(in [32]byte) [32]byte {
	var out [32]byte
	for i := range in {
		out[i] = in[len(in)-1-i]
	}
	return out
}
