// Package wallet is the non-custodial façade over a single secp256k1
// secret: it derives the wallet's own P2PKH address, seeds a tx builder
// with the wallet's UTXOs, and persists the secret to disk as a JSON
// file under a dotfile directory with restrictive permissions.
package wallet

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/ifaces"
	"github.com/bchtrade/bchtrade/internal/outputs"
	"github.com/bchtrade/bchtrade/internal/txbuilder"
	"github.com/bchtrade/bchtrade/internal/txmodel"
)

// DustAmount is the minimum output value this wallet will keep instead
// of folding into the fee.
const DustAmount = 546

// Wallet derives its address from a single secp256k1 secret and knows
// how to seed a tx builder with its own spendable UTXOs.
type Wallet struct {
	secretKey *btcec.PrivateKey
	address   address.Address
}

// FromSecret validates secret as a secp256k1 scalar and derives the
// wallet's P2PKH address from its compressed public key.
func FromSecret(secret [32]byte) (*Wallet, error) {
	// The secp256k1 group order n; a valid secret lies in [1, n-1].
	order := [32]byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
		0xba, 0xae, 0xdc, 0xe6, 0xaf, 0x48, 0xa0, 0x3b,
		0xbf, 0xd2, 0x5e, 0x8c, 0xd0, 0x36, 0x41, 0x41,
	}
	if secret == ([32]byte{}) || bytes.Compare(secret[:], order[:]) >= 0 {
		return nil, fmt.Errorf("wallet: secret is not a valid secp256k1 scalar")
	}
	secretKey, pubKey := btcec.PrivKeyFromBytes(secret[:])
	addr := address.FromHash160(address.TypeP2PKH, bchhash.Hash160(pubKey.SerializeCompressed()))
	return &Wallet{secretKey: secretKey, address: addr}, nil
}

// NewRandom generates a fresh secret via crypto/rand, retrying until it
// lands on a valid secp256k1 scalar (astronomically likely on the
// first try).
func NewRandom() (*Wallet, [32]byte, error) {
	for {
		var secret [32]byte
		if _, err := rand.Read(secret[:]); err != nil {
			return nil, secret, fmt.Errorf("wallet: failed to generate secret: %w", err)
		}
		w, err := FromSecret(secret)
		if err == nil {
			return w, secret, nil
		}
	}
}

// Address returns the wallet's own P2PKH address.
func (w *Wallet) Address() address.Address { return w.address }

// SecretKey exposes the underlying signing key. Callers must not retain
// or log it; zero it on teardown.
func (w *Wallet) SecretKey() *btcec.PrivateKey { return w.secretKey }

// Zero overwrites the in-memory secret. Call this when the wallet is no
// longer needed, per the resource discipline the secret key must never
// outlive its use.
func (w *Wallet) Zero() {
	w.secretKey.Zero()
}

// Balance sums the satoshi value of every UTXO funding the wallet's
// address.
func (w *Wallet) Balance(ctx context.Context, utxoSource ifaces.UTXOSource) (uint64, error) {
	entries, err := utxoSource.UTXOs(ctx, w.address.CashAddr())
	if err != nil {
		return 0, fmt.Errorf("wallet: fetching UTXOs: %w", err)
	}
	var total uint64
	for _, e := range entries {
		total += e.Satoshis
	}
	return total, nil
}

// WaitForTransaction polls utxoSource on a 1-second cadence until the
// wallet's address shows a UTXO, or ctx is done. This is the one
// blocking operation in the core subset; it is cancellable only
// through ctx.
func (w *Wallet) WaitForTransaction(ctx context.Context, utxoSource ifaces.UTXOSource) (ifaces.UTXOEntry, error) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		entries, err := utxoSource.UTXOs(ctx, w.address.CashAddr())
		if err != nil {
			return ifaces.UTXOEntry{}, fmt.Errorf("wallet: polling for transaction: %w", err)
		}
		if len(entries) > 0 {
			return entries[0], nil
		}
		select {
		case <-ctx.Done():
			return ifaces.UTXOEntry{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// InitTransaction seeds a fresh builder with every UTXO funding the
// wallet's own address, each described as a P2PKH signing context
// spendable by the wallet's own key, and returns the builder alongside
// the summed balance.
func (w *Wallet) InitTransaction(ctx context.Context, utxoSource ifaces.UTXOSource) (*txbuilder.Builder, uint64, error) {
	builder := txbuilder.New(2, 0)
	entries, err := utxoSource.UTXOs(ctx, w.address.CashAddr())
	if err != nil {
		return nil, 0, fmt.Errorf("wallet: fetching UTXOs: %w", err)
	}
	var balance uint64
	for _, e := range entries {
		balance += e.Satoshis
		txHash, err := reverseHexToHash(e.TxIDHex)
		if err != nil {
			return nil, 0, fmt.Errorf("wallet: decoding utxo txid %q: %w", e.TxIDHex, err)
		}
		builder.AddUTXO(txbuilder.UTXOContext{
			Outpoint: txmodel.Outpoint{TxHash: txHash, OutputIdx: e.Vout},
			Descriptor: outputs.P2PKHOutput{
				Address:   w.address,
				ValueSats: e.Satoshis,
			},
			Sequence:  0xffffffff,
			SecretKey: w.secretKey,
		})
	}
	return builder, balance, nil
}

// Broadcast serializes tx to its canonical hex form and submits it
// through the broadcast collaborator.
func (w *Wallet) Broadcast(ctx context.Context, tx txmodel.Tx, broadcaster ifaces.Broadcaster) (string, error) {
	rawHex := fmt.Sprintf("%x", tx.Bytes())
	txID, err := broadcaster.Broadcast(ctx, rawHex)
	if err != nil {
		return "", fmt.Errorf("wallet: broadcasting transaction: %w", err)
	}
	return txID, nil
}

func reverseHexToHash(txIDHex string) ([32]byte, error) {
	return txmodel.ParseTxID(txIDHex)
}
