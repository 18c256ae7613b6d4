// Package ifaces declares the external collaborator contracts the core
// engine is built against: explorer UTXO lookups, broadcast, token
// metadata, the trade index, SLP validity, and QR rendering. The core
// signing/covenant engine depends only on these interfaces.
// internal/explorer supplies a concrete REST-backed UTXOSource and
// Broadcaster; TokenRegistry, TradeIndex, SLPValidity, and QRRenderer
// have no concrete implementation here.
package ifaces

import "context"

// UTXOEntry is what the explorer collaborator returns per unspent
// output: a txid the caller must reverse into internal byte order, the
// output index, and its value in satoshis.
type UTXOEntry struct {
	TxIDHex  string
	Vout     uint32
	Satoshis uint64
}

// UTXOSource fetches the unspent outputs funding an address.
type UTXOSource interface {
	UTXOs(ctx context.Context, cashAddr string) ([]UTXOEntry, error)
}

// Broadcaster submits the canonical hex encoding of a signed
// transaction and returns its 64-hex txid.
type Broadcaster interface {
	Broadcast(ctx context.Context, rawTxHex string) (txIDHex string, err error)
}

// TokenMetadata describes a token's display attributes.
type TokenMetadata struct {
	IDHex    string
	Decimals uint8
	Symbol   string
	Name     string
}

// TokenRegistry resolves token identifiers and human names to
// TokenMetadata.
type TokenRegistry interface {
	FindToken(ctx context.Context, nameOrID string) ([]TokenMetadata, error)
}

// TradeEntry is a funded, announced trade offer as reported by the
// trade index collaborator — the nine OP_RETURN pushes already parsed.
type TradeEntry struct {
	TxIDHex          string
	OutputIdx        uint32
	SellAmount       uint64
	BuyAmount        uint64
	ReceivingAddress string
	CancelAddress    string
}

// TradeIndex lists announced trade offers for a token.
type TradeIndex interface {
	ListTrades(ctx context.Context, tokenIDHex string) ([]TradeEntry, error)
}

// SLPValidity answers whether a given transaction's SLP-carrying
// outputs are consensus-valid according to the token overlay's own
// validity rules (outside what this wallet's own script model checks).
type SLPValidity interface {
	IsValid(ctx context.Context, txIDHex string) (bool, error)
}

// QRRenderer displays a payload (typically a cash address) as a QR
// code on the user's terminal.
type QRRenderer interface {
	Render(payload []byte) error
}
