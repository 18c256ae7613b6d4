package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	gobase32 "github.com/multiformats/go-base32"
	"github.com/pkg/errors"

	"github.com/bchtrade/bchtrade/internal/address"
	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/ifaces"
	"github.com/bchtrade/bchtrade/internal/outputs"
)

// pow10 returns 10^decimals, for converting a token's display amount
// into its indivisible base unit.
func pow10(decimals uint8) float64 {
	return math.Pow(10, float64(decimals))
}

// decodeTokenID parses a token registry's 64-hex token id into the
// fixed-width form the SLP output payload carries.
func decodeTokenID(idHex string) ([32]byte, error) {
	var id [32]byte
	decoded, err := hex.DecodeString(idHex)
	if err != nil {
		return id, errors.Wrapf(err, "invalid token id hex %q", idHex)
	}
	if len(decoded) != 32 {
		return id, fmt.Errorf("token id must decode to 32 bytes, got %d", len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

// tokenIDBase32 renders a 32-byte token id as unpadded RFC4648 base32,
// a shorter alternative to 64 hex characters for a human to read off a
// terminal or copy into a QR-averse channel.
func tokenIDBase32(id [32]byte) string {
	return gobase32.RawStdEncoding.EncodeToString(id[:])
}

// p2shAddress derives the P2SH address that locks p2sh's inner script,
// under the given display prefix (e.g. "bitcoincash" or
// "simpleledger" so the same covenant can be shown as both a funding
// address and a token address).
func p2shAddress(prefix string, p2sh outputs.P2SHOutput) address.Address {
	hash := bchhash.Hash160(p2sh.Inner.Script().Bytes())
	return address.FromHash160WithPrefix(prefix, address.TypeP2SH, hash)
}

// waitForFundingAt polls source on a 1-second cadence until cashAddr
// shows a UTXO, or ctx is done. Unlike wallet.WaitForTransaction this
// watches an arbitrary address (the covenant's own funding address,
// not the wallet's).
func waitForFundingAt(ctx context.Context, source ifaces.UTXOSource, cashAddr string) (ifaces.UTXOEntry, error) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		entries, err := source.UTXOs(ctx, cashAddr)
		if err != nil {
			return ifaces.UTXOEntry{}, fmt.Errorf("polling for funding: %w", err)
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
