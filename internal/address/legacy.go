package address

import (
	"github.com/mr-tron/base58"

	"github.com/bchtrade/bchtrade/internal/bchhash"
)

// legacy version bytes for the original Bitcoin-style base58check address
// format, distinct from the CashAddr version byte (Type).
const (
	legacyVersionP2PKH = 0x00
	legacyVersionP2SH  = 0x05
)

// LegacyBase58 renders a to the pre-CashAddr base58check address format
// ("1..."/"3..."-style addresses) some older explorers and tools still
// expect, rather than the CashAddr form every other method on Address
// returns. This is a compatibility helper only; the wallet never decodes
// this format, only produces it.
func (a Address) LegacyBase58() string {
	version := byte(legacyVersionP2PKH)
	if a.addrType == TypeP2SH {
		version = legacyVersionP2SH
	}
	payload := make([]byte, 0, 25)
	payload = append(payload, version)
	payload = append(payload, a.hash[:]...)
	checksum := bchhash.DoubleSha256(payload)
	payload = append(payload, checksum[:4]...)
	return base58.Encode(payload)
}
