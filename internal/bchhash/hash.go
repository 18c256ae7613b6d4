// Package bchhash provides the hash primitives used throughout the
// covenant and address codecs: plain SHA-256, double SHA-256, and
// hash160 (RIPEMD-160 of a SHA-256 digest).
package bchhash

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Sha256 returns the single SHA-256 digest of data.
func Sha256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// DoubleSha256 returns SHA-256(SHA-256(data)), the digest used for txids
// and for every preimage hash field in the sighash.
func DoubleSha256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Hash160 returns RIPEMD160(SHA256(data)), used to derive P2PKH and P2SH
// script hashes from a public key or a redeem script.
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}
