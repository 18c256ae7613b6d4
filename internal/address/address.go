// Package address implements the CashAddr-style base32 address codec:
// bit regrouping, the BCH-style polynomial checksum, and the textual
// "prefix:payload" address format used for both ordinary P2PKH/P2SH
// addresses and token (SLP-style) addresses under a different prefix.
package address

import (
	"fmt"
	"strings"
)

const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// DefaultPrefix is used when an address string carries no explicit
// "prefix:" component.
const DefaultPrefix = "bitcoincash"

// Type identifies what kind of hash an address payload carries.
type Type byte

const (
	TypeP2PKH Type = 0
	TypeP2SH  Type = 8
)

// Error is the address codec's error type; callers distinguish the
// three kinds via errors.As.
type Error struct {
	Kind  string
	Index int
	Byte  byte
}

func (e *Error) Error() string {
	switch e.Kind {
	case "invalid-checksum":
		return "address: invalid checksum"
	case "invalid-base32-letter":
		return fmt.Sprintf("address: invalid base32 letter %q at index %d", e.Byte, e.Index)
	case "invalid-address-type":
		return fmt.Sprintf("address: invalid address type byte 0x%02x", e.Byte)
	default:
		return "address: decode error"
	}
}

// ErrInvalidChecksum reports a payload whose checksum does not verify.
func ErrInvalidChecksum() error { return &Error{Kind: "invalid-checksum"} }

// ErrInvalidBase32Letter reports a character outside the CashAddr
// charset at the given index.
func ErrInvalidBase32Letter(index int, b byte) error {
	return &Error{Kind: "invalid-base32-letter", Index: index, Byte: b}
}

// ErrInvalidAddressType reports an unrecognized version byte.
func ErrInvalidAddressType(b byte) error {
	return &Error{Kind: "invalid-address-type", Byte: b}
}

// ConvertBits regroups a stream of fromBits-wide values into toBits-wide
// values, matching the original's bit accumulator exactly (including its
// non-padded validation branch for decode).
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, bool) {
	var acc uint32
	var bits uint
	maxV := uint32(1<<toBits) - 1
	maxAcc := uint32(1<<(fromBits+toBits-1)) - 1
	ret := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, value := range data {
		v := uint32(value)
		if v>>fromBits != 0 {
			return nil, false
		}
		acc = ((acc << fromBits) | v) & maxAcc
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte((acc>>bits)&maxV))
		}
	}
	if pad {
		if bits != 0 {
			ret = append(ret, byte((acc<<(toBits-bits))&maxV))
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxV != 0 {
		return nil, false
	}
	return ret, true
}

// polyMod is the BCH-style checksum polynomial used by both
// calculateChecksum and verifyChecksum.
func polyMod(values []byte) uint64 {
	c := uint64(1)
	for _, value := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(value)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

func prefixLower5(prefix string) []byte {
	out := make([]byte, len(prefix))
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 0x1f
	}
	return out
}

func calculateChecksum(prefix string, payload []byte) []byte {
	data := append(prefixLower5(prefix), 0)
	data = append(data, payload...)
	data = append(data, 0, 0, 0, 0, 0, 0, 0, 0)
	poly := polyMod(data)
	checksum := make([]byte, 8)
	for i := 0; i < 8; i++ {
		checksum[i] = byte((poly >> uint(5*(7-i))) & 0x1f)
	}
	return checksum
}

func verifyChecksum(prefix string, payload []byte) bool {
	data := append(prefixLower5(prefix), 0)
	data = append(data, payload...)
	return polyMod(data) == 0
}

func b32Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, x := range data {
		sb.WriteByte(charset[x])
	}
	return sb.String()
}

func b32Decode(s string) ([]byte, error) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(charset, s[i])
		if idx < 0 {
			return nil, ErrInvalidBase32Letter(i, s[i])
		}
		out[i] = byte(idx)
	}
	return out, nil
}

// Encode builds the "prefix:payload" textual form for a hash of any
// length. The version byte is addrType alone, with no size bits; Decode
// strips a fixed six trailing bytes after regrouping, and Address stores
// a 20-byte hash.
func Encode(prefix string, addrType Type, hash []byte) string {
	withVersion := append([]byte{byte(addrType)}, hash...)
	payload, _ := ConvertBits(withVersion, 8, 5, true)
	checksum := calculateChecksum(prefix, payload)
	return prefix + ":" + b32Encode(append(payload, checksum...))
}

// Decode parses a "[prefix:]payload" cash address string, returning the
// raw hash, its address type, and the prefix actually used (the default
// prefix when none was given).
func Decode(addrString string) (hash []byte, addrType Type, prefix string, err error) {
	lower := strings.ToLower(addrString)
	var payloadB32 string
	if pos := strings.Index(lower, ":"); pos >= 0 {
		prefix = lower[:pos]
		payloadB32 = lower[pos+1:]
	} else {
		prefix = DefaultPrefix
		payloadB32 = lower
	}
	decoded, err := b32Decode(payloadB32)
	if err != nil {
		return nil, 0, "", err
	}
	if !verifyChecksum(prefix, decoded) {
		return nil, 0, "", ErrInvalidChecksum()
	}
	converted, ok := ConvertBits(decoded, 5, 8, true)
	if !ok || len(converted) < 7 {
		return nil, 0, "", ErrInvalidChecksum()
	}
	hash = converted[1 : len(converted)-6]
	switch Type(converted[0]) {
	case TypeP2PKH, TypeP2SH:
		addrType = Type(converted[0])
	default:
		return nil, 0, "", ErrInvalidAddressType(converted[0])
	}
	return hash, addrType, prefix, nil
}

// Address is a parsed or constructed cash address: its hash payload,
// type, display prefix, and cached textual form.
type Address struct {
	addrType Type
	hash     [20]byte
	prefix   string
	cashAddr string
}

// FromHash160 builds an Address from a 20-byte hash under the default
// prefix.
func FromHash160(addrType Type, hash [20]byte) Address {
	return FromHash160WithPrefix(DefaultPrefix, addrType, hash)
}

// FromHash160WithPrefix builds an Address under an explicit prefix
// (e.g. "simpleledger" for token addresses).
func FromHash160WithPrefix(prefix string, addrType Type, hash [20]byte) Address {
	return Address{
		addrType: addrType,
		hash:     hash,
		prefix:   prefix,
		cashAddr: Encode(prefix, addrType, hash[:]),
	}
}

// Parse decodes a cash address string into an Address.
func Parse(cashAddr string) (Address, error) {
	hash, addrType, prefix, err := Decode(cashAddr)
	if err != nil {
		return Address{}, err
	}
	var h [20]byte
	copy(h[:], hash)
	return Address{addrType: addrType, hash: h, prefix: prefix, cashAddr: cashAddr}, nil
}

func (a Address) Hash() [20]byte    { return a.hash }
func (a Address) Type() Type        { return a.addrType }
func (a Address) Prefix() string    { return a.prefix }
func (a Address) CashAddr() string  { return a.cashAddr }
func (a Address) String() string    { return a.cashAddr }
func (a Address) IsP2SH() bool      { return a.addrType == TypeP2SH }
func (a Address) IsTokenAddr() bool { return a.prefix == "simpleledger" }
