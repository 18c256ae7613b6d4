// Package wire implements the little-endian, Bitcoin-style variable
// length integer and string encodings used by the transaction and
// sighash preimage serializers.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteVarInt writes number in the classic compact-size encoding: a
// single byte for values up to 0xfc, otherwise a 1-byte prefix
// (0xfd/0xfe/0xff) followed by a little-endian 2/4/8-byte value.
func WriteVarInt(w io.Writer, number uint64) error {
	switch {
	case number <= 0xfc:
		_, err := w.Write([]byte{byte(number)})
		return err
	case number <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(number))
		_, err := w.Write(buf)
		return err
	case number <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(number))
		_, err := w.Write(buf)
		return err
	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], number)
		_, err := w.Write(buf)
		return err
	}
}

// WriteVarStr writes the byte length of s as a VarInt followed by s
// itself.
func WriteVarStr(w io.Writer, s []byte) error {
	if err := WriteVarInt(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.Write(s)
	return err
}

// ReadVarInt reads a compact-size encoded integer.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}
	switch prefix[0] {
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	default:
		return uint64(prefix[0]), nil
	}
}

// ReadVarStr reads a VarInt length prefix followed by that many bytes.
func ReadVarStr(r io.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	const maxVarStr = 1 << 32 // guard against a corrupt/adversarial length prefix
	if n > maxVarStr {
		return nil, fmt.Errorf("wire: var str length %d exceeds sane limit", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PutUint32LE appends the little-endian encoding of v to dst.
func PutUint32LE(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// PutUint64LE appends the little-endian encoding of v to dst.
func PutUint64LE(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// PutUint64BE appends the big-endian encoding of v to dst, the byte order
// of the token-quantity fields in the SLP-style OP_RETURN payload (package
// outputs encodes those with its own helper).
func PutUint64BE(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}
