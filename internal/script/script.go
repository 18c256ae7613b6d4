// Package script implements the minimal push/non-push opcode model
// needed to assemble and inspect the covenant and its companion
// scriptSigs. It is not a script interpreter; it only encodes,
// decodes, and composes opcode sequences.
package script

import (
	"encoding/binary"
	"fmt"
)

// Op is either a data push or a plain opcode, mirroring the sum type
// the covenant script is built out of.
type Op struct {
	isPush bool
	push   []byte
	code   OpCode
}

// Push constructs a data-push operation.
func Push(data []byte) Op {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Op{isPush: true, push: cp}
}

// Code constructs a plain opcode operation.
func Code(c OpCode) Op {
	return Op{code: c}
}

// IsPush reports whether the op is a data push.
func (o Op) IsPush() bool { return o.isPush }

// PushData returns the pushed bytes; valid only when IsPush is true.
func (o Op) PushData() []byte { return o.push }

// OpCode returns the underlying opcode; valid only when IsPush is false.
func (o Op) OpCode() OpCode { return o.code }

// leadingByte returns the first serialized byte of the op: either the
// push-length encoding byte, or the opcode value itself.
func (o Op) leadingByte() byte {
	if !o.isPush {
		return byte(o.code)
	}
	switch {
	case len(o.push) <= 0x4b:
		return byte(len(o.push))
	case len(o.push) <= 0xff:
		return byte(OpPushData1)
	case len(o.push) <= 0xffff:
		return byte(OpPushData2)
	default:
		return byte(OpPushData4)
	}
}

// WriteTo appends the serialized op to dst. When minimalPush is true,
// single-byte pushes of 1..16 are rewritten as the OP_1..OP_16 shorthand
// and an empty push becomes OP_0.
func (o Op) WriteTo(dst []byte, minimalPush bool) []byte {
	if !o.isPush {
		return append(dst, byte(o.code))
	}
	if minimalPush && len(o.push) == 1 && o.push[0] > 0 && o.push[0] <= 16 {
		return append(dst, o.push[0]+0x50)
	}
	dst = append(dst, o.leadingByte())
	switch {
	case len(o.push) <= 0x4b:
		// length byte doubles as the opcode; nothing further to write.
	case len(o.push) <= 0xff:
		dst = append(dst, byte(len(o.push)))
	case len(o.push) <= 0xffff:
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(o.push)))
		dst = append(dst, lenBuf[:]...)
	default:
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(o.push)))
		dst = append(dst, lenBuf[:]...)
	}
	return append(dst, o.push...)
}

// Script is an ordered sequence of ops plus the minimal-push mode used
// when re-serializing them.
type Script struct {
	ops         []Op
	minimalPush bool
}

// New builds a minimal-push script from ops.
func New(ops ...Op) Script {
	return Script{ops: ops, minimalPush: true}
}

// NewNonMinimalPush builds a script that serializes small single-byte
// pushes verbatim instead of collapsing them to OP_1..OP_16 — used for
// the OP_RETURN payloads (token SEND, trade offer) whose fields keep
// fixed-width pushes.
func NewNonMinimalPush(ops ...Op) Script {
	return Script{ops: ops, minimalPush: false}
}

// Ops returns the script's op sequence.
func (s Script) Ops() []Op { return s.ops }

// Append returns a copy of s with op appended.
func (s Script) Append(op Op) Script {
	ops := make([]Op, len(s.ops), len(s.ops)+1)
	copy(ops, s.ops)
	ops = append(ops, op)
	return Script{ops: ops, minimalPush: s.minimalPush}
}

// Bytes serializes the script to its canonical wire form.
func (s Script) Bytes() []byte {
	var buf []byte
	for _, op := range s.ops {
		buf = op.WriteTo(buf, s.minimalPush)
	}
	return buf
}

// Parse decodes a serialized script, including multi-byte
// OP_PUSHDATA2/OP_PUSHDATA4 pushes.
func Parse(data []byte) (Script, error) {
	var ops []Op
	idx := 0
	for idx < len(data) {
		b := data[idx]
		switch {
		case b <= 0x4b:
			n := int(b)
			idx++
			if idx+n > len(data) {
				return Script{}, fmt.Errorf("script: push of %d bytes at offset %d overruns script", n, idx)
			}
			ops = append(ops, Push(data[idx:idx+n]))
			idx += n
		case b == byte(OpPushData1):
			idx++
			if idx >= len(data) {
				return Script{}, fmt.Errorf("script: truncated OP_PUSHDATA1 length at offset %d", idx)
			}
			n := int(data[idx])
			idx++
			if idx+n > len(data) {
				return Script{}, fmt.Errorf("script: OP_PUSHDATA1 push of %d bytes overruns script", n)
			}
			ops = append(ops, Push(data[idx:idx+n]))
			idx += n
		case b == byte(OpPushData2):
			idx++
			if idx+2 > len(data) {
				return Script{}, fmt.Errorf("script: truncated OP_PUSHDATA2 length at offset %d", idx)
			}
			n := int(binary.LittleEndian.Uint16(data[idx : idx+2]))
			idx += 2
			if idx+n > len(data) {
				return Script{}, fmt.Errorf("script: OP_PUSHDATA2 push of %d bytes overruns script", n)
			}
			ops = append(ops, Push(data[idx:idx+n]))
			idx += n
		case b == byte(OpPushData4):
			idx++
			if idx+4 > len(data) {
				return Script{}, fmt.Errorf("script: truncated OP_PUSHDATA4 length at offset %d", idx)
			}
			n := int(binary.LittleEndian.Uint32(data[idx : idx+4]))
			idx += 4
			if idx+n > len(data) {
				return Script{}, fmt.Errorf("script: OP_PUSHDATA4 push of %d bytes overruns script", n)
			}
			ops = append(ops, Push(data[idx:idx+n]))
			idx += n
		default:
			ops = append(ops, Code(OpCode(b)))
			idx++
		}
	}
	return Script{ops: ops, minimalPush: true}, nil
}
