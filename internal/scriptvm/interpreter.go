// Package scriptvm implements the minimal script execution subset
// needed to unit-test the EnforceOutputs covenant and the ordinary
// P2PKH path it falls back to on cancellation. It is not a general
// script interpreter — only the opcodes the covenant and its
// companion sig-scripts actually use are implemented; anything else
// reports ErrNotImplemented.
package scriptvm

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/bchtrade/bchtrade/internal/bchhash"
	"github.com/bchtrade/bchtrade/internal/script"
)

// ScriptError enumerates the failure kinds the covenant's unit-testing
// interpreter can report.
type ScriptError struct {
	Kind string
}

func (e *ScriptError) Error() string { return "scriptvm: " + e.Kind }

var (
	ErrInvalidPubKey          = &ScriptError{"invalid public key"}
	ErrInvalidSignatureFormat = &ScriptError{"invalid signature format"}
	ErrInvalidSignature       = &ScriptError{"invalid signature"}
	ErrNotImplemented         = &ScriptError{"opcode not implemented"}
	ErrScriptFailed           = &ScriptError{"script evaluation failed"}
	ErrStackUnderflow         = &ScriptError{"stack underflow"}
)

// Interpreter runs a sig-script followed by a locking script against a
// single shared stack, the way a real verifier concatenates the two
// before execution.
type Interpreter struct {
	stack    [][]byte
	preImage []byte
}

// New creates an interpreter bound to the serialized preimage that
// OP_CHECKSIGVERIFY and OP_CHECKDATASIG sign/verify against.
func New(preImageSerialized []byte) *Interpreter {
	return &Interpreter{preImage: preImageSerialized}
}

func (vm *Interpreter) pop() ([]byte, error) {
	if len(vm.stack) == 0 {
		return nil, ErrStackUnderflow
	}
	top := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return top, nil
}

func (vm *Interpreter) push(v []byte) { vm.stack = append(vm.stack, v) }

func (vm *Interpreter) peekN(n int) ([][]byte, error) {
	if len(vm.stack) < n {
		return nil, ErrStackUnderflow
	}
	return vm.stack[len(vm.stack)-n:], nil
}

func isTruthy(v []byte) bool {
	for i, b := range v {
		if b != 0 {
			if i == len(v)-1 && b == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// Run executes ops against the interpreter's stack, honoring
// IF/ELSE/ENDIF branching around the limited opcode set it supports.
// Stack() reflects whatever is left when the sequence runs out.
func (vm *Interpreter) Run(ops []script.Op) error {
	return vm.run(ops)
}

func (vm *Interpreter) run(ops []script.Op) error {
	i := 0
	for i < len(ops) {
		op := ops[i]
		if op.IsPush() {
			vm.push(op.PushData())
			i++
			continue
		}
		switch op.OpCode() {
		case script.OpIf:
			cond, err := vm.pop()
			if err != nil {
				return err
			}
			branch, elseBranch, next, err := splitIfElse(ops, i+1)
			if err != nil {
				return err
			}
			if isTruthy(cond) {
				if err := vm.run(branch); err != nil {
					return err
				}
			} else {
				if err := vm.run(elseBranch); err != nil {
					return err
				}
			}
			i = next
			continue
		default:
			if err := vm.runOpCode(op.OpCode()); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}

// splitIfElse scans ops starting at start (just after an OP_IF) for the
// matching OP_ELSE/OP_ENDIF at nesting depth zero, returning the two
// branches and the index just past OP_ENDIF.
func splitIfElse(ops []script.Op, start int) (ifBranch, elseBranch []script.Op, next int, err error) {
	depth := 0
	elseIdx := -1
	for idx := start; idx < len(ops); idx++ {
		op := ops[idx]
		if op.IsPush() {
			continue
		}
		switch op.OpCode() {
		case script.OpIf, script.OpNotIf:
			depth++
		case script.OpElse:
			if depth == 0 && elseIdx == -1 {
				elseIdx = idx
			}
		case script.OpEndIf:
			if depth == 0 {
				if elseIdx == -1 {
					return ops[start:idx], nil, idx + 1, nil
				}
				return ops[start:elseIdx], ops[elseIdx+1 : idx], idx + 1, nil
			}
			depth--
		}
	}
	return nil, nil, 0, errors.New("scriptvm: unterminated OP_IF")
}

func (vm *Interpreter) runOpCode(code script.OpCode) error {
	switch code {
	case script.OpSwap:
		items, err := vm.peekN(2)
		if err != nil {
			return err
		}
		items[0], items[1] = items[1], items[0]
		return nil
	case script.OpCat:
		top, err := vm.pop()
		if err != nil {
			return err
		}
		second, err := vm.pop()
		if err != nil {
			return err
		}
		vm.push(append(append([]byte{}, second...), top...))
		return nil
	case script.OpHash256:
		top, err := vm.pop()
		if err != nil {
			return err
		}
		h := bchhash.DoubleSha256(top)
		vm.push(h[:])
		return nil
	case script.OpSha256:
		top, err := vm.pop()
		if err != nil {
			return err
		}
		h := bchhash.Sha256(top)
		vm.push(h[:])
		return nil
	case script.OpHash160:
		top, err := vm.pop()
		if err != nil {
			return err
		}
		h := bchhash.Hash160(top)
		vm.push(h[:])
		return nil
	case script.Op3Dup:
		items, err := vm.peekN(3)
		if err != nil {
			return err
		}
		cp := make([][]byte, 3)
		copy(cp, items)
		vm.stack = append(vm.stack, cp...)
		return nil
	case script.OpDup:
		items, err := vm.peekN(1)
		if err != nil {
			return err
		}
		vm.push(append([]byte{}, items[0]...))
		return nil
	case script.OpDrop:
		_, err := vm.pop()
		return err
	case script.OpRot:
		items, err := vm.peekN(3)
		if err != nil {
			return err
		}
		items[0], items[1], items[2] = items[1], items[2], items[0]
		return nil
	case script.OpEqual, script.OpEqualVfy:
		a, err := vm.pop()
		if err != nil {
			return err
		}
		b, err := vm.pop()
		if err != nil {
			return err
		}
		eq := bytes.Equal(a, b)
		if code == script.OpEqualVfy {
			if !eq {
				return ErrScriptFailed
			}
			return nil
		}
		if eq {
			vm.push([]byte{1})
		} else {
			vm.push(nil)
		}
		return nil
	case script.OpCheckSigVerify, script.OpCheckSig:
		pubKeyBytes, err := vm.pop()
		if err != nil {
			return err
		}
		pubKey, err := btcec.ParsePubKey(pubKeyBytes)
		if err != nil {
			return ErrInvalidPubKey
		}
		sigSer, err := vm.pop()
		if err != nil {
			return err
		}
		if len(sigSer) == 0 {
			return ErrInvalidSignatureFormat
		}
		sigSer = sigSer[:len(sigSer)-1]
		sig, err := ecdsa.ParseDERSignature(sigSer)
		if err != nil {
			return ErrInvalidSignatureFormat
		}
		msgHash := bchhash.DoubleSha256(vm.preImage)
		ok := sig.Verify(msgHash[:], pubKey)
		if code == script.OpCheckSigVerify {
			if !ok {
				return ErrInvalidSignature
			}
			return nil
		}
		if ok {
			vm.push([]byte{1})
		} else {
			vm.push(nil)
		}
		return nil
	case script.OpCheckDataSig:
		pubKeyBytes, err := vm.pop()
		if err != nil {
			return err
		}
		pubKey, err := btcec.ParsePubKey(pubKeyBytes)
		if err != nil {
			return ErrInvalidPubKey
		}
		message, err := vm.pop()
		if err != nil {
			return err
		}
		sigSer, err := vm.pop()
		if err != nil {
			return err
		}
		sig, err := ecdsa.ParseDERSignature(sigSer)
		if err != nil {
			return ErrInvalidSignatureFormat
		}
		msgHash := bchhash.Sha256(message)
		if sig.Verify(msgHash[:], pubKey) {
			vm.push([]byte{1})
		} else {
			vm.push([]byte{0})
		}
		return nil
	default:
		return ErrNotImplemented
	}
}

// Stack returns the interpreter's current stack, top element last.
func (vm *Interpreter) Stack() [][]byte { return vm.stack }

// Succeeded reports whether the top stack element is script-truthy —
// the usual "did this script evaluate to true" check.
func (vm *Interpreter) Succeeded() bool {
	if len(vm.stack) == 0 {
		return false
	}
	return isTruthy(vm.stack[len(vm.stack)-1])
}
