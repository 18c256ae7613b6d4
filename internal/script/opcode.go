package script

import "fmt"

// OpCode is a single non-push script opcode byte.
type OpCode byte

// The full opcode table, mirroring the cash-family script machine this
// wallet's covenant is written against.
const (
	Op0         OpCode = 0x00
	OpPushData1 OpCode = 0x4c
	OpPushData2 OpCode = 0x4d
	OpPushData4 OpCode = 0x4e
	Op1Negate   OpCode = 0x4f
	OpReserved  OpCode = 0x50
	Op1         OpCode = 0x51
	Op2         OpCode = 0x52
	Op3         OpCode = 0x53
	Op4         OpCode = 0x54
	Op5         OpCode = 0x55
	Op6         OpCode = 0x56
	Op7         OpCode = 0x57
	Op8         OpCode = 0x58
	Op9         OpCode = 0x59
	Op10        OpCode = 0x5a
	Op11        OpCode = 0x5b
	Op12        OpCode = 0x5c
	Op13        OpCode = 0x5d
	Op14        OpCode = 0x5e
	Op15        OpCode = 0x5f
	Op16        OpCode = 0x60

	OpNop      OpCode = 0x61
	OpVer      OpCode = 0x62
	OpIf       OpCode = 0x63
	OpNotIf    OpCode = 0x64
	OpVerIf    OpCode = 0x65
	OpVerNotIf OpCode = 0x66
	OpElse     OpCode = 0x67
	OpEndIf    OpCode = 0x68
	OpVerify   OpCode = 0x69
	OpReturn   OpCode = 0x6a

	OpToAltStack   OpCode = 0x6b
	OpFromAltStack OpCode = 0x6c
	Op2Drop        OpCode = 0x6d
	Op2Dup         OpCode = 0x6e
	Op3Dup         OpCode = 0x6f
	Op2Over        OpCode = 0x70
	Op2Rot         OpCode = 0x71
	Op2Swap        OpCode = 0x72
	OpIfDup        OpCode = 0x73
	OpDepth        OpCode = 0x74
	OpDrop         OpCode = 0x75
	OpDup          OpCode = 0x76
	OpNip          OpCode = 0x77
	OpOver         OpCode = 0x78
	OpPick         OpCode = 0x79
	OpRoll         OpCode = 0x7a
	OpRot          OpCode = 0x7b
	OpSwap         OpCode = 0x7c
	OpTuck         OpCode = 0x7d

	OpCat     OpCode = 0x7e
	OpSplit   OpCode = 0x7f
	OpNum2Bin OpCode = 0x80
	OpBin2Num OpCode = 0x81
	OpSize    OpCode = 0x82

	OpInvert    OpCode = 0x83
	OpAnd       OpCode = 0x84
	OpOr        OpCode = 0x85
	OpXor       OpCode = 0x86
	OpEqual     OpCode = 0x87
	OpEqualVfy  OpCode = 0x88
	OpReserved1 OpCode = 0x89
	OpReserved2 OpCode = 0x8a

	Op1Add      OpCode = 0x8b
	Op1Sub      OpCode = 0x8c
	Op2Mul      OpCode = 0x8d
	Op2Div      OpCode = 0x8e
	OpNegate    OpCode = 0x8f
	OpAbs       OpCode = 0x90
	OpNot       OpCode = 0x91
	Op0NotEqual OpCode = 0x92

	OpAdd    OpCode = 0x93
	OpSub    OpCode = 0x94
	OpMul    OpCode = 0x95
	OpDiv    OpCode = 0x96
	OpMod    OpCode = 0x97
	OpLShift OpCode = 0x98
	OpRShift OpCode = 0x99

	OpBoolAnd            OpCode = 0x9a
	OpBoolOr             OpCode = 0x9b
	OpNumEqual           OpCode = 0x9c
	OpNumEqualVerify     OpCode = 0x9d
	OpNumNotEqual        OpCode = 0x9e
	OpLessThan           OpCode = 0x9f
	OpGreaterThan        OpCode = 0xa0
	OpLessThanOrEqual    OpCode = 0xa1
	OpGreaterThanOrEqual OpCode = 0xa2
	OpMin                OpCode = 0xa3
	OpMax                OpCode = 0xa4

	OpWithin OpCode = 0xa5

	OpRipemd160           OpCode = 0xa6
	OpSha1                OpCode = 0xa7
	OpSha256              OpCode = 0xa8
	OpHash160             OpCode = 0xa9
	OpHash256             OpCode = 0xaa
	OpCodeSeparator       OpCode = 0xab
	OpCheckSig            OpCode = 0xac
	OpCheckSigVerify      OpCode = 0xad
	OpCheckMultiSig       OpCode = 0xae
	OpCheckMultiSigVerify OpCode = 0xaf

	OpNop1                OpCode = 0xb0
	OpCheckLockTimeVerify OpCode = 0xb1
	OpCheckSequenceVerify OpCode = 0xb2
	OpNop4                OpCode = 0xb3
	OpNop5                OpCode = 0xb4
	OpNop6                OpCode = 0xb5
	OpNop7                OpCode = 0xb6
	OpNop8                OpCode = 0xb7
	OpNop9                OpCode = 0xb8
	OpNop10               OpCode = 0xb9

	OpCheckDataSig       OpCode = 0xba
	OpCheckDataSigVerify OpCode = 0xbb

	OpPrefixBegin OpCode = 0xf0
	OpPrefixEnd   OpCode = 0xf7

	OpSmallInteger OpCode = 0xfa
	OpPubKeys      OpCode = 0xfb
	OpPubKeyHash   OpCode = 0xfd
	OpPubkey       OpCode = 0xfe

	OpInvalidOpcode OpCode = 0xff
)

var opCodeNames = map[OpCode]string{
	Op0: "OP_0", OpPushData1: "OP_PUSHDATA1", OpPushData2: "OP_PUSHDATA2",
	OpPushData4: "OP_PUSHDATA4", Op1Negate: "OP_1NEGATE", OpReserved: "OP_RESERVED",
	Op1: "OP_1", Op2: "OP_2", Op3: "OP_3", Op4: "OP_4", Op5: "OP_5", Op6: "OP_6",
	Op7: "OP_7", Op8: "OP_8", Op9: "OP_9", Op10: "OP_10", Op11: "OP_11", Op12: "OP_12",
	Op13: "OP_13", Op14: "OP_14", Op15: "OP_15", Op16: "OP_16",
	OpNop: "OP_NOP", OpIf: "OP_IF", OpNotIf: "OP_NOTIF", OpElse: "OP_ELSE",
	OpEndIf: "OP_ENDIF", OpVerify: "OP_VERIFY", OpReturn: "OP_RETURN",
	OpToAltStack: "OP_TOALTSTACK", OpFromAltStack: "OP_FROMALTSTACK",
	Op2Drop: "OP_2DROP", Op2Dup: "OP_2DUP", Op3Dup: "OP_3DUP",
	OpDepth: "OP_DEPTH", OpDrop: "OP_DROP", OpDup: "OP_DUP", OpNip: "OP_NIP",
	OpOver: "OP_OVER", OpPick: "OP_PICK", OpRoll: "OP_ROLL", OpRot: "OP_ROT",
	OpSwap: "OP_SWAP", OpTuck: "OP_TUCK",
	OpCat: "OP_CAT", OpSplit: "OP_SPLIT", OpNum2Bin: "OP_NUM2BIN",
	OpBin2Num: "OP_BIN2NUM", OpSize: "OP_SIZE",
	OpEqual: "OP_EQUAL", OpEqualVfy: "OP_EQUALVERIFY",
	OpRipemd160: "OP_RIPEMD160", OpSha1: "OP_SHA1", OpSha256: "OP_SHA256",
	OpHash160: "OP_HASH160", OpHash256: "OP_HASH256",
	OpCodeSeparator: "OP_CODESEPARATOR",
	OpCheckSig:      "OP_CHECKSIG", OpCheckSigVerify: "OP_CHECKSIGVERIFY",
	OpCheckMultiSig: "OP_CHECKMULTISIG", OpCheckMultiSigVerify: "OP_CHECKMULTISIGVERIFY",
	OpCheckLockTimeVerify: "OP_CHECKLOCKTIMEVERIFY", OpCheckSequenceVerify: "OP_CHECKSEQUENCEVERIFY",
	OpCheckDataSig: "OP_CHECKDATASIG", OpCheckDataSigVerify: "OP_CHECKDATASIGVERIFY",
	OpInvalidOpcode: "OP_INVALIDOPCODE",
}

// String renders a known opcode by its conventional mnemonic, or a
// generic "OP_UNKNOWN(0xNN)" for anything not named above (reserved,
// template-matching, or multi-byte-prefix values).
func (c OpCode) String() string {
	if name, ok := opCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(0x%02x)", byte(c))
}
