package instruction

// signExtend sign-extends the low `bits` bits of value to a full int32.
func signExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// Decode is total: every 32-bit word maps to some Instruction, falling back
// to Unsupported(word) for anything the decoder does not recognize.
func Decode(word uint32) Instruction {
	opcode := word & maskOpcode

	switch opcode {
	case opcodeReg:
		return decodeReg(word)
	case opcodeImm:
		return decodeImm(word)
	case opcodeLoad:
		return decodeLoad(word)
	case opcodeJalr:
		return decodeJalr(word)
	case opcodeStore:
		return decodeStore(word)
	case opcodeBranch:
		return decodeBranch(word)
	case opcodeJal:
		return decodeJal(word)
	case opcodeLui:
		return decodeU(word, KindLui)
	case opcodeAuipc:
		return decodeU(word, KindAuipc)
	case opcodeSystem:
		return decodeSystem(word)
	default:
		return Unsupported(word)
	}
}

func fields(word uint32) (rd, funct3, rs1, rs2, funct7 uint32) {
	rd = (word >> shiftRd) & mask5Bit
	funct3 = (word >> shiftFunct3) & mask3Bit
	rs1 = (word >> shiftRs1) & mask5Bit
	rs2 = (word >> shiftRs2) & mask5Bit
	funct7 = (word >> shiftFunct7) & mask7Bit
	return
}

var regBaseKinds = [8]Kind{
	0: KindAdd, 1: KindSll, 2: KindSlt, 3: KindSltu,
	4: KindXor, 5: KindSrl, 6: KindOr, 7: KindAnd,
}

var regMKinds = [8]Kind{
	0: KindMul, 1: KindMulh, 2: KindMulhsu, 3: KindMulhu,
	4: KindDiv, 5: KindDivu, 6: KindRem, 7: KindRemu,
}

func decodeReg(word uint32) Instruction {
	rd, funct3, rs1, rs2, funct7 := fields(word)

	var kind Kind
	switch funct7 {
	case funct7Base:
		kind = regBaseKinds[funct3]
	case funct7Alt:
		switch funct3 {
		case 0:
			kind = KindSub
		case 5:
			kind = KindSra
		default:
			return Unsupported(word)
		}
	case funct7M:
		kind = regMKinds[funct3]
	default:
		return Unsupported(word)
	}

	return Instruction{Kind: kind, Rd: uint8(rd), Rs1: uint8(rs1), Rs2: uint8(rs2)}
}

var immArithKinds = map[uint32]Kind{
	0: KindAddi, 2: KindSlti, 3: KindSltiu, 4: KindXori, 6: KindOri, 7: KindAndi,
}

func decodeImm(word uint32) Instruction {
	rd, funct3, rs1, _, _ := fields(word)
	imm12 := (word >> 20) & mask12Bit

	switch funct3 {
	case funct3Slli:
		upper7 := imm12 >> 5
		if upper7 != 0x00 {
			return Unsupported(word)
		}
		shamt := imm12 & mask5Bit
		return Instruction{Kind: KindSlli, Rd: uint8(rd), Rs1: uint8(rs1), Imm: int32(shamt)}
	case funct3Srli:
		upper7 := imm12 >> 5
		shamt := imm12 & mask5Bit
		switch upper7 {
		case 0x00:
			return Instruction{Kind: KindSrli, Rd: uint8(rd), Rs1: uint8(rs1), Imm: int32(shamt)}
		case 0x20:
			return Instruction{Kind: KindSrai, Rd: uint8(rd), Rs1: uint8(rs1), Imm: int32(shamt)}
		default:
			return Unsupported(word)
		}
	}

	kind, ok := immArithKinds[funct3]
	if !ok {
		return Unsupported(word)
	}
	return Instruction{Kind: kind, Rd: uint8(rd), Rs1: uint8(rs1), Imm: signExtend(imm12, 12)}
}

var loadKinds = map[uint32]Kind{
	0: KindLb, 1: KindLh, 2: KindLw, 4: KindLbu, 5: KindLhu,
}

func decodeLoad(word uint32) Instruction {
	rd, funct3, rs1, _, _ := fields(word)
	kind, ok := loadKinds[funct3]
	if !ok {
		return Unsupported(word)
	}
	imm12 := (word >> 20) & mask12Bit
	return Instruction{Kind: kind, Rd: uint8(rd), Rs1: uint8(rs1), Imm: signExtend(imm12, 12)}
}

func decodeJalr(word uint32) Instruction {
	rd, funct3, rs1, _, _ := fields(word)
	if funct3 != 0 {
		return Unsupported(word)
	}
	imm12 := (word >> 20) & mask12Bit
	return Instruction{Kind: KindJalr, Rd: uint8(rd), Rs1: uint8(rs1), Imm: signExtend(imm12, 12)}
}

var storeKinds = map[uint32]Kind{
	0: KindSb, 1: KindSh, 2: KindSw,
}

func decodeStore(word uint32) Instruction {
	_, funct3, rs1, rs2, funct7 := fields(word)
	kind, ok := storeKinds[funct3]
	if !ok {
		return Unsupported(word)
	}
	imm4_0 := (word >> shiftRd) & mask5Bit
	imm11_5 := funct7
	imm := (imm11_5 << 5) | imm4_0
	return Instruction{Kind: kind, Rs1: uint8(rs1), Rs2: uint8(rs2), Imm: signExtend(imm, 12)}
}

var branchKinds = map[uint32]Kind{
	0: KindBeq, 1: KindBne, 4: KindBlt, 5: KindBge, 6: KindBltu, 7: KindBgeu,
}

func decodeBranch(word uint32) Instruction {
	_, funct3, rs1, rs2, _ := fields(word)
	kind, ok := branchKinds[funct3]
	if !ok {
		return Unsupported(word)
	}

	imm11 := (word >> 7) & 0x1
	imm4_1 := (word >> 8) & 0xF
	imm10_5 := (word >> 25) & 0x3F
	imm12 := (word >> 31) & 0x1

	imm := (imm12 << 12) | (imm11 << 11) | (imm10_5 << 5) | (imm4_1 << 1)
	return Instruction{Kind: kind, Rs1: uint8(rs1), Rs2: uint8(rs2), Imm: signExtend(imm, 13)}
}

func decodeJal(word uint32) Instruction {
	rd := (word >> shiftRd) & mask5Bit

	imm19_12 := (word >> 12) & 0xFF
	imm11 := (word >> 20) & 0x1
	imm10_1 := (word >> 21) & 0x3FF
	imm20 := (word >> 31) & 0x1

	imm := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)
	return Instruction{Kind: KindJal, Rd: uint8(rd), Imm: signExtend(imm, 21)}
}

func decodeU(word uint32, kind Kind) Instruction {
	rd := (word >> shiftRd) & mask5Bit
	imm20 := (word >> 12) & 0xFFFFF
	return Instruction{Kind: kind, Rd: uint8(rd), Imm: int32(imm20)}
}

func decodeSystem(word uint32) Instruction {
	switch word {
	case 0x00000073:
		return Instruction{Kind: KindEcall}
	case 0x00100073:
		return Instruction{Kind: KindEbreak}
	default:
		return Unsupported(word)
	}
}
