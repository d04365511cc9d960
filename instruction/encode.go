package instruction

// Encode is the partial inverse of Decode: for every Instruction it either
// produces the exact word Decode would turn back into an equal Instruction,
// or returns an *EncodeError describing why it can't.
func (i Instruction) Encode() (uint32, error) {
	switch i.Kind {
	case KindUnsupported:
		// Decode is a pure function of the word, so re-emitting the
		// original word satisfies the round-trip law for any Unsupported
		// value Decode produced. A hand-built Unsupported(w) whose w is a
		// recognized word encodes to w, which decodes to that opcode.
		return i.Raw, nil

	case KindAdd, KindSub, KindSll, KindSlt, KindSltu, KindXor, KindSrl, KindSra, KindOr, KindAnd:
		return i.encodeRegBase()
	case KindMul, KindMulh, KindMulhsu, KindMulhu, KindDiv, KindDivu, KindRem, KindRemu:
		return i.encodeRegM()

	case KindAddi, KindSlti, KindSltiu, KindXori, KindOri, KindAndi:
		return i.encodeImmArith()
	case KindSlli, KindSrli, KindSrai:
		return i.encodeShiftImm()

	case KindLb, KindLh, KindLw, KindLbu, KindLhu:
		return i.encodeLoad()
	case KindJalr:
		return i.encodeJalr()

	case KindSb, KindSh, KindSw:
		return i.encodeStore()

	case KindBeq, KindBne, KindBlt, KindBge, KindBltu, KindBgeu:
		return i.encodeBranch()

	case KindJal:
		return i.encodeJal()

	case KindLui:
		return i.encodeU(opcodeLui)
	case KindAuipc:
		return i.encodeU(opcodeAuipc)

	case KindEcall:
		return 0x00000073, nil
	case KindEbreak:
		return 0x00100073, nil

	default:
		return 0, errNotImplemented(i.Kind)
	}
}

func checkReg(field string, v uint8) error {
	if v > 31 {
		return errRegister(field, v)
	}
	return nil
}

func (i Instruction) checkRegs() error {
	if err := checkReg("rd", i.Rd); err != nil {
		return err
	}
	if err := checkReg("rs1", i.Rs1); err != nil {
		return err
	}
	if err := checkReg("rs2", i.Rs2); err != nil {
		return err
	}
	return nil
}

var regBaseFuncts = map[Kind][2]uint32{
	KindAdd:  {0, funct7Base},
	KindSub:  {0, funct7Alt},
	KindSll:  {1, funct7Base},
	KindSlt:  {2, funct7Base},
	KindSltu: {3, funct7Base},
	KindXor:  {4, funct7Base},
	KindSrl:  {5, funct7Base},
	KindSra:  {5, funct7Alt},
	KindOr:   {6, funct7Base},
	KindAnd:  {7, funct7Base},
}

func (i Instruction) encodeRegBase() (uint32, error) {
	if err := i.checkRegs(); err != nil {
		return 0, err
	}
	fn := regBaseFuncts[i.Kind]
	return encodeR(opcodeReg, uint32(i.Rd), fn[0], uint32(i.Rs1), uint32(i.Rs2), fn[1]), nil
}

var regMFuncts = map[Kind]uint32{
	KindMul: 0, KindMulh: 1, KindMulhsu: 2, KindMulhu: 3,
	KindDiv: 4, KindDivu: 5, KindRem: 6, KindRemu: 7,
}

func (i Instruction) encodeRegM() (uint32, error) {
	if err := i.checkRegs(); err != nil {
		return 0, err
	}
	fn3 := regMFuncts[i.Kind]
	return encodeR(opcodeReg, uint32(i.Rd), fn3, uint32(i.Rs1), uint32(i.Rs2), funct7M), nil
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return opcode | (rd << shiftRd) | (funct3 << shiftFunct3) |
		(rs1 << shiftRs1) | (rs2 << shiftRs2) | (funct7 << shiftFunct7)
}

func checkImm12(field string, imm int32) error {
	if imm < -2048 || imm > 2047 {
		return errImmediate(field, imm)
	}
	return nil
}

var immArithFuncts = map[Kind]uint32{
	KindAddi: 0, KindSlti: 2, KindSltiu: 3, KindXori: 4, KindOri: 6, KindAndi: 7,
}

func (i Instruction) encodeImmArith() (uint32, error) {
	if err := checkReg("rd", i.Rd); err != nil {
		return 0, err
	}
	if err := checkReg("rs1", i.Rs1); err != nil {
		return 0, err
	}
	if err := checkImm12("imm", i.Imm); err != nil {
		return 0, err
	}
	funct3 := immArithFuncts[i.Kind]
	imm12 := uint32(i.Imm) & mask12Bit
	return opcodeImm | (uint32(i.Rd) << shiftRd) | (funct3 << shiftFunct3) |
		(uint32(i.Rs1) << shiftRs1) | (imm12 << 20), nil
}

func (i Instruction) encodeShiftImm() (uint32, error) {
	if err := checkReg("rd", i.Rd); err != nil {
		return 0, err
	}
	if err := checkReg("rs1", i.Rs1); err != nil {
		return 0, err
	}
	if i.Imm < 0 || i.Imm > 31 {
		return 0, errImmediate("shamt", i.Imm)
	}

	var funct3, upper7 uint32
	switch i.Kind {
	case KindSlli:
		funct3, upper7 = funct3Slli, funct7Base
	case KindSrli:
		funct3, upper7 = funct3Srli, funct7Base
	case KindSrai:
		funct3, upper7 = funct3Srli, funct7Alt
	}

	imm12 := (upper7 << 5) | uint32(i.Imm)
	return opcodeImm | (uint32(i.Rd) << shiftRd) | (funct3 << shiftFunct3) |
		(uint32(i.Rs1) << shiftRs1) | (imm12 << 20), nil
}

var loadFuncts = map[Kind]uint32{
	KindLb: 0, KindLh: 1, KindLw: 2, KindLbu: 4, KindLhu: 5,
}

func (i Instruction) encodeLoad() (uint32, error) {
	if err := checkReg("rd", i.Rd); err != nil {
		return 0, err
	}
	if err := checkReg("rs1", i.Rs1); err != nil {
		return 0, err
	}
	if err := checkImm12("imm", i.Imm); err != nil {
		return 0, err
	}
	funct3 := loadFuncts[i.Kind]
	imm12 := uint32(i.Imm) & mask12Bit
	return opcodeLoad | (uint32(i.Rd) << shiftRd) | (funct3 << shiftFunct3) |
		(uint32(i.Rs1) << shiftRs1) | (imm12 << 20), nil
}

func (i Instruction) encodeJalr() (uint32, error) {
	if err := checkReg("rd", i.Rd); err != nil {
		return 0, err
	}
	if err := checkReg("rs1", i.Rs1); err != nil {
		return 0, err
	}
	if err := checkImm12("imm", i.Imm); err != nil {
		return 0, err
	}
	imm12 := uint32(i.Imm) & mask12Bit
	return opcodeJalr | (uint32(i.Rd) << shiftRd) | (uint32(i.Rs1) << shiftRs1) | (imm12 << 20), nil
}

var storeFuncts = map[Kind]uint32{
	KindSb: 0, KindSh: 1, KindSw: 2,
}

func (i Instruction) encodeStore() (uint32, error) {
	if err := checkReg("rs1", i.Rs1); err != nil {
		return 0, err
	}
	if err := checkReg("rs2", i.Rs2); err != nil {
		return 0, err
	}
	if err := checkImm12("imm", i.Imm); err != nil {
		return 0, err
	}
	funct3 := storeFuncts[i.Kind]
	imm := uint32(i.Imm) & mask12Bit
	imm4_0 := imm & mask5Bit
	imm11_5 := imm >> 5
	return opcodeStore | (imm4_0 << shiftRd) | (funct3 << shiftFunct3) |
		(uint32(i.Rs1) << shiftRs1) | (uint32(i.Rs2) << shiftRs2) | (imm11_5 << shiftFunct7), nil
}

var branchFuncts = map[Kind]uint32{
	KindBeq: 0, KindBne: 1, KindBlt: 4, KindBge: 5, KindBltu: 6, KindBgeu: 7,
}

func (i Instruction) encodeBranch() (uint32, error) {
	if err := checkReg("rs1", i.Rs1); err != nil {
		return 0, err
	}
	if err := checkReg("rs2", i.Rs2); err != nil {
		return 0, err
	}
	if i.Imm < -4096 || i.Imm > 4094 {
		return 0, errImmediate("imm", i.Imm)
	}
	if i.Imm%2 != 0 {
		return 0, errImmediate("imm", i.Imm)
	}

	funct3 := branchFuncts[i.Kind]
	imm := uint32(i.Imm)
	imm11 := (imm >> 11) & 0x1
	imm4_1 := (imm >> 1) & 0xF
	imm10_5 := (imm >> 5) & 0x3F
	imm12 := (imm >> 12) & 0x1

	word := opcodeBranch | (imm11 << 7) | (imm4_1 << 8) | (funct3 << shiftFunct3) |
		(uint32(i.Rs1) << shiftRs1) | (uint32(i.Rs2) << shiftRs2) |
		(imm10_5 << 25) | (imm12 << 31)
	return word, nil
}

func (i Instruction) encodeJal() (uint32, error) {
	if err := checkReg("rd", i.Rd); err != nil {
		return 0, err
	}
	if i.Imm < -1048576 || i.Imm > 1048574 {
		return 0, errImmediate("imm", i.Imm)
	}
	if i.Imm%2 != 0 {
		return 0, errImmediate("imm", i.Imm)
	}

	imm := uint32(i.Imm)
	imm19_12 := (imm >> 12) & 0xFF
	imm11 := (imm >> 11) & 0x1
	imm10_1 := (imm >> 1) & 0x3FF
	imm20 := (imm >> 20) & 0x1

	word := opcodeJal | (uint32(i.Rd) << shiftRd) | (imm19_12 << 12) |
		(imm11 << 20) | (imm10_1 << 21) | (imm20 << 31)
	return word, nil
}

func (i Instruction) encodeU(opcode uint32) (uint32, error) {
	if err := checkReg("rd", i.Rd); err != nil {
		return 0, err
	}
	if i.Imm < 0 || i.Imm > 0xFFFFF {
		return 0, errImmediate("imm", i.Imm)
	}
	return opcode | (uint32(i.Rd) << shiftRd) | (uint32(i.Imm) << 12), nil
}
