package instruction

import "fmt"

// String renders the instruction in assembler syntax. Loads and stores use
// the `mnemonic rX, imm(rY)` convention; U-type immediates are hex;
// branches and JAL show the raw signed byte offset.
func (i Instruction) String() string {
	switch i.Kind {
	case KindUnsupported:
		return fmt.Sprintf("unsupported: 0x%08x", i.Raw)

	case KindAdd, KindSub, KindSll, KindSlt, KindSltu, KindXor, KindSrl, KindSra, KindOr, KindAnd,
		KindMul, KindMulh, KindMulhsu, KindMulhu, KindDiv, KindDivu, KindRem, KindRemu:
		return fmt.Sprintf("%s x%d, x%d, x%d", i.Kind, i.Rd, i.Rs1, i.Rs2)

	case KindAddi, KindSlti, KindSltiu, KindXori, KindOri, KindAndi:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Kind, i.Rd, i.Rs1, i.Imm)

	case KindSlli, KindSrli, KindSrai:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Kind, i.Rd, i.Rs1, i.Imm)

	case KindLb, KindLh, KindLw, KindLbu, KindLhu:
		return fmt.Sprintf("%s x%d, %d(x%d)", i.Kind, i.Rd, i.Imm, i.Rs1)

	case KindSb, KindSh, KindSw:
		return fmt.Sprintf("%s x%d, %d(x%d)", i.Kind, i.Rs2, i.Imm, i.Rs1)

	case KindBeq, KindBne, KindBlt, KindBge, KindBltu, KindBgeu:
		return fmt.Sprintf("%s x%d, x%d, %d", i.Kind, i.Rs1, i.Rs2, i.Imm)

	case KindJal:
		return fmt.Sprintf("jal x%d, %d", i.Rd, i.Imm)

	case KindJalr:
		return fmt.Sprintf("jalr x%d, %d(x%d)", i.Rd, i.Imm, i.Rs1)

	case KindLui, KindAuipc:
		return fmt.Sprintf("%s x%d, 0x%x", i.Kind, i.Rd, uint32(i.Imm))

	case KindEcall:
		return "ecall"
	case KindEbreak:
		return "ebreak"

	default:
		return fmt.Sprintf("unsupported: 0x%08x", i.Raw)
	}
}
