// decode.go - instruction word decoder

/*
decode.go extracts every positional field from a 32-bit instruction word.
The word is big-endian within itself: opcode occupies the top 6 bits,
and every other field is read off a handful of fixed bit positions that
are shared across instruction classes (the same bit range is "dst" for
an ALU op, "reg" for a PC-relative load, "tvr" for TRAP, and so on). The
decoder does not need to know the instruction's class ahead of time: it
speculatively fills every scratch field every cycle, and DECODE picks
which of them the opcode's handler actually consumes.
*/

package zcpu

// bitField extracts bits [lo, hi] (inclusive, 0 = LSB) of word as an
// unsigned value.
func bitField(word uint32, hi, lo uint) uint32 {
	width := hi - lo + 1
	mask := uint32(1)<<width - 1
	return (word >> lo) & mask
}

// signExtend sign-extends the low `width` bits of value to a full 32-bit
// signed value, returned as its uint32 bit pattern.
func signExtend(value uint32, width uint) uint32 {
	shift := 32 - width
	return uint32(int32(value<<shift) >> shift)
}

// DecodedInstruction holds every field a 32-bit zcpu instruction word
// might carry, filled speculatively regardless of opcode class.
type DecodedInstruction struct {
	Raw    uint32
	Opcode uint8

	Dst       uint8 // bits 25-21: dst / reg / tvr / branch-N depending on class
	Src1      uint8 // bits 20-16: src1 / base register
	Src2      uint8 // bits 15-11: src2 (ALU register form only)
	Immediate bool  // bit 0, ALU forms only

	ImmALU   uint32 // sign-extended 15-bit ALU immediate
	Offset16 uint32 // sign-extended 16-bit base+offset / JUMPR offset
	Offset21 uint32 // sign-extended 21-bit PC-relative load/store offset
	Offset23 uint32 // sign-extended 23-bit branch offset
	Offset26 uint32 // sign-extended 26-bit JUMP offset

	BranchN, BranchZ, BranchP bool // branch condition mask bits
	TrapReg                   uint8
}

// Decode extracts every field of word into a DecodedInstruction.
func Decode(word uint32) DecodedInstruction {
	d := DecodedInstruction{
		Raw:    word,
		Opcode: uint8(bitField(word, 31, 26)),
		Dst:    uint8(bitField(word, 25, 21)),
		Src1:   uint8(bitField(word, 20, 16)),
		Src2:   uint8(bitField(word, 15, 11)),
	}
	d.Immediate = word&1 == 1
	d.ImmALU = signExtend(bitField(word, 15, 1), 15)
	d.Offset16 = signExtend(bitField(word, 15, 0), 16)
	d.Offset21 = signExtend(bitField(word, 20, 0), 21)
	d.Offset23 = signExtend(bitField(word, 22, 0), 23)
	d.Offset26 = signExtend(bitField(word, 25, 0), 26)

	d.BranchN = bitField(word, 25, 25) != 0
	d.BranchZ = bitField(word, 24, 24) != 0
	d.BranchP = bitField(word, 23, 23) != 0
	d.TrapReg = d.Dst

	return d
}
