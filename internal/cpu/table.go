package cpu

// entry pairs one opcode's decode/timing metadata with the function that
// carries out its effect. initInstructions builds the 256-entry dispatch
// table from a flat list of these instead of a type-switch keyed on
// opcode bytes: one declaration per opcode is the single source of truth
// for both what it does and how long it takes.
type entry struct {
	opcode       uint8
	name         string
	bytes        uint8
	cycles       uint8
	mode         AddressingMode
	extraOnCross bool
	fn           opFunc
}

// initInstructions populates the instruction lookup table with every
// opcode this CPU understands: the documented 6502 instruction set plus
// the unofficial combined opcodes. Opcodes left out of this list fault as
// IllegalOpcode when fetched.
func (cpu *CPU) initInstructions() {
	for _, e := range instructionSet {
		cpu.instructions[e.opcode] = &Instruction{
			Name:         e.name,
			Opcode:       e.opcode,
			Bytes:        e.bytes,
			Cycles:       e.cycles,
			Mode:         e.mode,
			extraOnCross: e.extraOnCross,
			exec:         e.fn,
		}
	}
}

// instructionSet is the flat opcode table. extraOnCross marks the indexed
// read opcodes where indexing taking an extra cycle depends on whether a
// page boundary was actually crossed; stores and read-modify-write
// opcodes already carry their worst-case cost in cycles and never add
// more, so they're left false.
var instructionSet = []entry{
	// Load/Store
	{0xA9, "LDA", 2, 2, Immediate, false, opLDA},
	{0xA5, "LDA", 2, 3, ZeroPage, false, opLDA},
	{0xB5, "LDA", 2, 4, ZeroPageX, false, opLDA},
	{0xAD, "LDA", 3, 4, Absolute, false, opLDA},
	{0xBD, "LDA", 3, 4, AbsoluteX, true, opLDA},
	{0xB9, "LDA", 3, 4, AbsoluteY, true, opLDA},
	{0xA1, "LDA", 2, 6, IndexedIndirect, false, opLDA},
	{0xB1, "LDA", 2, 5, IndirectIndexed, true, opLDA},

	{0xA2, "LDX", 2, 2, Immediate, false, opLDX},
	{0xA6, "LDX", 2, 3, ZeroPage, false, opLDX},
	{0xB6, "LDX", 2, 4, ZeroPageY, false, opLDX},
	{0xAE, "LDX", 3, 4, Absolute, false, opLDX},
	{0xBE, "LDX", 3, 4, AbsoluteY, true, opLDX},

	{0xA0, "LDY", 2, 2, Immediate, false, opLDY},
	{0xA4, "LDY", 2, 3, ZeroPage, false, opLDY},
	{0xB4, "LDY", 2, 4, ZeroPageX, false, opLDY},
	{0xAC, "LDY", 3, 4, Absolute, false, opLDY},
	{0xBC, "LDY", 3, 4, AbsoluteX, true, opLDY},

	{0x85, "STA", 2, 3, ZeroPage, false, opSTA},
	{0x95, "STA", 2, 4, ZeroPageX, false, opSTA},
	{0x8D, "STA", 3, 4, Absolute, false, opSTA},
	{0x9D, "STA", 3, 5, AbsoluteX, false, opSTA},
	{0x99, "STA", 3, 5, AbsoluteY, false, opSTA},
	{0x81, "STA", 2, 6, IndexedIndirect, false, opSTA},
	{0x91, "STA", 2, 6, IndirectIndexed, false, opSTA},

	{0x86, "STX", 2, 3, ZeroPage, false, opSTX},
	{0x96, "STX", 2, 4, ZeroPageY, false, opSTX},
	{0x8E, "STX", 3, 4, Absolute, false, opSTX},

	{0x84, "STY", 2, 3, ZeroPage, false, opSTY},
	{0x94, "STY", 2, 4, ZeroPageX, false, opSTY},
	{0x8C, "STY", 3, 4, Absolute, false, opSTY},

	// Arithmetic
	{0x69, "ADC", 2, 2, Immediate, false, opADC},
	{0x65, "ADC", 2, 3, ZeroPage, false, opADC},
	{0x75, "ADC", 2, 4, ZeroPageX, false, opADC},
	{0x6D, "ADC", 3, 4, Absolute, false, opADC},
	{0x7D, "ADC", 3, 4, AbsoluteX, true, opADC},
	{0x79, "ADC", 3, 4, AbsoluteY, true, opADC},
	{0x61, "ADC", 2, 6, IndexedIndirect, false, opADC},
	{0x71, "ADC", 2, 5, IndirectIndexed, true, opADC},

	{0xE9, "SBC", 2, 2, Immediate, false, opSBC},
	{0xEB, "SBC", 2, 2, Immediate, false, opSBC}, // unofficial duplicate of 0xE9
	{0xE5, "SBC", 2, 3, ZeroPage, false, opSBC},
	{0xF5, "SBC", 2, 4, ZeroPageX, false, opSBC},
	{0xED, "SBC", 3, 4, Absolute, false, opSBC},
	{0xFD, "SBC", 3, 4, AbsoluteX, true, opSBC},
	{0xF9, "SBC", 3, 4, AbsoluteY, true, opSBC},
	{0xE1, "SBC", 2, 6, IndexedIndirect, false, opSBC},
	{0xF1, "SBC", 2, 5, IndirectIndexed, true, opSBC},

	// Logical
	{0x29, "AND", 2, 2, Immediate, false, opAND},
	{0x25, "AND", 2, 3, ZeroPage, false, opAND},
	{0x35, "AND", 2, 4, ZeroPageX, false, opAND},
	{0x2D, "AND", 3, 4, Absolute, false, opAND},
	{0x3D, "AND", 3, 4, AbsoluteX, true, opAND},
	{0x39, "AND", 3, 4, AbsoluteY, true, opAND},
	{0x21, "AND", 2, 6, IndexedIndirect, false, opAND},
	{0x31, "AND", 2, 5, IndirectIndexed, true, opAND},

	{0x09, "ORA", 2, 2, Immediate, false, opORA},
	{0x05, "ORA", 2, 3, ZeroPage, false, opORA},
	{0x15, "ORA", 2, 4, ZeroPageX, false, opORA},
	{0x0D, "ORA", 3, 4, Absolute, false, opORA},
	{0x1D, "ORA", 3, 4, AbsoluteX, true, opORA},
	{0x19, "ORA", 3, 4, AbsoluteY, true, opORA},
	{0x01, "ORA", 2, 6, IndexedIndirect, false, opORA},
	{0x11, "ORA", 2, 5, IndirectIndexed, true, opORA},

	{0x49, "EOR", 2, 2, Immediate, false, opEOR},
	{0x45, "EOR", 2, 3, ZeroPage, false, opEOR},
	{0x55, "EOR", 2, 4, ZeroPageX, false, opEOR},
	{0x4D, "EOR", 3, 4, Absolute, false, opEOR},
	{0x5D, "EOR", 3, 4, AbsoluteX, true, opEOR},
	{0x59, "EOR", 3, 4, AbsoluteY, true, opEOR},
	{0x41, "EOR", 2, 6, IndexedIndirect, false, opEOR},
	{0x51, "EOR", 2, 5, IndirectIndexed, true, opEOR},

	// Shift/rotate
	{0x0A, "ASL", 1, 2, Accumulator, false, opASLAcc},
	{0x06, "ASL", 2, 5, ZeroPage, false, opASL},
	{0x16, "ASL", 2, 6, ZeroPageX, false, opASL},
	{0x0E, "ASL", 3, 6, Absolute, false, opASL},
	{0x1E, "ASL", 3, 7, AbsoluteX, false, opASL},

	{0x4A, "LSR", 1, 2, Accumulator, false, opLSRAcc},
	{0x46, "LSR", 2, 5, ZeroPage, false, opLSR},
	{0x56, "LSR", 2, 6, ZeroPageX, false, opLSR},
	{0x4E, "LSR", 3, 6, Absolute, false, opLSR},
	{0x5E, "LSR", 3, 7, AbsoluteX, false, opLSR},

	{0x2A, "ROL", 1, 2, Accumulator, false, opROLAcc},
	{0x26, "ROL", 2, 5, ZeroPage, false, opROL},
	{0x36, "ROL", 2, 6, ZeroPageX, false, opROL},
	{0x2E, "ROL", 3, 6, Absolute, false, opROL},
	{0x3E, "ROL", 3, 7, AbsoluteX, false, opROL},

	{0x6A, "ROR", 1, 2, Accumulator, false, opRORAcc},
	{0x66, "ROR", 2, 5, ZeroPage, false, opROR},
	{0x76, "ROR", 2, 6, ZeroPageX, false, opROR},
	{0x6E, "ROR", 3, 6, Absolute, false, opROR},
	{0x7E, "ROR", 3, 7, AbsoluteX, false, opROR},

	// Comparison
	{0xC9, "CMP", 2, 2, Immediate, false, opCMP},
	{0xC5, "CMP", 2, 3, ZeroPage, false, opCMP},
	{0xD5, "CMP", 2, 4, ZeroPageX, false, opCMP},
	{0xCD, "CMP", 3, 4, Absolute, false, opCMP},
	{0xDD, "CMP", 3, 4, AbsoluteX, true, opCMP},
	{0xD9, "CMP", 3, 4, AbsoluteY, true, opCMP},
	{0xC1, "CMP", 2, 6, IndexedIndirect, false, opCMP},
	{0xD1, "CMP", 2, 5, IndirectIndexed, true, opCMP},

	{0xE0, "CPX", 2, 2, Immediate, false, opCPX},
	{0xE4, "CPX", 2, 3, ZeroPage, false, opCPX},
	{0xEC, "CPX", 3, 4, Absolute, false, opCPX},

	{0xC0, "CPY", 2, 2, Immediate, false, opCPY},
	{0xC4, "CPY", 2, 3, ZeroPage, false, opCPY},
	{0xCC, "CPY", 3, 4, Absolute, false, opCPY},

	// Increment/decrement
	{0xE6, "INC", 2, 5, ZeroPage, false, opINC},
	{0xF6, "INC", 2, 6, ZeroPageX, false, opINC},
	{0xEE, "INC", 3, 6, Absolute, false, opINC},
	{0xFE, "INC", 3, 7, AbsoluteX, false, opINC},

	{0xC6, "DEC", 2, 5, ZeroPage, false, opDEC},
	{0xD6, "DEC", 2, 6, ZeroPageX, false, opDEC},
	{0xCE, "DEC", 3, 6, Absolute, false, opDEC},
	{0xDE, "DEC", 3, 7, AbsoluteX, false, opDEC},

	{0xE8, "INX", 1, 2, Implied, false, opINX},
	{0xCA, "DEX", 1, 2, Implied, false, opDEX},
	{0xC8, "INY", 1, 2, Implied, false, opINY},
	{0x88, "DEY", 1, 2, Implied, false, opDEY},

	// Transfer
	{0xAA, "TAX", 1, 2, Implied, false, opTAX},
	{0x8A, "TXA", 1, 2, Implied, false, opTXA},
	{0xA8, "TAY", 1, 2, Implied, false, opTAY},
	{0x98, "TYA", 1, 2, Implied, false, opTYA},
	{0xBA, "TSX", 1, 2, Implied, false, opTSX},
	{0x9A, "TXS", 1, 2, Implied, false, opTXS},

	// Stack
	{0x48, "PHA", 1, 3, Implied, false, opPHA},
	{0x68, "PLA", 1, 4, Implied, false, opPLA},
	{0x08, "PHP", 1, 3, Implied, false, opPHP},
	{0x28, "PLP", 1, 4, Implied, false, opPLP},

	// Flags
	{0x18, "CLC", 1, 2, Implied, false, opCLC},
	{0x38, "SEC", 1, 2, Implied, false, opSEC},
	{0x58, "CLI", 1, 2, Implied, false, opCLI},
	{0x78, "SEI", 1, 2, Implied, false, opSEI},
	{0xB8, "CLV", 1, 2, Implied, false, opCLV},
	{0xD8, "CLD", 1, 2, Implied, false, opCLD},
	{0xF8, "SED", 1, 2, Implied, false, opSED},

	// Control flow
	{0x4C, "JMP", 3, 3, Absolute, false, opJMP},
	{0x6C, "JMP", 3, 5, Indirect, false, opJMP},
	{0x20, "JSR", 3, 6, Absolute, false, opJSR},
	{0x60, "RTS", 1, 6, Implied, false, opRTS},
	{0x40, "RTI", 1, 6, Implied, false, opRTI},

	// Branches
	{0x90, "BCC", 2, 2, Relative, false, opBCC},
	{0xB0, "BCS", 2, 2, Relative, false, opBCS},
	{0xD0, "BNE", 2, 2, Relative, false, opBNE},
	{0xF0, "BEQ", 2, 2, Relative, false, opBEQ},
	{0x10, "BPL", 2, 2, Relative, false, opBPL},
	{0x30, "BMI", 2, 2, Relative, false, opBMI},
	{0x50, "BVC", 2, 2, Relative, false, opBVC},
	{0x70, "BVS", 2, 2, Relative, false, opBVS},

	// Miscellaneous
	{0x24, "BIT", 2, 3, ZeroPage, false, opBIT},
	{0x2C, "BIT", 3, 4, Absolute, false, opBIT},
	{0xEA, "NOP", 1, 2, Implied, false, opNOP},
	{0x00, "BRK", 1, 7, Implied, false, opBRK},

	// Unofficial NOPs
	{0x1A, "NOP", 1, 2, Implied, false, opNOP},
	{0x3A, "NOP", 1, 2, Implied, false, opNOP},
	{0x5A, "NOP", 1, 2, Implied, false, opNOP},
	{0x7A, "NOP", 1, 2, Implied, false, opNOP},
	{0xDA, "NOP", 1, 2, Implied, false, opNOP},
	{0xFA, "NOP", 1, 2, Implied, false, opNOP},
	{0x80, "NOP", 2, 2, Immediate, false, opNOP},
	{0x82, "NOP", 2, 2, Immediate, false, opNOP},
	{0x89, "NOP", 2, 2, Immediate, false, opNOP},
	{0xC2, "NOP", 2, 2, Immediate, false, opNOP},
	{0xE2, "NOP", 2, 2, Immediate, false, opNOP},
	{0x04, "NOP", 2, 3, ZeroPage, false, opNOP},
	{0x44, "NOP", 2, 3, ZeroPage, false, opNOP},
	{0x64, "NOP", 2, 3, ZeroPage, false, opNOP},
	{0x14, "NOP", 2, 4, ZeroPageX, false, opNOP},
	{0x34, "NOP", 2, 4, ZeroPageX, false, opNOP},
	{0x54, "NOP", 2, 4, ZeroPageX, false, opNOP},
	{0x74, "NOP", 2, 4, ZeroPageX, false, opNOP},
	{0xD4, "NOP", 2, 4, ZeroPageX, false, opNOP},
	{0xF4, "NOP", 2, 4, ZeroPageX, false, opNOP},
	{0x0C, "NOP", 3, 4, Absolute, false, opNOP},
	{0x1C, "NOP", 3, 4, AbsoluteX, true, opNOP},
	{0x3C, "NOP", 3, 4, AbsoluteX, true, opNOP},
	{0x5C, "NOP", 3, 4, AbsoluteX, true, opNOP},
	{0x7C, "NOP", 3, 4, AbsoluteX, true, opNOP},
	{0xDC, "NOP", 3, 4, AbsoluteX, true, opNOP},
	{0xFC, "NOP", 3, 4, AbsoluteX, true, opNOP},

	// Unofficial combined opcodes. LAX is load-only so, like LDA/LDX, its
	// indexed forms take the variable page-cross cycle; the rest are
	// read-modify-write and already carry their fixed worst-case cost.
	{0xA7, "LAX", 2, 3, ZeroPage, false, opLAX},
	{0xB7, "LAX", 2, 4, ZeroPageY, false, opLAX},
	{0xAF, "LAX", 3, 4, Absolute, false, opLAX},
	{0xBF, "LAX", 3, 4, AbsoluteY, true, opLAX},
	{0xA3, "LAX", 2, 6, IndexedIndirect, false, opLAX},
	{0xB3, "LAX", 2, 5, IndirectIndexed, true, opLAX},

	{0x87, "SAX", 2, 3, ZeroPage, false, opSAX},
	{0x97, "SAX", 2, 4, ZeroPageY, false, opSAX},
	{0x8F, "SAX", 3, 4, Absolute, false, opSAX},
	{0x83, "SAX", 2, 6, IndexedIndirect, false, opSAX},

	{0xC7, "DCP", 2, 5, ZeroPage, false, opDCP},
	{0xD7, "DCP", 2, 6, ZeroPageX, false, opDCP},
	{0xCF, "DCP", 3, 6, Absolute, false, opDCP},
	{0xDF, "DCP", 3, 7, AbsoluteX, false, opDCP},
	{0xDB, "DCP", 3, 7, AbsoluteY, false, opDCP},
	{0xC3, "DCP", 2, 8, IndexedIndirect, false, opDCP},
	{0xD3, "DCP", 2, 8, IndirectIndexed, false, opDCP},

	{0xE7, "ISB", 2, 5, ZeroPage, false, opISB},
	{0xF7, "ISB", 2, 6, ZeroPageX, false, opISB},
	{0xEF, "ISB", 3, 6, Absolute, false, opISB},
	{0xFF, "ISB", 3, 7, AbsoluteX, false, opISB},
	{0xFB, "ISB", 3, 7, AbsoluteY, false, opISB},
	{0xE3, "ISB", 2, 8, IndexedIndirect, false, opISB},
	{0xF3, "ISB", 2, 8, IndirectIndexed, false, opISB},

	{0x07, "SLO", 2, 5, ZeroPage, false, opSLO},
	{0x17, "SLO", 2, 6, ZeroPageX, false, opSLO},
	{0x0F, "SLO", 3, 6, Absolute, false, opSLO},
	{0x1F, "SLO", 3, 7, AbsoluteX, false, opSLO},
	{0x1B, "SLO", 3, 7, AbsoluteY, false, opSLO},
	{0x03, "SLO", 2, 8, IndexedIndirect, false, opSLO},
	{0x13, "SLO", 2, 8, IndirectIndexed, false, opSLO},

	{0x27, "RLA", 2, 5, ZeroPage, false, opRLA},
	{0x37, "RLA", 2, 6, ZeroPageX, false, opRLA},
	{0x2F, "RLA", 3, 6, Absolute, false, opRLA},
	{0x3F, "RLA", 3, 7, AbsoluteX, false, opRLA},
	{0x3B, "RLA", 3, 7, AbsoluteY, false, opRLA},
	{0x23, "RLA", 2, 8, IndexedIndirect, false, opRLA},
	{0x33, "RLA", 2, 8, IndirectIndexed, false, opRLA},

	{0x47, "SRE", 2, 5, ZeroPage, false, opSRE},
	{0x57, "SRE", 2, 6, ZeroPageX, false, opSRE},
	{0x4F, "SRE", 3, 6, Absolute, false, opSRE},
	{0x5F, "SRE", 3, 7, AbsoluteX, false, opSRE},
	{0x5B, "SRE", 3, 7, AbsoluteY, false, opSRE},
	{0x43, "SRE", 2, 8, IndexedIndirect, false, opSRE},
	{0x53, "SRE", 2, 8, IndirectIndexed, false, opSRE},

	{0x67, "RRA", 2, 5, ZeroPage, false, opRRA},
	{0x77, "RRA", 2, 6, ZeroPageX, false, opRRA},
	{0x6F, "RRA", 3, 6, Absolute, false, opRRA},
	{0x7F, "RRA", 3, 7, AbsoluteX, false, opRRA},
	{0x7B, "RRA", 3, 7, AbsoluteY, false, opRRA},
	{0x63, "RRA", 2, 8, IndexedIndirect, false, opRRA},
	{0x73, "RRA", 2, 8, IndirectIndexed, false, opRRA},
}
