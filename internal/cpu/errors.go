package cpu

import "fmt"

// IllegalOpcode reports that the CPU fetched a byte with no defined
// instruction. There is no documented recovery: real NES hardware jams in
// an undefined state, so this emulator halts the CPU and surfaces the
// failure to its caller instead of guessing at behavior.
type IllegalOpcode struct {
	PC     uint16
	Opcode uint8
}

func (e *IllegalOpcode) Error() string {
	return fmt.Sprintf("illegal opcode $%02X at PC=$%04X", e.Opcode, e.PC)
}
