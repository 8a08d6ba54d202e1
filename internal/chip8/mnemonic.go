package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// String returns the assembly notation of the instruction, words that are not
// part of the instruction set are returned as a data word.
func (o Opcode) String() string {
	x, y := o.X(), o.Y()

	switch o.Class() {
	case 0x0:
		switch o.KK() {
		case 0xE0:
			return chip8cpu.ClsName
		case 0xEE:
			return chip8cpu.RetName
		}
	case 0x1:
		return fmt.Sprintf("%s $%03X", chip8cpu.JpName, o.NNN())
	case 0x2:
		return fmt.Sprintf("%s $%03X", chip8cpu.CallName, o.NNN())
	case 0x3:
		return fmt.Sprintf("%s V%X, $%02X", chip8cpu.SeName, x, o.KK())
	case 0x4:
		return fmt.Sprintf("%s V%X, $%02X", chip8cpu.SneName, x, o.KK())
	case 0x5:
		if o.N() == 0 {
			return fmt.Sprintf("%s V%X, V%X", chip8cpu.SeName, x, y)
		}
	case 0x6:
		return fmt.Sprintf("%s V%X, $%02X", chip8cpu.LdName, x, o.KK())
	case 0x7:
		return fmt.Sprintf("%s V%X, $%02X", chip8cpu.AddName, x, o.KK())
	case 0x8:
		if name, ok := aluMnemonics[o.N()]; ok {
			if o.N() == 0x6 || o.N() == 0xE {
				return fmt.Sprintf("%s V%X", name, x)
			}
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		if o.N() == 0 {
			return fmt.Sprintf("%s V%X, V%X", chip8cpu.SneName, x, y)
		}
	case 0xA:
		return fmt.Sprintf("%s I, $%03X", chip8cpu.LdName, o.NNN())
	case 0xB:
		return fmt.Sprintf("%s V0, $%03X", chip8cpu.JpName, o.NNN())
	case 0xC:
		return fmt.Sprintf("%s V%X, $%02X", chip8cpu.RndName, x, o.KK())
	case 0xD:
		return fmt.Sprintf("%s V%X, V%X, $%X", chip8cpu.DrwName, x, y, o.N())
	case 0xE:
		switch o.KK() {
		case 0x9E:
			return fmt.Sprintf("%s V%X", chip8cpu.SkpName, x)
		case 0xA1:
			return fmt.Sprintf("%s V%X", chip8cpu.SknpName, x)
		}
	case 0xF:
		if format, ok := miscFormats[o.KK()]; ok {
			return fmt.Sprintf(format, x)
		}
	}

	return fmt.Sprintf(".word $%04X", uint16(o))
}

var aluMnemonics = map[uint8]string{
	0x0: chip8cpu.LdName,
	0x1: chip8cpu.OrName,
	0x2: chip8cpu.AndName,
	0x3: chip8cpu.XorName,
	0x4: chip8cpu.AddName,
	0x5: chip8cpu.SubName,
	0x6: chip8cpu.ShrName,
	0x7: chip8cpu.SubnName,
	0xE: chip8cpu.ShlName,
}

// operand formats of the Fx instructions, the register index is the only verb
var miscFormats = map[uint8]string{
	0x07: chip8cpu.LdName + " V%X, DT",
	0x0A: chip8cpu.LdName + " V%X, K",
	0x15: chip8cpu.LdName + " DT, V%X",
	0x18: chip8cpu.LdName + " ST, V%X",
	0x1E: chip8cpu.AddName + " I, V%X",
	0x29: chip8cpu.LdName + " F, V%X",
	0x33: chip8cpu.LdName + " B, V%X",
	0x55: chip8cpu.LdName + " [I], V%X",
	0x65: chip8cpu.LdName + " V%X, [I]",
}
