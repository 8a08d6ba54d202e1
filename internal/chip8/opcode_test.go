package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeFields(t *testing.T) {
	tests := []struct {
		name  string
		op    Opcode
		class uint8
		x     uint8
		y     uint8
		n     uint8
		kk    uint8
		nnn   uint16
	}{
		{"draw", 0xD12F, 0xD, 0x1, 0x2, 0xF, 0x2F, 0x12F},
		{"zero", 0x0000, 0x0, 0x0, 0x0, 0x0, 0x00, 0x000},
		{"all bits", 0xFFFF, 0xF, 0xF, 0xF, 0xF, 0xFF, 0xFFF},
		{"call", 0x2ABC, 0x2, 0xA, 0xB, 0xC, 0xBC, 0xABC},
		{"alu", 0x8A74, 0x8, 0xA, 0x7, 0x4, 0x74, 0xA74},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, tt.op.Class())
			assert.Equal(t, tt.x, tt.op.X())
			assert.Equal(t, tt.y, tt.op.Y())
			assert.Equal(t, tt.n, tt.op.N())
			assert.Equal(t, tt.kk, tt.op.KK())
			assert.Equal(t, tt.nnn, tt.op.NNN())
		})
	}
}

func TestNewOpcode(t *testing.T) {
	assert.Equal(t, Opcode(0xA2F0), newOpcode(0xA2, 0xF0))
	assert.Equal(t, Opcode(0x00E0), newOpcode(0x00, 0xE0))
}
