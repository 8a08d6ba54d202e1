package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// machineState is a comparable snapshot of all state a step may modify.
type machineState struct {
	pc         uint16
	i          uint16
	v          [RegisterCount]byte
	stackDepth int
	delayTimer byte
	soundTimer byte
	memory     []byte
	frame      []byte
}

func snapshot(t *testing.T, m *Machine) machineState {
	t.Helper()
	memory, err := m.ReadMemory(0, MemorySize)
	assert.NoError(t, err)
	return machineState{
		pc:         m.PC(),
		i:          m.Index(),
		v:          m.Registers(),
		stackDepth: m.StackDepth(),
		delayTimer: m.DelayTimer(),
		soundTimer: m.SoundTimer(),
		memory:     memory,
		frame:      m.Frame(),
	}
}

func assertUnchanged(t *testing.T, before, after machineState) {
	t.Helper()
	assert.Equal(t, before.pc, after.pc)
	assert.Equal(t, before.i, after.i)
	assert.Equal(t, before.v, after.v)
	assert.Equal(t, before.stackDepth, after.stackDepth)
	assert.Equal(t, before.delayTimer, after.delayTimer)
	assert.Equal(t, before.soundTimer, after.soundTimer)
	assert.Equal(t, before.memory, after.memory)
	assert.Equal(t, before.frame, after.frame)
}

func TestJump(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
		want uint16
	}{
		{"forward", 0x1300, 0x300},
		{"self", 0x1200, 0x200},
		{"last word", 0x1FFE, 0xFFE},
		{"zero", 0x1000, 0x000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.op)
			stepN(t, m, 1)
			assert.Equal(t, tt.want, m.PC())
		})
	}
}

func TestCallReturn(t *testing.T) {
	m := newTestMachine(t, 0x2300) // call 0x300
	loadAt(t, m, 0x300, 0x00EE)    // ret

	stepN(t, m, 1)
	assert.Equal(t, uint16(0x300), m.PC())
	assert.Equal(t, 1, m.StackDepth())

	stepN(t, m, 1)
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, 0, m.StackDepth())
}

func TestStackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x2200) // call 0x200, recursing forever

	stepN(t, m, StackDepth)
	assert.Equal(t, StackDepth, m.StackDepth())

	before := snapshot(t, m)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))

	var stepErr *StepError
	assert.True(t, errors.As(err, &stepErr))
	assert.Equal(t, uint16(0x200), stepErr.Address)
	assert.Equal(t, Opcode(0x2200), stepErr.Opcode)
	assertUnchanged(t, before, snapshot(t, m))
}

func TestStackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00EE)

	before := snapshot(t, m)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assertUnchanged(t, before, snapshot(t, m))
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
		vx   byte
		vy   byte
		want uint16
	}{
		{"se byte equal", 0x3142, 0x42, 0, 0x204},
		{"se byte different", 0x3142, 0x41, 0, 0x202},
		{"sne byte equal", 0x4142, 0x42, 0, 0x202},
		{"sne byte different", 0x4142, 0x41, 0, 0x204},
		{"se reg equal", 0x5120, 7, 7, 0x204},
		{"se reg different", 0x5120, 7, 8, 0x202},
		{"sne reg equal", 0x9120, 7, 7, 0x202},
		{"sne reg different", 0x9120, 7, 8, 0x204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.op)
			m.v[1] = tt.vx
			m.v[2] = tt.vy
			stepN(t, m, 1)
			assert.Equal(t, tt.want, m.PC())
		})
	}
}

func TestLoadAndAddImmediate(t *testing.T) {
	m := newTestMachine(t,
		0x65F0, // ld V5, 0xF0
		0x7520, // add V5, 0x20
	)
	m.v[flagRegister] = 0xAA

	stepN(t, m, 1)
	assert.Equal(t, byte(0xF0), m.Register(5))
	stepN(t, m, 1)
	assert.Equal(t, byte(0x10), m.Register(5))
	assert.Equal(t, byte(0xAA), m.Register(flagRegister), "7xkk must not touch VF")
}

func TestLogicOperations(t *testing.T) {
	tests := []struct {
		name string
		op   uint16
		want byte
	}{
		{"ld", 0x8120, 0x3C},
		{"or", 0x8121, 0xFC},
		{"and", 0x8122, 0x0C},
		{"xor", 0x8123, 0xF0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.op)
			m.v[1] = 0xCC
			m.v[2] = 0x3C
			stepN(t, m, 1)
			assert.Equal(t, tt.want, m.Register(1))
			assert.Equal(t, byte(0x3C), m.Register(2))
		})
	}
}

func TestAddAllValues(t *testing.T) {
	m := newTestMachine(t, 0x8014) // add V0, V1

	for a := range 256 {
		for b := range 256 {
			m.pc = ProgramStart
			m.v[0] = byte(a)
			m.v[1] = byte(b)
			stepN(t, m, 1)

			sum := a + b
			if m.v[0] != byte(sum) || m.v[flagRegister] != boolToFlag(sum > 0xFF) {
				t.Fatalf("add %d + %d: got V0=%d VF=%d", a, b, m.v[0], m.v[flagRegister])
			}
		}
	}
}

func TestSubAllValues(t *testing.T) {
	m := newTestMachine(t,
		0x8015, // sub V0, V1
		0x8237, // subn V2, V3
	)

	for a := range 256 {
		for b := range 256 {
			m.pc = ProgramStart
			m.v[0], m.v[1] = byte(a), byte(b)
			m.v[2], m.v[3] = byte(a), byte(b)

			stepN(t, m, 1)
			wantResult, wantFlag := 0, byte(0)
			if a > b {
				wantResult, wantFlag = a-b, 1
			}
			if m.v[0] != byte(wantResult) || m.v[flagRegister] != wantFlag {
				t.Fatalf("sub %d - %d: got V0=%d VF=%d", a, b, m.v[0], m.v[flagRegister])
			}

			stepN(t, m, 1)
			wantResult, wantFlag = 0, 0
			if b > a {
				wantResult, wantFlag = b-a, 1
			}
			if m.v[2] != byte(wantResult) || m.v[flagRegister] != wantFlag {
				t.Fatalf("subn %d - %d: got V2=%d VF=%d", b, a, m.v[2], m.v[flagRegister])
			}
		}
	}
}

func TestFlagRegisterAsOperand(t *testing.T) {
	// the flag is written first, the result wins when x is F
	m := newTestMachine(t, 0x8F14) // add VF, V1
	m.v[flagRegister] = 0xFF
	m.v[1] = 0x02
	stepN(t, m, 1)
	assert.Equal(t, byte(0x01), m.Register(flagRegister))
}

func TestShifts(t *testing.T) {
	tests := []struct {
		name     string
		quirks   Quirks
		op       uint16
		vx       byte
		want     byte
		wantFlag byte
	}{
		{"shr odd", ModernQuirks, 0x8106, 0x81, 0x40, 1},
		{"shr even", ModernQuirks, 0x8106, 0x80, 0x40, 0},
		{"shl high bit", ModernQuirks, 0x810E, 0x81, 0x02, 1},
		{"shl no high bit", ModernQuirks, 0x810E, 0x41, 0x82, 0},
		{"shl raw flag", ReferenceQuirks, 0x810E, 0x81, 0x02, 0x80},
		{"shr reference", ReferenceQuirks, 0x8106, 0x03, 0x01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(WithRandom(&mockRandom{}), WithQuirks(tt.quirks))
			loadWords(t, m, tt.op)
			m.v[1] = tt.vx
			stepN(t, m, 1)
			assert.Equal(t, tt.want, m.Register(1))
			assert.Equal(t, tt.wantFlag, m.Register(flagRegister))
		})
	}
}

func TestLoadIndex(t *testing.T) {
	m := newTestMachine(t, 0xA123)
	stepN(t, m, 1)
	assert.Equal(t, uint16(0x123), m.Index())
	assert.Equal(t, uint16(0x202), m.PC())

	m = New(WithRandom(&mockRandom{}), WithQuirks(ReferenceQuirks))
	loadWords(t, m, 0xA123)
	stepN(t, m, 1)
	assert.Equal(t, uint16(0x123), m.Index())
	assert.Equal(t, uint16(0x204), m.PC())
}

func TestJumpOffset(t *testing.T) {
	m := newTestMachine(t, 0xB300)
	m.v[0] = 0x10
	stepN(t, m, 1)
	assert.Equal(t, uint16(0x310), m.PC())

	// targets past the end of memory are not truncated and fault on fetch
	m = newTestMachine(t, 0xBFFF)
	m.v[0] = 0x02
	stepN(t, m, 1)
	assert.Equal(t, uint16(0x1001), m.PC())
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestRandom(t *testing.T) {
	random := &mockRandom{values: []byte{0xAB, 0xFF}}
	m := New(WithRandom(random))
	loadWords(t, m,
		0xC10F, // rnd V1, 0x0F
		0xC2FF, // rnd V2, 0xFF
	)

	stepN(t, m, 2)
	assert.Equal(t, byte(0x0B), m.Register(1))
	assert.Equal(t, byte(0xFF), m.Register(2))
	assert.Equal(t, 2, random.calls)
}

func TestDrawGlyph(t *testing.T) {
	m := newTestMachine(t,
		0xF029, // ld F, V0
		0xD015, // drw V0, V1, 5
	)
	m.v[0] = 0

	res := stepN(t, m, 2)
	assert.True(t, res.Redraw)
	assert.Equal(t, byte(0), m.Register(flagRegister))

	glyph := Glyph(0)
	for row := range GlyphSize {
		for col := range 8 {
			want := (glyph[row] >> (7 - col)) & 1
			pixel, err := m.Pixel(row*DisplayWidth + col)
			assert.NoError(t, err)
			assert.Equal(t, want, pixel)
		}
	}
}

func TestDrawCollision(t *testing.T) {
	m := newTestMachine(t,
		0xA300, // ld I, 0x300
		0xD011, // drw V0, V1, 1
		0xD011, // drw V0, V1, 1
	)
	loadAt(t, m, 0x300, 0x8000) // single pixel sprite
	m.v[0] = 10
	m.v[1] = 3

	stepN(t, m, 2)
	pixel, err := m.Pixel(3*DisplayWidth + 10)
	assert.NoError(t, err)
	assert.Equal(t, byte(1), pixel)
	assert.Equal(t, byte(0), m.Register(flagRegister))

	stepN(t, m, 1)
	pixel, err = m.Pixel(3*DisplayWidth + 10)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), pixel)
	assert.Equal(t, byte(1), m.Register(flagRegister))
}

func TestDrawZeroBitsDoNotCollide(t *testing.T) {
	m := newTestMachine(t,
		0xA300, // ld I, 0x300
		0xD011, // drw V0, V1, 1
	)
	loadAt(t, m, 0x300, 0x0000)
	assert.NoError(t, m.display.Set(0, 1))

	stepN(t, m, 2)
	assert.Equal(t, byte(0), m.Register(flagRegister))
	pixel, err := m.Pixel(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(1), pixel)
}

func TestDrawWrapsHorizontally(t *testing.T) {
	m := newTestMachine(t,
		0xA300, // ld I, 0x300
		0xD011, // drw V0, V1, 1
	)
	loadAt(t, m, 0x300, 0xFF00)
	m.v[0] = 62
	m.v[1] = 1

	stepN(t, m, 2)
	for col := range DisplayWidth {
		want := byte(0)
		if col >= 62 || col < 6 {
			want = 1
		}
		pixel, err := m.Pixel(DisplayWidth + col)
		assert.NoError(t, err)
		assert.Equal(t, want, pixel)
	}
}

func TestDrawClipsVertically(t *testing.T) {
	m := newTestMachine(t,
		0xA300, // ld I, 0x300
		0xD014, // drw V0, V1, 4
	)
	loadAt(t, m, 0x300, 0x8080, 0x8080)
	m.v[0] = 0
	m.v[1] = 30

	stepN(t, m, 2)
	for row := range DisplayHeight {
		want := byte(0)
		if row >= 30 {
			want = 1
		}
		pixel, err := m.Pixel(row * DisplayWidth)
		assert.NoError(t, err)
		assert.Equal(t, want, pixel)
	}
}

func TestDrawPastMemoryFaults(t *testing.T) {
	m := newTestMachine(t, 0xD01F) // drw V0, V1, 15
	m.i = MemorySize - 4
	m.v[flagRegister] = 0x55

	before := snapshot(t, m)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	assertUnchanged(t, before, snapshot(t, m))
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, 0x00E0)
	assert.NoError(t, m.display.Set(100, 1))

	res := stepN(t, m, 1)
	assert.True(t, res.Redraw)
	pixel, err := m.Pixel(100)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), pixel)
}

func TestKeySkips(t *testing.T) {
	tests := []struct {
		name    string
		op      uint16
		vx      byte
		pressed bool
		want    uint16
	}{
		{"skp pressed", 0xE19E, 0x5, true, 0x204},
		{"skp released", 0xE19E, 0x5, false, 0x202},
		{"sknp pressed", 0xE1A1, 0x5, true, 0x202},
		{"sknp released", 0xE1A1, 0x5, false, 0x204},
		{"skp high nibble ignored", 0xE19E, 0xF5, true, 0x204},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.op)
			m.v[1] = tt.vx
			assert.NoError(t, m.SetKey(5, tt.pressed))
			stepN(t, m, 1)
			assert.Equal(t, tt.want, m.PC())
		})
	}
}

func TestWaitKey(t *testing.T) {
	m := newTestMachine(t, 0xF30A) // ld V3, K
	m.delayTimer = 10

	for range 3 {
		res := stepN(t, m, 1)
		assert.True(t, res.Waiting)
		assert.Equal(t, uint16(ProgramStart), m.PC())
	}
	assert.Equal(t, byte(7), m.DelayTimer(), "timers keep running while waiting")

	assert.NoError(t, m.SetKey(0xC, true))
	assert.NoError(t, m.SetKey(0x9, true))
	res := stepN(t, m, 1)
	assert.False(t, res.Waiting)
	assert.Equal(t, byte(0x9), m.Register(3))
	assert.Equal(t, uint16(0x202), m.PC())
}

func TestTimerInstructions(t *testing.T) {
	m := newTestMachine(t,
		0x6120, // ld V1, 0x20
		0xF115, // ld DT, V1
		0xF118, // ld ST, V1
		0xF207, // ld V2, DT
	)

	stepN(t, m, 2)
	assert.Equal(t, byte(0x1F), m.DelayTimer())

	res := stepN(t, m, 1)
	assert.True(t, res.Tone)
	assert.Equal(t, byte(0x1F), m.SoundTimer())
	assert.True(t, m.SoundActive())

	stepN(t, m, 1)
	assert.Equal(t, byte(0x1E), m.Register(2))
	assert.Equal(t, byte(0x1D), m.DelayTimer())
}

func TestAddIndex(t *testing.T) {
	m := newTestMachine(t, 0xF11E) // add I, V1
	m.i = 0xFFF
	m.v[1] = 0x10
	m.v[flagRegister] = 0x33

	stepN(t, m, 1)
	assert.Equal(t, uint16(0x100F), m.Index())
	assert.Equal(t, byte(0x33), m.Register(flagRegister))
}

func TestLoadGlyphAllDigits(t *testing.T) {
	for d := range 16 {
		m := newTestMachine(t, 0xF429) // ld F, V4
		m.v[4] = byte(0xF0 | d)
		stepN(t, m, 1)
		assert.Equal(t, uint16(GlyphStart+d*GlyphSize), m.Index())
	}
}

func TestStoreBCD(t *testing.T) {
	tests := []struct {
		value byte
		want  []byte
	}{
		{235, []byte{2, 3, 5}},
		{0, []byte{0, 0, 0}},
		{255, []byte{2, 5, 5}},
		{7, []byte{0, 0, 7}},
		{40, []byte{0, 4, 0}},
	}

	for _, tt := range tests {
		m := newTestMachine(t, 0xF533) // ld B, V5
		m.i = 0x400
		m.v[5] = tt.value
		stepN(t, m, 1)

		digits, err := m.ReadMemory(0x400, 3)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, digits)
	}
}

func TestStoreBCDPastMemoryFaults(t *testing.T) {
	m := newTestMachine(t, 0xF033)
	m.i = MaxAddress - 1

	before := snapshot(t, m)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
	assertUnchanged(t, before, snapshot(t, m))
}

func TestRegisterBlockRoundTrip(t *testing.T) {
	for x := range RegisterCount {
		store := 0xF055 | uint16(x)<<8
		load := 0xF065 | uint16(x)<<8
		m := newTestMachine(t, store, load)
		m.i = 0x500
		for r := range RegisterCount {
			m.v[r] = byte(0x10 + r)
		}
		original := m.Registers()

		stepN(t, m, 1)
		stored, err := m.ReadMemory(0x500, RegisterCount)
		assert.NoError(t, err)
		for r := range RegisterCount {
			want := byte(0)
			if r <= x {
				want = original[r]
			}
			assert.Equal(t, want, stored[r])
		}
		assert.Equal(t, uint16(0x500), m.Index(), "I is not modified")

		m.v = [RegisterCount]byte{}
		stepN(t, m, 1)
		for r := range RegisterCount {
			want := byte(0)
			if r <= x {
				want = original[r]
			}
			assert.Equal(t, want, m.Register(uint8(r)))
		}
	}
}

func TestRegisterBlockPastMemoryFaults(t *testing.T) {
	for _, op := range []uint16{0xFF55, 0xFF65} {
		m := newTestMachine(t, op)
		m.i = MemorySize - 8
		m.v[0] = 0x99

		before := snapshot(t, m)
		_, err := m.Step()
		assert.True(t, errors.Is(err, ErrAddressOutOfRange))
		assertUnchanged(t, before, snapshot(t, m))
	}
}

func TestUnknownOpcodes(t *testing.T) {
	ops := []uint16{
		0x0000, 0x00E1, 0x0123, 0x00FF,
		0x5121, 0x512F,
		0x8008, 0x8009, 0x800A, 0x800D, 0x800F,
		0x9121,
		0xE100, 0xE19F,
		0xF000, 0xF108, 0xF1FF,
	}

	for _, op := range ops {
		m := newTestMachine(t, op)
		m.v[1] = 0x22
		m.delayTimer = 3
		m.soundTimer = 3

		before := snapshot(t, m)
		res, err := m.Step()
		assert.True(t, errors.Is(err, ErrUnknownOpcode))

		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, Opcode(op), decodeErr.Opcode)
		assert.Equal(t, uint16(ProgramStart), decodeErr.Address)
		assert.Equal(t, Opcode(op), res.Opcode)
		assertUnchanged(t, before, snapshot(t, m))
	}
}

// loadAt writes instruction words to memory at address.
func loadAt(t *testing.T, m *Machine, address uint16, words ...uint16) {
	t.Helper()
	for i, w := range words {
		offset := int(address) + i*2
		assert.True(t, offset+1 < MemorySize)
		m.memory[offset] = byte(w >> 8)
		m.memory[offset+1] = byte(w)
	}
}
