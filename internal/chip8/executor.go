package chip8

import "fmt"

// handler executes a single decoded instruction. Handlers validate all operands
// before modifying machine state, an error leaves the machine untouched.
// Handlers return ErrUnknownOpcode if a secondary key does not match.
type handler func(m *Machine, op Opcode, res *StepResult) error

// handlers is indexed by the high nibble of the opcode.
var handlers = [16]handler{
	0x0: (*Machine).execSystem,
	0x1: (*Machine).jump,
	0x2: (*Machine).call,
	0x3: (*Machine).skipEqualImmediate,
	0x4: (*Machine).skipNotEqualImmediate,
	0x5: (*Machine).skipEqualRegister,
	0x6: (*Machine).loadImmediate,
	0x7: (*Machine).addImmediate,
	0x8: (*Machine).execALU,
	0x9: (*Machine).skipNotEqualRegister,
	0xA: (*Machine).loadIndex,
	0xB: (*Machine).jumpOffset,
	0xC: (*Machine).rnd,
	0xD: (*Machine).draw,
	0xE: (*Machine).execKey,
	0xF: (*Machine).execMisc,
}

// aluHandlers is indexed by the low nibble of 8xyN instructions.
var aluHandlers = [16]handler{
	0x0: (*Machine).loadRegister,
	0x1: (*Machine).or,
	0x2: (*Machine).and,
	0x3: (*Machine).xor,
	0x4: (*Machine).add,
	0x5: (*Machine).sub,
	0x6: (*Machine).shiftRight,
	0x7: (*Machine).subReverse,
	0xE: (*Machine).shiftLeft,
}

// miscHandlers is indexed by the low byte of FxKK instructions.
var miscHandlers = map[uint8]handler{
	0x07: (*Machine).loadDelayTimer,
	0x0A: (*Machine).waitKey,
	0x15: (*Machine).setDelayTimer,
	0x18: (*Machine).setSoundTimer,
	0x1E: (*Machine).addIndex,
	0x29: (*Machine).loadGlyph,
	0x33: (*Machine).storeBCD,
	0x55: (*Machine).storeRegisters,
	0x65: (*Machine).loadRegisters,
}

func (m *Machine) execute(op Opcode, res *StepResult) error {
	return handlers[op.Class()](m, op, res)
}

func (m *Machine) execSystem(op Opcode, res *StepResult) error {
	switch op.KK() {
	case 0xE0:
		return m.clearScreen(op, res)
	case 0xEE:
		return m.ret(op, res)
	default:
		return ErrUnknownOpcode
	}
}

func (m *Machine) execALU(op Opcode, res *StepResult) error {
	h := aluHandlers[op.N()]
	if h == nil {
		return ErrUnknownOpcode
	}
	return h(m, op, res)
}

func (m *Machine) execKey(op Opcode, res *StepResult) error {
	switch op.KK() {
	case 0x9E:
		return m.skipKeyPressed(op, res)
	case 0xA1:
		return m.skipKeyNotPressed(op, res)
	default:
		return ErrUnknownOpcode
	}
}

func (m *Machine) execMisc(op Opcode, res *StepResult) error {
	h, ok := miscHandlers[op.KK()]
	if !ok {
		return ErrUnknownOpcode
	}
	return h(m, op, res)
}

// checkRange returns an error if n bytes starting at address are not all
// inside of memory.
func checkRange(address uint16, n int) error {
	if int(address)+n > MemorySize {
		return fmt.Errorf("%w: accessing %d bytes at $%04X", ErrAddressOutOfRange, n, address)
	}
	return nil
}

// 00E0: cls
func (m *Machine) clearScreen(_ Opcode, res *StepResult) error {
	m.display.Clear()
	res.Redraw = true
	return nil
}

// 00EE: ret
func (m *Machine) ret(_ Opcode, _ *StepResult) error {
	address, err := m.stack.pop()
	if err != nil {
		return err
	}
	// the stack holds the address of the call instruction, the regular
	// advance moves past it
	m.pc = address
	return nil
}

// 1nnn: jp addr
func (m *Machine) jump(op Opcode, _ *StepResult) error {
	m.pc = op.NNN() - opcodeSize
	return nil
}

// 2nnn: call addr
func (m *Machine) call(op Opcode, _ *StepResult) error {
	if err := m.stack.push(m.pc); err != nil {
		return err
	}
	m.pc = op.NNN() - opcodeSize
	return nil
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += opcodeSize
	}
}

// 3xkk: se Vx, byte
func (m *Machine) skipEqualImmediate(op Opcode, _ *StepResult) error {
	m.skipIf(m.v[op.X()] == op.KK())
	return nil
}

// 4xkk: sne Vx, byte
func (m *Machine) skipNotEqualImmediate(op Opcode, _ *StepResult) error {
	m.skipIf(m.v[op.X()] != op.KK())
	return nil
}

// 5xy0: se Vx, Vy
func (m *Machine) skipEqualRegister(op Opcode, _ *StepResult) error {
	if op.N() != 0 {
		return ErrUnknownOpcode
	}
	m.skipIf(m.v[op.X()] == m.v[op.Y()])
	return nil
}

// 9xy0: sne Vx, Vy
func (m *Machine) skipNotEqualRegister(op Opcode, _ *StepResult) error {
	if op.N() != 0 {
		return ErrUnknownOpcode
	}
	m.skipIf(m.v[op.X()] != m.v[op.Y()])
	return nil
}

// 6xkk: ld Vx, byte
func (m *Machine) loadImmediate(op Opcode, _ *StepResult) error {
	m.v[op.X()] = op.KK()
	return nil
}

// 7xkk: add Vx, byte
func (m *Machine) addImmediate(op Opcode, _ *StepResult) error {
	m.v[op.X()] += op.KK()
	return nil
}

// 8xy0: ld Vx, Vy
func (m *Machine) loadRegister(op Opcode, _ *StepResult) error {
	m.v[op.X()] = m.v[op.Y()]
	return nil
}

// 8xy1: or Vx, Vy
func (m *Machine) or(op Opcode, _ *StepResult) error {
	m.v[op.X()] |= m.v[op.Y()]
	return nil
}

// 8xy2: and Vx, Vy
func (m *Machine) and(op Opcode, _ *StepResult) error {
	m.v[op.X()] &= m.v[op.Y()]
	return nil
}

// 8xy3: xor Vx, Vy
func (m *Machine) xor(op Opcode, _ *StepResult) error {
	m.v[op.X()] ^= m.v[op.Y()]
	return nil
}

// The flag producing ALU instructions write VF first and the result second,
// if x is F the result wins.

// 8xy4: add Vx, Vy
func (m *Machine) add(op Opcode, _ *StepResult) error {
	sum := uint16(m.v[op.X()]) + uint16(m.v[op.Y()])
	m.v[flagRegister] = boolToFlag(sum > 0xFF)
	m.v[op.X()] = byte(sum)
	return nil
}

// 8xy5: sub Vx, Vy
// A borrow sets the result to 0 instead of wrapping around.
func (m *Machine) sub(op Opcode, _ *StepResult) error {
	vx, vy := m.v[op.X()], m.v[op.Y()]
	if vx > vy {
		m.v[flagRegister] = 1
		m.v[op.X()] = vx - vy
		return nil
	}
	m.v[flagRegister] = 0
	m.v[op.X()] = 0
	return nil
}

// 8xy7: subn Vx, Vy
func (m *Machine) subReverse(op Opcode, _ *StepResult) error {
	vx, vy := m.v[op.X()], m.v[op.Y()]
	if vy > vx {
		m.v[flagRegister] = 1
		m.v[op.X()] = vy - vx
		return nil
	}
	m.v[flagRegister] = 0
	m.v[op.X()] = 0
	return nil
}

// 8xy6: shr Vx
func (m *Machine) shiftRight(op Opcode, _ *StepResult) error {
	vx := m.v[op.X()]
	m.v[flagRegister] = vx & 0x01
	m.v[op.X()] = vx >> 1
	return nil
}

// 8xyE: shl Vx
func (m *Machine) shiftLeft(op Opcode, _ *StepResult) error {
	vx := m.v[op.X()]
	if m.quirks.RawShiftFlag {
		m.v[flagRegister] = vx & 0x80
	} else {
		m.v[flagRegister] = vx >> 7
	}
	m.v[op.X()] = vx << 1
	return nil
}

func boolToFlag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Annn: ld I, addr
func (m *Machine) loadIndex(op Opcode, _ *StepResult) error {
	m.i = op.NNN()
	if m.quirks.LoadIndexDoubleAdvance {
		m.pc += opcodeSize
	}
	return nil
}

// Bnnn: jp V0, addr
// The target is not truncated to 12 bits, a target past the end of memory
// faults on the next fetch.
func (m *Machine) jumpOffset(op Opcode, _ *StepResult) error {
	m.pc = op.NNN() + uint16(m.v[0]) - opcodeSize
	return nil
}

// Cxkk: rnd Vx, byte
func (m *Machine) rnd(op Opcode, _ *StepResult) error {
	m.v[op.X()] = m.random.Byte() & op.KK()
	return nil
}

// Dxyn: drw Vx, Vy, nibble
// Sprites wrap around horizontally, rows below the bottom edge are clipped.
func (m *Machine) draw(op Opcode, res *StepResult) error {
	rows := int(op.N())
	if err := checkRange(m.i, rows); err != nil {
		return err
	}

	x := int(m.v[op.X()])
	y := int(m.v[op.Y()])
	m.v[flagRegister] = 0

	for row := range rows {
		py := y + row
		if py >= DisplayHeight {
			break
		}
		sprite := m.memory[int(m.i)+row]

		for col := range 8 {
			bit := (sprite >> (7 - col)) & 1
			if bit == 0 {
				continue
			}

			index := py*DisplayWidth + (x+col)%DisplayWidth
			current, err := m.display.Get(index)
			if err != nil {
				return err
			}
			if current == 1 {
				m.v[flagRegister] = 1
			}
			if err := m.display.Xor(index, bit); err != nil {
				return err
			}
		}
	}

	res.Redraw = true
	return nil
}

// Ex9E: skp Vx
// Only the low nibble of Vx selects the key.
func (m *Machine) skipKeyPressed(op Opcode, _ *StepResult) error {
	m.skipIf(m.keys[m.v[op.X()]&0x0F])
	return nil
}

// ExA1: sknp Vx
func (m *Machine) skipKeyNotPressed(op Opcode, _ *StepResult) error {
	m.skipIf(!m.keys[m.v[op.X()]&0x0F])
	return nil
}

// Fx07: ld Vx, DT
func (m *Machine) loadDelayTimer(op Opcode, _ *StepResult) error {
	m.v[op.X()] = m.delayTimer
	return nil
}

// Fx0A: ld Vx, K
// Stores the lowest pressed key. Without a pressed key the program counter is
// held so the instruction executes again on the next step.
func (m *Machine) waitKey(op Opcode, res *StepResult) error {
	for key, pressed := range m.keys {
		if pressed {
			m.v[op.X()] = byte(key)
			return nil
		}
	}
	m.pc -= opcodeSize
	res.Waiting = true
	return nil
}

// Fx15: ld DT, Vx
func (m *Machine) setDelayTimer(op Opcode, _ *StepResult) error {
	m.delayTimer = m.v[op.X()]
	return nil
}

// Fx18: ld ST, Vx
func (m *Machine) setSoundTimer(op Opcode, _ *StepResult) error {
	m.soundTimer = m.v[op.X()]
	return nil
}

// Fx1E: add I, Vx
func (m *Machine) addIndex(op Opcode, _ *StepResult) error {
	m.i += uint16(m.v[op.X()])
	return nil
}

// Fx29: ld F, Vx
func (m *Machine) loadGlyph(op Opcode, _ *StepResult) error {
	m.i = GlyphStart + uint16(m.v[op.X()]&0x0F)*GlyphSize
	return nil
}

// Fx33: ld B, Vx
func (m *Machine) storeBCD(op Opcode, _ *StepResult) error {
	if err := checkRange(m.i, 3); err != nil {
		return err
	}
	vx := m.v[op.X()]
	m.memory[m.i] = vx / 100
	m.memory[m.i+1] = vx / 10 % 10
	m.memory[m.i+2] = vx % 10
	return nil
}

// Fx55: ld [I], Vx
func (m *Machine) storeRegisters(op Opcode, _ *StepResult) error {
	n := int(op.X()) + 1
	if err := checkRange(m.i, n); err != nil {
		return err
	}
	copy(m.memory[m.i:], m.v[:n])
	return nil
}

// Fx65: ld Vx, [I]
func (m *Machine) loadRegisters(op Opcode, _ *StepResult) error {
	n := int(op.X()) + 1
	if err := checkRange(m.i, n); err != nil {
		return err
	}
	copy(m.v[:n], m.memory[m.i:])
	return nil
}
