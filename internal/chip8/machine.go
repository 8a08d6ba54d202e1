package chip8

import (
	"fmt"
	"time"
)

// CHIP-8 memory layout constants.
const (
	// MemorySize is the size of the addressable memory.
	MemorySize = 0x1000

	// MaxAddress is the highest valid address in CHIP-8 memory space.
	MaxAddress = MemorySize - 1

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// GlyphStart is the address of the built-in hexadecimal glyph table.
	GlyphStart = 0x000

	// GlyphSize is the size of a single glyph sprite in bytes.
	GlyphSize = 5

	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16

	// KeyCount is the number of keys of the hexadecimal keypad.
	KeyCount = 16
)

// flagRegister is the index of VF, written by carry, borrow, shift and collision.
const flagRegister = 0xF

var glyphs = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Glyph returns the 5 byte sprite of the hexadecimal digit d.
func Glyph(d uint8) [GlyphSize]byte {
	var g [GlyphSize]byte
	offset := int(d&0x0F) * GlyphSize
	copy(g[:], glyphs[offset:offset+GlyphSize])
	return g
}

// Quirks selects between interpreter behaviors that differ across implementations.
type Quirks struct {
	// RawShiftFlag stores the shifted out bit of SHL (8xyE) in VF unnormalized,
	// 0x80 instead of 1.
	RawShiftFlag bool

	// LoadIndexDoubleAdvance makes LD I, addr (Annn) advance the program counter
	// by 2 in addition to the regular advance, skipping the next instruction.
	LoadIndexDoubleAdvance bool
}

var (
	// ModernQuirks is the default behavior: shift flags are 0 or 1 and every
	// non control flow instruction advances the program counter once.
	ModernQuirks = Quirks{}

	// ReferenceQuirks reproduces the behavior of the interpreter this machine
	// was modelled on bit for bit.
	ReferenceQuirks = Quirks{
		RawShiftFlag:           true,
		LoadIndexDoubleAdvance: true,
	}
)

// Option configures a Machine.
type Option func(*Machine)

// WithRandom sets the byte source of the RND instruction.
func WithRandom(random Random) Option {
	return func(m *Machine) {
		m.random = random
	}
}

// WithQuirks sets the interpreter quirks.
func WithQuirks(quirks Quirks) Option {
	return func(m *Machine) {
		m.quirks = quirks
	}
}

// Machine is a CHIP-8 virtual machine. It is not safe for concurrent use.
type Machine struct {
	memory [MemorySize]byte
	v      [RegisterCount]byte
	i      uint16
	pc     uint16
	stack  callStack

	delayTimer byte
	soundTimer byte

	keys    [KeyCount]bool
	display Framebuffer

	random Random
	quirks Quirks
}

// New returns a new machine in reset state. Without WithRandom the RND
// instruction uses a source seeded from the current time.
func New(options ...Option) *Machine {
	m := &Machine{}
	for _, option := range options {
		option(m)
	}
	if m.random == nil {
		m.random = NewRandom(uint64(time.Now().UnixNano()))
	}
	m.Reset()
	return m
}

// Reset clears memory, registers, stack, timers, keypad and display, loads the
// glyph table and sets the program counter to ProgramStart. The random source
// and quirks are kept.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	copy(m.memory[GlyphStart:], glyphs[:])

	m.v = [RegisterCount]byte{}
	m.i = 0
	m.pc = ProgramStart
	m.stack.reset()

	m.delayTimer = 0
	m.soundTimer = 0

	m.keys = [KeyCount]bool{}
	m.display.Clear()
}

// LoadProgram copies the program image into memory starting at ProgramStart.
// Programs larger than MaxProgramSize are rejected without modifying memory.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m.memory[ProgramStart:], program)
	return nil
}

// SetKey sets the pressed state of a keypad key.
func (m *Machine) SetKey(key int, pressed bool) error {
	if key < 0 || key >= KeyCount {
		return fmt.Errorf("%w: %d", ErrKeyIndex, key)
	}
	m.keys[key] = pressed
	return nil
}

// Key returns whether the keypad key is pressed.
func (m *Machine) Key(key int) (bool, error) {
	if key < 0 || key >= KeyCount {
		return false, fmt.Errorf("%w: %d", ErrKeyIndex, key)
	}
	return m.keys[key], nil
}

// Pixel returns 1 if the pixel at the flattened index y*DisplayWidth+x is on.
func (m *Machine) Pixel(index int) (byte, error) {
	return m.display.Get(index)
}

// Frame returns a copy of the packed RGB24 framebuffer.
func (m *Machine) Frame() []byte {
	return m.display.RGB()
}

// PC returns the address of the next instruction to fetch.
func (m *Machine) PC() uint16 {
	return m.pc
}

// Index returns the address register I.
func (m *Machine) Index() uint16 {
	return m.i
}

// Register returns the value of register Vx, only the low nibble of x is used.
func (m *Machine) Register(x uint8) byte {
	return m.v[x&0x0F]
}

// Registers returns a copy of the register file.
func (m *Machine) Registers() [RegisterCount]byte {
	return m.v
}

// StackDepth returns the number of return addresses on the call stack.
func (m *Machine) StackDepth() int {
	return m.stack.depth()
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() byte {
	return m.delayTimer
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() byte {
	return m.soundTimer
}

// DelayTimerExpired returns whether the delay timer reached 0.
func (m *Machine) DelayTimerExpired() bool {
	return m.delayTimer == 0
}

// SoundTimerExpired returns whether the sound timer reached 0.
func (m *Machine) SoundTimerExpired() bool {
	return m.soundTimer == 0
}

// SoundActive returns whether the program requests a tone to be played.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}

// ReadMemory returns a copy of n bytes of memory starting at address.
func (m *Machine) ReadMemory(address uint16, n int) ([]byte, error) {
	if n < 0 || int(address)+n > MemorySize {
		return nil, fmt.Errorf("%w: reading %d bytes at $%04X", ErrAddressOutOfRange, n, address)
	}
	out := make([]byte, n)
	copy(out, m.memory[address:])
	return out, nil
}
