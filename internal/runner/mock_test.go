package runner

import (
	"bytes"
	"errors"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// newBufferLogger returns a logger that writes to buf. Fault paths log at
// error level, which the test logger treats as a test failure.
func newBufferLogger(buf *bytes.Buffer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.DebugLevel
	cfg.Output = buf
	return log.NewWithConfig(cfg)
}

// mockDisplay records rendered frames and tone changes.
type mockDisplay struct {
	frames [][]byte
	tones  []bool
	err    error
}

func (d *mockDisplay) Render(frame []byte) error {
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, frame)
	return nil
}

func (d *mockDisplay) Tone(on bool) {
	d.tones = append(d.tones, on)
}

// mockKeypad returns a fixed keypad state and counts polls.
type mockKeypad struct {
	keys  [chip8.KeyCount]bool
	polls int
}

func (k *mockKeypad) Keys() [chip8.KeyCount]bool {
	k.polls++
	return k.keys
}

var errDisplay = errors.New("display failure")

// newMachine returns a machine with the program words loaded.
func newMachine(words ...uint16) (*chip8.Machine, error) {
	m := chip8.New(chip8.WithRandom(chip8.NewRandom(1)))
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	if err := m.LoadProgram(program); err != nil {
		return nil, err
	}
	return m, nil
}
