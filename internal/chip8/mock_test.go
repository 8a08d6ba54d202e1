package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// mockRandom returns the queued bytes in order and repeats the last one.
type mockRandom struct {
	values []byte
	calls  int
}

func (r *mockRandom) Byte() byte {
	if len(r.values) == 0 {
		return 0
	}
	i := min(r.calls, len(r.values)-1)
	r.calls++
	return r.values[i]
}

// newTestMachine returns a machine with the given instruction words loaded at
// ProgramStart.
func newTestMachine(t *testing.T, words ...uint16) *Machine {
	t.Helper()
	m := New(WithRandom(&mockRandom{}))
	loadWords(t, m, words...)
	return m
}

func loadWords(t *testing.T, m *Machine, words ...uint16) {
	t.Helper()
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	assert.NoError(t, m.LoadProgram(program))
}

// stepN executes n steps and fails the test on the first error.
func stepN(t *testing.T, m *Machine, n int) StepResult {
	t.Helper()
	var res StepResult
	for range n {
		var err error
		res, err = m.Step()
		assert.NoError(t, err)
	}
	return res
}
