package chip8

// StackDepth is the maximum number of nested subroutine calls.
const StackDepth = 16

// callStack is the fixed capacity return address stack.
type callStack struct {
	entries [StackDepth]uint16
	sp      int
}

func (s *callStack) push(address uint16) error {
	if s.sp == StackDepth {
		return ErrStackOverflow
	}
	s.entries[s.sp] = address
	s.sp++
	return nil
}

func (s *callStack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	address := s.entries[s.sp]
	s.entries[s.sp] = 0
	return address, nil
}

func (s *callStack) depth() int {
	return s.sp
}

func (s *callStack) reset() {
	*s = callStack{}
}
