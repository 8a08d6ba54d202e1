//go:build unix

package terminal

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// inputReader reads raw terminal input without blocking.
type inputReader interface {
	read(buf []byte) (int, error)
	close()
}

type nonblockReader struct {
	fd int
}

func newInputReader(fd int) (inputReader, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("setting nonblocking input: %w", err)
	}
	return &nonblockReader{fd: fd}, nil
}

func (r *nonblockReader) read(buf []byte) (int, error) {
	n, err := unix.Read(r.fd, buf)
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
		return 0, nil
	}
	if n < 0 {
		n = 0
	}
	return n, err
}

func (r *nonblockReader) close() {
	_ = unix.SetNonblock(r.fd, false)
}
