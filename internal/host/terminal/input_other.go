//go:build !unix

package terminal

import "errors"

type inputReader interface {
	read(buf []byte) (int, error)
	close()
}

func newInputReader(int) (inputReader, error) {
	return nil, errors.New("terminal input is not supported on this platform")
}
