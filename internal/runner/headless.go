package runner

import (
	"bufio"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Headless is a display without output that keeps the last rendered frame and
// a keypad without pressed keys.
type Headless struct {
	frame []byte
}

// NewHeadless returns a new headless display.
func NewHeadless() *Headless {
	return &Headless{
		frame: make([]byte, chip8.DisplaySize),
	}
}

// Render stores a copy of the frame.
func (h *Headless) Render(frame []byte) error {
	if len(frame) != chip8.DisplaySize {
		return fmt.Errorf("invalid frame size %d, expected %d", len(frame), chip8.DisplaySize)
	}
	copy(h.frame, frame)
	return nil
}

// Keys returns a keypad state without pressed keys.
func (h *Headless) Keys() [chip8.KeyCount]bool {
	return [chip8.KeyCount]bool{}
}

// WriteFrame writes the last rendered frame as text, one line per pixel row.
func (h *Headless) WriteFrame(w io.Writer) error {
	return WriteFrame(w, h.frame)
}

// WriteFrame writes a packed RGB24 frame as text using '#' for lit and '.' for
// dark pixels.
func WriteFrame(w io.Writer, frame []byte) error {
	if len(frame) != chip8.DisplaySize {
		return fmt.Errorf("invalid frame size %d, expected %d", len(frame), chip8.DisplaySize)
	}

	buf := bufio.NewWriter(w)
	line := make([]byte, chip8.DisplayWidth+1)
	line[chip8.DisplayWidth] = '\n'

	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			offset := (y*chip8.DisplayWidth + x) * chip8.BytesPerPixel
			if frame[offset] != 0 {
				line[x] = '#'
			} else {
				line[x] = '.'
			}
		}
		if _, err := buf.Write(line); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
