// Package terminal implements a user interface that renders the display in a
// terminal and reads the keypad from raw terminal input.
package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/host"
	"golang.org/x/term"
)

// DefaultHoldTime is the time a key counts as pressed after its last input byte.
// Terminals report key presses and auto repeats but no releases.
const DefaultHoldTime = 150 * time.Millisecond

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B

	escClearScreen = "\x1b[2J"
	escCursorHome  = "\x1b[H"
	escHideCursor  = "\x1b[?25l"
	escShowCursor  = "\x1b[?25h"
	bell           = "\a"
)

// Terminal renders frames using half block characters, each text line shows
// two pixel rows.
type Terminal struct {
	in     *os.File
	out    io.Writer
	cancel context.CancelFunc

	holdTime time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pressed [chip8.KeyCount]time.Time
	line    bytes.Buffer

	stopCh   chan struct{}
	done     chan struct{}
	stopped  sync.Once
	fd       int
	oldState *term.State
	reader   inputReader
}

// New returns a terminal user interface reading from in and writing to out.
// Escape or Ctrl-C call cancel.
func New(in *os.File, out io.Writer, cancel context.CancelFunc) *Terminal {
	return &Terminal{
		in:       in,
		out:      out,
		cancel:   cancel,
		holdTime: DefaultHoldTime,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start puts the terminal into raw mode and starts reading key input.
// Call Close to restore the terminal.
func (t *Terminal) Start() error {
	t.fd = int(t.in.Fd())
	if !term.IsTerminal(t.fd) {
		return fmt.Errorf("input is not a terminal, use the window or headless user interface")
	}

	oldState, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("setting raw mode: %w", err)
	}
	t.oldState = oldState

	reader, err := newInputReader(t.fd)
	if err != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
		return fmt.Errorf("setting up input reader: %w", err)
	}
	return t.begin(reader)
}

// begin starts reading key input and prepares the screen. On failure the
// terminal is closed again.
func (t *Terminal) begin(reader inputReader) error {
	t.reader = reader
	go t.readInput()

	if _, err := io.WriteString(t.out, escClearScreen+escHideCursor); err != nil {
		return errors.Join(fmt.Errorf("writing to terminal: %w", err), t.Close())
	}
	return nil
}

// Close stops reading key input and restores the terminal state.
func (t *Terminal) Close() error {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	if t.reader == nil {
		return nil
	}
	<-t.done

	t.reader.close()
	t.reader = nil
	if t.oldState != nil {
		if err := term.Restore(t.fd, t.oldState); err != nil {
			return fmt.Errorf("restoring terminal: %w", err)
		}
		t.oldState = nil
	}

	_, err := io.WriteString(t.out, escShowCursor+"\r\n")
	return err
}

func (t *Terminal) readInput() {
	defer close(t.done)
	buf := make([]byte, 16)

	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, err := t.reader.read(buf)
		if n > 0 {
			t.handleInput(buf[:n])
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// handleInput processes a chunk of raw terminal input.
func (t *Terminal) handleInput(data []byte) {
	// a single escape byte is the escape key, longer chunks starting with it
	// are escape sequences of cursor or function keys
	if len(data) == 1 && data[0] == keyEscape {
		t.cancel()
		return
	}
	if data[0] == keyEscape {
		return
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, b := range data {
		if b == keyCtrlC {
			t.cancel()
			return
		}
		if key, ok := host.KeyForRune(rune(b)); ok {
			t.pressed[key] = now
		}
	}
}

// Keys returns the keys that received input within the hold time.
func (t *Terminal) Keys() [chip8.KeyCount]bool {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	var keys [chip8.KeyCount]bool
	for key, last := range t.pressed {
		keys[key] = !last.IsZero() && now.Sub(last) < t.holdTime
	}
	return keys
}

// Render draws the frame at the top left of the terminal.
func (t *Terminal) Render(frame []byte) error {
	if len(frame) != chip8.DisplaySize {
		return fmt.Errorf("invalid frame size %d, expected %d", len(frame), chip8.DisplaySize)
	}

	t.line.Reset()
	t.line.WriteString(escCursorHome)

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := range chip8.DisplayWidth {
			top := lit(frame, x, y)
			bottom := lit(frame, x, y+1)
			t.line.WriteRune(halfBlock(top, bottom))
		}
		t.line.WriteString("\r\n")
	}

	if _, err := t.out.Write(t.line.Bytes()); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// Tone rings the terminal bell when a tone starts.
func (t *Terminal) Tone(on bool) {
	if on {
		_, _ = io.WriteString(t.out, bell)
	}
}

func lit(frame []byte, x, y int) bool {
	if y >= chip8.DisplayHeight {
		return false
	}
	return frame[(y*chip8.DisplayWidth+x)*chip8.BytesPerPixel] != 0
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
