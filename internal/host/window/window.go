// Package window implements a user interface that renders the display in a
// desktop window.
package window

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/host"
)

const (
	title     = "retrochip8"
	toneTitle = title + " ♪"

	rgbaSize = chip8.DisplayPixels * 4
)

// keyBindings maps every keypad key to the host keyboard key of host.Layout.
var keyBindings = mustKeyBindings(host.Layout)

func newKeyBindings(layout string) ([chip8.KeyCount]ebiten.Key, error) {
	var bindings [chip8.KeyCount]ebiten.Key
	if len(layout) != chip8.KeyCount {
		return bindings, fmt.Errorf("keyboard layout has %d keys, expected %d", len(layout), chip8.KeyCount)
	}
	for key := range chip8.KeyCount {
		if err := bindings[key].UnmarshalText([]byte{layout[key]}); err != nil {
			return bindings, fmt.Errorf("binding keypad key %X: %w", key, err)
		}
	}
	return bindings, nil
}

func mustKeyBindings(layout string) [chip8.KeyCount]ebiten.Key {
	bindings, err := newKeyBindings(layout)
	if err != nil {
		panic(err)
	}
	return bindings
}

// Window is an ebiten game that shows the frames of the machine. Render, Keys
// and Tone are called from the emulation goroutine, the ebiten methods from
// the main goroutine.
type Window struct {
	ctx    context.Context
	cancel context.CancelFunc
	scale  int

	mu   sync.RWMutex
	rgba []byte
	keys [chip8.KeyCount]bool
	tone bool

	// only accessed by the ebiten methods
	image      *ebiten.Image
	shownTone  bool
	fullscreen bool
}

// New returns a window with the given pixel scale. The window closes when ctx
// is canceled, closing the window or pressing Escape calls cancel.
func New(ctx context.Context, scale int, cancel context.CancelFunc) *Window {
	return &Window{
		ctx:    ctx,
		cancel: cancel,
		scale:  max(scale, 1),
		rgba:   make([]byte, rgbaSize),
	}
}

// Run opens the window and blocks until it is closed. It has to be called
// from the main goroutine.
func (w *Window) Run() error {
	defer w.cancel()

	ebiten.SetWindowSize(chip8.DisplayWidth*w.scale, chip8.DisplayHeight*w.scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Render converts the RGB24 frame for the next window update.
func (w *Window) Render(frame []byte) error {
	if len(frame) != chip8.DisplaySize {
		return fmt.Errorf("invalid frame size %d, expected %d", len(frame), chip8.DisplaySize)
	}

	w.mu.Lock()
	toRGBA(w.rgba, frame)
	w.mu.Unlock()
	return nil
}

// Keys returns the keypad state of the last window update.
func (w *Window) Keys() [chip8.KeyCount]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.keys
}

// Tone shows a note in the window title while a tone is requested.
func (w *Window) Tone(on bool) {
	w.mu.Lock()
	w.tone = on
	w.mu.Unlock()
}

// Update polls the keyboard, it is called by ebiten once per tick.
func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.cancel()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		w.fullscreen = !w.fullscreen
		ebiten.SetFullscreen(w.fullscreen)
	}

	var keys [chip8.KeyCount]bool
	for key, binding := range keyBindings {
		keys[key] = ebiten.IsKeyPressed(binding)
	}

	w.mu.Lock()
	w.keys = keys
	tone := w.tone
	w.mu.Unlock()

	if tone != w.shownTone {
		w.shownTone = tone
		ebiten.SetWindowTitle(windowTitle(tone))
	}
	return nil
}

// Draw copies the last rendered frame to the screen.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}

	w.mu.RLock()
	w.image.WritePixels(w.rgba)
	w.mu.RUnlock()

	screen.DrawImage(w.image, nil)
}

// Layout returns the logical screen size, ebiten scales it to the window.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth, chip8.DisplayHeight
}

// toRGBA converts a packed RGB24 frame to opaque RGBA pixels.
func toRGBA(dst, src []byte) {
	for i, j := 0, 0; i+2 < len(src) && j+3 < len(dst); i, j = i+3, j+4 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
		dst[j+3] = 0xFF
	}
}

func windowTitle(tone bool) string {
	if tone {
		return toneTitle
	}
	return title
}
