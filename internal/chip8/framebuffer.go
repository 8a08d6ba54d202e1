package chip8

import "fmt"

// Display dimensions and pixel format. Each pixel is stored as an RGB24 triplet
// whose bytes are all pixelOff or all pixelOn.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
	DisplayPixels = DisplayWidth * DisplayHeight

	BytesPerPixel = 3
	DisplaySize   = DisplayPixels * BytesPerPixel
)

const (
	pixelOff = 0x00
	pixelOn  = 0xFF
)

// Framebuffer is the monochrome display of the machine stored in a renderer
// friendly packed RGB24 format.
type Framebuffer struct {
	buf [DisplaySize]byte
}

// Get returns 1 if the pixel at the flattened index is on and 0 if it is off.
func (f *Framebuffer) Get(index int) (byte, error) {
	if index < 0 || index >= DisplayPixels {
		return 0, fmt.Errorf("%w: %d", ErrPixelIndex, index)
	}

	offset := index * BytesPerPixel
	value := f.buf[offset]
	if f.buf[offset+1] != value || f.buf[offset+2] != value {
		return 0, fmt.Errorf("%w: pixel %d has bytes %02X %02X %02X",
			ErrPixelCorrupt, index, f.buf[offset], f.buf[offset+1], f.buf[offset+2])
	}

	switch value {
	case pixelOff:
		return 0, nil
	case pixelOn:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: pixel %d has value %02X", ErrPixelCorrupt, index, value)
	}
}

// Set turns the pixel at the flattened index on (1) or off (0).
func (f *Framebuffer) Set(index int, state byte) error {
	if index < 0 || index >= DisplayPixels {
		return fmt.Errorf("%w: %d", ErrPixelIndex, index)
	}

	var value byte
	switch state {
	case 0:
		value = pixelOff
	case 1:
		value = pixelOn
	default:
		return fmt.Errorf("%w: %d", ErrPixelState, state)
	}

	offset := index * BytesPerPixel
	f.buf[offset] = value
	f.buf[offset+1] = value
	f.buf[offset+2] = value
	return nil
}

// Xor sets the pixel to state XOR its current state. Drawing an on pixel over an
// on pixel turns it off.
func (f *Framebuffer) Xor(index int, state byte) error {
	if state > 1 {
		return fmt.Errorf("%w: %d", ErrPixelState, state)
	}

	current, err := f.Get(index)
	if err != nil {
		return err
	}
	return f.Set(index, current^state)
}

// Clear turns all pixels off.
func (f *Framebuffer) Clear() {
	f.buf = [DisplaySize]byte{}
}

// RGB returns a copy of the packed RGB24 pixel buffer, row by row starting at the
// top left pixel.
func (f *Framebuffer) RGB() []byte {
	out := make([]byte, DisplaySize)
	copy(out, f.buf[:])
	return out
}
