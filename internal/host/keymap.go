// Package host contains the parts shared by the user interfaces.
package host

import "github.com/retroenv/retrochip8/internal/chip8"

// Layout maps every keypad key to the character of the host keyboard key it is
// bound to. The 4x4 block 1234/QWER/ASDF/ZXCV mirrors the keypad
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
const Layout = "x123qweasdzc4rfv"

// KeyForRune returns the keypad key bound to the character. Upper case
// characters are accepted.
func KeyForRune(r rune) (int, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	for key, c := range Layout {
		if c == r {
			return key, true
		}
	}
	return 0, false
}

// RuneForKey returns the host keyboard character of a keypad key.
func RuneForKey(key int) (rune, bool) {
	if key < 0 || key >= chip8.KeyCount {
		return 0, false
	}
	return rune(Layout[key]), true
}
