package keyboard

const (
	scLeftShift  = 0x2a
	scRightShift = 0x36
	scCapsLock   = 0x3a

	// releaseBit is set in the scancode of key release events.
	releaseBit = 0x80
)

// Scancode set 1 to ASCII translation tables for a US QWERTY layout. Zero
// entries (ctrl, shift, alt) produce no character.
var (
	unshiftedMap = [58]byte{
		0, 27, '1', '2', '3', '4', '5', '6', '7', '8', // 0x00-0x09
		'9', '0', '-', '=', Backspace, '\t', // 0x0a-0x0f
		'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p', // 0x10-0x19
		'[', ']', '\n', 0, // 0x1a-0x1d (left ctrl)
		'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', // 0x1e-0x26
		';', '\'', '`', 0, '\\', // 0x27-0x2b (left shift)
		'z', 'x', 'c', 'v', 'b', 'n', 'm', // 0x2c-0x32
		',', '.', '/', 0, // 0x33-0x36 (right shift)
		'*', 0, ' ', // 0x37-0x39 (left alt, space)
	}

	shiftedMap = [58]byte{
		0, 27, '!', '@', '#', '$', '%', '^', '&', '*', // 0x00-0x09
		'(', ')', '_', '+', Backspace, '\t', // 0x0a-0x0f
		'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I', 'O', 'P', // 0x10-0x19
		'{', '}', '\n', 0, // 0x1a-0x1d
		'A', 'S', 'D', 'F', 'G', 'H', 'J', 'K', 'L', // 0x1e-0x26
		':', '"', '~', 0, '|', // 0x27-0x2b
		'Z', 'X', 'C', 'V', 'B', 'N', 'M', // 0x2c-0x32
		'<', '>', '?', 0, // 0x33-0x36
		'*', 0, ' ', // 0x37-0x39
	}
)

// Translate maps the scancode of a key press to an ASCII character given the
// current modifier state. Caps lock flips the case of letters relative to
// the shift state. A zero return value means that the key does not produce a
// character.
//
//go:nosplit
func Translate(scancode byte, shift, caps bool) byte {
	if int(scancode) >= len(unshiftedMap) {
		return 0
	}

	ch := unshiftedMap[scancode]
	if shift {
		ch = shiftedMap[scancode]
	}

	if caps {
		switch {
		case ch >= 'a' && ch <= 'z':
			ch -= 'a' - 'A'
		case ch >= 'A' && ch <= 'Z':
			ch += 'a' - 'A'
		}
	}

	return ch
}
