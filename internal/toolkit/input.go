package toolkit

// Cursor identifies a pointer image the compositor should show.
type Cursor int

const (
	CursorLeftPtr Cursor = iota
	CursorBlank
	CursorWatch
	CursorDragging
	CursorTop
	CursorBottom
	CursorLeft
	CursorRight
	CursorTopLeft
	CursorTopRight
	CursorBottomLeft
	CursorBottomRight
)

// ButtonState mirrors the wl_pointer button state values.
type ButtonState uint32

const (
	ButtonReleased ButtonState = 0
	ButtonPressed  ButtonState = 1
)

// Pointer button codes (linux input event codes).
const (
	BtnLeft  uint32 = 0x110
	BtnRight uint32 = 0x111
)

// Keyboard codes this toolkit cares about (linux input event codes).
const (
	KeyEsc       uint32 = 1
	KeyBackspace uint32 = 14
	KeyTab       uint32 = 15
	KeyEnter     uint32 = 28
	KeyKPEnter   uint32 = 96
	KeyLeft      uint32 = 105
	KeyRight     uint32 = 106
	KeyDelete    uint32 = 111
)

// KeyEvent is a key press or release delivered to the focused window.
// Rune carries the printable character for the keycode, or zero for keys
// with no character mapping.
type KeyEvent struct {
	Code    uint32
	Rune    rune
	Pressed bool
}

// US layout keycode rows, indexed from the row's first keycode.
var (
	rowDigits = "1234567890"
	rowQwerty = "qwertyuiop"
	rowHome   = "asdfghjkl"
	rowBottom = "zxcvbnm"

	rowDigitsShift = "!@#$%^&*()"
)

// KeycodeRune translates an evdev keycode into a printable character for the
// basic US layout; zero when the keycode has no printable mapping. This is a
// deliberate simplification, not a full keymap model.
func KeycodeRune(code uint32, shift bool) rune {
	pick := func(lower, upper string, idx uint32) rune {
		if int(idx) >= len(lower) {
			return 0
		}
		if shift {
			return rune(upper[idx])
		}
		return rune(lower[idx])
	}

	switch {
	case code >= 2 && code <= 11:
		return pick(rowDigits, rowDigitsShift, code-2)
	case code >= 16 && code <= 25:
		return pick(rowQwerty, "QWERTYUIOP", code-16)
	case code >= 30 && code <= 38:
		return pick(rowHome, "ASDFGHJKL", code-30)
	case code >= 44 && code <= 50:
		return pick(rowBottom, "ZXCVBNM", code-44)
	case code == 57: // space
		return ' '
	case code == 12:
		return pickShift(shift, '-', '_')
	case code == 13:
		return pickShift(shift, '=', '+')
	case code == 39:
		return pickShift(shift, ';', ':')
	case code == 40:
		return pickShift(shift, '\'', '"')
	case code == 51:
		return pickShift(shift, ',', '<')
	case code == 52:
		return pickShift(shift, '.', '>')
	case code == 53:
		return pickShift(shift, '/', '?')
	}
	return 0
}

func pickShift(shift bool, lower, upper rune) rune {
	if shift {
		return upper
	}
	return lower
}
