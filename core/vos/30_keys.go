package vos

// Key identifies a key on the keyboard. Printable keys use their ASCII
// value, special keys live above the ASCII range.
type Key int

const (
	KeyNone Key = 0

	KeyBackspace Key = 0x08
	KeyTab       Key = 0x09
	KeyEnter     Key = 0x0a
	KeyEscape    Key = 0x1b
)

const (
	KeyLeft Key = 0x100 + iota
	KeyRight
	KeyUp
	KeyDown
	KeyDelete
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// KeyEvent is a single press or release reported by the keyboard.
type KeyEvent struct {
	Key       Key
	Pressed   bool
	Modifiers Modifier
}

// Printable returns the character for printable keys.
func (k KeyEvent) Printable() (byte, bool) {
	if k.Modifiers&ModCtrl != 0 {
		return 0, false
	}
	if k.Key >= 0x20 && k.Key < 0x7f {
		return byte(k.Key), true
	}
	return 0, false
}

// IsInterrupt reports whether the event is a Ctrl+C press.
func (k KeyEvent) IsInterrupt() bool {
	return k.Pressed && k.Modifiers&ModCtrl != 0 && (k.Key == 'c' || k.Key == 'C')
}

// IsEOF reports whether the event is a Ctrl+D press.
func (k KeyEvent) IsEOF() bool {
	return k.Pressed && k.Modifiers&ModCtrl != 0 && (k.Key == 'd' || k.Key == 'D')
}

type decoderState int

const (
	decodeGround decoderState = iota
	decodeEscape
	decodeCSI
)

// KeyDecoder turns bytes from a terminal into key events. Terminals only
// report presses so each key produces a press followed by a release.
type KeyDecoder struct {
	state decoderState
}

// Feed decodes b, escape sequences may span calls.
func (d *KeyDecoder) Feed(b []byte) []KeyEvent {
	var out []KeyEvent
	emit := func(k Key, mods Modifier) {
		out = append(out,
			KeyEvent{Key: k, Pressed: true, Modifiers: mods},
			KeyEvent{Key: k, Pressed: false, Modifiers: mods})
	}

	for _, c := range b {
		switch d.state {
		case decodeEscape:
			if c == '[' || c == 'O' {
				d.state = decodeCSI
				continue
			}
			d.state = decodeGround
			emit(KeyEscape, 0)
		case decodeCSI:
			if c >= 0x40 && c <= 0x7e {
				d.state = decodeGround
				switch c {
				case 'A':
					emit(KeyUp, 0)
				case 'B':
					emit(KeyDown, 0)
				case 'C':
					emit(KeyRight, 0)
				case 'D':
					emit(KeyLeft, 0)
				case '~':
					emit(KeyDelete, 0)
				}
			}
			// Parameter bytes are ignored.
			continue
		}

		switch {
		case c == 0x1b:
			d.state = decodeEscape
		case c == '\r' || c == '\n':
			emit(KeyEnter, 0)
		case c == 0x7f || c == 0x08:
			emit(KeyBackspace, 0)
		case c == '\t':
			emit(KeyTab, 0)
		case c < 0x20:
			// Ctrl+letter arrives as the letter's position in the alphabet.
			emit(Key('a'+c-1), ModCtrl)
		case c < 0x7f:
			emit(Key(c), 0)
		}
	}

	return out
}
