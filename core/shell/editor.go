package shell

import (
	"context"
	"io"

	"github.com/josephlewis42/kshell/core/vos"
)

// EditorState is the line being edited. Operations return a new state and
// never modify the receiver's buffer.
type EditorState struct {
	// Buf holds the first Len characters of the line.
	Buf []byte
	Len int
	// Pos is the cursor offset, 0 <= Pos <= Len.
	Pos int
	// Rendered is how many characters the last redraw put on screen.
	Rendered int
	// Cap is the most printable characters the line may hold.
	Cap int
}

// NewEditorState creates an empty line that holds up to capacity characters.
func NewEditorState(capacity int) EditorState {
	return EditorState{Cap: capacity}
}

// String returns the line's content.
func (s EditorState) String() string {
	return string(s.Buf[:s.Len])
}

func (s EditorState) clone() EditorState {
	buf := make([]byte, s.Len, s.Len+1)
	copy(buf, s.Buf[:s.Len])
	s.Buf = buf
	return s
}

// Insert puts c at the cursor and advances it. A full line is returned
// unchanged.
func Insert(s EditorState, c byte) EditorState {
	if s.Len >= s.Cap {
		return s
	}

	s = s.clone()
	s.Buf = append(s.Buf, 0)
	copy(s.Buf[s.Pos+1:], s.Buf[s.Pos:s.Len])
	s.Buf[s.Pos] = c
	s.Len++
	s.Pos++
	return s
}

// Backspace removes the character before the cursor.
func Backspace(s EditorState) EditorState {
	if s.Pos == 0 {
		return s
	}

	s = s.clone()
	copy(s.Buf[s.Pos-1:], s.Buf[s.Pos:s.Len])
	s.Len--
	s.Pos--
	s.Buf = s.Buf[:s.Len]
	return s
}

// MoveLeft moves the cursor one character left.
func MoveLeft(s EditorState) EditorState {
	if s.Pos > 0 {
		s.Pos--
	}
	return s
}

// MoveRight moves the cursor one character right.
func MoveRight(s EditorState) EditorState {
	if s.Pos < s.Len {
		s.Pos++
	}
	return s
}

// Anchor is the screen cell where the line starts, right after the prompt.
type Anchor struct {
	Row int
	Col int
}

// PlaceCursor returns the screen cell of line offset pos, wrapping at width.
func PlaceCursor(a Anchor, pos, width int) (row, col int) {
	abs := a.Col + pos
	return a.Row + abs/width, abs % width
}

// Render redraws the line from the anchor and blanks whatever remains of the
// previous redraw. The returned state has Rendered set to Len.
func Render(s EditorState, a Anchor, console vos.Console) EditorState {
	console.SetCursor(a.Row, a.Col)
	for i := 0; i < s.Len; i++ {
		console.PutChar(s.Buf[i])
	}
	for i := s.Len; i < s.Rendered; i++ {
		console.PutChar(' ')
	}

	s.Rendered = s.Len
	return s
}

// reanchor moves the anchor up by however many rows the console scrolled
// while drawing drawn characters from it.
func reanchor(a Anchor, drawn, width int, console vos.Console) Anchor {
	wantRow, _ := PlaceCursor(a, drawn, width)
	gotRow, _ := console.Cursor()
	if gotRow < wantRow {
		a.Row -= wantRow - gotRow
	}
	return a
}

// Keyboard is the source of key events for the editor.
type Keyboard interface {
	// PollEvent returns the next event without blocking.
	PollEvent() (vos.KeyEvent, bool)
	// WaitInterrupt suspends until an event may be available.
	WaitInterrupt(ctx context.Context) error
}

// Editor reads lines from the keyboard and draws them on the console.
type Editor struct {
	Console  vos.Console
	Keyboard Keyboard
	Capacity int
}

// ReadLine edits a line starting at the current cursor position and returns
// it when Enter is pressed. Ctrl+C abandons the line with ErrInterrupted and
// io.EOF is returned once the keyboard is gone or ctx ends.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	row, col := e.Console.Cursor()
	anchor := Anchor{Row: row, Col: col}
	state := NewEditorState(e.Capacity)

	for {
		ev, ok := e.Keyboard.PollEvent()
		if !ok {
			if err := e.Keyboard.WaitInterrupt(ctx); err != nil {
				return "", io.EOF
			}
			continue
		}

		if !ev.Pressed {
			continue
		}

		if ev.IsInterrupt() {
			e.placeCursor(anchor, state.Len)
			e.puts("^C\n")
			return "", ErrInterrupted
		}

		switch ev.Key {
		case vos.KeyEnter:
			e.placeCursor(anchor, state.Len)
			e.puts("\n")
			return state.String(), nil

		case vos.KeyBackspace:
			if state.Pos == 0 {
				continue
			}
			state, anchor = e.redraw(Backspace(state), anchor)

		case vos.KeyLeft:
			state = MoveLeft(state)

		case vos.KeyRight:
			state = MoveRight(state)

		default:
			c, printable := ev.Printable()
			if !printable || state.Len >= state.Cap {
				continue
			}
			state, anchor = e.redraw(Insert(state, c), anchor)
		}

		e.placeCursor(anchor, state.Pos)
	}
}

// redraw renders s and returns the new state along with the anchor adjusted
// for any scrolling the drawing caused.
func (e *Editor) redraw(s EditorState, a Anchor) (EditorState, Anchor) {
	width, _ := e.Console.Size()
	drawn := max(s.Len, s.Rendered)
	s = Render(s, a, e.Console)
	return s, reanchor(a, drawn, width, e.Console)
}

func (e *Editor) placeCursor(a Anchor, pos int) {
	width, _ := e.Console.Size()
	e.Console.SetCursor(PlaceCursor(a, pos, width))
}

func (e *Editor) puts(text string) {
	for i := 0; i < len(text); i++ {
		e.Console.PutChar(text[i])
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
