package vos

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console is a fixed size grid of characters with a cursor.
type Console interface {
	SetCursor(row, col int)
	Cursor() (row, col int)
	// PutChar draws c at the cursor and advances it, wrapping at the right
	// edge and scrolling at the bottom.
	PutChar(c byte)
	Clear()
	Size() (width, height int)
}

const tabWidth = 8

// Screen is an in-memory Console. If a mirror is set every change is also
// written to it as ANSI escape sequences so a real terminal shows the same
// thing.
type Screen struct {
	mu     sync.Mutex
	width  int
	height int
	cells  [][]byte
	row    int
	col    int
	mirror io.Writer
	out    bytes.Buffer
}

var _ Console = (*Screen)(nil)
var _ io.Writer = (*Screen)(nil)

// NewScreen creates a blank screen, mirror may be nil.
func NewScreen(width, height int, mirror io.Writer) *Screen {
	s := &Screen{
		width:  width,
		height: height,
		mirror: mirror,
	}
	s.cells = make([][]byte, height)
	for i := range s.cells {
		s.cells[i] = blankRow(width)
	}
	return s
}

func blankRow(width int) []byte {
	return bytes.Repeat([]byte{' '}, width)
}

// Size implements Console.Size.
func (s *Screen) Size() (width, height int) {
	return s.width, s.height
}

// Cursor implements Console.Cursor.
func (s *Screen) Cursor() (row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.row, s.col
}

// SetCursor implements Console.SetCursor, positions are clamped to the grid.
func (s *Screen) SetCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.row = clamp(row, 0, s.height-1)
	s.col = clamp(col, 0, s.width-1)
	fmt.Fprintf(&s.out, "\x1b[%d;%dH", s.row+1, s.col+1)
	s.flush()
}

// PutChar implements Console.PutChar.
func (s *Screen) PutChar(c byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putChar(c)
	s.flush()
}

// Write draws every byte of p, it never fails.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range p {
		s.putChar(c)
	}
	s.flush()
	return len(p), nil
}

// Clear implements Console.Clear.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cells {
		s.cells[i] = blankRow(s.width)
	}
	s.row, s.col = 0, 0
	s.out.WriteString("\x1b[2J\x1b[H")
	s.flush()
}

// String returns the visible rows with trailing blanks removed.
func (s *Screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, len(s.cells))
	for i, row := range s.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Row returns a single row including trailing blanks.
func (s *Screen) Row(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return string(s.cells[row])
}

func (s *Screen) putChar(c byte) {
	switch c {
	case '\n':
		s.newline()
		s.out.WriteString("\r\n")
	case '\r':
		s.col = 0
		s.out.WriteByte('\r')
	case '\b':
		if s.col > 0 {
			s.col--
			s.out.WriteByte('\b')
		}
	case '\t':
		for n := tabWidth - s.col%tabWidth; n > 0; n-- {
			s.putChar(' ')
		}
	default:
		if c < 0x20 || c >= 0x7f {
			c = '?'
		}
		s.cells[s.row][s.col] = c
		s.out.WriteByte(c)
		s.col++
		if s.col >= s.width {
			s.newline()
			s.out.WriteString("\r\n")
		}
	}
}

func (s *Screen) newline() {
	s.col = 0
	if s.row < s.height-1 {
		s.row++
		return
	}

	copy(s.cells, s.cells[1:])
	s.cells[s.height-1] = blankRow(s.width)
}

func (s *Screen) flush() {
	if s.mirror != nil && s.out.Len() > 0 {
		// The grid is authoritative, a failed mirror doesn't stop the machine.
		s.mirror.Write(s.out.Bytes())
	}
	s.out.Reset()
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

type consoleWriter struct {
	Console
}

func (w consoleWriter) Write(p []byte) (int, error) {
	for _, c := range p {
		w.PutChar(c)
	}
	return len(p), nil
}

// NewConsoleWriter adapts a Console to an io.Writer.
func NewConsoleWriter(c Console) io.Writer {
	if w, ok := c.(io.Writer); ok {
		return w
	}
	return consoleWriter{c}
}
