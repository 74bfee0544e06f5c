package shell

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/josephlewis42/kshell/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateOf(text string, capacity int) EditorState {
	s := NewEditorState(capacity)
	for i := 0; i < len(text); i++ {
		s = Insert(s, text[i])
	}
	return s
}

func TestEditorState_editing(t *testing.T) {
	s := stateOf("abc", 10)
	assert.Equal(t, "abc", s.String())
	assert.Equal(t, 3, s.Pos)

	s = MoveLeft(MoveLeft(s))
	assert.Equal(t, 1, s.Pos)

	s = Insert(s, 'X')
	assert.Equal(t, "aXbc", s.String())
	assert.Equal(t, 2, s.Pos)

	s = Backspace(s)
	assert.Equal(t, "abc", s.String())
	assert.Equal(t, 1, s.Pos)
}

func TestEditorState_bounds(t *testing.T) {
	s := stateOf("ab", 2)

	full := Insert(s, 'c')
	assert.Equal(t, "ab", full.String(), "a full line is unchanged")

	s = MoveRight(s)
	assert.Equal(t, 2, s.Pos)

	s = MoveLeft(MoveLeft(MoveLeft(s)))
	assert.Equal(t, 0, s.Pos)

	s = Backspace(s)
	assert.Equal(t, "ab", s.String(), "backspace at the start does nothing")
}

func TestEditorState_pure(t *testing.T) {
	before := stateOf("abc", 10)
	before = MoveLeft(before)

	after := Insert(before, 'X')
	assert.Equal(t, "abc", before.String())
	assert.Equal(t, 2, before.Pos)
	assert.Equal(t, "abXc", after.String())

	removed := Backspace(before)
	assert.Equal(t, "abc", before.String())
	assert.Equal(t, "ac", removed.String())
}

func TestPlaceCursor(t *testing.T) {
	cases := map[string]struct {
		anchor  Anchor
		pos     int
		width   int
		wantRow int
		wantCol int
	}{
		"start":       {anchor: Anchor{Row: 2, Col: 4}, pos: 0, width: 10, wantRow: 2, wantCol: 4},
		"same row":    {anchor: Anchor{Row: 2, Col: 4}, pos: 5, width: 10, wantRow: 2, wantCol: 9},
		"wraps":       {anchor: Anchor{Row: 2, Col: 4}, pos: 6, width: 10, wantRow: 3, wantCol: 0},
		"second wrap": {anchor: Anchor{Row: 0, Col: 0}, pos: 25, width: 10, wantRow: 2, wantCol: 5},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			row, col := PlaceCursor(tc.anchor, tc.pos, tc.width)
			assert.Equal(t, tc.wantRow, row)
			assert.Equal(t, tc.wantCol, col)
		})
	}
}

func TestRender_blanksLeftovers(t *testing.T) {
	screen := vos.NewScreen(20, 3, nil)
	anchor := Anchor{Row: 0, Col: 2}

	s := Render(stateOf("hello", 10), anchor, screen)
	assert.Equal(t, 5, s.Rendered)
	assert.Equal(t, "  hello", screen.String())

	s = Backspace(Backspace(s))
	s = Render(s, anchor, screen)
	assert.Equal(t, 3, s.Rendered)
	assert.Equal(t, "  hel", screen.String())
}

// scriptedKeyboard replays events and reports EOF once they run out.
type scriptedKeyboard struct {
	events []vos.KeyEvent
}

func (k *scriptedKeyboard) PollEvent() (vos.KeyEvent, bool) {
	if len(k.events) == 0 {
		return vos.KeyEvent{}, false
	}
	ev := k.events[0]
	k.events = k.events[1:]
	return ev, true
}

func (k *scriptedKeyboard) WaitInterrupt(context.Context) error {
	if len(k.events) == 0 {
		return io.EOF
	}
	return nil
}

func (k *scriptedKeyboard) typeText(text string) *scriptedKeyboard {
	for i := 0; i < len(text); i++ {
		k.press(vos.Key(text[i]))
	}
	return k
}

func (k *scriptedKeyboard) press(key vos.Key) *scriptedKeyboard {
	k.events = append(k.events,
		vos.KeyEvent{Key: key, Pressed: true},
		vos.KeyEvent{Key: key, Pressed: false},
	)
	return k
}

func TestEditor_ReadLine(t *testing.T) {
	screen := vos.NewScreen(20, 5, nil)
	screen.Write([]byte("$ "))

	keys := (&scriptedKeyboard{}).
		typeText("abc").
		press(vos.KeyLeft).
		press(vos.KeyLeft).
		typeText("X").
		press(vos.KeyBackspace).
		press(vos.KeyRight).
		press(vos.KeyRight).
		typeText("d\n")

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 10}
	line, err := editor.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abcd", line)
	assert.Equal(t, "$ abcd", screen.String())

	row, col := screen.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

func TestEditor_ReadLineMidLineEnter(t *testing.T) {
	screen := vos.NewScreen(20, 5, nil)

	keys := (&scriptedKeyboard{}).
		typeText("abc").
		press(vos.KeyLeft).
		typeText("\n")

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 10}
	line, err := editor.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", line)

	// The newline goes after the whole line, not at the cursor.
	assert.Equal(t, "abc", screen.String())
	row, _ := screen.Cursor()
	assert.Equal(t, 1, row)
}

func TestEditor_ReadLineCapacity(t *testing.T) {
	screen := vos.NewScreen(20, 5, nil)
	keys := (&scriptedKeyboard{}).typeText("abcdef\n")

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 4}
	line, err := editor.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abcd", line)
}

func TestEditor_ReadLineWraps(t *testing.T) {
	screen := vos.NewScreen(8, 3, nil)
	screen.Write([]byte("$ "))

	keys := (&scriptedKeyboard{}).
		typeText("0123456789").
		press(vos.KeyBackspace).
		typeText("\n")

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 20}
	line, err := editor.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "012345678", line)
	assert.Equal(t, "$ 012345\n678", screen.String())
}

func TestEditor_ReadLineInterrupt(t *testing.T) {
	screen := vos.NewScreen(20, 5, nil)
	keys := (&scriptedKeyboard{}).typeText("rm -rf")
	keys.events = append(keys.events, vos.KeyEvent{Key: 'c', Pressed: true, Modifiers: vos.ModCtrl})

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 20}
	line, err := editor.ReadLine(context.Background())
	assert.True(t, errors.Is(err, ErrInterrupted))
	assert.Equal(t, "", line)
	assert.Equal(t, "rm -rf^C", screen.String())
}

func TestEditor_ReadLineEOF(t *testing.T) {
	screen := vos.NewScreen(20, 5, nil)
	keys := (&scriptedKeyboard{}).typeText("partial")

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 20}
	_, err := editor.ReadLine(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestEditor_ignoresControlKeys(t *testing.T) {
	screen := vos.NewScreen(20, 5, nil)
	keys := (&scriptedKeyboard{}).
		typeText("a").
		press(vos.KeyUp).
		press(vos.KeyTab).
		typeText("b\n")

	editor := &Editor{Console: screen, Keyboard: keys, Capacity: 20}
	line, err := editor.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
}
