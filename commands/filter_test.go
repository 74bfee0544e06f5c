package commands

import (
	"io"
	"testing"

	"github.com/josephlewis42/kshell/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpper(t *testing.T) {
	cases := goldenTestSuite{
		"stdin": {Args: []string{"upper"}, Stdin: "hello\nWorld"},
		"files": {
			Args:  []string{"upper", "/a.txt"},
			Files: map[string]string{"/a.txt": "mixed Case\n"},
		},
	}

	cases.Run(t, Upper)
}

func TestRev(t *testing.T) {
	cases := goldenTestSuite{
		"stdin":   {Args: []string{"rev"}, Stdin: "abc\nhello\n"},
		"unicode": {Args: []string{"rev"}, Stdin: "añb"},
	}

	cases.Run(t, Rev)
}

func TestTrueFalse(t *testing.T) {
	cmd := vostest.Command(True, "true")
	require.NoError(t, cmd.Run())
	assert.Equal(t, 0, cmd.ExitStatus)

	cmd = vostest.Command(False, "false")
	require.NoError(t, cmd.Run())
	assert.Equal(t, 1, cmd.ExitStatus)
}

// failingWriter rejects writes after limit bytes.
type failingWriter struct {
	limit int
	n     int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.limit {
		return 0, io.ErrClosedPipe
	}
	w.n += len(p)
	return len(p), nil
}

func TestYes_stopsWhenOutputCloses(t *testing.T) {
	out := &failingWriter{limit: 10}
	cmd := vostest.Command(Yes, "yes", "ok")
	cmd.Stdout = out
	cmd.Stderr = out

	require.NoError(t, cmd.Run())
	assert.Equal(t, 1, cmd.ExitStatus)
	assert.Equal(t, 9, out.n, "three complete lines fit")
}
