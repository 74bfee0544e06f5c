package vos

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRecorder struct {
	events chan logger.LogType
}

func (r *recordingRecorder) Record(event logger.LogType) error {
	select {
	case r.events <- event:
	default:
	}
	return nil
}

func newTestMachine(t *testing.T, programs map[string]ProcessFunc) (*Machine, *Process) {
	t.Helper()

	m, err := NewMachine(config.Default(), MachineOptions{
		Resolver: func(path string) ProcessFunc {
			return programs[path]
		},
		Width:  40,
		Height: 10,
	})
	require.NoError(t, err)
	t.Cleanup(m.Shutdown)

	return m, m.Boot("/apps/shell", []string{"shell"})
}

func TestScheduler_spawnAndWait(t *testing.T) {
	_, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/three": func(VOS) int { return 3 },
	})

	pid, err := shell.Spawn("/apps/three", []string{"three"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, shell.Getpid(), pid)

	status, err := shell.Wait(pid)
	require.NoError(t, err)
	assert.Equal(t, 3, status)

	// Reaped processes are gone.
	_, err = shell.Wait(pid)
	assert.True(t, errors.Is(err, ErrNoSuchProcess))
}

func TestScheduler_spawnNotFound(t *testing.T) {
	_, shell := newTestMachine(t, nil)

	_, err := shell.Spawn("/apps/missing", []string{"missing"}, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestScheduler_AssignGroup(t *testing.T) {
	release := make(chan struct{})
	_, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/block": func(VOS) int {
			<-release
			return 0
		},
	})

	first, err := shell.Spawn("/apps/block", nil, nil)
	require.NoError(t, err)
	second, err := shell.Spawn("/apps/block", nil, nil)
	require.NoError(t, err)

	groups := func() map[int]int {
		out := make(map[int]int)
		for _, info := range shell.Processes() {
			out[info.PID] = info.PGID
		}
		return out
	}

	// Children start in the shell's group.
	assert.Equal(t, shell.Getpgid(), groups()[first])

	require.NoError(t, shell.AssignGroup(first, 0))
	require.NoError(t, shell.AssignGroup(second, first))
	assert.Equal(t, first, groups()[first])
	assert.Equal(t, first, groups()[second])

	// pid 0 is the caller.
	require.NoError(t, shell.AssignGroup(0, 0))
	assert.Equal(t, shell.Getpid(), shell.Getpgid())

	assert.True(t, errors.Is(shell.AssignGroup(9999, 0), ErrNoSuchProcess))

	close(release)
	shell.Wait(first)
	shell.Wait(second)
}

func TestScheduler_interruptForegroundGroup(t *testing.T) {
	started := make(chan struct{})
	m, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/sleep": func(p VOS) int {
			close(started)
			<-p.Context().Done()
			return 0
		},
	})

	pid, err := shell.Spawn("/apps/sleep", []string{"sleep"}, nil)
	require.NoError(t, err)
	require.NoError(t, shell.AssignGroup(pid, 0))
	m.Terminal.SetForeground(pid)
	<-started

	m.Terminal.Deliver(KeyEvent{Key: 'c', Pressed: true, Modifiers: ModCtrl})

	status, err := shell.Wait(pid)
	require.NoError(t, err)
	assert.Equal(t, StatusInterrupted, status)
}

func TestScheduler_shellIsNotInterruptible(t *testing.T) {
	m, shell := newTestMachine(t, nil)

	assert.Equal(t, 0, m.Scheduler.Interrupt(shell.Getpgid()))
	assert.Nil(t, shell.Context().Err())
}

func TestScheduler_pipeBetweenProcesses(t *testing.T) {
	received := make(chan string, 1)
	m, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/hello": func(p VOS) int {
			fmt.Fprint(p.Stdout(), "hello through a pipe")
			return 0
		},
		"/apps/collect": func(p VOS) int {
			out, _ := ioutil.ReadAll(p.Stdin())
			received <- string(out)
			return 0
		},
	})

	pipe, err := shell.NewPipe()
	require.NoError(t, err)

	writerTable := NewConsoleTable(8)
	writerTable.Set(1, PipeWriteDescriptor(pipe))
	readerTable := NewConsoleTable(8)
	readerTable.Set(0, PipeReadDescriptor(pipe))

	writer, err := shell.Spawn("/apps/hello", nil, writerTable)
	require.NoError(t, err)
	reader, err := shell.Spawn("/apps/collect", nil, readerTable)
	require.NoError(t, err)

	shell.Wait(writer)
	shell.Wait(reader)

	assert.Equal(t, "hello through a pipe", <-received)
	assert.Equal(t, 0, m.Pipes.Live(), "both ends released on exit")
}

func TestScheduler_fileDescriptor(t *testing.T) {
	m, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/hello": func(p VOS) int {
			fmt.Fprint(p.Stdout(), "world")
			return 0
		},
	})

	require.NoError(t, afero.WriteFile(m.FS, "/tmp/out", []byte("hello "), 0644))
	node, err := m.FS.OpenFile("/tmp/out", os.O_RDWR, 0644)
	require.NoError(t, err)
	defer node.Close()

	table := NewConsoleTable(8)
	table.Set(1, FileDescriptor(node, 6, OWrOnly))
	pid, err := shell.Spawn("/apps/hello", nil, table)
	require.NoError(t, err)
	shell.Wait(pid)

	got, err := afero.ReadFile(m.FS, "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestScheduler_consoleIO(t *testing.T) {
	m, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/echo": func(p VOS) int {
			line, _ := ioutil.ReadAll(p.Stdin())
			fmt.Fprintf(p.Stdout(), "got %s", line)
			return 0
		},
	})

	var decoder KeyDecoder
	for _, ev := range decoder.Feed([]byte("abc\r\x04")) {
		m.Terminal.Deliver(ev)
	}

	pid, err := shell.Spawn("/apps/echo", nil, nil)
	require.NoError(t, err)
	shell.Wait(pid)

	assert.Equal(t, "abc\ngot abc", m.Screen.String())
}

func TestScheduler_panicIsContained(t *testing.T) {
	recorder := &recordingRecorder{events: make(chan logger.LogType, 16)}
	m, err := NewMachine(config.Default(), MachineOptions{
		Resolver: func(string) ProcessFunc {
			return func(VOS) int { panic("boom") }
		},
		Recorder: recorder,
	})
	require.NoError(t, err)
	defer m.Shutdown()
	shell := m.Boot("/apps/shell", []string{"shell"})

	pid, err := shell.Spawn("/apps/boom", []string{"boom"}, nil)
	require.NoError(t, err)
	status, err := shell.Wait(pid)
	require.NoError(t, err)
	assert.Equal(t, StatusPanic, status)
	assert.Contains(t, m.Screen.String(), "boom: crashed")

	timeout := time.After(time.Second)
	for {
		select {
		case ev := <-recorder.events:
			if p, ok := ev.(*logger.Panic); ok {
				assert.Contains(t, p.Context, "boom")
				return
			}
		case <-timeout:
			t.Fatal("no panic event")
		}
	}
}

func TestProcess_Chdir(t *testing.T) {
	m, shell := newTestMachine(t, nil)
	require.NoError(t, afero.WriteFile(m.FS, "/home/file", nil, 0644))

	require.NoError(t, shell.Chdir("home"))
	assert.Equal(t, "/home", shell.Getwd())

	err := shell.Chdir("file")
	assert.True(t, errors.Is(err, ErrNotADirectory))

	err = shell.Chdir("/nope")
	assert.NotNil(t, err)
	assert.Equal(t, "/home", shell.Getwd())

	// Relative paths resolve from the working directory.
	_, err = shell.Stat("file")
	assert.NoError(t, err)
}

func TestProcess_StartProcessFiles(t *testing.T) {
	_, shell := newTestMachine(t, map[string]ProcessFunc{
		"/apps/pwd": func(p VOS) int {
			io.WriteString(p.Stdout(), p.Getwd())
			return 0
		},
	})

	var out stringWriter
	child, err := shell.StartProcess("/apps/pwd", []string{"pwd"}, &ProcAttr{
		Dir:   "/tmp",
		Files: NewVIOAdapter(nil, &out, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, child.ExitStatus())
	assert.Equal(t, "/tmp", out.String())
}

type stringWriter struct {
	buf []byte
}

func (w *stringWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *stringWriter) String() string {
	return string(w.buf)
}
