package core

import (
	"context"
	"io/ioutil"
	"log"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/logger"
	"github.com/josephlewis42/kshell/core/ttylog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
)

func newTestServer(t *testing.T) (*config.Configuration, string, *syncBuffer) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, config.Initialize(dir, log.New(ioutil.Discard, "", 0)))
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	appLog := &syncBuffer{}
	server, err := NewServer(cfg, appLog, log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(l)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	return cfg, l.Addr().String(), appLog
}

func dial(t *testing.T, addr string) *gossh.Client {
	t.Helper()

	client, err := gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "guest",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestServer_session(t *testing.T) {
	cfg, addr, appLog := newTestServer(t)
	client := dial(t, addr)

	sess, err := client.NewSession()
	require.NoError(t, err)
	require.NoError(t, sess.RequestPty("xterm", 24, 100, gossh.TerminalModes{}))

	var stdout syncBuffer
	sess.Stdout = &stdout
	sess.Stdin = strings.NewReader("echo hello | rev\rexit\r")
	require.NoError(t, sess.Shell())
	require.NoError(t, sess.Wait())

	assert.Contains(t, stdout.String(), "olleh\r\n")

	// The session was logged.
	var starts []*logger.SessionStart
	require.NoError(t, logger.ReadJSONLinesLog(strings.NewReader(appLog.String()), func(le *logger.LogEntry) {
		if le.SessionStart != nil {
			starts = append(starts, le.SessionStart)
		}
	}))
	require.Len(t, starts, 1)
	assert.Equal(t, "guest", starts[0].User)
	assert.Equal(t, 100, starts[0].Width)
	assert.Equal(t, 24, starts[0].Height)

	// And recorded.
	recording, err := cfg.OpenRecording(starts[0].TTYLog)
	require.NoError(t, err)
	defer recording.Close()

	var replayed strings.Builder
	source := ttylog.NewAsciicastLogSource(recording)
	require.NoError(t, ttylog.Replay(source, ttylog.NewClientOutput(&replayed)))
	assert.Contains(t, replayed.String(), "olleh\r\n")

	width, height, err := source.Size()
	require.NoError(t, err)
	assert.Equal(t, 100, width)
	assert.Equal(t, 24, height)
}

func TestServer_requiresPty(t *testing.T) {
	_, addr, _ := newTestServer(t)
	client := dial(t, addr)

	sess, err := client.NewSession()
	require.NoError(t, err)

	out, err := sess.CombinedOutput("ls")
	assert.Error(t, err)
	assert.Contains(t, string(out), "a terminal is required")
}
