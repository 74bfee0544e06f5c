package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonLinesRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)
	l.now = func() time.Time { return time.Unix(1, 500) }

	session := l.NewSession()
	require.NoError(t, session.Record(&RunCommand{Line: "cat foo | upper", Kind: "pipeline"}))
	require.NoError(t, session.Record(&Spawn{Pid: 4, Pgid: 4, Path: "/apps/cat", Argv: []string{"cat", "foo"}}))
	require.NoError(t, l.Sessionless().Record(&Exit{Pid: 4, Path: "/apps/cat", Status: 1}))

	var entries []*LogEntry
	require.NoError(t, ReadJSONLinesLog(buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))

	require.Len(t, entries, 3)
	assert.Equal(t, int64(1000000), entries[0].TimestampMicros)
	assert.Equal(t, session.SessionID(), entries[0].SessionId)
	assert.Equal(t, &RunCommand{Line: "cat foo | upper", Kind: "pipeline"}, entries[0].GetLogType())
	assert.Equal(t, "/apps/cat", entries[1].Spawn.Path)
	assert.Empty(t, entries[2].SessionId)
	assert.Equal(t, 1, entries[2].Exit.Status)
}

func TestReport(t *testing.T) {
	var r Report
	for _, event := range []LogType{
		&SessionStart{Hostname: "kshell"},
		&RunCommand{Line: "ls /", Kind: "builtin"},
		&RunCommand{Line: "ls", Kind: "builtin"},
		&Spawn{Pid: 2, Path: "/apps/cat"},
		&Exit{Pid: 2, Status: 0},
		&Exit{Pid: 3, Status: 130, Interrupted: true},
		&UnknownCommand{Command: []string{"vim"}, Path: "/apps/vim"},
		&Foreground{Pgid: 2},
	} {
		le := &LogEntry{}
		event.setOn(le)
		r.Update(le)
	}
	r.Update(&LogEntry{})

	assert.Equal(t, 9, r.LogEntries)
	assert.Equal(t, 1, r.Sessions.Count)
	assert.Equal(t, 2, r.RunCommand.Verbs.Get("ls"))
	assert.Equal(t, 1, r.Process.Spawned)
	assert.Equal(t, 1, r.Process.Interrupted)
	assert.Equal(t, 1, r.UnknownCommand.CommandNames.Get("vim"))
	assert.Equal(t, 1, r.InvalidEntries.Get("<nil>"))
}

func TestBugReport(t *testing.T) {
	r := NewBugReport()
	r.Update(&LogEntry{CommandError: &CommandError{Command: []string{"grep"}, Error: "missing argument PATTERN"}})
	r.Update(&LogEntry{CommandError: &CommandError{Command: []string{"grep"}, Error: "missing argument PATTERN"}})
	r.Update(&LogEntry{Panic: &Panic{Context: "/apps/cat"}})

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"log_entries": 3,
		"command_errors": [{"count": 2, "event": {"command": "grep", "error": "missing argument PATTERN"}}],
		"unknown_commands": [],
		"panics": [{"context": "/apps/cat", "stacktrace": ""}]
	}`, string(out))
}

func TestNewSession_uniqueIDs(t *testing.T) {
	l := NewNopLogger()

	first, second := l.NewSession().SessionID(), l.NewSession().SessionID()
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
	assert.Empty(t, l.Sessionless().SessionID())
}
