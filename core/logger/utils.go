package logger

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger stamps machine events and hands them to a LogRecorder.
type Logger struct {
	Record LogRecorder

	// now is overridden in tests.
	now func() time.Time
}

// NewJsonLinesLogRecorder creates a Logger that writes one JSON object per
// line to w. It's safe to use from concurrent processes.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	encoder := json.NewEncoder(w)
	return &Logger{
		Record: func(le *LogEntry) error {
			mu.Lock()
			defer mu.Unlock()
			return encoder.Encode(le)
		},
	}
}

// NewNopLogger creates a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{
		Record: func(*LogEntry) error { return nil },
	}
}

func (l *Logger) timestamp() int64 {
	if l.now != nil {
		return l.now().UnixNano() / int64(time.Microsecond)
	}
	return time.Now().UnixNano() / int64(time.Microsecond)
}

// NewSession creates a logger that tags events with a new random session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString()}
}

// Sessionless creates a logger for events outside of any session.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID gets the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record logs the event.
func (l *SessionLogger) Record(event LogType) error {
	le := &LogEntry{
		TimestampMicros: l.timestamp(),
		SessionId:       l.sessionID,
	}
	event.setOn(le)
	return l.Logger.Record(le)
}
