package vos

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/josephlewis42/kshell/core/logger"
)

var (
	// ErrNotFound is returned when a path doesn't resolve to a program.
	ErrNotFound = errors.New("executable file not found")
	// ErrResourceExhausted is returned when a fixed size table is full.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrNoSuchProcess is returned for pids that aren't in the process table.
	ErrNoSuchProcess = errors.New("no such process")
	// ErrInterrupted is returned from console reads after the reading process
	// was cancelled from the keyboard.
	ErrInterrupted = errors.New("interrupted")
	// ErrNotADirectory is returned when a directory operation targets a file.
	ErrNotADirectory = errors.New("not a directory")
)

// VIO holds the standard streams of a process.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

// VProc is the process information and control available to a program.
type VProc interface {
	// Context is cancelled when the process is interrupted.
	Context() context.Context
	// Args holds command line arguments, including the command as Args[0].
	Args() []string
	Getpid() int
	Getpgid() int
	Getwd() string
	Hostname() string
	// Processes returns a snapshot of the process table ordered by pid.
	Processes() []ProcessInfo
	// LogInvalidInvocation records that the program rejected its arguments.
	LogInvalidInvocation(err error)
}

// VOS provides a virtual OS interface.
type VOS interface {
	VIO
	VProc
	VFS
}

// ProcessFunc is a program that can be run, it returns the exit status.
type ProcessFunc func(VOS) int

// ProcessResolver looks up a program by path, it returns nil if no program
// was found.
type ProcessResolver func(path string) ProcessFunc

// ProcessInfo describes an entry in the process table.
type ProcessInfo struct {
	PID       int
	PPID      int
	PGID      int
	Path      string
	Args      []string
	StartTime time.Time
	Exited    bool
}

// EventRecorder receives machine events.
type EventRecorder interface {
	Record(event logger.LogType) error
}

// NopEventRecorder discards every event.
type NopEventRecorder struct{}

func (NopEventRecorder) Record(event logger.LogType) error {
	return nil
}
