package shell

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/kshell/core/vos"
)

var (
	// ErrSyntax is returned for malformed redirections and pipelines.
	ErrSyntax = errors.New("syntax error")
	// ErrNotFound is returned when a verb doesn't name a program.
	ErrNotFound = errors.New("command not found")
	// ErrSpawnFailure is returned when a program exists but couldn't start.
	ErrSpawnFailure = errors.New("failed to spawn")
	// ErrResourceExhausted is returned when a pipe, descriptor slot or
	// pipeline stage bound is exceeded.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrPathNotFound is returned when a path doesn't exist.
	ErrPathNotFound = errors.New("no such file or directory")
	// ErrNotADirectory is returned when a directory was expected.
	ErrNotADirectory = errors.New("not a directory")
	// ErrInterrupted is returned by the line editor on Ctrl+C.
	ErrInterrupted = errors.New("interrupted")
)

// spawnError maps a scheduler failure for verb onto the shell's errors.
func spawnError(verb string, err error) error {
	switch {
	case errors.Is(err, vos.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, verb)
	case errors.Is(err, vos.ErrResourceExhausted):
		return fmt.Errorf("%w: %s", ErrResourceExhausted, verb)
	default:
		return fmt.Errorf("%w: %s: %v", ErrSpawnFailure, verb, err)
	}
}

// pathError maps a filesystem failure for name onto the shell's errors.
func pathError(name string, err error) error {
	switch {
	case errors.Is(err, vos.ErrNotADirectory):
		return fmt.Errorf("%w: %s", ErrNotADirectory, name)
	default:
		return fmt.Errorf("%w: %s", ErrPathNotFound, name)
	}
}
