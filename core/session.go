// Package core wires machines, shells and consoles together.
package core

import (
	"context"
	"io"

	"github.com/josephlewis42/kshell/commands"
	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/shell"
	"github.com/josephlewis42/kshell/core/vos"
	"github.com/juju/ratelimit"
)

// ShellPath is where the shell runs from on every machine.
const ShellPath = "/bin/kshell"

// SessionOptions describe the console a session is attached to.
type SessionOptions struct {
	// Width and Height of the console, the configured size is used if zero.
	Width  int
	Height int
	// Output receives the console as ANSI escape sequences.
	Output io.Writer
	// Recorder receives machine events, it may be nil.
	Recorder vos.EventRecorder
}

// Session is a freshly booted machine running the shell.
type Session struct {
	Machine *vos.Machine
	Shell   *shell.Shell
}

// NewSession boots a machine with every registered program installed.
func NewSession(cfg *config.Configuration, opts SessionOptions) (*Session, error) {
	output := opts.Output
	if output != nil && cfg.Console.OutputBytesPerSecond > 0 {
		output = throttle(output, cfg.Console.OutputBytesPerSecond)
	}

	machine, err := vos.NewMachine(cfg, vos.MachineOptions{
		Resolver: commands.Resolver(cfg.Shell.ProgramDir),
		Programs: commands.ListCommands(),
		Mirror:   output,
		Recorder: opts.Recorder,
		Width:    opts.Width,
		Height:   opts.Height,
	})
	if err != nil {
		return nil, err
	}

	proc := machine.Boot(ShellPath, []string{"kshell"})
	return &Session{
		Machine: machine,
		Shell:   shell.NewFromMachine(machine, proc, opts.Recorder),
	}, nil
}

// Run feeds keystrokes from keyboard to the machine and runs the shell until
// it exits or the keyboard closes. The machine is shut down afterwards and
// the shell's last exit status returned.
func (s *Session) Run(ctx context.Context, keyboard io.Reader) int {
	go s.Machine.Terminal.ReadFrom(keyboard)
	defer s.Machine.Shutdown()

	return s.Shell.Run(ctx)
}

// throttle limits writes to w to rate bytes per second, emulating a serial
// console.
func throttle(w io.Writer, rate int64) io.Writer {
	return ratelimit.Writer(w, ratelimit.NewBucketWithRate(float64(rate), rate))
}
