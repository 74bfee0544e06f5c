// Package shell is the interactive command interpreter that runs as the first
// process of a machine.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/logger"
	"github.com/josephlewis42/kshell/core/vos"
)

// DefaultPrompt shows the working directory.
const DefaultPrompt = `\w $ `

// Process is the shell's own process. *vos.Process implements it.
type Process interface {
	Scheduler
	vos.VFS

	Getwd() string
	Chdir(dir string) error
	Hostname() string
	NewPipe() (*vos.Pipe, error)
}

// Options tune the shell, see config.Shell and config.Limits.
type Options struct {
	Prompt            string
	Motd              string
	ProgramDir        string
	LineCapacity      int
	MaxPipelineStages int
	DescriptorSlots   int

	// Recorder receives the commands the shell runs, it may be nil.
	Recorder vos.EventRecorder
}

// OptionsFromConfig reads the shell's options from the configuration.
func OptionsFromConfig(cfg *config.Configuration) Options {
	return Options{
		Prompt:            cfg.Shell.Prompt,
		Motd:              cfg.Motd,
		ProgramDir:        cfg.Shell.ProgramDir,
		LineCapacity:      cfg.Limits.LineCapacity,
		MaxPipelineStages: cfg.Limits.MaxPipelineStages,
		DescriptorSlots:   cfg.Limits.DescriptorSlots,
	}
}

// Shell reads lines from the keyboard and runs them.
type Shell struct {
	proc     Process
	console  vos.Console
	out      io.Writer
	editor   *Editor
	jobs     *JobController
	opts     Options
	recorder vos.EventRecorder

	// LastStatus is the exit status of the last program that ran.
	LastStatus int

	exited bool
}

// New creates a shell acting as proc.
func New(proc Process, console vos.Console, keyboard Keyboard, fg Foreground, opts Options) *Shell {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}

	s := &Shell{
		proc:    proc,
		console: console,
		out:     vos.NewConsoleWriter(console),
		editor: &Editor{
			Console:  console,
			Keyboard: keyboard,
			Capacity: opts.LineCapacity,
		},
		jobs:     NewJobController(proc, fg),
		opts:     opts,
		recorder: opts.Recorder,
	}
	if s.recorder == nil {
		s.recorder = vos.NopEventRecorder{}
	}

	s.jobs.OnSpawnError = s.printError
	return s
}

// NewFromMachine creates a shell for the machine's first process.
func NewFromMachine(m *vos.Machine, proc *vos.Process, recorder vos.EventRecorder) *Shell {
	opts := OptionsFromConfig(m.Config)
	opts.Recorder = recorder
	return New(proc, m.Screen, m.Terminal, m.Terminal, opts)
}

// Prompt expands the prompt template.
func (s *Shell) Prompt() string {
	prompt := s.opts.Prompt
	prompt = strings.ReplaceAll(prompt, `\h`, s.proc.Hostname())
	prompt = strings.ReplaceAll(prompt, `\w`, s.proc.Getwd())
	return prompt
}

// Run prints the motd, then reads and executes lines until exit is run or
// the keyboard goes away. It returns the last exit status.
func (s *Shell) Run(ctx context.Context) int {
	if s.opts.Motd != "" {
		fmt.Fprint(s.out, s.opts.Motd)
	}

	for !s.exited {
		fmt.Fprint(s.out, s.Prompt())

		line, err := s.editor.ReadLine(ctx)
		switch {
		case errors.Is(err, ErrInterrupted):
			continue
		case err != nil:
			return s.LastStatus
		}

		if err := s.Execute(line); err != nil {
			s.printError(err)
		}
	}

	return s.LastStatus
}

// Execute runs a single line.
func (s *Shell) Execute(line string) error {
	cmd := ParseCommand(line)
	action := Classify(line, IsBuiltin)
	if action == ActionNone {
		return nil
	}

	s.recorder.Record(&logger.RunCommand{Line: strings.Trim(line, blanks), Kind: action.String()})

	var err error
	switch action {
	case ActionRedirect:
		err = s.runRedirect(line)
	case ActionPipeline:
		err = s.runPipeline(line)
	case ActionBuiltin:
		err = AllBuiltins[cmd.Verb].Main(s, cmd.Arg)
	case ActionExternal:
		err = s.runExternal(cmd)
	}

	if err != nil {
		s.recorder.Record(&logger.CommandError{Command: cmd.Argv(), Error: err.Error()})
	}
	return err
}

// Exited reports whether the exit builtin ran.
func (s *Shell) Exited() bool {
	return s.exited
}

func (s *Shell) runExternal(cmd Command) error {
	status, err := s.jobs.RunForeground(Stage{
		Command: cmd,
		Path:    ProgramPath(cmd.Verb, s.opts.ProgramDir),
		Table:   vos.NewConsoleTable(s.opts.DescriptorSlots),
	})
	if err != nil {
		return err
	}
	s.LastStatus = status
	return nil
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.out, "kshell: %v\n", err)
}
