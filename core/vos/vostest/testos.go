// Package vostest provides deterministic machines for testing programs.
package vostest

import (
	"bytes"
	"io"
	"time"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/vos"
)

// BootTime is the time every deterministic machine reports.
var BootTime = time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)

func SingleProcessResolver(process vos.ProcessFunc) vos.ProcessResolver {
	return func(path string) vos.ProcessFunc {
		return process
	}
}

// NewDeterministicMachine boots a machine from the default configuration
// with a fixed clock and an 80x25 console.
func NewDeterministicMachine(resolver vos.ProcessResolver) *vos.Machine {
	cfg := config.Default()
	m, err := vos.NewMachine(cfg, vos.MachineOptions{
		Resolver:   resolver,
		Width:      80,
		Height:     25,
		TimeSource: func() time.Time { return BootTime },
	})
	if err != nil {
		// The default configuration always boots.
		panic(err)
	}
	return m
}

// NewDeterministicOS boots a deterministic machine and returns its first
// process.
func NewDeterministicOS(resolver vos.ProcessResolver) *vos.Process {
	return NewDeterministicMachine(resolver).Boot("/sbin/init", []string{"init"})
}

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Process function
	Process vos.ProcessFunc
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the child changes into the directory before
	// creating the process.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ExitStatus int

	// VOS is the machine's first process, it can be used to set up files
	// before Run.
	VOS *vos.Process

	Setup func(vos.VOS) error
}

func Command(process vos.ProcessFunc, name string, arg ...string) *Cmd {
	return &Cmd{
		Process: process,
		Argv:    append([]string{name}, arg...),
		VOS:     NewDeterministicOS(SingleProcessResolver(process)),
	}
}

func (c *Cmd) CombinedOutput() ([]byte, error) {
	// stdout, stderr
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	err := c.Run()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run starts the comand and waits for it to complete.
func (c *Cmd) Run() error {
	if c.Setup != nil {
		if err := c.Setup(c.VOS); err != nil {
			return err
		}
	}

	stdin := c.Stdin
	if stdin == nil {
		stdin = &bytes.Buffer{}
	}

	child, err := c.VOS.StartProcess("/apps/"+c.Argv[0], c.Argv, &vos.ProcAttr{
		Dir:   c.Dir,
		Files: vos.NewVIOAdapter(stdin, c.Stdout, c.Stderr),
	})
	if err != nil {
		return err
	}

	c.ExitStatus, err = c.VOS.Wait(child.Getpid())
	return err
}
