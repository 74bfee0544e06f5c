package vos

import (
	"context"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josephlewis42/kshell/core/logger"
)

// ProcAttr holds the attributes of a new process.
type ProcAttr struct {
	// Table holds the descriptors of the new process, if nil stdin, stdout
	// and stderr are the console.
	Table *DescriptorTable

	// Files overrides the streams built from Table.
	Files VIO

	// If Dir is non-empty, the child changes into the directory before
	// it starts.
	Dir string
}

// Process is a running program. It implements VOS for the program and gives
// its owner the caller-relative process calls: Spawn, Wait and AssignGroup
// act on behalf of this process.
type Process struct {
	VIO
	VFS

	sched *Scheduler

	pid       int
	ppid      int
	pgid      int32
	path      string
	args      []string
	table     *DescriptorTable
	startTime time.Time

	ctx           context.Context
	cancel        context.CancelFunc
	interruptible bool
	interrupted   int32

	dirMu sync.Mutex
	dir   string

	exitOnce sync.Once
	done     chan struct{}
	status   int
}

var _ VOS = (*Process)(nil)

// Context implements VProc.Context.
func (p *Process) Context() context.Context {
	return p.ctx
}

// Args implements VProc.Args.
func (p *Process) Args() []string {
	return p.args
}

// Getpid implements VProc.Getpid.
func (p *Process) Getpid() int {
	return p.pid
}

// Getpgid implements VProc.Getpgid.
func (p *Process) Getpgid() int {
	return int(atomic.LoadInt32(&p.pgid))
}

// Getwd implements VProc.Getwd.
func (p *Process) Getwd() string {
	p.dirMu.Lock()
	defer p.dirMu.Unlock()
	return p.dir
}

// Chdir changes the working directory.
func (p *Process) Chdir(dir string) error {
	dir = ResolvePath(p.Getwd(), dir)

	stat, err := p.sched.fs.Stat(dir)
	switch {
	case err != nil:
		return err
	case !stat.IsDir():
		return fmt.Errorf("%s: %w", dir, ErrNotADirectory)
	}

	p.dirMu.Lock()
	defer p.dirMu.Unlock()
	p.dir = dir
	return nil
}

// Hostname implements VProc.Hostname.
func (p *Process) Hostname() string {
	return p.sched.hostname
}

// Processes implements VProc.Processes.
func (p *Process) Processes() []ProcessInfo {
	return p.sched.Processes()
}

// LogInvalidInvocation implements VProc.LogInvalidInvocation.
func (p *Process) LogInvalidInvocation(err error) {
	p.sched.recorder.Record(&logger.CommandError{
		Command: p.args,
		Error:   err.Error(),
	})
}

// Info describes the process.
func (p *Process) Info() ProcessInfo {
	return ProcessInfo{
		PID:       p.pid,
		PPID:      p.ppid,
		PGID:      p.Getpgid(),
		Path:      p.path,
		Args:      p.args,
		StartTime: p.startTime,
		Exited:    p.exited(),
	}
}

func (p *Process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Spawn starts the program at path as a child in the caller's process group.
// argv[0] should be the program name.
func (p *Process) Spawn(path string, argv []string, table *DescriptorTable) (int, error) {
	child, err := p.StartProcess(path, argv, &ProcAttr{Table: table})
	if err != nil {
		return 0, err
	}
	return child.pid, nil
}

// StartProcess is Spawn returning the child.
func (p *Process) StartProcess(path string, argv []string, attr *ProcAttr) (*Process, error) {
	return p.sched.spawn(p, path, argv, attr)
}

// Wait blocks until pid terminates, reaps it and returns its exit status.
func (p *Process) Wait(pid int) (int, error) {
	return p.sched.wait(pid)
}

// AssignGroup moves pid into group. A pid of 0 means the caller and a group
// of 0 means a new group whose id is the pid.
func (p *Process) AssignGroup(pid, group int) error {
	if pid == 0 {
		pid = p.pid
	}
	return p.sched.assignGroup(pid, group)
}

// NewPipe allocates a pipe from the machine.
func (p *Process) NewPipe() (*Pipe, error) {
	return p.sched.pipes.Allocate()
}

// Exit terminates an attached process. Spawned processes exit by returning
// from their ProcessFunc.
func (p *Process) Exit(status int) {
	p.sched.exit(p, status)
}

// Done is closed once the process has terminated.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ExitStatus is valid once Done is closed.
func (p *Process) ExitStatus() int {
	<-p.done
	return p.status
}

func (p *Process) interrupt() {
	atomic.StoreInt32(&p.interrupted, 1)
	p.cancel()
	p.table.Release()
}

func (p *Process) wasInterrupted() bool {
	return atomic.LoadInt32(&p.interrupted) == 1
}

func (p *Process) String() string {
	return fmt.Sprintf("%d(%s)", p.pid, path.Base(p.path))
}
