package vos

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josephlewis42/kshell/core/logger"
)

const (
	// StatusInterrupted is the exit status of a process cancelled from the
	// keyboard.
	StatusInterrupted = 130
	// StatusPanic is the exit status of a program that panicked.
	StatusPanic = 139
)

// Scheduler runs every process of a machine as a goroutine and keeps the
// process table.
type Scheduler struct {
	ctx context.Context

	mu      sync.Mutex
	procs   map[int]*Process
	lastPID int32

	resolver ProcessResolver
	fs       VFS
	console  Console
	terminal *Terminal
	pipes    *PipeAllocator
	hostname string
	slots    int
	recorder EventRecorder
	now      func() time.Time
}

func (s *Scheduler) nextPID() int {
	return int(atomic.AddInt32(&s.lastPID, 1))
}

func (s *Scheduler) newProcess(parent *Process, path string, argv []string, table *DescriptorTable) *Process {
	ctx, cancel := context.WithCancel(s.ctx)
	p := &Process{
		sched:     s,
		pid:       s.nextPID(),
		path:      path,
		args:      argv,
		table:     table,
		startTime: s.now(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		dir:       "/",
	}
	p.VFS = NewWorkingDirFs(s.fs, p.Getwd)

	if parent != nil {
		p.ppid = parent.pid
		p.pgid = int32(parent.Getpgid())
		p.dir = parent.Getwd()
	} else {
		p.pgid = int32(p.pid)
	}
	return p
}

// attach registers a process that runs on the caller's goroutine, such as
// the shell. It leads its own group and can't be interrupted.
func (s *Scheduler) attach(path string, argv []string) *Process {
	table := NewConsoleTable(s.slots)
	p := s.newProcess(nil, path, argv, table)
	p.VIO = s.streams(p.ctx, table)

	s.mu.Lock()
	s.procs[p.pid] = p
	s.mu.Unlock()

	s.recorder.Record(&logger.Spawn{Pid: p.pid, Pgid: p.Getpgid(), Path: path, Argv: argv})
	return p
}

func (s *Scheduler) spawn(parent *Process, path string, argv []string, attr *ProcAttr) (*Process, error) {
	if attr == nil {
		attr = &ProcAttr{}
	}
	if len(argv) == 0 {
		argv = []string{path}
	}

	var fn ProcessFunc
	if s.resolver != nil {
		fn = s.resolver(path)
	}
	if fn == nil {
		s.recorder.Record(&logger.UnknownCommand{Command: argv, Path: path})
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	table := attr.Table
	if table == nil {
		table = NewConsoleTable(s.slots)
	}

	p := s.newProcess(parent, path, argv, table)
	p.interruptible = true
	if attr.Files != nil {
		p.VIO = attr.Files
	} else {
		p.VIO = s.streams(p.ctx, table)
	}

	if attr.Dir != "" {
		if err := p.Chdir(attr.Dir); err != nil {
			p.cancel()
			return nil, err
		}
	}

	s.mu.Lock()
	s.procs[p.pid] = p
	s.mu.Unlock()

	s.recorder.Record(&logger.Spawn{Pid: p.pid, Pgid: p.Getpgid(), Path: path, Argv: argv})
	go s.run(p, fn)
	return p, nil
}

func (s *Scheduler) run(p *Process, fn ProcessFunc) {
	status := StatusPanic
	defer func() {
		if r := recover(); r != nil {
			s.recorder.Record(&logger.Panic{
				Context:    fmt.Sprintf("%s: %v", p.path, r),
				Stacktrace: string(debug.Stack()),
			})
			fmt.Fprintf(p.Stderr(), "%s: crashed\n", p.args[0])
		}
		s.exit(p, status)
	}()

	status = fn(p)
}

func (s *Scheduler) exit(p *Process, status int) {
	p.exitOnce.Do(func() {
		if p.wasInterrupted() {
			status = StatusInterrupted
		}
		p.status = status
		p.table.Release()
		p.cancel()
		close(p.done)

		s.recorder.Record(&logger.Exit{
			Pid:         p.pid,
			Path:        p.path,
			Status:      status,
			Interrupted: p.wasInterrupted(),
		})
	})
}

func (s *Scheduler) lookup(pid int) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.procs[pid]
	if !ok {
		return nil, fmt.Errorf("pid %d: %w", pid, ErrNoSuchProcess)
	}
	return p, nil
}

func (s *Scheduler) wait(pid int) (int, error) {
	p, err := s.lookup(pid)
	if err != nil {
		return -1, err
	}

	<-p.done

	s.mu.Lock()
	delete(s.procs, pid)
	s.mu.Unlock()

	return p.status, nil
}

func (s *Scheduler) assignGroup(pid, group int) error {
	if group < 0 {
		return fmt.Errorf("group %d: %w", group, ErrNoSuchProcess)
	}
	if group == 0 {
		group = pid
	}

	p, err := s.lookup(pid)
	if err != nil {
		return err
	}
	atomic.StoreInt32(&p.pgid, int32(group))
	return nil
}

// Interrupt cancels every interruptible process in group and returns how
// many were cancelled.
func (s *Scheduler) Interrupt(group int) int {
	s.mu.Lock()
	var targets []*Process
	for _, p := range s.procs {
		if p.interruptible && p.Getpgid() == group && !p.exited() {
			targets = append(targets, p)
		}
	}
	s.mu.Unlock()

	for _, p := range targets {
		p.interrupt()
	}
	return len(targets)
}

// Processes returns a snapshot of the process table ordered by pid.
func (s *Scheduler) Processes() []ProcessInfo {
	s.mu.Lock()
	var out []ProcessInfo
	for _, p := range s.procs {
		out = append(out, p.Info())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].PID < out[j].PID
	})
	return out
}
