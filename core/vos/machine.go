package vos

import (
	"context"
	"io"
	"time"

	"github.com/josephlewis42/kshell/core/config"
)

// MachineOptions holds the collaborators of a new machine.
type MachineOptions struct {
	// Resolver looks up programs by path.
	Resolver ProcessResolver
	// Programs are the names created in the program directory at boot.
	Programs []string
	// Mirror receives the console as ANSI output, it may be nil.
	Mirror io.Writer
	// Recorder receives machine events, it may be nil.
	Recorder EventRecorder
	// Width and Height override the configured console size when non-zero.
	Width  int
	Height int
	// TimeSource overrides time.Now.
	TimeSource func() time.Time
	// HostFs opens the host directories listed in the configuration's
	// mounts, defaults to HostDirFs.
	HostFs func(dir string) VFS
}

// Machine is a single virtual computer: a filesystem, a console, a keyboard
// and a process scheduler.
type Machine struct {
	Config    *config.Configuration
	FS        VFS
	Screen    *Screen
	Terminal  *Terminal
	Pipes     *PipeAllocator
	Scheduler *Scheduler

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMachine boots a machine with a freshly seeded in-memory filesystem.
func NewMachine(cfg *config.Configuration, opts MachineOptions) (*Machine, error) {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = NopEventRecorder{}
	}
	now := opts.TimeSource
	if now == nil {
		now = time.Now
	}

	width, height := cfg.Console.Width, cfg.Console.Height
	if opts.Width > 0 {
		width = opts.Width
	}
	if opts.Height > 0 {
		height = opts.Height
	}

	mem := NewMemFs()
	if err := SeedFs(mem, cfg.Filesystem, cfg.Shell.ProgramDir, opts.Programs); err != nil {
		return nil, err
	}

	hostFs := opts.HostFs
	if hostFs == nil {
		hostFs = HostDirFs
	}
	fs, err := MountAll(mem, cfg.Filesystem.Mounts, hostFs)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		Config:   cfg,
		FS:       fs,
		Screen:   NewScreen(width, height, opts.Mirror),
		Terminal: NewTerminal(cfg.Limits.KeyQueue, recorder),
		Pipes:    NewPipeAllocator(cfg.Limits.PipeCapacity, cfg.Limits.MaxPipes),
		ctx:      ctx,
		cancel:   cancel,
	}

	m.Scheduler = &Scheduler{
		ctx:      ctx,
		procs:    make(map[int]*Process),
		resolver: opts.Resolver,
		fs:       fs,
		console:  m.Screen,
		terminal: m.Terminal,
		pipes:    m.Pipes,
		hostname: cfg.Hostname,
		slots:    cfg.Limits.DescriptorSlots,
		recorder: recorder,
		now:      now,
	}

	if procDir := cfg.Filesystem.ProcDir; procDir != "" {
		if err := fs.Mount(procDir, NewProcFs(m.Scheduler)); err != nil {
			cancel()
			return nil, err
		}
	}

	m.Terminal.SetInterruptHandler(func(group int) {
		m.Scheduler.Interrupt(group)
	})

	return m, nil
}

// Boot attaches the first process to the caller's goroutine and gives its
// group the terminal.
func (m *Machine) Boot(path string, argv []string) *Process {
	first := m.Scheduler.attach(path, argv)
	m.Terminal.SetControllingGroup(first.Getpgid())
	return first
}

// Shutdown cancels every process and hangs up the terminal.
func (m *Machine) Shutdown() {
	m.cancel()
	m.Terminal.Close()
}
