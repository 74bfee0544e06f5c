package vos

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ProcFs is a read-only view of a scheduler's process table:
//
//	/uptime          seconds since the oldest process started
//	/<pid>/cmdline   the process' arguments
//	/<pid>/status    name, pid, parent pid and group
//
// The view is rebuilt on every call.
type ProcFs struct {
	sched *Scheduler
}

var _ VFS = (*ProcFs)(nil)

// NewProcFs creates a view of sched.
func NewProcFs(sched *Scheduler) *ProcFs {
	return &ProcFs{sched: sched}
}

func (p *ProcFs) snapshot() VFS {
	fs := afero.NewMemMapFs()
	now := p.sched.now()

	boot := now
	procs := p.sched.Processes()
	for _, proc := range procs {
		if proc.StartTime.Before(boot) {
			boot = proc.StartTime
		}
	}

	write := func(name, contents string) {
		// Writes to a fresh in-memory filesystem don't fail.
		afero.WriteFile(fs, name, []byte(contents), 0444)
	}

	fs.MkdirAll("/", 0555)
	write("/uptime", fmt.Sprintf("%0.2f\n", now.Sub(boot).Seconds()))
	for _, proc := range procs {
		if proc.Exited {
			continue
		}

		dir := fmt.Sprintf("/%d", proc.PID)
		fs.MkdirAll(dir, 0555)
		write(dir+"/cmdline", strings.Join(proc.Args, " ")+"\n")
		write(dir+"/status", fmt.Sprintf("Name:\t%s\nPid:\t%d\nPPid:\t%d\nPgid:\t%d\n",
			path.Base(proc.Path), proc.PID, proc.PPID, proc.PGID))
	}

	return afero.NewReadOnlyFs(fs)
}

func (*ProcFs) Name() string {
	return "ProcFs"
}

func (p *ProcFs) Create(name string) (afero.File, error) {
	return p.snapshot().Create(name)
}

func (p *ProcFs) Mkdir(name string, perm os.FileMode) error {
	return p.snapshot().Mkdir(name, perm)
}

func (p *ProcFs) MkdirAll(name string, perm os.FileMode) error {
	return p.snapshot().MkdirAll(name, perm)
}

func (p *ProcFs) Open(name string) (afero.File, error) {
	return p.snapshot().Open(name)
}

func (p *ProcFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return p.snapshot().OpenFile(name, flag, perm)
}

func (p *ProcFs) Remove(name string) error {
	return p.snapshot().Remove(name)
}

func (p *ProcFs) RemoveAll(name string) error {
	return p.snapshot().RemoveAll(name)
}

func (p *ProcFs) Rename(oldname, newname string) error {
	return p.snapshot().Rename(oldname, newname)
}

func (p *ProcFs) Stat(name string) (os.FileInfo, error) {
	return p.snapshot().Stat(name)
}

func (p *ProcFs) Chmod(name string, mode os.FileMode) error {
	return p.snapshot().Chmod(name, mode)
}

func (p *ProcFs) Chown(name string, uid, gid int) error {
	return p.snapshot().Chown(name, uid, gid)
}

func (p *ProcFs) Chtimes(name string, atime, mtime time.Time) error {
	return p.snapshot().Chtimes(name, atime, mtime)
}
