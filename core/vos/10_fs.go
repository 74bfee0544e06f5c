package vos

import (
	"os"
	"path"
	"time"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/spf13/afero"
)

// VFS implements a virtual filesystem.
type VFS = afero.Fs

// NewMemFs creates the empty in-memory filesystem a machine boots with.
func NewMemFs() VFS {
	return afero.NewMemMapFs()
}

// ResolvePath turns name into a clean absolute path, relative names are
// taken from cwd. "." and ".." components and repeated slashes are removed;
// ".." at the root stays at the root.
func ResolvePath(cwd, name string) string {
	if !path.IsAbs(name) {
		name = path.Join(cwd, name)
	}
	return path.Clean("/" + name)
}

// SeedFs creates the directories and files the configuration lists, and an
// empty entry for each program so they show up when the program directory
// is listed.
func SeedFs(fs VFS, seed config.Filesystem, programDir string, programs []string) error {
	for _, dir := range append([]string{"/", programDir}, seed.Directories...) {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	for _, name := range programs {
		if err := afero.WriteFile(fs, path.Join(programDir, name), nil, 0755); err != nil {
			return err
		}
	}

	for _, file := range seed.Files {
		if err := fs.MkdirAll(path.Dir(file.Path), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(fs, file.Path, []byte(file.Contents), 0644); err != nil {
			return err
		}
	}
	return nil
}

// WorkingDirFs resolves every relative path against a working directory
// before passing it to the base filesystem.
type WorkingDirFs struct {
	base  VFS
	getwd func() string
}

var _ VFS = (*WorkingDirFs)(nil)

// NewWorkingDirFs wraps base, getwd is consulted on every call.
func NewWorkingDirFs(base VFS, getwd func() string) *WorkingDirFs {
	return &WorkingDirFs{base: base, getwd: getwd}
}

func (w *WorkingDirFs) resolve(name string) string {
	return ResolvePath(w.getwd(), name)
}

func (w *WorkingDirFs) Name() string {
	return "WorkingDirFs"
}

func (w *WorkingDirFs) Create(name string) (afero.File, error) {
	return w.base.Create(w.resolve(name))
}

func (w *WorkingDirFs) Mkdir(name string, perm os.FileMode) error {
	return w.base.Mkdir(w.resolve(name), perm)
}

func (w *WorkingDirFs) MkdirAll(name string, perm os.FileMode) error {
	return w.base.MkdirAll(w.resolve(name), perm)
}

func (w *WorkingDirFs) Open(name string) (afero.File, error) {
	return w.base.Open(w.resolve(name))
}

func (w *WorkingDirFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return w.base.OpenFile(w.resolve(name), flag, perm)
}

func (w *WorkingDirFs) Remove(name string) error {
	return w.base.Remove(w.resolve(name))
}

func (w *WorkingDirFs) RemoveAll(name string) error {
	return w.base.RemoveAll(w.resolve(name))
}

func (w *WorkingDirFs) Rename(oldname, newname string) error {
	return w.base.Rename(w.resolve(oldname), w.resolve(newname))
}

func (w *WorkingDirFs) Stat(name string) (os.FileInfo, error) {
	return w.base.Stat(w.resolve(name))
}

func (w *WorkingDirFs) Chmod(name string, mode os.FileMode) error {
	return w.base.Chmod(w.resolve(name), mode)
}

func (w *WorkingDirFs) Chown(name string, uid, gid int) error {
	return w.base.Chown(w.resolve(name), uid, gid)
}

func (w *WorkingDirFs) Chtimes(name string, atime, mtime time.Time) error {
	return w.base.Chtimes(w.resolve(name), atime, mtime)
}
