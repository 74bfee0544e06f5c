package vos

import (
	"errors"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/spf13/afero"
)

// ErrCrossDevice is returned when a rename spans two mounts.
var ErrCrossDevice = errors.New("invalid cross-device link")

type mountPoint struct {
	dir string
	fs  VFS
}

// MountFs overlays filesystems onto directories of a root filesystem.
type MountFs struct {
	root VFS
	// Deepest first so nested mounts win.
	mounts []mountPoint
}

var _ VFS = (*MountFs)(nil)

// NewMountFs creates a MountFs with nothing mounted.
func NewMountFs(root VFS) *MountFs {
	return &MountFs{root: root}
}

// Mount attaches fs at dir. The directory is created on the root so it shows
// up in listings.
func (m *MountFs) Mount(dir string, fs VFS) error {
	dir = ResolvePath("/", dir)
	if err := m.root.MkdirAll(dir, 0755); err != nil {
		return err
	}

	m.mounts = append(m.mounts, mountPoint{dir: dir, fs: fs})
	sort.SliceStable(m.mounts, func(i, j int) bool {
		return len(m.mounts[i].dir) > len(m.mounts[j].dir)
	})
	return nil
}

// route finds the filesystem owning name and the path inside it.
func (m *MountFs) route(name string) (VFS, string) {
	name = ResolvePath("/", name)
	for _, mp := range m.mounts {
		if name == mp.dir {
			return mp.fs, "/"
		}
		if strings.HasPrefix(name, mp.dir+"/") {
			return mp.fs, strings.TrimPrefix(name, mp.dir)
		}
	}
	return m.root, name
}

func (m *MountFs) Name() string {
	return "MountFs"
}

func (m *MountFs) Create(name string) (afero.File, error) {
	fs, p := m.route(name)
	return fs.Create(p)
}

func (m *MountFs) Mkdir(name string, perm os.FileMode) error {
	fs, p := m.route(name)
	return fs.Mkdir(p, perm)
}

func (m *MountFs) MkdirAll(name string, perm os.FileMode) error {
	fs, p := m.route(name)
	return fs.MkdirAll(p, perm)
}

func (m *MountFs) Open(name string) (afero.File, error) {
	fs, p := m.route(name)
	return fs.Open(p)
}

func (m *MountFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	fs, p := m.route(name)
	return fs.OpenFile(p, flag, perm)
}

func (m *MountFs) Remove(name string) error {
	fs, p := m.route(name)
	return fs.Remove(p)
}

func (m *MountFs) RemoveAll(name string) error {
	fs, p := m.route(name)
	return fs.RemoveAll(p)
}

func (m *MountFs) Rename(oldname, newname string) error {
	oldFs, oldPath := m.route(oldname)
	newFs, newPath := m.route(newname)
	if oldFs != newFs {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ErrCrossDevice}
	}
	return oldFs.Rename(oldPath, newPath)
}

func (m *MountFs) Stat(name string) (os.FileInfo, error) {
	fs, p := m.route(name)
	return fs.Stat(p)
}

func (m *MountFs) Chmod(name string, mode os.FileMode) error {
	fs, p := m.route(name)
	return fs.Chmod(p, mode)
}

func (m *MountFs) Chown(name string, uid, gid int) error {
	fs, p := m.route(name)
	return fs.Chown(p, uid, gid)
}

func (m *MountFs) Chtimes(name string, atime, mtime time.Time) error {
	fs, p := m.route(name)
	return fs.Chtimes(p, atime, mtime)
}

// HostDirFs exposes a directory of the host read-only.
func HostDirFs(dir string) VFS {
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// MountAll mounts every configured host directory over root. Writable mounts
// get an in-memory layer on top of the host directory.
func MountAll(root VFS, mounts []config.Mount, hostFs func(dir string) VFS) (*MountFs, error) {
	out := NewMountFs(root)
	for _, mount := range mounts {
		fs := hostFs(mount.HostDir)
		if mount.Writable {
			fs = afero.NewCopyOnWriteFs(fs, afero.NewMemMapFs())
		}
		if err := out.Mount(path.Clean(mount.Path), fs); err != nil {
			return nil, err
		}
	}
	return out, nil
}
