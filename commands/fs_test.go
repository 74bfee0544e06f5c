package commands

import (
	"testing"

	"github.com/josephlewis42/kshell/core/vos"
	"github.com/josephlewis42/kshell/core/vos/vostest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run starts fn on a fresh machine after setup and returns the output and
// the machine's first process for inspection.
func run(t *testing.T, fn vos.ProcessFunc, setup func(vos.VOS) error, argv ...string) (string, int, vos.VOS) {
	t.Helper()

	cmd := vostest.Command(fn, argv[0], argv[1:]...)
	cmd.Setup = setup
	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	return string(out), cmd.ExitStatus, cmd.VOS
}

func files(paths ...string) func(vos.VOS) error {
	return func(virtOS vos.VOS) error {
		for _, p := range paths {
			if err := afero.WriteFile(virtOS, p, []byte("data"), 0644); err != nil {
				return err
			}
		}
		return nil
	}
}

func exists(t *testing.T, virtOS vos.VOS, p string) bool {
	t.Helper()

	ok, err := afero.Exists(virtOS, p)
	require.NoError(t, err)
	return ok
}

func TestTouch(t *testing.T) {
	out, status, virtOS := run(t, Touch, nil, "touch", "/tmp/a /tmp/b")
	assert.Equal(t, "", out)
	assert.Equal(t, 0, status)
	assert.True(t, exists(t, virtOS, "/tmp/a"))
	assert.True(t, exists(t, virtOS, "/tmp/b"))

	_, status, virtOS = run(t, Touch, nil, "touch", "-c /tmp/a")
	assert.Equal(t, 0, status)
	assert.False(t, exists(t, virtOS, "/tmp/a"))

	out, status, _ = run(t, Touch, nil, "touch")
	assert.Equal(t, 1, status)
	assert.Equal(t, "touch: missing operand\n", out)
}

func TestRm(t *testing.T) {
	cases := map[string]struct {
		setup      func(vos.VOS) error
		args       string
		wantOut    string
		wantStatus int
		gone       []string
		kept       []string
	}{
		"file": {
			setup: files("/tmp/a", "/tmp/b"),
			args:  "/tmp/a",
			gone:  []string{"/tmp/a"},
			kept:  []string{"/tmp/b"},
		},
		"missing": {
			args:       "/tmp/nope",
			wantOut:    "rm: can't remove \"/tmp/nope\": no such file or directory\n",
			wantStatus: 1,
		},
		"force missing": {
			args: "-f /tmp/nope",
		},
		"directory": {
			setup:      files("/tmp/d/a"),
			args:       "/tmp/d",
			wantOut:    "rm: can't remove \"/tmp/d\": is a directory\n",
			wantStatus: 1,
			kept:       []string{"/tmp/d/a"},
		},
		"recursive": {
			setup: files("/tmp/d/a", "/tmp/d/e/b"),
			args:  "-r /tmp/d",
			gone:  []string{"/tmp/d", "/tmp/d/a", "/tmp/d/e/b"},
			kept:  []string{"/tmp"},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			out, status, virtOS := run(t, Rm, tc.setup, "rm", tc.args)
			assert.Equal(t, tc.wantOut, out)
			assert.Equal(t, tc.wantStatus, status)

			for _, p := range tc.gone {
				assert.False(t, exists(t, virtOS, p), p)
			}
			for _, p := range tc.kept {
				assert.True(t, exists(t, virtOS, p), p)
			}
		})
	}
}

func TestMkdir(t *testing.T) {
	out, status, virtOS := run(t, Mkdir, nil, "mkdir", "-v /tmp/a")
	assert.Equal(t, "mkdir: created directory \"/tmp/a\"\n", out)
	assert.Equal(t, 0, status)
	assert.True(t, exists(t, virtOS, "/tmp/a"))

	out, status, virtOS = run(t, Mkdir, nil, "mkdir", "/tmp/a/b")
	assert.Equal(t, "mkdir: cannot create directory \"/tmp/a/b\": file does not exist\n", out)
	assert.Equal(t, 1, status)
	assert.False(t, exists(t, virtOS, "/tmp/a/b"))

	_, status, virtOS = run(t, Mkdir, nil, "mkdir", "-p /tmp/a/b")
	assert.Equal(t, 0, status)
	assert.True(t, exists(t, virtOS, "/tmp/a/b"))

	out, status, _ = run(t, Mkdir, nil, "mkdir", "/home/README")
	assert.Equal(t, "mkdir: cannot create directory \"/home/README\": file already exists\n", out)
	assert.Equal(t, 1, status)

	out, status, _ = run(t, Mkdir, nil, "mkdir", "/home/README/x")
	assert.Equal(t, 1, status)
	assert.Contains(t, out, "mkdir: cannot create directory \"/home/README/x\"")
}

func TestRmdir(t *testing.T) {
	mkdirs := func(dirs ...string) func(vos.VOS) error {
		return func(virtOS vos.VOS) error {
			for _, d := range dirs {
				if err := virtOS.MkdirAll(d, 0755); err != nil {
					return err
				}
			}
			return nil
		}
	}

	out, status, virtOS := run(t, Rmdir, mkdirs("/tmp/a"), "rmdir", "-v /tmp/a")
	assert.Equal(t, "rmdir: removed directory: /tmp/a\n", out)
	assert.Equal(t, 0, status)
	assert.False(t, exists(t, virtOS, "/tmp/a"))

	out, status, virtOS = run(t, Rmdir, files("/tmp/a/f"), "rmdir", "/tmp/a")
	assert.Equal(t, "rmdir: failed to remove \"/tmp/a\": directory not empty\n", out)
	assert.Equal(t, 1, status)
	assert.True(t, exists(t, virtOS, "/tmp/a"))

	out, status, _ = run(t, Rmdir, nil, "rmdir", "/home/README")
	assert.Equal(t, "rmdir: failed to remove \"/home/README\": not a directory\n", out)
	assert.Equal(t, 1, status)

	_, status, virtOS = run(t, Rmdir, mkdirs("/x/y/z"), "rmdir", "-p x/y/z")
	assert.Equal(t, 0, status)
	assert.False(t, exists(t, virtOS, "/x"))
}
