package commands

import (
	"fmt"
	"os"

	"github.com/josephlewis42/kshell/core/vos"
)

// Mkdir creates directories.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/mkdir.html
func Mkdir(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "mkdir [OPTION...] DIRECTORY...",
		Short: "Create directories if they don't exist.",
	}

	makeParents := cmd.Flags().BoolLong("parents", 'p', "make parents if needed")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every created directory")

	return cmd.Run(virtOS, func() int {
		return cmd.RunEachOperand(virtOS, cmd.Flags().Args(), func(dir string) error {
			if err := makeDir(virtOS, dir, *makeParents); err != nil {
				return fmt.Errorf("cannot create directory %q: %v", dir, err)
			}
			if *verbose {
				fmt.Fprintf(virtOS.Stdout(), "mkdir: created directory %q\n", dir)
			}
			return nil
		})
	})
}

// makeDir creates dir. The in-memory filesystem creates parents implicitly
// so they're checked first unless parents is set.
func makeDir(virtOS vos.VOS, dir string, parents bool) error {
	if info, err := virtOS.Stat(dir); err == nil {
		if parents && info.IsDir() {
			return nil
		}
		return os.ErrExist
	}

	if parents {
		return virtOS.MkdirAll(dir, 0755)
	}

	parent := vos.ResolvePath(virtOS.Getwd(), dir+"/..")
	info, err := virtOS.Stat(parent)
	switch {
	case err != nil:
		return os.ErrNotExist
	case !info.IsDir():
		return vos.ErrNotADirectory
	}
	return virtOS.Mkdir(dir, 0755)
}

func init() {
	mustAddCmd("mkdir", Mkdir)
}
