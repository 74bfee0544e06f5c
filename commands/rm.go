package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/kshell/core/vos"
)

// Rm deletes files, and whole trees with -r.
func Rm(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rm [-rf] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "remove directories and everything in them")
	force := cmd.Flags().BoolLong("force", 'f', "ignore missing files")

	remove := func(name string) error {
		info, err := virtOS.Stat(name)
		switch {
		case errors.Is(err, fs.ErrNotExist) && *force:
			return nil
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("can't remove %q: no such file or directory", name)
		case err != nil:
			return fmt.Errorf("can't stat %q: %v", name, err)
		}

		if info.IsDir() {
			if !*recursive {
				return fmt.Errorf("can't remove %q: is a directory", name)
			}
			err = virtOS.RemoveAll(name)
		} else {
			err = virtOS.Remove(name)
		}
		if err != nil {
			return fmt.Errorf("can't remove %q: %v", name, err)
		}
		return nil
	}

	return cmd.Run(virtOS, func() int {
		operands := cmd.Flags().Args()
		if len(operands) == 0 && *force {
			return 0
		}
		return cmd.RunEachOperand(virtOS, operands, remove)
	})
}

func init() {
	mustAddCmd("rm", Rm)
}
