package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/josephlewis42/kshell/core/vos"
)

// Touch creates empty files, or updates the timestamps of existing ones.
func Touch(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "touch [-acm] FILE...",
		Short: "Change file timestamps, creating missing files.",
	}

	// The filesystem keeps one timestamp, -a and -m both set it.
	cmd.Flags().Bool('a', "change the access time")
	cmd.Flags().Bool('m', "change the modification time")
	noCreate := cmd.Flags().BoolLong("no-create", 'c', "don't create missing files")

	return cmd.Run(virtOS, func() int {
		now := time.Now()

		return cmd.RunEachOperand(virtOS, cmd.Flags().Args(), func(name string) error {
			err := virtOS.Chtimes(name, now, now)
			if !errors.Is(err, fs.ErrNotExist) {
				if err != nil {
					return fmt.Errorf("setting times of %q: %v", name, err)
				}
				return nil
			}

			if *noCreate {
				return nil
			}
			fd, err := virtOS.Create(name)
			if err != nil {
				return fmt.Errorf("cannot touch %q: %v", name, err)
			}
			return fd.Close()
		})
	})
}

func init() {
	mustAddCmd("touch", Touch)
}
