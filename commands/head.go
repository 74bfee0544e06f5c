package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/josephlewis42/kshell/core/vos"
)

// Head implements the POSIX head command.
func Head(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "head [-n NUMBER] [FILE]...",
		Short: "Print the first lines of each FILE, standard input if there are none.",
	}

	lines := cmd.Flags().IntLong("lines", 'n', 10, "print the first NUMBER lines")

	return cmd.Run(virtOS, func() int {
		files := cmd.Flags().Args()
		w := virtOS.Stdout()

		return cmd.RunEachFileOrStdin(virtOS, files, func(name string, fd io.Reader) error {
			if len(files) > 1 {
				fmt.Fprintf(w, "==> %s <==\n", name)
			}

			reader := bufio.NewReader(fd)
			for i := 0; i < *lines; i++ {
				line, err := reader.ReadString('\n')
				if _, werr := io.WriteString(w, line); werr != nil {
					return werr
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
}

var _ vos.ProcessFunc = Head

func init() {
	mustAddCmd("head", Head)
}
