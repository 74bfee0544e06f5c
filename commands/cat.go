package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/josephlewis42/kshell/core/vos"
)

// Cat implements the UNIX cat command.
func Cat(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "cat [-n] [FILE]...",
		Short: "Concatenate FILE(s) to standard output, standard input if there are none.",
	}

	number := cmd.Flags().BoolLong("number", 'n', "number all output lines")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		lineNo := 1

		return cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(name string, fd io.Reader) error {
			if !*number {
				_, err := io.Copy(w, fd)
				return err
			}

			scanner := bufio.NewScanner(fd)
			for scanner.Scan() {
				if _, err := fmt.Fprintf(w, "%6d\t%s\n", lineNo, scanner.Text()); err != nil {
					return err
				}
				lineNo++
			}
			return scanner.Err()
		})
	})
}

var _ vos.ProcessFunc = Cat

func init() {
	mustAddCmd("cat", Cat)
}
