package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
)

// lineFilter runs transform over every line of the input files or stdin.
func lineFilter(virtOS vos.VOS, cmd *SimpleCommand, transform func(string) string) int {
	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()
		return cmd.RunEachFileOrStdin(virtOS, cmd.Flags().Args(), func(name string, fd io.Reader) error {
			reader := bufio.NewReader(fd)
			for {
				line, err := reader.ReadString('\n')
				if line != "" {
					newline := strings.HasSuffix(line, "\n")
					out := transform(strings.TrimSuffix(line, "\n"))
					if newline {
						out += "\n"
					}
					if _, werr := io.WriteString(w, out); werr != nil {
						return werr
					}
				}

				switch {
				case err == io.EOF:
					return nil
				case err != nil:
					return err
				}
			}
		})
	})
}

// Upper copies its input to its output in upper case.
func Upper(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "upper [FILE]...",
		Short: "Write FILE(s), or standard input, in upper case.",
	}

	return lineFilter(virtOS, cmd, strings.ToUpper)
}

// Rev reverses the characters of every line.
func Rev(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "rev [FILE]...",
		Short: "Reverse the characters of every line of FILE(s), or standard input.",
	}

	return lineFilter(virtOS, cmd, func(line string) string {
		runes := []rune(line)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	})
}

// Yes writes its argument, "y" by default, until it's interrupted or its
// output goes away.
func Yes(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "yes [STRING]...",
		Short: "Repeatedly output a line with STRING(s), or 'y'.",
	}

	return cmd.Run(virtOS, func() int {
		text := "y"
		if args := cmd.Flags().Args(); len(args) > 0 {
			text = strings.Join(args, " ")
		}

		ctx := virtOS.Context()
		err := func() error {
			for {
				select {
				case <-ctx.Done():
					return errStop
				default:
				}

				if _, err := fmt.Fprintln(virtOS.Stdout(), text); err != nil {
					return err
				}
			}
		}()

		if err == errStop {
			return 0
		}
		return 1
	})
}

// True does nothing, successfully.
func True(virtOS vos.VOS) int {
	return 0
}

// False does nothing, unsuccessfully.
func False(virtOS vos.VOS) int {
	return 1
}

func init() {
	mustAddCmd("upper", Upper)
	mustAddCmd("rev", Rev)
	mustAddCmd("yes", Yes)
	mustAddCmd("true", True)
	mustAddCmd("false", False)
}
