package commands

import (
	"fmt"
	"path"
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
)

const psTimeFormat = "15:04"

// Ps lists the machine's process table.
func Ps(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "ps [options]",
		Short: "Report a snapshot of the machine's processes.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	full := cmd.Flags().Bool('f', "show full command lines and parent pids")

	return cmd.Run(virtOS, func() int {
		w := virtOS.Stdout()

		if *full {
			fmt.Fprintln(w, "  PID  PPID  PGID START CMD")
		} else {
			fmt.Fprintln(w, "  PID  PGID START CMD")
		}

		for _, proc := range virtOS.Processes() {
			if proc.Exited {
				continue
			}

			start := proc.StartTime.Format(psTimeFormat)
			if *full {
				fmt.Fprintf(w, "%5d %5d %5d %s %s\n", proc.PID, proc.PPID, proc.PGID, start, strings.Join(proc.Args, " "))
			} else {
				fmt.Fprintf(w, "%5d %5d %s %s\n", proc.PID, proc.PGID, start, path.Base(proc.Path))
			}
		}
		return 0
	})
}

var _ vos.ProcessFunc = Ps

func init() {
	mustAddCmd("ps", Ps)
}
