package commands

import (
	"fmt"
	"time"

	"github.com/josephlewis42/kshell/core/vos"
)

// Uptime implements the UNIX uptime command. The machine booted when its
// oldest running process started.
func Uptime(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "uptime",
		Short: "Tell how long the machine has been running.",
	}

	return cmd.Run(virtOS, func() int {
		now := time.Now()
		boot := now
		for _, proc := range virtOS.Processes() {
			if proc.StartTime.Before(boot) {
				boot = proc.StartTime
			}
		}

		fmt.Fprintf(virtOS.Stdout(), "%s up %s, %d processes\n",
			now.Format("15:04:05"),
			formatUptime(now.Sub(boot)),
			len(virtOS.Processes()))
		return 0
	})
}

func formatUptime(uptime time.Duration) string {
	day := 24 * time.Hour
	days := uptime / day
	uptime -= days * day
	hours := uptime / time.Hour
	uptime -= hours * time.Hour
	mins := uptime / time.Minute

	return fmt.Sprintf("%d days, %02d:%02d", days, hours, mins)
}

var _ vos.ProcessFunc = Uptime

func init() {
	mustAddCmd("uptime", Uptime)
}
