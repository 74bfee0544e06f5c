package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/josephlewis42/kshell/core/vos"
)

// Sleep pauses for a number of seconds, or until it's interrupted.
func Sleep(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "sleep NUMBER[SUFFIX]",
		Short: "Pause for NUMBER seconds, or a Go duration such as 1m30s.",
	}

	return cmd.Run(virtOS, func() int {
		args := cmd.Flags().Args()
		if len(args) != 1 {
			cmd.LogProgramError(virtOS, fmt.Errorf("expected one duration, got %d", len(args)))
			return 1
		}

		d, err := parseSleepDuration(args[0])
		if err != nil {
			cmd.LogProgramError(virtOS, err)
			return 1
		}

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-timer.C:
			return 0
		case <-virtOS.Context().Done():
			return 1
		}
	})
}

func parseSleepDuration(arg string) (time.Duration, error) {
	if seconds, err := strconv.ParseFloat(arg, 64); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("invalid time interval %q", arg)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(arg)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid time interval %q", arg)
	}
	return d, nil
}

var _ vos.ProcessFunc = Sleep

func init() {
	mustAddCmd("sleep", Sleep)
}
