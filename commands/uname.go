package commands

import (
	"strings"

	"github.com/josephlewis42/kshell/core/vos"
)

// Fixed properties of every machine, the node name comes from the
// configuration.
const (
	kernelName    = "kshell"
	kernelRelease = "1.0.0"
	kernelVersion = "#1 SMP"
	hardwareName  = "vm"
)

// Uname prints information about the machine.
func Uname(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "uname [-asnrvm]",
		Short: "Print system information.",
	}

	flags := cmd.Flags()
	all := flags.BoolLong("all", 'a', "print everything below")
	fields := []struct {
		selected *bool
		value    func() string
	}{
		{flags.BoolLong("kernel-name", 's', "print the kernel name"), func() string { return kernelName }},
		{flags.BoolLong("nodename", 'n', "print the hostname"), virtOS.Hostname},
		{flags.BoolLong("kernel-release", 'r', "print the kernel release"), func() string { return kernelRelease }},
		{flags.BoolLong("kernel-version", 'v', "print the kernel version"), func() string { return kernelVersion }},
		{flags.BoolLong("machine", 'm', "print the hardware name"), func() string { return hardwareName }},
	}

	return cmd.Run(virtOS, func() int {
		var out []string
		for _, field := range fields {
			if *all || *field.selected {
				out = append(out, field.value())
			}
		}
		if len(out) == 0 {
			out = append(out, kernelName)
		}

		virtOS.Stdout().Write([]byte(strings.Join(out, " ") + "\n"))
		return 0
	})
}

func init() {
	mustAddCmd("uname", Uname)
}
