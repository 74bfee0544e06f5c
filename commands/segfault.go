package commands

import (
	"fmt"

	"github.com/josephlewis42/kshell/core/vos"
)

// Segfault crashes, the scheduler contains the panic and reports the
// program as crashed.
func Segfault(virtOS vos.VOS) int {
	var table map[string]int
	table[virtOS.Args()[0]]++

	fmt.Fprintln(virtOS.Stdout(), "unreachable")
	return 0
}

var _ vos.ProcessFunc = Segfault

func init() {
	mustAddCmd("segfault", Segfault)
}
