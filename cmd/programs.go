package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/josephlewis42/kshell/commands"
	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/shell"
	"github.com/spf13/cobra"
)

// programsCmd lists everything a machine can run.
var programsCmd = &cobra.Command{
	Use:     "programs",
	Aliases: []string{"builtins"},
	Short:   "Show the shell builtins and installed programs.",
	Args:    cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		heading := color.New(color.Bold)

		heading.Fprintln(out, "Shell builtins:")
		for _, name := range shell.ListBuiltins() {
			fmt.Fprintf(out, "  %s\n", name)
		}

		fmt.Fprintln(out)
		heading.Fprintf(out, "Programs (%s):\n", config.Default().Shell.ProgramDir)
		for _, name := range commands.ListCommands() {
			fmt.Fprintf(out, "  %s\n", color.GreenString(name))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(programsCmd)
}
