package cmd

import (
	"log"

	"github.com/josephlewis42/kshell/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes a fresh configuration to the config path.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration, host key and recording directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		return config.Initialize(cfgPath, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
