package cmd

import (
	"fmt"

	"github.com/josephlewis42/kshell/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the machine event log.",
}

// reportCommand builds a report from the app log and prints it as YAML.
func reportCommand(use, short string, newReport func() (interface{}, func(*logger.LogEntry))) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			config, err := loadConfig()
			if err != nil {
				return err
			}

			fd, err := config.ReadAppLog()
			if err != nil {
				return err
			}
			defer fd.Close()

			report, update := newReport()
			if err := logger.ReadJSONLinesLog(fd, update); err != nil {
				return err
			}

			out, err := yaml.Marshal(report)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.AddCommand(reportCommand("report", "Show a summary of all events.", func() (interface{}, func(*logger.LogEntry)) {
		report := &logger.Report{}
		return report, report.Update
	}))
	eventsCmd.AddCommand(reportCommand("bugs", "Show crashes, failed commands and unknown programs.", func() (interface{}, func(*logger.LogEntry)) {
		report := logger.NewBugReport()
		return report, report.Update
	}))
	eventsCmd.AddCommand(reportCommand("sessions", "Show the commands run in each session.", func() (interface{}, func(*logger.LogEntry)) {
		report := &logger.InteractionReport{}
		return report, report.Update
	}))
}
