package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/josephlewis42/kshell/core/ttylog"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the recorded console sessions.",
}

var listCommand = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the recorded sessions.",
	Args:    cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		names, err := configuration.ListRecordings()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// playCommand replays a recording at the speed it was made.
var playCommand = &cobra.Command{
	Use:   "play RECORDING",
	Short: "Replay a recorded session in the terminal.",
	Long: `Plays a recorded session back to the current terminal. RECORDING is either
a name from "logs ls" or a path to an asciicast file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// catCommand dumps a recording without pauses.
var catCommand = &cobra.Command{
	Use:   "cat RECORDING",
	Short: "Print the full output of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openRecording(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(ttylog.NewAsciicastLogSource(fd), sink)
	},
}

// openRecording opens a file on disk if it exists, otherwise a recording
// from the configuration.
func openRecording(name string) (io.ReadCloser, error) {
	if filepath.Ext(name) == "."+ttylog.AsciicastFileExt {
		if fd, err := os.Open(name); err == nil {
			return fd, nil
		}
	}

	configuration, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return configuration.OpenRecording(name)
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(listCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
