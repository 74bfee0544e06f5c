package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/kshell/core"
	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/logger"
	"github.com/spf13/cobra"
)

var runRecord bool

// runCmd boots a machine attached to the local terminal.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot a machine on the local terminal.",
	Long: `Boots a machine and runs the shell on the local terminal. The built-in
configuration is used if the config path hasn't been initialized.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		runLogger := log.New(cmd.ErrOrStderr(), "[run] ", 0)

		configuration, err := config.Load(cfgPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			runLogger.Println("No configuration found, using the defaults.")
			configuration = config.Default()
		case err != nil:
			return err
		}

		stdinFd := int(os.Stdin.Fd())
		if !readline.IsTerminal(stdinFd) {
			return errors.New("stdin must be a terminal")
		}

		width, height, err := readline.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return fmt.Errorf("couldn't get the terminal size: %w", err)
		}

		eventLog := logger.NewNopLogger()
		if runRecord {
			appLog, err := configuration.OpenAppLog()
			if err != nil {
				return err
			}
			defer appLog.Close()
			eventLog = logger.NewJsonLinesLogRecorder(appLog)
		}

		session, err := core.NewSession(configuration, core.SessionOptions{
			Width:    width,
			Height:   height,
			Output:   cmd.OutOrStdout(),
			Recorder: eventLog.NewSession(),
		})
		if err != nil {
			return err
		}

		state, err := readline.MakeRaw(stdinFd)
		if err != nil {
			return err
		}
		defer readline.Restore(stdinFd, state)

		keyboard := readline.NewCancelableStdin(os.Stdin)
		defer keyboard.Close()

		status := session.Run(context.Background(), keyboard)
		fmt.Fprintf(cmd.OutOrStdout(), "\r\nExit status: %d\r\n", status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runRecord, "record", false, "append machine events to the app log")
}
