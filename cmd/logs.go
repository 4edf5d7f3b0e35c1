package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/packmill/packmill/builder"
	"github.com/packmill/packmill/cli"
	"github.com/packmill/packmill/config"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the server log",
		Long: `Prints the managed server's latest log file from the built output
directory.`,
		Example: `  # Print the current server log
  packmill logs

  # Follow log output
  packmill logs -f`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	path, err := cli.ResolveServerFile(cmd)
	if err != nil {
		return err
	}

	app, err := config.LoadServer(path)
	if err != nil {
		return err
	}

	follow, _ := cmd.Flags().GetBool("follow")
	logFile := filepath.Join(app.Root(), builder.OutputDirName, "logs", "latest.log")

	if !follow {
		if _, err := os.Stat(logFile); err != nil {
			return fmt.Errorf("no server log at %s; run 'packmill dev' or start the server first", logFile)
		}
	}

	t, err := tail.TailFile(logFile, tail.Config{
		Follow: follow,
		ReOpen: follow,
		Location: &tail.SeekInfo{
			Offset: 0,
			Whence: io.SeekStart,
		},
		Logger: stdlog.New(ioutil.Discard, "", 0),
	})
	if err != nil {
		return err
	}

	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		fmt.Println(line.Text)
	}

	return nil
}
