// Package cmd implements the packmill subcommands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/packmill/packmill/builder"
	"github.com/packmill/packmill/cli"
	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/hotreload"
)

// NewDevCmd creates the `dev` command.
func NewDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the server with hot reloading",
		Long: `Builds the pack, starts the server, and watches for changes:
config templates are re-bootstrapped and their reload rules applied,
hotreload.toml edits take effect immediately, and server.toml edits
trigger a full stop-rebuild-start cycle. Lines typed on stdin are
forwarded to the server console. Ctrl-C ends the session.`,
		Example: `  # Start a dev session in the current pack
  packmill dev

  # Use an explicit server definition
  packmill dev -c ./pack/server.toml`,
		RunE: runDevE,
	}
	return cmd
}

func runDevE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)

	path, err := cli.ResolveServerFile(cmd)
	if err != nil {
		return err
	}
	logger.Debugf("using server definition at %s", path)

	app, err := config.LoadServer(path)
	if err != nil {
		return err
	}

	b := builder.New(app)
	session := hotreload.NewSession(app, b, b)
	return session.Run()
}
