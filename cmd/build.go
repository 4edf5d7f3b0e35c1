package cmd

import (
	"github.com/spf13/cobra"

	"github.com/packmill/packmill/builder"
	"github.com/packmill/packmill/cli"
	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/console"
)

// NewBuildCmd creates the `build` command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the server output directory",
		Long: `Produces the runnable server directory from server.toml:
bootstraps config templates, downloads the server jar and addons, and
records what was placed in the lockfile.`,
		Example: `  # Build the pack in the current directory
  packmill build`,
		RunE: runBuildE,
	}
	return cmd
}

func runBuildE(cmd *cobra.Command, args []string) error {
	path, err := cli.ResolveServerFile(cmd)
	if err != nil {
		return err
	}

	app, err := config.LoadServer(path)
	if err != nil {
		return err
	}

	jarName, err := builder.New(app).BuildAll()
	if err != nil {
		return err
	}

	console.Default().Info("Built %s (jar: %s)", app.Name, jarName)
	return nil
}
