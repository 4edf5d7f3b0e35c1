package main

import (
	"os"

	"github.com/packmill/packmill/cli"
	"github.com/packmill/packmill/cmd"
	"github.com/packmill/packmill/errors"
	"github.com/packmill/packmill/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"packmill",
		"Build and run Minecraft server packs with hot reloading",
	)
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.Version = version.Version
	cli.SetVersionTemplate(rootCmd, version.GetInfo())

	rootCmd.AddCommand(cmd.NewDevCmd())
	rootCmd.AddCommand(cmd.NewBuildCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.GetCode(err) == "" {
			// Bare cobra errors (unknown flags, bad arguments) get the
			// help hint.
			cli.PrintError(rootCmd, err)
		} else {
			opts := cli.GetOptions(rootCmd)
			cli.NewErrorHandler(opts.Verbose).Handle(err)
		}
		os.Exit(1)
	}
}
