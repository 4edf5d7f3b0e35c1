package cmd

import (
	"github.com/spf13/cobra"

	"github.com/packmill/packmill/cli"
	"github.com/packmill/packmill/version"
)

// NewVersionCmd creates the `version` command.
func NewVersionCmd() *cobra.Command {
	return cli.NewVersionCommand("packmill", version.GetInfo())
}
