package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packmill/packmill/cli"
	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/console"
)

// NewConfigCmd creates the `config` command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the server configuration",
	}

	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for server.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate server.toml against the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cli.ResolveServerFile(cmd)
			if err != nil {
				return err
			}

			app, err := config.LoadServer(path)
			if err != nil {
				return err
			}

			validator, err := config.NewValidator()
			if err != nil {
				return err
			}
			if err := validator.Validate(app); err != nil {
				return err
			}

			console.Default().Info("%s is valid", path)
			return nil
		},
	}
}
