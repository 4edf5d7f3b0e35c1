// Package cli provides the shared cobra scaffolding for packmill commands:
// standard flags, styled help, and error presentation.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/logging"
)

// CommandOptions holds common options for packmill commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
}

// NewStandardCommand creates a new command with the standard packmill flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to server.toml")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger creates a logger based on command flags
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	entry := logging.NewLogger("cli")
	logger := entry.Logger

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
	}
}

// ResolveServerFile returns the server.toml path for a command: the --config
// flag when given, otherwise a walk up from the working directory.
func ResolveServerFile(cmd *cobra.Command) (string, error) {
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		return configFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.FindServerFile(cwd)
}
