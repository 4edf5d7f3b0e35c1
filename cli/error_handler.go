package cli

import (
	"fmt"
	"os"

	"github.com/packmill/packmill/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ No server.toml found. Create one in your pack directory first.\n")
		return err

	case errors.ErrCodeConfigValidation:
		if packErr, ok := err.(*errors.PackError); ok {
			fmt.Fprintf(os.Stderr, "❌ server.toml failed validation:\n")
			if problems, ok := packErr.Details["problems"].([]string); ok {
				for _, p := range problems {
					fmt.Fprintf(os.Stderr, "   - %s\n", p)
				}
			}
			fmt.Fprintf(os.Stderr, "Run 'packmill config validate' for details.\n")
		}
		return err

	case errors.ErrCodeJarUnresolved:
		fmt.Fprintf(os.Stderr, "❌ No server jar available. Check the [jar] section of server.toml.\n")
		return err

	case errors.ErrCodeDownloadFailed:
		if packErr, ok := err.(*errors.PackError); ok {
			fmt.Fprintf(os.Stderr, "❌ Download failed for %s\n", packErr.Details["url"])
			fmt.Fprintf(os.Stderr, "Check the URL and your network connection.\n")
		}
		return err

	case errors.ErrCodeSpawnFailed:
		fmt.Fprintf(os.Stderr, "❌ Could not start the server process. Is java installed and on PATH?\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		if h.Verbose {
			if packErr, ok := err.(*errors.PackError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", packErr.ToJSON())
			}
		}
		return err
	}
}
