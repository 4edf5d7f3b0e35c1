// Package console owns the operator-facing terminal output for a dev
// session. All writes go through a single mutex so status lines and raw
// child output never interleave mid-line.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Console serializes all terminal writes for a session.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	prefixStyle lipgloss.Style
	infoStyle   lipgloss.Style
	warnStyle   lipgloss.Style
	errorStyle  lipgloss.Style
}

// New creates a Console writing to out. Styling is disabled when the
// detected color profile is plain ASCII.
func New(out io.Writer) *Console {
	c := &Console{
		out:         out,
		prefixStyle: lipgloss.NewStyle().Bold(true),
		infoStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}

	if f, ok := out.(*os.File); ok {
		if termenv.NewOutput(f).Profile == termenv.Ascii {
			plain := lipgloss.NewStyle()
			c.prefixStyle = plain
			c.infoStyle = plain
			c.warnStyle = plain
			c.errorStyle = plain
		}
	}

	return c
}

var (
	defaultConsole *Console
	defaultOnce    sync.Once
)

// Default returns the process-wide console on stdout.
func Default() *Console {
	defaultOnce.Do(func() {
		defaultConsole = New(os.Stdout)
	})
	return defaultConsole
}

// Info prints a status line.
func (c *Console) Info(format string, args ...interface{}) {
	c.statusLine(c.infoStyle.Render(">"), fmt.Sprintf(format, args...))
}

// Warn prints a warning status line.
func (c *Console) Warn(format string, args ...interface{}) {
	c.statusLine(c.warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

// Error prints an error status line.
func (c *Console) Error(format string, args ...interface{}) {
	c.statusLine(c.errorStyle.Render("x"), fmt.Sprintf(format, args...))
}

func (c *Console) statusLine(marker, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", marker, msg)
}

// ChildLine surfaces one line of the child process output with a
// distinguishing prefix.
func (c *Console) ChildLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s%s\n", c.prefixStyle.Render("| "), strings.TrimSpace(line))
}

// Suspend runs fn while holding the output lock, so callers rendering their
// own output (progress displays, prompts) do not interleave with status
// lines or child output.
func (c *Console) Suspend(fn func(w io.Writer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.out)
}
