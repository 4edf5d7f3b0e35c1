// Package hotreload implements the development session for a managed
// server: a command-driven controller owning the child process, fed by
// debounced filesystem watchers, operator stdin, and interrupt signals.
package hotreload

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/packmill/packmill/command"
	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/console"
	"github.com/packmill/packmill/logging"
	"github.com/sirupsen/logrus"
)

// ExitGracePeriod bounds WaitUntilExit: a child that has not exited by then
// is forcibly killed. Not an error, just the documented policy.
const ExitGracePeriod = 30 * time.Second

// configTemplateDir is the watched template directory under the server root.
const configTemplateDir = "config"

// Rebuilder produces a runnable jar name on demand.
type Rebuilder interface {
	BuildAll() (string, error)
}

// Bootstrapper re-materializes one config file from its template.
type Bootstrapper interface {
	BootstrapFile(relPath string) error
}

// Session is the hot-reload development session. One goroutine (the loop in
// Run) is the only writer of process state; watchers, the stdin reader, and
// the signal handler are pure command producers.
type Session struct {
	App          *config.ServerConfig
	Rebuilder    Rebuilder
	Bootstrapper Bootstrapper
	Executor     command.Executor
	Console      *console.Console
	Input        io.Reader
	OutputDir    string
	GracePeriod  time.Duration

	log        *logrus.Entry
	queue      chan Command
	interrupts chan os.Signal

	// Owned exclusively by the session goroutine.
	sup     *Supervisor
	jarName string

	stopping atomic.Bool
}

// NewSession creates a dev session for a loaded server config.
func NewSession(app *config.ServerConfig, rb Rebuilder, bs Bootstrapper) *Session {
	return &Session{
		App:          app,
		Rebuilder:    rb,
		Bootstrapper: bs,
		Executor:     &command.RealExecutor{},
		Console:      console.Default(),
		Input:        os.Stdin,
		OutputDir:    filepath.Join(app.Root(), "server"),
		GracePeriod:  ExitGracePeriod,
		log:          logging.NewLogger("session"),
		queue:        make(chan Command, QueueCapacity),
		interrupts:   make(chan os.Signal, 1),
	}
}

// Enqueue pushes a command onto the shared queue, blocking when it is full.
func (s *Session) Enqueue(cmd Command) {
	s.queue <- cmd
}

// Stopping reports whether a WaitUntilExit is in flight. Safe to call from
// any goroutine.
func (s *Session) Stopping() bool {
	return s.stopping.Load()
}

// Run starts the watchers, performs the initial build-and-launch cycle, and
// drives the event loop until an interrupt or an unrecoverable setup error.
func (s *Session) Run() error {
	root := s.App.Root()

	hotReloadPath := filepath.Join(root, ConfigFileName)
	if err := ensureFile(hotReloadPath); err != nil {
		return err
	}
	initial, err := LoadConfig(hotReloadPath)
	if err != nil {
		return err
	}
	cell := NewConfigCell(initial)

	configDir := filepath.Join(root, configTemplateDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	configWatcher, err := WatchConfigTree(configDir, cell, s.queue)
	if err != nil {
		return err
	}
	defer configWatcher.Close()

	hotReloadWatcher, err := WatchHotReloadFile(hotReloadPath, cell)
	if err != nil {
		return err
	}
	defer hotReloadWatcher.Close()

	serverWatcher, err := WatchServerFile(s.App.Path, s.queue)
	if err != nil {
		return err
	}
	defer serverWatcher.Close()

	signal.Notify(s.interrupts, os.Interrupt)
	defer signal.Stop(s.interrupts)

	stdinLines := readLines(s.Input)

	// The session always performs one build-and-launch cycle up front.
	s.Enqueue(Command{Kind: CmdRebuild})
	s.Enqueue(Command{Kind: CmdStart})

	s.loop(stdinLines)

	// Last-resort invariant: no live child outlives the session.
	if s.sup != nil {
		s.Console.Info("Killing undead child process...")
		s.killAndReap()
	}

	return nil
}

// loop is the single-consumer event loop. Whichever source becomes ready
// first is handled before re-entering the wait.
func (s *Session) loop(stdinLines <-chan string) {
	for {
		var lines <-chan string
		if s.sup != nil {
			lines = s.sup.Lines()
		}

		select {
		case cmd := <-s.queue:
			s.handle(cmd)

		case line, ok := <-lines:
			if !ok {
				// Child exited on its own.
				s.reap()
				continue
			}
			s.Console.ChildLine(line)

		case line, ok := <-stdinLines:
			if !ok {
				stdinLines = nil
				continue
			}
			s.handle(SendCommand(line))

		case <-s.interrupts:
			// Outside WaitUntilExit, an interrupt is the normal way to end
			// the dev session.
			s.Console.Info("Stopping development session...")
			return
		}
	}
}

// handle executes one command. Errors local to a command are reported and
// never unwind the loop.
func (s *Session) handle(cmd Command) {
	s.log.WithField("command", cmd.Kind.String()).Debug("Handling command")

	switch cmd.Kind {
	case CmdStart:
		s.Console.Info("Starting server process...")
		if s.sup != nil {
			return
		}
		sup, err := SpawnServer(s.Executor, s.App, s.jarName, s.OutputDir)
		if err != nil {
			s.log.WithError(err).Error("Failed to spawn server")
			s.Console.Error("Failed to start server: %v", err)
			return
		}
		s.sup = sup

	case CmdStop:
		s.Console.Info("Killing server process...")
		if s.sup != nil {
			s.killAndReap()
		}

	case CmdSendCommand:
		s.Console.Info("Sending command: %s", strings.TrimSpace(cmd.Text))
		if s.sup != nil {
			s.sup.Write(cmd.Text)
		}

	case CmdWaitUntilExit:
		s.waitUntilExit()

	case CmdRebuild:
		s.Console.Info("Building...")
		jarName, err := s.Rebuilder.BuildAll()
		if err != nil {
			s.log.WithError(err).Error("Build failed")
			s.Console.Error("Build failed: %v", err)
			return
		}
		s.jarName = jarName

	case CmdBootstrap:
		s.Console.Info("Bootstrapping: %s", cmd.Path)
		if err := s.Bootstrapper.BootstrapFile(cmd.Path); err != nil {
			s.log.WithError(err).WithField("path", cmd.Path).Warn("Bootstrap failed")
			s.Console.Warn("Error while bootstrapping %s: %v", cmd.Path, err)
		}
	}
}

// waitUntilExit drains and prints the child's remaining output until it
// exits, the grace period lapses, or an interrupt arrives. The interrupt is
// consumed here instead of ending the session: a graceful stop-and-wait is
// itself interruptible by the operator wanting a faster kill.
func (s *Session) waitUntilExit() {
	s.Console.Info("Waiting for process exit...")
	if s.sup == nil {
		return
	}

	s.stopping.Store(true)
	defer s.stopping.Store(false)

	timer := time.NewTimer(s.GracePeriod)
	defer timer.Stop()

	shouldKill := false
drain:
	for {
		select {
		case line, ok := <-s.sup.Lines():
			if !ok {
				break drain
			}
			s.Console.ChildLine(line)
		case <-timer.C:
			s.Console.Info("Timeout reached, killing...")
			shouldKill = true
			break drain
		case <-s.interrupts:
			s.Console.Info("Interrupt received, killing...")
			shouldKill = true
			break drain
		}
	}

	if shouldKill {
		s.sup.Kill()
	}
	// Drain before reaping: the reader may still be blocked handing over
	// buffered output, and it only closes Exited after the lines channel.
	for line := range s.sup.Lines() {
		s.Console.ChildLine(line)
	}
	<-s.sup.Exited()

	s.sup = nil
	s.Console.Info("Server process ended")
}

// killAndReap force-kills the child, drains its remaining output, and
// clears the handle.
func (s *Session) killAndReap() {
	s.sup.Kill()
	for line := range s.sup.Lines() {
		s.Console.ChildLine(line)
	}
	<-s.sup.Exited()
	s.sup = nil
}

// reap handles a child that exited without being asked to.
func (s *Session) reap() {
	if s.sup == nil {
		return
	}
	<-s.sup.Exited()
	s.sup = nil
	s.Console.Info("Server process ended")
}

// readLines pumps an input stream into a line channel, closed on EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

// ensureFile creates an empty file when none exists, so a non-recursive
// watcher has something to attach to.
func ensureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(defaultHotReloadConfig), 0644)
}

const defaultHotReloadConfig = `# Hot-reload rules for the dev session.
#
# [[files]]
# path = "plugins/*.yml"
# action = "reload"        # or "restart", or "run:<server command>"
`
