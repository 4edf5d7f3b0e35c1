package hotreload

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/packmill/packmill/command"
	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/errors"
	"github.com/packmill/packmill/pkg/process"
)

// Supervisor owns one spawned server process: its stdin for writing, its
// stdout as a line channel, and its termination.
type Supervisor struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	exited chan struct{}
}

// Platform returns the launcher platform family for the current OS.
func Platform() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "linux"
}

// SpawnServer spawns the server process for a built jar. It fails with a
// configuration error when no jar name is known yet.
func SpawnServer(executor command.Executor, app *config.ServerConfig, jarName, dir string) (*Supervisor, error) {
	if jarName == "" {
		return nil, errors.JarUnresolved()
	}

	platform := Platform()
	args := app.Launcher.GetArguments(app.Jar.StartupMethod(jarName, platform), platform)
	return Spawn(executor, app.Launcher.Java(), args, dir)
}

// Spawn starts an arbitrary child with piped stdin/stdout and inherited
// stderr, and begins reading its output.
func Spawn(executor command.Executor, name string, args []string, dir string) (*Supervisor, error) {
	cmd := executor.Command(name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.SpawnFailed(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.SpawnFailed(err)
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.SpawnFailed(err)
	}

	s := &Supervisor{
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, 64),
		exited: make(chan struct{}),
	}

	go s.read(stdout)
	return s, nil
}

// read pumps stdout lines until EOF, then reaps the process. The lines
// channel closing is the exit signal observed by the session loop.
func (s *Supervisor) read(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
	close(s.lines)

	_ = s.cmd.Wait()
	close(s.exited)
}

// Lines returns the child's stdout as a line channel. It is closed once the
// underlying stream closes; a closed channel means the process exited, not
// an error.
func (s *Supervisor) Lines() <-chan string {
	return s.lines
}

// Exited is closed after the process has been reaped.
func (s *Supervisor) Exited() <-chan struct{} {
	return s.exited
}

// Write sends text verbatim to the child's stdin. It is best-effort: the
// child may legitimately have exited between the caller's liveness check
// and this write, so failures are swallowed.
func (s *Supervisor) Write(text string) {
	_, _ = io.WriteString(s.stdin, text)
}

// Pid returns the child's process id, or 0 if unknown.
func (s *Supervisor) Pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Alive reports whether the child is still running.
func (s *Supervisor) Alive() bool {
	select {
	case <-s.exited:
		return false
	default:
	}
	return process.IsProcessAlive(s.Pid())
}

// Kill forcibly terminates the child. Idempotent: killing an already-exited
// process is a no-op.
func (s *Supervisor) Kill() {
	if s.cmd.Process == nil {
		return
	}
	// os.ErrProcessDone after exit is the expected case, not a failure.
	_ = s.cmd.Process.Kill()
}
