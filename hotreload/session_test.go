package hotreload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packmill/packmill/config"
	"github.com/packmill/packmill/console"
	"github.com/packmill/packmill/testutil"
)

type fakeRebuilder struct {
	mu    sync.Mutex
	jar   string
	err   error
	calls int
}

func (f *fakeRebuilder) BuildAll() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.jar, f.err
}

func (f *fakeRebuilder) buildCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeBootstrapper struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeBootstrapper) BootstrapFile(relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, relPath)
	return f.err
}

// testSession builds a session whose "server" is a shell script. The script
// is smuggled in through the JVM args so the assembled jar invocation ends
// up as ignored positional parameters.
func testSession(t *testing.T, script string) (*Session, *bytes.Buffer) {
	t.Helper()
	requireUnix(t)

	root := testutil.CreatePackDir(t)
	app := testutil.LoadPack(t, root)
	app.Launcher = config.Launcher{
		JavaBinary: "sh",
		JVMArgs:    []string{"-c", script, "server"},
	}

	var buf bytes.Buffer
	s := NewSession(app, &fakeRebuilder{jar: "paper-1.21.jar"}, &fakeBootstrapper{})
	s.Console = console.New(&buf)
	s.Input = strings.NewReader("")
	s.GracePeriod = 2 * time.Second
	require.NoError(t, os.MkdirAll(s.OutputDir, 0755))
	return s, &buf
}

func TestSessionStartIsIdempotentWhileRunning(t *testing.T) {
	s, _ := testSession(t, "sleep 60")
	s.jarName = "paper-1.21.jar"

	s.handle(Command{Kind: CmdStart})
	require.NotNil(t, s.sup)
	first := s.sup.Pid()

	s.handle(Command{Kind: CmdStart})
	assert.Equal(t, first, s.sup.Pid(), "a running child is never replaced")

	s.handle(Command{Kind: CmdStop})
	assert.Nil(t, s.sup)
}

func TestSessionStartWithoutJarIsReported(t *testing.T) {
	s, buf := testSession(t, "sleep 60")

	s.handle(Command{Kind: CmdStart})
	assert.Nil(t, s.sup)
	assert.Contains(t, buf.String(), "Failed to start server")
}

func TestSessionRebuildSetsJarName(t *testing.T) {
	s, _ := testSession(t, "true")
	rb := s.Rebuilder.(*fakeRebuilder)

	s.handle(Command{Kind: CmdRebuild})
	assert.Equal(t, 1, rb.calls)
	assert.Equal(t, "paper-1.21.jar", s.jarName)
}

func TestSessionRebuildFailureKeepsPreviousJar(t *testing.T) {
	s, buf := testSession(t, "true")
	s.jarName = "previous.jar"
	s.Rebuilder = &fakeRebuilder{err: os.ErrPermission}

	s.handle(Command{Kind: CmdRebuild})
	assert.Equal(t, "previous.jar", s.jarName)
	assert.Contains(t, buf.String(), "Build failed")
}

func TestSessionBootstrapFailureIsNonFatal(t *testing.T) {
	s, buf := testSession(t, "true")
	s.Bootstrapper = &fakeBootstrapper{err: os.ErrNotExist}

	s.handle(Command{Kind: CmdBootstrap, Path: "plugins/a.yml"})
	assert.Contains(t, buf.String(), "Error while bootstrapping plugins/a.yml")
}

func TestSessionWaitUntilExitGracefulStop(t *testing.T) {
	script := `while read line; do
  if [ "$line" = "stop" ]; then echo "Stopping server"; exit 0; fi
done`
	s, buf := testSession(t, script)
	s.jarName = "paper-1.21.jar"

	s.handle(Command{Kind: CmdStart})
	require.NotNil(t, s.sup)

	s.handle(SendCommand("stop"))
	start := time.Now()
	s.handle(Command{Kind: CmdWaitUntilExit})

	assert.Nil(t, s.sup)
	assert.Less(t, time.Since(start), s.GracePeriod, "a cooperating child exits before the deadline")
	assert.Contains(t, buf.String(), "Stopping server", "remaining output is drained and printed")
	assert.Contains(t, buf.String(), "Server process ended")
}

func TestSessionWaitUntilExitKillsAfterGracePeriod(t *testing.T) {
	s, buf := testSession(t, "sleep 60")
	s.jarName = "paper-1.21.jar"
	s.GracePeriod = 100 * time.Millisecond

	s.handle(Command{Kind: CmdStart})
	require.NotNil(t, s.sup)

	done := make(chan struct{})
	go func() {
		s.handle(Command{Kind: CmdWaitUntilExit})
		close(done)
	}()

	require.Eventually(t, s.Stopping, time.Second, 5*time.Millisecond, "the wait is observable while in flight")
	<-done

	assert.False(t, s.Stopping())
	assert.Nil(t, s.sup)
	assert.Contains(t, buf.String(), "Timeout reached, killing...")
}

func TestSessionWaitUntilExitConsumesInterrupt(t *testing.T) {
	s, buf := testSession(t, "sleep 60")
	s.jarName = "paper-1.21.jar"
	s.GracePeriod = time.Minute

	s.handle(Command{Kind: CmdStart})
	require.NotNil(t, s.sup)

	s.interrupts <- os.Interrupt
	start := time.Now()
	s.handle(Command{Kind: CmdWaitUntilExit})

	assert.Nil(t, s.sup)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, buf.String(), "Interrupt received, killing...")
}

func TestSessionWaitUntilExitWithoutChild(t *testing.T) {
	s, _ := testSession(t, "true")
	s.handle(Command{Kind: CmdWaitUntilExit})
	assert.Nil(t, s.sup)
}

func TestSessionRunEndsOnInterrupt(t *testing.T) {
	s, buf := testSession(t, "sleep 60")

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	// Let the initial rebuild+start cycle happen, then interrupt.
	require.Eventually(t, func() bool {
		return s.Rebuilder.(*fakeRebuilder).buildCalls() > 0
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	s.interrupts <- os.Interrupt

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("session never stopped")
	}

	assert.Contains(t, buf.String(), "Stopping development session...")

	// The default rule file is materialized for the watcher.
	_, err := os.Stat(filepath.Join(s.App.Root(), ConfigFileName))
	assert.NoError(t, err)
}

func TestSessionQueueDrivesBootstrap(t *testing.T) {
	s, _ := testSession(t, "true")
	bs := s.Bootstrapper.(*fakeBootstrapper)

	s.handle(Command{Kind: CmdBootstrap, Path: "plugins/a.yml"})
	s.handle(Command{Kind: CmdBootstrap, Path: "server.properties"})

	assert.Equal(t, []string{"plugins/a.yml", "server.properties"}, bs.paths)
}
