package hotreload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainQueue(queue chan Command) []Command {
	var out []Command
	for {
		select {
		case cmd := <-queue:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

func writeFileT(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConfigTreeHandlerMatchedRule(t *testing.T) {
	configDir := t.TempDir()
	target := filepath.Join(configDir, "plugins", "a.yml")
	writeFileT(t, target, "x: 1\n")

	cfg, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*.yml"
action = "reload"
`))
	require.NoError(t, err)

	queue := make(chan Command, QueueCapacity)
	handler := ConfigTreeHandler(configDir, NewConfigCell(cfg), queue)
	handler([]Event{{Path: target, Op: fsnotify.Write}})

	assert.Equal(t, []Command{
		{Kind: CmdBootstrap, Path: "plugins/a.yml"},
		{Kind: CmdSendCommand, Text: "reload confirm\n"},
	}, drainQueue(queue))
}

func TestConfigTreeHandlerRestartRule(t *testing.T) {
	configDir := t.TempDir()
	target := filepath.Join(configDir, "server.properties")
	writeFileT(t, target, "motd=hi\n")

	cfg, err := ParseConfig([]byte(`
[[files]]
path = "server.properties"
action = "restart"
`))
	require.NoError(t, err)

	queue := make(chan Command, QueueCapacity)
	handler := ConfigTreeHandler(configDir, NewConfigCell(cfg), queue)
	handler([]Event{{Path: target, Op: fsnotify.Create}})

	assert.Equal(t, []Command{
		{Kind: CmdBootstrap, Path: "server.properties"},
		{Kind: CmdSendCommand, Text: "stop\nend\n"},
		{Kind: CmdWaitUntilExit},
		{Kind: CmdStart},
	}, drainQueue(queue))
}

func TestConfigTreeHandlerUnmatchedFileOnlyBootstraps(t *testing.T) {
	configDir := t.TempDir()
	target := filepath.Join(configDir, "notes.txt")
	writeFileT(t, target, "hello\n")

	cfg, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*.yml"
action = "reload"
`))
	require.NoError(t, err)

	queue := make(chan Command, QueueCapacity)
	handler := ConfigTreeHandler(configDir, NewConfigCell(cfg), queue)
	handler([]Event{{Path: target, Op: fsnotify.Write}})

	assert.Equal(t, []Command{{Kind: CmdBootstrap, Path: "notes.txt"}}, drainQueue(queue))
}

func TestConfigTreeHandlerSkipsDirectories(t *testing.T) {
	configDir := t.TempDir()
	sub := filepath.Join(configDir, "plugins")
	require.NoError(t, os.MkdirAll(sub, 0755))

	queue := make(chan Command, QueueCapacity)
	handler := ConfigTreeHandler(configDir, NewConfigCell(&HotReloadConfig{}), queue)
	handler([]Event{{Path: sub, Op: fsnotify.Create}})

	assert.Empty(t, drainQueue(queue), "directories never bootstrap or trigger actions")
}

func TestConfigTreeHandlerSkipsHiddenFiles(t *testing.T) {
	configDir := t.TempDir()
	swap := filepath.Join(configDir, "plugins", ".a.yml.swp")
	writeFileT(t, swap, "swapfile\n")

	cfg, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*"
action = "reload"
`))
	require.NoError(t, err)

	queue := make(chan Command, QueueCapacity)
	handler := ConfigTreeHandler(configDir, NewConfigCell(cfg), queue)
	handler([]Event{{Path: swap, Op: fsnotify.Create}})

	assert.Empty(t, drainQueue(queue), "editor swap files never bootstrap or trigger actions")
}

func TestConfigTreeHandlerIgnoresRemove(t *testing.T) {
	configDir := t.TempDir()

	queue := make(chan Command, QueueCapacity)
	handler := ConfigTreeHandler(configDir, NewConfigCell(&HotReloadConfig{}), queue)
	handler([]Event{{Path: filepath.Join(configDir, "gone.yml"), Op: fsnotify.Remove}})

	assert.Empty(t, drainQueue(queue))
}

func TestServerFileHandlerFullCycle(t *testing.T) {
	queue := make(chan Command, QueueCapacity)
	handler := ServerFileHandler(queue)
	handler([]Event{{Path: "server.toml", Op: fsnotify.Write}})

	assert.Equal(t, []Command{
		{Kind: CmdSendCommand, Text: "stop\nend"},
		{Kind: CmdWaitUntilExit},
		{Kind: CmdRebuild},
		{Kind: CmdStart},
	}, drainQueue(queue))
}

func TestServerFileHandlerIgnoresNonWrite(t *testing.T) {
	queue := make(chan Command, QueueCapacity)
	handler := ServerFileHandler(queue)
	handler([]Event{{Path: "server.toml", Op: fsnotify.Chmod}})

	assert.Empty(t, drainQueue(queue))
}

func TestHotReloadFileHandlerReplacesSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	writeFileT(t, path, `
[[files]]
path = "plugins/*.yml"
action = "reload"
`)

	cell := NewConfigCell(&HotReloadConfig{})
	handler := HotReloadFileHandler(path, cell)
	handler([]Event{{Path: path, Op: fsnotify.Write}})

	snap := cell.Snapshot()
	require.Len(t, snap.Files, 1)
	assert.Equal(t, "plugins/*.yml", snap.Files[0].Path)
}

func TestHotReloadFileHandlerKeepsPreviousOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	good, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*.yml"
action = "reload"
`))
	require.NoError(t, err)
	cell := NewConfigCell(good)

	writeFileT(t, path, "[[files]\npath = broken")
	handler := HotReloadFileHandler(path, cell)
	handler([]Event{{Path: path, Op: fsnotify.Write}})

	snap := cell.Snapshot()
	require.Len(t, snap.Files, 1, "prior configuration stays in effect")
	assert.NotNil(t, snap.ResolveAction("plugins/a.yml"))
}

func TestWatchConfigTreeEndToEnd(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(configDir, "plugins"), 0755))

	cfg, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*.yml"
action = "reload"
`))
	require.NoError(t, err)

	queue := make(chan Command, QueueCapacity)
	w, err := WatchConfigTree(configDir, NewConfigCell(cfg), queue)
	require.NoError(t, err)
	defer w.Close()

	writeFileT(t, filepath.Join(configDir, "plugins", "a.yml"), "x: 1\n")

	// Two commands once the debounce window settles.
	var got []Command
	for i := 0; i < 2; i++ {
		select {
		case cmd := <-queue:
			got = append(got, cmd)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for commands, got %v", got)
		}
	}

	assert.Equal(t, Command{Kind: CmdBootstrap, Path: "plugins/a.yml"}, got[0])
	assert.Equal(t, Command{Kind: CmdSendCommand, Text: "reload confirm\n"}, got[1])
}
