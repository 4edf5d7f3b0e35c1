package hotreload

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*.yml"
action = "reload"

[[files]]
path = "server.properties"
action = "restart"

[[files]]
path = "ops.json"
action = "run:whitelist reload"
`))
	require.NoError(t, err)
	require.Len(t, cfg.Files, 3)

	assert.Equal(t, ActionReload, cfg.Files[0].Action.Kind)
	assert.Equal(t, ActionRestart, cfg.Files[1].Action.Kind)
	assert.Equal(t, ActionRunCommand, cfg.Files[2].Action.Kind)
	assert.Equal(t, "whitelist reload", cfg.Files[2].Action.Command)
}

func TestParseConfigRejectsUnknownAction(t *testing.T) {
	_, err := ParseConfig([]byte(`
[[files]]
path = "a.yml"
action = "explode"
`))
	require.Error(t, err)
}

func TestParseConfigRejectsEmptyRunCommand(t *testing.T) {
	_, err := ParseConfig([]byte(`
[[files]]
path = "a.yml"
action = "run:  "
`))
	require.Error(t, err)
}

func TestResolveActionFirstMatchWins(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[[files]]
path = "plugins/*.yml"
action = "reload"

[[files]]
path = "plugins/heavy.yml"
action = "restart"
`))
	require.NoError(t, err)

	rule := cfg.ResolveAction("plugins/heavy.yml")
	require.NotNil(t, rule)
	assert.Equal(t, ActionReload, rule.Action.Kind, "declaration order decides, not specificity")

	assert.Nil(t, cfg.ResolveAction("unrelated.txt"))
}

func TestRuleCommands(t *testing.T) {
	reload := FileRule{Action: Action{Kind: ActionReload}}
	assert.Equal(t, []Command{{Kind: CmdSendCommand, Text: "reload confirm\n"}}, reload.Commands())

	restart := FileRule{Action: Action{Kind: ActionRestart}}
	assert.Equal(t, []Command{
		{Kind: CmdSendCommand, Text: "stop\nend\n"},
		{Kind: CmdWaitUntilExit},
		{Kind: CmdStart},
	}, restart.Commands())

	run := FileRule{Action: Action{Kind: ActionRunCommand, Command: "say hi"}}
	assert.Equal(t, []Command{{Kind: CmdSendCommand, Text: "say hi\n"}}, run.Commands(),
		"run commands get a trailing newline appended")
}

func TestConfigCellReplaceIsAtomic(t *testing.T) {
	// Each generation is internally consistent: every rule path carries the
	// generation number. A torn read would mix generations.
	makeCfg := func(gen int) *HotReloadConfig {
		data := fmt.Sprintf(`
[[files]]
path = "gen-%d/a.yml"
action = "reload"

[[files]]
path = "gen-%d/b.yml"
action = "restart"
`, gen, gen)
		cfg, err := ParseConfig([]byte(data))
		require.NoError(t, err)
		return cfg
	}

	cell := NewConfigCell(makeCfg(0))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := cell.Snapshot()
				require.Len(t, snap.Files, 2)
				assert.Equal(t, snap.Files[0].Path[:6], snap.Files[1].Path[:6],
					"reader observed a mix of generations")
			}
		}()
	}

	for gen := 1; gen <= 100; gen++ {
		cell.Replace(makeCfg(gen))
	}
	close(stop)
	wg.Wait()
}

func TestActionRoundTrip(t *testing.T) {
	for _, s := range []string{"reload", "restart", "run:say hi"} {
		var a Action
		require.NoError(t, a.UnmarshalText([]byte(s)))
		out, err := a.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, s, string(out))
	}
}
