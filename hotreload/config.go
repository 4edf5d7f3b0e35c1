package hotreload

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/moby/patternmatcher"
	"github.com/packmill/packmill/errors"
	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the hot-reload configuration file, relative to the
// server root.
const ConfigFileName = "hotreload.toml"

// ActionKind enumerates what a matched file rule does.
type ActionKind int

const (
	ActionReload ActionKind = iota
	ActionRestart
	ActionRunCommand
)

// Action is a file rule's effect, parsed from its TOML string form:
// "reload", "restart", or "run:<command>".
type Action struct {
	Kind    ActionKind
	Command string
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (a *Action) UnmarshalText(text []byte) error {
	s := string(text)
	switch {
	case s == "reload":
		a.Kind = ActionReload
	case s == "restart":
		a.Kind = ActionRestart
	case strings.HasPrefix(s, "run:"):
		a.Kind = ActionRunCommand
		a.Command = strings.TrimPrefix(s, "run:")
		if strings.TrimSpace(a.Command) == "" {
			return fmt.Errorf("run action has empty command")
		}
	default:
		return fmt.Errorf("unknown action %q (want reload, restart, or run:<command>)", s)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	switch a.Kind {
	case ActionReload:
		return []byte("reload"), nil
	case ActionRestart:
		return []byte("restart"), nil
	default:
		return []byte("run:" + a.Command), nil
	}
}

// FileRule maps a path pattern to an action. Rules are recreated wholesale
// on every configuration reload and never mutated individually.
type FileRule struct {
	Path   string `toml:"path"`
	Action Action `toml:"action"`

	matcher *patternmatcher.PatternMatcher
}

// Matches reports whether the rule's pattern matches a slash-separated path
// relative to the config directory.
func (r *FileRule) Matches(relPath string) bool {
	if r.matcher == nil {
		return false
	}
	ok, err := r.matcher.MatchesOrParentMatches(relPath)
	return err == nil && ok
}

// Commands returns the session commands a matched rule emits.
func (r *FileRule) Commands() []Command {
	switch r.Action.Kind {
	case ActionReload:
		return []Command{SendCommand("reload confirm\n")}
	case ActionRestart:
		return []Command{
			SendCommand("stop\nend\n"),
			{Kind: CmdWaitUntilExit},
			{Kind: CmdStart},
		}
	default:
		return []Command{SendCommand(r.Action.Command)}
	}
}

// HotReloadConfig is the parsed hotreload.toml. A single authoritative copy
// lives in a ConfigCell and is replaced wholesale on reload.
type HotReloadConfig struct {
	Files []FileRule `toml:"files"`

	// Path is where this config was loaded from.
	Path string `toml:"-"`
}

// LoadConfig reads and parses a hotreload.toml, compiling every rule's
// pattern.
func LoadConfig(path string) (*HotReloadConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// ParseConfig parses a hot-reload configuration from raw TOML.
func ParseConfig(data []byte) (*HotReloadConfig, error) {
	var cfg HotReloadConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse "+ConfigFileName)
	}

	for i := range cfg.Files {
		pm, err := patternmatcher.New([]string{cfg.Files[i].Path})
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid pattern %q", cfg.Files[i].Path))
		}
		cfg.Files[i].matcher = pm
	}

	return &cfg, nil
}

// ResolveAction returns the first rule matching relPath, in declaration
// order, or nil when no rule matches.
func (c *HotReloadConfig) ResolveAction(relPath string) *FileRule {
	for i := range c.Files {
		if c.Files[i].Matches(relPath) {
			return &c.Files[i]
		}
	}
	return nil
}

// ConfigCell guards the shared hot-reload configuration. Watcher callbacks
// read it from outside the session goroutine, so every access goes through
// the lock; the snapshot is replaced wholesale, never mutated in place.
type ConfigCell struct {
	mu  sync.Mutex
	cfg *HotReloadConfig
}

// NewConfigCell creates a cell holding an initial snapshot.
func NewConfigCell(cfg *HotReloadConfig) *ConfigCell {
	if cfg == nil {
		cfg = &HotReloadConfig{}
	}
	return &ConfigCell{cfg: cfg}
}

// Snapshot returns the current configuration. The returned value is
// immutable by convention: reloads replace it rather than mutating it.
func (c *ConfigCell) Snapshot() *HotReloadConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Replace swaps in a freshly parsed configuration.
func (c *ConfigCell) Replace(cfg *HotReloadConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}
