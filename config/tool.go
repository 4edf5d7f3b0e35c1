package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/packmill/packmill/errors"
	"github.com/packmill/packmill/pkg/paths"
	"gopkg.in/yaml.v3"
)

// ToolFileName is the name of the per-project tool configuration file.
const ToolFileName = ".packmill.yml"

// ToolConfig is packmill's own configuration (.packmill.yml), distinct from
// the server definition. Sections that belong to other packages (e.g.
// "logging") are captured in Extensions and decoded on demand.
type ToolConfig struct {
	Version    string                 `yaml:"version,omitempty"`
	Extensions map[string]interface{} `yaml:",inline"`
}

// LoadToolDefault loads the tool config found by walking up from the current
// working directory, falling back to the global config directory.
func LoadToolDefault() (*ToolConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path, err := findToolFile(cwd)
	if err != nil {
		global := filepath.Join(paths.ConfigDir(), ToolFileName)
		if _, statErr := os.Stat(global); statErr != nil {
			return nil, err
		}
		path = global
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return LoadToolFromBytes(data)
}

// LoadToolFromBytes parses a tool config from raw YAML.
func LoadToolFromBytes(data []byte) (*ToolConfig, error) {
	var cfg ToolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse "+ToolFileName)
	}
	return &cfg, nil
}

// UnmarshalExtension decodes a named extension section into out.
// Returns nil without touching out when the section is absent.
func (c *ToolConfig) UnmarshalExtension(name string, out interface{}) error {
	raw, ok := c.Extensions[name]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "yaml",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func findToolFile(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ToolFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(ToolFileName)
		}
		dir = parent
	}
}
