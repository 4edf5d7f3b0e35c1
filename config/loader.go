package config

import (
	"os"
	"path/filepath"

	"github.com/packmill/packmill/errors"
	"github.com/pelletier/go-toml/v2"
)

// ServerFileName is the name of the server definition file.
const ServerFileName = "server.toml"

// LoadServer reads and parses a server.toml file.
func LoadServer(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, err
	}

	cfg, err := LoadServerFromBytes(data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadServerFromBytes parses a server definition from raw TOML.
func LoadServerFromBytes(data []byte) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse server.toml")
	}
	if cfg.Jar.Type == "" {
		return nil, errors.ConfigInvalid("jar.type is required")
	}
	return &cfg, nil
}

// FindServerFile walks up from dir looking for a server.toml.
func FindServerFile(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ServerFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(ServerFileName)
		}
		dir = parent
	}
}

// Root returns the directory containing the server.toml this config was
// loaded from.
func (c *ServerConfig) Root() string {
	return filepath.Dir(c.Path)
}
