// Package testutil provides helpers for setting up pack directories in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packmill/packmill/config"
)

// MinimalServerToml is the smallest valid server definition.
const MinimalServerToml = `name = "test-pack"
mc_version = "1.21"

[jar]
type = "paper"
version = "1.21"
`

// CreatePackDir creates a temporary pack directory with a server.toml and
// returns its path.
func CreatePackDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteServerToml(t, dir, MinimalServerToml)
	return dir
}

// WriteServerToml writes a server.toml with the given content into dir.
func WriteServerToml(t *testing.T, dir, content string) {
	t.Helper()

	path := filepath.Join(dir, config.ServerFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// WriteConfigTemplate writes a file under the pack's config template
// directory, creating parent directories as needed.
func WriteConfigTemplate(t *testing.T, dir, relPath, content string) {
	t.Helper()

	path := filepath.Join(dir, "config", filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// LoadPack loads the server.toml from a pack directory.
func LoadPack(t *testing.T, dir string) *config.ServerConfig {
	t.Helper()

	cfg, err := config.LoadServer(filepath.Join(dir, config.ServerFileName))
	require.NoError(t, err)
	return cfg
}
