// Package paths provides path resolution for packmill's own files.
//
// Resolution order for the global config directory:
// 1. PACKMILL_HOME (portable root) → $PACKMILL_HOME/config
// 2. XDG_CONFIG_HOME → $XDG_CONFIG_HOME/packmill
// 3. Platform default → ~/.config/packmill
//
// Per-project state (logs, lockfile) always lives under the project root
// so it travels with the server definition.
package paths

import (
	"os"
	"path/filepath"
)

// ConfigDir returns the global packmill config directory.
func ConfigDir() string {
	if packmillHome := os.Getenv("PACKMILL_HOME"); packmillHome != "" {
		return filepath.Join(packmillHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "packmill")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "packmill")
	}
	return ""
}

// StateDir returns the per-project state directory for a server root.
func StateDir(root string) string {
	return filepath.Join(root, ".packmill")
}

// LogsDir returns the per-project log directory for a server root.
func LogsDir(root string) string {
	return filepath.Join(StateDir(root), "logs")
}

// LockfilePath returns the lockfile location for a server root.
func LockfilePath(root string) string {
	return filepath.Join(StateDir(root), "lock.json")
}
